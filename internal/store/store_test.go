package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	s, err := Open(dsn)
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	assert.NotNil(t, s.Driver())
	assert.NotNil(t, s.DB())
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		require.NoError(t, err, "PRAGMA %s", tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{kvTable, llmEventsTable, sessEventsTable, "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s", table)
		assert.Equal(t, table, name)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sc, err := newSequenceCounter(s.DB())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		seq, err := sc.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
	}
}

func TestKVRoundTrip(t *testing.T) {
	s := openTestStore(t)
	kv := s.KV()
	ctx := context.Background()

	_, err := kv.Get(ctx, "lessonHistory")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "lessonHistory", `[]`))
	require.NoError(t, kv.Set(ctx, "lessonHistory", `{"version":2,"entries":[]}`))
	require.NoError(t, kv.Set(ctx, "userProgress", `["pythagore"]`))

	v, err := kv.Get(ctx, "lessonHistory")
	require.NoError(t, err)
	assert.Equal(t, `{"version":2,"entries":[]}`, v)

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"lessonHistory", "userProgress"}, keys)

	require.NoError(t, kv.Delete(ctx, "lessonHistory"))
	require.NoError(t, kv.Delete(ctx, "missing"))
	_, err = kv.Get(ctx, "lessonHistory")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	_, err := kv.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, "b", "2"))
	require.NoError(t, kv.Set(ctx, "a", "1"))
	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	require.NoError(t, kv.Delete(ctx, "a"))
	_, err = kv.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "tutor", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "[user]\nbonjour", ResponseBody: "salut"},
		{Provider: "gemini", Model: "gemini-2.5-flash", Purpose: "tutor", InputTokens: 10, OutputTokens: 5, LatencyMs: 400, Success: true},
		{Provider: "gemini", Model: "gemini-2.5-pro", Purpose: "practice", Success: false, ErrorMessage: "rate limited"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendLLMRequest(ctx, e))
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "practice", got[0].Purpose, "newest first")
	assert.False(t, got[0].Success)
	assert.Equal(t, "rate limited", got[0].ErrorMessage)

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	after, err := repo.QueryLLMEvents(ctx, QueryOpts{After: got[1].Sequence})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, got[0].ID, after[0].ID)

	oldest := got[2]
	one, err := repo.GetLLMEvent(ctx, oldest.ID)
	require.NoError(t, err)
	assert.Equal(t, "[user]\nbonjour", one.RequestBody)
	assert.Equal(t, "salut", one.ResponseBody)
	assert.WithinDuration(t, time.Now(), one.Timestamp, time.Minute)

	_, err = repo.GetLLMEvent(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	require.NoError(t, err)
	require.Len(t, byPurpose, 2)
	assert.Equal(t, LLMUsageByPurpose{Purpose: "practice", Calls: 1}, byPurpose[0])
	assert.Equal(t, LLMUsageByPurpose{Purpose: "tutor", Calls: 2, InputTokens: 110, OutputTokens: 55, AvgLatencyMs: 300}, byPurpose[1])

	byModel, err := repo.LLMUsageByModel(ctx)
	require.NoError(t, err)
	require.Len(t, byModel, 2)
	assert.Equal(t, "gemini-2.5-flash", byModel[0].Model)
	assert.Equal(t, 2, byModel[0].Calls)
}

func TestSessionEventsAndStats(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []SessionEventData{
		{SessionID: "s1", Action: ActionStart, Mode: "quiz", Topic: "théorème de pythagore"},
		{SessionID: "s1", Action: ActionEnd, Mode: "quiz", Topic: "théorème de pythagore", Score: 1, Total: 2, Percentage: 50},
		{SessionID: "s2", Action: ActionStart, Mode: "exam", Topic: "théorème de pythagore"},
		{SessionID: "s2", Action: ActionEnd, Mode: "exam", Topic: "théorème de pythagore", Score: 4, Total: 5, Percentage: 80, DurationSecs: 42},
		{SessionID: "s2", Action: ActionMastered, Mode: "exam", Topic: "théorème de pythagore", Mastered: true},
		{SessionID: "s3", Action: ActionStart, Mode: "tutor"},
		{SessionID: "s4", Action: ActionAbandon, Mode: "practice", Topic: "fonctions du second degré"},
	}
	for _, e := range events {
		require.NoError(t, repo.AppendSessionEvent(ctx, e))
	}

	got, err := repo.QuerySessionEvents(ctx, QueryOpts{Limit: 3})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, ActionAbandon, got[0].Action)
	assert.True(t, got[0].Sequence > got[1].Sequence)

	stats, err := repo.SessionStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, TopicStats{
		Topic:       "théorème de pythagore",
		Sessions:    2,
		BestPercent: 80,
		Mastered:    true,
	}, stats[0])
}

func TestEventsShareSequence(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s", Action: ActionStart, Mode: "quiz", Topic: "t"}))
	require.NoError(t, repo.AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "tutor", Success: true}))
	require.NoError(t, repo.AppendSessionEvent(ctx, SessionEventData{SessionID: "s", Action: ActionEnd, Mode: "quiz", Topic: "t"}))

	sess, err := repo.QuerySessionEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	llm, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	require.NoError(t, err)
	require.Len(t, sess, 2)
	require.Len(t, llm, 1)

	assert.Equal(t, int64(1), sess[1].Sequence)
	assert.Equal(t, int64(2), llm[0].Sequence)
	assert.Equal(t, int64(3), sess[0].Sequence)
}
