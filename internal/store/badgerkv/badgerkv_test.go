package badgerkv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mathia/internal/store"
)

func openTestKV(t *testing.T) *KV {
	t.Helper()
	kv, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestGetMissing(t *testing.T) {
	kv := openTestKV(t)
	_, err := kv.Get(context.Background(), "lessonHistory")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSetGetOverwrite(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "tutorPersonality", "pair-amical"))
	require.NoError(t, kv.Set(ctx, "tutorPersonality", "coach-encourageant"))

	v, err := kv.Get(ctx, "tutorPersonality")
	require.NoError(t, err)
	assert.Equal(t, "coach-encourageant", v)
}

func TestDeleteAndKeys(t *testing.T) {
	kv := openTestKV(t)
	ctx := context.Background()

	for _, k := range []string{"userProgress", "learningGoals", "lessonHistory"} {
		require.NoError(t, kv.Set(ctx, k, "[]"))
	}

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"learningGoals", "lessonHistory", "userProgress"}, keys)

	require.NoError(t, kv.Delete(ctx, "learningGoals"))
	require.NoError(t, kv.Delete(ctx, "never-set"))

	keys, err = kv.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"lessonHistory", "userProgress"}, keys)
}

func TestPersistentRequiresDir(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

func TestPersistentReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	kv, err := Open(Config{Dir: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "userProgress", `["théorème de pythagore"]`))
	require.NoError(t, kv.Close())

	kv, err = Open(Config{Dir: dir})
	require.NoError(t, err)
	defer kv.Close()

	v, err := kv.Get(ctx, "userProgress")
	require.NoError(t, err)
	assert.Equal(t, `["théorème de pythagore"]`, v)
}
