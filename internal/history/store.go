// Package history persists what the learner has done: the log of viewed
// lessons and saved chats, the set of mastered topics, learning goals and the
// preferred tutor personality. All state lives behind a store.KV.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/abhisek/mathia/internal/store"
)

// Keys owned by this package.
const (
	KeyHistory     = "lessonHistory"
	KeyMastered    = "userProgress"
	KeyGoals       = "learningGoals"
	KeyPersonality = "tutorPersonality"
)

// ErrNotFound is returned when no entry has the requested id.
var ErrNotFound = errors.New("history: entry not found")

// Store reads and writes learner history through a KV. Each operation is a
// read-modify-write of one key; the mutex serializes them within the
// process. Across processes the last write wins.
type Store struct {
	mu     sync.Mutex
	kv     store.KV
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Store over kv. A nil logger discards diagnostics.
func New(kv store.KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{kv: kv, logger: logger, now: time.Now}
}

// Load returns the history in insertion order. Missing or malformed data
// yields an empty collection.
func (s *Store) Load(ctx context.Context) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) []Entry {
	raw, ok := s.get(ctx, KeyHistory)
	if !ok {
		return []Entry{}
	}
	entries, err := decodeHistory([]byte(raw))
	if err != nil {
		s.logger.Warn("discarding unreadable history", "error", err)
		return []Entry{}
	}
	return entries
}

// Get returns the entry with id.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	for _, e := range s.Load(ctx) {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, fmt.Errorf("%q: %w", id, ErrNotFound)
}

// Append assigns an id to entry when it has none, appends it and persists
// the collection. The stored entry is returned.
func (s *Store) Append(ctx context.Context, entry Entry) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(ctx, s.load(ctx), entry)
}

func (s *Store) appendLocked(ctx context.Context, entries []Entry, entry Entry) (Entry, error) {
	now := s.now()
	if entry.Kind == "" {
		entry.Kind = KindLesson
		if len(entry.Transcript) > 0 {
			entry.Kind = KindChat
		}
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	if entry.ID == "" {
		entry.ID = newID(entry, now)
	}
	entry.ID = uniqueID(entry.ID, usedIDs(entries))

	entries = append(entries, entry)
	if err := s.save(ctx, entries); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// RecordLesson appends a lesson entry for topic unless one already exists.
// It reports whether an entry was added.
func (s *Store) RecordLesson(ctx context.Context, topic, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load(ctx)
	for _, e := range entries {
		if e.Kind == KindLesson && e.Topic == topic {
			return false, nil
		}
	}
	_, err := s.appendLocked(ctx, entries, Entry{ID: lessonID(topic), Kind: KindLesson, Topic: topic, Title: title})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the entry with id. Removing an unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load(ctx)
	kept := slices.DeleteFunc(entries, func(e Entry) bool { return e.ID == id })
	return s.save(ctx, kept)
}

func (s *Store) save(ctx context.Context, entries []Entry) error {
	data, err := json.Marshal(historyDocument{Version: CurrentVersion, Entries: entries})
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, KeyHistory, string(data)); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// get reads key, logging any failure other than absence.
func (s *Store) get(ctx context.Context, key string) (string, bool) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("read failed", "key", key, "error", err)
		}
		return "", false
	}
	return raw, true
}

func lessonID(topic string) string { return "topic-" + topic }

func newID(e Entry, now time.Time) string {
	if e.Kind == KindLesson && e.Topic != "" {
		return lessonID(e.Topic)
	}
	return "chat-" + strconv.FormatInt(now.UnixMilli(), 10)
}

func usedIDs(entries []Entry) map[string]bool {
	used := make(map[string]bool, len(entries))
	for _, e := range entries {
		used[e.ID] = true
	}
	return used
}

// uniqueID returns id, or id with the smallest "-N" suffix (N ≥ 2) that is
// not in used.
func uniqueID(id string, used map[string]bool) string {
	if !used[id] {
		return id
	}
	for n := 2; ; n++ {
		candidate := id + "-" + strconv.Itoa(n)
		if !used[candidate] {
			return candidate
		}
	}
}

// Reset deletes every key owned by this package.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{KeyHistory, KeyMastered, KeyGoals, KeyPersonality} {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("reset %s: %w", key, err)
		}
	}
	return nil
}
