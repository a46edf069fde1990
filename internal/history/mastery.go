package history

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// Mastered returns the mastered topics in the order they were mastered.
func (s *Store) Mastered(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mastered(ctx)
}

func (s *Store) mastered(ctx context.Context) []string {
	raw, ok := s.get(ctx, KeyMastered)
	if !ok {
		return []string{}
	}
	var topics []string
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		s.logger.Warn("discarding unreadable mastered set", "error", err)
		return []string{}
	}
	return topics
}

// IsMastered reports whether topic is in the mastered set.
func (s *Store) IsMastered(ctx context.Context, topic string) bool {
	return slices.Contains(s.Mastered(ctx), topic)
}

// MarkMastered adds topic to the mastered set. Marking a topic twice is a
// no-op.
func (s *Store) MarkMastered(ctx context.Context, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	topics := s.mastered(ctx)
	if slices.Contains(topics, topic) {
		return nil
	}
	topics = append(topics, topic)

	data, err := json.Marshal(topics)
	if err != nil {
		return fmt.Errorf("encode mastered set: %w", err)
	}
	if err := s.kv.Set(ctx, KeyMastered, string(data)); err != nil {
		return fmt.Errorf("save mastered set: %w", err)
	}
	return nil
}

// Progress returns the rounded share of totalTopics that is mastered, in
// percent. Mastered topics outside the bank still count.
func (s *Store) Progress(ctx context.Context, totalTopics int) int {
	if totalTopics <= 0 {
		return 0
	}
	n := len(s.Mastered(ctx))
	return int(math.Round(100 * float64(n) / float64(totalTopics)))
}
