package history

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const customPrefix = "custom-"

var whitespace = regexp.MustCompile(`\s+`)

// Goals returns the learning goals in insertion order.
func (s *Store) Goals(ctx context.Context) []Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.goals(ctx)
}

func (s *Store) goals(ctx context.Context) []Goal {
	raw, ok := s.get(ctx, KeyGoals)
	if !ok {
		return []Goal{}
	}
	var goals []Goal
	if err := json.Unmarshal([]byte(raw), &goals); err != nil {
		s.logger.Warn("discarding unreadable goals", "error", err)
		return []Goal{}
	}
	return goals
}

func (s *Store) saveGoals(ctx context.Context, goals []Goal) error {
	data, err := json.Marshal(goals)
	if err != nil {
		return fmt.Errorf("encode goals: %w", err)
	}
	if err := s.kv.Set(ctx, KeyGoals, string(data)); err != nil {
		return fmt.Errorf("save goals: %w", err)
	}
	return nil
}

// HasGoal reports whether a goal exists for topic.
func (s *Store) HasGoal(ctx context.Context, topic string) bool {
	return slices.ContainsFunc(s.Goals(ctx), func(g Goal) bool { return g.Topic == topic })
}

// AddGoal adds a goal for a bank topic. It reports false when the topic
// already has a goal.
func (s *Store) AddGoal(ctx context.Context, topic, title string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals := s.goals(ctx)
	if slices.ContainsFunc(goals, func(g Goal) bool { return g.Topic == topic }) {
		return false, nil
	}
	if err := s.saveGoals(ctx, append(goals, Goal{Topic: topic, Title: title})); err != nil {
		return false, err
	}
	return true, nil
}

// AddCustomGoal adds a free-text goal under a synthetic key. Blank titles
// and titles already present (ignoring case) are refused with ok == false.
func (s *Store) AddCustomGoal(ctx context.Context, title string) (goal Goal, ok bool, err error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Goal{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	goals := s.goals(ctx)
	if slices.ContainsFunc(goals, func(g Goal) bool { return strings.EqualFold(g.Title, title) }) {
		return Goal{}, false, nil
	}

	slug := whitespace.ReplaceAllString(strings.ToLower(title), "-")
	goal = Goal{
		Topic: customPrefix + slug + "-" + strconv.FormatInt(s.now().UnixMilli(), 10),
		Title: title,
	}
	if err := s.saveGoals(ctx, append(goals, goal)); err != nil {
		return Goal{}, false, err
	}
	return goal, true, nil
}

// RemoveGoal deletes the goal for topic. Unknown topics are a no-op.
func (s *Store) RemoveGoal(ctx context.Context, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	goals := slices.DeleteFunc(s.goals(ctx), func(g Goal) bool { return g.Topic == topic })
	return s.saveGoals(ctx, goals)
}

// Completed reports whether goal's topic is mastered. Completion is derived,
// never stored.
func (s *Store) Completed(ctx context.Context, goal Goal) bool {
	return s.IsMastered(ctx, goal.Topic)
}
