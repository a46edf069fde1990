package history

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownPersonality is returned by SetPersonality for an unknown value.
var ErrUnknownPersonality = errors.New("history: unknown personality")

// Personality returns the stored tutor personality, or DefaultPersonality
// when none is stored or the stored value is unknown.
func (s *Store) Personality(ctx context.Context) Personality {
	raw, ok := s.get(ctx, KeyPersonality)
	if !ok {
		return DefaultPersonality
	}
	p := Personality(raw)
	if !p.Valid() {
		return DefaultPersonality
	}
	return p
}

// SetPersonality stores p.
func (s *Store) SetPersonality(ctx context.Context, p Personality) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPersonality, p)
	}
	if err := s.kv.Set(ctx, KeyPersonality, string(p)); err != nil {
		return fmt.Errorf("save personality: %w", err)
	}
	return nil
}
