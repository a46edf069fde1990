package settings

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathia/internal/history"
	"github.com/abhisek/mathia/internal/screen/screentest"
)

func TestSettingsScreen_MarksCurrentPersonality(t *testing.T) {
	env := screentest.NewEnv(t)
	if err := env.History.SetPersonality(env.Ctx, history.PersonalityCoach); err != nil {
		t.Fatal(err)
	}
	s := New(env)
	if got := s.personalities[s.choice.Current]; got != history.PersonalityCoach {
		t.Errorf("current = %q, want %q", got, history.PersonalityCoach)
	}
}

func TestSettingsScreen_SelectSavesPersonality(t *testing.T) {
	env := screentest.NewEnv(t)
	s := New(env)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a save command")
	}
	s.Update(cmd())

	if got := env.History.Personality(env.Ctx); got != history.PersonalityFormal {
		t.Errorf("Personality = %q, want %q", got, history.PersonalityFormal)
	}
	if s.notice == "" {
		t.Error("expected a confirmation notice")
	}
}
