package chat

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mathia/internal/history"
	"github.com/abhisek/mathia/internal/router"
	"github.com/abhisek/mathia/internal/screen/screentest"
	"github.com/abhisek/mathia/internal/session"
)

func TestChatScreen_Title(t *testing.T) {
	s := New(screentest.NewEnv(t))
	if s.Title() != "Discussion" {
		t.Errorf("Title = %q, want %q", s.Title(), "Discussion")
	}
}

func TestChatScreen_ShowsGreeting(t *testing.T) {
	s := New(screentest.NewEnv(t))
	view := s.View(100, 30)
	if !strings.Contains(view, "MathIA") {
		t.Error("expected the tutor label in the view")
	}
}

func TestChatScreen_SubmitHandsLineToAssistant(t *testing.T) {
	env := screentest.NewEnv(t)
	s := New(env)
	s.input.Model.SetValue("quiz")

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter")
	}
	if !s.busy {
		t.Error("expected the screen to be busy until the line is handled")
	}
	if s.input.Value() != "" {
		t.Errorf("input = %q, want it cleared", s.input.Value())
	}

	msg := cmd()
	if _, ok := msg.(handledMsg); !ok {
		t.Fatalf("cmd returned %T, want handledMsg", msg)
	}
	s.Update(msg)
	if s.busy {
		t.Error("expected busy to clear after handledMsg")
	}

	msgs := env.Assistant.Transcript().Messages()
	if len(msgs) < 3 {
		t.Fatalf("transcript has %d messages, want at least 3", len(msgs))
	}
	if msgs[1].Sender != history.SenderUser || msgs[1].Text != "quiz" {
		t.Errorf("msgs[1] = %+v, want the learner's line", msgs[1])
	}
}

func TestChatScreen_EmptySubmitIgnored(t *testing.T) {
	s := New(screentest.NewEnv(t))
	s.input.Model.SetValue("   ")
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("expected no command for a blank line")
	}
}

func TestChatScreen_ExamStatus(t *testing.T) {
	env := screentest.NewEnv(t)
	env.Assistant.Engine().StartExam(env.Ctx, "théorème de pythagore")
	if env.Assistant.Engine().Mode() != session.ModeExam {
		t.Fatal("exam did not start")
	}

	s := New(env)
	status := s.Status()
	if !strings.Contains(status, "5:00") {
		t.Errorf("Status = %q, want the full countdown", status)
	}
	if !strings.Contains(status, "Question 1/") {
		t.Errorf("Status = %q, want the question counter", status)
	}
	if s.clock() == nil {
		t.Error("expected a clock tick during an exam")
	}
}

func TestChatScreen_BackSavesAndPops(t *testing.T) {
	env := screentest.NewEnv(t)
	env.Assistant.Handle(env.Ctx, "quiz")

	s := New(env)
	cmd := s.Back()
	if cmd == nil {
		t.Fatal("expected a command from Back")
	}
	if again := s.Back(); again != nil {
		t.Error("expected Back to be ignored while leaving")
	}

	msg := cmd()
	left, ok := msg.(leftMsg)
	if !ok {
		t.Fatalf("cmd returned %T, want leftMsg", msg)
	}
	if left.Err != nil {
		t.Fatalf("Leave: %v", left.Err)
	}

	_, pop := s.Update(left)
	if pop == nil {
		t.Fatal("expected a pop command")
	}
	if _, ok := pop().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}

	if n := len(env.History.Load(env.Ctx)); n != 1 {
		t.Errorf("history has %d entries, want the saved chat", n)
	}
}

func TestChatScreen_KeyHints(t *testing.T) {
	s := New(screentest.NewEnv(t))
	if len(s.KeyHints()) != 4 {
		t.Errorf("KeyHints length = %d, want 4", len(s.KeyHints()))
	}
}
