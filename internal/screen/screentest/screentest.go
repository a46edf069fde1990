// Package screentest builds screen environments for tests: the embedded
// bank, an in-memory KV, no tutor and a ticker that never fires.
package screentest

import (
	"context"
	"testing"
	"time"

	"github.com/abhisek/mathia/internal/assistant"
	"github.com/abhisek/mathia/internal/history"
	"github.com/abhisek/mathia/internal/knowledge"
	"github.com/abhisek/mathia/internal/screen"
	"github.com/abhisek/mathia/internal/session"
	"github.com/abhisek/mathia/internal/store"
)

type idleTicker struct{}

func (idleTicker) Start(time.Duration, func()) func() { return func() {} }

// NewEnv returns a ready Env. Any session left running is abandoned when
// the test ends.
func NewEnv(t *testing.T) *screen.Env {
	t.Helper()

	ctx := context.Background()
	bank := knowledge.Default()
	hist := history.New(store.NewMemoryKV(), nil)
	tr := assistant.NewTranscript()
	engine := session.NewEngine(session.Options{
		Bank:    bank,
		Sink:    tr,
		Mastery: hist,
		Ticker:  idleTicker{},
	})
	a := assistant.New(assistant.Options{
		Engine:     engine,
		Bank:       bank,
		History:    hist,
		Transcript: tr,
	})
	t.Cleanup(func() { engine.Abandon(ctx) })

	return &screen.Env{
		Ctx:       ctx,
		Assistant: a,
		History:   hist,
		Bank:      bank,
	}
}
