package screen

import (
	"context"

	"github.com/abhisek/mathia/internal/assistant"
	"github.com/abhisek/mathia/internal/history"
	"github.com/abhisek/mathia/internal/knowledge"
	"github.com/abhisek/mathia/internal/store"
)

// Env carries the services shared by every screen.
type Env struct {
	Ctx       context.Context
	Assistant *assistant.Assistant
	History   *history.Store
	Bank      *knowledge.Bank

	// Events is nil when the event store is unavailable.
	Events store.EventRepo
}
