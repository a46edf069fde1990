package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathia/internal/app"
	"github.com/abhisek/mathia/internal/assistant"
	"github.com/abhisek/mathia/internal/history"
	"github.com/abhisek/mathia/internal/knowledge"
	"github.com/abhisek/mathia/internal/llm"
	"github.com/abhisek/mathia/internal/logging"
	"github.com/abhisek/mathia/internal/screen"
	"github.com/abhisek/mathia/internal/session"
	"github.com/abhisek/mathia/internal/store"
	"github.com/abhisek/mathia/internal/store/badgerkv"
	"github.com/abhisek/mathia/internal/tutor"
)

// deps holds everything a command needs, opened from the persistent flags.
type deps struct {
	store   *store.Store
	kv      store.KV
	bank    *knowledge.Bank
	history *history.Store
	logger  *slog.Logger

	closers []io.Closer
}

// openDeps opens the database, the KV backend, the bank and the logger.
func openDeps(cmd *cobra.Command) (*deps, error) {
	d := &deps{}

	logger, closer, err := openLogger(cmd)
	if err != nil {
		return nil, err
	}
	d.logger = logger
	d.closers = append(d.closers, closer)

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	d.store = st
	d.closers = append(d.closers, st)

	d.kv, err = openKV(cmd, st, logger)
	if err != nil {
		d.Close()
		return nil, err
	}
	if c, ok := d.kv.(io.Closer); ok {
		d.closers = append(d.closers, c)
	}

	d.bank, err = openBank(cmd)
	if err != nil {
		d.Close()
		return nil, err
	}

	d.history = history.New(d.kv, logger)
	logger.Debug("dependencies ready", "db", dbPath, "bank", d.bank.Version())
	return d, nil
}

// Close releases everything openDeps opened, newest first.
func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil && d.logger != nil {
			d.logger.Warn("close", "error", err)
		}
	}
	d.closers = nil
}

func openLogger(cmd *cobra.Command) (*slog.Logger, io.Closer, error) {
	file, _ := cmd.Flags().GetString("log-file")
	if file == "" {
		dir, err := store.DataDir()
		if err != nil {
			return nil, nil, err
		}
		file = filepath.Join(dir, "mathia.log")
	}
	logger, closer, err := logging.New(logging.ConfigFromEnv(file))
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	return logger, closer, nil
}

func openKV(cmd *cobra.Command, st *store.Store, logger *slog.Logger) (store.KV, error) {
	backend, _ := cmd.Flags().GetString("kv")
	switch backend {
	case "", "sqlite":
		return st.KV(), nil
	case "badger":
		dir := os.Getenv("MATHIA_KV_DIR")
		if dir == "" {
			data, err := store.DataDir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(data, "kv")
		}
		kv, err := badgerkv.Open(badgerkv.Config{Dir: dir, Logger: logger})
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return nil, fmt.Errorf("unknown --kv backend %q: must be sqlite or badger", backend)
	}
}

func openBank(cmd *cobra.Command) (*knowledge.Bank, error) {
	path, _ := cmd.Flags().GetString("bank")
	if path == "" {
		path = os.Getenv("MATHIA_BANK")
	}
	if path == "" {
		return knowledge.Default(), nil
	}
	return knowledge.Load(path)
}

// newAssistant builds the session engine, the tutor when a provider is
// configured, and the assistant over a fresh transcript.
func newAssistant(ctx context.Context, cmd *cobra.Command, d *deps) *assistant.Assistant {
	adaptive, _ := cmd.Flags().GetBool("adaptive")
	cfg := session.DefaultConfig()
	cfg.Adaptive = adaptive

	events := d.store.EventRepo()
	transcript := assistant.NewTranscript()
	opts := session.Options{
		Config:  cfg,
		Bank:    d.bank,
		Sink:    transcript,
		Mastery: d.history,
		Events:  events,
		Logger:  d.logger,
	}

	// t stays an untyped nil interface when no provider is configured.
	var t assistant.Tutor
	provider, llmCfg, err := llm.NewProviderFromEnv(ctx, events, d.logger)
	switch {
	case err == nil:
		tut := tutor.New(provider, d.history, tutor.DefaultConfig(), d.logger)
		t = tut
		opts.Grader = tut
		d.logger.Info("tutor enabled", "provider", llmCfg.Provider, "model", provider.ModelID())
	case errors.Is(err, llm.ErrNotConfigured):
		d.logger.Info("no LLM provider configured")
	default:
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "AI features will be unavailable.")
		d.logger.Warn("llm provider", "error", err)
	}

	return assistant.New(assistant.Options{
		Engine:     session.NewEngine(opts),
		Bank:       d.bank,
		History:    d.history,
		Transcript: transcript,
		Tutor:      t,
		Logger:     d.logger,
	})
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	env := &screen.Env{
		Ctx:       ctx,
		Assistant: newAssistant(ctx, cmd, d),
		History:   d.history,
		Bank:      d.bank,
		Events:    d.store.EventRepo(),
	}
	return app.Run(env, d.logger)
}
