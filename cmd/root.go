package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/mathia/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "mathia",
	Short: "Tuteur de mathématiques dans le terminal",
	Long: `MathIA, tuteur de mathématiques en français pour le terminal.

Leçons, quiz adaptatifs, examens chronométrés et exercices corrigés par un LLM.
Configurez un fournisseur avec GEMINI_API_KEY, OPENAI_API_KEY,
ANTHROPIC_API_KEY ou OPENROUTER_API_KEY (ou MATHIA_LLM_PROVIDER et
MATHIA_<FOURNISSEUR>_API_KEY). Sans clé, les leçons, quiz et examens restent
disponibles.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides MATHIA_DB env var)")
	pf.String("kv", "sqlite", "Key-value backend for history and settings: sqlite or badger")
	pf.String("bank", "", "Path to a knowledge bank YAML file (overrides MATHIA_BANK env var)")
	pf.String("log-file", "", "Log file (default: mathia.log in the data directory)")
	pf.String("env-file", "", "Load environment variables from this file (default: .env if present)")
	pf.Bool("adaptive", false, "Use the adaptive quiz (all difficulties, capped length)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(goalsCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnvFile loads --env-file, or .env when it exists. Variables already
// set in the environment win.
func loadEnvFile(cmd *cobra.Command) error {
	if p, _ := cmd.Flags().GetString("env-file"); p != "" {
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load env file %s: %w", p, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then MATHIA_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
