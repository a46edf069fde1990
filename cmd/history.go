package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathia/internal/history"
	"github.com/abhisek/mathia/internal/ui/richtext"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse saved lessons and chats",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		entries := d.history.Load(cmd.Context())
		if len(entries) == 0 {
			fmt.Println("No history yet.")
			return nil
		}

		fmt.Printf("%-36s  %-6s  %-16s  %s\n", "ID", "Kind", "Created", "Title")
		fmt.Println(strings.Repeat("─", 90))
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			created := "-"
			if !e.CreatedAt.IsZero() {
				created = e.CreatedAt.Local().Format("2006-01-02 15:04")
			}
			fmt.Printf("%-36s  %-6s  %-16s  %s\n", truncate(e.ID, 36), e.Kind, created, e.Title)
		}
		fmt.Printf("\n%d entries\n", len(entries))
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved chat transcript or lesson",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		e, err := d.history.Get(cmd.Context(), args[0])
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("entry %q not found", args[0])
		}
		if err != nil {
			return err
		}

		fmt.Printf("%s %s\n", e.Icon(), e.Title)
		fmt.Println(strings.Repeat("─", 60))

		if !e.IsChat() {
			lesson, ok := d.bank.Lesson(e.Topic)
			if !ok {
				return fmt.Errorf("lesson %q is no longer in the bank", e.Topic)
			}
			printLesson(lesson)
			return nil
		}
		for _, m := range e.Transcript {
			who := "MathIA"
			if m.Sender == history.SenderUser {
				who = "Toi"
			}
			fmt.Printf("%s : %s\n\n", who, richtext.Plain(m.Text))
		}
		return nil
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		if _, err := d.history.Get(ctx, args[0]); err != nil {
			return err
		}
		if err := d.history.Remove(ctx, args[0]); err != nil {
			return fmt.Errorf("remove entry: %w", err)
		}
		fmt.Printf("Removed %s\n", args[0])
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRmCmd)
}
