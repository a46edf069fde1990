package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		topics := d.bank.QuizTopics()
		mastered := d.history.Mastered(ctx)
		fmt.Printf("Mastery:   %d/%d topics (%d%%)\n",
			len(mastered), len(topics), d.history.Progress(ctx, len(topics)))
		fmt.Printf("Goals:     %d\n", len(d.history.Goals(ctx)))
		fmt.Printf("History:   %d entries\n", len(d.history.Load(ctx)))
		fmt.Printf("Tutor:     %s\n", d.history.Personality(ctx).Label())

		stats, err := d.store.EventRepo().SessionStats(ctx)
		if err != nil {
			return fmt.Errorf("query session stats: %w", err)
		}
		if len(stats) == 0 {
			fmt.Println("\nNo quiz or exam finished yet.")
			return nil
		}

		fmt.Println()
		fmt.Printf("%-40s  %8s  %6s  %s\n", "Topic", "Sessions", "Best", "Mastered")
		fmt.Println(strings.Repeat("─", 70))
		for _, st := range stats {
			mark := ""
			if st.Mastered || d.history.IsMastered(ctx, st.Topic) {
				mark = "★"
			}
			fmt.Printf("%-40s  %8d  %5d%%  %s\n",
				truncate(d.bank.LessonTitle(st.Topic), 40), st.Sessions, st.BestPercent, mark)
		}
		return nil
	},
}
