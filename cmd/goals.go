package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Manage learning goals",
}

var goalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List learning goals and whether they are reached",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		goals := d.history.Goals(ctx)
		if len(goals) == 0 {
			fmt.Println("No goals yet.")
			return nil
		}
		for _, g := range goals {
			mark := "⬜"
			if d.history.Completed(ctx, g) {
				mark = "✅"
			}
			fmt.Printf("%s  %-40s  %s\n", mark, truncate(g.Title, 40), g.Topic)
		}
		return nil
	},
}

var goalsAddCmd = &cobra.Command{
	Use:   "add <topic or goal>",
	Short: "Add a goal for a bank topic, or a free-text goal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		text := strings.Join(args, " ")

		if _, ok := d.bank.Lesson(text); ok {
			added, err := d.history.AddGoal(ctx, text, d.bank.LessonTitle(text))
			if err != nil {
				return fmt.Errorf("add goal: %w", err)
			}
			if !added {
				fmt.Printf("%q is already a goal.\n", text)
				return nil
			}
			fmt.Printf("Added goal %s\n", d.bank.LessonTitle(text))
			return nil
		}

		goal, added, err := d.history.AddCustomGoal(ctx, text)
		if err != nil {
			return fmt.Errorf("add goal: %w", err)
		}
		if !added {
			fmt.Printf("%q is already a goal.\n", text)
			return nil
		}
		fmt.Printf("Added goal %s (%s)\n", goal.Title, goal.Topic)
		return nil
	},
}

var goalsRmCmd = &cobra.Command{
	Use:   "rm <topic>",
	Short: "Remove the goal for a topic key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		ctx := cmd.Context()
		if !d.history.HasGoal(ctx, args[0]) {
			return fmt.Errorf("no goal for %q", args[0])
		}
		if err := d.history.RemoveGoal(ctx, args[0]); err != nil {
			return fmt.Errorf("remove goal: %w", err)
		}
		fmt.Printf("Removed goal %s\n", args[0])
		return nil
	},
}

func init() {
	goalsCmd.AddCommand(goalsListCmd)
	goalsCmd.AddCommand(goalsAddCmd)
	goalsCmd.AddCommand(goalsRmCmd)
}
