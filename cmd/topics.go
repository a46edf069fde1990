package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathia/internal/knowledge"
	"github.com/abhisek/mathia/internal/ui/richtext"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Browse the knowledge bank",
}

var topicsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every topic with its available material",
	RunE: func(cmd *cobra.Command, args []string) error {
		bank, err := openBank(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("%-28s  %-40s  %6s  %4s  %8s  %9s\n",
			"Key", "Title", "Lesson", "Quiz", "Practice", "Exercises")
		fmt.Println(strings.Repeat("─", 104))

		for _, key := range bank.Topics() {
			_, hasLesson := bank.Lesson(key)
			lesson := "-"
			if hasLesson {
				lesson = "yes"
			}
			fmt.Printf("%-28s  %-40s  %6s  %4d  %8d  %9d\n",
				truncate(key, 28), truncate(bank.LessonTitle(key), 40), lesson,
				len(bank.Quiz(key)), len(bank.Practice(key)), len(bank.Exercises(key)))
		}

		fmt.Printf("\n%d topics (bank %s)\n", len(bank.Topics()), bank.Version())
		return nil
	},
}

var topicsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search lessons, quizzes and practice sets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bank, err := openBank(cmd)
		if err != nil {
			return err
		}

		results := bank.Search(strings.Join(args, " "))
		if len(results) == 0 {
			fmt.Println(knowledge.NoResults)
			return nil
		}
		for _, r := range results {
			fmt.Printf("%-10s  %-28s  %s\n", r.Kind.Label(), r.Topic, r.Text)
		}
		return nil
	},
}

var topicsShowCmd = &cobra.Command{
	Use:   "show <topic>",
	Short: "Print a lesson and its exercises",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bank, err := openBank(cmd)
		if err != nil {
			return err
		}

		query := strings.Join(args, " ")
		key, ok := knowledge.FindTopic(query, bank.LessonTopics())
		if !ok {
			return fmt.Errorf("no lesson found for %q", query)
		}
		lesson, _ := bank.Lesson(key)

		fmt.Println(lesson.Title)
		fmt.Println(strings.Repeat("─", 60))
		printLesson(lesson)

		exercises := bank.Exercises(key)
		if len(exercises) > 0 {
			fmt.Println("\nExercices")
			for i, ex := range exercises {
				fmt.Printf("  %d. %s\n", i+1, richtext.Plain(ex.Question))
				for _, opt := range ex.Options {
					fmt.Printf("     • %s\n", opt)
				}
			}
		}
		return nil
	},
}

// printLesson writes the lesson sections that are present.
func printLesson(l knowledge.Lesson) {
	sections := []struct{ label, text string }{
		{"Définition", l.Definition},
		{"Formule", l.Formula},
		{"Exemple", l.Example},
		{"Utilisation", l.Usage},
	}
	for _, s := range sections {
		if s.text == "" {
			continue
		}
		fmt.Printf("%s : %s\n", s.label, richtext.Plain(s.text))
	}
}

func init() {
	topicsCmd.AddCommand(topicsListCmd)
	topicsCmd.AddCommand(topicsSearchCmd)
	topicsCmd.AddCommand(topicsShowCmd)
}
