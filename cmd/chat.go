package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathia/internal/assistant"
	"github.com/abhisek/mathia/internal/history"
	"github.com/abhisek/mathia/internal/ui/richtext"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the tutor line by line (no TUI)",
	Long: `Chat with the tutor on standard input and output.

Every command of the chat screen works here: « quiz », « examen »,
« pratiquer », lesson names, exercise answers. Type « quitter » or send EOF
to leave; the conversation is saved to the history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		a := newAssistant(ctx, cmd, d)
		out := cmd.OutOrStdout()
		p := &transcriptPrinter{w: out, transcript: a.Transcript()}
		p.flush()

		// The exam countdown writes to the transcript between lines.
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-done:
					return
				case <-a.Transcript().Changed():
					p.flush()
				}
			}
		}()

		scanner := bufio.NewScanner(cmd.InOrStdin())
		fmt.Fprint(out, "> ")
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "quitter" || line == "exit" {
				break
			}
			if line != "" {
				a.Handle(ctx, line)
				p.flush()
			}
			fmt.Fprint(out, "> ")
		}
		close(done)
		fmt.Fprintln(out)

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := a.Leave(ctx); err != nil {
			return fmt.Errorf("save chat: %w", err)
		}
		return nil
	},
}

// transcriptPrinter writes tutor messages not printed yet. The learner's
// own lines are already on the terminal.
type transcriptPrinter struct {
	mu         sync.Mutex
	w          io.Writer
	transcript *assistant.Transcript
	printed    int
}

func (p *transcriptPrinter) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()

	msgs := p.transcript.Messages()
	if p.printed > len(msgs) {
		p.printed = 0
	}
	for _, m := range msgs[p.printed:] {
		if m.Sender == history.SenderAI {
			fmt.Fprintf(p.w, "\nMathIA : %s\n\n", richtext.Plain(m.Text))
		}
	}
	p.printed = len(msgs)
}
