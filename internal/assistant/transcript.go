package assistant

import (
	"sync"

	"github.com/abhisek/mathia/internal/history"
)

// Transcript is the chat shown to the learner. It implements session.Sink
// and is safe for concurrent use.
type Transcript struct {
	mu       sync.Mutex
	messages []history.Message
	notify   chan struct{}
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{notify: make(chan struct{}, 1)}
}

// Emit appends a tutor message.
func (t *Transcript) Emit(text string) {
	t.Add(history.SenderAI, text)
}

// Add appends a message and signals Changed.
func (t *Transcript) Add(sender history.Sender, text string) {
	t.mu.Lock()
	t.messages = append(t.messages, history.Message{Sender: sender, Text: text})
	t.mu.Unlock()
	t.signal()
}

// Messages returns a copy of the transcript, oldest first.
func (t *Transcript) Messages() []history.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]history.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Replace swaps the whole transcript, as when a saved chat is reopened.
func (t *Transcript) Replace(messages []history.Message) {
	t.mu.Lock()
	t.messages = append([]history.Message(nil), messages...)
	t.mu.Unlock()
	t.signal()
}

// Changed receives a value after one or more updates. Updates that happen
// while a signal is pending are coalesced into it.
func (t *Transcript) Changed() <-chan struct{} {
	return t.notify
}

func (t *Transcript) signal() {
	select {
	case t.notify <- struct{}{}:
	default:
	}
}
