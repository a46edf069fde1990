package history

import (
	"strings"
	"time"
)

// Kind discriminates history entries.
type Kind string

const (
	KindLesson Kind = "lesson"
	KindChat   Kind = "chat"
)

// Sender identifies the author of a transcript message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one line of a chat transcript. Text is HTML-ish rich text.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Entry is a completed interaction: a lesson that was viewed or a chat that
// was held.
type Entry struct {
	// ID is unique within the collection and assigned on Append.
	ID string `json:"id"`

	// Kind is KindLesson or KindChat.
	Kind Kind `json:"type"`

	// Topic is the knowledge bank key of a lesson entry.
	Topic string `json:"topic,omitempty"`

	// Title is shown in the history list.
	Title string `json:"title"`

	// Transcript holds the messages of a chat entry.
	Transcript []Message `json:"content,omitempty"`

	// CreatedAt is when the entry was appended. Zero for legacy records.
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// IsChat reports whether e is a chat entry.
func (e Entry) IsChat() bool { return e.Kind == KindChat }

// Icon returns the list icon for the entry kind.
func (e Entry) Icon() string {
	if e.IsChat() {
		return "💬"
	}
	return "📖"
}

// Goal is a user-managed learning objective. Topic is a knowledge bank key or
// a synthetic custom-... key for free-text goals.
type Goal struct {
	Topic string `json:"topic"`
	Title string `json:"title"`
}

// IsCustom reports whether the goal was typed by the user rather than picked
// from a lesson.
func (g Goal) IsCustom() bool {
	return strings.HasPrefix(g.Topic, customPrefix)
}

// Personality selects the tone of the tutor.
type Personality string

const (
	PersonalityFriendlyPeer Personality = "pair-amical"
	PersonalityFormal       Personality = "professeur-formel"
	PersonalityCoach        Personality = "coach-encourageant"
)

// DefaultPersonality is used when none has been chosen.
const DefaultPersonality = PersonalityFriendlyPeer

// Personalities returns every personality in display order.
func Personalities() []Personality {
	return []Personality{PersonalityFriendlyPeer, PersonalityFormal, PersonalityCoach}
}

// Valid reports whether p is a known personality.
func (p Personality) Valid() bool {
	switch p {
	case PersonalityFriendlyPeer, PersonalityFormal, PersonalityCoach:
		return true
	}
	return false
}

// Label returns the French display name.
func (p Personality) Label() string {
	switch p {
	case PersonalityFriendlyPeer:
		return "Pair amical"
	case PersonalityFormal:
		return "Professeur formel"
	case PersonalityCoach:
		return "Coach encourageant"
	default:
		return string(p)
	}
}
