// Package knowledge holds the static teaching material: lessons, quiz
// questions, practice exercises and interactive exercises, keyed by topic.
package knowledge

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var embeddedBank []byte

// ErrUnsupportedVersion is returned for a bank whose major version this
// build cannot read.
var ErrUnsupportedVersion = errors.New("knowledge: unsupported bank version")

// SupportedMajor is the bank format major version this build reads.
const SupportedMajor = "v1"

// Bank is a read-only view over the knowledge base. It is safe for
// concurrent use.
type Bank struct {
	version     string
	topics      []Topic
	byKey       map[string]*Topic
	suggestions []string
}

var (
	defaultOnce sync.Once
	defaultBank *Bank
)

// Default returns the bank shipped with the binary.
func Default() *Bank {
	defaultOnce.Do(func() {
		b, err := Parse(embeddedBank)
		if err != nil {
			panic(fmt.Sprintf("embedded knowledge bank: %v", err))
		}
		defaultBank = b
	})
	return defaultBank
}

// Load reads and validates a bank file.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bank: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("bank %s: %w", path, err)
	}
	return b, nil
}

// Parse decodes and validates a YAML bank document.
func Parse(data []byte) (*Bank, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}
	if err := validateDocument(&doc); err != nil {
		return nil, err
	}
	return newBank(doc), nil
}

func newBank(doc document) *Bank {
	b := &Bank{
		version: doc.Version,
		topics:  doc.Topics,
		byKey:   make(map[string]*Topic, len(doc.Topics)),
	}
	for i := range b.topics {
		b.byKey[b.topics[i].Key] = &b.topics[i]
	}
	b.suggestions = b.buildSuggestions()
	return b
}

// Version returns the bank's semantic version.
func (b *Bank) Version() string { return b.version }

// Topics returns every topic key in bank order.
func (b *Bank) Topics() []string {
	keys := make([]string, len(b.topics))
	for i, t := range b.topics {
		keys[i] = t.Key
	}
	return keys
}

func (b *Bank) topicsWhere(keep func(*Topic) bool) []string {
	var keys []string
	for i := range b.topics {
		if keep(&b.topics[i]) {
			keys = append(keys, b.topics[i].Key)
		}
	}
	return keys
}

// LessonTopics returns the topics that have a lesson.
func (b *Bank) LessonTopics() []string {
	return b.topicsWhere(func(t *Topic) bool { return t.Lesson != nil })
}

// QuizTopics returns the topics that have quiz questions.
func (b *Bank) QuizTopics() []string {
	return b.topicsWhere(func(t *Topic) bool { return len(t.Quiz) > 0 })
}

// PracticeTopics returns the topics that have practice exercises.
func (b *Bank) PracticeTopics() []string {
	return b.topicsWhere(func(t *Topic) bool { return len(t.Practice) > 0 })
}

// Lesson returns the lesson of topic.
func (b *Bank) Lesson(topic string) (Lesson, bool) {
	t, ok := b.byKey[topic]
	if !ok || t.Lesson == nil {
		return Lesson{}, false
	}
	return *t.Lesson, true
}

// LessonTitle returns the lesson title of topic, or the key itself when the
// topic has no lesson.
func (b *Bank) LessonTitle(topic string) string {
	if l, ok := b.Lesson(topic); ok {
		return l.Title
	}
	return topic
}

// Quiz returns a copy of the quiz questions of topic.
func (b *Bank) Quiz(topic string) []QuizQuestion {
	t, ok := b.byKey[topic]
	if !ok {
		return nil
	}
	return append([]QuizQuestion(nil), t.Quiz...)
}

// Practice returns a copy of the practice exercises of topic.
func (b *Bank) Practice(topic string) []PracticeExercise {
	t, ok := b.byKey[topic]
	if !ok {
		return nil
	}
	return append([]PracticeExercise(nil), t.Practice...)
}

// Exercises returns a copy of the interactive exercises of topic.
func (b *Bank) Exercises(topic string) []Exercise {
	t, ok := b.byKey[topic]
	if !ok {
		return nil
	}
	return append([]Exercise(nil), t.Exercises...)
}

// Exercise returns the interactive exercise at index for topic.
func (b *Bank) Exercise(topic string, index int) (Exercise, bool) {
	t, ok := b.byKey[topic]
	if !ok || index < 0 || index >= len(t.Exercises) {
		return Exercise{}, false
	}
	return t.Exercises[index], true
}

// FindTopic returns the first topic whose key appears in the lower-cased
// query.
func FindTopic(query string, topics []string) (string, bool) {
	q := strings.ToLower(query)
	for _, t := range topics {
		if strings.Contains(q, t) {
			return t, true
		}
	}
	return "", false
}
