// Package assistant turns the learner's chat input into lessons, sessions
// and tutor replies, and keeps the transcript that is saved to history.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/abhisek/mathia/internal/history"
	"github.com/abhisek/mathia/internal/knowledge"
	"github.com/abhisek/mathia/internal/session"
	"github.com/abhisek/mathia/internal/tutor"
)

// Greeting opens every new chat.
const Greeting = "Bonjour ! Je suis MathIA. Comment puis-je t'aider avec les mathématiques aujourd'hui ?"

// Fixed replies.
const (
	msgAskConcept    = "De quel concept mathématique aimerais-tu que je te parle ?"
	msgAskQuiz       = "Super ! Sur quel sujet veux-tu être interrogé ? Par exemple : le théorème de Pythagore."
	msgAskExam       = "Parfait ! Sur quel sujet veux-tu passer un examen ?"
	msgAskPractice   = "Super ! Sur quel sujet veux-tu t'entraîner ? Par exemple : fonctions du second degré."
	msgCannotAnswer  = "Désolé, je n'ai pas pu traiter ta demande. Peux-tu reformuler ?"
	msgGoalExists    = "Cet objectif est déjà dans votre liste."
	msgModuleFailed  = "Désolé, une erreur est survenue lors de la création de ton module d'apprentissage. Pourrais-tu réessayer ?"
	msgNoLessonShown = "Affiche d'abord une leçon pour répondre à ses exercices."
	defaultChatTitle = "Conversation sauvegardée"
)

// Tutor is the LLM-backed part of the assistant.
type Tutor interface {
	Explain(ctx context.Context, query string) (string, error)
	Guide(ctx context.Context, transcript []history.Message, query string) (string, error)
	Title(ctx context.Context, transcript []history.Message) (string, error)
	GoalModule(ctx context.Context, goal string) (*tutor.Module, error)
}

// Options wires an Assistant. Tutor may be nil when no LLM provider is
// configured.
type Options struct {
	Engine     *session.Engine
	Bank       *knowledge.Bank
	History    *history.Store
	Transcript *Transcript
	Tutor      Tutor
	Logger     *slog.Logger
}

// Assistant routes chat input. Handle blocks on LLM calls and is meant to
// be called off the UI goroutine, one message at a time.
type Assistant struct {
	engine     *session.Engine
	bank       *knowledge.Bank
	history    *history.Store
	transcript *Transcript
	tutor      Tutor
	logger     *slog.Logger

	mu sync.Mutex
	// replay is set while a saved chat or lesson is reopened; such chats
	// are never saved again.
	replay bool
	// lessonTopic is the last lesson shown, the target of exercise answers
	// and the goal command.
	lessonTopic string
}

// New creates an Assistant. The transcript starts with the greeting.
func New(opts Options) *Assistant {
	a := &Assistant{
		engine:     opts.Engine,
		bank:       opts.Bank,
		history:    opts.History,
		transcript: opts.Transcript,
		tutor:      opts.Tutor,
		logger:     opts.Logger,
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	if a.transcript.Len() == 0 {
		a.transcript.Emit(Greeting)
	}
	return a
}

// Transcript returns the chat transcript.
func (a *Assistant) Transcript() *Transcript {
	return a.transcript
}

// Engine returns the session engine.
func (a *Assistant) Engine() *session.Engine {
	return a.engine
}

// HasTutor reports whether an LLM provider is configured.
func (a *Assistant) HasTutor() bool {
	return a.tutor != nil
}

// Handle processes one line of learner input.
func (a *Assistant) Handle(ctx context.Context, text string) {
	query := strings.TrimSpace(text)
	if query == "" {
		return
	}

	mode := a.engine.Mode()
	// Exam answers stay off the transcript until the report.
	if mode != session.ModeExam {
		a.transcript.Add(history.SenderUser, query)
	}
	if a.engine.Submit(ctx, query) {
		return
	}

	if a.handleLessonReply(ctx, query) {
		return
	}

	lower := strings.ToLower(query)
	switch {
	case containsAny(lower, "explique", "concept"):
		if topic, ok := knowledge.FindTopic(lower, a.bank.LessonTopics()); ok {
			a.ShowLesson(ctx, topic)
		} else {
			a.transcript.Emit(msgAskConcept)
		}
	case strings.Contains(lower, "quiz"):
		if topic, ok := knowledge.FindTopic(lower, a.bank.QuizTopics()); ok {
			a.engine.StartQuiz(ctx, topic)
		} else {
			a.transcript.Emit(msgAskQuiz)
		}
	case strings.Contains(lower, "examen"):
		if topic, ok := knowledge.FindTopic(lower, a.bank.QuizTopics()); ok {
			a.engine.StartExam(ctx, topic)
		} else {
			a.transcript.Emit(msgAskExam + topicList(a.bank, a.bank.QuizTopics()))
		}
	case containsAny(lower, "pratiquer", "entraînement", "exercices sur"):
		if topic, ok := knowledge.FindTopic(lower, a.bank.PracticeTopics()); ok {
			a.engine.StartPractice(ctx, topic)
		} else {
			a.transcript.Emit(msgAskPractice)
		}
	case containsAny(lower, "exercice", "aide"):
		a.engine.StartTutor(ctx)
	default:
		topics := append(a.bank.LessonTopics(), a.bank.QuizTopics()...)
		if topic, ok := knowledge.FindTopic(lower, topics); ok {
			a.ShowLesson(ctx, topic)
			return
		}
		a.ask(ctx, mode, query)
	}
}

// handleLessonReply answers the interactive exercises and the goal command
// of the lesson on screen.
func (a *Assistant) handleLessonReply(ctx context.Context, query string) bool {
	if strings.EqualFold(query, goalCommand) {
		topic := a.currentLesson()
		if topic == "" {
			return false
		}
		a.SetGoal(ctx, topic)
		return true
	}

	index, answer, ok := parseExerciseAnswer(query)
	if !ok {
		return false
	}
	topic := a.currentLesson()
	if topic == "" {
		a.transcript.Emit(msgNoLessonShown)
		return true
	}
	ex, ok := a.bank.Exercise(topic, index)
	if !ok {
		a.transcript.Emit(fmt.Sprintf("Cette leçon n'a pas d'exercice %d.", index+1))
		return true
	}
	a.transcript.Emit(ex.Feedback(answer))
	return true
}

// ask sends free text to the tutor: a guided reply in tutor mode, a lesson
// otherwise.
func (a *Assistant) ask(ctx context.Context, mode session.Mode, query string) {
	if a.tutor == nil {
		a.transcript.Emit(msgCannotAnswer)
		return
	}

	var (
		reply string
		err   error
	)
	if mode == session.ModeTutor {
		msgs := a.transcript.Messages()
		reply, err = a.tutor.Guide(ctx, msgs[:len(msgs)-1], query)
	} else {
		reply, err = a.tutor.Explain(ctx, query)
	}
	if err != nil {
		a.logger.Warn("tutor request failed", "mode", mode.String(), "error", err)
		a.transcript.Emit(msgCannotAnswer)
		return
	}
	a.transcript.Emit(reply)
}

// ShowLesson renders the bank lesson for topic and records it in history.
func (a *Assistant) ShowLesson(ctx context.Context, topic string) {
	lesson, ok := a.bank.Lesson(topic)
	if !ok {
		a.transcript.Emit(fmt.Sprintf("Désolé, je n'ai pas de leçon sur \"%s\".", topic))
		return
	}
	if _, err := a.history.RecordLesson(ctx, topic, lesson.Title); err != nil {
		a.logger.Warn("record lesson failed", "topic", topic, "error", err)
	}

	a.mu.Lock()
	a.lessonTopic = topic
	a.mu.Unlock()

	a.transcript.Emit(renderLesson(a.bank, topic, lesson, a.history.HasGoal(ctx, topic)))
}

func (a *Assistant) currentLesson() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lessonTopic
}

// SetGoal adds the lesson of topic to the learning goals.
func (a *Assistant) SetGoal(ctx context.Context, topic string) {
	title := a.bank.LessonTitle(topic)
	added, err := a.history.AddGoal(ctx, topic, title)
	switch {
	case err != nil:
		a.logger.Warn("add goal failed", "topic", topic, "error", err)
		a.transcript.Emit(msgCannotAnswer)
	case !added:
		a.transcript.Emit(msgGoalExists)
	default:
		a.transcript.Emit(fmt.Sprintf("Super ! J'ai ajouté \"<strong>%s</strong>\" à tes objectifs d'apprentissage.", title))
	}
}

// BuildGoalModule asks the tutor for a mini learning module on goal.
func (a *Assistant) BuildGoalModule(ctx context.Context, goal history.Goal) {
	a.transcript.Emit(fmt.Sprintf("Parfait ! Je prépare un mini-module d'apprentissage sur \"<strong>%s</strong>\" pour toi...", goal.Title))
	if a.tutor == nil {
		a.transcript.Emit(msgModuleFailed)
		return
	}
	module, err := a.tutor.GoalModule(ctx, goal.Title)
	if err != nil {
		a.logger.Warn("goal module failed", "goal", goal.Title, "error", err)
		a.transcript.Emit(msgModuleFailed)
		return
	}
	a.transcript.Emit(module.HTML())
}

// SaveChat stores the transcript as a chat entry. Nothing is saved for a
// chat holding only the greeting or for a reopened history entry. It
// reports whether an entry was written.
func (a *Assistant) SaveChat(ctx context.Context) (bool, error) {
	a.mu.Lock()
	replay := a.replay
	a.mu.Unlock()

	msgs := a.transcript.Messages()
	if len(msgs) <= 1 || replay {
		return false, nil
	}

	title := defaultChatTitle
	if a.tutor != nil {
		t, err := a.tutor.Title(ctx, msgs)
		if err != nil {
			a.logger.Warn("chat title failed", "error", err)
		} else {
			title = t
		}
	}

	if _, err := a.history.Append(ctx, history.Entry{
		Kind:       history.KindChat,
		Title:      title,
		Transcript: msgs,
	}); err != nil {
		return false, fmt.Errorf("save chat: %w", err)
	}
	return true, nil
}

// NewChat saves the current chat and starts a fresh one.
func (a *Assistant) NewChat(ctx context.Context) error {
	return a.Leave(ctx)
}

// OpenChat saves the current chat and shows a history entry: the saved
// transcript of a chat or the lesson of a lesson entry. The reopened chat
// is not saved again.
func (a *Assistant) OpenChat(ctx context.Context, id string) error {
	entry, err := a.history.Get(ctx, id)
	if err != nil {
		return err
	}
	leaveErr := a.Leave(ctx)
	a.reset(true)
	if entry.IsChat() {
		a.transcript.Replace(entry.Transcript)
		return leaveErr
	}
	a.transcript.Replace(nil)
	a.ShowLesson(ctx, entry.Topic)
	return leaveErr
}

// Leave abandons the active session, cancelling any exam countdown, saves
// the chat and starts over with the greeting.
func (a *Assistant) Leave(ctx context.Context) error {
	a.engine.Abandon(ctx)
	_, err := a.SaveChat(ctx)
	a.reset(false)
	a.transcript.Replace([]history.Message{{Sender: history.SenderAI, Text: Greeting}})
	return err
}

// Replaying reports whether the transcript is a reopened history entry.
func (a *Assistant) Replaying() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.replay
}

func (a *Assistant) reset(replay bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replay = replay
	a.lessonTopic = ""
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
