// Package router is the inbound entry point: it decides what a student's
// message means and hands it to the owning state machine, falling back to
// classification-driven handling when no turn is open.
package router

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/tutorhk/tutorbot/core/logger"
	"github.com/tutorhk/tutorbot/tutor/activity"
	"github.com/tutorhk/tutorbot/tutor/classify"
	"github.com/tutorhk/tutorbot/tutor/content"
	"github.com/tutorhk/tutorbot/tutor/session"
	"github.com/tutorhk/tutorbot/tutor/transport"
)

// ActivityMachine is the per-activity state machine surface the router
// delegates to.
type ActivityMachine interface {
	Start(ctx context.Context, studentID int64) error
	HandleReply(ctx context.Context, studentID int64, reply string) error
}

// Triggers holds the tokens that select an activity when they appear as a
// standalone word in an inbound message. Matching is case-insensitive and
// ignores punctuation, so "/start" and "START!" both carry the greeting
// token while "starting" does not.
type Triggers struct {
	Greeting string
	Vocab    string
	Reading  string
	Reflect  string
}

// DefaultTriggers returns the stock trigger tokens.
func DefaultTriggers() Triggers {
	return Triggers{
		Greeting: "start",
		Vocab:    "vocab",
		Reading:  "reading",
		Reflect:  "reflect",
	}
}

// Router dispatches inbound replies with first-match-wins precedence:
// greeting trigger, activity trigger, open reflective turn, open reading
// turn, then the classification fallback cascade.
type Router struct {
	source    content.Source
	classify  classify.Classifier
	messenger transport.Messenger
	sessions  *session.Store
	locks     *session.KeyedMutex
	triggers  Triggers

	reading ActivityMachine
	open    ActivityMachine
	vocab   ActivityMachine
}

// Options collects the router's collaborators.
type Options struct {
	Source    content.Source
	Classify  classify.Classifier
	Messenger transport.Messenger
	Sessions  *session.Store
	Triggers  Triggers

	Reading ActivityMachine
	Open    ActivityMachine
	Vocab   ActivityMachine
}

// New constructs a Router. Zero-valued triggers fall back to the defaults.
func New(opts Options) *Router {
	triggers := opts.Triggers
	if triggers == (Triggers{}) {
		triggers = DefaultTriggers()
	}
	return &Router{
		source:    opts.Source,
		classify:  opts.Classify,
		messenger: opts.Messenger,
		sessions:  opts.Sessions,
		locks:     session.NewKeyedMutex(),
		triggers:  triggers,
		reading:   opts.Reading,
		open:      opts.Open,
		vocab:     opts.Vocab,
	}
}

// Handle processes one inbound message to completion. At most one handler
// runs per student at a time; distinct students proceed concurrently.
func (r *Router) Handle(ctx context.Context, studentID int64, raw string) error {
	msg := strings.ToLower(strings.TrimSpace(raw))
	tokens := tokenize(msg)

	unlock := r.locks.Lock(studentID)
	defer unlock()

	switch {
	case tokens[r.triggers.Greeting]:
		return r.greet(ctx, studentID)

	case tokens[r.triggers.Vocab]:
		return r.startActivity(ctx, studentID, r.vocab)

	case tokens[r.triggers.Reading]:
		return r.startActivity(ctx, studentID, r.reading)

	case tokens[r.triggers.Reflect]:
		return r.startActivity(ctx, studentID, r.open)

	case r.sessions.Active(session.ActivityOpen, studentID):
		return r.open.HandleReply(ctx, studentID, msg)

	case r.sessions.Active(session.ActivityReading, studentID):
		return r.reading.HandleReply(ctx, studentID, msg)

	default:
		return r.fallback(ctx, studentID, msg)
	}
}

// tokenize splits a normalized message into its word set. Punctuation and
// symbols separate words, so a slash command maps to its bare token.
func tokenize(msg string) map[string]bool {
	words := strings.FieldsFunc(msg, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make(map[string]bool, len(words))
	for _, w := range words {
		tokens[w] = true
	}
	return tokens
}

func (r *Router) greet(ctx context.Context, studentID int64) error {
	name, err := r.source.StudentName(ctx, studentID)
	if err != nil {
		return fmt.Errorf("router greet: student name: %w", err)
	}
	greeting, err := r.classify.GreetStudent(ctx, name)
	if err != nil {
		return fmt.Errorf("router greet: compose: %w", err)
	}
	logger.Info(ctx, "tutor.router", "greet",
		slog.String("status", "ok"),
		slog.Int64("user_id", studentID),
	)
	return r.messenger.Send(ctx, studentID, greeting)
}

// startActivity clears any turn the student has open in another activity
// before starting the requested one, so a trigger never leaves two
// conflicting sessions behind.
func (r *Router) startActivity(ctx context.Context, studentID int64, machine ActivityMachine) error {
	r.sessions.ClearStudent(studentID)
	return machine.Start(ctx, studentID)
}

// fallback handles messages with no trigger and no open reflective or
// reading turn, classifying them against the most recently sent prompt.
func (r *Router) fallback(ctx context.Context, studentID int64, msg string) error {
	prompt := r.messenger.LastSent(studentID)
	if prompt == "" {
		prompt = r.messenger.LastSentAny()
	}

	answering, err := r.classify.IsAnsweringQuestion(ctx, msg, prompt)
	if err != nil {
		return fmt.Errorf("router fallback: classify attempt: %w", err)
	}
	if answering {
		return r.vocab.HandleReply(ctx, studentID, msg)
	}

	relevant, err := r.classify.IsRelevantToLearning(ctx, msg, prompt)
	if err != nil {
		return fmt.Errorf("router fallback: classify relevance: %w", err)
	}
	if relevant {
		answer, err := r.classify.AnswerSideQuestion(ctx, msg)
		if err != nil {
			return fmt.Errorf("router fallback: side answer: %w", err)
		}
		if err := r.messenger.Send(ctx, studentID, answer); err != nil {
			return fmt.Errorf("router fallback: send side answer: %w", err)
		}
		return r.startActivity(ctx, studentID, r.vocab)
	}

	logger.Debug(ctx, "tutor.router", "fallback.redirect",
		slog.Int64("user_id", studentID),
	)
	if err := r.messenger.Send(ctx, studentID, activity.MsgRedirect); err != nil {
		return fmt.Errorf("router fallback: send redirect: %w", err)
	}
	return r.startActivity(ctx, studentID, r.vocab)
}
