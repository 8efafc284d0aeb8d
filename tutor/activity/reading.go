// Package activity implements the per-activity state machines that advance
// or retry a student's current learning turn.
package activity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tutorhk/tutorbot/core/logger"
	"github.com/tutorhk/tutorbot/tutor/classify"
	"github.com/tutorhk/tutorbot/tutor/content"
	"github.com/tutorhk/tutorbot/tutor/session"
	"github.com/tutorhk/tutorbot/tutor/transport"
)

// DefaultAttemptCeiling is the number of incorrect tries before the machine
// forces an explanation and advances.
const DefaultAttemptCeiling = 3

// Reading runs the attempt-limited reading comprehension drill. Per question
// the student moves through attempts 1..ceiling; a correct answer or the
// ceiling resolves the turn and chains straight into the next question.
type Reading struct {
	source    content.Source
	classify  classify.Classifier
	messenger transport.Messenger
	sessions  *session.Store
	ceiling   int
}

// NewReading wires a reading comprehension machine. A non-positive ceiling
// falls back to DefaultAttemptCeiling.
func NewReading(src content.Source, cls classify.Classifier, msgr transport.Messenger, store *session.Store, ceiling int) *Reading {
	if ceiling <= 0 {
		ceiling = DefaultAttemptCeiling
	}
	return &Reading{
		source:    src,
		classify:  cls,
		messenger: msgr,
		sessions:  store,
		ceiling:   ceiling,
	}
}

// Start opens a new reading turn: fetches the current passage and question,
// records the session at attempt 1, and sends the personalized prompt.
func (a *Reading) Start(ctx context.Context, studentID int64) error {
	passage, err := a.source.Passage(ctx, studentID)
	if err != nil {
		return fmt.Errorf("reading start: passage: %w", err)
	}
	question, err := a.source.CurrentQuestion(ctx, studentID)
	if err != nil {
		return fmt.Errorf("reading start: question: %w", err)
	}
	name, err := a.source.StudentName(ctx, studentID)
	if err != nil {
		return fmt.Errorf("reading start: student name: %w", err)
	}

	prompt, err := a.classify.QuestionMessage(ctx, question, name)
	if err != nil {
		return fmt.Errorf("reading start: compose prompt: %w", err)
	}

	a.sessions.Put(session.ActivityReading, session.Record{
		StudentID: studentID,
		Question:  question,
		Passage:   passage,
		Attempt:   1,
	})

	logger.Info(ctx, "tutor.reading", "session.start",
		slog.String("status", "ok"),
		slog.Int64("user_id", studentID),
	)

	if err := a.messenger.Send(ctx, studentID, prompt); err != nil {
		return fmt.Errorf("reading start: send prompt: %w", err)
	}
	return nil
}

// HandleReply resolves one inbound reply against the student's open turn.
func (a *Reading) HandleReply(ctx context.Context, studentID int64, reply string) error {
	rec, ok := a.sessions.Get(session.ActivityReading, studentID)
	if !ok {
		logger.Debug(ctx, "tutor.reading", "reply.no_session",
			slog.Int64("user_id", studentID),
		)
		return a.messenger.Send(ctx, studentID, MsgReadingGuidance)
	}

	// Answer-attempt classification takes priority over relevance: an
	// on-topic but non-answering reply is never scored as an attempt.
	answering, err := a.classify.IsAnsweringQuestion(ctx, reply, rec.Question)
	if err != nil {
		return fmt.Errorf("reading reply: classify attempt: %w", err)
	}
	if !answering {
		return a.handleSideTalk(ctx, studentID, reply, rec.Question)
	}

	correctAnswer, err := a.source.CurrentAnswer(ctx, studentID)
	if err != nil {
		return fmt.Errorf("reading reply: answer lookup: %w", err)
	}
	correct, err := a.classify.EvaluateAnswer(ctx, reply, correctAnswer)
	if err != nil {
		return fmt.Errorf("reading reply: evaluate: %w", err)
	}

	if correct {
		// Reflective follow-up is fire-and-forget: the student's reply to it
		// is not awaited before the next question goes out.
		whyMsg, err := a.classify.AskWhyCorrect(ctx, rec.Question, reply, rec.Passage)
		if err != nil {
			return fmt.Errorf("reading reply: reflective prompt: %w", err)
		}
		if err := a.messenger.Send(ctx, studentID, whyMsg); err != nil {
			return fmt.Errorf("reading reply: send reflective prompt: %w", err)
		}
		logger.Info(ctx, "tutor.reading", "turn.correct",
			slog.String("status", "ok"),
			slog.Int64("user_id", studentID),
			slog.Int("attempt", rec.Attempt),
		)
		return a.completeAndAdvance(ctx, studentID)
	}

	if rec.Attempt < a.ceiling {
		hint, err := a.classify.HintOrExplanation(ctx, reply, correctAnswer, rec.Question, rec.Passage, rec.Attempt)
		if err != nil {
			return fmt.Errorf("reading reply: hint: %w", err)
		}
		attempt := a.sessions.BumpAttempt(session.ActivityReading, studentID)
		logger.Info(ctx, "tutor.reading", "turn.incorrect",
			slog.String("status", "ok"),
			slog.Int64("user_id", studentID),
			slog.Int("attempt", attempt),
		)
		return a.messenger.Send(ctx, studentID, hint)
	}

	// Ceiling reached: full explanation, then advance as on a correct answer.
	explanation, err := a.classify.HintOrExplanation(ctx, reply, correctAnswer, rec.Question, rec.Passage, a.ceiling)
	if err != nil {
		return fmt.Errorf("reading reply: explanation: %w", err)
	}
	if err := a.messenger.Send(ctx, studentID, explanation); err != nil {
		return fmt.Errorf("reading reply: send explanation: %w", err)
	}
	logger.Info(ctx, "tutor.reading", "turn.ceiling",
		slog.String("status", "ok"),
		slog.Int64("user_id", studentID),
		slog.Int("attempt", rec.Attempt),
	)
	return a.completeAndAdvance(ctx, studentID)
}

func (a *Reading) handleSideTalk(ctx context.Context, studentID int64, reply, question string) error {
	relevant, err := a.classify.IsRelevantToLearning(ctx, reply, question)
	if err != nil {
		return fmt.Errorf("reading reply: classify relevance: %w", err)
	}
	if !relevant {
		return a.messenger.Send(ctx, studentID, MsgRedirect)
	}
	answer, err := a.classify.AnswerSideQuestion(ctx, reply)
	if err != nil {
		return fmt.Errorf("reading reply: side answer: %w", err)
	}
	return a.messenger.Send(ctx, studentID, answer)
}

// completeAndAdvance is the single logical transition that resolves the
// current turn: cursor moves forward, the record is destroyed, and the next
// question's record is created before control returns to the caller.
func (a *Reading) completeAndAdvance(ctx context.Context, studentID int64) error {
	if err := a.source.AdvanceQuestion(ctx, studentID); err != nil {
		return fmt.Errorf("reading advance: %w", err)
	}
	a.sessions.Remove(session.ActivityReading, studentID)
	return a.Start(ctx, studentID)
}
