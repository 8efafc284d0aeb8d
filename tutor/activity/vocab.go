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

// Vocab runs the vocabulary drill. It follows the same attempt-limited shape
// as the reading comprehension drill, minus the passage.
type Vocab struct {
	source    content.Source
	classify  classify.Classifier
	messenger transport.Messenger
	sessions  *session.Store
	ceiling   int
}

// NewVocab wires a vocabulary drill machine.
func NewVocab(src content.Source, cls classify.Classifier, msgr transport.Messenger, store *session.Store, ceiling int) *Vocab {
	if ceiling <= 0 {
		ceiling = DefaultAttemptCeiling
	}
	return &Vocab{
		source:    src,
		classify:  cls,
		messenger: msgr,
		sessions:  store,
		ceiling:   ceiling,
	}
}

// Start opens a new vocab turn and sends the personalized prompt.
func (a *Vocab) Start(ctx context.Context, studentID int64) error {
	question, err := a.source.VocabQuestion(ctx, studentID)
	if err != nil {
		return fmt.Errorf("vocab start: question: %w", err)
	}
	name, err := a.source.StudentName(ctx, studentID)
	if err != nil {
		return fmt.Errorf("vocab start: student name: %w", err)
	}
	prompt, err := a.classify.QuestionMessage(ctx, question, name)
	if err != nil {
		return fmt.Errorf("vocab start: compose prompt: %w", err)
	}

	a.sessions.Put(session.ActivityVocab, session.Record{
		StudentID: studentID,
		Question:  question,
		Attempt:   1,
	})

	logger.Info(ctx, "tutor.vocab", "session.start",
		slog.String("status", "ok"),
		slog.Int64("user_id", studentID),
	)

	if err := a.messenger.Send(ctx, studentID, prompt); err != nil {
		return fmt.Errorf("vocab start: send prompt: %w", err)
	}
	return nil
}

// HandleReply resolves one inbound reply against the student's open turn.
func (a *Vocab) HandleReply(ctx context.Context, studentID int64, reply string) error {
	rec, ok := a.sessions.Get(session.ActivityVocab, studentID)
	if !ok {
		logger.Debug(ctx, "tutor.vocab", "reply.no_session",
			slog.Int64("user_id", studentID),
		)
		return a.messenger.Send(ctx, studentID, MsgVocabGuidance)
	}

	answering, err := a.classify.IsAnsweringQuestion(ctx, reply, rec.Question)
	if err != nil {
		return fmt.Errorf("vocab reply: classify attempt: %w", err)
	}
	if !answering {
		relevant, err := a.classify.IsRelevantToLearning(ctx, reply, rec.Question)
		if err != nil {
			return fmt.Errorf("vocab reply: classify relevance: %w", err)
		}
		if !relevant {
			return a.messenger.Send(ctx, studentID, MsgRedirect)
		}
		answer, err := a.classify.AnswerSideQuestion(ctx, reply)
		if err != nil {
			return fmt.Errorf("vocab reply: side answer: %w", err)
		}
		return a.messenger.Send(ctx, studentID, answer)
	}

	correctAnswer, err := a.source.VocabAnswer(ctx, studentID)
	if err != nil {
		return fmt.Errorf("vocab reply: answer lookup: %w", err)
	}
	correct, err := a.classify.EvaluateAnswer(ctx, reply, correctAnswer)
	if err != nil {
		return fmt.Errorf("vocab reply: evaluate: %w", err)
	}

	if correct {
		whyMsg, err := a.classify.AskWhyCorrect(ctx, rec.Question, reply, "")
		if err != nil {
			return fmt.Errorf("vocab reply: reflective prompt: %w", err)
		}
		if err := a.messenger.Send(ctx, studentID, whyMsg); err != nil {
			return fmt.Errorf("vocab reply: send reflective prompt: %w", err)
		}
		logger.Info(ctx, "tutor.vocab", "turn.correct",
			slog.String("status", "ok"),
			slog.Int64("user_id", studentID),
			slog.Int("attempt", rec.Attempt),
		)
		return a.completeAndAdvance(ctx, studentID)
	}

	if rec.Attempt < a.ceiling {
		hint, err := a.classify.HintOrExplanation(ctx, reply, correctAnswer, rec.Question, "", rec.Attempt)
		if err != nil {
			return fmt.Errorf("vocab reply: hint: %w", err)
		}
		attempt := a.sessions.BumpAttempt(session.ActivityVocab, studentID)
		logger.Info(ctx, "tutor.vocab", "turn.incorrect",
			slog.String("status", "ok"),
			slog.Int64("user_id", studentID),
			slog.Int("attempt", attempt),
		)
		return a.messenger.Send(ctx, studentID, hint)
	}

	explanation, err := a.classify.HintOrExplanation(ctx, reply, correctAnswer, rec.Question, "", a.ceiling)
	if err != nil {
		return fmt.Errorf("vocab reply: explanation: %w", err)
	}
	if err := a.messenger.Send(ctx, studentID, explanation); err != nil {
		return fmt.Errorf("vocab reply: send explanation: %w", err)
	}
	logger.Info(ctx, "tutor.vocab", "turn.ceiling",
		slog.String("status", "ok"),
		slog.Int64("user_id", studentID),
		slog.Int("attempt", rec.Attempt),
	)
	return a.completeAndAdvance(ctx, studentID)
}

func (a *Vocab) completeAndAdvance(ctx context.Context, studentID int64) error {
	if err := a.source.AdvanceVocab(ctx, studentID); err != nil {
		return fmt.Errorf("vocab advance: %w", err)
	}
	a.sessions.Remove(session.ActivityVocab, studentID)
	return a.Start(ctx, studentID)
}
