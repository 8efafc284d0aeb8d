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

// OpenReading runs the open-ended reflective reading exchange. Each turn is
// resolved in a single relevant reply; there is no retry counter, an
// off-topic reply simply leaves the turn open.
type OpenReading struct {
	source    content.Source
	classify  classify.Classifier
	messenger transport.Messenger
	sessions  *session.Store
}

// NewOpenReading wires an open-ended reading machine.
func NewOpenReading(src content.Source, cls classify.Classifier, msgr transport.Messenger, store *session.Store) *OpenReading {
	return &OpenReading{
		source:    src,
		classify:  cls,
		messenger: msgr,
		sessions:  store,
	}
}

// Start opens a new reflective turn and sends the question.
func (a *OpenReading) Start(ctx context.Context, studentID int64) error {
	question, err := a.source.OpenQuestion(ctx, studentID)
	if err != nil {
		return fmt.Errorf("open reading start: question: %w", err)
	}

	a.sessions.Put(session.ActivityOpen, session.Record{
		StudentID: studentID,
		Question:  question,
	})

	logger.Info(ctx, "tutor.open", "session.start",
		slog.String("status", "ok"),
		slog.Int64("user_id", studentID),
	)

	if err := a.messenger.Send(ctx, studentID, MsgOpenQuestionPrefix+question); err != nil {
		return fmt.Errorf("open reading start: send question: %w", err)
	}
	return nil
}

// HandleReply resolves one inbound reply against the student's open turn.
func (a *OpenReading) HandleReply(ctx context.Context, studentID int64, reply string) error {
	rec, ok := a.sessions.Get(session.ActivityOpen, studentID)
	if !ok {
		logger.Debug(ctx, "tutor.open", "reply.no_session",
			slog.Int64("user_id", studentID),
		)
		return a.messenger.Send(ctx, studentID, MsgOpenGuidance)
	}

	relevant, err := a.classify.IsRelevantToLearning(ctx, reply, rec.Question)
	if err != nil {
		return fmt.Errorf("open reading reply: classify relevance: %w", err)
	}
	if !relevant {
		return a.messenger.Send(ctx, studentID, MsgOpenRedirect)
	}

	response, err := a.classify.RespondToOpenAnswer(ctx, reply, rec.Question)
	if err != nil {
		return fmt.Errorf("open reading reply: respond: %w", err)
	}
	if err := a.messenger.Send(ctx, studentID, response); err != nil {
		return fmt.Errorf("open reading reply: send response: %w", err)
	}

	logger.Info(ctx, "tutor.open", "turn.resolved",
		slog.String("status", "ok"),
		slog.Int64("user_id", studentID),
	)

	if err := a.source.AdvanceOpenQuestion(ctx, studentID); err != nil {
		return fmt.Errorf("open reading advance: %w", err)
	}
	a.sessions.Remove(session.ActivityOpen, studentID)
	return a.Start(ctx, studentID)
}
