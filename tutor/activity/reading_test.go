package activity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tutorhk/tutorbot/tutor/session"
)

const studentID = int64(42)

func newReadingFixture() (*Reading, *fakeSource, *fakeClassifier, *fakeMessenger, *session.Store) {
	src := newFakeSource()
	cls := newFakeClassifier()
	msgr := newFakeMessenger()
	store := session.NewStore()
	return NewReading(src, cls, msgr, store, 3), src, cls, msgr, store
}

func TestReadingStart(t *testing.T) {
	reading, _, _, msgr, store := newReadingFixture()

	require.NoError(t, reading.Start(context.Background(), studentID))

	rec, ok := store.Get(session.ActivityReading, studentID)
	require.True(t, ok)
	require.Equal(t, "question one", rec.Question)
	require.Equal(t, "passage one", rec.Passage)
	require.Equal(t, 1, rec.Attempt)

	require.Len(t, msgr.sent, 1)
	require.Equal(t, "Ka Ming, try this: question one", msgr.sent[0])
}

func TestReadingReplyWithoutSession(t *testing.T) {
	reading, src, cls, msgr, store := newReadingFixture()

	require.NoError(t, reading.HandleReply(context.Background(), studentID, "answer one"))

	require.Equal(t, []string{MsgReadingGuidance}, msgr.sent)
	require.Empty(t, cls.calls)
	require.Empty(t, src.advances)
	require.False(t, store.Active(session.ActivityReading, studentID))
}

func TestReadingCorrectAnswerAdvances(t *testing.T) {
	reading, src, cls, msgr, store := newReadingFixture()
	require.NoError(t, reading.Start(context.Background(), studentID))
	msgr.sent = nil

	cls.answering = true
	cls.correct = true
	require.NoError(t, reading.HandleReply(context.Background(), studentID, "answer one"))

	// Reflective follow-up, then the next question's prompt.
	require.Equal(t, []string{
		"why correct: question one",
		"Ka Ming, try this: question two",
	}, msgr.sent)

	require.Equal(t, 1, src.advances["reading"])

	rec, ok := store.Get(session.ActivityReading, studentID)
	require.True(t, ok)
	require.Equal(t, "question two", rec.Question)
	require.Equal(t, "passage two", rec.Passage)
	require.Equal(t, 1, rec.Attempt)
}

func TestReadingIncorrectBelowCeilingHints(t *testing.T) {
	reading, src, cls, msgr, store := newReadingFixture()
	require.NoError(t, reading.Start(context.Background(), studentID))
	msgr.sent = nil

	cls.answering = true
	cls.correct = false
	require.NoError(t, reading.HandleReply(context.Background(), studentID, "wrong"))

	require.Equal(t, []string{"hint 1 for question one"}, msgr.sent)
	require.Empty(t, src.advances)

	rec, _ := store.Get(session.ActivityReading, studentID)
	require.Equal(t, 2, rec.Attempt)
	require.Equal(t, "question one", rec.Question)
}

func TestReadingCeilingExplainsAndAdvances(t *testing.T) {
	reading, src, cls, msgr, store := newReadingFixture()
	require.NoError(t, reading.Start(context.Background(), studentID))

	cls.answering = true
	cls.correct = false
	require.NoError(t, reading.HandleReply(context.Background(), studentID, "wrong"))
	require.NoError(t, reading.HandleReply(context.Background(), studentID, "wrong again"))
	msgr.sent = nil

	// Third incorrect attempt hits the ceiling.
	require.NoError(t, reading.HandleReply(context.Background(), studentID, "still wrong"))

	require.Equal(t, []string{
		"hint 3 for question one",
		"Ka Ming, try this: question two",
	}, msgr.sent)
	require.Equal(t, 1, src.advances["reading"])

	rec, ok := store.Get(session.ActivityReading, studentID)
	require.True(t, ok)
	require.Equal(t, "question two", rec.Question)
	require.Equal(t, 1, rec.Attempt)
}

func TestReadingIrrelevantSideTalkRedirects(t *testing.T) {
	reading, src, cls, msgr, store := newReadingFixture()
	require.NoError(t, reading.Start(context.Background(), studentID))
	msgr.sent = nil

	cls.answering = false
	cls.relevant = false
	require.NoError(t, reading.HandleReply(context.Background(), studentID, "what's for lunch"))

	require.Equal(t, []string{MsgRedirect}, msgr.sent)
	require.Zero(t, cls.calls["evaluate"])
	require.Empty(t, src.advances)

	rec, _ := store.Get(session.ActivityReading, studentID)
	require.Equal(t, 1, rec.Attempt)
}

func TestReadingRelevantSideQuestionAnswered(t *testing.T) {
	reading, src, cls, msgr, store := newReadingFixture()
	require.NoError(t, reading.Start(context.Background(), studentID))
	msgr.sent = nil

	cls.answering = false
	cls.relevant = true
	require.NoError(t, reading.HandleReply(context.Background(), studentID, "what does wake mean"))

	require.Equal(t, []string{"side answer to what does wake mean"}, msgr.sent)
	require.Zero(t, cls.calls["evaluate"])
	require.Empty(t, src.advances)

	// The open turn is untouched.
	rec, _ := store.Get(session.ActivityReading, studentID)
	require.Equal(t, "question one", rec.Question)
	require.Equal(t, 1, rec.Attempt)
}

func TestReadingCeilingIsConfigurable(t *testing.T) {
	src := newFakeSource()
	cls := newFakeClassifier()
	msgr := newFakeMessenger()
	store := session.NewStore()
	reading := NewReading(src, cls, msgr, store, 1)

	require.NoError(t, reading.Start(context.Background(), studentID))
	msgr.sent = nil

	cls.answering = true
	cls.correct = false
	// First incorrect attempt already hits a ceiling of 1.
	require.NoError(t, reading.HandleReply(context.Background(), studentID, "wrong"))

	require.Equal(t, 1, src.advances["reading"])
	rec, _ := store.Get(session.ActivityReading, studentID)
	require.Equal(t, "question two", rec.Question)
}
