package activity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tutorhk/tutorbot/tutor/session"
)

func newOpenFixture() (*OpenReading, *fakeSource, *fakeClassifier, *fakeMessenger, *session.Store) {
	src := newFakeSource()
	cls := newFakeClassifier()
	msgr := newFakeMessenger()
	store := session.NewStore()
	return NewOpenReading(src, cls, msgr, store), src, cls, msgr, store
}

func TestOpenReadingStart(t *testing.T) {
	open, _, _, msgr, store := newOpenFixture()

	require.NoError(t, open.Start(context.Background(), studentID))

	rec, ok := store.Get(session.ActivityOpen, studentID)
	require.True(t, ok)
	require.Equal(t, "open one", rec.Question)

	require.Equal(t, []string{MsgOpenQuestionPrefix + "open one"}, msgr.sent)
}

func TestOpenReadingReplyWithoutSession(t *testing.T) {
	open, _, cls, msgr, _ := newOpenFixture()

	require.NoError(t, open.HandleReply(context.Background(), studentID, "my thoughts"))

	require.Equal(t, []string{MsgOpenGuidance}, msgr.sent)
	require.Empty(t, cls.calls)
}

func TestOpenReadingIrrelevantReplyKeepsTurnOpen(t *testing.T) {
	open, src, cls, msgr, store := newOpenFixture()
	require.NoError(t, open.Start(context.Background(), studentID))
	msgr.sent = nil

	cls.relevant = false
	require.NoError(t, open.HandleReply(context.Background(), studentID, "random chatter"))

	require.Equal(t, []string{MsgOpenRedirect}, msgr.sent)
	require.Empty(t, src.advances)

	rec, ok := store.Get(session.ActivityOpen, studentID)
	require.True(t, ok)
	require.Equal(t, "open one", rec.Question)
}

func TestOpenReadingRelevantReplyResolvesAndChains(t *testing.T) {
	open, src, cls, msgr, store := newOpenFixture()
	require.NoError(t, open.Start(context.Background(), studentID))
	msgr.sent = nil

	cls.relevant = true
	require.NoError(t, open.HandleReply(context.Background(), studentID, "i think the author means hope"))

	require.Equal(t, []string{
		"response to i think the author means hope",
		MsgOpenQuestionPrefix + "open two",
	}, msgr.sent)
	require.Equal(t, 1, src.advances["open"])

	rec, ok := store.Get(session.ActivityOpen, studentID)
	require.True(t, ok)
	require.Equal(t, "open two", rec.Question)
}
