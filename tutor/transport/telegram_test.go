package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

type fakeBot struct {
	sent []sentMessage
	err  error
}

type sentMessage struct {
	to   int64
	text string
}

func (f *fakeBot) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := to.(*tele.User)
	if !ok {
		return nil, errors.New("unexpected recipient type")
	}
	text, _ := what.(string)
	f.sent = append(f.sent, sentMessage{to: user.ID, text: text})
	return &tele.Message{}, nil
}

func newTestMessenger(bot sendAPI) *Telegram {
	return &Telegram{bot: bot, lastByUser: make(map[int64]string)}
}

func TestSendDeliversAndRecords(t *testing.T) {
	bot := &fakeBot{}
	m := newTestMessenger(bot)

	require.NoError(t, m.Send(context.Background(), 7, "hello"))

	require.Equal(t, []sentMessage{{to: 7, text: "hello"}}, bot.sent)
	require.Equal(t, "hello", m.LastSent(7))
	require.Equal(t, "hello", m.LastSentAny())
}

func TestLastSentTracksPerStudent(t *testing.T) {
	bot := &fakeBot{}
	m := newTestMessenger(bot)

	require.NoError(t, m.Send(context.Background(), 1, "first"))
	require.NoError(t, m.Send(context.Background(), 2, "second"))

	require.Equal(t, "first", m.LastSent(1))
	require.Equal(t, "second", m.LastSent(2))
	require.Equal(t, "second", m.LastSentAny())
	require.Empty(t, m.LastSent(3))
}

func TestSendErrorIsWrapped(t *testing.T) {
	bot := &fakeBot{err: errors.New("telegram down")}
	m := newTestMessenger(bot)

	err := m.Send(context.Background(), 7, "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "transport send")
}

func TestFailedSendKeepsPreviousPrompt(t *testing.T) {
	bot := &fakeBot{}
	m := newTestMessenger(bot)

	require.NoError(t, m.Send(context.Background(), 7, "first prompt"))

	bot.err = errors.New("telegram down")
	require.Error(t, m.Send(context.Background(), 7, "never delivered"))

	require.Equal(t, "first prompt", m.LastSent(7))
	require.Equal(t, "first prompt", m.LastSentAny())
}
