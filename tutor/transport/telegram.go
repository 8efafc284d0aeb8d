package transport

import (
	"context"
	"fmt"
	"sync"

	tele "gopkg.in/telebot.v4"

	"github.com/tutorhk/tutorbot/core/telegram/sender"
)

// sendAPI is the slice of *tele.Bot the messenger needs.
type sendAPI interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Telegram delivers tutor messages over the Telegram Bot API, optionally
// through the asynchronous sender dispatcher. It records the last text sent
// per student and globally for the router's fallback classification.
type Telegram struct {
	bot        sendAPI
	dispatcher *sender.Dispatcher

	mu         sync.RWMutex
	lastByUser map[int64]string
	lastAny    string
}

// NewTelegram wraps the bot. A nil dispatcher makes sends synchronous.
func NewTelegram(bot *tele.Bot, dispatcher *sender.Dispatcher) *Telegram {
	return &Telegram{
		bot:        bot,
		dispatcher: dispatcher,
		lastByUser: make(map[int64]string),
	}
}

// Send delivers text to a student's channel. The text is recorded as the
// most recently sent prompt once the dispatcher accepts it or the inline
// send succeeds. Recording at enqueue time keeps per-student prompt order
// intact; a queued send that exhausts its retries leaves a recorded prompt
// the student never saw, which the fallback cascade tolerates.
func (t *Telegram) Send(ctx context.Context, studentID int64, text string) error {
	recipient := &tele.User{ID: studentID}
	run := func() error {
		_, err := t.bot.Send(recipient, text)
		return err
	}

	if t.dispatcher != nil {
		if err := t.dispatcher.Enqueue(ctx, "send.text", "sendMessage", run); err == nil {
			t.record(studentID, text)
			return nil
		}
		// Queue saturated or closed: deliver inline rather than drop.
	}
	if err := run(); err != nil {
		return fmt.Errorf("transport send: %w", err)
	}
	t.record(studentID, text)
	return nil
}

// LastSent returns the most recent text sent to the student, or "".
func (t *Telegram) LastSent(studentID int64) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastByUser[studentID]
}

// LastSentAny returns the most recent text sent to anyone, or "".
func (t *Telegram) LastSentAny() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastAny
}

func (t *Telegram) record(studentID int64, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastByUser[studentID] = text
	t.lastAny = text
}
