// Package transport delivers outbound tutor messages to the student's
// channel and remembers what was sent last, which the router's fallback
// cascade uses as classification context.
package transport

import "context"

// Messenger sends text to a student's channel identity.
type Messenger interface {
	Send(ctx context.Context, studentID int64, text string) error

	// LastSent returns the most recent text sent to the student, or "".
	LastSent(studentID int64) string

	// LastSentAny returns the most recent text sent to anyone, or "".
	LastSentAny() string
}
