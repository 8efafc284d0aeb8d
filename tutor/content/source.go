// Package content provides the question/passage/answer material and the
// per-student progress cursors the activities consume.
package content

import "context"

// Source supplies learning material and advances per-student progress.
// Advancing is idempotent at the call site only: calling it twice for the
// same resolved turn skips an item, so the state machines advance exactly
// once per completed question.
type Source interface {
	// Reading comprehension material.
	Passage(ctx context.Context, studentID int64) (string, error)
	CurrentQuestion(ctx context.Context, studentID int64) (string, error)
	CurrentAnswer(ctx context.Context, studentID int64) (string, error)
	AdvanceQuestion(ctx context.Context, studentID int64) error

	// Open-ended reading material.
	OpenQuestion(ctx context.Context, studentID int64) (string, error)
	AdvanceOpenQuestion(ctx context.Context, studentID int64) error

	// Vocabulary drill material.
	VocabQuestion(ctx context.Context, studentID int64) (string, error)
	VocabAnswer(ctx context.Context, studentID int64) (string, error)
	AdvanceVocab(ctx context.Context, studentID int64) error

	// StudentName resolves the display name for greeting and prompts.
	StudentName(ctx context.Context, studentID int64) (string, error)
}
