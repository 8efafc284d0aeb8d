package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/tutorhk/tutorbot/core/logger"
)

// ErrNoMaterial is returned when a student's cursor points past the end of
// the available items for an activity.
var ErrNoMaterial = errors.New("content: no material at current position")

// ErrUnknownStudent is returned when the student has no roster entry.
var ErrUnknownStudent = errors.New("content: unknown student")

// PostgresSource serves learning material and progress cursors from the
// content database.
type PostgresSource struct {
	db *sqlx.DB
}

// NewPostgresSource wraps the given connection pool.
func NewPostgresSource(db *sqlx.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

const (
	queryReadingField = `
		SELECT %s FROM reading_items
		ORDER BY position
		OFFSET (SELECT COALESCE(MAX(reading_pos), 0) FROM student_progress WHERE student_id = $1)
		LIMIT 1`

	queryOpenQuestion = `
		SELECT question FROM open_questions
		ORDER BY position
		OFFSET (SELECT COALESCE(MAX(open_pos), 0) FROM student_progress WHERE student_id = $1)
		LIMIT 1`

	queryVocabField = `
		SELECT %s FROM vocab_items
		ORDER BY position
		OFFSET (SELECT COALESCE(MAX(vocab_pos), 0) FROM student_progress WHERE student_id = $1)
		LIMIT 1`

	queryStudentName = `SELECT display_name FROM students WHERE channel_id = $1`

	queryEnrollStudent = `
		INSERT INTO students (channel_id, display_name)
		VALUES ($1, $2)
		ON CONFLICT (channel_id) DO UPDATE SET display_name = EXCLUDED.display_name`

	advanceTemplate = `
		INSERT INTO student_progress (student_id, %[1]s)
		VALUES ($1, 1)
		ON CONFLICT (student_id) DO UPDATE SET %[1]s = student_progress.%[1]s + 1`
)

func (s *PostgresSource) fetchText(ctx context.Context, query string, studentID int64) (string, error) {
	var text string
	if err := s.db.GetContext(ctx, &text, query, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNoMaterial
		}
		return "", err
	}
	return text, nil
}

// Passage returns the passage the student's reading cursor points at.
func (s *PostgresSource) Passage(ctx context.Context, studentID int64) (string, error) {
	text, err := s.fetchText(ctx, fmt.Sprintf(queryReadingField, "passage"), studentID)
	if err != nil {
		return "", fmt.Errorf("content passage: %w", err)
	}
	return text, nil
}

// CurrentQuestion returns the reading question at the student's cursor.
func (s *PostgresSource) CurrentQuestion(ctx context.Context, studentID int64) (string, error) {
	text, err := s.fetchText(ctx, fmt.Sprintf(queryReadingField, "question"), studentID)
	if err != nil {
		return "", fmt.Errorf("content question: %w", err)
	}
	return text, nil
}

// CurrentAnswer returns the reading answer at the student's cursor.
func (s *PostgresSource) CurrentAnswer(ctx context.Context, studentID int64) (string, error) {
	text, err := s.fetchText(ctx, fmt.Sprintf(queryReadingField, "answer"), studentID)
	if err != nil {
		return "", fmt.Errorf("content answer: %w", err)
	}
	return text, nil
}

// AdvanceQuestion moves the reading cursor forward by one.
func (s *PostgresSource) AdvanceQuestion(ctx context.Context, studentID int64) error {
	return s.advance(ctx, "reading_pos", studentID)
}

// OpenQuestion returns the open-ended question at the student's cursor.
func (s *PostgresSource) OpenQuestion(ctx context.Context, studentID int64) (string, error) {
	text, err := s.fetchText(ctx, queryOpenQuestion, studentID)
	if err != nil {
		return "", fmt.Errorf("content open question: %w", err)
	}
	return text, nil
}

// AdvanceOpenQuestion moves the open-ended cursor forward by one.
func (s *PostgresSource) AdvanceOpenQuestion(ctx context.Context, studentID int64) error {
	return s.advance(ctx, "open_pos", studentID)
}

// VocabQuestion returns the vocab prompt at the student's cursor.
func (s *PostgresSource) VocabQuestion(ctx context.Context, studentID int64) (string, error) {
	text, err := s.fetchText(ctx, fmt.Sprintf(queryVocabField, "question"), studentID)
	if err != nil {
		return "", fmt.Errorf("content vocab question: %w", err)
	}
	return text, nil
}

// VocabAnswer returns the vocab answer at the student's cursor.
func (s *PostgresSource) VocabAnswer(ctx context.Context, studentID int64) (string, error) {
	text, err := s.fetchText(ctx, fmt.Sprintf(queryVocabField, "answer"), studentID)
	if err != nil {
		return "", fmt.Errorf("content vocab answer: %w", err)
	}
	return text, nil
}

// AdvanceVocab moves the vocab cursor forward by one.
func (s *PostgresSource) AdvanceVocab(ctx context.Context, studentID int64) error {
	return s.advance(ctx, "vocab_pos", studentID)
}

// StudentName resolves the roster display name for a channel identity.
func (s *PostgresSource) StudentName(ctx context.Context, studentID int64) (string, error) {
	var name string
	if err := s.db.GetContext(ctx, &name, queryStudentName, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("content student name: %w", ErrUnknownStudent)
		}
		return "", fmt.Errorf("content student name: %w", err)
	}
	return name, nil
}

// EnrollStudent writes or refreshes the roster entry for a channel identity,
// so a student is addressable by name from their first message onward.
func (s *PostgresSource) EnrollStudent(ctx context.Context, studentID int64, displayName string) error {
	if _, err := s.db.ExecContext(ctx, queryEnrollStudent, studentID, displayName); err != nil {
		return fmt.Errorf("content enroll: %w", err)
	}
	logger.Debug(ctx, "content", "student.enroll",
		slog.String("status", "ok"),
		slog.Int64("user_id", studentID),
	)
	return nil
}

func (s *PostgresSource) advance(ctx context.Context, column string, studentID int64) error {
	query := fmt.Sprintf(advanceTemplate, column)
	if _, err := s.db.ExecContext(ctx, query, studentID); err != nil {
		return fmt.Errorf("content advance %s: %w", column, err)
	}
	logger.Debug(ctx, "content", "cursor.advance",
		slog.String("status", "ok"),
		slog.Int64("user_id", studentID),
		slog.String("op", column),
	)
	return nil
}
