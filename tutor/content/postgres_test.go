package content

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newMockSource(t *testing.T) (*PostgresSource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresSource(sqlx.NewDb(db, "sqlmock")), mock
}

func TestPassage(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery("SELECT passage FROM reading_items").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"passage"}).AddRow("a short passage"))

	text, err := src.Passage(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "a short passage", text)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCurrentQuestionNoMaterial(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery("SELECT question FROM reading_items").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"question"}))

	_, err := src.CurrentQuestion(context.Background(), 7)
	require.ErrorIs(t, err, ErrNoMaterial)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenQuestion(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery("SELECT question FROM open_questions").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"question"}).AddRow("what do you think"))

	text, err := src.OpenQuestion(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "what do you think", text)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestVocabAnswer(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery("SELECT answer FROM vocab_items").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"answer"}).AddRow("goes"))

	text, err := src.VocabAnswer(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "goes", text)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdvanceQuestionUpserts(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectExec("INSERT INTO student_progress").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, src.AdvanceQuestion(context.Background(), 7))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentName(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery("SELECT display_name FROM students").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"display_name"}).AddRow("Ka Ming"))

	name, err := src.StudentName(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "Ka Ming", name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollStudentUpserts(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(int64(99), "Ka Ming").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, src.EnrollStudent(context.Background(), 99, "Ka Ming"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollStudentMakesNameResolvable(t *testing.T) {
	src, mock := newMockSource(t)

	// First contact on an empty roster: enroll, then the greeting path
	// resolves the name it just wrote.
	mock.ExpectExec("INSERT INTO students").
		WithArgs(int64(99), "Ka Ming").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT display_name FROM students").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"display_name"}).AddRow("Ka Ming"))

	require.NoError(t, src.EnrollStudent(context.Background(), 99, "Ka Ming"))
	name, err := src.StudentName(context.Background(), 99)
	require.NoError(t, err)
	require.Equal(t, "Ka Ming", name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentNameUnknown(t *testing.T) {
	src, mock := newMockSource(t)

	mock.ExpectQuery("SELECT display_name FROM students").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"display_name"}))

	_, err := src.StudentName(context.Background(), 404)
	require.ErrorIs(t, err, ErrUnknownStudent)
	require.NoError(t, mock.ExpectationsWereMet())
}
