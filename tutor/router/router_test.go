package router

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/tutorhk/tutorbot/tutor/activity"
	"github.com/tutorhk/tutorbot/tutor/content"
	"github.com/tutorhk/tutorbot/tutor/session"
)

const studentID = int64(7)

// fakeMachine records how the router drives it.
type fakeMachine struct {
	name    string
	store   *session.Store
	act     session.Activity
	started int
	replies []string
}

func (f *fakeMachine) Start(ctx context.Context, id int64) error {
	f.started++
	if f.store != nil {
		f.store.Put(f.act, session.Record{StudentID: id, Question: f.name, Attempt: 1})
	}
	return nil
}

func (f *fakeMachine) HandleReply(ctx context.Context, id int64, reply string) error {
	f.replies = append(f.replies, reply)
	return nil
}

type fakeClassifier struct {
	answering bool
	relevant  bool
}

func (f *fakeClassifier) IsAnsweringQuestion(ctx context.Context, reply, question string) (bool, error) {
	return f.answering, nil
}

func (f *fakeClassifier) IsRelevantToLearning(ctx context.Context, reply, question string) (bool, error) {
	return f.relevant, nil
}

func (f *fakeClassifier) EvaluateAnswer(ctx context.Context, reply, correctAnswer string) (bool, error) {
	return false, nil
}

func (f *fakeClassifier) HintOrExplanation(ctx context.Context, reply, correctAnswer, question, passage string, attempt int) (string, error) {
	return "", nil
}

func (f *fakeClassifier) AskWhyCorrect(ctx context.Context, question, reply, passage string) (string, error) {
	return "", nil
}

func (f *fakeClassifier) RespondToOpenAnswer(ctx context.Context, reply, question string) (string, error) {
	return "", nil
}

func (f *fakeClassifier) AnswerSideQuestion(ctx context.Context, reply string) (string, error) {
	return "side answer to " + reply, nil
}

func (f *fakeClassifier) QuestionMessage(ctx context.Context, question, studentName string) (string, error) {
	return question, nil
}

func (f *fakeClassifier) GreetStudent(ctx context.Context, studentName string) (string, error) {
	return "hello " + studentName, nil
}

type fakeSource struct{ name string }

func (f *fakeSource) Passage(ctx context.Context, id int64) (string, error)         { return "", nil }
func (f *fakeSource) CurrentQuestion(ctx context.Context, id int64) (string, error) { return "", nil }
func (f *fakeSource) CurrentAnswer(ctx context.Context, id int64) (string, error)   { return "", nil }
func (f *fakeSource) AdvanceQuestion(ctx context.Context, id int64) error           { return nil }
func (f *fakeSource) OpenQuestion(ctx context.Context, id int64) (string, error)    { return "", nil }
func (f *fakeSource) AdvanceOpenQuestion(ctx context.Context, id int64) error       { return nil }
func (f *fakeSource) VocabQuestion(ctx context.Context, id int64) (string, error)   { return "", nil }
func (f *fakeSource) VocabAnswer(ctx context.Context, id int64) (string, error)     { return "", nil }
func (f *fakeSource) AdvanceVocab(ctx context.Context, id int64) error              { return nil }
func (f *fakeSource) StudentName(ctx context.Context, id int64) (string, error)     { return f.name, nil }

type fakeMessenger struct {
	sent    []string
	last    map[int64]string
	lastAny string
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{last: make(map[int64]string)}
}

func (f *fakeMessenger) Send(ctx context.Context, id int64, text string) error {
	f.sent = append(f.sent, text)
	f.last[id] = text
	f.lastAny = text
	return nil
}

func (f *fakeMessenger) LastSent(id int64) string { return f.last[id] }
func (f *fakeMessenger) LastSentAny() string      { return f.lastAny }

type fixture struct {
	router  *Router
	store   *session.Store
	cls     *fakeClassifier
	msgr    *fakeMessenger
	reading *fakeMachine
	open    *fakeMachine
	vocab   *fakeMachine
}

func newFixture() *fixture {
	store := session.NewStore()
	cls := &fakeClassifier{}
	msgr := newFakeMessenger()
	reading := &fakeMachine{name: "reading", store: store, act: session.ActivityReading}
	open := &fakeMachine{name: "open", store: store, act: session.ActivityOpen}
	vocab := &fakeMachine{name: "vocab", store: store, act: session.ActivityVocab}

	r := New(Options{
		Source:    &fakeSource{name: "Ka Ming"},
		Classify:  cls,
		Messenger: msgr,
		Sessions:  store,
		Reading:   reading,
		Open:      open,
		Vocab:     vocab,
	})
	return &fixture{router: r, store: store, cls: cls, msgr: msgr, reading: reading, open: open, vocab: vocab}
}

func TestGreetingTrigger(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.router.Handle(context.Background(), studentID, "START please"))

	require.Equal(t, []string{"hello Ka Ming"}, f.msgr.sent)
	require.Zero(t, f.reading.started)
	require.Zero(t, f.vocab.started)
}

func TestActivityTriggersStartMachines(t *testing.T) {
	cases := []struct {
		msg     string
		machine func(*fixture) *fakeMachine
	}{
		{"vocab", func(f *fixture) *fakeMachine { return f.vocab }},
		{"reading", func(f *fixture) *fakeMachine { return f.reading }},
		{"reflect", func(f *fixture) *fakeMachine { return f.open }},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			f := newFixture()
			require.NoError(t, f.router.Handle(context.Background(), studentID, "let's do "+tc.msg))
			require.Equal(t, 1, tc.machine(f).started)
		})
	}
}

func TestTriggersMatchWholeWordsOnly(t *testing.T) {
	f := newFixture()
	f.store.Put(session.ActivityReading, session.Record{StudentID: studentID, Question: "q", Attempt: 1})

	// "starting" and "rereading" contain trigger substrings but are not
	// trigger words, so the open reading turn keeps the reply.
	require.NoError(t, f.router.Handle(context.Background(), studentID, "I'm starting to enjoy rereading it"))

	require.Equal(t, []string{"i'm starting to enjoy rereading it"}, f.reading.replies)
	require.Empty(t, f.msgr.sent)
	require.Zero(t, f.vocab.started)
}

func TestSlashCommandCarriesGreetingToken(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.router.Handle(context.Background(), studentID, "/start"))

	require.Equal(t, []string{"hello Ka Ming"}, f.msgr.sent)
}

func TestTriggerClearsConflictingSessions(t *testing.T) {
	f := newFixture()
	f.store.Put(session.ActivityOpen, session.Record{StudentID: studentID, Question: "old open"})

	require.NoError(t, f.router.Handle(context.Background(), studentID, "reading"))

	require.Equal(t, 1, f.reading.started)
	// The stale open turn is gone so the reading machine now owns replies.
	require.False(t, f.store.Active(session.ActivityOpen, studentID))
	require.True(t, f.store.Active(session.ActivityReading, studentID))
}

func TestOpenSessionOwnsReplies(t *testing.T) {
	f := newFixture()
	f.store.Put(session.ActivityOpen, session.Record{StudentID: studentID, Question: "q"})
	f.store.Put(session.ActivityReading, session.Record{StudentID: studentID, Question: "q", Attempt: 1})

	require.NoError(t, f.router.Handle(context.Background(), studentID, "my interpretation"))

	require.Equal(t, []string{"my interpretation"}, f.open.replies)
	require.Empty(t, f.reading.replies)
}

func TestReadingSessionOwnsReplies(t *testing.T) {
	f := newFixture()
	f.store.Put(session.ActivityReading, session.Record{StudentID: studentID, Question: "q", Attempt: 1})

	require.NoError(t, f.router.Handle(context.Background(), studentID, "my answer"))

	require.Equal(t, []string{"my answer"}, f.reading.replies)
	require.Empty(t, f.open.replies)
}

func TestFallbackAnswerAttemptGoesToVocab(t *testing.T) {
	f := newFixture()
	f.cls.answering = true

	require.NoError(t, f.router.Handle(context.Background(), studentID, "goes"))

	require.Equal(t, []string{"goes"}, f.vocab.replies)
	require.Empty(t, f.msgr.sent)
}

func TestFallbackRelevantQuestionAnsweredThenVocabStarts(t *testing.T) {
	f := newFixture()
	f.cls.answering = false
	f.cls.relevant = true

	require.NoError(t, f.router.Handle(context.Background(), studentID, "what is a noun"))

	require.Equal(t, []string{"side answer to what is a noun"}, f.msgr.sent)
	require.Equal(t, 1, f.vocab.started)
}

func TestFallbackIrrelevantRedirectsThenVocabStarts(t *testing.T) {
	f := newFixture()
	f.cls.answering = false
	f.cls.relevant = false

	require.NoError(t, f.router.Handle(context.Background(), studentID, "weather is nice"))

	require.Equal(t, []string{activity.MsgRedirect}, f.msgr.sent)
	require.Equal(t, 1, f.vocab.started)
}

func TestGreetingAfterFirstContactEnrollment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	src := content.NewPostgresSource(sqlx.NewDb(db, "sqlmock"))

	mock.ExpectExec("INSERT INTO students").
		WithArgs(int64(99), "Ka Ming").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT display_name FROM students").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"display_name"}).AddRow("Ka Ming"))

	msgr := newFakeMessenger()
	r := New(Options{
		Source:    src,
		Classify:  &fakeClassifier{},
		Messenger: msgr,
		Sessions:  session.NewStore(),
		Reading:   &fakeMachine{name: "reading"},
		Open:      &fakeMachine{name: "open"},
		Vocab:     &fakeMachine{name: "vocab"},
	})

	// A student unknown to the roster is enrolled on first contact, so the
	// greeting resolves their name instead of failing.
	require.NoError(t, src.EnrollStudent(context.Background(), 99, "Ka Ming"))
	require.NoError(t, r.Handle(context.Background(), 99, "start"))

	require.Equal(t, []string{"hello Ka Ming"}, msgr.sent)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomTriggers(t *testing.T) {
	store := session.NewStore()
	vocab := &fakeMachine{name: "vocab", store: store, act: session.ActivityVocab}
	r := New(Options{
		Source:    &fakeSource{},
		Classify:  &fakeClassifier{},
		Messenger: newFakeMessenger(),
		Sessions:  store,
		Triggers:  Triggers{Greeting: "hello", Vocab: "words", Reading: "read", Reflect: "think"},
		Reading:   &fakeMachine{name: "reading"},
		Open:      &fakeMachine{name: "open"},
		Vocab:     vocab,
	})

	require.NoError(t, r.Handle(context.Background(), studentID, "words"))
	require.Equal(t, 1, vocab.started)
}
