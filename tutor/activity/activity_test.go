package activity

import (
	"context"
	"fmt"

	"github.com/tutorhk/tutorbot/tutor/content"
)

// fakeSource serves canned material and counts cursor advances.
type fakeSource struct {
	passages  []string
	questions []string
	answers   []string
	openQs    []string
	vocabQs   []string
	vocabAs   []string
	name      string

	readingPos int
	openPos    int
	vocabPos   int

	advances map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		passages:  []string{"passage one", "passage two"},
		questions: []string{"question one", "question two"},
		answers:   []string{"answer one", "answer two"},
		openQs:    []string{"open one", "open two"},
		vocabQs:   []string{"vocab one", "vocab two"},
		vocabAs:   []string{"vanswer one", "vanswer two"},
		name:      "Ka Ming",
		advances:  make(map[string]int),
	}
}

func pick(items []string, pos int) (string, error) {
	if pos >= len(items) {
		return "", content.ErrNoMaterial
	}
	return items[pos], nil
}

func (f *fakeSource) Passage(ctx context.Context, studentID int64) (string, error) {
	return pick(f.passages, f.readingPos)
}

func (f *fakeSource) CurrentQuestion(ctx context.Context, studentID int64) (string, error) {
	return pick(f.questions, f.readingPos)
}

func (f *fakeSource) CurrentAnswer(ctx context.Context, studentID int64) (string, error) {
	return pick(f.answers, f.readingPos)
}

func (f *fakeSource) AdvanceQuestion(ctx context.Context, studentID int64) error {
	f.readingPos++
	f.advances["reading"]++
	return nil
}

func (f *fakeSource) OpenQuestion(ctx context.Context, studentID int64) (string, error) {
	return pick(f.openQs, f.openPos)
}

func (f *fakeSource) AdvanceOpenQuestion(ctx context.Context, studentID int64) error {
	f.openPos++
	f.advances["open"]++
	return nil
}

func (f *fakeSource) VocabQuestion(ctx context.Context, studentID int64) (string, error) {
	return pick(f.vocabQs, f.vocabPos)
}

func (f *fakeSource) VocabAnswer(ctx context.Context, studentID int64) (string, error) {
	return pick(f.vocabAs, f.vocabPos)
}

func (f *fakeSource) AdvanceVocab(ctx context.Context, studentID int64) error {
	f.vocabPos++
	f.advances["vocab"]++
	return nil
}

func (f *fakeSource) StudentName(ctx context.Context, studentID int64) (string, error) {
	return f.name, nil
}

// fakeClassifier returns fixed classifications and counts every call.
type fakeClassifier struct {
	answering bool
	relevant  bool
	correct   bool

	calls map[string]int
}

func newFakeClassifier() *fakeClassifier {
	return &fakeClassifier{calls: make(map[string]int)}
}

func (f *fakeClassifier) IsAnsweringQuestion(ctx context.Context, reply, question string) (bool, error) {
	f.calls["is_answering"]++
	return f.answering, nil
}

func (f *fakeClassifier) IsRelevantToLearning(ctx context.Context, reply, question string) (bool, error) {
	f.calls["is_relevant"]++
	return f.relevant, nil
}

func (f *fakeClassifier) EvaluateAnswer(ctx context.Context, reply, correctAnswer string) (bool, error) {
	f.calls["evaluate"]++
	return f.correct, nil
}

func (f *fakeClassifier) HintOrExplanation(ctx context.Context, reply, correctAnswer, question, passage string, attempt int) (string, error) {
	f.calls["hint"]++
	return fmt.Sprintf("hint %d for %s", attempt, question), nil
}

func (f *fakeClassifier) AskWhyCorrect(ctx context.Context, question, reply, passage string) (string, error) {
	f.calls["why"]++
	return "why correct: " + question, nil
}

func (f *fakeClassifier) RespondToOpenAnswer(ctx context.Context, reply, question string) (string, error) {
	f.calls["respond_open"]++
	return "response to " + reply, nil
}

func (f *fakeClassifier) AnswerSideQuestion(ctx context.Context, reply string) (string, error) {
	f.calls["side_answer"]++
	return "side answer to " + reply, nil
}

func (f *fakeClassifier) QuestionMessage(ctx context.Context, question, studentName string) (string, error) {
	f.calls["question_message"]++
	return fmt.Sprintf("%s, try this: %s", studentName, question), nil
}

func (f *fakeClassifier) GreetStudent(ctx context.Context, studentName string) (string, error) {
	f.calls["greet"]++
	return "hello " + studentName, nil
}

// fakeMessenger records everything sent.
type fakeMessenger struct {
	sent    []string
	last    map[int64]string
	lastAny string
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{last: make(map[int64]string)}
}

func (f *fakeMessenger) Send(ctx context.Context, studentID int64, text string) error {
	f.sent = append(f.sent, text)
	f.last[studentID] = text
	f.lastAny = text
	return nil
}

func (f *fakeMessenger) LastSent(studentID int64) string { return f.last[studentID] }

func (f *fakeMessenger) LastSentAny() string { return f.lastAny }
