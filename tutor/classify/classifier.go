// Package classify wraps the language model behind the narrow set of
// classification and generation calls the activities need.
package classify

import "context"

// Classifier answers the yes/no questions that drive routing and produces
// the tutor's free-form replies. All calls are blocking remote operations;
// any transport or model failure is returned as an error and handled by the
// caller as a collaborator failure.
type Classifier interface {
	// IsAnsweringQuestion reports whether the reply is an attempt to answer
	// the given prompt, as opposed to a side question or chatter.
	IsAnsweringQuestion(ctx context.Context, reply, question string) (bool, error)

	// IsRelevantToLearning reports whether the reply stays on the topic of
	// English learning relative to the given prompt.
	IsRelevantToLearning(ctx context.Context, reply, question string) (bool, error)

	// EvaluateAnswer scores the reply against the stored correct answer.
	EvaluateAnswer(ctx context.Context, reply, correctAnswer string) (bool, error)

	// HintOrExplanation produces a hint scaled to the attempt number, or the
	// full explanation once the attempt ceiling is reached.
	HintOrExplanation(ctx context.Context, reply, correctAnswer, question, passage string, attempt int) (string, error)

	// AskWhyCorrect composes the reflective follow-up after a correct answer.
	AskWhyCorrect(ctx context.Context, question, reply, passage string) (string, error)

	// RespondToOpenAnswer reacts to the student's interpretation of an
	// open-ended question.
	RespondToOpenAnswer(ctx context.Context, reply, question string) (string, error)

	// AnswerSideQuestion answers an on-topic question that is not an answer
	// attempt.
	AnswerSideQuestion(ctx context.Context, reply string) (string, error)

	// QuestionMessage wraps a question into the personalized prompt sent to
	// the student.
	QuestionMessage(ctx context.Context, question, studentName string) (string, error)

	// GreetStudent composes a personalized greeting.
	GreetStudent(ctx context.Context, studentName string) (string, error)
}
