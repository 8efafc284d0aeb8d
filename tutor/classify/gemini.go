package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/tutorhk/tutorbot/core/logger"
)

const (
	defaultModel   = "gemini-2.5-flash"
	defaultTimeout = 30 * time.Second
)

// GeminiConfig configures the Gemini-backed classifier.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// Ceiling is the attempt count at which hints turn into a full
	// explanation. Zero falls back to 3.
	Ceiling int
}

// Gemini implements Classifier on top of the Gemini API. Yes/no questions
// are asked as single-word prompts and parsed strictly; generation calls
// return the model text verbatim.
type Gemini struct {
	model    string
	timeout  time.Duration
	ceiling  int
	generate func(ctx context.Context, prompt string) (string, error)
}

// NewGemini builds a classifier talking to the Gemini API.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("classify: gemini api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ceiling := cfg.Ceiling
	if ceiling <= 0 {
		ceiling = 3
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("classify: gemini client init: %w", err)
	}

	g := &Gemini{model: model, timeout: timeout, ceiling: ceiling}
	g.generate = func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return g, nil
}

func (g *Gemini) call(ctx context.Context, op, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	text, err := g.generate(ctx, prompt)
	if err != nil {
		logger.Error(ctx, "llm", "generate",
			slog.String("status", "fail"),
			slog.String("op", op),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", err.Error()),
		)
		return "", fmt.Errorf("classify %s: %w", op, err)
	}
	logger.Debug(ctx, "llm", "generate",
		slog.String("status", "ok"),
		slog.String("op", op),
		slog.Duration("duration", logger.Took(start)),
	)
	return strings.TrimSpace(text), nil
}

func (g *Gemini) yesNo(ctx context.Context, op, prompt string) (bool, error) {
	text, err := g.call(ctx, op, prompt)
	if err != nil {
		return false, err
	}
	return parseYesNo(text), nil
}

// parseYesNo treats anything that does not start with "yes" as no, so an
// uncertain model never counts a reply as an answer attempt by accident.
func parseYesNo(text string) bool {
	token := strings.ToLower(strings.TrimSpace(text))
	token = strings.Trim(token, ".!\"'")
	return strings.HasPrefix(token, "yes")
}

// IsAnsweringQuestion reports whether the reply attempts to answer the question.
func (g *Gemini) IsAnsweringQuestion(ctx context.Context, reply, question string) (bool, error) {
	prompt := fmt.Sprintf(
		"A student was asked this question:\n%s\n\nThe student replied:\n%s\n\nIs the student attempting to answer the question? Reply with exactly one word: yes or no.",
		question, reply,
	)
	return g.yesNo(ctx, "is_answering", prompt)
}

// IsRelevantToLearning reports whether the reply is on-topic for English learning.
func (g *Gemini) IsRelevantToLearning(ctx context.Context, reply, question string) (bool, error) {
	prompt := fmt.Sprintf(
		"The current learning prompt is:\n%s\n\nThe student wrote:\n%s\n\nIs the student's message related to English learning or the prompt? Reply with exactly one word: yes or no.",
		question, reply,
	)
	return g.yesNo(ctx, "is_relevant", prompt)
}

// EvaluateAnswer scores the reply against the stored correct answer.
func (g *Gemini) EvaluateAnswer(ctx context.Context, reply, correctAnswer string) (bool, error) {
	prompt := fmt.Sprintf(
		"The correct answer is:\n%s\n\nThe student answered:\n%s\n\nIs the student's answer correct in meaning, allowing minor spelling and phrasing differences? Reply with exactly one word: yes or no.",
		correctAnswer, reply,
	)
	return g.yesNo(ctx, "evaluate", prompt)
}

// HintOrExplanation produces a hint for the given attempt, or the full
// explanation when attempt has reached the ceiling.
func (g *Gemini) HintOrExplanation(ctx context.Context, reply, correctAnswer, question, passage string, attempt int) (string, error) {
	prompt := fmt.Sprintf(
		"You are a friendly English tutor for Cantonese-speaking students. Reply in Cantonese with simple English examples.\n\nPassage:\n%s\n\nQuestion:\n%s\n\nCorrect answer:\n%s\n\nThe student's answer was:\n%s\n\nThis is attempt %d of %d. If it is the final attempt, explain the correct answer fully. Otherwise give an encouraging hint without revealing the answer, with more detail on later attempts.",
		passage, question, correctAnswer, reply, attempt, g.ceiling,
	)
	return g.call(ctx, "hint_or_explanation", prompt)
}

// AskWhyCorrect composes the reflective follow-up after a correct answer.
func (g *Gemini) AskWhyCorrect(ctx context.Context, question, reply, passage string) (string, error) {
	prompt := fmt.Sprintf(
		"You are a friendly English tutor for Cantonese-speaking students. Reply in Cantonese.\n\nPassage:\n%s\n\nQuestion:\n%s\n\nThe student answered correctly:\n%s\n\nPraise the student briefly, then ask them to explain in one sentence why that answer is correct.",
		passage, question, reply,
	)
	return g.call(ctx, "ask_why_correct", prompt)
}

// RespondToOpenAnswer reacts to the student's open-ended interpretation.
func (g *Gemini) RespondToOpenAnswer(ctx context.Context, reply, question string) (string, error) {
	prompt := fmt.Sprintf(
		"You are a friendly English tutor for Cantonese-speaking students. Reply in Cantonese.\n\nOpen-ended question:\n%s\n\nThe student's interpretation:\n%s\n\nRespond warmly to their interpretation, add one insight of your own, and keep it short.",
		question, reply,
	)
	return g.call(ctx, "respond_open", prompt)
}

// AnswerSideQuestion answers an on-topic question that is not an answer attempt.
func (g *Gemini) AnswerSideQuestion(ctx context.Context, reply string) (string, error) {
	prompt := fmt.Sprintf(
		"You are a friendly English tutor for Cantonese-speaking students. Reply in Cantonese with simple English examples.\n\nThe student asked:\n%s\n\nAnswer their question briefly.",
		reply,
	)
	return g.call(ctx, "side_answer", prompt)
}

// QuestionMessage wraps a question into the personalized prompt sent to the student.
func (g *Gemini) QuestionMessage(ctx context.Context, question, studentName string) (string, error) {
	prompt := fmt.Sprintf(
		"You are a friendly English tutor for Cantonese-speaking students. Compose a short Cantonese message for a student named %s presenting this question, keeping the question text itself in English and unchanged:\n%s",
		studentName, question,
	)
	return g.call(ctx, "question_message", prompt)
}

// GreetStudent composes a personalized greeting.
func (g *Gemini) GreetStudent(ctx context.Context, studentName string) (string, error) {
	prompt := fmt.Sprintf(
		"You are a friendly English tutor for Cantonese-speaking students. Greet a student named %s in Cantonese, briefly mention they can type 'vocab', 'reading' or 'reflect' to start today's task.",
		studentName,
	)
	return g.call(ctx, "greet", prompt)
}
