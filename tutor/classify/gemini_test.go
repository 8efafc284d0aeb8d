package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseYesNo(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"yes", true},
		{"Yes", true},
		{"YES.", true},
		{"yes!", true},
		{"\"yes\"", true},
		{"yes, the student is answering", true},
		{"no", false},
		{"No.", false},
		{"maybe", false},
		{"", false},
		{"the answer is yes", false},
		{"not yes", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, parseYesNo(tc.in), "input %q", tc.in)
	}
}

func stubbedGemini(generate func(ctx context.Context, prompt string) (string, error)) *Gemini {
	return &Gemini{
		model:    "test-model",
		timeout:  time.Second,
		ceiling:  3,
		generate: generate,
	}
}

func TestYesNoOpsParseModelOutput(t *testing.T) {
	g := stubbedGemini(func(ctx context.Context, prompt string) (string, error) {
		return " Yes ", nil
	})

	answering, err := g.IsAnsweringQuestion(context.Background(), "he wakes at seven", "when does he wake")
	require.NoError(t, err)
	require.True(t, answering)

	relevant, err := g.IsRelevantToLearning(context.Background(), "what is a verb", "prompt")
	require.NoError(t, err)
	require.True(t, relevant)

	correct, err := g.EvaluateAnswer(context.Background(), "seven", "He wakes up at seven.")
	require.NoError(t, err)
	require.True(t, correct)
}

func TestYesNoOpsDefaultToNo(t *testing.T) {
	g := stubbedGemini(func(ctx context.Context, prompt string) (string, error) {
		return "I am not certain about this one", nil
	})

	answering, err := g.IsAnsweringQuestion(context.Background(), "reply", "question")
	require.NoError(t, err)
	require.False(t, answering)
}

func TestGenerationOpsReturnTrimmedText(t *testing.T) {
	var seenPrompt string
	g := stubbedGemini(func(ctx context.Context, prompt string) (string, error) {
		seenPrompt = prompt
		return "  好叻呀！ can you tell me why?  ", nil
	})

	text, err := g.AskWhyCorrect(context.Background(), "question", "reply", "passage")
	require.NoError(t, err)
	require.Equal(t, "好叻呀！ can you tell me why?", text)
	require.Contains(t, seenPrompt, "question")
	require.Contains(t, seenPrompt, "passage")
}

func TestHintPromptCarriesAttemptAndCeiling(t *testing.T) {
	var seenPrompt string
	g := stubbedGemini(func(ctx context.Context, prompt string) (string, error) {
		seenPrompt = prompt
		return "a hint", nil
	})

	_, err := g.HintOrExplanation(context.Background(), "wrong", "right", "q", "p", 2)
	require.NoError(t, err)
	require.Contains(t, seenPrompt, "attempt 2 of 3")
}

func TestCallWrapsGenerateError(t *testing.T) {
	g := stubbedGemini(func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("quota exceeded")
	})

	_, err := g.GreetStudent(context.Background(), "Ka Ming")
	require.Error(t, err)
	require.Contains(t, err.Error(), "greet")
}

func TestNewGeminiRequiresAPIKey(t *testing.T) {
	_, err := NewGemini(context.Background(), GeminiConfig{})
	require.Error(t, err)
}
