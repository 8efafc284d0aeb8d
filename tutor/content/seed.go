package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/tutorhk/tutorbot/core/bootstrap"
	"github.com/tutorhk/tutorbot/core/logger"
)

// sampleReading is starter material loaded into an empty content database
// so a fresh deployment can hold a conversation immediately.
var sampleReading = []struct {
	Passage  string
	Question string
	Answer   string
}{
	{
		Passage:  "Tom wakes up at seven every morning. He eats breakfast with his sister before walking to school. His favourite subject is science because he loves doing experiments.",
		Question: "What time does Tom wake up every morning?",
		Answer:   "He wakes up at seven.",
	},
	{
		Passage:  "Last weekend, Amy visited the beach with her family. They built a big sandcastle and collected shells. Amy found a blue shell, which she kept as a souvenir.",
		Question: "What did Amy keep as a souvenir?",
		Answer:   "A blue shell.",
	},
}

var sampleOpenQuestions = []string{
	"If you could travel anywhere in the world, where would you go and why?",
	"What is your favourite thing to do after school? Tell me about it.",
}

var sampleVocab = []struct {
	Question string
	Answer   string
}{
	{Question: "Which word means 'very happy'? (a) delighted (b) tired (c) hungry", Answer: "delighted"},
	{Question: "Fill in the blank: She ___ to school every day. (go / goes / going)", Answer: "goes"},
}

// SampleSeeder loads the starter material when the content tables are empty.
// A populated database is left untouched.
func SampleSeeder() bootstrap.Seeder {
	return bootstrap.SeederFunc(func(ctx context.Context, db *sqlx.DB) error {
		var count int
		if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reading_items`); err != nil {
			return fmt.Errorf("content seed: count: %w", err)
		}
		if count > 0 {
			logger.SEED.Debug("content present, skipping seed",
				slog.String("event", "seed.skip"),
				slog.Int("reading_items", count),
			)
			return nil
		}

		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("content seed: begin: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for i, item := range sampleReading {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO reading_items (position, passage, question, answer) VALUES ($1, $2, $3, $4)`,
				i, item.Passage, item.Question, item.Answer,
			); err != nil {
				return fmt.Errorf("content seed: reading item %d: %w", i, err)
			}
		}
		for i, q := range sampleOpenQuestions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO open_questions (position, question) VALUES ($1, $2)`,
				i, q,
			); err != nil {
				return fmt.Errorf("content seed: open question %d: %w", i, err)
			}
		}
		for i, item := range sampleVocab {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO vocab_items (position, question, answer) VALUES ($1, $2, $3)`,
				i, item.Question, item.Answer,
			); err != nil {
				return fmt.Errorf("content seed: vocab item %d: %w", i, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("content seed: commit: %w", err)
		}

		logger.SEED.Info("sample content seeded",
			slog.String("event", "seed.apply"),
			slog.Int("reading_items", len(sampleReading)),
			slog.Int("open_questions", len(sampleOpenQuestions)),
			slog.Int("vocab_items", len(sampleVocab)),
		)
		return nil
	})
}
