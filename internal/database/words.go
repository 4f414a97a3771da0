package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var (
	ErrNoWords         = errors.New("words table is empty")
	ErrUnexpectedQuery = errors.New("unexpected database error")
)

// WordStore serves random words from the words table.
type WordStore struct {
	pool *pgxpool.Pool
}

func NewWordStore(ctx context.Context, connString string) (*WordStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &WordStore{pool: pool}, nil
}

func (s *WordStore) Close() {
	s.pool.Close()
}

// RandomWords returns up to n distinct words in random order.
func (s *WordStore) RandomWords(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, "SELECT word FROM words ORDER BY random() LIMIT $1", n)
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	words, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, wrapQueryErr(err)
	}
	if len(words) == 0 {
		return nil, ErrNoWords
	}
	return words, nil
}

// ImportWords inserts words, skipping blanks and any word already stored
// (compared case-insensitively). It returns how many rows were added.
func (s *WordStore) ImportWords(ctx context.Context, words []string) (int, error) {
	batch := &pgx.Batch{}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		batch.Queue("INSERT INTO words (word) VALUES ($1) ON CONFLICT DO NOTHING", w)
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for i := 0; i < batch.Len(); i++ {
		tag, err := results.Exec()
		if err != nil {
			return inserted, wrapQueryErr(err)
		}
		inserted += int(tag.RowsAffected())
	}

	log.Info().Int("queued", batch.Len()).Int("inserted", inserted).Msg("[ImportWords] words imported")
	return inserted, nil
}

func (s *WordStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM words").Scan(&n); err != nil {
		return 0, wrapQueryErr(err)
	}
	return n, nil
}

func wrapQueryErr(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnexpectedQuery, err)
}
