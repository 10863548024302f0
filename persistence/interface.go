// persistence/interface.go
package persistence

import (
	"context"
	"errors"

	"github.com/wfunc/neonwhisper/models"
)

// WordStore is a database-backed source of the word corpus. It is only read at
// startup; games draw from the in-memory corpus built from it.
type WordStore interface {
	LoadWords(ctx context.Context) ([]models.WordEntry, error)
	SeedWords(ctx context.Context, entries []models.WordEntry) (int, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

var ErrEmptyCorpus = errors.New("word corpus is empty")

// LoadOrSeed returns the stored corpus, seeding it with fallback first when the
// table is empty.
func LoadOrSeed(ctx context.Context, store WordStore, fallback []models.WordEntry) ([]models.WordEntry, error) {
	n, err := store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if len(fallback) == 0 {
			return nil, ErrEmptyCorpus
		}
		if _, err := store.SeedWords(ctx, fallback); err != nil {
			return nil, err
		}
	}
	entries, err := store.LoadWords(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmptyCorpus
	}
	return entries, nil
}
