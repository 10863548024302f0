// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/wfunc/neonwhisper/models"
)

// PostgresWordStore is the plain database/sql corpus store on lib/pq.
type PostgresWordStore struct {
	db *sql.DB
}

// NewPostgresWordStore opens the connection and creates the words table.
func NewPostgresWordStore(ctx context.Context, dsn string) (*PostgresWordStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresWordStore{db: db}, nil
}

func initTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS words (
            id SERIAL PRIMARY KEY,
            word VARCHAR(64) NOT NULL,
            category VARCHAR(64) NOT NULL,
            difficulty VARCHAR(16) NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            deleted_at TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
        CREATE UNIQUE INDEX IF NOT EXISTS idx_words_word_difficulty ON words(word, difficulty);
        CREATE INDEX IF NOT EXISTS idx_words_difficulty ON words(difficulty);
    `)
	return err
}

func (p *PostgresWordStore) LoadWords(ctx context.Context) ([]models.WordEntry, error) {
	rows, err := p.db.QueryContext(ctx, `
        SELECT word, category, difficulty FROM words
        WHERE deleted_at IS NULL
        ORDER BY difficulty, category, word
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.WordEntry
	for rows.Next() {
		var e models.WordEntry
		var difficulty string
		if err := rows.Scan(&e.Word, &e.Category, &difficulty); err != nil {
			return nil, err
		}
		e.Difficulty = models.Difficulty(difficulty)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SeedWords inserts entries in one transaction, skipping duplicates.
func (p *PostgresWordStore) SeedWords(ctx context.Context, entries []models.WordEntry) (int, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO words (word, category, difficulty)
        VALUES ($1, $2, $3)
        ON CONFLICT (word, difficulty) DO NOTHING
    `)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, e := range entries {
		res, err := stmt.ExecContext(ctx, e.Word, e.Category, string(e.Difficulty))
		if err != nil {
			return 0, err
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

func (p *PostgresWordStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words WHERE deleted_at IS NULL`).Scan(&n)
	return n, err
}

func (p *PostgresWordStore) Close() error {
	return p.db.Close()
}
