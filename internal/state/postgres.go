package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore keeps the posting state in a single-row table. Used on hosts
// with an ephemeral filesystem, selected via DATABASE_URL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects, verifies the connection and creates the state
// table when missing.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS posting_state (
			id            INTEGER PRIMARY KEY,
			day           TEXT NOT NULL,
			posts_today   INTEGER NOT NULL,
			recent_hashes JSONB NOT NULL DEFAULT '[]',
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create posting_state table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Load reads the single state row; an empty table yields an empty state.
func (s *PostgresStore) Load(ctx context.Context) (PostingState, error) {
	var st PostingState
	var hashes []byte

	row := s.db.QueryRowContext(ctx,
		`SELECT day, posts_today, recent_hashes FROM posting_state WHERE id = 1`)
	if err := row.Scan(&st.Day, &st.PostsToday, &hashes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PostingState{}, nil
		}
		return PostingState{}, fmt.Errorf("load state row: %w", err)
	}

	if err := json.Unmarshal(hashes, &st.RecentHashes); err != nil {
		return PostingState{}, fmt.Errorf("decode recent_hashes: %w", err)
	}
	return st, nil
}

// encodeHashes renders the ledger as a JSON array; a nil ledger becomes []
// so the JSONB column never stores null.
func encodeHashes(hashes []string) ([]byte, error) {
	if hashes == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(hashes)
}

// Save upserts the state row.
func (s *PostgresStore) Save(ctx context.Context, st PostingState) error {
	hashes, err := encodeHashes(st.RecentHashes)
	if err != nil {
		return fmt.Errorf("encode recent_hashes: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO posting_state (id, day, posts_today, recent_hashes, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET day = $1, posts_today = $2, recent_hashes = $3, updated_at = NOW()`,
		st.Day, st.PostsToday, hashes)
	if err != nil {
		return fmt.Errorf("save state row: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
