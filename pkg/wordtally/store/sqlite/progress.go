package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/cognicore/wordtally/pkg/wordtally/store"
)

// fileRepo implements store.FileRepository on SQLite.
type fileRepo struct {
	db *sql.DB
}

const progressSchema = `
CREATE TABLE IF NOT EXISTS processed_files (
	file_path TEXT PRIMARY KEY,
	processed_at TEXT NOT NULL
);
`

// OpenProgress opens the processed-files database, creating the schema
// if needed.
func OpenProgress(ctx context.Context, path string) (store.FileRepository, error) {
	db, err := open(ctx, path, progressSchema)
	if err != nil {
		return nil, err
	}
	return &fileRepo{db: db}, nil
}

// Close closes the database connection
func (r *fileRepo) Close() error {
	return r.db.Close()
}

// IsProcessed reports whether a path has already been ingested.
func (r *fileRepo) IsProcessed(ctx context.Context, path string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM processed_files WHERE file_path=?`, path).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkProcessed records a path. Re-marking keeps the original
// processed_at, so the call is idempotent.
func (r *fileRepo) MarkProcessed(ctx context.Context, path string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, `
INSERT INTO processed_files (file_path, processed_at) VALUES (?, ?)
ON CONFLICT(file_path) DO NOTHING;
`, path, now)
	return err
}

// ProcessedCount returns the number of tracked paths.
func (r *fileRepo) ProcessedCount(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processed_files`).Scan(&n)
	return n, err
}
