// Package sqlite provides SQLite-backed implementations of the word
// and progress repositories. The two tables live in separate database
// files, matching the deployment layout of the original tooling.
package sqlite

import (
	"context"
	"database/sql"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/wordtally/pkg/wordtally/store"
	"github.com/cognicore/wordtally/pkg/wordtally/tagger"
)

// wordRepo implements store.WordRepository on SQLite.
type wordRepo struct {
	db *sql.DB
}

const wordSchema = `
CREATE TABLE IF NOT EXISTS words (
	word TEXT PRIMARY KEY,
	count INTEGER NOT NULL,
	category TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// OpenWords opens the word-frequency database with WAL mode enabled,
// creating the schema if needed.
func OpenWords(ctx context.Context, path string) (store.WordRepository, error) {
	db, err := open(ctx, path, wordSchema)
	if err != nil {
		return nil, err
	}
	return &wordRepo{db: db}, nil
}

func open(ctx context.Context, path, schema string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode so a crash mid-transaction cannot corrupt the file
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (r *wordRepo) Close() error {
	return r.db.Close()
}

// Merge applies one file's occurrence counts in a single transaction.
// Words are visited in lexicographic order so repeated merges of equal
// batches touch rows deterministically.
func (r *wordRepo) Merge(ctx context.Context, counts map[string]int64, tag tagger.Func) (store.MergeReport, error) {
	var rep store.MergeReport

	words := make([]string, 0, len(counts))
	for w, c := range counts {
		if w == "" || c <= 0 {
			continue
		}
		words = append(words, w)
	}
	if len(words) == 0 {
		return rep, nil
	}
	sort.Strings(words)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return rep, err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, w := range words {
		c := counts[w]
		var existing int64
		err := tx.QueryRowContext(ctx, `SELECT count FROM words WHERE word=?`, w).Scan(&existing)
		switch {
		case err == sql.ErrNoRows:
			label := tagger.Unknown
			if tag != nil {
				label = tag(w)
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO words (word, count, category, created_at, updated_at)
VALUES (?, ?, ?, ?, ?);
`, w, c, label, now, now); err != nil {
				return store.MergeReport{}, err
			}
			rep.NewWords++
		case err != nil:
			return store.MergeReport{}, err
		default:
			// Category is immutable after insert; only count and
			// updated_at move.
			if _, err := tx.ExecContext(ctx, `
UPDATE words SET count=?, updated_at=? WHERE word=?;
`, existing+c, now, w); err != nil {
				return store.MergeReport{}, err
			}
			rep.UpdatedWords++
		}
		rep.Occurrences += c
	}

	if err := tx.Commit(); err != nil {
		return store.MergeReport{}, err
	}
	return rep, nil
}

// Lookup returns the record for a word; a miss is (zero, false, nil).
func (r *wordRepo) Lookup(ctx context.Context, word string) (store.WordRecord, bool, error) {
	var (
		rec      store.WordRecord
		created  string
		updated  string
	)
	err := r.db.QueryRowContext(ctx, `
SELECT word, count, category, created_at, updated_at FROM words WHERE word=?;
`, word).Scan(&rec.Word, &rec.Count, &rec.Category, &created, &updated)
	if err == sql.ErrNoRows {
		return store.WordRecord{}, false, nil
	}
	if err != nil {
		return store.WordRecord{}, false, err
	}
	rec.CreatedAt = parseTime(created)
	rec.UpdatedAt = parseTime(updated)
	return rec, true, nil
}

// DistinctWords returns the number of distinct words in the store.
func (r *wordRepo) DistinctWords(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM words`).Scan(&n)
	return n, err
}

// TotalOccurrences returns the sum of all counts, 0 on an empty store.
func (r *wordRepo) TotalOccurrences(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(count), 0) FROM words`).Scan(&n)
	return n, err
}

// CategoryOccurrences sums counts over records whose category contains
// pattern. An empty pattern matches every record.
func (r *wordRepo) CategoryOccurrences(ctx context.Context, pattern string) (int64, error) {
	if pattern == "" {
		return r.TotalOccurrences(ctx)
	}
	var n int64
	err := r.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(count), 0) FROM words WHERE category LIKE ?;
`, "%"+pattern+"%").Scan(&n)
	return n, err
}

// Rank returns (word, count) pairs ordered by count descending with a
// lexicographic tie-break, which keeps the output reproducible.
func (r *wordRepo) Rank(ctx context.Context, limit int) ([]store.RankEntry, error) {
	query := `SELECT word, count FROM words ORDER BY count DESC, word ASC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []store.RankEntry
	for rows.Next() {
		var e store.RankEntry
		if err := rows.Scan(&e.Word, &e.Count); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FilterByCategory returns records whose category contains pattern, in
// Rank order.
func (r *wordRepo) FilterByCategory(ctx context.Context, pattern string, limit int) ([]store.WordRecord, error) {
	query := `SELECT word, count, category, created_at, updated_at FROM words`
	args := []interface{}{}
	if pattern != "" {
		query += ` WHERE category LIKE ?`
		args = append(args, "%"+pattern+"%")
	}
	query += ` ORDER BY count DESC, word ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []store.WordRecord
	for rows.Next() {
		var (
			rec     store.WordRecord
			created string
			updated string
		)
		if err := rows.Scan(&rec.Word, &rec.Count, &rec.Category, &created, &updated); err != nil {
			return nil, err
		}
		rec.CreatedAt = parseTime(created)
		rec.UpdatedAt = parseTime(updated)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
