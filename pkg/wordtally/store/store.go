package store

import (
	"context"
	"time"

	"github.com/cognicore/wordtally/pkg/wordtally/tagger"
)

// WordRecord is one row of the durable frequency table.
type WordRecord struct {
	Word      string
	Count     int64
	Category  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RankEntry is a (word, count) pair in rank order.
type RankEntry struct {
	Word  string
	Count int64
}

// MergeReport summarizes one batch merge.
type MergeReport struct {
	NewWords     int64
	UpdatedWords int64
	Occurrences  int64
}

// WordRepository is the durable word → (count, category, timestamps)
// mapping. Merge is purely additive: it performs no deduplication
// against history, so applying a file's counts at most once is the
// caller's contract (see FileRepository).
type WordRepository interface {
	// Merge applies one batch of occurrence counts atomically. For a
	// word not yet in the store, tag is called exactly once and the
	// returned category is permanent; for an existing word the count
	// is incremented and the category left untouched.
	Merge(ctx context.Context, counts map[string]int64, tag tagger.Func) (MergeReport, error)

	// Lookup returns the record for a word, or found=false if the
	// word has never been observed. A miss is not an error.
	Lookup(ctx context.Context, word string) (WordRecord, bool, error)

	// DistinctWords returns the number of rows in the table.
	DistinctWords(ctx context.Context) (int64, error)

	// TotalOccurrences returns the sum of all counts, 0 when empty.
	TotalOccurrences(ctx context.Context) (int64, error)

	// CategoryOccurrences sums counts over records whose category
	// contains pattern. An empty pattern matches every record.
	CategoryOccurrences(ctx context.Context, pattern string) (int64, error)

	// Rank returns entries ordered by count descending, ties broken by
	// word ascending. limit <= 0 returns everything.
	Rank(ctx context.Context, limit int) ([]RankEntry, error)

	// FilterByCategory returns records whose category contains
	// pattern, in Rank order. Empty pattern matches all; limit <= 0
	// returns everything.
	FilterByCategory(ctx context.Context, pattern string, limit int) ([]WordRecord, error)

	Close() error
}

// FileRepository is the durable set of already-processed file paths.
// It is the sole mechanism enforcing that each file contributes its
// counts at most once across interrupted and resumed batch runs.
type FileRepository interface {
	IsProcessed(ctx context.Context, path string) (bool, error)

	// MarkProcessed records a path. Marking an already-marked path is
	// a no-op, not an error.
	MarkProcessed(ctx context.Context, path string) error

	ProcessedCount(ctx context.Context) (int64, error)

	Close() error
}
