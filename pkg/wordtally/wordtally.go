// Package wordtally maintains a durable, incrementally updated
// frequency table of English word forms extracted from text documents.
package wordtally

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/wordtally/pkg/wordtally/charset"
	"github.com/cognicore/wordtally/pkg/wordtally/export"
	"github.com/cognicore/wordtally/pkg/wordtally/ingest"
	"github.com/cognicore/wordtally/pkg/wordtally/internalerr"
	"github.com/cognicore/wordtally/pkg/wordtally/store"
	"github.com/cognicore/wordtally/pkg/wordtally/tagger"
)

// Engine ties the encoding resolver, tokenizer, tagger and the two
// repositories together. It assumes single-writer access to the
// underlying stores; nothing here coordinates concurrent processes.
type Engine struct {
	words     store.WordRepository
	files     store.FileRepository
	resolver  *charset.Resolver
	tokenizer *ingest.Tokenizer
	tagger    tagger.Tagger
	log       *slog.Logger
	textExts  map[string]struct{}
	htmlExts  map[string]struct{}
	entropy   *ulid.MonotonicEntropy
}

// Options configures an Engine. Words and Files are required; the rest
// default to the standard resolver, the prose tagger, a discarding
// logger, and the .txt / .html extension sets.
type Options struct {
	Words          store.WordRepository
	Files          store.FileRepository
	Resolver       *charset.Resolver
	Tagger         tagger.Tagger
	Logger         *slog.Logger
	Extensions     []string
	HTMLExtensions []string
}

// New creates an Engine with the given dependencies.
func New(opts Options) *Engine {
	if opts.Resolver == nil {
		opts.Resolver = charset.NewResolver()
	}
	if opts.Tagger == nil {
		opts.Tagger = tagger.New()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".txt"}
	}
	if len(opts.HTMLExtensions) == 0 {
		opts.HTMLExtensions = []string{".html", ".htm"}
	}

	return &Engine{
		words:     opts.Words,
		files:     opts.Files,
		resolver:  opts.Resolver,
		tokenizer: ingest.NewTokenizer(),
		tagger:    opts.Tagger,
		log:       opts.Logger,
		textExts:  extSet(opts.Extensions),
		htmlExts:  extSet(opts.HTMLExtensions),
		entropy:   ulid.Monotonic(rand.Reader, 0),
	}
}

// Close shuts down both repositories.
func (e *Engine) Close() error {
	return errors.Join(e.words.Close(), e.files.Close())
}

// FileReport summarizes one ingested file.
type FileReport struct {
	Path          string
	Encoding      string
	DistinctWords int64
	Occurrences   int64
	NewWords      int64
	UpdatedWords  int64
}

// FileError records a file skipped during a batch run. The path stays
// untracked and is retried on the next run.
type FileError struct {
	Path string
	Err  string
}

// BatchSummary is the outcome of one directory ingestion run.
type BatchSummary struct {
	RunID            string
	TotalFound       int
	AlreadyProcessed int
	NewlyProcessed   int
	Failed           []FileError
	Reports          []FileReport
}

// IngestFile processes a single file: resolve encoding, decode,
// tokenize, merge. It does not consult or update the processed-files
// tracker; only directory runs are resumable.
func (e *Engine) IngestFile(ctx context.Context, path string) (FileReport, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileReport{}, err
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return FileReport{}, fmt.Errorf("read %s: %w", path, err)
	}
	return e.ingestBytes(ctx, abs, raw)
}

// IngestDirectory walks root recursively, ingests every not-yet-tracked
// file with an ingestible extension in discovery order, and marks each
// one processed immediately after its counts are merged. A file that
// cannot be read is recorded in the summary and left untracked; a
// storage failure aborts the run.
func (e *Engine) IngestDirectory(ctx context.Context, root string) (BatchSummary, error) {
	info, err := os.Stat(root)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return BatchSummary{}, fmt.Errorf("%s is not a directory: %w", root, internalerr.ErrInvalidInput)
	}

	summary := BatchSummary{RunID: e.newRunID()}

	var pending []string
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			summary.Failed = append(summary.Failed, FileError{Path: path, Err: err.Error()})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !e.isIngestible(path) {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			summary.Failed = append(summary.Failed, FileError{Path: path, Err: err.Error()})
			return nil
		}
		summary.TotalFound++

		done, err := e.files.IsProcessed(ctx, abs)
		if err != nil {
			return fmt.Errorf("tracker lookup %s: %w", abs, err)
		}
		if done {
			summary.AlreadyProcessed++
			return nil
		}
		pending = append(pending, abs)
		return nil
	})
	if walkErr != nil {
		return summary, walkErr
	}

	e.log.Info("batch started",
		"run_id", summary.RunID,
		"root", root,
		"found", summary.TotalFound,
		"pending", len(pending),
	)

	for _, path := range pending {
		raw, err := os.ReadFile(path)
		if err != nil {
			// Unreadable file: skip, keep untracked, carry on.
			summary.Failed = append(summary.Failed, FileError{Path: path, Err: err.Error()})
			e.log.Warn("file skipped", "run_id", summary.RunID, "path", path, "error", err)
			continue
		}

		report, err := e.ingestBytes(ctx, path, raw)
		if err != nil {
			return summary, err
		}
		if err := e.files.MarkProcessed(ctx, path); err != nil {
			return summary, fmt.Errorf("mark processed %s: %w", path, err)
		}
		summary.NewlyProcessed++
		summary.Reports = append(summary.Reports, report)
	}

	e.log.Info("batch finished",
		"run_id", summary.RunID,
		"newly_processed", summary.NewlyProcessed,
		"already_processed", summary.AlreadyProcessed,
		"failed", len(summary.Failed),
	)
	return summary, nil
}

func (e *Engine) ingestBytes(ctx context.Context, path string, raw []byte) (FileReport, error) {
	enc := e.resolver.Resolve(raw)
	text := charset.Decode(raw, enc)
	if e.isHTML(path) {
		text = ingest.StripHTML(text)
	}

	counts := ingest.CountTokens(e.tokenizer.Tokenize(text))
	report, err := e.words.Merge(ctx, counts, e.tagger.Tag)
	if err != nil {
		return FileReport{}, fmt.Errorf("merge %s: %w", path, err)
	}

	e.log.Debug("file ingested",
		"path", path,
		"encoding", enc,
		"distinct", len(counts),
		"occurrences", report.Occurrences,
	)
	return FileReport{
		Path:          path,
		Encoding:      enc,
		DistinctWords: int64(len(counts)),
		Occurrences:   report.Occurrences,
		NewWords:      report.NewWords,
		UpdatedWords:  report.UpdatedWords,
	}, nil
}

// Lookup case-folds word and returns its record. A miss is
// (zero, false, nil), never an error, and mutates nothing.
func (e *Engine) Lookup(ctx context.Context, word string) (store.WordRecord, bool, error) {
	w := strings.ToLower(strings.TrimSpace(word))
	if w == "" {
		return store.WordRecord{}, false, nil
	}
	return e.words.Lookup(ctx, w)
}

// StatEntry is one row of the ranked statistics view.
type StatEntry struct {
	Word    string
	Count   int64
	Percent float64
}

// Stats holds store-wide aggregates plus the top ranked words.
type Stats struct {
	DistinctWords    int64
	TotalOccurrences int64
	Top              []StatEntry
}

// Stats returns aggregates and the limit most frequent words. All
// values are zero on an empty store.
func (e *Engine) Stats(ctx context.Context, limit int) (Stats, error) {
	if limit <= 0 {
		limit = 20
	}

	distinct, err := e.words.DistinctWords(ctx)
	if err != nil {
		return Stats{}, err
	}
	total, err := e.words.TotalOccurrences(ctx)
	if err != nil {
		return Stats{}, err
	}
	entries, err := e.words.Rank(ctx, limit)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{DistinctWords: distinct, TotalOccurrences: total}
	for _, entry := range entries {
		var pct float64
		if total > 0 {
			pct = float64(entry.Count) / float64(total) * 100
		}
		stats.Top = append(stats.Top, StatEntry{Word: entry.Word, Count: entry.Count, Percent: pct})
	}
	return stats, nil
}

// Export writes the ranked, tab-delimited listing to w, applying the
// optional row limit and category-substring filter.
func (e *Engine) Export(ctx context.Context, w io.Writer, opts export.Options) error {
	grand, err := e.words.TotalOccurrences(ctx)
	if err != nil {
		return err
	}
	filtered := grand
	if opts.CategoryPattern != "" {
		filtered, err = e.words.CategoryOccurrences(ctx, opts.CategoryPattern)
		if err != nil {
			return err
		}
	}
	rows, err := e.words.FilterByCategory(ctx, opts.CategoryPattern, opts.Limit)
	if err != nil {
		return err
	}
	return export.Write(w, rows, filtered, grand, opts.CategoryPattern)
}

func (e *Engine) isIngestible(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := e.textExts[ext]; ok {
		return true
	}
	_, ok := e.htmlExts[ext]
	return ok
}

func (e *Engine) isHTML(path string) bool {
	_, ok := e.htmlExts[strings.ToLower(filepath.Ext(path))]
	return ok
}

func (e *Engine) newRunID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), e.entropy).String()
}

func extSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = struct{}{}
	}
	return set
}
