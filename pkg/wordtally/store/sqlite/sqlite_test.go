package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cognicore/wordtally/pkg/wordtally/tagger"
)

func staticTag(label string) tagger.Func {
	return func(string) string { return label }
}

func TestWordsMergeAndLookup(t *testing.T) {
	ctx := context.Background()
	words, err := OpenWords(ctx, filepath.Join(t.TempDir(), "words.db"))
	if err != nil {
		t.Fatalf("OpenWords: %v", err)
	}
	defer words.Close()

	rep, err := words.Merge(ctx, map[string]int64{"cat": 2, "dog": 1}, staticTag("NN"))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if rep.NewWords != 2 || rep.UpdatedWords != 0 || rep.Occurrences != 3 {
		t.Errorf("Merge report: %+v", rep)
	}

	rep, err = words.Merge(ctx, map[string]int64{"cat": 3}, staticTag("VB"))
	if err != nil {
		t.Fatalf("Second merge: %v", err)
	}
	if rep.NewWords != 0 || rep.UpdatedWords != 1 {
		t.Errorf("Second merge report: %+v", rep)
	}

	rec, found, err := words.Lookup(ctx, "cat")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !found {
		t.Fatal("cat should be found")
	}
	if rec.Count != 5 {
		t.Errorf("Count: got %d, want 5", rec.Count)
	}
	if rec.Category != "NN" {
		t.Errorf("Category must keep first-seen label: got %q, want NN", rec.Category)
	}
	if rec.CreatedAt.IsZero() || rec.UpdatedAt.IsZero() {
		t.Errorf("Timestamps must be set: %+v", rec)
	}
	if rec.UpdatedAt.Before(rec.CreatedAt) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", rec.UpdatedAt, rec.CreatedAt)
	}
}

func TestWordsPersistAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "words.db")

	words, err := OpenWords(ctx, path)
	if err != nil {
		t.Fatalf("OpenWords: %v", err)
	}
	if _, err := words.Merge(ctx, map[string]int64{"durable": 7}, staticTag("JJ")); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if err := words.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenWords(ctx, path)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	defer reopened.Close()

	rec, found, err := reopened.Lookup(ctx, "durable")
	if err != nil || !found {
		t.Fatalf("Lookup after reopen: found=%v err=%v", found, err)
	}
	if rec.Count != 7 || rec.Category != "JJ" {
		t.Errorf("Record after reopen: %+v", rec)
	}
}

func TestWordsRankTieBreak(t *testing.T) {
	ctx := context.Background()
	words, err := OpenWords(ctx, filepath.Join(t.TempDir(), "words.db"))
	if err != nil {
		t.Fatalf("OpenWords: %v", err)
	}
	defer words.Close()

	if _, err := words.Merge(ctx, map[string]int64{"cat": 5, "bat": 5, "dog": 3}, staticTag("NN")); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	entries, err := words.Rank(ctx, 3)
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	wantOrder := []string{"bat", "cat", "dog"}
	if len(entries) != 3 {
		t.Fatalf("Rank returned %d entries, want 3", len(entries))
	}
	for i, word := range wantOrder {
		if entries[i].Word != word {
			t.Errorf("Rank[%d]: got %q, want %q", i, entries[i].Word, word)
		}
	}
}

func TestWordsFilterByCategory(t *testing.T) {
	ctx := context.Background()
	words, err := OpenWords(ctx, filepath.Join(t.TempDir(), "words.db"))
	if err != nil {
		t.Fatalf("OpenWords: %v", err)
	}
	defer words.Close()

	tag := tagger.Func(func(word string) string {
		if word == "run" {
			return "VB"
		}
		return "NNS"
	})
	if _, err := words.Merge(ctx, map[string]int64{"run": 2, "cats": 4, "dogs": 1}, tag); err != nil {
		t.Fatalf("Merge: %v", err)
	}

	records, err := words.FilterByCategory(ctx, "NN", 0)
	if err != nil {
		t.Fatalf("FilterByCategory: %v", err)
	}
	if len(records) != 2 || records[0].Word != "cats" || records[1].Word != "dogs" {
		t.Errorf("Filtered records: %+v", records)
	}

	limited, err := words.FilterByCategory(ctx, "NN", 1)
	if err != nil {
		t.Fatalf("FilterByCategory with limit: %v", err)
	}
	if len(limited) != 1 || limited[0].Word != "cats" {
		t.Errorf("Limited filter: %+v", limited)
	}

	total, err := words.CategoryOccurrences(ctx, "NN")
	if err != nil || total != 5 {
		t.Errorf("CategoryOccurrences: total=%d err=%v", total, err)
	}
	grand, err := words.TotalOccurrences(ctx)
	if err != nil || grand != 7 {
		t.Errorf("TotalOccurrences: total=%d err=%v", grand, err)
	}
}

func TestWordsEmptyStore(t *testing.T) {
	ctx := context.Background()
	words, err := OpenWords(ctx, filepath.Join(t.TempDir(), "words.db"))
	if err != nil {
		t.Fatalf("OpenWords: %v", err)
	}
	defer words.Close()

	if _, found, err := words.Lookup(ctx, "ghost"); err != nil || found {
		t.Errorf("Missing word: found=%v err=%v", found, err)
	}
	if n, err := words.TotalOccurrences(ctx); err != nil || n != 0 {
		t.Errorf("TotalOccurrences on empty store: n=%d err=%v", n, err)
	}
	if entries, err := words.Rank(ctx, 5); err != nil || len(entries) != 0 {
		t.Errorf("Rank on empty store: %v err=%v", entries, err)
	}
}

func TestProgressIdempotentMark(t *testing.T) {
	ctx := context.Background()
	files, err := OpenProgress(ctx, filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("OpenProgress: %v", err)
	}
	defer files.Close()

	if err := files.MarkProcessed(ctx, "/data/a.txt"); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}
	if err := files.MarkProcessed(ctx, "/data/a.txt"); err != nil {
		t.Fatalf("Re-marking must not error: %v", err)
	}

	if n, err := files.ProcessedCount(ctx); err != nil || n != 1 {
		t.Errorf("ProcessedCount: n=%d err=%v", n, err)
	}
	done, err := files.IsProcessed(ctx, "/data/a.txt")
	if err != nil || !done {
		t.Errorf("IsProcessed: done=%v err=%v", done, err)
	}
}

func TestProgressPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.db")

	files, err := OpenProgress(ctx, path)
	if err != nil {
		t.Fatalf("OpenProgress: %v", err)
	}
	if err := files.MarkProcessed(ctx, "/data/book.txt"); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}
	if err := files.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenProgress(ctx, path)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	defer reopened.Close()

	done, err := reopened.IsProcessed(ctx, "/data/book.txt")
	if err != nil || !done {
		t.Errorf("Marker must survive restart: done=%v err=%v", done, err)
	}
}
