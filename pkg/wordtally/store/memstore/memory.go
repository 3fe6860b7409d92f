// Package memstore provides in-memory implementations of the word and
// progress repositories for tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/wordtally/pkg/wordtally/store"
	"github.com/cognicore/wordtally/pkg/wordtally/tagger"
)

// Words is an in-memory store.WordRepository.
type Words struct {
	mu      sync.RWMutex
	records map[string]store.WordRecord
}

// NewWords creates an empty in-memory word repository.
func NewWords() *Words {
	return &Words{records: make(map[string]store.WordRecord)}
}

// Close implements store.WordRepository.
func (s *Words) Close() error { return nil }

// Merge applies one batch of occurrence counts.
func (s *Words) Merge(ctx context.Context, counts map[string]int64, tag tagger.Func) (store.MergeReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rep store.MergeReport

	words := make([]string, 0, len(counts))
	for w, c := range counts {
		if w == "" || c <= 0 {
			continue
		}
		words = append(words, w)
	}
	sort.Strings(words)

	now := time.Now().UTC()
	for _, w := range words {
		c := counts[w]
		if rec, ok := s.records[w]; ok {
			rec.Count += c
			rec.UpdatedAt = now
			s.records[w] = rec
			rep.UpdatedWords++
		} else {
			label := tagger.Unknown
			if tag != nil {
				label = tag(w)
			}
			s.records[w] = store.WordRecord{
				Word:      w,
				Count:     c,
				Category:  label,
				CreatedAt: now,
				UpdatedAt: now,
			}
			rep.NewWords++
		}
		rep.Occurrences += c
	}
	return rep, nil
}

// Lookup returns the record for a word.
func (s *Words) Lookup(ctx context.Context, word string) (store.WordRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if rec, ok := s.records[word]; ok {
		return rec, true, nil
	}
	return store.WordRecord{}, false, nil
}

// DistinctWords returns the number of stored words.
func (s *Words) DistinctWords(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.records)), nil
}

// TotalOccurrences returns the sum of all counts.
func (s *Words) TotalOccurrences(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, rec := range s.records {
		total += rec.Count
	}
	return total, nil
}

// CategoryOccurrences sums counts over matching categories.
func (s *Words) CategoryOccurrences(ctx context.Context, pattern string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, rec := range s.records {
		if strings.Contains(rec.Category, pattern) {
			total += rec.Count
		}
	}
	return total, nil
}

// Rank returns entries ordered by count descending, word ascending.
func (s *Words) Rank(ctx context.Context, limit int) ([]store.RankEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]store.RankEntry, 0, len(s.records))
	for _, rec := range s.records {
		entries = append(entries, store.RankEntry{Word: rec.Word, Count: rec.Count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Word < entries[j].Word
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// FilterByCategory returns matching records in Rank order.
func (s *Words) FilterByCategory(ctx context.Context, pattern string, limit int) ([]store.WordRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []store.WordRecord
	for _, rec := range s.records {
		if strings.Contains(rec.Category, pattern) {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Count != records[j].Count {
			return records[i].Count > records[j].Count
		}
		return records[i].Word < records[j].Word
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Files is an in-memory store.FileRepository.
type Files struct {
	mu        sync.RWMutex
	processed map[string]time.Time
}

// NewFiles creates an empty in-memory progress repository.
func NewFiles() *Files {
	return &Files{processed: make(map[string]time.Time)}
}

// Close implements store.FileRepository.
func (s *Files) Close() error { return nil }

// IsProcessed reports whether a path has been marked.
func (s *Files) IsProcessed(ctx context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.processed[path]
	return ok, nil
}

// MarkProcessed records a path; re-marking keeps the original stamp.
func (s *Files) MarkProcessed(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.processed[path]; !ok {
		s.processed[path] = time.Now().UTC()
	}
	return nil
}

// ProcessedCount returns the number of tracked paths.
func (s *Files) ProcessedCount(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.processed)), nil
}
