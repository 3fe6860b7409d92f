// Package export renders ranked word records as tab-delimited text.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/cognicore/wordtally/pkg/wordtally/store"
)

// Options select which rows an export includes.
type Options struct {
	// Limit caps the number of rows; <= 0 exports everything.
	Limit int
	// CategoryPattern restricts rows to categories containing this
	// substring; empty matches all.
	CategoryPattern string
}

// Write renders rows in rank order: a header line, a separator, then
// one tab-delimited row per word with both percentage columns at two
// decimal places. filteredTotal is the sum of counts among records
// matching the category filter, grandTotal the sum over the whole
// store; a zero denominator yields 0.00 rather than an error.
func Write(w io.Writer, rows []store.WordRecord, filteredTotal, grandTotal int64, pattern string) error {
	header := "word\tcount\tcategory\tcategory%\toverall%"
	if pattern != "" {
		header += fmt.Sprintf("\t(category filter: %s)", pattern)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", 60)); err != nil {
		return err
	}

	for _, rec := range rows {
		_, err := fmt.Fprintf(w, "%s\t%d\t%s\t%.2f%%\t%.2f%%\n",
			rec.Word, rec.Count, rec.Category,
			percent(rec.Count, filteredTotal),
			percent(rec.Count, grandTotal),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func percent(count, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
