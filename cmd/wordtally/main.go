package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/cognicore/wordtally/pkg/logger"
	"github.com/cognicore/wordtally/pkg/wordtally"
	"github.com/cognicore/wordtally/pkg/wordtally/charset"
	"github.com/cognicore/wordtally/pkg/wordtally/config"
	"github.com/cognicore/wordtally/pkg/wordtally/export"
	"github.com/cognicore/wordtally/pkg/wordtally/store/sqlite"
)

func main() {
	var (
		configPath     = flag.String("config", "", "Path to YAML configuration file")
		dbPath         = flag.String("db", "", "Override the words database path")
		progressPath   = flag.String("progress-db", "", "Override the progress database path")
		all            = flag.Bool("all", false, "Recursively ingest every text file under -dir (resumable)")
		dir            = flag.String("dir", "./book", "Directory to ingest with -all")
		stats          = flag.Bool("stats", false, "Show ranked word statistics")
		limit          = flag.Int("limit", 0, "Row limit for -stats (default from config)")
		search         = flag.String("search", "", "Look up a single word")
		exportPath     = flag.String("export", "", "Export words to a tab-delimited file")
		exportLimit    = flag.Int("export-limit", 0, "Export only the top N words")
		categoryFilter = flag.String("category-filter", "", "Export only categories containing this substring")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if *dbPath != "" {
		cfg.Store.WordsDB = *dbPath
	}
	if *progressPath != "" {
		cfg.Store.ProgressDB = *progressPath
	}

	ctx := context.Background()

	words, err := sqlite.OpenWords(ctx, cfg.Store.WordsDB)
	if err != nil {
		log.Fatalf("open words store: %v", err)
	}
	files, err := sqlite.OpenProgress(ctx, cfg.Store.ProgressDB)
	if err != nil {
		words.Close()
		log.Fatalf("open progress store: %v", err)
	}

	engine := wordtally.New(wordtally.Options{
		Words:          words,
		Files:          files,
		Resolver:       charset.NewResolverWith(cfg.Encoding.Confidence, cfg.Encoding.Fallbacks),
		Logger:         logger.New(cfg.Logging.Level, cfg.Logging.Format),
		Extensions:     cfg.Ingest.Extensions,
		HTMLExtensions: cfg.Ingest.HTMLExtensions,
	})
	defer engine.Close()

	ran := false

	if *all {
		ran = true
		summary, err := engine.IngestDirectory(ctx, *dir)
		if err != nil {
			log.Fatalf("ingest directory: %v", err)
		}
		printSummary(summary)
	}

	if file := flag.Arg(0); file != "" {
		ran = true
		report, err := engine.IngestFile(ctx, file)
		if err != nil {
			log.Fatalf("ingest file: %v", err)
		}
		fmt.Printf("%s: %d distinct words, %d occurrences (%d new, %d updated), encoding %s\n",
			report.Path, report.DistinctWords, report.Occurrences,
			report.NewWords, report.UpdatedWords, report.Encoding)
	}

	if *stats {
		ran = true
		if *limit <= 0 {
			*limit = cfg.Stats.Limit
		}
		st, err := engine.Stats(ctx, *limit)
		if err != nil {
			log.Fatalf("stats: %v", err)
		}
		printStats(st)
	}

	if *search != "" {
		ran = true
		rec, found, err := engine.Lookup(ctx, *search)
		if err != nil {
			log.Fatalf("search: %v", err)
		}
		if !found {
			fmt.Printf("word not found: %s\n", *search)
		} else {
			fmt.Printf("word: %s\ncount: %d\ncategory: %s\nfirst seen: %s\nlast updated: %s\n",
				rec.Word, rec.Count, rec.Category,
				rec.CreatedAt.Format("2006-01-02 15:04:05"),
				rec.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
	}

	if *exportPath != "" {
		ran = true
		out, err := os.Create(*exportPath)
		if err != nil {
			log.Fatalf("create export file: %v", err)
		}
		opts := export.Options{Limit: *exportLimit, CategoryPattern: *categoryFilter}
		if err := engine.Export(ctx, out, opts); err != nil {
			out.Close()
			log.Fatalf("export: %v", err)
		}
		if err := out.Close(); err != nil {
			log.Fatalf("close export file: %v", err)
		}
		fmt.Printf("exported to %s\n", *exportPath)
	}

	if !ran {
		usage()
	}
}

func printSummary(summary wordtally.BatchSummary) {
	fmt.Printf("run %s: found %d files, %d already processed, %d newly processed, %d failed\n",
		summary.RunID, summary.TotalFound, summary.AlreadyProcessed,
		summary.NewlyProcessed, len(summary.Failed))
	for _, failed := range summary.Failed {
		fmt.Printf("  skipped %s: %s\n", failed.Path, failed.Err)
	}
}

func printStats(st wordtally.Stats) {
	fmt.Printf("distinct words: %d\n", st.DistinctWords)
	fmt.Printf("total occurrences: %d\n", st.TotalOccurrences)
	if len(st.Top) == 0 {
		return
	}
	fmt.Printf("\n%-20s %-10s %s\n", "word", "count", "percent")
	for _, entry := range st.Top {
		fmt.Printf("%-20s %-10d %.1f%%\n", entry.Word, entry.Count, entry.Percent)
	}
}

func usage() {
	fmt.Println("wordtally: durable English word-frequency tracker")
	fmt.Println()
	fmt.Println("usage examples:")
	fmt.Println("  wordtally book.txt                      ingest one file (not tracked)")
	fmt.Println("  wordtally -all -dir ./book              ingest a directory, resumable")
	fmt.Println("  wordtally -stats -limit 20              show the most frequent words")
	fmt.Println("  wordtally -search hello                 look up one word")
	fmt.Println("  wordtally -export out.txt -export-limit 2000")
	fmt.Println("  wordtally -export out.txt -category-filter NN")
	flag.PrintDefaults()
}
