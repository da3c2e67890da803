// Command audit runs the extraction pipeline over a directory of documents
// without the HTTP server: one shot, results to the record store, outcome to
// stdout. Useful for backfills and local runs against a folder of invoices.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"fiscos/internal/config"
	"fiscos/internal/generator"
	"fiscos/internal/generator/claude"
	"fiscos/internal/generator/gemini"
	"fiscos/internal/generator/openai"
	"fiscos/internal/pipeline"
	"fiscos/internal/port"
	"fiscos/internal/reader"
	"fiscos/internal/repository/postgres"
	"fiscos/internal/service"
)

func main() {
	dir := flag.String("dir", "", "directory of fiscal documents to process (pdf, txt)")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*dir); err != nil {
		log.Fatal(err)
	}
}

func run(dir string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	gen, err := buildGenerator(&cfg.Generator)
	if err != nil {
		return fmt.Errorf("failed to initialize generation providers: %w", err)
	}

	files, err := collectFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no pdf or txt files found in %s", dir)
	}

	recordRepo := postgres.NewRecordRepo(db)
	auditSvc := service.NewAuditService(reader.New(), pipeline.New(gen), recordRepo, nil, &cfg.Archive, &cfg.Batch)

	result, err := auditSvc.ProcessBatch(context.Background(), files)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	fmt.Printf("batch %s: %d records appended, %d failures\n",
		result.BatchID, len(result.Records), len(result.Failures))
	for _, f := range result.Failures {
		fmt.Printf("  FAILED %s: %s\n", f.SourceFile, f.Reason)
	}
	return nil
}

func collectFiles(dir string) ([]service.BatchFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []service.BatchFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		var contentType string
		switch ext {
		case ".pdf":
			contentType = "application/pdf"
		case ".txt":
			contentType = "text/plain"
		default:
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.Name(), err)
		}
		files = append(files, service.BatchFile{
			Name:        e.Name(),
			ContentType: contentType,
			Data:        data,
		})
	}
	return files, nil
}

func buildGenerator(cfg *config.GeneratorConfig) (port.TextGenerator, error) {
	generator.RegisterProvider("openai", func(c *config.GeneratorProviderConfig) (port.TextGenerator, error) {
		return openai.NewClient(c), nil
	})
	generator.RegisterProvider("claude", func(c *config.GeneratorProviderConfig) (port.TextGenerator, error) {
		return claude.NewClient(c), nil
	})
	generator.RegisterProvider("gemini", func(c *config.GeneratorProviderConfig) (port.TextGenerator, error) {
		return gemini.NewClient(c), nil
	})

	configs := []*config.GeneratorProviderConfig{&cfg.Primary}
	if sec := cfg.SecondaryConfig(); sec != nil {
		configs = append(configs, sec)
	}
	if ter := cfg.TertiaryConfig(); ter != nil {
		configs = append(configs, ter)
	}

	var gens []port.TextGenerator
	var names []string
	for _, c := range configs {
		g, err := generator.NewGenerator(c)
		if err != nil {
			return nil, err
		}
		gens = append(gens, g)
		names = append(names, c.Provider)
	}

	// Always go through the fallback chain, even with a single provider:
	// it owns the rate-limit circuit and the service-wide outage signal.
	return generator.NewFallbackGenerator(gens, names), nil
}
