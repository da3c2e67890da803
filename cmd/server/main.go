package main

import (
	"fmt"
	"log"

	"fiscos/internal/config"
	"fiscos/internal/generator"
	"fiscos/internal/generator/claude"
	"fiscos/internal/generator/gemini"
	"fiscos/internal/generator/openai"
	"fiscos/internal/handler"
	"fiscos/internal/pipeline"
	"fiscos/internal/port"
	"fiscos/internal/reader"
	"fiscos/internal/repository/postgres"
	"fiscos/internal/router"
	"fiscos/internal/service"
	s3storage "fiscos/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	recordRepo := postgres.NewRecordRepo(db)

	gen, err := buildGenerator(&cfg.Generator)
	if err != nil {
		return fmt.Errorf("failed to initialize generation providers: %w", err)
	}

	var storage port.ObjectStorage
	if cfg.Archive.Enabled() {
		storage, err = s3storage.NewS3Client(&cfg.Archive)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	}

	// Initialize services
	docReader := reader.New()
	pl := pipeline.New(gen)
	auditSvc := service.NewAuditService(docReader, pl, recordRepo, storage, &cfg.Archive, &cfg.Batch)
	recordSvc := service.NewRecordService(recordRepo)
	reportSvc := service.NewReportService(recordRepo, gen)

	// Initialize handlers
	auditH := handler.NewAuditHandler(auditSvc)
	recordH := handler.NewRecordHandler(recordSvc)
	reportH := handler.NewReportHandler(reportSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(auditH, recordH, reportH, healthH, cfg.CORS.AllowedOrigins)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// buildGenerator registers the provider factories and assembles the fallback
// chain from the configured providers, in priority order.
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
