package app

import (
	"context"
	"log/slog"
	"net/http"

	"RegulatorScanner/internal/config"
	"RegulatorScanner/internal/infrastructure/llm"
	"RegulatorScanner/internal/infrastructure/parser"
	"RegulatorScanner/internal/infrastructure/storage"
	"RegulatorScanner/internal/infrastructure/telegram"
	"RegulatorScanner/internal/logging"
	"RegulatorScanner/internal/ports"
	"RegulatorScanner/internal/render"
	"RegulatorScanner/internal/scanner"
	"RegulatorScanner/internal/usecase"
)

// Application wires configuration into adapters and the run pipeline.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	audit    *storage.SQLiteRepository
	logger   *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout.Std()}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewFeedScanner(httpClient, cfg.HTTP.UserAgent, cfg.HTTP.RetryAttempts, cfg.HTTP.RetryBackoff.Std()))
	registry.Register(parser.NewPageScanner(httpClient, cfg.HTTP.UserAgent, cfg.HTTP.RetryAttempts, cfg.HTTP.RetryBackoff.Std()))
	registry.Register(parser.NewRenderedScanner(cfg.HTTP.PageLoadTimeout.Std(), cfg.HTTP.UserAgent))

	source := parser.NewStrategySource(registry, cfg.Sources, baseLogger.With("component", "source"))
	extractor := parser.NewExtractor(httpClient, cfg.HTTP.UserAgent, cfg.HTTP.RetryAttempts, cfg.HTTP.RetryBackoff.Std())
	store := storage.NewFileStore(cfg.Outputs.CorpusPath, baseLogger.With("component", "store"))
	enricher := llm.NewClassifier(cfg.OpenAI, baseLogger.With("component", "enricher"))
	if !enricher.Enabled() {
		baseLogger.Warn("no OpenAI API key configured, enrichment disabled")
	}

	var audit *storage.SQLiteRepository
	var repository ports.ProcessedRepository
	if cfg.Audit.DBPath != "" {
		opened, err := storage.OpenSQLiteRepository(cfg.Audit.DBPath)
		if err != nil {
			baseLogger.Warn("audit db unavailable", "path", cfg.Audit.DBPath, "error", err)
		} else {
			audit = opened
			repository = opened
		}
	}

	var notifier ports.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:          source,
		Extractor:       extractor,
		Enricher:        enricher,
		Store:           store,
		Repository:      repository,
		Notifier:        notifier,
		Renderer:        render.NewRenderer(),
		HTMLPath:        cfg.Outputs.HTMLPath,
		XMLPath:         cfg.Outputs.XMLPath,
		PolitenessDelay: cfg.HTTP.PolitenessDelay.Std(),
		Logger:          baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, audit: audit, logger: baseLogger}
}

// Run performs a single pipeline execution; scheduling stays external.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}
	defer a.audit.Close()

	return a.pipeline.Run(ctx)
}
