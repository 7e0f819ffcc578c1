package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"InvestingIdeas/internal/config"
	"InvestingIdeas/internal/domain"
	"InvestingIdeas/internal/infrastructure/fetch"
	"InvestingIdeas/internal/infrastructure/output"
	"InvestingIdeas/internal/infrastructure/parser"
	"InvestingIdeas/internal/infrastructure/storage"
	"InvestingIdeas/internal/infrastructure/telegram"
	"InvestingIdeas/internal/logging"
	"InvestingIdeas/internal/normalize"
	"InvestingIdeas/internal/usecase"
	"InvestingIdeas/pkg/logger"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	repo     *storage.PostgresRepository
}

// New builds a runnable application instance. The Postgres snapshot store and
// Telegram digest are only wired when configured.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	links, err := parser.NewLinkExtractor(cfg.Site)
	if err != nil {
		return nil, fmt.Errorf("link extractor: %w", err)
	}
	registry, err := parser.NewDefaultRegistry(cfg.Site)
	if err != nil {
		return nil, fmt.Errorf("strategy registry: %w", err)
	}

	deps := usecase.PipelineDeps{
		Fetcher:          fetch.NewClient(nil, cfg.HTTP.Timeout),
		Links:            links,
		Companies:        parser.NewCompanyExtractor(registry),
		Normalizer:       normalize.New(),
		Writer:           output.NewJSONWriter(cfg.Output.Path),
		Reporter:         logger.New(""),
		Logger:           baseLogger.With("component", "pipeline"),
		DiscoveryURL:     cfg.Site.DiscoveryURL,
		DiscoveryHeaders: cfg.HTTP.DiscoveryHeaders(),
		IdeaHeaders:      cfg.HTTP.IdeaHeaders(),
		OutputPath:       cfg.Output.Path,
		Workers:          cfg.Scraper.Workers,
	}

	application := &Application{cfg: cfg, logger: baseLogger}

	if cfg.Database.DSN != "" {
		repo, err := storage.Connect(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("snapshot store: %w", err)
		}
		application.repo = repo
		deps.Repository = repo
	}

	if cfg.Notifications.Telegram.Enabled() {
		deps.Notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	application.pipeline = usecase.NewPipeline(deps)
	return application, nil
}

// Run performs a single scrape bounded by the configured run timeout.
func (a *Application) Run(ctx context.Context) (domain.RunSummary, error) {
	if a.pipeline == nil {
		return domain.RunSummary{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Scraper.RunTimeout)
	defer cancel()

	runID := uuid.NewString()
	a.logger.Info("run started", "run_id", runID, "discovery_url", a.cfg.Site.DiscoveryURL, "workers", a.cfg.Scraper.Workers)

	summary, err := a.pipeline.Run(ctx, runID)
	if err != nil {
		return summary, err
	}

	a.logger.Info("run finished",
		"run_id", runID,
		"ideas", summary.Ideas,
		"failed_ideas", len(summary.FailedIdeas),
		"companies", summary.Companies,
		"output", summary.OutputPath,
	)
	return summary, nil
}

// Close releases external resources.
func (a *Application) Close() {
	if a.repo != nil {
		a.repo.Close()
	}
}
