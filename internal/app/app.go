package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"oncodigest/internal/config"
	"oncodigest/internal/infrastructure/feed"
	"oncodigest/internal/infrastructure/metric"
	"oncodigest/internal/infrastructure/output"
	"oncodigest/internal/infrastructure/pubmed"
	"oncodigest/internal/infrastructure/scheduler"
	"oncodigest/internal/infrastructure/unpaywall"
	"oncodigest/internal/logging"
	"oncodigest/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	logger   *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	userAgent := fmt.Sprintf("oncology-digest/1.0 (%s)", cfg.ContactEmail)
	httpClient := &http.Client{Timeout: 45 * time.Second}

	source := feed.NewReader(httpClient, userAgent, true,
		baseLogger.With("component", "feed"))
	eutils := pubmed.NewClient(httpClient, cfg.ContactEmail,
		baseLogger.With("component", "pubmed"))
	oa := unpaywall.NewClient(httpClient, cfg.ContactEmail,
		baseLogger.With("component", "unpaywall"))
	metrics := metric.NewLoader(cfg.Metric,
		baseLogger.With("component", "metric"))
	writer := output.NewWriter(cfg.Output.Dir, cfg.Output.File)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Groups:           cfg.Groups(),
		DaysBack:         cfg.DaysBack,
		IncludeAbstracts: cfg.IncludeAbstracts,
		MetricName:       cfg.Metric.Name,
		Source:           source,
		Summaries:        eutils,
		Abstracts:        eutils,
		OpenAccess:       oa,
		Metrics:          metrics,
		Writer:           writer,
		Logger:           baseLogger.With("component", "pipeline"),
	})

	return &Application{cfg: cfg, pipeline: pipeline, logger: baseLogger}
}

// Run executes a single digest build, or keeps rebuilding on schedule
// when a cron expression is configured.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	spec := a.cfg.Scheduler.CronExpression
	if spec == "" {
		return a.pipeline.Run(ctx, time.Now().UTC())
	}

	driver := scheduler.NewCronScheduler(spec, a.cfg.Scheduler.Location())
	runner := usecase.NewScheduler(driver, a.pipeline, a.logger.With("component", "scheduler"))
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return runner.Stop(stopCtx)
}
