package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"mediacontacts/internal/config"
	"mediacontacts/internal/domain"
	"mediacontacts/internal/heuristics"
	"mediacontacts/internal/heuristics/beat"
	"mediacontacts/internal/heuristics/email"
	"mediacontacts/internal/heuristics/freelancer"
	"mediacontacts/internal/heuristics/syndication"
	"mediacontacts/internal/infrastructure/discovery"
	"mediacontacts/internal/infrastructure/scheduler"
	"mediacontacts/internal/infrastructure/storage"
	"mediacontacts/internal/infrastructure/telegram"
	"mediacontacts/internal/logging"
	"mediacontacts/internal/ports"
	"mediacontacts/internal/usecase"
)

// Application wires configs to analyzers, adapters and the import pipeline.
type Application struct {
	cfg       config.Config
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	db        *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	emails, err := email.NewWithRules(emailRulesFromConfig(cfg.Heuristics.EmailRules), nil)
	if err != nil {
		return nil, fmt.Errorf("compile email rules: %w", err)
	}

	store := syndication.NewMemoryStore(cfg.Heuristics.FingerprintCapacity)
	analyzer := heuristics.New(heuristics.Deps{
		Beats:       beat.NewWithTables(cfg.Heuristics.BeatSections, cfg.Heuristics.BeatKeywords),
		Emails:      emails,
		Freelancers: freelancer.New(),
		Syndication: syndication.New(store, logging.Component(baseLogger, "syndication")),
		Logger:      logging.Component(baseLogger, "heuristics"),
	})

	var repository ports.ContactRepository
	var db *sql.DB
	if cfg.Database.DSN != "" {
		db, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		repository = storage.NewPostgresRepository(db)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(
			cfg.Notifications.Telegram.BotToken,
			cfg.Notifications.Telegram.ChatID,
		)
	}

	pipeline := usecase.NewPipeline(
		usecase.PipelineDeps{
			Source:     discovery.NewClient(cfg.Discovery),
			Analyzer:   analyzer,
			Repository: repository,
			Notifier:   notifier,
			Logger:     logging.Component(baseLogger, "pipeline"),
		},
		usecase.PipelineConfig{
			Query: domain.DiscoveryQuery{
				Topic:    cfg.Discovery.Query.Topic,
				Country:  cfg.Discovery.Query.Country,
				Language: cfg.Discovery.Query.Language,
				Limit:    cfg.Discovery.Query.Limit,
			},
			MinContactScore: cfg.Heuristics.MinContactScore,
			SkipThreshold:   cfg.Heuristics.SyndicationSkipThreshold,
		},
	)

	driver := scheduler.NewTickerScheduler(cfg.Scheduler.Interval, true)
	runner := usecase.NewScheduler(driver, pipeline, logging.Component(baseLogger, "scheduler"))

	return &Application{cfg: cfg, pipeline: pipeline, scheduler: runner, db: db}, nil
}

// Run performs a single import run.
func (a *Application) Run(ctx context.Context) error {
	if a.pipeline == nil {
		return nil
	}

	now := time.Now().In(a.cfg.Scheduler.Location())
	_, err := a.pipeline.ProcessRun(ctx, now)
	return err
}

// Serve starts the recurring scheduler and blocks until the context ends.
func (a *Application) Serve(ctx context.Context) error {
	if a.scheduler == nil {
		return nil
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()
	return a.scheduler.Stop(context.Background())
}

// Close releases held resources.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// emailRulesFromConfig maps loadable rule rows onto the typed analyzer rules.
func emailRulesFromConfig(rows []config.EmailRuleConfig) []email.Rule {
	rules := make([]email.Rule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, email.Rule{
			Pattern:    row.Pattern,
			Type:       domain.EmailType(row.Type),
			Alias:      domain.AliasType(row.Alias),
			Priority:   domain.Priority(row.Priority),
			Confidence: row.Confidence,
			Reason:     row.Reason,
		})
	}
	return rules
}
