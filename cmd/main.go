package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/asaskevich/EventBus"
	log "github.com/sirupsen/logrus"

	"github.com/mkravets/reposcout/internal/cache"
	"github.com/mkravets/reposcout/internal/clients/github"
	"github.com/mkravets/reposcout/internal/config"
	"github.com/mkravets/reposcout/internal/domain/events"
	"github.com/mkravets/reposcout/internal/logger"
	"github.com/mkravets/reposcout/internal/metrics"
	"github.com/mkravets/reposcout/internal/notify"
	"github.com/mkravets/reposcout/internal/repositories"
	"github.com/mkravets/reposcout/internal/scoring"
	"github.com/mkravets/reposcout/internal/services"
)

func buildChannels(cfg config.NotifyConfig) []notify.Channel {

	var channels []notify.Channel

	if cfg.SmtpHost != "" {
		channels = append(channels, notify.NewEmailChannel(notify.EmailConfig{
			Host:     cfg.SmtpHost,
			Port:     cfg.SmtpPort,
			Username: cfg.SmtpUsername,
			Password: cfg.SmtpPassword,
			From:     cfg.SmtpFrom,
			To:       cfg.SmtpTo,
			UseTLS:   cfg.SmtpUseTLS,
		}))
	}

	if cfg.TelegramToken != "" {
		channels = append(channels, notify.NewTelegramChannel(notify.TelegramConfig{
			Token:  cfg.TelegramToken,
			ChatID: cfg.TelegramChatID,
		}))
	}

	if cfg.SlackWebhook != "" {
		channels = append(channels, notify.NewSlackChannel(notify.SlackConfig{WebhookURL: cfg.SlackWebhook}))
	}

	if cfg.WebhookURL != "" {
		channels = append(channels, notify.NewWebhookChannel(notify.WebhookConfig{URL: cfg.WebhookURL}))
	}

	return channels
}

func runRecommender(ctx context.Context, cfg *config.Config, dbContext *repositories.DbContext,
	bus EventBus.Bus) (*services.Scheduler, *services.RecommendationsCleaner) {

	preferences := repositories.NewPreferencesRepository(dbContext.DB)
	recommendations := repositories.NewRecommendationsRepository(dbContext.DB)
	runs := repositories.NewRunsRepository(dbContext.DB)

	githubClient := github.NewClient(cfg.Github.Token)
	githubClient.SetRateLimit(cfg.Github.MaxRequestsPerSecond)

	repoCache := cache.New(cfg.Recommender.CacheRetention)

	fetcher := services.NewCandidateFetcher(githubClient, repoCache, services.FetcherConfig{
		CacheTTL:       cfg.Recommender.CacheTTL,
		MaxPages:       cfg.Github.MaxSearchPages,
		PerPage:        cfg.Github.PerPage,
		RateLimitFloor: cfg.Github.RateLimitFloor,
	})

	dispatcher := notify.NewDispatcher(buildChannels(cfg.Notify), notify.DispatcherConfig{})

	orchestrator, err := services.NewOrchestrator(bus, fetcher, scoring.NewEngine(), dispatcher,
		preferences, recommendations, runs, services.OrchestratorConfig{
			RunTimeout:  cfg.Recommender.RunTimeout,
			DedupWindow: cfg.Recommender.DedupWindow,
		})
	if err != nil {
		log.Fatalf("can't create orchestrator: %v", err)
	}

	scheduler, err := services.NewScheduler(preferences, orchestrator,
		services.SchedulerConfig{DefaultCron: cfg.Recommender.DefaultCron})
	if err != nil {
		log.Fatalf("can't create scheduler: %v", err)
	}
	if err = scheduler.Start(ctx); err != nil {
		log.Fatalf("can't start scheduler: %v", err)
	}

	cleaner, err := services.NewRecommendationsCleaner(recommendations, cfg.Recommender.RetentionDays)
	if err != nil {
		log.Fatalf("can't create cleaner: %v", err)
	}

	return scheduler, cleaner
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer()

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	if err = dbContext.Migrate(); err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	bus := EventBus.New()
	err = bus.Subscribe(events.RunCompletedTopic, func(event events.RunCompleted) {
		run := event.Run
		if !run.Terminal() {
			log.Warnf("run %v published in non-terminal state %v", run.ID, run.Status)
			return
		}
		log.Infof("run %v for preference %v finished with status %v: fetched %v, scored %v, recommended %v",
			run.ID, run.PreferenceID, run.Status,
			run.Counters.CandidatesFetched, run.Counters.CandidatesScored, run.Counters.Recommendations)
	})
	if err != nil {
		log.Fatalf("can't subscribe to run events: %v", err)
	}

	scheduler, cleaner := runRecommender(ctx, cfg, dbContext, bus)

	<-ctx.Done()

	log.Info("Shutting down services...")
	scheduler.Stop()
	cleaner.Stop()
	log.Info("Services stopped.")
}
