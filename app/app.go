package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"quick-quote/app/controller"
	"quick-quote/app/router"
	"quick-quote/config"
	"quick-quote/db"
	"quick-quote/logger"
	"quick-quote/metrics"
	"quick-quote/repository"
	"quick-quote/service"
	"quick-quote/session"
)

// Initialize wires the application from cfg and returns the HTTP handler.
// The returned cleanup releases every connection opened here.
func Initialize(ctx context.Context, cfg *config.Config) (http.Handler, func(), error) {
	log := logger.GetLogger()
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	quoteMetrics := metrics.NewQuoteMetrics(reg)

	// Session store
	var store session.Store
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, func() {}, fmt.Errorf("failed to connect to redis: %w", err)
		}
		closers = append(closers, func() { client.Close() })
		store = session.NewRedisStore(client, cfg.SessionTTL)
		log.Infow("✅ Initialize: redis session store", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
	} else {
		store = session.NewMemoryStore(cfg.SessionTTL)
		log.Infow("✅ Initialize: in-memory session store", "ttl", cfg.SessionTTL)
	}

	// Description parser
	var model service.StructuredModel
	if cfg.GeminiAPIKey != "" {
		gemini, err := service.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, func() { gemini.Close() })
		model = gemini
	} else {
		log.Warnw("⚠️  Initialize: GEMINI_API_KEY not set, descriptions will fall back to the form")
	}
	parser := service.NewParserService(model)

	// PDF and email
	logo := service.NewLogoSource(cfg.LogoPath)
	renderer := service.NewPDFRenderer(cfg, logo)
	var sender service.EmailSender = service.NewStubEmailSender()
	if sg := service.NewSendGridSender(service.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}); sg != nil {
		sender = sg
	} else {
		log.Warnw("⚠️  Initialize: SENDGRID_API_KEY not set, emails are logged only")
	}
	emailService := service.NewEmailService(sender, renderer, quoteMetrics)

	// Saved quotes
	var quotes repository.QuoteRepositoryInterface
	if cfg.DatabaseURL != "" {
		if err := db.InitDB(ctx, cfg.DatabaseURL); err != nil {
			cleanup()
			return nil, func() {}, fmt.Errorf("failed to initialize database: %w", err)
		}
		closers = append(closers, func() { db.CloseDB() })
		if err := db.EnsureSchema(ctx, db.DB); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		quotes = repository.NewQuoteRepository(db.DB)
	} else {
		log.Warnw("⚠️  Initialize: DATABASE_URL not set, quote history disabled")
	}

	// Google Drive
	var drive service.DriveServiceInterface
	if cfg.GoogleCredentialsFile != "" {
		ds, err := service.NewDriveService(ctx, cfg.GoogleCredentialsFile)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		drive = ds
	}

	// Startup configuration. A failed first sync keeps the built-in defaults.
	importer := service.NewConfigImportService()
	syncService := service.NewSyncService(importer, drive, cfg.ConfigWorkbookPath, cfg.ConfigDriveFileID, quoteMetrics)
	if syncService.Configured() {
		_, _ = syncService.Sync(ctx)
		if cfg.ConfigRefreshInterval > 0 {
			runCtx, cancel := context.WithCancel(context.Background())
			closers = append(closers, cancel)
			go syncService.Run(runCtx, cfg.ConfigRefreshInterval)
			log.Infow("✅ Initialize: configuration refresh scheduled", "interval", cfg.ConfigRefreshInterval)
		}
	}
	defaults := syncService.Current

	controllers := &router.Controllers{
		Session: controller.NewSessionController(store, parser, defaults, quoteMetrics),
		Quote: controller.NewQuoteController(controller.QuoteControllerDeps{
			Store:        store,
			Renderer:     renderer,
			Email:        emailService,
			Repository:   quotes,
			Defaults:     defaults,
			BusinessName: cfg.BusinessName,
			Metrics:      quoteMetrics,
		}),
		Config:  controller.NewConfigController(store, importer, drive, syncService, cfg.ConfigDriveFileID, quoteMetrics),
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	}

	return router.SetupRoutes(controllers), cleanup, nil
}
