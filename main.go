package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SNS-EUGENE/sto-mediacenter-sub001/config"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/cron"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/database"
	sessionRepo "github.com/SNS-EUGENE/sto-mediacenter-sub001/database/repository/session"
	snapshotRepo "github.com/SNS-EUGENE/sto-mediacenter-sub001/database/repository/snapshot"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/handlers"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/middleware"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/routes"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/services/mailbox"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/services/notification"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/services/portal"
	syncsvc "github.com/SNS-EUGENE/sto-mediacenter-sub001/services/sync"
	"github.com/SNS-EUGENE/sto-mediacenter-sub001/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	mongoClient, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to connect to MongoDB: %v", err)
	}
	utils.InitCodeCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	sessRepo := sessionRepo.NewMongoSessionRepo(mongoClient, cfg.DatabaseName, cfg.SessionEncryptionKey)
	snapRepo := snapshotRepo.NewMongoSnapshotRepo(mongoClient, cfg.DatabaseName)

	// services.
	sessionStore := portal.NewDefaultSessionStore(sessRepo, logger)

	imapSource := &mailbox.IMAPSource{
		Addr:     cfg.IMAPAddr,
		Username: cfg.IMAPUsername,
		Password: cfg.IMAPPassword,
		Mailbox:  cfg.IMAPMailbox,
	}
	codeRetriever := mailbox.NewDefaultCodeRetriever(
		imapSource,
		cfg.VerificationSubjectKeyword,
		time.Duration(cfg.VerificationMaxAgeMinutes)*time.Minute,
		utils.GetCodeCacheClient(),
		logger,
	)

	portalClient := portal.NewClient(cfg.PortalBaseURL)
	authService := portal.NewDefaultAuthService(
		portalClient,
		sessionStore,
		codeRetriever,
		time.Duration(cfg.SessionTTLHours)*time.Hour,
		logger,
	)
	scraper := portal.NewDefaultScraper(portalClient, sessionStore, cfg.ScrapePageSize, cfg.ScrapeMaxPages, logger)

	var channels []notification.Channel
	if cfg.FCMCredentialsFile != "" {
		fcmClient, err := utils.NewMessagingClient(context.Background(), cfg.FCMCredentialsFile)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize FCM client: %v", err)
		}
		channels = append(channels, notification.NewPushChannel(fcmClient, cfg.FCMTopic))
	}
	if cfg.SMTPHost != "" && len(cfg.NotifyEmailTo) > 0 {
		channels = append(channels, notification.NewEmailChannel(
			cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword,
			cfg.NotifyEmailFrom, cfg.NotifyEmailTo))
	}
	if cfg.ChatWebhookURL != "" {
		channels = append(channels, notification.NewChatChannel(cfg.ChatWebhookURL))
	}
	if len(channels) == 0 {
		logger.Warn("main: no notification channels configured, changes will only be logged")
	}
	dispatcher := notification.NewDefaultDispatcher(logger, channels...)

	engine := syncsvc.NewDefaultEngine(scraper, sessionStore, snapRepo, dispatcher, cfg.ScrapePageSize, logger)

	// Seed process state from durable storage: cold-start fallback for the
	// session, diff baseline for the first sync.
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	if err := sessionStore.LoadFromDurableStore(startupCtx); err != nil {
		logger.Sugar().Warnf("main: failed to recover portal session: %v", err)
	}
	if err := engine.InitializeStatusMap(startupCtx); err != nil {
		logger.Sugar().Warnf("main: failed to seed status snapshot: %v", err)
	}
	cancelStartup()

	// handlers.
	loginHandler := handlers.NewLoginHandler(authService, sessionStore)
	bookingHandler := handlers.NewBookingHandler(scraper)
	syncHandler := handlers.NewSyncHandler(engine)
	verificationHandler := handlers.NewVerificationHandler(codeRetriever)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		LoginHandler:         loginHandler.LoginHandler,
		SessionStatusHandler: loginHandler.SessionStatusHandler,
		LogoutHandler:        loginHandler.LogoutHandler,

		ListBookingsHandler:  bookingHandler.ListBookingsHandler,
		BookingDetailHandler: bookingHandler.BookingDetailHandler,

		RunSyncHandler:        syncHandler.RunSyncHandler,
		SyncStatusHandler:     syncHandler.SyncStatusHandler,
		ReseedSnapshotHandler: syncHandler.ReseedSnapshotHandler,

		FetchCodeHandler: verificationHandler.FetchCodeHandler,
		WaitCodeHandler:  verificationHandler.WaitCodeHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Background sync worker (no-op unless configured).
	cron.InitSyncWorker(engine)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
