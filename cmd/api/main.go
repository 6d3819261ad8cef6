package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/motoyard/motoyard-api/internal/config"
	broadcastHandler "github.com/motoyard/motoyard-api/internal/handler/broadcast"
	contactHandler "github.com/motoyard/motoyard-api/internal/handler/contact"
	contentHandler "github.com/motoyard/motoyard-api/internal/handler/content"
	conversationHandler "github.com/motoyard/motoyard-api/internal/handler/conversation"
	dealerHandler "github.com/motoyard/motoyard-api/internal/handler/dealer"
	dispatchHandler "github.com/motoyard/motoyard-api/internal/handler/dispatch"
	healthHandler "github.com/motoyard/motoyard-api/internal/handler/health"
	templateHandler "github.com/motoyard/motoyard-api/internal/handler/template"
	vehicleHandler "github.com/motoyard/motoyard-api/internal/handler/vehicle"
	webhookHandler "github.com/motoyard/motoyard-api/internal/handler/webhook"

	authHandler "github.com/motoyard/motoyard-api/internal/handler/auth"
	"github.com/motoyard/motoyard-api/internal/email"
	"github.com/motoyard/motoyard-api/internal/middleware"
	"github.com/motoyard/motoyard-api/internal/repository/postgres"
	"github.com/motoyard/motoyard-api/internal/router"
	authService "github.com/motoyard/motoyard-api/internal/service/auth"
	broadcastService "github.com/motoyard/motoyard-api/internal/service/broadcast"
	contactService "github.com/motoyard/motoyard-api/internal/service/contact"
	contentService "github.com/motoyard/motoyard-api/internal/service/content"
	conversationService "github.com/motoyard/motoyard-api/internal/service/conversation"
	dealerService "github.com/motoyard/motoyard-api/internal/service/dealer"
	dispatchService "github.com/motoyard/motoyard-api/internal/service/dispatch"
	templateService "github.com/motoyard/motoyard-api/internal/service/template"
	vehicleService "github.com/motoyard/motoyard-api/internal/service/vehicle"
	webhookService "github.com/motoyard/motoyard-api/internal/service/webhook"
	"github.com/motoyard/motoyard-api/internal/store"
	"github.com/motoyard/motoyard-api/pkg/auth"
	"github.com/motoyard/motoyard-api/pkg/linkedin"
	"github.com/motoyard/motoyard-api/pkg/logger"
	"github.com/motoyard/motoyard-api/pkg/meta"
	"github.com/motoyard/motoyard-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	rdb, err := store.NewRedisClient(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	retention := store.DefaultRetention
	if cfg.Redis.RetentionDays > 0 {
		retention = time.Duration(cfg.Redis.RetentionDays) * 24 * time.Hour
	}
	appMetrics := metrics.NewMetrics("motoyard")
	messageStore := store.NewRedisStore(rdb, retention, &appLogger.ZL).WithMetrics(appMetrics)

	dealerRepo := postgres.NewDealerRepository(db)
	contactRepo := postgres.NewContactRepository(db)
	templateRepo := postgres.NewTemplateRepository(db)
	contentRepo := postgres.NewContentRepository(db)
	vehicleRepo := postgres.NewVehicleRepository(db)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})

	metaClient := meta.NewClient(cfg.Meta.BaseURL)
	linkedinClient := linkedin.NewClient(cfg.LinkedIn.BaseURL)

	var emailSvc email.Service
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	} else {
		emailSvc = email.NewNoopService()
	}

	authSvc := authService.NewService(dealerRepo, jwtSvc, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	dealerSvc := dealerService.NewService(dealerRepo)
	contactSvc := contactService.NewService(contactRepo)
	templateSvc := templateService.NewService(templateRepo)
	contentSvc := contentService.NewService(contentRepo)
	vehicleSvc := vehicleService.NewService(vehicleRepo, dealerRepo, appLogger)
	webhookSvc := webhookService.NewService(dealerRepo, contactRepo, messageStore, appLogger, appMetrics)
	conversationSvc := conversationService.NewService(messageStore, metaClient, appLogger)
	broadcastSvc := broadcastService.NewService(dealerRepo, templateRepo, contactRepo, messageStore, metaClient, appLogger, appMetrics)
	dispatchSvc := dispatchService.NewService(contentRepo, dealerRepo, metaClient, linkedinClient, emailSvc, 0, appLogger, appMetrics)

	authMW := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(
		authMW,
		healthHandler.NewHandler(db, rdb),
		authHandler.NewHandler(authSvc),
		webhookHandler.NewHandler(webhookSvc, cfg.Webhook.VerifyToken),
		dispatchHandler.NewHandler(dispatchSvc, cfg.Cron.Secret),
		dealerHandler.NewHandler(dealerSvc),
		contactHandler.NewHandler(contactSvc),
		templateHandler.NewHandler(templateSvc),
		contentHandler.NewHandler(contentSvc),
		vehicleHandler.NewHandler(vehicleSvc),
		conversationHandler.NewHandler(conversationSvc, dealerSvc),
		broadcastHandler.NewHandler(broadcastSvc),
		router.RouterConfig{
			RateLimit:     rate.Limit(100),
			RateBurst:     200,
			Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "motoyard_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
