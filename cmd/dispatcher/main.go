package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/motoyard/motoyard-api/internal/config"
	"github.com/motoyard/motoyard-api/internal/email"
	"github.com/motoyard/motoyard-api/internal/repository/postgres"
	dispatchService "github.com/motoyard/motoyard-api/internal/service/dispatch"
	"github.com/motoyard/motoyard-api/pkg/linkedin"
	"github.com/motoyard/motoyard-api/pkg/logger"
	"github.com/motoyard/motoyard-api/pkg/meta"
	"github.com/motoyard/motoyard-api/pkg/metrics"
	"github.com/motoyard/motoyard-api/pkg/worker"
)

// workerConfig holds the dispatcher-only knobs. Everything shared with the
// API binary comes from the yaml config.
type workerConfig struct {
	Schedule   string `envconfig:"DISPATCH_SCHEDULE" default:"* * * * *"`
	BatchSize  int    `envconfig:"DISPATCH_BATCH_SIZE" default:"50"`
	HealthPort int    `envconfig:"DISPATCH_HEALTH_PORT" default:"8081"`
}

func main() {
	var wcfg workerConfig
	if err := envconfig.Process("", &wcfg); err != nil {
		log.Fatal().Err(err).Msg("failed to load worker configuration")
	}

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

	contentRepo := postgres.NewContentRepository(db)
	dealerRepo := postgres.NewDealerRepository(db)

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

	dispatchSvc := dispatchService.NewService(
		contentRepo,
		dealerRepo,
		metaClient,
		linkedinClient,
		emailSvc,
		wcfg.BatchSize,
		appLogger,
		metrics.NewMetrics("motoyard_dispatcher"),
	)

	dispatchWorker := worker.NewDispatchWorker(dispatchSvc, wcfg.Schedule, appLogger)

	// Liveness endpoint so orchestrators can tell a wedged worker from a
	// quiet one.
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ok"}`)
	})
	healthSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", wcfg.HealthPort),
		Handler: mux,
	}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("health server error")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down dispatcher")
		cancel()
	}()

	log.Info().Str("schedule", wcfg.Schedule).Int("batch_size", wcfg.BatchSize).Msg("starting dispatcher")

	if err := dispatchWorker.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("dispatcher failed")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server shutdown error")
	}
}
