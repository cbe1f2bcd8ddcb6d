package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bgskoro21/ecommerce-be/config"
	"github.com/bgskoro21/ecommerce-be/internal/email"
	"github.com/bgskoro21/ecommerce-be/internal/health"
	"github.com/bgskoro21/ecommerce-be/internal/infrastructure/postgres"
	ctxlog "github.com/bgskoro21/ecommerce-be/internal/log"
	"github.com/bgskoro21/ecommerce-be/internal/metrics"
	"github.com/bgskoro21/ecommerce-be/internal/scheduler"
	"github.com/bgskoro21/ecommerce-be/internal/token"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	schedule, err := cron.ParseStandard(cfg.MailerSchedule)
	if err != nil {
		log.Fatalf("mailer schedule %q: %v", cfg.MailerSchedule, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	userRepo := postgres.NewUserRepository(pool)
	emailLogRepo := postgres.NewEmailLogRepository(pool)

	tokens := token.NewService(userRepo, []byte(cfg.JWTSecret),
		token.WithTTLs(cfg.AccessTTL(), cfg.RefreshTTL(), cfg.PurposeTTL()))
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	mailer := scheduler.NewMailer(emailLogRepo, tokens, sender, cfg.AppURL, logger, schedule)
	go mailer.Start(ctx)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("scheduler shut down")
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
