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
	"github.com/bgskoro21/ecommerce-be/internal/health"
	"github.com/bgskoro21/ecommerce-be/internal/infrastructure/postgres"
	ctxlog "github.com/bgskoro21/ecommerce-be/internal/log"
	"github.com/bgskoro21/ecommerce-be/internal/metrics"
	"github.com/bgskoro21/ecommerce-be/internal/oauth"
	"github.com/bgskoro21/ecommerce-be/internal/token"
	httptransport "github.com/bgskoro21/ecommerce-be/internal/transport/http"
	"github.com/bgskoro21/ecommerce-be/internal/transport/http/handler"
	"github.com/bgskoro21/ecommerce-be/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	emailLogRepo := postgres.NewEmailLogRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	productRepo := postgres.NewProductRepository(pool)

	tokens := token.NewService(userRepo, []byte(cfg.JWTSecret),
		token.WithTTLs(cfg.AccessTTL(), cfg.RefreshTTL(), cfg.PurposeTTL()))
	google := oauth.NewGoogleClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	authUsecase := usecase.NewAuthUsecase(userRepo, emailLogRepo, tokens, google, logger, cfg.BcryptCost)
	storeUsecase := usecase.NewStoreUsecase(storeRepo)
	productUsecase := usecase.NewProductUsecase(productRepo, storeRepo)

	authHandler := handler.NewAuthHandler(authUsecase, logger)
	storeHandler := handler.NewStoreHandler(storeUsecase, logger)
	productHandler := handler.NewProductHandler(productUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, tokens, authHandler, storeHandler, productHandler),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
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
