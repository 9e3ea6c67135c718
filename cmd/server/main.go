package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	alertrepository "defiguard/internal/alert/repository"
	alertservice "defiguard/internal/alert/service"
	alerthttp "defiguard/internal/alert/transport/http"
	"defiguard/internal/config"
	"defiguard/internal/metrics"
	"defiguard/internal/registry"
	tokenrepository "defiguard/internal/token/repository"
	userrepository "defiguard/internal/user/repository"
	userservice "defiguard/internal/user/service"
	userhttp "defiguard/internal/user/transport/http"
	"defiguard/pkg/db"
	"defiguard/pkg/logger"
	"defiguard/pkg/middleware"
)

var server *http.Server

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	zlog.Info("connected to PostgreSQL")

	metrics.InitMetrics()

	// users + auth
	userRepo := userrepository.NewPostgresUserRepository(database)
	userSvc := userservice.NewUserService(userRepo)
	refreshTokenRepo := tokenrepository.NewRefreshTokenRepository(database)
	userHandler := userhttp.NewHandler(userSvc, cfg.JWTSecret, refreshTokenRepo)

	// alerts
	reg := registry.Default()
	alertRepo := alertrepository.NewPostgresAlertRepo(database, zlog)
	if err := alertRepo.SeedReference(context.Background(), reg.Chains(), reg.Assets()); err != nil {
		zlog.Fatal("seeding reference tables failed", zap.Error(err))
	}
	alertSvc := alertservice.NewService(alertRepo, reg, zlog)
	alertHandler := alerthttp.NewAlertHandler(alertSvc, zlog)

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://localhost:3000", "http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.GlobalRateLimiter.Middleware)
	r.Use(middleware.ValidateRequest)
	r.Use(middleware.MetricsMiddleware)

	// public routes
	r.Post("/auth/register", userHandler.Register)
	r.Post("/auth/login", userHandler.Login)
	r.Post("/auth/refresh", userHandler.Refresh)

	// protected routes
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.JWTAuth(cfg.JWTSecret))

		pr.Post("/api/alerts/create/personalized-market", alertHandler.CreatePersonalizedMarket)
		pr.Post("/api/alerts/create/personalized-comparison", alertHandler.CreatePersonalizedComparison)
		pr.Get("/api/alerts", alertHandler.List)
		pr.Get("/api/alerts/{id}", alertHandler.Get)
		pr.Put("/api/alerts/{id}", alertHandler.Update)
		pr.Delete("/api/alerts/{id}", alertHandler.Delete)
	})

	r.With(middleware.BasicAuth(cfg.MetricsUser, cfg.MetricsPassword)).
		Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	server = &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	zlog.Info("server running", zap.String("port", cfg.Port))

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		zlog.Info("shutdown signal received, starting graceful shutdown")
		shutdownServer(zlog)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func shutdownServer(zlog *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		zlog.Error("server shutdown failed", zap.Error(err))
	}

	zlog.Info("server stopped")
}
