package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/recicla/recicla-api/internal/config"
	"github.com/recicla/recicla-api/internal/domain/auth"
	"github.com/recicla/recicla-api/internal/domain/bin"
	"github.com/recicla/recicla-api/internal/domain/disposal"
	"github.com/recicla/recicla-api/internal/domain/evidence"
	"github.com/recicla/recicla-api/internal/domain/ledger"
	"github.com/recicla/recicla-api/internal/domain/penalty"
	"github.com/recicla/recicla-api/internal/domain/report"
	"github.com/recicla/recicla-api/internal/domain/reward"
	"github.com/recicla/recicla-api/internal/domain/user"
	"github.com/recicla/recicla-api/internal/middleware"
	"github.com/recicla/recicla-api/internal/pkg/database"
	"github.com/recicla/recicla-api/internal/pkg/jwt"
	pkgresponse "github.com/recicla/recicla-api/internal/pkg/response"
	"github.com/recicla/recicla-api/internal/pkg/storage"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	log.Info().
		Str("env", cfg.Env).
		Str("port", cfg.Port).
		Msg("Starting Recicla API")

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(redisClient)

	jwtService := jwt.NewService(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	var store storage.Storage
	if cfg.StorageBackend == "s3" {
		store, err = storage.NewS3Storage(storage.Config{
			S3Endpoint:  cfg.S3Endpoint,
			S3Region:    cfg.S3Region,
			S3AccessKey: cfg.S3AccessKey,
			S3SecretKey: cfg.S3SecretKey,
			S3Bucket:    cfg.S3Bucket,
			S3PublicURL: cfg.S3PublicURL,
		})
	} else {
		store, err = storage.NewLocalStorage(cfg.LocalPath, cfg.LocalBaseURL)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}

	// ---------- Repositories ----------
	userRepo := user.NewRepository(db)
	ledgerRepo := ledger.NewRepository(db)
	binRepo := bin.NewRepository(db)
	evidenceRepo := evidence.NewRepository(db)
	disposalRepo := disposal.NewRepository(db, ledgerRepo)
	rewardRepo := reward.NewRepository(db, ledgerRepo)
	penaltyRepo := penalty.NewRepository(db)
	reportRepo := report.NewRepository(db)

	// ---------- Services ----------
	ledgerService := ledger.NewService(ledgerRepo)
	authService := auth.NewService(userRepo, ledgerService, jwtService, redisClient, log.Logger)
	binService := bin.NewService(binRepo)
	evidenceService := evidence.NewService(evidenceRepo, store, redisClient)
	disposalService := disposal.NewService(disposalRepo, binRepo, evidenceRepo,
		redisClient, cfg.DisposalCooldown, cfg.BasePointValue, log.Logger)
	rewardService := reward.NewService(rewardRepo, log.Logger)
	penaltyService := penalty.NewService(penaltyRepo, userRepo, log.Logger)

	// ---------- Handlers ----------
	authHandler := auth.NewHandler(authService)
	ledgerHandler := ledger.NewHandler(ledgerService)
	binHandler := bin.NewHandler(binService)
	evidenceHandler := evidence.NewHandler(evidenceService)
	disposalHandler := disposal.NewHandler(disposalService)
	rewardHandler := reward.NewHandler(rewardService)
	penaltyHandler := penalty.NewHandler(penaltyService)
	reportHandler := report.NewHandler(reportRepo)

	authMiddleware := middleware.Auth(jwtService)
	adminMiddleware := middleware.RequireAdmin()

	// ---------- Router ----------
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recover)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	r.Use(chimw.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pkgresponse.OK(w, map[string]string{
			"status":  "ok",
			"version": "1.0.0",
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", auth.Routes(authHandler, authMiddleware))
		r.Mount("/points", ledgerHandler.Routes(authMiddleware))
		r.Mount("/bins", binHandler.Routes(authMiddleware))
		r.Mount("/evidence", evidenceHandler.Routes(authMiddleware))
		r.Mount("/disposals", disposalHandler.Routes(authMiddleware))
		r.Mount("/rewards", rewardHandler.Routes(authMiddleware))
		r.Mount("/redemptions", rewardHandler.RedemptionRoutes(authMiddleware))

		r.Route("/admin", func(r chi.Router) {
			r.Mount("/bins", binHandler.AdminRoutes(authMiddleware, adminMiddleware))
			r.Mount("/disposals", disposalHandler.AdminRoutes(authMiddleware, adminMiddleware))
			r.Mount("/rewards", rewardHandler.AdminRoutes(authMiddleware, adminMiddleware))
			r.Mount("/penalties", penaltyHandler.AdminRoutes(authMiddleware, adminMiddleware))
			r.Mount("/reports", report.Routes(reportHandler, authMiddleware, adminMiddleware))
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		})
	}
}
