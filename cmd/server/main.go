package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"civicreport-be/internal/auth"
	"civicreport-be/internal/config"
	"civicreport-be/internal/database"
	"civicreport-be/internal/handlers"
	"civicreport-be/internal/middleware"
	"civicreport-be/internal/repository"
	"civicreport-be/internal/routes"
	"civicreport-be/internal/service"
	"civicreport-be/internal/storage"
	"civicreport-be/internal/workflow"
	"civicreport-be/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.Init(!cfg.IsProduction()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zlog := logger.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongo, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		zlog.Fatal("connecting to mongodb failed", zap.Error(err))
	}
	defer func() {
		if err := mongo.Close(context.Background()); err != nil {
			zlog.Warn("closing mongodb failed", zap.Error(err))
		}
	}()
	zlog.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))

	rdb, err := database.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		zlog.Fatal("connecting to redis failed", zap.Error(err))
	}
	defer rdb.Close()
	zlog.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	userRepo := repository.NewUserRepository(mongo.Collection("users"))
	issueRepo := repository.NewIssueRepository(mongo.Collection("issues"))
	voteRepo := repository.NewVoteRepository(mongo.Collection("votes"))

	if err := userRepo.EnsureIndexes(ctx); err != nil {
		zlog.Fatal("creating user indexes failed", zap.Error(err))
	}
	if err := voteRepo.EnsureIndexes(ctx); err != nil {
		zlog.Fatal("creating vote indexes failed", zap.Error(err))
	}

	var cleaner storage.ImageCleaner = storage.NoopCleaner{}
	if cfg.AssetServiceURL != "" {
		cleaner = storage.NewHTTPCleaner(cfg.AssetServiceURL)
	}

	guard := auth.NewGuard()
	statusWorkflow := workflow.New(guard)

	queries := service.NewIssueQueryService(issueRepo, voteRepo, guard, zlog)
	mutations := service.NewIssueMutationService(issueRepo, voteRepo, guard, statusWorkflow, cleaner, zlog)
	accounts := service.NewAuthService(userRepo, guard, cfg.JWTSecret, zlog)

	router := routes.New(routes.Deps{
		Config:      cfg,
		Issues:      handlers.NewIssueHandler(queries, mutations, zlog),
		Auth:        handlers.NewAuthHandler(accounts, cfg.IsProduction(), zlog),
		RateLimiter: middleware.NewIssueRateLimiter(rdb, cfg.IssueDailyLimit),
		Log:         zlog,
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		zlog.Info("server listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
