package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BuzzLyutic/todotxt-api/internal/config"
	"github.com/BuzzLyutic/todotxt-api/internal/handler"
	"github.com/BuzzLyutic/todotxt-api/internal/repo"
	"github.com/BuzzLyutic/todotxt-api/internal/service"
	"github.com/BuzzLyutic/todotxt-api/internal/worker"
	"github.com/BuzzLyutic/todotxt-api/pkg/logutils"
	"github.com/BuzzLyutic/todotxt-api/pkg/todotxt"
)

func main() {
	// Загрузка конфигурации
	cfg := config.Load()

	logger, err := logutils.New(cfg.LogLevel, "")
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to Database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping the Database", zap.Error(err))
	}
	logger.Info("Successfully connected to the Database!")

	parser := todotxt.Parser{KeepLine: cfg.KeepLine}
	taskRepo := repo.NewTaskRepo(pool, parser)
	taskService := service.NewTaskService(taskRepo, parser, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)

	workerPool := worker.NewPool(taskRepo, logger, cfg.WorkerCount, cfg.WorkerInterval)
	workerPool.Start(ctx)

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.NewRouter(taskHandler),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()

		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		workerPool.Stop()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", zap.Error(err))
		return
	}
	logger.Info("Server stopped successfully!")
}
