package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-web/internal/backend"
	"github.com/BuzzLyutic/planner-web/internal/config"
	"github.com/BuzzLyutic/planner-web/internal/handler"
	"github.com/BuzzLyutic/planner-web/internal/listing"
	"github.com/BuzzLyutic/planner-web/internal/repo"
	"github.com/BuzzLyutic/planner-web/internal/service"
	"github.com/BuzzLyutic/planner-web/internal/session"
	"github.com/BuzzLyutic/planner-web/internal/worker"
)

func main() {
	// Подключаем логгер
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Загрузка конфигурации
	cfg := config.Load()

	sessions, closeRepo := openSessionRepo(cfg, logger)
	defer closeRepo()

	api := backend.NewClient(cfg.BackendURL, cfg.BackendAuthCollection, cfg.BackendTimeout, logger)
	store := session.NewStore(api, sessions, session.NewSigner(cfg.SessionSecret), session.Options{
		TTL:          cfg.SessionTTL,
		CookieSecure: cfg.CookieSecure,
	}, logger)
	records := service.NewRecordService(api, cfg.ListPageSize, logger)

	lists := listing.NewRegistry()

	r := handler.NewRouter(handler.Deps{
		Store:   store,
		Records: records,
		Lists:   lists,
		Logger:  logger,
	})

	// Чистка просроченных сессий и их списков
	sweeper := worker.NewSweeper(sessions, logger, cfg.SweepInterval)
	sweeper.Watch(lists)
	sweeper.Start(context.Background())

	srv := http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.BackendTimeout + 10*time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("port", srv.Addr), zap.String("backend", cfg.BackendURL))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	sweeper.Stop()
	logger.Info("Server stopped successfully!")
}

// openSessionRepo выбирает хранилище сессий: redis, postgres или память.
func openSessionRepo(cfg config.Config, logger *zap.Logger) (repo.SessionRepository, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to ping Redis", zap.Error(err))
		}
		logger.Info("Sessions stored in Redis", zap.String("addr", cfg.RedisAddr))
		return repo.NewRedisSessionRepo(client), func() { client.Close() }

	case cfg.DatabaseURL != "":
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to Database", zap.Error(err)) // дальнейшая работа теряет смысл
		}
		if err := pool.Ping(ctx); err != nil {
			logger.Fatal("Failed to ping the Database", zap.Error(err))
		}
		logger.Info("Sessions stored in Postgres")
		return repo.NewPostgresSessionRepo(pool), pool.Close
	}

	logger.Warn("No REDIS_ADDR or DATABASE_URL set, sessions are kept in memory")
	return repo.NewMemorySessionRepo(), func() {}
}
