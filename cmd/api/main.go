package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	cacheAdapter "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/cache/adapter"
	cacheport "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/cache/port"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/database"
	queueAdapter "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/queue/adapter"
	queueport "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/queue/port"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/realtime"
	v1 "github.com/pedrohenriquebasilio/biteboard-backend/cmd/api/router/v1"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Warn(".env file not found or could not be loaded", "error", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Connect to the database on startup
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool, err := database.NewPoolFromEnv(ctx)
	cancel()
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	hub := realtime.NewHub(logger)
	defer hub.Close()

	var cache cacheport.Cache
	if os.Getenv("REDIS_URL") != "" {
		redisCache, err := cacheAdapter.NewRedisAdapter()
		if err != nil {
			logger.Warn("redis unavailable, existence cache disabled", "error", err)
		} else {
			cache = redisCache
			defer redisCache.Close()
		}
	}

	// Task dispatch runs on asynq when Redis is configured and falls back
	// to the in-process dispatcher otherwise.
	var queueClient queueport.Client
	var queueServer queueport.Server
	if os.Getenv("REDIS_URL") != "" {
		asynqClient, cerr := queueAdapter.NewAsynqClientFromEnv()
		asynqServer, serr := queueAdapter.NewAsynqServer(logger)
		if cerr == nil && serr == nil {
			queueClient = asynqClient
			queueServer = asynqServer
		} else {
			logger.Warn("asynq unavailable, using in-process dispatcher", "client_error", cerr, "server_error", serr)
		}
	}
	if queueClient == nil {
		local := queueAdapter.NewLocalDispatcher(0, logger)
		queueClient = local
		queueServer = local
	}
	defer queueClient.Close()

	serverCtx, stopServer := context.WithCancel(context.Background())
	defer stopServer()

	r := gin.Default()

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "OK",
		})
	})

	v1.RegisterRoutes(r, pool, hub, queueClient, queueServer, cache, logger)

	// Handlers are registered; start the task workers.
	go func() {
		if err := queueServer.Run(serverCtx); err != nil {
			logger.Error("task server stopped", "error", err)
		}
	}()

	// Start HTTP server (blocks until shutdown)
	if err := r.Run(); err != nil {
		logger.Error("http server stopped", "error", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	_ = queueServer.Stop(shutdownCtx)
}
