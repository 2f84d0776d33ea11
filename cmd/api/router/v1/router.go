package v1

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/cache/port"
	queueport "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/queue/port"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/realtime"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/auth"
	convtask "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/application/task"
	convhttp "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/presentation/http"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/customers"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/dashboard"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/financial"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/menu"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/orders"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/promotions"
	gatewayhttp "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/webhookgateway/presentation/http"
)

// RegisterRoutes mounts all version 1 API routes under /api/v1 plus the
// unversioned webhook endpoints, and binds background task handlers to
// the queue server.
func RegisterRoutes(r *gin.Engine, pool *pgxpool.Pool, hub *realtime.Hub, queueClient queueport.Client, queueServer queueport.Server, cache cacheport.Cache, logger *slog.Logger) {
	g := r.Group("/api/v1")

	convhttp.RegisterRoutes(g, r, pool, hub, queueClient, logger)
	convtask.RegisterNotifyMessageTask(queueServer, logger)
	gatewayhttp.RegisterRoutes(r, pool, hub, queueClient, queueServer, cache, logger)

	customers.RegisterRoutes(g, pool)
	menu.RegisterRoutes(g, pool)
	promotions.RegisterRoutes(g, pool)
	orders.RegisterRoutes(g, pool, hub, logger)
	dashboard.RegisterRoutes(g, pool)
	financial.RegisterRoutes(g, pool)
	auth.RegisterRoutes(g, pool, logger)

	g.GET("/ws", dashboard.NewSocketController(hub, logger).Handle())
}
