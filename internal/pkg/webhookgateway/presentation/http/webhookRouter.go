package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	cacheport "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/cache/port"
	queueport "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/queue/port"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/realtime"
	convusecase "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/application/usecase"
	convadapter "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/persistence/repository/adapter"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/customers"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/webhookgateway/application/task"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/webhookgateway/application/usecase"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/webhookgateway/presentation/controller"
)

// RegisterRoutes mounts the gateway webhook on the engine root and binds
// the routing pipeline to the task server.
func RegisterRoutes(engine *gin.Engine, pool *pgxpool.Pool, hub *realtime.Hub, queueClient queueport.Client, queueServer queueport.Server, cache cacheport.Cache, logger *slog.Logger) {
	convRepo := convadapter.NewPgConversationRepository(pool)
	ingest := convusecase.NewIngestWebhookUseCase(convRepo, hub, logger)

	routeUC := usecase.NewRouteWebhookUseCase(
		customers.NewPgCustomerRepository(pool),
		ingest,
		&task.QueueForwarder{Client: queueClient},
		cache,
		logger,
	)

	task.RegisterRouteWebhookTask(queueServer, routeUC, logger)
	task.RegisterForwardWebhookTask(queueServer, logger)

	gatewayCtl := controller.NewWebhookGatewayController(queueClient, logger)

	// POST /webhook-gateway
	engine.POST("/webhook-gateway", gatewayCtl.Handle())
}
