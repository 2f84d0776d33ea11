package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	queueport "github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/queue/port"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/infrastructure/realtime"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/application/task"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/application/usecase"
	repoAdapter "github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/persistence/repository/adapter"
	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/presentation/controller"
)

// RegisterRoutes mounts conversation endpoints under the given group and
// the provider webhook under the engine root (external contract, not
// versioned).
func RegisterRoutes(g *gin.RouterGroup, engine *gin.Engine, pool *pgxpool.Pool, hub *realtime.Hub, queue queueport.Client, logger *slog.Logger) {
	repo := repoAdapter.NewPgConversationRepository(pool)
	outbound := &task.QueueOutboundNotifier{Client: queue}

	listCtl := controller.NewListConversationsController(usecase.NewListConversationsUseCase(repo))
	getMsgCtl := controller.NewGetMessagesController(usecase.NewGetMessagesUseCase(repo))
	sendCtl := controller.NewSendMessageController(usecase.NewSendMessageUseCase(repo, hub, outbound, logger))
	webhookCtl := controller.NewEvolutionWebhookController(usecase.NewIngestWebhookUseCase(repo, hub, logger))

	// GET /api/v1/conversations
	g.GET("/conversations", listCtl.Handle())

	// GET /api/v1/conversations/:phone/messages
	g.GET("/conversations/:phone/messages", getMsgCtl.Handle())

	// POST /api/v1/conversations/:phone/messages
	g.POST("/conversations/:phone/messages", sendCtl.Handle())

	// POST /webhook/evolution
	engine.POST("/webhook/evolution", webhookCtl.Handle())
}
