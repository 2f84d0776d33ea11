package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/application/usecase"
)

// EvolutionWebhookController handles the direct provider webhook that feeds
// the conversation pipeline without gateway routing.
type EvolutionWebhookController struct {
	uc *usecase.IngestWebhookUseCase
}

func NewEvolutionWebhookController(uc *usecase.IngestWebhookUseCase) *EvolutionWebhookController {
	return &EvolutionWebhookController{uc: uc}
}

func (h *EvolutionWebhookController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload any
		if err := c.ShouldBindJSON(&payload); err != nil {
			// malformed JSON is still acknowledged; nothing is processable
			c.JSON(http.StatusOK, usecase.IngestResult{
				Success: true,
				Skipped: true,
				Reason:  "payload inválido",
			})
			return
		}

		result, err := h.uc.Execute(c.Request.Context(), payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process webhook"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
