package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/application/usecase"
)

// SendMessageController handles the send-message endpoint only.
type SendMessageController struct {
	uc *usecase.SendMessageUseCase
}

func NewSendMessageController(uc *usecase.SendMessageUseCase) *SendMessageController {
	return &SendMessageController{uc: uc}
}

type sendMessageRequest struct {
	Text        string `json:"text" binding:"required"`
	MessageType string `json:"messageType"`
	SkipWebhook bool   `json:"skipWebhook"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		phone := c.Param("phone")

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		sent, err := h.uc.Execute(c.Request.Context(), usecase.SendMessageInput{
			Phone:       phone,
			Text:        req.Text,
			MessageType: req.MessageType,
			SkipWebhook: req.SkipWebhook,
		})
		if errors.Is(err, usecase.ErrInvalidPhone) || errors.Is(err, usecase.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversa não encontrada"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send message"})
			return
		}
		c.JSON(http.StatusCreated, sent)
	}
}
