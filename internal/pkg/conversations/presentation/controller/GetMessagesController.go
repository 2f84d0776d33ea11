package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/application/usecase"
)

// GetMessagesController handles the message-history endpoint only.
type GetMessagesController struct {
	uc *usecase.GetMessagesUseCase
}

func NewGetMessagesController(uc *usecase.GetMessagesUseCase) *GetMessagesController {
	return &GetMessagesController{uc: uc}
}

func (h *GetMessagesController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		phone := c.Param("phone")

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		query := usecase.MessagesQuery{Limit: limit}
		if v := c.Query("before"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "before must be an RFC3339 timestamp"})
				return
			}
			query.Before = &t
		}
		if v := c.Query("after"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "after must be an RFC3339 timestamp"})
				return
			}
			query.After = &t
		}

		msgPage, err := h.uc.Execute(c.Request.Context(), phone, query)
		if errors.Is(err, usecase.ErrInvalidPhone) || errors.Is(err, usecase.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "conversa não encontrada"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
			return
		}
		c.JSON(http.StatusOK, msgPage)
	}
}
