package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/conversations/application/usecase"
)

// ListConversationsController handles the conversation list endpoint only
// (one controller per endpoint).
type ListConversationsController struct {
	uc *usecase.ListConversationsUseCase
}

func NewListConversationsController(uc *usecase.ListConversationsUseCase) *ListConversationsController {
	return &ListConversationsController{uc: uc}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		status := c.Query("status")
		if status != "" && status != "active" && status != "closed" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be active or closed"})
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		pageResult, err := h.uc.Execute(c.Request.Context(), status, page, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list conversations"})
			return
		}
		c.JSON(http.StatusOK, pageResult)
	}
}
