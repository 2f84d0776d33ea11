package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/menu"
)

type createOrderRequest struct {
	CustomerName  string      `json:"customerName" binding:"required"`
	CustomerPhone string      `json:"customerPhone" binding:"required"`
	Items         []ItemInput `json:"items" binding:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RegisterRoutes mounts order endpoints under the given group.
// "/orders/stats" registers before "/orders/:id".
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool, notifier Notifier, logger *slog.Logger) {
	svc := NewService(NewPgOrderRepository(pool), menu.NewPgMenuRepository(pool), notifier, logger)

	g.POST("/orders", func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := svc.Create(c.Request.Context(), CreateInput{
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			Items:         req.Items,
		})
		if err != nil {
			respondOrderError(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	})

	g.GET("/orders", func(c *gin.Context) {
		filter := Filter{
			Status:        c.Query("status"),
			CustomerPhone: c.Query("customerPhone"),
		}
		if filter.Status != "" && !ValidStatus(filter.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status inválido"})
			return
		}
		var perr error
		filter.DateFrom, perr = parseTimeQuery(c, "dateFrom")
		if perr == nil {
			filter.DateTo, perr = parseTimeQuery(c, "dateTo")
		}
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": perr.Error()})
			return
		}

		all, err := svc.FindAll(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
			return
		}
		if all == nil {
			all = []Order{}
		}
		c.JSON(http.StatusOK, all)
	})

	g.GET("/orders/stats", func(c *gin.Context) {
		from, perr := parseTimeQuery(c, "dateFrom")
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": perr.Error()})
			return
		}
		to, perr := parseTimeQuery(c, "dateTo")
		if perr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": perr.Error()})
			return
		}

		stats, err := svc.Stats(c.Request.Context(), from, to)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	g.GET("/orders/:id", func(c *gin.Context) {
		order, err := svc.FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	})

	g.PATCH("/orders/:id/status", func(c *gin.Context) {
		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			respondOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	})

	g.DELETE("/orders/:id", func(c *gin.Context) {
		if err := svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "pedido removido com sucesso"})
	})
}

func parseTimeQuery(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errors.New(name + " inválido")
	}
	return &t, nil
}

func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "pedido não encontrado"})
	case errors.Is(err, ErrNoItems), errors.Is(err, ErrBadQuantity),
		errors.Is(err, ErrItemUnresolved), errors.Is(err, ErrBadStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
