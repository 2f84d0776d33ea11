package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes mounts the dashboard read endpoints under the group.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool) {
	reader := NewPgDashboardReader(pool)

	g.GET("/dashboard/stats", func(c *gin.Context) {
		stats, err := reader.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": stats})
	})

	g.GET("/dashboard/metrics", func(c *gin.Context) {
		metrics, err := reader.Metrics(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load metrics"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": metrics})
	})

	g.GET("/dashboard/revenue", func(c *gin.Context) {
		period := c.DefaultQuery("period", PeriodDaily)
		if !ValidPeriod(period) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "period deve ser daily, weekly ou monthly"})
			return
		}

		end := time.Now()
		if raw := c.Query("endDate"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "endDate inválido"})
				return
			}
			end = parsed
		}
		start := DefaultWindowStart(period, end)
		if raw := c.Query("startDate"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "startDate inválido"})
				return
			}
			start = parsed
		}

		points, err := reader.Revenue(c.Request.Context(), period, start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load revenue"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": points})
	})

	g.GET("/dashboard/top-items", func(c *gin.Context) {
		limit := 10
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit inválido"})
				return
			}
			limit = parsed
		}

		items, err := reader.TopItems(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load top items"})
			return
		}
		c.JSON(http.StatusOK, items)
	})

	g.GET("/dashboard/peak-hours", func(c *gin.Context) {
		hours, err := reader.PeakHours(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load peak hours"})
			return
		}
		c.JSON(http.StatusOK, hours)
	})

	g.GET("/dashboard/summary", func(c *gin.Context) {
		stats, err := reader.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summary"})
			return
		}
		items, err := reader.TopItems(c.Request.Context(), 5)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summary"})
			return
		}
		hours, err := reader.PeakHours(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summary"})
			return
		}
		if len(hours) > 5 {
			hours = hours[:5]
		}
		c.JSON(http.StatusOK, Summary{Stats: *stats, TopItems: items, PeakHours: hours})
	})
}
