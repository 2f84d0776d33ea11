package financial

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RegisterRoutes mounts the financial reporting endpoints.
func RegisterRoutes(g *gin.RouterGroup, pool *pgxpool.Pool) {
	reader := NewPgFinancialReader(pool)

	parseWindow := func(c *gin.Context) (period string, start, end time.Time, ok bool) {
		period = c.DefaultQuery("period", PeriodDaily)
		if !ValidPeriod(period) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "period deve ser daily, weekly ou monthly"})
			return "", time.Time{}, time.Time{}, false
		}

		end = time.Now()
		if raw := c.Query("endDate"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "endDate inválido"})
				return "", time.Time{}, time.Time{}, false
			}
			end = parsed
		}
		start = DefaultWindowStart(period, end)
		if raw := c.Query("startDate"); raw != "" {
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "startDate inválido"})
				return "", time.Time{}, time.Time{}, false
			}
			start = parsed
		}
		return period, start, end, true
	}

	g.GET("/financial/summary", func(c *gin.Context) {
		_, start, end, ok := parseWindow(c)
		if !ok {
			return
		}
		summary, err := reader.Summary(c.Request.Context(), start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load summary"})
			return
		}
		c.JSON(http.StatusOK, summary)
	})

	g.GET("/financial/by-period", func(c *gin.Context) {
		period, start, end, ok := parseWindow(c)
		if !ok {
			return
		}
		periods, err := reader.ByPeriod(c.Request.Context(), period, start, end)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load revenue by period"})
			return
		}
		c.JSON(http.StatusOK, periods)
	})

	g.GET("/financial/today", func(c *gin.Context) {
		today, err := reader.Today(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load today summary"})
			return
		}
		c.JSON(http.StatusOK, today)
	})

	g.GET("/financial/monthly-comparison", func(c *gin.Context) {
		cmp, err := reader.MonthlyComparison(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load monthly comparison"})
			return
		}
		c.JSON(http.StatusOK, cmp)
	})
}
