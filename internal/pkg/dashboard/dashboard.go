// Package dashboard serves the operational read models: today's
// counters, completion metrics, revenue series and ranking queries. All
// aggregation happens in SQL over the orders tables.
package dashboard

import (
	"context"
	"time"
)

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

type Stats struct {
	TodayOrders         int     `json:"todayOrders"`
	TodayRevenue        float64 `json:"todayRevenue"`
	ActiveOrders        int     `json:"activeOrders"`
	ActiveConversations int     `json:"activeConversations"`
	OrdersInProgress    int     `json:"ordersInProgress"`
	OrdersReady         int     `json:"ordersReady"`
}

type Metrics struct {
	CompletionRate   int     `json:"completionRate"`
	AverageTicket    float64 `json:"averageTicket"`
	OrdersInProgress int     `json:"ordersInProgress"`
	OrderSLA         int     `json:"orderSLA"`
}

type RevenuePoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type TopItem struct {
	Name          string  `json:"name"`
	MenuItemID    *string `json:"menuItemId"`
	TotalQuantity int     `json:"totalQuantity"`
	TimesOrdered  int     `json:"timesOrdered"`
}

type PeakHour struct {
	Hour       string `json:"hour"`
	OrderCount int    `json:"orderCount"`
}

type Summary struct {
	Stats     Stats      `json:"stats"`
	TopItems  []TopItem  `json:"topItems"`
	PeakHours []PeakHour `json:"peakHours"`
}

// ValidPeriod reports whether p is a known bucketing period.
func ValidPeriod(p string) bool {
	return p == PeriodDaily || p == PeriodWeekly || p == PeriodMonthly
}

// DefaultWindowStart returns the default lookback for a period: 30 days
// of daily buckets, 90 days of weekly buckets, 12 months of monthly ones.
func DefaultWindowStart(period string, end time.Time) time.Time {
	switch period {
	case PeriodWeekly:
		return end.AddDate(0, 0, -90)
	case PeriodMonthly:
		return end.AddDate(0, -12, 0)
	default:
		return end.AddDate(0, 0, -30)
	}
}

type Reader interface {
	Stats(ctx context.Context) (*Stats, error)
	Metrics(ctx context.Context) (*Metrics, error)
	Revenue(ctx context.Context, period string, start, end time.Time) ([]RevenuePoint, error)
	TopItems(ctx context.Context, limit int) ([]TopItem, error)
	PeakHours(ctx context.Context) ([]PeakHour, error)
}
