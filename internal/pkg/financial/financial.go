// Package financial exposes revenue reporting: windowed summaries,
// period groupings and the month-over-month comparison.
package financial

import (
	"context"
	"time"
)

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

func ValidPeriod(p string) bool {
	return p == PeriodDaily || p == PeriodWeekly || p == PeriodMonthly
}

// DefaultWindowStart mirrors the reporting defaults: 30 days for daily,
// 90 days for weekly, 12 months for monthly groupings.
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

type TopSellingItem struct {
	ItemName   string  `json:"itemName"`
	MenuItemID *string `json:"menuItemId"`
	Quantity   int     `json:"quantity"`
	Revenue    float64 `json:"revenue"`
}

type Summary struct {
	TotalRevenue    float64          `json:"totalRevenue"`
	TotalOrders     int              `json:"totalOrders"`
	AverageTicket   float64          `json:"averageTicket"`
	TopSellingItems []TopSellingItem `json:"topSellingItems"`
}

type PeriodRevenue struct {
	Period        string  `json:"period"`
	Revenue       float64 `json:"revenue"`
	Orders        int     `json:"orders"`
	AverageTicket float64 `json:"averageTicket"`
}

type TodaySummary struct {
	Date          string  `json:"date"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalOrders   int     `json:"totalOrders"`
	AverageTicket float64 `json:"averageTicket"`
}

type MonthTotals struct {
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type Growth struct {
	Percentage float64 `json:"percentage"`
	Absolute   float64 `json:"absolute"`
}

type MonthlyComparison struct {
	CurrentMonth MonthTotals `json:"currentMonth"`
	LastMonth    MonthTotals `json:"lastMonth"`
	Growth       Growth      `json:"growth"`
}

type Reader interface {
	Summary(ctx context.Context, start, end time.Time) (*Summary, error)
	ByPeriod(ctx context.Context, period string, start, end time.Time) ([]PeriodRevenue, error)
	Today(ctx context.Context) (*TodaySummary, error)
	MonthlyComparison(ctx context.Context) (*MonthlyComparison, error)
}
