package financial

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PgFinancialReader struct {
	pool *pgxpool.Pool
}

func NewPgFinancialReader(pool *pgxpool.Pool) *PgFinancialReader {
	return &PgFinancialReader{pool: pool}
}

var _ Reader = (*PgFinancialReader)(nil)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (r *PgFinancialReader) Summary(ctx context.Context, start, end time.Time) (*Summary, error) {
	var revenue float64
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(sum(total), 0), count(*)
		FROM orders
		WHERE created_at >= $1 AND created_at <= $2
	`, start, end).Scan(&revenue, &count)
	if err != nil {
		return nil, err
	}

	top, err := r.topSellingItems(ctx, start, end, 10)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		TotalRevenue:    round2(revenue),
		TotalOrders:     count,
		TopSellingItems: top,
	}
	if count > 0 {
		s.AverageTicket = round2(revenue / float64(count))
	}
	return s, nil
}

func (r *PgFinancialReader) ByPeriod(ctx context.Context, period string, start, end time.Time) ([]PeriodRevenue, error) {
	trunc := "day"
	format := "YYYY-MM-DD"
	switch period {
	case PeriodWeekly:
		trunc = "week"
	case PeriodMonthly:
		trunc = "month"
		format = "YYYY-MM"
	}

	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date_trunc($1, created_at), $2), round(sum(total)::numeric, 2), count(*)
		FROM orders
		WHERE created_at >= $3 AND created_at <= $4
		GROUP BY 1
		ORDER BY 1
	`, trunc, format, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PeriodRevenue{}
	for rows.Next() {
		var p PeriodRevenue
		if err := rows.Scan(&p.Period, &p.Revenue, &p.Orders); err != nil {
			return nil, err
		}
		if p.Orders > 0 {
			p.AverageTicket = round2(p.Revenue / float64(p.Orders))
		}
		if period == PeriodWeekly {
			p.Period = "Semana de " + p.Period
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PgFinancialReader) Today(ctx context.Context) (*TodaySummary, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	var revenue float64
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(sum(total), 0), count(*)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
	`, start, end).Scan(&revenue, &count)
	if err != nil {
		return nil, err
	}

	s := &TodaySummary{
		Date:         start.Format("2006-01-02"),
		TotalRevenue: round2(revenue),
		TotalOrders:  count,
	}
	if count > 0 {
		s.AverageTicket = round2(revenue / float64(count))
	}
	return s, nil
}

func (r *PgFinancialReader) MonthlyComparison(ctx context.Context) (*MonthlyComparison, error) {
	now := time.Now()
	currentStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastStart := currentStart.AddDate(0, -1, 0)

	current, err := r.monthTotals(ctx, currentStart, currentStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	last, err := r.monthTotals(ctx, lastStart, currentStart)
	if err != nil {
		return nil, err
	}

	cmp := &MonthlyComparison{CurrentMonth: *current, LastMonth: *last}
	cmp.Growth.Absolute = round2(current.Revenue - last.Revenue)
	if last.Revenue > 0 {
		cmp.Growth.Percentage = round2((current.Revenue - last.Revenue) / last.Revenue * 100)
	}
	return cmp, nil
}

func (r *PgFinancialReader) monthTotals(ctx context.Context, start, end time.Time) (*MonthTotals, error) {
	var t MonthTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(sum(total), 0), count(*)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
	`, start, end).Scan(&t.Revenue, &t.Orders)
	if err != nil {
		return nil, err
	}
	t.Revenue = round2(t.Revenue)
	return &t, nil
}

func (r *PgFinancialReader) topSellingItems(ctx context.Context, start, end time.Time, limit int) ([]TopSellingItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT oi.name, oi.menu_item_id::text,
		       COALESCE(sum(oi.quantity), 0),
		       round(COALESCE(sum(oi.price * oi.quantity), 0)::numeric, 2)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.created_at >= $1 AND o.created_at <= $2
		GROUP BY oi.name, oi.menu_item_id
		ORDER BY sum(oi.quantity) DESC
		LIMIT $3
	`, start, end, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TopSellingItem{}
	for rows.Next() {
		var t TopSellingItem
		if err := rows.Scan(&t.ItemName, &t.MenuItemID, &t.Quantity, &t.Revenue); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
