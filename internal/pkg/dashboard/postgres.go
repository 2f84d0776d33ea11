package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pedrohenriquebasilio/biteboard-backend/internal/pkg/orders"
)

type PgDashboardReader struct {
	pool *pgxpool.Pool
}

func NewPgDashboardReader(pool *pgxpool.Pool) *PgDashboardReader {
	return &PgDashboardReader{pool: pool}
}

var _ Reader = (*PgDashboardReader)(nil)

func todayBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

func (r *PgDashboardReader) Stats(ctx context.Context) (*Stats, error) {
	today, tomorrow := todayBounds(time.Now())

	var s Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE created_at >= $1 AND created_at < $2),
			COALESCE(sum(total) FILTER (WHERE created_at >= $1 AND created_at < $2), 0),
			count(*) FILTER (WHERE status <> $3),
			count(*) FILTER (WHERE created_at >= $1 AND created_at < $2 AND status NOT IN ($4, $3)),
			count(*) FILTER (WHERE created_at >= $1 AND created_at < $2 AND status IN ($4, $3))
		FROM orders
	`, today, tomorrow, orders.StatusDelivered, orders.StatusReady).Scan(
		&s.TodayOrders, &s.TodayRevenue, &s.ActiveOrders, &s.OrdersInProgress, &s.OrdersReady,
	)
	if err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx,
		`SELECT count(*) FROM conversations WHERE status = 'active'`,
	).Scan(&s.ActiveConversations)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PgDashboardReader) Metrics(ctx context.Context) (*Metrics, error) {
	now := time.Now()
	today, tomorrow := todayBounds(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	var todayOrders, completedToday, inProgress int
	var todayRevenue float64
	err := r.pool.QueryRow(ctx, `
		SELECT
			count(*),
			count(*) FILTER (WHERE status IN ($3, $4)),
			count(*) FILTER (WHERE status NOT IN ($3, $4)),
			COALESCE(sum(total), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
	`, today, tomorrow, orders.StatusReady, orders.StatusDelivered).Scan(
		&todayOrders, &completedToday, &inProgress, &todayRevenue,
	)
	if err != nil {
		return nil, err
	}

	// Average minutes from creation to completion over this month.
	var slaMinutes *float64
	err = r.pool.QueryRow(ctx, `
		SELECT avg(EXTRACT(EPOCH FROM updated_at - created_at) / 60)
		FROM orders
		WHERE status IN ($1, $2) AND updated_at >= $3 AND updated_at < $4
	`, orders.StatusReady, orders.StatusDelivered, monthStart, monthEnd).Scan(&slaMinutes)
	if err != nil {
		return nil, err
	}

	m := &Metrics{OrdersInProgress: inProgress}
	if todayOrders > 0 {
		m.CompletionRate = int(math.Round(float64(completedToday) / float64(todayOrders) * 100))
		m.AverageTicket = math.Round(todayRevenue/float64(todayOrders)*100) / 100
	}
	if slaMinutes != nil {
		m.OrderSLA = int(math.Round(*slaMinutes))
	}
	return m, nil
}

func (r *PgDashboardReader) Revenue(ctx context.Context, period string, start, end time.Time) ([]RevenuePoint, error) {
	trunc := "day"
	switch period {
	case PeriodWeekly:
		trunc = "week"
	case PeriodMonthly:
		trunc = "month"
	}

	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date_trunc($1, created_at), 'YYYY-MM-DD'), round(sum(total)::numeric, 2)
		FROM orders
		WHERE created_at >= $2 AND created_at <= $3
		GROUP BY 1
		ORDER BY 1
	`, trunc, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RevenuePoint{}
	for rows.Next() {
		var p RevenuePoint
		if err := rows.Scan(&p.Date, &p.Revenue); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PgDashboardReader) TopItems(ctx context.Context, limit int) ([]TopItem, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.pool.Query(ctx, `
		SELECT name, menu_item_id::text, COALESCE(sum(quantity), 0), count(*)
		FROM order_items
		GROUP BY name, menu_item_id
		ORDER BY sum(quantity) DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []TopItem{}
	for rows.Next() {
		var t TopItem
		if err := rows.Scan(&t.Name, &t.MenuItemID, &t.TotalQuantity, &t.TimesOrdered); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PgDashboardReader) PeakHours(ctx context.Context) ([]PeakHour, error) {
	since := time.Now().AddDate(0, 0, -30)

	// Hour of day across all days in the window, busiest first.
	rows, err := r.pool.Query(ctx, `
		SELECT EXTRACT(HOUR FROM created_at)::int, count(*)
		FROM orders
		WHERE created_at >= $1
		GROUP BY 1
		ORDER BY count(*) DESC
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PeakHour{}
	for rows.Next() {
		var hour, count int
		if err := rows.Scan(&hour, &count); err != nil {
			return nil, err
		}
		out = append(out, PeakHour{Hour: fmt.Sprintf("%02d:00", hour), OrderCount: count})
	}
	return out, rows.Err()
}
