package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/peakmargin/margin-manager/internal/dependency"
	"github.com/peakmargin/margin-manager/internal/entity"
)

type statsStore struct {
	*MYSQLStore
}

// Stats returns an object implementing stats interface
func (ms *MYSQLStore) Stats() dependency.Stats {
	return &statsStore{
		MYSQLStore: ms,
	}
}

// BumpDailyStats folds one order into its UTC day's row. Assignments run
// left to right in MySQL, so the average sees the updated totals.
func (ms *MYSQLStore) BumpDailyStats(ctx context.Context, day time.Time, revenue decimal.Decimal) error {
	query := `
	INSERT INTO order_stats (date, total_orders, total_revenue, average_order_value)
	VALUES (:date, 1, :revenue, :revenue)
	ON DUPLICATE KEY UPDATE
		total_orders = total_orders + 1,
		total_revenue = total_revenue + VALUES(total_revenue),
		average_order_value = total_revenue / total_orders`
	return ExecNamed(ctx, ms.db, query, map[string]any{
		"date":    day.UTC().Format("2006-01-02"),
		"revenue": revenue,
	})
}

// GetDailyStats returns day rows in the range, newest first, at most 30.
func (ms *MYSQLStore) GetDailyStats(ctx context.Context, from, to time.Time) ([]entity.OrderStats, error) {
	query := `
	SELECT * FROM order_stats
	WHERE date >= :from AND date <= :to
	ORDER BY date DESC
	LIMIT 30`
	rows, err := QueryListNamed[entity.OrderStats](ctx, ms.db, query, map[string]any{
		"from": from.UTC().Format("2006-01-02"),
		"to":   to.UTC().Format("2006-01-02"),
	})
	if err != nil {
		return nil, fmt.Errorf("can't get daily stats: %w", err)
	}
	return rows, nil
}

func (ms *MYSQLStore) GetOverallStats(ctx context.Context, recentLimit int) (*entity.OverallStats, error) {
	if recentLimit < 1 || recentLimit > 100 {
		recentLimit = 10
	}

	overall, err := QueryNamedOne[overallRow](ctx, ms.db,
		`SELECT
			COUNT(*) AS total_orders,
			COALESCE(SUM(revenue), 0) AS total_revenue,
			COALESCE(AVG(revenue), 0) AS average_order_value
		FROM shop_order`,
		map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't get overall stats: %w", err)
	}

	recent, err := QueryListNamed[entity.Order](ctx, ms.db,
		`SELECT * FROM shop_order ORDER BY created_at DESC LIMIT :limit`,
		map[string]any{
			"limit": recentLimit,
		})
	if err != nil {
		return nil, fmt.Errorf("can't get recent orders: %w", err)
	}

	return &entity.OverallStats{
		TotalOrders:       overall.TotalOrders,
		TotalRevenue:      overall.TotalRevenue,
		AverageOrderValue: overall.AverageOrderValue,
		RecentOrders:      recent,
	}, nil
}

type overallRow struct {
	TotalOrders       int             `db:"total_orders"`
	TotalRevenue      decimal.Decimal `db:"total_revenue"`
	AverageOrderValue decimal.Decimal `db:"average_order_value"`
}
