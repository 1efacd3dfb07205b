package store

import (
	"context"
	"fmt"

	"github.com/peakmargin/margin-manager/internal/dependency"
	"github.com/peakmargin/margin-manager/internal/entity"
)

type customerStore struct {
	*MYSQLStore
}

// Customer returns an object implementing customer interface
func (ms *MYSQLStore) Customer() dependency.Customer {
	return &customerStore{
		MYSQLStore: ms,
	}
}

func (ms *MYSQLStore) UpsertCustomer(ctx context.Context, c *entity.CustomerUpsert) error {
	query := `
	INSERT INTO customer (id, email, fullname, country)
	VALUES (:id, :email, :fullname, :country)
	ON DUPLICATE KEY UPDATE
		email = VALUES(email),
		fullname = VALUES(fullname),
		country = VALUES(country)`
	return ExecNamed(ctx, ms.db, query, map[string]any{
		"id":       c.ID,
		"email":    c.Email,
		"fullname": c.Fullname,
		"country":  c.Country,
	})
}

func (ms *MYSQLStore) CustomerOrderCount(ctx context.Context, customerID string) (int, error) {
	query := `SELECT COUNT(*) FROM shop_order WHERE customer_id = :customerId`
	count, err := QueryCountNamed(ctx, ms.db, query, map[string]any{
		"customerId": customerID,
	})
	if err != nil {
		return 0, fmt.Errorf("can't count customer orders: %w", err)
	}
	return int(count), nil
}

func (ms *MYSQLStore) GetTopCustomers(ctx context.Context, limit int) ([]entity.CustomerAnalytics, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	query := `
	SELECT
		c.id AS id,
		c.email AS email,
		c.fullname AS fullname,
		c.country AS country,
		COUNT(o.id) AS total_orders,
		COALESCE(SUM(o.revenue), 0) AS total_spent,
		COALESCE(AVG(o.revenue), 0) AS average_order_value,
		MAX(o.created_at) AS last_order_date
	FROM customer c
	JOIN shop_order o ON o.customer_id = c.id
	GROUP BY c.id, c.email, c.fullname, c.country
	ORDER BY total_spent DESC
	LIMIT :limit`
	rows, err := QueryListNamed[entity.CustomerAnalytics](ctx, ms.db, query, map[string]any{
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("can't get top customers: %w", err)
	}
	return rows, nil
}
