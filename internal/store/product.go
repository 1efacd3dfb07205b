package store

import (
	"context"
	"fmt"

	"github.com/peakmargin/margin-manager/internal/dependency"
	"github.com/peakmargin/margin-manager/internal/entity"
)

type productStore struct {
	*MYSQLStore
}

// Product returns an object implementing product interface
func (ms *MYSQLStore) Product() dependency.Product {
	return &productStore{
		MYSQLStore: ms,
	}
}

func (ms *MYSQLStore) UpsertProduct(ctx context.Context, p *entity.ProductUpsert) error {
	query := `
	INSERT INTO product (id, title, body, product_type)
	VALUES (:id, :title, :body, :productType)
	ON DUPLICATE KEY UPDATE
		title = VALUES(title),
		body = VALUES(body),
		product_type = VALUES(product_type)`
	return ExecNamed(ctx, ms.db, query, map[string]any{
		"id":          p.ID,
		"title":       p.Title,
		"body":        p.Body,
		"productType": p.ProductType,
	})
}

// UpsertVariant inserts the variant or adds the sold quantity to the
// existing (id, size) row.
func (ms *MYSQLStore) UpsertVariant(ctx context.Context, v *entity.ProductVariant) error {
	query := `
	INSERT INTO product_variant (id, product_id, size, sold_number)
	VALUES (:id, :productId, :size, :soldNumber)
	ON DUPLICATE KEY UPDATE
		sold_number = sold_number + VALUES(sold_number)`
	return ExecNamed(ctx, ms.db, query, map[string]any{
		"id":         v.ID,
		"productId":  v.ProductID,
		"size":       v.Size,
		"soldNumber": v.SoldNumber,
	})
}

func (ms *MYSQLStore) GetTopProducts(ctx context.Context, limit int) ([]entity.ProductAnalytics, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	query := `
	SELECT
		p.id AS id,
		p.title AS title,
		p.product_type AS product_type,
		COALESCE(SUM(li.quantity), 0) AS total_quantity_sold,
		COALESCE(SUM(li.price * li.quantity), 0) AS total_revenue,
		COUNT(DISTINCT li.sku) AS variants_sold,
		COALESCE(AVG(li.price), 0) AS average_price
	FROM product p
	JOIN order_line_item li ON li.product_id = p.id
	GROUP BY p.id, p.title, p.product_type
	ORDER BY total_quantity_sold DESC
	LIMIT :limit`
	rows, err := QueryListNamed[entity.ProductAnalytics](ctx, ms.db, query, map[string]any{
		"limit": limit,
	})
	if err != nil {
		return nil, fmt.Errorf("can't get top products: %w", err)
	}
	return rows, nil
}
