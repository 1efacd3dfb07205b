package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/peakmargin/margin-manager/internal/dependency"
	"github.com/peakmargin/margin-manager/internal/entity"
	"github.com/peakmargin/margin-manager/internal/gerr"
)

type orderStore struct {
	*MYSQLStore
}

// Order returns an object implementing order interface
func (ms *MYSQLStore) Order() dependency.Order {
	return &orderStore{
		MYSQLStore: ms,
	}
}

func (ms *MYSQLStore) OrderExists(ctx context.Context, id string) (bool, error) {
	query := `SELECT COUNT(*) FROM shop_order WHERE id = :id`
	count, err := QueryCountNamed(ctx, ms.db, query, map[string]any{
		"id": id,
	})
	if err != nil {
		return false, fmt.Errorf("can't check order existence: %w", err)
	}
	return count > 0, nil
}

func (ms *MYSQLStore) InsertOrder(ctx context.Context, order *entity.OrderInsert) error {
	query := `
	INSERT INTO shop_order
		(id, order_number, customer_id, ship_country, revenue, revenue_usd,
		discount, tax, shipping, subtotal, paygate_name, tenant, created_at)
	VALUES
		(:id, :orderNumber, :customerId, :shipCountry, :revenue, :revenueUsd,
		:discount, :tax, :shipping, :subtotal, :paygateName, :tenant, :createdAt)`
	return ExecNamed(ctx, ms.db, query, map[string]any{
		"id":          order.ID,
		"orderNumber": order.OrderNumber,
		"customerId":  order.CustomerID,
		"shipCountry": order.ShipCountry,
		"revenue":     order.Revenue,
		"revenueUsd":  order.RevenueUSD,
		"discount":    order.Discount,
		"tax":         order.Tax,
		"shipping":    order.Shipping,
		"subtotal":    order.Subtotal,
		"paygateName": order.PaygateName,
		"tenant":      order.Tenant,
		"createdAt":   order.CreatedAt,
	})
}

func (ms *MYSQLStore) InsertLineItems(ctx context.Context, items []entity.OrderLineItemInsert) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, map[string]any{
			"order_id":       item.OrderID,
			"product_id":     item.ProductID,
			"sku":            item.SKU,
			"quantity":       item.Quantity,
			"price":          item.Price,
			"name":           item.Name,
			"title":          item.Title,
			"gift_card":      item.GiftCard,
			"total_discount": item.TotalDiscount,
			"vendor_name":    item.VendorName,
		})
	}
	if err := BulkInsert(ctx, ms.db, "order_line_item", rows); err != nil {
		return fmt.Errorf("can't insert line items: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) UpsertPaygate(ctx context.Context, pg *entity.PaygateUpsert) error {
	query := `
	INSERT INTO paygate (order_id, name, fee)
	VALUES (:orderId, :name, :fee)
	ON DUPLICATE KEY UPDATE
		name = VALUES(name),
		fee = VALUES(fee)`
	return ExecNamed(ctx, ms.db, query, map[string]any{
		"orderId": pg.OrderID,
		"name":    pg.Name,
		"fee":     pg.Fee,
	})
}

func (ms *MYSQLStore) GetOrdersInRange(ctx context.Context, tenant string, from, to time.Time) ([]entity.OrderWithItems, error) {
	query := `
	SELECT * FROM shop_order
	WHERE tenant = :tenant AND created_at >= :from AND created_at < :to
	ORDER BY created_at`
	orders, err := QueryListNamed[entity.Order](ctx, ms.db, query, map[string]any{
		"tenant": tenant,
		"from":   from,
		"to":     to,
	})
	if err != nil {
		return nil, fmt.Errorf("can't get orders in range: %w", err)
	}
	if len(orders) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}

	items, err := QueryListNamed[entity.OrderLineItem](ctx, ms.db,
		`SELECT * FROM order_line_item WHERE order_id IN (:orderIds)`,
		map[string]any{
			"orderIds": ids,
		})
	if err != nil {
		return nil, fmt.Errorf("can't get line items: %w", err)
	}

	byOrder := make(map[string][]entity.OrderLineItem, len(orders))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}

	out := make([]entity.OrderWithItems, 0, len(orders))
	for _, o := range orders {
		out = append(out, entity.OrderWithItems{
			Order: o,
			Items: byOrder[o.ID],
		})
	}
	return out, nil
}

func (ms *MYSQLStore) GetOrderFull(ctx context.Context, id string) (*entity.OrderFull, error) {
	order, err := QueryNamedOne[entity.Order](ctx, ms.db,
		`SELECT * FROM shop_order WHERE id = :id`,
		map[string]any{
			"id": id,
		})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, gerr.ErrOrderNotFound
		}
		return nil, fmt.Errorf("can't get order: %w", err)
	}

	full := &entity.OrderFull{Order: order}

	if order.CustomerID.Valid {
		customer, err := QueryNamedOne[entity.Customer](ctx, ms.db,
			`SELECT * FROM customer WHERE id = :id`,
			map[string]any{
				"id": order.CustomerID.String,
			})
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("can't get order customer: %w", err)
		}
		if err == nil {
			full.Customer = &customer
		}
	}

	items, err := QueryListNamed[entity.OrderLineItem](ctx, ms.db,
		`SELECT * FROM order_line_item WHERE order_id = :orderId`,
		map[string]any{
			"orderId": id,
		})
	if err != nil {
		return nil, fmt.Errorf("can't get order line items: %w", err)
	}
	full.Items = items

	paygate, err := QueryNamedOne[entity.Paygate](ctx, ms.db,
		`SELECT * FROM paygate WHERE order_id = :orderId`,
		map[string]any{
			"orderId": id,
		})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("can't get order paygate: %w", err)
	}
	if err == nil {
		full.Paygate = &paygate
	}

	return full, nil
}

func (ms *MYSQLStore) ListOrders(ctx context.Context, page, limit int) (*entity.OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 250 {
		limit = 50
	}

	total, err := QueryCountNamed(ctx, ms.db, `SELECT COUNT(*) FROM shop_order`, map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("can't count orders: %w", err)
	}

	orders, err := QueryListNamed[entity.Order](ctx, ms.db,
		`SELECT * FROM shop_order ORDER BY created_at DESC LIMIT :limit OFFSET :offset`,
		map[string]any{
			"limit":  limit,
			"offset": (page - 1) * limit,
		})
	if err != nil {
		return nil, fmt.Errorf("can't list orders: %w", err)
	}

	totalPages := (int(total) + limit - 1) / limit
	return &entity.OrderPage{
		Orders:      orders,
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalOrders: int(total),
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}, nil
}
