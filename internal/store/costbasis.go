package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/peakmargin/margin-manager/internal/dependency"
	"github.com/peakmargin/margin-manager/internal/entity"
)

type costBasisStore struct {
	*MYSQLStore
}

// CostBasis returns an object implementing cost basis interface
func (ms *MYSQLStore) CostBasis() dependency.CostBasis {
	return &costBasisStore{
		MYSQLStore: ms,
	}
}

// GetCosts loads cost rows for the given (sku, country) pairs. Pairs without
// a row are simply absent from the result.
func (ms *MYSQLStore) GetCosts(ctx context.Context, keys []entity.SKUCountry) (map[entity.SKUCountry]entity.CostBasis, error) {
	out := make(map[entity.SKUCountry]entity.CostBasis, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	placeholders := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		placeholders = append(placeholders, "(?, ?)")
		args = append(args, key.SKU, key.Country)
	}

	query := fmt.Sprintf(
		`SELECT id, sku, country, base_cost FROM cost_base WHERE (sku, country) IN (%s)`,
		strings.Join(placeholders, ", "),
	)

	rows, err := ms.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("can't get cost basis rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row entity.CostBasis
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("struct scan: %w", err)
		}
		out[entity.SKUCountry{SKU: row.SKU, Country: row.Country}] = row
	}
	return out, rows.Err()
}

// UpsertCostBasis bulk loads cost rows. Rows duplicating an existing
// (sku, country) pair are skipped.
func (ms *MYSQLStore) UpsertCostBasis(ctx context.Context, costRows []entity.CostBasisUpsert) error {
	if len(costRows) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(costRows))
	args := make([]any, 0, len(costRows)*3)
	for _, row := range costRows {
		placeholders = append(placeholders, "(?, ?, ?)")
		args = append(args, row.SKU, row.Country, row.BaseCost)
	}

	query := fmt.Sprintf(
		`INSERT IGNORE INTO cost_base (sku, country, base_cost) VALUES %s`,
		strings.Join(placeholders, ", "),
	)

	if _, err := ms.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("can't upsert cost basis: %w", err)
	}
	return nil
}
