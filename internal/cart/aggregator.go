package cart

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const detailedLineColumns = `
	SELECT cl.id, cl.user_id, cl.product_id, cl.quantity, cl.is_selected,
	       cl.created_at, cl.updated_at,
	       p.name, p.description, p.price, p.points_required, p.stock, p.images,
	       COALESCE(c.name, '')
	FROM cart_lines cl
	JOIN products p ON cl.product_id = p.id AND p.status='active' AND p.deleted_at IS NULL
	LEFT JOIN categories c ON p.category_id = c.id`

// Aggregator computes derived cart views. Every view re-joins live product
// data, so a product an admin deactivates disappears from all reads at once.
type Aggregator struct {
	pool DBPool
}

func NewAggregator(pool DBPool) *Aggregator {
	return &Aggregator{pool: pool}
}

// ListWithDetails returns the user's lines with product data joined in,
// newest first. Lines whose product is gone are omitted, not flagged.
func (a *Aggregator) ListWithDetails(ctx context.Context, userID int64) ([]DetailedLine, error) {
	rows, err := a.pool.Query(ctx,
		detailedLineColumns+`
		WHERE cl.user_id=$1
		ORDER BY cl.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	return scanDetailedLines(rows)
}

// Summary aggregates selected lines with active products; zeros when none.
func (a *Aggregator) Summary(ctx context.Context, userID int64) (Summary, error) {
	var sum Summary
	err := a.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(cl.quantity * p.points_required), 0),
		       COALESCE(SUM(cl.quantity), 0)
		FROM cart_lines cl
		JOIN products p ON cl.product_id = p.id AND p.status='active' AND p.deleted_at IS NULL
		WHERE cl.user_id=$1 AND cl.is_selected`,
		userID,
	).Scan(&sum.SelectedCount, &sum.TotalPoints, &sum.TotalQuantity)
	if err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func (a *Aggregator) Counts(ctx context.Context, userID int64) (Counts, error) {
	var counts Counts
	err := a.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE cl.is_selected)
		FROM cart_lines cl
		JOIN products p ON cl.product_id = p.id AND p.status='active' AND p.deleted_at IS NULL
		WHERE cl.user_id=$1`,
		userID,
	).Scan(&counts.TotalCount, &counts.SelectedCount)
	if err != nil {
		return Counts{}, err
	}
	return counts, nil
}

// SelectedForCheckout returns the selected, active lines and their point
// total. Checkout cannot proceed on zero items, so an empty result is
// ErrEmptySelection rather than an empty aggregate.
func (a *Aggregator) SelectedForCheckout(ctx context.Context, userID int64) (CheckoutSelection, error) {
	rows, err := a.pool.Query(ctx,
		detailedLineColumns+`
		WHERE cl.user_id=$1 AND cl.is_selected
		ORDER BY cl.created_at DESC`,
		userID,
	)
	if err != nil {
		return CheckoutSelection{}, err
	}

	lines, err := scanDetailedLines(rows)
	if err != nil {
		return CheckoutSelection{}, err
	}
	if len(lines) == 0 {
		return CheckoutSelection{}, ErrEmptySelection
	}

	var totalPoints int64
	for _, l := range lines {
		totalPoints += l.Quantity * l.PointsRequired
	}
	return CheckoutSelection{Items: lines, TotalPoints: totalPoints}, nil
}

func scanDetailedLines(rows pgx.Rows) ([]DetailedLine, error) {
	defer rows.Close()

	lines := []DetailedLine{}
	for rows.Next() {
		var l DetailedLine
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.ProductID, &l.Quantity, &l.IsSelected,
			&l.CreatedAt, &l.UpdatedAt,
			&l.ProductName, &l.ProductDescription, &l.Price, &l.PointsRequired,
			&l.Stock, &l.Images, &l.CategoryName,
		); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
