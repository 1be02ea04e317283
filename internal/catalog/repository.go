package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("product not found")

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	pool DBPool
}

func NewRepository(pool DBPool) *Repository {
	return &Repository{pool: pool}
}

// GetActiveProduct returns the product only when it is active and not
// soft-deleted; everything else is ErrNotFound.
func (r *Repository) GetActiveProduct(ctx context.Context, productID int64) (ProductSnapshot, error) {
	const query = `
		SELECT p.id, p.name, p.description, p.price, p.points_required, p.stock, p.status,
		       p.images, COALESCE(p.category_id, 0), COALESCE(c.name, '')
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		WHERE p.id=$1 AND p.status='active' AND p.deleted_at IS NULL`

	var ps ProductSnapshot
	err := r.pool.QueryRow(ctx, query, productID).Scan(
		&ps.ID, &ps.Name, &ps.Description, &ps.Price, &ps.PointsRequired,
		&ps.Stock, &ps.Status, &ps.Images, &ps.CategoryID, &ps.CategoryName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductSnapshot{}, ErrNotFound
		}
		return ProductSnapshot{}, err
	}
	return ps, nil
}
