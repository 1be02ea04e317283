package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/points-mall/cart-service/internal/catalog"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// CatalogAccessor supplies the point-in-time product reads every mutation
// validates against.
type CatalogAccessor interface {
	GetActiveProduct(ctx context.Context, productID int64) (catalog.ProductSnapshot, error)
}

// Store owns cart_lines. Every operation is scoped to the calling user; the
// (user_id, product_id) uniqueness constraint is the only cross-request
// serialization. Stock checks are reads of the value current at call time —
// two concurrent adds can both pass and jointly oversell; order creation
// re-checks and decrements stock atomically downstream.
type Store struct {
	pool    DBPool
	catalog CatalogAccessor
}

func NewStore(pool DBPool, catalog CatalogAccessor) *Store {
	return &Store{pool: pool, catalog: catalog}
}

// Add inserts a line or merges quantity into the existing one for the same
// product, re-validating the merged quantity against current stock. The merge
// path also force-selects the line.
func (s *Store) Add(ctx context.Context, userID, productID, quantity int64) (lineID, newQuantity int64, err error) {
	product, err := s.catalog.GetActiveProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return 0, 0, ErrProductNotFound
		}
		return 0, 0, err
	}
	if product.Stock < quantity {
		return 0, 0, ErrInsufficientStock
	}

	var existingID, existingQty int64
	err = s.pool.QueryRow(ctx,
		`SELECT id, quantity FROM cart_lines WHERE user_id=$1 AND product_id=$2`,
		userID, productID,
	).Scan(&existingID, &existingQty)

	switch {
	case err == nil:
		merged := existingQty + quantity
		if product.Stock < merged {
			return 0, 0, ErrInsufficientStock
		}
		_, err = s.pool.Exec(ctx,
			`UPDATE cart_lines SET quantity=$1, is_selected=TRUE, updated_at=now() WHERE id=$2`,
			merged, existingID,
		)
		if err != nil {
			return 0, 0, err
		}
		return existingID, merged, nil

	case errors.Is(err, pgx.ErrNoRows):
		// The ON CONFLICT merge covers a concurrent first-add landing between
		// the read above and this insert; uniqueness holds either way.
		err = s.pool.QueryRow(ctx, `
			INSERT INTO cart_lines (user_id, product_id, quantity, is_selected)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (user_id, product_id) DO UPDATE
			SET quantity = cart_lines.quantity + EXCLUDED.quantity,
			    is_selected = TRUE,
			    updated_at = now()
			RETURNING id, quantity`,
			userID, productID, quantity,
		).Scan(&lineID, &newQuantity)
		if err != nil {
			return 0, 0, err
		}
		return lineID, newQuantity, nil

	default:
		return 0, 0, err
	}
}

// UpdateQuantity sets an absolute quantity on a line the user owns. Selection
// state is left alone.
func (s *Store) UpdateQuantity(ctx context.Context, userID, lineID, quantity int64) error {
	var productID, stock int64
	err := s.pool.QueryRow(ctx, `
		SELECT cl.product_id, p.stock
		FROM cart_lines cl
		JOIN products p ON cl.product_id = p.id AND p.status='active' AND p.deleted_at IS NULL
		WHERE cl.id=$1 AND cl.user_id=$2`,
		lineID, userID,
	).Scan(&productID, &stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrLineNotFound
		}
		return err
	}
	if stock < quantity {
		return ErrInsufficientStock
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE cart_lines SET quantity=$1, updated_at=now() WHERE id=$2 AND user_id=$3`,
		quantity, lineID, userID,
	)
	return err
}

// UpdateSelection toggles one line. Absence is detected by the affected-row
// count, not a pre-read.
func (s *Store) UpdateSelection(ctx context.Context, userID, lineID int64, selected bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE cart_lines SET is_selected=$1, updated_at=now() WHERE id=$2 AND user_id=$3`,
		selected, lineID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLineNotFound
	}
	return nil
}

// UpdateSelectionBatch toggles all given lines in one statement. Ids that are
// absent or owned by another user are silently excluded from the count.
func (s *Store) UpdateSelectionBatch(ctx context.Context, userID int64, lineIDs []int64, selected bool) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE cart_lines SET is_selected=$1, updated_at=now() WHERE user_id=$2 AND id = ANY($3)`,
		selected, userID, lineIDs,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Remove(ctx context.Context, userID, lineID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM cart_lines WHERE id=$1 AND user_id=$2`,
		lineID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLineNotFound
	}
	return nil
}

// RemoveBatch has the same silent-exclusion semantics as UpdateSelectionBatch;
// repeating it with the same ids reports 0 deleted, not an error.
func (s *Store) RemoveBatch(ctx context.Context, userID int64, lineIDs []int64) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM cart_lines WHERE user_id=$1 AND id = ANY($2)`,
		userID, lineIDs,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Clear deletes every line for the user and reports how many went away.
func (s *Store) Clear(ctx context.Context, userID int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM cart_lines WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
