package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/points-mall/cart-service/internal/catalog"
)

type catalogMock struct {
	GetActiveProductFunc func(ctx context.Context, productID int64) (catalog.ProductSnapshot, error)
}

func (m *catalogMock) GetActiveProduct(ctx context.Context, productID int64) (catalog.ProductSnapshot, error) {
	return m.GetActiveProductFunc(ctx, productID)
}

func activeProduct(id, stock, points int64) *catalogMock {
	return &catalogMock{
		GetActiveProductFunc: func(ctx context.Context, productID int64) (catalog.ProductSnapshot, error) {
			if productID != id {
				return catalog.ProductSnapshot{}, catalog.ErrNotFound
			}
			return catalog.ProductSnapshot{
				ID: id, Name: "Thermos", Stock: stock, PointsRequired: points, Status: "active",
			}, nil
		},
	}
}

func TestStoreAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts new line selected by default", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, quantity FROM cart_lines`).
			WithArgs(int64(9), int64(1)).
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO cart_lines`).
			WithArgs(int64(9), int64(1), int64(2)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "quantity"}).AddRow(int64(11), int64(2)))

		store := NewStore(mock, activeProduct(1, 50, 100))
		lineID, qty, err := store.Add(ctx, 9, 1, 2)
		require.NoError(t, err)
		require.Equal(t, int64(11), lineID)
		require.Equal(t, int64(2), qty)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("merges into existing line and re-selects it", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, quantity FROM cart_lines`).
			WithArgs(int64(9), int64(1)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "quantity"}).AddRow(int64(11), int64(2)))
		mock.ExpectExec(`UPDATE cart_lines SET quantity`).
			WithArgs(int64(5), int64(11)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		store := NewStore(mock, activeProduct(1, 50, 100))
		lineID, qty, err := store.Add(ctx, 9, 1, 3)
		require.NoError(t, err)
		require.Equal(t, int64(11), lineID)
		require.Equal(t, int64(5), qty)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects quantity over stock", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		store := NewStore(mock, activeProduct(2, 1, 100))
		_, _, err = store.Add(ctx, 9, 2, 2)
		require.ErrorIs(t, err, ErrInsufficientStock)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects merged quantity over stock", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT id, quantity FROM cart_lines`).
			WithArgs(int64(9), int64(1)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "quantity"}).AddRow(int64(11), int64(4)))

		store := NewStore(mock, activeProduct(1, 5, 100))
		_, _, err = store.Add(ctx, 9, 1, 2)
		require.ErrorIs(t, err, ErrInsufficientStock)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown product is ErrProductNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		store := NewStore(mock, activeProduct(1, 50, 100))
		_, _, err = store.Add(ctx, 9, 404, 1)
		require.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestStoreUpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("updates quantity without touching selection", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT cl.product_id, p.stock`).
			WithArgs(int64(11), int64(9)).
			WillReturnRows(pgxmock.NewRows([]string{"product_id", "stock"}).AddRow(int64(1), int64(50)))
		mock.ExpectExec(`UPDATE cart_lines SET quantity`).
			WithArgs(int64(4), int64(11), int64(9)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		store := NewStore(mock, activeProduct(1, 50, 100))
		require.NoError(t, store.UpdateQuantity(ctx, 9, 11, 4))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("absent or foreign line is ErrLineNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT cl.product_id, p.stock`).
			WithArgs(int64(11), int64(9)).
			WillReturnError(pgx.ErrNoRows)

		store := NewStore(mock, activeProduct(1, 50, 100))
		require.ErrorIs(t, store.UpdateQuantity(ctx, 9, 11, 4), ErrLineNotFound)
	})

	t.Run("quantity over stock is rejected", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SELECT cl.product_id, p.stock`).
			WithArgs(int64(11), int64(9)).
			WillReturnRows(pgxmock.NewRows([]string{"product_id", "stock"}).AddRow(int64(1), int64(3)))

		store := NewStore(mock, activeProduct(1, 3, 100))
		require.ErrorIs(t, store.UpdateQuantity(ctx, 9, 11, 4), ErrInsufficientStock)
	})
}

func TestStoreUpdateSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("zero rows affected is ErrLineNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE cart_lines SET is_selected`).
			WithArgs(true, int64(11), int64(9)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		store := NewStore(mock, nil)
		require.ErrorIs(t, store.UpdateSelection(ctx, 9, 11, true), ErrLineNotFound)
	})

	t.Run("toggles one line", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE cart_lines SET is_selected`).
			WithArgs(false, int64(11), int64(9)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		store := NewStore(mock, nil)
		require.NoError(t, store.UpdateSelection(ctx, 9, 11, false))
	})
}

func TestStoreBatchOperations(t *testing.T) {
	ctx := context.Background()

	t.Run("empty id list is a no-op success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		store := NewStore(mock, nil)

		updated, err := store.UpdateSelectionBatch(ctx, 9, nil, true)
		require.NoError(t, err)
		require.Zero(t, updated)

		deleted, err := store.RemoveBatch(ctx, 9, []int64{})
		require.NoError(t, err)
		require.Zero(t, deleted)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign and absent ids are silently excluded", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM cart_lines WHERE user_id`).
			WithArgs(int64(9), []int64{11, 12, 999}).
			WillReturnResult(pgxmock.NewResult("DELETE", 2))

		store := NewStore(mock, nil)
		deleted, err := store.RemoveBatch(ctx, 9, []int64{11, 12, 999})
		require.NoError(t, err)
		require.Equal(t, int64(2), deleted)
	})

	t.Run("batch selection reports affected count", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE cart_lines SET is_selected`).
			WithArgs(true, int64(9), []int64{11, 12}).
			WillReturnResult(pgxmock.NewResult("UPDATE", 2))

		store := NewStore(mock, nil)
		updated, err := store.UpdateSelectionBatch(ctx, 9, []int64{11, 12}, true)
		require.NoError(t, err)
		require.Equal(t, int64(2), updated)
	})
}

func TestStoreRemoveAndClear(t *testing.T) {
	ctx := context.Background()

	t.Run("removing an absent line is ErrLineNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM cart_lines WHERE id`).
			WithArgs(int64(11), int64(9)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		store := NewStore(mock, nil)
		require.ErrorIs(t, store.Remove(ctx, 9, 11), ErrLineNotFound)
	})

	t.Run("clear reports deleted count, zero for empty cart", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM cart_lines WHERE user_id`).
			WithArgs(int64(9)).
			WillReturnResult(pgxmock.NewResult("DELETE", 3))
		mock.ExpectExec(`DELETE FROM cart_lines WHERE user_id`).
			WithArgs(int64(9)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		store := NewStore(mock, nil)

		deleted, err := store.Clear(ctx, 9)
		require.NoError(t, err)
		require.Equal(t, int64(3), deleted)

		deleted, err = store.Clear(ctx, 9)
		require.NoError(t, err)
		require.Zero(t, deleted)
	})

	t.Run("driver error surfaces", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		dbErr := errors.New("connection reset")
		mock.ExpectExec(`DELETE FROM cart_lines WHERE id`).
			WithArgs(int64(11), int64(9)).
			WillReturnError(dbErr)

		store := NewStore(mock, nil)
		require.ErrorIs(t, store.Remove(ctx, 9, 11), dbErr)
	})
}
