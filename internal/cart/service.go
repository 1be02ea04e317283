package cart

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Mutator is the write side of the cart, implemented by Store.
type Mutator interface {
	Add(ctx context.Context, userID, productID, quantity int64) (lineID, newQuantity int64, err error)
	UpdateQuantity(ctx context.Context, userID, lineID, quantity int64) error
	UpdateSelection(ctx context.Context, userID, lineID int64, selected bool) error
	UpdateSelectionBatch(ctx context.Context, userID int64, lineIDs []int64, selected bool) (int64, error)
	Remove(ctx context.Context, userID, lineID int64) error
	RemoveBatch(ctx context.Context, userID int64, lineIDs []int64) (int64, error)
	Clear(ctx context.Context, userID int64) (int64, error)
}

// Viewer is the read side, implemented by Aggregator.
type Viewer interface {
	ListWithDetails(ctx context.Context, userID int64) ([]DetailedLine, error)
	Summary(ctx context.Context, userID int64) (Summary, error)
	Counts(ctx context.Context, userID int64) (Counts, error)
	SelectedForCheckout(ctx context.Context, userID int64) (CheckoutSelection, error)
}

// CheckoutPublisher hands the checkout selection to order creation.
type CheckoutPublisher interface {
	PublishCheckoutSelected(ctx context.Context, userID int64, sel CheckoutSelection) error
}

type CartView struct {
	Items   []DetailedLine `json:"items"`
	Summary Summary        `json:"summary"`
}

type AddResult struct {
	LineID   int64   `json:"lineId"`
	Quantity int64   `json:"quantity"`
	Summary  Summary `json:"summary"`
}

type QuantityResult struct {
	Quantity int64   `json:"quantity"`
	Summary  Summary `json:"summary"`
}

type SelectionResult struct {
	IsSelected bool    `json:"isSelected"`
	Summary    Summary `json:"summary"`
}

type BatchSelectionResult struct {
	UpdatedCount int64   `json:"updatedCount"`
	Summary      Summary `json:"summary"`
}

type RemoveResult struct {
	Summary Summary `json:"summary"`
}

type BatchRemoveResult struct {
	DeletedCount int64   `json:"deletedCount"`
	Summary      Summary `json:"summary"`
}

type ClearResult struct {
	DeletedCount int64   `json:"deletedCount"`
	Summary      Summary `json:"summary"`
}

type SummaryView struct {
	TotalCount    int64 `json:"totalCount"`
	SelectedCount int64 `json:"selectedCount"`
	TotalPoints   int64 `json:"totalPoints"`
	TotalQuantity int64 `json:"totalQuantity"`
}

// Service pairs each mutation with a recomputed summary and is the single
// layer the HTTP boundary talks to. Domain failures come back as the typed
// errors in this package; anything else is an infrastructure fault the caller
// reports generically.
type Service struct {
	store     Mutator
	views     Viewer
	publisher CheckoutPublisher
	logger    zerolog.Logger
}

// NewService wires the facade. publisher may be nil, in which case checkout
// skips the handoff event.
func NewService(store Mutator, views Viewer, publisher CheckoutPublisher, logger zerolog.Logger) *Service {
	return &Service{store: store, views: views, publisher: publisher, logger: logger}
}

func (s *Service) GetCart(ctx context.Context, userID int64) (CartView, error) {
	items, err := s.views.ListWithDetails(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	sum, err := s.views.Summary(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	return CartView{Items: items, Summary: sum}, nil
}

func (s *Service) AddItem(ctx context.Context, userID, productID, quantity int64) (AddResult, error) {
	if productID <= 0 || quantity <= 0 {
		return AddResult{}, fmt.Errorf("%w: product id and quantity must be positive", ErrInvalidInput)
	}

	lineID, newQuantity, err := s.store.Add(ctx, userID, productID, quantity)
	if err != nil {
		return AddResult{}, err
	}
	sum, err := s.views.Summary(ctx, userID)
	if err != nil {
		return AddResult{}, err
	}
	return AddResult{LineID: lineID, Quantity: newQuantity, Summary: sum}, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, userID, lineID, quantity int64) (QuantityResult, error) {
	if lineID <= 0 || quantity <= 0 {
		return QuantityResult{}, fmt.Errorf("%w: line id and quantity must be positive", ErrInvalidInput)
	}

	if err := s.store.UpdateQuantity(ctx, userID, lineID, quantity); err != nil {
		return QuantityResult{}, err
	}
	sum, err := s.views.Summary(ctx, userID)
	if err != nil {
		return QuantityResult{}, err
	}
	return QuantityResult{Quantity: quantity, Summary: sum}, nil
}

func (s *Service) UpdateSelection(ctx context.Context, userID, lineID int64, selected bool) (SelectionResult, error) {
	if lineID <= 0 {
		return SelectionResult{}, fmt.Errorf("%w: line id must be positive", ErrInvalidInput)
	}

	if err := s.store.UpdateSelection(ctx, userID, lineID, selected); err != nil {
		return SelectionResult{}, err
	}
	sum, err := s.views.Summary(ctx, userID)
	if err != nil {
		return SelectionResult{}, err
	}
	return SelectionResult{IsSelected: selected, Summary: sum}, nil
}

func (s *Service) UpdateSelectionBatch(ctx context.Context, userID int64, lineIDs []int64, selected bool) (BatchSelectionResult, error) {
	updated, err := s.store.UpdateSelectionBatch(ctx, userID, lineIDs, selected)
	if err != nil {
		return BatchSelectionResult{}, err
	}
	sum, err := s.views.Summary(ctx, userID)
	if err != nil {
		return BatchSelectionResult{}, err
	}
	return BatchSelectionResult{UpdatedCount: updated, Summary: sum}, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, lineID int64) (RemoveResult, error) {
	if lineID <= 0 {
		return RemoveResult{}, fmt.Errorf("%w: line id must be positive", ErrInvalidInput)
	}

	if err := s.store.Remove(ctx, userID, lineID); err != nil {
		return RemoveResult{}, err
	}
	sum, err := s.views.Summary(ctx, userID)
	if err != nil {
		return RemoveResult{}, err
	}
	return RemoveResult{Summary: sum}, nil
}

func (s *Service) RemoveBatch(ctx context.Context, userID int64, lineIDs []int64) (BatchRemoveResult, error) {
	deleted, err := s.store.RemoveBatch(ctx, userID, lineIDs)
	if err != nil {
		return BatchRemoveResult{}, err
	}
	sum, err := s.views.Summary(ctx, userID)
	if err != nil {
		return BatchRemoveResult{}, err
	}
	return BatchRemoveResult{DeletedCount: deleted, Summary: sum}, nil
}

// ClearCart always succeeds; the summary of an empty cart is all zeros, so no
// re-aggregation round trip is needed.
func (s *Service) ClearCart(ctx context.Context, userID int64) (ClearResult, error) {
	deleted, err := s.store.Clear(ctx, userID)
	if err != nil {
		return ClearResult{}, err
	}
	return ClearResult{DeletedCount: deleted, Summary: Summary{}}, nil
}

func (s *Service) GetSummary(ctx context.Context, userID int64) (SummaryView, error) {
	counts, err := s.views.Counts(ctx, userID)
	if err != nil {
		return SummaryView{}, err
	}
	sum, err := s.views.Summary(ctx, userID)
	if err != nil {
		return SummaryView{}, err
	}
	return SummaryView{
		TotalCount:    counts.TotalCount,
		SelectedCount: counts.SelectedCount,
		TotalPoints:   sum.TotalPoints,
		TotalQuantity: sum.TotalQuantity,
	}, nil
}

// Checkout returns the selected-item aggregate and best-effort publishes the
// handoff event. A publish failure is logged, not surfaced: the aggregate is
// still valid and order creation can be retried by the caller.
func (s *Service) Checkout(ctx context.Context, userID int64) (CheckoutSelection, error) {
	sel, err := s.views.SelectedForCheckout(ctx, userID)
	if err != nil {
		return CheckoutSelection{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishCheckoutSelected(ctx, userID, sel); err != nil {
			s.logger.Error().Err(err).Int64("user_id", userID).Msg("publish checkout selection")
		}
	}
	return sel, nil
}
