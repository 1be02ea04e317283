package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/points-mall/cart-service/internal/cart"
)

// CartService is what the handlers need from the cart facade.
type CartService interface {
	GetCart(ctx context.Context, userID int64) (cart.CartView, error)
	AddItem(ctx context.Context, userID, productID, quantity int64) (cart.AddResult, error)
	UpdateQuantity(ctx context.Context, userID, lineID, quantity int64) (cart.QuantityResult, error)
	UpdateSelection(ctx context.Context, userID, lineID int64, selected bool) (cart.SelectionResult, error)
	UpdateSelectionBatch(ctx context.Context, userID int64, lineIDs []int64, selected bool) (cart.BatchSelectionResult, error)
	RemoveItem(ctx context.Context, userID, lineID int64) (cart.RemoveResult, error)
	RemoveBatch(ctx context.Context, userID int64, lineIDs []int64) (cart.BatchRemoveResult, error)
	ClearCart(ctx context.Context, userID int64) (cart.ClearResult, error)
	GetSummary(ctx context.Context, userID int64) (cart.SummaryView, error)
	Checkout(ctx context.Context, userID int64) (cart.CheckoutSelection, error)
}

type Handler struct {
	svc    CartService
	logger zerolog.Logger
}

func NewHandler(svc CartService, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	view, err := h.svc.GetCart(ctx, UserID(ctx))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type addItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := requestCtx(r)
	defer cancel()

	res, err := h.svc.AddItem(ctx, UserID(ctx), req.ProductID, req.Quantity)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type updateQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	lineID, ok := pathLineID(w, r)
	if !ok {
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := requestCtx(r)
	defer cancel()

	res, err := h.svc.UpdateQuantity(ctx, UserID(ctx), lineID, req.Quantity)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type updateSelectionRequest struct {
	IsSelected bool `json:"isSelected"`
}

func (h *Handler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	lineID, ok := pathLineID(w, r)
	if !ok {
		return
	}

	var req updateSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := requestCtx(r)
	defer cancel()

	res, err := h.svc.UpdateSelection(ctx, UserID(ctx), lineID, req.IsSelected)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type batchSelectionRequest struct {
	LineIDs    []int64 `json:"lineIds"`
	IsSelected bool    `json:"isSelected"`
}

func (h *Handler) UpdateSelectionBatch(w http.ResponseWriter, r *http.Request) {
	var req batchSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := requestCtx(r)
	defer cancel()

	res, err := h.svc.UpdateSelectionBatch(ctx, UserID(ctx), req.LineIDs, req.IsSelected)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	lineID, ok := pathLineID(w, r)
	if !ok {
		return
	}

	ctx, cancel := requestCtx(r)
	defer cancel()

	res, err := h.svc.RemoveItem(ctx, UserID(ctx), lineID)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type batchRemoveRequest struct {
	LineIDs []int64 `json:"lineIds"`
}

func (h *Handler) RemoveBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRemoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := requestCtx(r)
	defer cancel()

	res, err := h.svc.RemoveBatch(ctx, UserID(ctx), req.LineIDs)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	res, err := h.svc.ClearCart(ctx, UserID(ctx))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	res, err := h.svc.GetSummary(ctx, UserID(ctx))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) CheckoutSelection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	sel, err := h.svc.Checkout(ctx, UserID(ctx))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// writeDomainError is the single place domain failures become HTTP statuses.
// No raw internal error ever reaches a client.
func (h *Handler) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrProductNotFound), errors.Is(err, cart.ErrLineNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, cart.ErrInsufficientStock), errors.Is(err, cart.ErrEmptySelection):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error().Err(err).Msg("cart request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func requestCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 3*time.Second)
}

func pathLineID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	lineID, err := strconv.ParseInt(chi.URLParam(r, "lineId"), 10, 64)
	if err != nil || lineID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid line id")
		return 0, false
	}
	return lineID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
	})
}
