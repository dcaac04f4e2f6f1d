package orders

import (
	"errors"
	"net/http"
	"time"

	"dukaan/apperr"
	"dukaan/utils"

	"github.com/julienschmidt/httprouter"
)

// FreeDeliveries is how many completed orders ship free.
const FreeDeliveries = 2

type Handler struct {
	ledger  Ledger
	secret  []byte
	timeout time.Duration
}

func NewHandler(ledger Ledger, secret []byte, timeout time.Duration) *Handler {
	return &Handler{ledger: ledger, secret: secret, timeout: timeout}
}

func freeDeliveriesLeft(completed int64) int64 {
	return max(0, FreeDeliveries-completed)
}

// GET /api/user/orders
func (h *Handler) GetUserOrders(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID.IsZero() {
		utils.RespondWithAppError(w, "get orders", apperr.Unauthorized("Unauthorized"))
		return
	}

	orders, err := h.ledger.ListByUser(ctx, userID)
	if err != nil {
		utils.RespondWithAppError(w, "get orders", apperr.Wrap("Failed to fetch orders", err))
		return
	}
	completed, err := h.ledger.CountCompleted(ctx, userID)
	if err != nil {
		utils.RespondWithAppError(w, "get orders", apperr.Wrap("Failed to count deliveries", err))
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"orders":              orders,
		"completedDeliveries": completed,
		"freeDeliveriesLeft":  freeDeliveriesLeft(completed),
	})
}

// GET /api/user/delivery-count
func (h *Handler) GetDeliveryCount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID.IsZero() {
		utils.RespondWithAppError(w, "delivery count", apperr.Unauthorized("Unauthorized"))
		return
	}

	completed, err := h.ledger.CountCompleted(ctx, userID)
	if err != nil {
		utils.RespondWithAppError(w, "delivery count", apperr.Wrap("Failed to count deliveries", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deliveryCount": completed})
}

// PUT /api/orders/:orderId/complete
func (h *Handler) CompleteOrder(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID.IsZero() {
		utils.RespondWithAppError(w, "complete order", apperr.Unauthorized("Unauthorized"))
		return
	}

	ok, err := h.ledger.MarkCompleted(ctx, ps.ByName("orderId"), userID)
	if err != nil {
		utils.RespondWithAppError(w, "complete order", apperr.Wrap("Failed to update order", err))
		return
	}
	if !ok {
		utils.RespondWithAppError(w, "complete order", apperr.Missing("Order not found or already completed"))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Order marked as completed"})
}

// GET /api/orders/:orderId/receipt
func (h *Handler) DownloadReceipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID.IsZero() {
		utils.RespondWithAppError(w, "order receipt", apperr.Unauthorized("Unauthorized"))
		return
	}

	order, err := h.ledger.Get(ctx, ps.ByName("orderId"), userID)
	if errors.Is(err, ErrNotFound) {
		utils.RespondWithAppError(w, "order receipt", apperr.Missing("Order not found"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, "order receipt", apperr.Wrap("Failed to load order", err))
		return
	}

	pdf, err := Receipt(order, h.secret)
	if err != nil {
		utils.RespondWithAppError(w, "order receipt", apperr.Wrap("Failed to render receipt", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+order.ID.String()+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
