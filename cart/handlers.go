package cart

import (
	"net/http"
	"time"

	"dukaan/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	engine  *Engine
	timeout time.Duration
}

func NewHandler(engine *Engine, timeout time.Duration) *Handler {
	return &Handler{engine: engine, timeout: timeout}
}

type addRequest struct {
	ProductID string     `json:"product_id" validate:"required"`
	Variant   VariantRef `json:"variant"`
	Quantity  int        `json:"quantity" validate:"omitempty,gte=1"`
}

type quantityRequest struct {
	Quantity *int       `json:"quantity" validate:"required"`
	Variant  VariantRef `json:"variant"`
}

type removeRequest struct {
	Variant VariantRef `json:"variant"`
}

type checkoutRequest struct {
	ProductIDs []string `json:"product_ids"`
}

// GET /api/wishlist
func (h *Handler) GetWishlist(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	items, err := h.engine.List(ctx, utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithAppError(w, "get wishlist", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, items)
}

// POST /api/wishlist
func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	var req addRequest
	if err := utils.DecodeAndValidate(r, &req, false); err != nil {
		utils.RespondWithAppError(w, "add to wishlist", err)
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	if err := h.engine.AddOrIncrement(ctx, userID, req.ProductID, req.Variant.Label, req.Quantity); err != nil {
		utils.RespondWithAppError(w, "add to wishlist", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"message": "Added to wishlist"})
}

// PUT /api/wishlist/:productId/quantity
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	var req quantityRequest
	if err := utils.DecodeAndValidate(r, &req, false); err != nil {
		utils.RespondWithAppError(w, "update quantity", err)
		return
	}

	userID := utils.GetUserIDFromRequest(r)
	err := h.engine.UpdateQuantity(ctx, userID, ps.ByName("productId"), req.Variant.Label, *req.Quantity)
	if err != nil {
		utils.RespondWithAppError(w, "update quantity", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Quantity updated"})
}

// DELETE /api/wishlist/:productId, variant from ?variant= or the body
func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	var req removeRequest
	if err := utils.DecodeAndValidate(r, &req, true); err != nil {
		utils.RespondWithAppError(w, "remove from wishlist", err)
		return
	}
	variant := req.Variant.Label
	if q := r.URL.Query().Get("variant"); q != "" {
		variant = q
	}

	userID := utils.GetUserIDFromRequest(r)
	if err := h.engine.Remove(ctx, userID, ps.ByName("productId"), variant); err != nil {
		utils.RespondWithAppError(w, "remove from wishlist", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Removed from wishlist"})
}

// POST /api/clear-cart and DELETE /api/wishlist
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	n, err := h.engine.ClearAll(ctx, utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithAppError(w, "clear cart", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Cart cleared", "deleted_count": n})
}

// POST /api/checkout
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	var req checkoutRequest
	if err := utils.DecodeAndValidate(r, &req, false); err != nil {
		utils.RespondWithAppError(w, "checkout", err)
		return
	}

	conf, err := h.engine.CheckoutAll(ctx, utils.GetUserIDFromRequest(r), req.ProductIDs)
	if err != nil {
		utils.RespondWithAppError(w, "checkout", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, conf)
}

// POST /api/checkout/shop/:shopId
func (h *Handler) CheckoutShop(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	var req checkoutRequest
	if err := utils.DecodeAndValidate(r, &req, true); err != nil {
		utils.RespondWithAppError(w, "checkout shop", err)
		return
	}

	conf, err := h.engine.CheckoutSubset(ctx, utils.GetUserIDFromRequest(r), ps.ByName("shopId"), req.ProductIDs)
	if err != nil {
		utils.RespondWithAppError(w, "checkout shop", err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, conf)
}
