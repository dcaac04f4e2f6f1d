package reviews

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"dukaan/apperr"
	"dukaan/catalog"
	"dukaan/identity"
	"dukaan/models"
	"dukaan/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	store   Store
	shops   catalog.Reader
	timeout time.Duration
}

func NewHandler(store Store, shops catalog.Reader, timeout time.Duration) *Handler {
	return &Handler{store: store, shops: shops, timeout: timeout}
}

type reviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

// GET /api/reviews/:shopId
func (h *Handler) GetReviews(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	reviews, err := h.store.ListByShop(ctx, identity.Parse(ps.ByName("shopId")))
	if err != nil {
		utils.RespondWithAppError(w, "get reviews", apperr.Wrap("Failed to retrieve reviews", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, reviews)
}

// POST /api/reviews/:shopId
func (h *Handler) AddReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID.IsZero() {
		utils.RespondWithAppError(w, "add review", apperr.Unauthorized("Unauthorized"))
		return
	}

	var req reviewRequest
	if err := utils.DecodeAndValidate(r, &req, false); err != nil {
		utils.RespondWithAppError(w, "add review", err)
		return
	}

	shop, err := h.shops.Shop(ctx, ps.ByName("shopId"))
	if errors.Is(err, catalog.ErrNotFound) {
		utils.RespondWithAppError(w, "add review", apperr.Missing("Shop not found"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, "add review", apperr.Wrap("Failed to load shop", err))
		return
	}

	review := &models.Review{
		ShopID:    shop.ID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.Add(ctx, review); err != nil {
		utils.RespondWithAppError(w, "add review", apperr.Wrap("Failed to add review", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, review)
}

// GET /api/reviews/:shopId/average
func (h *Handler) GetAverage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	summary, err := h.store.Summarize(ctx, identity.Parse(ps.ByName("shopId")))
	if err != nil {
		utils.RespondWithAppError(w, "review average", apperr.Wrap("Failed to compute average", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, summary)
}
