package feedback

import (
	"net/http"
	"strings"
	"time"

	"dukaan/apperr"
	"dukaan/identity"
	"dukaan/models"
	"dukaan/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	store   Store
	timeout time.Duration
}

func NewHandler(store Store, timeout time.Duration) *Handler {
	return &Handler{store: store, timeout: timeout}
}

type feedbackRequest struct {
	Name     string `json:"name" validate:"max=100"`
	ShopType string `json:"shop_type" validate:"required,max=100"`
	Products string `json:"products" validate:"max=1000"`
	NotifyMe bool   `json:"notify_me"`
	Contact  string `json:"contact" validate:"required_if=NotifyMe true,max=100"`
}

type followupRequest struct {
	FeedbackID string `json:"feedback_id"`
	Preference string `json:"preference" validate:"required,oneof=delivery pickup no_preference"`
}

// POST /api/feedback; the session is optional.
func (h *Handler) SubmitFeedback(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	var req feedbackRequest
	if err := utils.DecodeAndValidate(r, &req, false); err != nil {
		utils.RespondWithAppError(w, "submit feedback", err)
		return
	}

	fb := &models.Feedback{
		UserID:    utils.GetUserIDFromRequest(r),
		Name:      strings.TrimSpace(req.Name),
		ShopType:  strings.TrimSpace(req.ShopType),
		Products:  strings.TrimSpace(req.Products),
		NotifyMe:  req.NotifyMe,
		Contact:   strings.TrimSpace(req.Contact),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.Save(ctx, fb); err != nil {
		utils.RespondWithAppError(w, "submit feedback", apperr.Wrap("Failed to save feedback", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{
		"message":     "Feedback submitted successfully",
		"feedback_id": fb.ID,
	})
}

// POST /api/feedback/followup
func (h *Handler) SubmitFollowup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	var req followupRequest
	if err := utils.DecodeAndValidate(r, &req, false); err != nil {
		utils.RespondWithAppError(w, "submit followup", err)
		return
	}

	f := &models.FeedbackFollowup{
		FeedbackID: identity.Parse(req.FeedbackID),
		UserID:     utils.GetUserIDFromRequest(r),
		Preference: req.Preference,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.store.SaveFollowup(ctx, f); err != nil {
		utils.RespondWithAppError(w, "submit followup", apperr.Wrap("Failed to save followup", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"message": "Thanks for letting us know"})
}
