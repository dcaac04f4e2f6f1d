package prescriptions

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"dukaan/apperr"
	"dukaan/identity"
	"dukaan/models"
	"dukaan/utils"

	"github.com/julienschmidt/httprouter"
)

const maxUploadBytes = 10 << 20

// Saver turns an uploaded image into stored files.
type Saver interface {
	Save(src io.Reader) (*SavedImage, error)
}

type Handler struct {
	store   Store
	images  Saver
	timeout time.Duration
}

func NewHandler(store Store, images Saver, timeout time.Duration) *Handler {
	return &Handler{store: store, images: images, timeout: timeout}
}

// POST /api/prescriptions/upload (multipart: prescription, shop_id?, note?)
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID.IsZero() {
		utils.RespondWithAppError(w, "upload prescription", apperr.Unauthorized("Unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		utils.RespondWithAppError(w, "upload prescription", apperr.Invalid("Upload too large or malformed"))
		return
	}

	file, header, err := r.FormFile("prescription")
	if err != nil {
		utils.RespondWithAppError(w, "upload prescription", apperr.InvalidFields("Missing or invalid fields", map[string]string{"prescription": "is required"}))
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		utils.RespondWithAppError(w, "upload prescription", apperr.Invalid("File exceeds 10MB"))
		return
	}
	if !utils.IsSupportedImage(header) {
		utils.RespondWithAppError(w, "upload prescription", apperr.Invalid("Invalid file type. Supported formats: JPEG, PNG, GIF, BMP, TIFF."))
		return
	}

	note := strings.TrimSpace(r.FormValue("note"))
	if len(note) > 500 {
		utils.RespondWithAppError(w, "upload prescription", apperr.InvalidFields("Missing or invalid fields", map[string]string{"note": "must be at most 500"}))
		return
	}

	saved, err := h.images.Save(file)
	if errors.Is(err, ErrNotImage) {
		utils.RespondWithAppError(w, "upload prescription", apperr.Invalid("File is not a valid image"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(w, "upload prescription", apperr.Wrap("Failed to save image", err))
		return
	}

	p := &models.Prescription{
		UserID:    userID,
		ShopID:    identity.Parse(r.FormValue("shop_id")),
		Note:      note,
		File:      saved.File,
		Thumbnail: saved.Thumbnail,
		Width:     saved.Width,
		Height:    saved.Height,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.Add(ctx, p); err != nil {
		utils.RespondWithAppError(w, "upload prescription", apperr.Wrap("Failed to record prescription", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, p)
}

// GET /api/prescriptions
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID.IsZero() {
		utils.RespondWithAppError(w, "list prescriptions", apperr.Unauthorized("Unauthorized"))
		return
	}

	list, err := h.store.ListByUser(ctx, userID)
	if err != nil {
		utils.RespondWithAppError(w, "list prescriptions", apperr.Wrap("Failed to fetch prescriptions", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, list)
}
