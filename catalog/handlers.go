package catalog

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
	now     func() time.Time
}

func NewHandler(store Store, timeout time.Duration) *Handler {
	return &Handler{store: store, timeout: timeout, now: time.Now}
}

// GET /api/shops?category=
func (h *Handler) ListShops(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	shops, err := h.store.Shops(ctx)
	if err != nil {
		utils.RespondWithAppError(w, "list shops", apperr.Wrap("Failed to fetch shops", err))
		return
	}

	category := strings.TrimSpace(r.URL.Query().Get("category"))
	out := make([]models.Shop, 0, len(shops))
	now := h.now()
	for _, s := range shops {
		if category != "" && !strings.EqualFold(s.Category, category) {
			continue
		}
		s.IsOpen = s.OpenAt(now)
		out = append(out, s)
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// GET /api/shops/:shopId
func (h *Handler) GetShop(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	shop, err := h.store.Shop(ctx, ps.ByName("shopId"))
	if err != nil {
		utils.RespondWithAppError(w, "get shop", translate(err, "Shop not found"))
		return
	}
	out := *shop
	out.IsOpen = out.OpenAt(h.now())
	utils.RespondWithJSON(w, http.StatusOK, out)
}

type batchRequest struct {
	ShopIDs []string `json:"shop_ids" validate:"required,min=1"`
}

// POST /api/shops/batch
func (h *Handler) ShopsBatch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	var req batchRequest
	if err := utils.DecodeAndValidate(r, &req, false); err != nil {
		utils.RespondWithAppError(w, "shops batch", err)
		return
	}

	shops, err := h.store.ShopsByIDs(ctx, identity.ParseAll(req.ShopIDs))
	if err != nil {
		utils.RespondWithAppError(w, "shops batch", apperr.Wrap("Failed to fetch shops", err))
		return
	}
	now := h.now()
	for i := range shops {
		shops[i].IsOpen = shops[i].OpenAt(now)
	}
	utils.RespondWithJSON(w, http.StatusOK, shops)
}

// GET /api/shops/:shopId/products
func (h *Handler) ShopProducts(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	shop, err := h.store.Shop(ctx, ps.ByName("shopId"))
	if err != nil {
		utils.RespondWithAppError(w, "shop products", translate(err, "Shop not found"))
		return
	}

	products, err := h.store.ProductsByShop(ctx, shop.ID)
	if err != nil {
		utils.RespondWithAppError(w, "shop products", apperr.Wrap("Failed to fetch products", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, products)
}

// GET /api/products/:productId
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	product, err := h.store.Product(ctx, ps.ByName("productId"))
	if err != nil {
		utils.RespondWithAppError(w, "get product", translate(err, "Product not found"))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, product)
}

type shopRequest struct {
	Name        string `json:"name" validate:"required"`
	OwnerMobile string `json:"owner_mobile" validate:"required,len=10,numeric"`
	Category    string `json:"category" validate:"required"`
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
	ImageURL    string `json:"image_url"`
	Address     string `json:"address"`
}

// POST /api/shops
func (h *Handler) CreateShop(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	var req shopRequest
	if err := utils.DecodeAndValidate(r, &req, false); err != nil {
		utils.RespondWithAppError(w, "create shop", err)
		return
	}

	shop := &models.Shop{
		Name:        strings.TrimSpace(req.Name),
		OwnerMobile: req.OwnerMobile,
		Category:    strings.TrimSpace(req.Category),
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
		ImageURL:    req.ImageURL,
		Address:     req.Address,
	}
	if err := h.store.CreateShop(ctx, shop); err != nil {
		utils.RespondWithAppError(w, "create shop", apperr.Wrap("Failed to create shop", err))
		return
	}
	shop.IsOpen = shop.OpenAt(h.now())
	utils.RespondWithJSON(w, http.StatusCreated, shop)
}

type variantRequest struct {
	Label       string   `json:"label" validate:"required"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
}

type productRequest struct {
	ShopID      string           `json:"shop_id" validate:"required"`
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Price       float64          `json:"price" validate:"gte=0"`
	Quantity    int              `json:"quantity" validate:"gte=0"`
	ImageURL    string           `json:"image_url"`
	Variants    []variantRequest `json:"variants" validate:"dive"`
}

// POST /api/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := utils.RequestContext(r, h.timeout)
	defer cancel()

	var req productRequest
	if err := utils.DecodeAndValidate(r, &req, false); err != nil {
		utils.RespondWithAppError(w, "create product", err)
		return
	}

	shop, err := h.store.Shop(ctx, req.ShopID)
	if err != nil {
		utils.RespondWithAppError(w, "create product", translate(err, "Shop not found"))
		return
	}

	variants, err := buildVariants(req.Variants)
	if err != nil {
		utils.RespondWithAppError(w, "create product", err)
		return
	}

	product := &models.Product{
		ShopID:      shop.ID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		ImageURL:    req.ImageURL,
		Variants:    variants,
	}
	if err := h.store.CreateProduct(ctx, product); err != nil {
		utils.RespondWithAppError(w, "create product", apperr.Wrap("Failed to create product", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, product)
}

// buildVariants rejects blank labels and duplicates, compared case-insensitively.
func buildVariants(in []variantRequest) ([]models.Variant, error) {
	out := make([]models.Variant, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		label := strings.TrimSpace(v.Label)
		if label == "" {
			return nil, apperr.InvalidFields("Missing or invalid fields", map[string]string{
				"variants": "label is required",
			})
		}
		key := strings.ToLower(label)
		if seen[key] {
			return nil, apperr.InvalidFields("Missing or invalid fields", map[string]string{
				"variants": "duplicate label " + label,
			})
		}
		seen[key] = true
		out = append(out, models.Variant{
			Label:       label,
			Price:       v.Price,
			Image:       v.Image,
			Description: v.Description,
		})
	}
	return out, nil
}

func translate(err error, notFound string) error {
	if IsNotFound(err) {
		return apperr.Missing(notFound)
	}
	return apperr.Wrap("catalog lookup", err)
}
