package cart

import (
	"context"
	"errors"
	"log"
	"time"

	"dukaan/apperr"
	"dukaan/catalog"
	"dukaan/db"
	"dukaan/identity"
	"dukaan/models"
)

// Confirmation is what a successful checkout hands back to the buyer.
type Confirmation struct {
	OrderID     identity.ID          `json:"order_id"`
	TotalAmount float64              `json:"total_amount"`
	Items       []models.OrderLine   `json:"items"`
	Shop        *models.ShopContact  `json:"shop,omitempty"`
	Shops       []models.ShopContact `json:"shops,omitempty"`
}

type Engine struct {
	lines   Store
	catalog catalog.Reader
	orders  OrderWriter
	tx      db.Transactor
	now     func() time.Time
}

func NewEngine(lines Store, reader catalog.Reader, orders OrderWriter, tx db.Transactor) *Engine {
	return &Engine{lines: lines, catalog: reader, orders: orders, tx: tx, now: time.Now}
}

// AddOrIncrement puts quantity of the product (and variant, when given) in
// the user's cart. A repeat add of the same merge key increments.
func (e *Engine) AddOrIncrement(ctx context.Context, userID identity.ID, productID, variant string, quantity int) error {
	if userID.IsZero() {
		return apperr.Unauthorized("Unauthorized")
	}
	if quantity < 1 {
		quantity = 1
	}

	product, err := e.catalog.Product(ctx, productID)
	if errors.Is(err, catalog.ErrNotFound) {
		return apperr.Missing("Product not found")
	}
	if err != nil {
		return apperr.Wrap("load product", err)
	}

	line := models.CartLine{
		UserID:    userID,
		ProductID: product.ID,
		ShopID:    product.ShopID,
		Quantity:  quantity,
		CreatedAt: e.now().UTC(),
	}
	if variant != "" {
		v, ok := product.Variant(variant)
		if !ok {
			return apperr.Missing("Variant not found")
		}
		line.Variant = &v
		line.VariantKey = variantKey(v.Label)
	}

	if err := e.lines.Increment(ctx, line); err != nil {
		return apperr.Wrap("add to wishlist", err)
	}
	return nil
}

// UpdateQuantity sets the quantity of an existing line. Values below 1 are
// stored as 1.
func (e *Engine) UpdateQuantity(ctx context.Context, userID identity.ID, productID, variant string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	line, err := e.findLine(ctx, userID, productID, variant)
	if err != nil {
		return err
	}

	ok, err := e.lines.SetQuantity(ctx, userID, line.ID, quantity)
	if err != nil {
		return apperr.Wrap("update quantity", err)
	}
	if !ok {
		return apperr.Missing("Item not found in wishlist")
	}
	return nil
}

func (e *Engine) Remove(ctx context.Context, userID identity.ID, productID, variant string) error {
	line, err := e.findLine(ctx, userID, productID, variant)
	if err != nil {
		return err
	}

	n, err := e.lines.DeleteLines(ctx, userID, []identity.ID{line.ID})
	if err != nil {
		return apperr.Wrap("remove from wishlist", err)
	}
	if n == 0 {
		return apperr.Missing("Item not found in wishlist")
	}
	return nil
}

// findLine picks the line a product-level request refers to. Without a
// variant it prefers the variant-less line, then the product's only line.
func (e *Engine) findLine(ctx context.Context, userID identity.ID, productID, variant string) (*models.CartLine, error) {
	if userID.IsZero() {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	pid := identity.Parse(productID)
	if pid.IsZero() {
		return nil, apperr.Invalid("Product ID is required")
	}

	lines, err := e.lines.ProductLines(ctx, userID, pid)
	if err != nil {
		return nil, apperr.Wrap("load wishlist", err)
	}

	if variant != "" {
		key := variantKey(variant)
		for i := range lines {
			if lines[i].VariantKey == key {
				return &lines[i], nil
			}
		}
		return nil, apperr.Missing("Item not found in wishlist")
	}

	for i := range lines {
		if lines[i].VariantKey == "" {
			return &lines[i], nil
		}
	}
	switch len(lines) {
	case 0:
		return nil, apperr.Missing("Item not found in wishlist")
	case 1:
		return &lines[0], nil
	default:
		return nil, apperr.Invalid("Variant is required for this product")
	}
}

// List joins each line with its product. Variant price, image and
// description override the product's.
func (e *Engine) List(ctx context.Context, userID identity.ID) ([]models.CartItem, error) {
	if userID.IsZero() {
		return nil, apperr.Unauthorized("Unauthorized")
	}

	lines, err := e.lines.Lines(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap("load wishlist", err)
	}
	products, err := e.catalog.ProductsByIDs(ctx, productIDs(lines))
	if err != nil {
		return nil, apperr.Wrap("load wishlist products", err)
	}

	items := make([]models.CartItem, 0, len(lines))
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			log.Printf("wishlist line %s references missing product %s", l.ID, l.ProductID)
			continue
		}
		item := models.CartItem{
			ID:          p.ID,
			LineID:      l.ID,
			ShopID:      l.ShopID,
			Name:        p.Name,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			Price:       p.UnitPrice(l.Variant),
			BasePrice:   p.Price,
			Quantity:    l.Quantity,
			Variant:     l.Variant,
			AddedAt:     l.CreatedAt,
		}
		if l.Variant != nil {
			if l.Variant.Image != "" {
				item.ImageURL = l.Variant.Image
			}
			if l.Variant.Description != "" {
				item.Description = l.Variant.Description
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (e *Engine) ClearAll(ctx context.Context, userID identity.ID) (int64, error) {
	if userID.IsZero() {
		return 0, apperr.Unauthorized("Unauthorized")
	}
	n, err := e.lines.DeleteAll(ctx, userID)
	if err != nil {
		return 0, apperr.Wrap("clear wishlist", err)
	}
	return n, nil
}

// CheckoutSubset orders the user's lines from one shop, narrowed to
// productIDs when any are given.
func (e *Engine) CheckoutSubset(ctx context.Context, userID identity.ID, shopID string, productIDs []string) (*Confirmation, error) {
	if userID.IsZero() {
		return nil, apperr.Unauthorized("Unauthorized")
	}

	shop, err := e.catalog.Shop(ctx, shopID)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, apperr.Missing("Shop not found")
	}
	if err != nil {
		return nil, apperr.Wrap("load shop", err)
	}

	order, err := e.checkout(ctx, userID, shop.ID, identity.ParseAll(productIDs))
	if err != nil {
		return nil, err
	}
	contact := shop.Contact()
	return &Confirmation{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
		Shop:        &contact,
	}, nil
}

// CheckoutAll orders the selected products across every shop in the cart.
func (e *Engine) CheckoutAll(ctx context.Context, userID identity.ID, productIDs []string) (*Confirmation, error) {
	if userID.IsZero() {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	ids := identity.ParseAll(productIDs)
	if len(ids) == 0 {
		return nil, apperr.InvalidFields("Missing or invalid fields", map[string]string{"product_ids": "is required"})
	}

	order, err := e.checkout(ctx, userID, "", ids)
	if err != nil {
		return nil, err
	}

	shops, err := e.catalog.ShopsByIDs(ctx, shopIDs(order.Items))
	if err != nil {
		// The order is already placed; contacts are best effort.
		log.Printf("checkout %s: failed to load shop contacts: %v", order.ID, err)
	}
	contacts := make([]models.ShopContact, 0, len(shops))
	for i := range shops {
		contacts = append(contacts, shops[i].Contact())
	}
	return &Confirmation{
		OrderID:     order.ID,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
		Shops:       contacts,
	}, nil
}

// checkout selects lines, writes one order priced from the current
// catalog and deletes exactly the selected line ids, all in one unit.
func (e *Engine) checkout(ctx context.Context, userID, shopID identity.ID, ids []identity.ID) (*models.Order, error) {
	var order *models.Order
	err := e.tx.RunTx(ctx, func(ctx context.Context) error {
		lines, err := e.lines.Select(ctx, userID, shopID, ids)
		if err != nil {
			return apperr.Wrap("select wishlist lines", err)
		}
		if len(lines) == 0 {
			return apperr.Missing("No matching items in wishlist")
		}

		products, err := e.catalog.ProductsByIDs(ctx, productIDs(lines))
		if err != nil {
			return apperr.Wrap("load products", err)
		}

		o, err := buildOrder(userID, shopID, lines, products, e.now().UTC())
		if err != nil {
			return err
		}
		if err := e.orders.Create(ctx, o); err != nil {
			return apperr.Wrap("create order", err)
		}

		lineIDs := make([]identity.ID, len(lines))
		for i, l := range lines {
			lineIDs[i] = l.ID
		}
		n, err := e.lines.DeleteLines(ctx, userID, lineIDs)
		if err != nil {
			return apperr.Wrap("delete checked out lines", err)
		}
		if n != int64(len(lineIDs)) {
			return apperr.Conflicted("Wishlist changed during checkout, please retry")
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func buildOrder(userID, shopID identity.ID, lines []models.CartLine, products map[identity.ID]*models.Product, now time.Time) (*models.Order, error) {
	order := &models.Order{
		ID:        identity.New(),
		UserID:    userID,
		ShopID:    shopID,
		Items:     make([]models.OrderLine, 0, len(lines)),
		Status:    models.OrderPending,
		CreatedAt: now,
	}
	for _, l := range lines {
		p, ok := products[l.ProductID]
		if !ok {
			return nil, apperr.Missing("Product " + l.ProductID.String() + " is no longer available")
		}
		price := p.UnitPrice(l.Variant)
		order.Items = append(order.Items, models.OrderLine{
			ProductID:   p.ID,
			ShopID:      l.ShopID,
			ProductName: p.Name,
			Quantity:    l.Quantity,
			UnitPrice:   price,
			Variant:     l.Variant,
		})
		order.TotalAmount += price * float64(l.Quantity)
	}
	return order, nil
}

func productIDs(lines []models.CartLine) []identity.ID {
	seen := make(map[identity.ID]bool, len(lines))
	out := make([]identity.ID, 0, len(lines))
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			out = append(out, l.ProductID)
		}
	}
	return out
}

func shopIDs(items []models.OrderLine) []identity.ID {
	seen := make(map[identity.ID]bool, len(items))
	out := make([]identity.ID, 0, len(items))
	for _, it := range items {
		if !seen[it.ShopID] {
			seen[it.ShopID] = true
			out = append(out, it.ShopID)
		}
	}
	return out
}
