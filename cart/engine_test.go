package cart

import (
	"context"
	"testing"

	"dukaan/apperr"
	"dukaan/catalog"
	"dukaan/db"
	"dukaan/identity"
	"dukaan/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	engine  *Engine
	store   *memStore
	catalog *catalog.MemoryStore
	ledger  *recordingLedger
	user    identity.ID
	shop    *models.Shop
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	cat := catalog.NewMemoryStore()
	shop := &models.Shop{Name: "Fresh Mart", OwnerMobile: "9876543210"}
	require.NoError(t, cat.CreateShop(ctx, shop))

	store := newMemStore()
	ledger := &recordingLedger{}
	return &fixture{
		engine:  NewEngine(store, cat, ledger, rollbackTx{ledger: ledger}),
		store:   store,
		catalog: cat,
		ledger:  ledger,
		user:    identity.New(),
		shop:    shop,
	}
}

func price(v float64) *float64 { return &v }

func (f *fixture) product(t *testing.T, name string, base float64, variants ...models.Variant) *models.Product {
	t.Helper()
	return f.productIn(t, f.shop.ID, name, base, variants...)
}

func (f *fixture) productIn(t *testing.T, shopID identity.ID, name string, base float64, variants ...models.Variant) *models.Product {
	t.Helper()
	p := &models.Product{ShopID: shopID, Name: name, Price: base, Variants: variants}
	require.NoError(t, f.catalog.CreateProduct(context.Background(), p))
	return p
}

func (f *fixture) lines(t *testing.T) []models.CartLine {
	t.Helper()
	lines, err := f.store.Lines(context.Background(), f.user)
	require.NoError(t, err)
	return lines
}

func TestAddOrIncrement_RepeatAddIncrements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Milk", 30)

	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p.ID.String(), "", 1))
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p.ID.String(), "", 1))

	lines := f.lines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, f.shop.ID, lines[0].ShopID)
	assert.Nil(t, lines[0].Variant)
}

func TestAddOrIncrement_DistinctVariantsCoexist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Rice", 60,
		models.Variant{Label: "1kg"},
		models.Variant{Label: "5kg", Price: price(280)},
	)

	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p.ID.String(), "1kg", 1))
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p.ID.String(), "5kg", 2))
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p.ID.String(), "5KG", 1))

	lines := f.lines(t)
	require.Len(t, lines, 2)
	byKey := map[string]int{}
	for _, l := range lines {
		byKey[l.VariantKey] = l.Quantity
	}
	assert.Equal(t, map[string]int{"1kg": 1, "5kg": 3}, byKey)
}

func TestAddOrIncrement_VariantIsSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Rice", 60, models.Variant{Label: "5kg", Price: price(280)})

	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p.ID.String(), "5kg", 1))
	p.Variants[0].Label = "changed"

	lines := f.lines(t)
	require.Len(t, lines, 1)
	require.NotNil(t, lines[0].Variant)
	assert.Equal(t, "5kg", lines[0].Variant.Label)
}

func TestAddOrIncrement_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Rice", 60, models.Variant{Label: "1kg"})

	err := f.engine.AddOrIncrement(ctx, f.user, identity.New().String(), "", 1)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	err = f.engine.AddOrIncrement(ctx, f.user, p.ID.String(), "10kg", 1)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	err = f.engine.AddOrIncrement(ctx, "", p.ID.String(), "", 1)
	assert.True(t, apperr.Is(err, apperr.Unauthenticated))

	assert.Empty(t, f.lines(t))
}

func TestUpdateQuantity_ClampsToOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Milk", 30)
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p.ID.String(), "", 4))

	for _, q := range []int{0, -3} {
		require.NoError(t, f.engine.UpdateQuantity(ctx, f.user, p.ID.String(), "", q))
		assert.Equal(t, 1, f.lines(t)[0].Quantity)
	}

	require.NoError(t, f.engine.UpdateQuantity(ctx, f.user, p.ID.String(), "", 7))
	assert.Equal(t, 7, f.lines(t)[0].Quantity)
}

func TestUpdateQuantity_MatchesVariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Rice", 60, models.Variant{Label: "1kg"}, models.Variant{Label: "5kg"})
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p.ID.String(), "1kg", 1))
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p.ID.String(), "5kg", 1))

	require.NoError(t, f.engine.UpdateQuantity(ctx, f.user, p.ID.String(), "5kg", 4))
	for _, l := range f.lines(t) {
		if l.VariantKey == "5kg" {
			assert.Equal(t, 4, l.Quantity)
		} else {
			assert.Equal(t, 1, l.Quantity)
		}
	}

	err := f.engine.UpdateQuantity(ctx, f.user, p.ID.String(), "", 2)
	assert.True(t, apperr.Is(err, apperr.InvalidInput))

	err = f.engine.UpdateQuantity(ctx, f.user, identity.New().String(), "", 2)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.product(t, "Milk", 30)
	p2 := f.product(t, "Bread", 40, models.Variant{Label: "large"})
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p1.ID.String(), "", 1))
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p2.ID.String(), "large", 1))

	err := f.engine.Remove(ctx, f.user, identity.New().String(), "")
	assert.True(t, apperr.Is(err, apperr.NotFound))
	assert.Len(t, f.lines(t), 2)

	// the product's only line is found without naming its variant
	require.NoError(t, f.engine.Remove(ctx, f.user, p2.ID.String(), ""))
	require.NoError(t, f.engine.Remove(ctx, f.user, p1.ID.String(), ""))
	assert.Empty(t, f.lines(t))
}

func TestCartIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Milk", 30)
	other := identity.New()
	require.NoError(t, f.engine.AddOrIncrement(ctx, other, p.ID.String(), "", 1))

	items, err := f.engine.List(ctx, f.user)
	require.NoError(t, err)
	assert.Empty(t, items)

	err = f.engine.Remove(ctx, f.user, p.ID.String(), "")
	assert.True(t, apperr.Is(err, apperr.NotFound))

	n, err := f.engine.ClearAll(ctx, f.user)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestList_AppliesVariantOverrides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Rice", 60, models.Variant{Label: "5kg", Price: price(280), Image: "rice5.jpg"})
	plain := f.product(t, "Salt", 20)
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p.ID.String(), "5kg", 1))
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, plain.ID.String(), "", 2))

	items, err := f.engine.List(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byName := map[string]models.CartItem{}
	for _, it := range items {
		byName[it.Name] = it
	}
	rice := byName["Rice"]
	assert.Equal(t, p.ID, rice.ID)
	assert.Equal(t, 280.0, rice.Price)
	assert.Equal(t, 60.0, rice.BasePrice)
	assert.Equal(t, "rice5.jpg", rice.ImageURL)

	salt := byName["Salt"]
	assert.Equal(t, 20.0, salt.Price)
	assert.Equal(t, 2, salt.Quantity)
}

func TestClearAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, f.product(t, "A", 1).ID.String(), "", 1))
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, f.product(t, "B", 1).ID.String(), "", 1))

	n, err := f.engine.ClearAll(ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Empty(t, f.lines(t))
}

func TestCheckoutSubset_LeavesUnselectedLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.product(t, "Milk", 30)
	p2 := f.product(t, "Bread", 45)
	p3 := f.product(t, "Eggs", 70)
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p1.ID.String(), "", 2))
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p2.ID.String(), "", 1))
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p3.ID.String(), "", 1))

	conf, err := f.engine.CheckoutSubset(ctx, f.user, f.shop.ID.String(), []string{p1.ID.String(), p2.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 30.0*2+45.0, conf.TotalAmount)
	require.NotNil(t, conf.Shop)
	assert.Equal(t, "9876543210", conf.Shop.OwnerMobile)

	require.Len(t, f.ledger.orders, 1)
	order := f.ledger.orders[0]
	assert.Equal(t, conf.OrderID, order.ID)
	assert.Equal(t, f.shop.ID, order.ShopID)
	assert.Equal(t, models.OrderPending, order.Status)
	require.Len(t, order.Items, 2)
	for _, it := range order.Items {
		assert.NotEqual(t, p3.ID, it.ProductID)
	}

	lines := f.lines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, p3.ID, lines[0].ProductID)
}

func TestCheckoutSubset_EmptySelectionIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Milk", 30)
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p.ID.String(), "", 1))

	_, err := f.engine.CheckoutSubset(ctx, f.user, f.shop.ID.String(), []string{identity.New().String()})
	assert.True(t, apperr.Is(err, apperr.NotFound))
	assert.Empty(t, f.ledger.orders)
	assert.Len(t, f.lines(t), 1)

	_, err = f.engine.CheckoutSubset(ctx, f.user, identity.New().String(), nil)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestCheckoutSubset_WholeShopWhenNoIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := &models.Shop{Name: "Other"}
	require.NoError(t, f.catalog.CreateShop(ctx, other))
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, f.product(t, "Milk", 30).ID.String(), "", 1))
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, f.product(t, "Tea", 90).ID.String(), "", 1))
	elsewhere := f.productIn(t, other.ID, "Soap", 25)
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, elsewhere.ID.String(), "", 1))

	conf, err := f.engine.CheckoutSubset(ctx, f.user, f.shop.ID.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, 120.0, conf.TotalAmount)

	lines := f.lines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, other.ID, lines[0].ShopID)
}

func TestCheckoutAll_TotalAcrossVariants(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := &models.Shop{Name: "Sweets", OwnerMobile: "9000000000"}
	require.NoError(t, f.catalog.CreateShop(ctx, other))
	p1 := f.product(t, "Paneer", 100)
	p2 := f.productIn(t, other.ID, "Ladoo", 80, models.Variant{Label: "small", Price: price(50)})

	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p1.ID.String(), "", 2))
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p2.ID.String(), "small", 3))

	conf, err := f.engine.CheckoutAll(ctx, f.user, []string{p1.ID.String(), p2.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 350.0, conf.TotalAmount)
	assert.Len(t, conf.Shops, 2)

	require.Len(t, f.ledger.orders, 1)
	assert.True(t, f.ledger.orders[0].ShopID.IsZero())
	assert.Equal(t, 350.0, f.ledger.orders[0].TotalAmount)
	assert.Empty(t, f.lines(t))
}

func TestCheckoutAll_OnlyConsumedLinesDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.product(t, "Milk", 30)
	p2 := f.product(t, "Bread", 40)
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p1.ID.String(), "", 1))
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p2.ID.String(), "", 1))

	_, err := f.engine.CheckoutAll(ctx, f.user, []string{p1.ID.String()})
	require.NoError(t, err)

	lines := f.lines(t)
	require.Len(t, lines, 1)
	assert.Equal(t, p2.ID, lines[0].ProductID)
}

func TestCheckoutAll_RequiresProductIDs(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.CheckoutAll(context.Background(), f.user, nil)
	assert.True(t, apperr.Is(err, apperr.InvalidInput))
	assert.Empty(t, f.ledger.orders)
}

func TestCheckout_UsesCurrentPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Milk", 30)
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p.ID.String(), "", 2))
	f.catalog.SetPrice(p.ID, 35)

	conf, err := f.engine.CheckoutAll(ctx, f.user, []string{p.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 70.0, conf.TotalAmount)
	assert.Equal(t, 35.0, conf.Items[0].UnitPrice)
}

func TestCheckout_ConcurrentRemovalConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p1 := f.product(t, "Milk", 30)
	p2 := f.product(t, "Bread", 40)
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p1.ID.String(), "", 1))
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p2.ID.String(), "", 1))
	f.store.dropOnDelete = f.lines(t)[0].ID

	_, err := f.engine.CheckoutAll(ctx, f.user, []string{p1.ID.String(), p2.ID.String()})
	assert.True(t, apperr.Is(err, apperr.Conflict))
	assert.Empty(t, f.ledger.orders)
}

func TestCheckout_LedgerFailureKeepsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Milk", 30)
	require.NoError(t, f.engine.AddOrIncrement(ctx, f.user, p.ID.String(), "", 1))
	f.ledger.err = errBoom

	_, err := f.engine.CheckoutAll(ctx, f.user, []string{p.ID.String()})
	assert.True(t, apperr.Is(err, apperr.Internal))
	assert.ErrorIs(t, err, errBoom)
	assert.Len(t, f.lines(t), 1)
}

func TestEngine_NoTx(t *testing.T) {
	cat := catalog.NewMemoryStore()
	shop := &models.Shop{Name: "Fresh Mart"}
	require.NoError(t, cat.CreateShop(context.Background(), shop))
	p := &models.Product{ShopID: shop.ID, Name: "Milk", Price: 30}
	require.NoError(t, cat.CreateProduct(context.Background(), p))

	ledger := &recordingLedger{}
	e := NewEngine(newMemStore(), cat, ledger, db.NoTx{})
	user := identity.New()
	require.NoError(t, e.AddOrIncrement(context.Background(), user, p.ID.String(), "", 1))

	conf, err := e.CheckoutSubset(context.Background(), user, shop.ID.String(), nil)
	require.NoError(t, err)
	assert.Equal(t, 30.0, conf.TotalAmount)
}
