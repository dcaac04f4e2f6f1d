package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"dukaan/globals"
	"dukaan/identity"
	"dukaan/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memLedger struct {
	mu     sync.Mutex
	orders map[identity.ID]models.Order
}

func newMemLedger() *memLedger {
	return &memLedger{orders: make(map[identity.ID]models.Order)}
}

func (m *memLedger) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = identity.New()
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *memLedger) Get(_ context.Context, id string, userID identity.ID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[identity.Parse(id)]
	if !ok || o.UserID != userID {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (m *memLedger) ListByUser(_ context.Context, userID identity.ID) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Order{}
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memLedger) MarkCompleted(_ context.Context, id string, userID identity.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[identity.Parse(id)]
	if !ok || o.UserID != userID || o.Status != models.OrderPending {
		return false, nil
	}
	o.Status = models.OrderCompleted
	m.orders[o.ID] = o
	return true, nil
}

func (m *memLedger) CountCompleted(_ context.Context, userID identity.ID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, o := range m.orders {
		if o.UserID == userID && o.Status == models.OrderCompleted {
			n++
		}
	}
	return n, nil
}

func newOrdersRouter(ledger Ledger) *httprouter.Router {
	h := NewHandler(ledger, []byte("test-secret"), time.Second)
	router := httprouter.New()
	router.GET("/api/user/orders", h.GetUserOrders)
	router.GET("/api/user/delivery-count", h.GetDeliveryCount)
	router.PUT("/api/orders/:orderId/complete", h.CompleteOrder)
	router.GET("/api/orders/:orderId/receipt", h.DownloadReceipt)
	return router
}

func call(router http.Handler, user identity.ID, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if !user.IsZero() {
		req = req.WithContext(context.WithValue(req.Context(), globals.UserIDKey, user))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func seedOrder(t *testing.T, l Ledger, user identity.ID, at time.Time) *models.Order {
	t.Helper()
	o := &models.Order{
		UserID: user,
		Items: []models.OrderLine{
			{ProductID: identity.New(), ProductName: "Milk", Quantity: 2, UnitPrice: 30},
		},
		TotalAmount: 60,
		Status:      models.OrderPending,
		CreatedAt:   at,
	}
	require.NoError(t, l.Create(context.Background(), o))
	return o
}

func TestCompleteOrderAndDeliveryCounts(t *testing.T) {
	ledger := newMemLedger()
	router := newOrdersRouter(ledger)
	user := identity.New()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	first := seedOrder(t, ledger, user, base)
	second := seedOrder(t, ledger, user, base.Add(time.Hour))

	rec := call(router, user, http.MethodPut, "/api/orders/"+first.ID.String()+"/complete")
	require.Equal(t, http.StatusOK, rec.Code)

	// already completed
	rec = call(router, user, http.MethodPut, "/api/orders/"+first.ID.String()+"/complete")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// not the caller's order
	rec = call(router, identity.New(), http.MethodPut, "/api/orders/"+second.ID.String()+"/complete")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(router, user, http.MethodGet, "/api/user/orders")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Orders              []models.Order `json:"orders"`
		CompletedDeliveries int64          `json:"completedDeliveries"`
		FreeDeliveriesLeft  int64          `json:"freeDeliveriesLeft"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Orders, 2)
	assert.Equal(t, second.ID, body.Orders[0].ID)
	assert.Equal(t, int64(1), body.CompletedDeliveries)
	assert.Equal(t, int64(1), body.FreeDeliveriesLeft)

	rec = call(router, user, http.MethodGet, "/api/user/delivery-count")
	assert.JSONEq(t, `{"deliveryCount":1}`, rec.Body.String())
}

func TestFreeDeliveriesLeft(t *testing.T) {
	assert.Equal(t, int64(2), freeDeliveriesLeft(0))
	assert.Equal(t, int64(0), freeDeliveriesLeft(2))
	assert.Equal(t, int64(0), freeDeliveriesLeft(7))
}

func TestOrders_Unauthenticated(t *testing.T) {
	router := newOrdersRouter(newMemLedger())
	rec := call(router, "", http.MethodGet, "/api/user/orders")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDownloadReceipt(t *testing.T) {
	ledger := newMemLedger()
	router := newOrdersRouter(ledger)
	user := identity.New()
	o := seedOrder(t, ledger, user, time.Now())

	rec := call(router, user, http.MethodGet, "/api/orders/"+o.ID.String()+"/receipt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = call(router, identity.New(), http.MethodGet, "/api/orders/"+o.ID.String()+"/receipt")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReceiptPayload(t *testing.T) {
	o := &models.Order{ID: "66aa00000000000000000001", TotalAmount: 350}
	p1 := ReceiptPayload(o, []byte("a"))
	p2 := ReceiptPayload(o, []byte("b"))
	assert.Contains(t, p1, "66aa00000000000000000001|350.00|")
	assert.NotEqual(t, p1, p2)
}
