package reviews

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"dukaan/catalog"
	"dukaan/globals"
	"dukaan/identity"
	"dukaan/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	reviews []models.Review
}

func (m *memStore) Add(_ context.Context, r *models.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = identity.New()
	m.reviews = append(m.reviews, *r)
	return nil
}

func (m *memStore) ListByShop(_ context.Context, shopID identity.ID) ([]models.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Review{}
	for _, r := range m.reviews {
		if r.ShopID == shopID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) Summarize(ctx context.Context, shopID identity.ID) (Summary, error) {
	list, _ := m.ListByShop(ctx, shopID)
	if len(list) == 0 {
		return Summary{}, nil
	}
	var sum int
	for _, r := range list {
		sum += r.Rating
	}
	return Summary{Average: float64(sum) / float64(len(list)), Count: int64(len(list))}, nil
}

func setup(t *testing.T) (*httprouter.Router, *models.Shop) {
	t.Helper()
	shops := catalog.NewMemoryStore()
	shop := &models.Shop{Name: "Fresh Mart"}
	require.NoError(t, shops.CreateShop(context.Background(), shop))

	h := NewHandler(&memStore{}, shops, time.Second)
	router := httprouter.New()
	router.GET("/api/reviews/:shopId", h.GetReviews)
	router.POST("/api/reviews/:shopId", h.AddReview)
	router.GET("/api/reviews/:shopId/average", h.GetAverage)
	return router, shop
}

func call(router http.Handler, user identity.ID, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if !user.IsZero() {
		req = req.WithContext(context.WithValue(req.Context(), globals.UserIDKey, user))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAverage(t *testing.T) {
	router, shop := setup(t)
	user := identity.New()
	path := "/api/reviews/" + shop.ID.String()

	rec := call(router, "", http.MethodGet, path+"/average", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"average_rating":0,"count":0}`, rec.Body.String())

	for _, body := range []string{`{"rating":3}`, `{"rating":5,"comment":"great"}`} {
		rec = call(router, user, http.MethodPost, path, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = call(router, "", http.MethodGet, path+"/average", "")
	assert.JSONEq(t, `{"average_rating":4,"count":2}`, rec.Body.String())

	rec = call(router, "", http.MethodGet, path, "")
	var list []models.Review
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestAddReview_Rejects(t *testing.T) {
	router, shop := setup(t)
	path := "/api/reviews/" + shop.ID.String()

	rec := call(router, "", http.MethodPost, path, `{"rating":4}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	user := identity.New()
	for _, body := range []string{`{"rating":0}`, `{"rating":6}`, `{}`, `not json`} {
		rec = call(router, user, http.MethodPost, path, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec = call(router, user, http.MethodPost, "/api/reviews/"+identity.New().String(), `{"rating":4}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
