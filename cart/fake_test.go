package cart

import (
	"context"
	"errors"
	"sort"
	"sync"

	"dukaan/identity"
	"dukaan/models"
)

// memStore keeps lines keyed by merge key, mirroring the unique index.
type memStore struct {
	mu    sync.Mutex
	lines map[string]models.CartLine

	// dropOnDelete removes a line before DeleteLines runs, simulating a
	// concurrent removal between selection and deletion.
	dropOnDelete identity.ID
}

func newMemStore() *memStore {
	return &memStore{lines: make(map[string]models.CartLine)}
}

func mergeKey(l models.CartLine) string {
	return l.UserID.String() + "|" + l.ProductID.String() + "|" + l.VariantKey
}

func (m *memStore) Increment(_ context.Context, line models.CartLine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := mergeKey(line)
	if cur, ok := m.lines[k]; ok {
		cur.Quantity += line.Quantity
		m.lines[k] = cur
		return nil
	}
	line.ID = identity.New()
	m.lines[k] = line
	return nil
}

func (m *memStore) all(match func(models.CartLine) bool) []models.CartLine {
	out := []models.CartLine{}
	for _, l := range m.lines {
		if match(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memStore) ProductLines(_ context.Context, userID, productID identity.ID) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.all(func(l models.CartLine) bool { return l.UserID == userID && l.ProductID == productID }), nil
}

func (m *memStore) SetQuantity(_ context.Context, userID, lineID identity.ID, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, l := range m.lines {
		if l.ID == lineID && l.UserID == userID {
			l.Quantity = quantity
			m.lines[k] = l
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Lines(ctx context.Context, userID identity.ID) ([]models.CartLine, error) {
	return m.Select(ctx, userID, "", nil)
}

func (m *memStore) Select(_ context.Context, userID, shopID identity.ID, productIDs []identity.ID) ([]models.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[identity.ID]bool, len(productIDs))
	for _, id := range productIDs {
		want[id] = true
	}
	return m.all(func(l models.CartLine) bool {
		if l.UserID != userID {
			return false
		}
		if !shopID.IsZero() && l.ShopID != shopID {
			return false
		}
		return len(want) == 0 || want[l.ProductID]
	}), nil
}

func (m *memStore) DeleteLines(_ context.Context, userID identity.ID, lineIDs []identity.ID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dropOnDelete.IsZero() {
		for k, l := range m.lines {
			if l.ID == m.dropOnDelete {
				delete(m.lines, k)
			}
		}
	}
	ids := make(map[identity.ID]bool, len(lineIDs))
	for _, id := range lineIDs {
		ids[id] = true
	}
	var n int64
	for k, l := range m.lines {
		if l.UserID == userID && ids[l.ID] {
			delete(m.lines, k)
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteAll(_ context.Context, userID identity.ID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, l := range m.lines {
		if l.UserID == userID {
			delete(m.lines, k)
			n++
		}
	}
	return n, nil
}

type recordingLedger struct {
	mu     sync.Mutex
	orders []*models.Order
	err    error
}

func (r *recordingLedger) Create(_ context.Context, o *models.Order) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, o)
	return nil
}

// rollbackTx discards ledger writes when fn fails, like a real transaction
// would for the order insert.
type rollbackTx struct {
	ledger *recordingLedger
}

func (t rollbackTx) RunTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.ledger.mu.Lock()
	n := len(t.ledger.orders)
	t.ledger.mu.Unlock()

	err := fn(ctx)
	if err != nil {
		t.ledger.mu.Lock()
		t.ledger.orders = t.ledger.orders[:n]
		t.ledger.mu.Unlock()
	}
	return err
}

var errBoom = errors.New("boom")
