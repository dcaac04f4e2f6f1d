package catalog

import (
	"context"
	"errors"
	"log"
	"time"

	"dukaan/identity"
	"dukaan/models"
	"dukaan/rdx"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	shopsKey    = "catalog:shops"
	loadTimeout = 5 * time.Second
)

func shopKey(id string) string         { return "catalog:shop:" + id }
func productKey(id string) string      { return "catalog:product:" + id }
func shopProductsKey(id string) string { return "catalog:shop:" + id + ":products" }

// CachedStore is a Redis read-through cache in front of a Store. Cache
// failures are logged and fall through to the store.
type CachedStore struct {
	next Store
	conn redis.Cmdable
	ttl  time.Duration
	sfg  singleflight.Group
}

func NewCachedStore(next Store, conn redis.Cmdable, ttl time.Duration) *CachedStore {
	return &CachedStore{next: next, conn: conn, ttl: ttl}
}

// cached loads key from Redis or fills it from load. Concurrent misses for
// the same key share a single load, which runs detached from any one
// caller's cancellation; each caller still stops waiting when its own ctx ends.
func cached[T any](ctx context.Context, c *CachedStore, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var hit T
	found, err := rdx.GetJSON(ctx, c.conn, key, &hit)
	if err != nil {
		log.Printf("catalog cache get %s: %v", key, err)
	}
	if found {
		return hit, nil
	}

	ch := c.sfg.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		val, err := load(loadCtx)
		if err != nil {
			return val, err
		}
		if err := rdx.SetJSON(loadCtx, c.conn, key, val, c.ttl); err != nil {
			log.Printf("catalog cache set %s: %v", key, err)
		}
		return val, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (c *CachedStore) Shop(ctx context.Context, id string) (*models.Shop, error) {
	return cached(ctx, c, shopKey(identity.Parse(id).String()), func(ctx context.Context) (*models.Shop, error) {
		return c.next.Shop(ctx, id)
	})
}

func (c *CachedStore) Product(ctx context.Context, id string) (*models.Product, error) {
	return cached(ctx, c, productKey(identity.Parse(id).String()), func(ctx context.Context) (*models.Product, error) {
		return c.next.Product(ctx, id)
	})
}

func (c *CachedStore) Shops(ctx context.Context) ([]models.Shop, error) {
	return cached(ctx, c, shopsKey, func(ctx context.Context) ([]models.Shop, error) {
		return c.next.Shops(ctx)
	})
}

func (c *CachedStore) ShopsByIDs(ctx context.Context, ids []identity.ID) ([]models.Shop, error) {
	return c.next.ShopsByIDs(ctx, ids)
}

func (c *CachedStore) ProductsByShop(ctx context.Context, shopID identity.ID) ([]models.Product, error) {
	return cached(ctx, c, shopProductsKey(shopID.String()), func(ctx context.Context) ([]models.Product, error) {
		return c.next.ProductsByShop(ctx, shopID)
	})
}

func (c *CachedStore) ProductsByIDs(ctx context.Context, ids []identity.ID) (map[identity.ID]*models.Product, error) {
	return c.next.ProductsByIDs(ctx, ids)
}

func (c *CachedStore) CreateShop(ctx context.Context, shop *models.Shop) error {
	if err := c.next.CreateShop(ctx, shop); err != nil {
		return err
	}
	c.invalidate(shopsKey, shopKey(shop.ID.String()))
	return nil
}

func (c *CachedStore) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := c.next.CreateProduct(ctx, product); err != nil {
		return err
	}
	c.invalidate(shopProductsKey(product.ShopID.String()), productKey(product.ID.String()))
	return nil
}

func (c *CachedStore) invalidate(keys ...string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rdx.Del(ctx, c.conn, keys...); err != nil {
		log.Printf("catalog cache invalidate %v: %v", keys, err)
	}
}

// IsNotFound reports catalog misses through any wrapping.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
