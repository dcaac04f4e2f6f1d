package catalog

import (
	"context"
	"errors"

	"dukaan/identity"
	"dukaan/models"
)

var ErrNotFound = errors.New("catalog: not found")

// Reader is everything the cart engine and handlers need from the catalog.
type Reader interface {
	Shop(ctx context.Context, id string) (*models.Shop, error)
	Product(ctx context.Context, id string) (*models.Product, error)
	Shops(ctx context.Context) ([]models.Shop, error)
	ShopsByIDs(ctx context.Context, ids []identity.ID) ([]models.Shop, error)
	ProductsByShop(ctx context.Context, shopID identity.ID) ([]models.Product, error)
	// ProductsByIDs always reads through to the store; checkout prices
	// come from here.
	ProductsByIDs(ctx context.Context, ids []identity.ID) (map[identity.ID]*models.Product, error)
}

type Writer interface {
	CreateShop(ctx context.Context, shop *models.Shop) error
	CreateProduct(ctx context.Context, product *models.Product) error
}

type Store interface {
	Reader
	Writer
}
