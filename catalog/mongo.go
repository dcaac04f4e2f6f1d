package catalog

import (
	"context"
	"errors"
	"fmt"

	"dukaan/db"
	"dukaan/identity"
	"dukaan/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoStore struct {
	shops    *mongo.Collection
	products *mongo.Collection
	resolver *identity.Resolver
}

func NewMongoStore(d *db.DB) Store {
	return &mongoStore{
		shops:    d.ShopsCollection,
		products: d.ProductCollection,
		resolver: identity.NewResolver(identity.MongoLookup(d.Database)),
	}
}

func (m *mongoStore) Shop(ctx context.Context, id string) (*models.Shop, error) {
	var shop models.Shop
	if err := m.findResolved(ctx, m.shops, db.Shops, id, &shop); err != nil {
		return nil, err
	}
	return &shop, nil
}

func (m *mongoStore) Product(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := m.findResolved(ctx, m.products, db.Products, id, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (m *mongoStore) findResolved(ctx context.Context, coll *mongo.Collection, name, raw string, dst any) error {
	ref, err := m.resolver.Resolve(ctx, name, raw)
	if errors.Is(err, identity.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to resolve %s id: %w", name, err)
	}

	err = coll.FindOne(ctx, ref.Filter()).Decode(dst)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", name, err)
	}
	return nil
}

func (m *mongoStore) Shops(ctx context.Context) ([]models.Shop, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return db.FindAndDecode[models.Shop](ctx, m.shops, bson.M{}, opts)
}

func (m *mongoStore) ShopsByIDs(ctx context.Context, ids []identity.ID) ([]models.Shop, error) {
	if len(ids) == 0 {
		return []models.Shop{}, nil
	}
	return db.FindAndDecode[models.Shop](ctx, m.shops, bson.M{"_id": identity.In(ids...)})
}

func (m *mongoStore) ProductsByShop(ctx context.Context, shopID identity.ID) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	return db.FindAndDecode[models.Product](ctx, m.products, bson.M{"shop_id": identity.In(shopID)}, opts)
}

func (m *mongoStore) ProductsByIDs(ctx context.Context, ids []identity.ID) (map[identity.ID]*models.Product, error) {
	out := make(map[identity.ID]*models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	products, err := db.FindAndDecode[models.Product](ctx, m.products, bson.M{"_id": identity.In(ids...)})
	if err != nil {
		return nil, err
	}
	for i := range products {
		out[products[i].ID] = &products[i]
	}
	return out, nil
}

func (m *mongoStore) CreateShop(ctx context.Context, shop *models.Shop) error {
	if shop.ID.IsZero() {
		shop.ID = identity.New()
	}
	if _, err := m.shops.InsertOne(ctx, shop); err != nil {
		return fmt.Errorf("failed to insert shop: %w", err)
	}
	return nil
}

func (m *mongoStore) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.ID = identity.New()
	}
	if product.Variants == nil {
		product.Variants = []models.Variant{}
	}
	if _, err := m.products.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}
