package cart

import (
	"context"
	"fmt"

	"dukaan/db"
	"dukaan/identity"
	"dukaan/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore relies on the unique_merge_key index from db.EnsureIndexes.
func NewMongoStore(d *db.DB) Store {
	return &mongoStore{coll: d.WishlistCollection}
}

func (m *mongoStore) Increment(ctx context.Context, line models.CartLine) error {
	filter := bson.M{
		"user_id":     identity.In(line.UserID),
		"product_id":  identity.In(line.ProductID),
		"variant_key": line.VariantKey,
	}
	onInsert := bson.M{
		"_id":         identity.New(),
		"user_id":     line.UserID,
		"product_id":  line.ProductID,
		"shop_id":     line.ShopID,
		"variant_key": line.VariantKey,
		"created_at":  line.CreatedAt,
	}
	if line.Variant != nil {
		onInsert["selected_variant"] = line.Variant
	}
	update := bson.M{
		"$inc":         bson.M{"quantity": line.Quantity},
		"$setOnInsert": onInsert,
	}
	opts := options.Update().SetUpsert(true)

	_, err := m.coll.UpdateOne(ctx, filter, update, opts)
	if db.IsDuplicateKeyError(err) {
		// Lost the insert race for this merge key; the winner's line now
		// exists, so the retry is a plain increment.
		_, err = m.coll.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to upsert wishlist line: %w", err)
	}
	return nil
}

func (m *mongoStore) ProductLines(ctx context.Context, userID, productID identity.ID) ([]models.CartLine, error) {
	filter := bson.M{
		"user_id":    identity.In(userID),
		"product_id": identity.In(productID),
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return db.FindAndDecode[models.CartLine](ctx, m.coll, filter, opts)
}

func (m *mongoStore) SetQuantity(ctx context.Context, userID, lineID identity.ID, quantity int) (bool, error) {
	filter := bson.M{"_id": identity.In(lineID), "user_id": identity.In(userID)}
	res, err := m.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"quantity": quantity}})
	if err != nil {
		return false, fmt.Errorf("failed to update quantity: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (m *mongoStore) Lines(ctx context.Context, userID identity.ID) ([]models.CartLine, error) {
	return m.Select(ctx, userID, "", nil)
}

func (m *mongoStore) Select(ctx context.Context, userID, shopID identity.ID, productIDs []identity.ID) ([]models.CartLine, error) {
	filter := bson.M{"user_id": identity.In(userID)}
	if !shopID.IsZero() {
		filter["shop_id"] = identity.In(shopID)
	}
	if len(productIDs) > 0 {
		filter["product_id"] = identity.In(productIDs...)
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return db.FindAndDecode[models.CartLine](ctx, m.coll, filter, opts)
}

func (m *mongoStore) DeleteLines(ctx context.Context, userID identity.ID, lineIDs []identity.ID) (int64, error) {
	if len(lineIDs) == 0 {
		return 0, nil
	}
	filter := bson.M{"_id": identity.In(lineIDs...), "user_id": identity.In(userID)}
	res, err := m.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete wishlist lines: %w", err)
	}
	return res.DeletedCount, nil
}

func (m *mongoStore) DeleteAll(ctx context.Context, userID identity.ID) (int64, error) {
	res, err := m.coll.DeleteMany(ctx, bson.M{"user_id": identity.In(userID)})
	if err != nil {
		return 0, fmt.Errorf("failed to clear wishlist: %w", err)
	}
	return res.DeletedCount, nil
}
