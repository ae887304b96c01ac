package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rahulnakum14/ecommerce-api-go/internal/domain"
)

type mongoCartRepository struct {
	collection *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepository{collection: db.Collection("carts")}
}

func (m *mongoCartRepository) FindByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	return &cart, nil
}

// SaveCart persists the aggregate. A zero Version means the cart did not
// exist at load time, so it is inserted at version 1; a duplicate-key
// failure there means a concurrent request created it first and is
// reported as a version conflict so the caller retries. Otherwise the
// replace matches on the loaded version, which is the compare of the CAS.
func (m *mongoCartRepository) SaveCart(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	now := time.Now()
	saved := *cart
	saved.UpdatedAt = now

	if cart.Version == 0 {
		saved.CreatedAt = now
		saved.Version = 1
		saved.ID = primitive.NewObjectID().Hex()

		if _, err := m.collection.InsertOne(ctx, insertDoc(&saved)); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrVersionConflict
			}
			return nil, fmt.Errorf("failed to insert cart: %w", err)
		}
		return &saved, nil
	}

	loadedVersion := cart.Version
	saved.Version = loadedVersion + 1

	filter := bson.M{"user_id": cart.UserID, "version": loadedVersion}
	update := bson.M{"$set": bson.M{
		"lines":       saved.Lines,
		"total_cents": saved.TotalCents,
		"version":     saved.Version,
		"updated_at":  saved.UpdatedAt,
	}}

	res, err := m.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrVersionConflict
	}

	return &saved, nil
}

func (m *mongoCartRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// insertDoc builds the first version of the cart document. The id is a
// hex string rather than a raw ObjectID so it round-trips through the
// cache serialization unchanged.
func insertDoc(cart *domain.Cart) bson.M {
	return bson.M{
		"_id":         cart.ID,
		"user_id":     cart.UserID,
		"lines":       cart.Lines,
		"total_cents": cart.TotalCents,
		"version":     cart.Version,
		"created_at":  cart.CreatedAt,
		"updated_at":  cart.UpdatedAt,
	}
}
