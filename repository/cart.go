package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopkart/models"
)

// MongoCartStore persists carts keyed by owning customer. The carts
// collection carries a unique index on user_id so each customer owns at most
// one cart.
type MongoCartStore struct {
	carts *mongo.Collection
}

// NewMongoCartStore builds a cart store and ensures the owner index.
func NewMongoCartStore(ctx context.Context, db *mongo.Database) (*MongoCartStore, error) {
	carts := db.Collection("carts")
	_, err := carts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create cart index: %w", err)
	}
	return &MongoCartStore{carts: carts}, nil
}

// FindByUser loads a customer's cart.
func (s *MongoCartStore) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := s.carts.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("cart for user %s: %w", userID.Hex(), models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Save upserts the full cart document by owner.
func (s *MongoCartStore) Save(ctx context.Context, cart *models.Cart) error {
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	_, err := s.carts.ReplaceOne(ctx, bson.M{"user_id": cart.UserID}, cart,
		options.Replace().SetUpsert(true))
	return err
}
