// Package repository holds the MongoDB-backed stores consumed by the cart
// and order services. Each store wraps one or two collections and maps
// driver errors into the domain taxonomy.
package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"shopkart/models"
)

// MongoCatalog reads product snapshots for pricing and pruning.
type MongoCatalog struct {
	products *mongo.Collection
}

// NewMongoCatalog builds a catalog reader over the products collection.
func NewMongoCatalog(db *mongo.Database) *MongoCatalog {
	return &MongoCatalog{products: db.Collection("products")}
}

// GetProduct fetches a product by id.
func (c *MongoCatalog) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := c.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("product %s: %w", id.Hex(), models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
