package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartLineItem is one product-quantity pairing in a cart. The display and
// pricing fields are resolved from the catalog on every recompute; they are
// never the pricing authority and go stale the moment the catalog changes.
type CartLineItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Slug      string             `bson:"slug" json:"slug"`
	UnitPrice float64            `bson:"unit_price" json:"unit_price"`
	LineTotal float64            `bson:"line_total" json:"line_total"`
}

// Cart is a customer's pending line items, one entry per distinct product.
// TotalQuantity and TotalPrice are derived sums, recomputed on every read and
// mutation; they are persisted only as a convenience for inspection.
type Cart struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items         []CartLineItem     `bson:"items" json:"items"`
	TotalQuantity int                `bson:"total_quantity" json:"total_quantity"`
	TotalPrice    float64            `bson:"total_price" json:"total_price"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// FindItem returns a pointer into Items for the given product, or nil.
func (c *Cart) FindItem(productID primitive.ObjectID) *CartLineItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
