package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a catalog entry. MRP is the pre-discount listed price;
// the price a customer actually pays is always derived through EffectivePrice.
type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name            string             `bson:"name" json:"name"`
	Slug            string             `bson:"slug" json:"slug"`
	Description     string             `bson:"description" json:"description"`
	Category        string             `bson:"category" json:"category"`
	MRP             float64            `bson:"mrp" json:"mrp"`
	DiscountPercent float64            `bson:"discount_percent" json:"discount_percent"`
	Stock           int                `bson:"stock" json:"stock"`
	Images          []string           `bson:"images" json:"images"`
	AverageRating   float64            `bson:"average_rating" json:"average_rating"`
	RatingCount     int                `bson:"rating_count" json:"rating_count"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

// EffectivePrice is the MRP with the discount applied, rounded on the
// discount amount so a 10% discount on 999 comes off as a whole 100.
func (p *Product) EffectivePrice() float64 {
	return p.MRP - math.Round(p.MRP*p.DiscountPercent/100)
}

// PrimaryImage returns the first catalog image, or empty when none exist.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
