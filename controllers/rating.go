package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopkart/middleware"
	"shopkart/models"
	"shopkart/utils"
)

// RatingController handles product reviews. One rating per customer-product;
// the product's rating summary is refreshed on every write.
type RatingController struct {
	Ratings  *mongo.Collection
	Products *mongo.Collection
	Users    *mongo.Collection
}

// NewRatingController creates a new RatingController.
func NewRatingController(db *mongo.Database) *RatingController {
	return &RatingController{
		Ratings:  db.Collection("ratings"),
		Products: db.Collection("products"),
		Users:    db.Collection("users"),
	}
}

// RateProduct records or replaces the customer's rating of a product.
func (rc *RatingController) RateProduct(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.CustomerID(r)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	productID, err := pathObjectID(r, "id")
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	var req struct {
		Stars   int    `json:"stars"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}
	if req.Stars < 1 || req.Stars > 5 {
		utils.RespondError(w, fmt.Errorf("%w: stars must be between 1 and 5", models.ErrValidation))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := rc.Products.FindOne(ctx, bson.M{"_id": productID}).Err(); err != nil {
		utils.RespondError(w, fmt.Errorf("product %s: %w", productID.Hex(), models.ErrNotFound))
		return
	}

	var user models.User
	if err := rc.Users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.RespondError(w, fmt.Errorf("user: %w", models.ErrNotFound))
		return
	}

	_, err = rc.Ratings.UpdateOne(ctx,
		bson.M{"product_id": productID, "user_id": userID},
		bson.M{"$set": bson.M{
			"user_name":  user.Name,
			"stars":      req.Stars,
			"comment":    req.Comment,
			"created_at": time.Now().UTC(),
		}},
		options.Update().SetUpsert(true))
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	if err := rc.refreshSummary(ctx, productID); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"message": "rating recorded"})
}

// ListRatings returns a product's ratings, newest first.
func (rc *RatingController) ListRatings(w http.ResponseWriter, r *http.Request) {
	productID, err := pathObjectID(r, "id")
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	page := utils.ParsePage(r.URL.Query())
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := rc.Ratings.Find(ctx, bson.M{"product_id": productID}, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(page.Limit()))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	defer cursor.Close(ctx)

	var ratings []models.Rating
	if err := cursor.All(ctx, &ratings); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"ratings": ratings})
}

// refreshSummary recomputes the product's average and count from the ratings
// collection and stores the result on the product document.
func (rc *RatingController) refreshSummary(ctx context.Context, productID primitive.ObjectID) error {
	cursor, err := rc.Ratings.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"product_id": productID}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$stars"},
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	summary := struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}{}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&summary); err != nil {
			return err
		}
	}

	_, err = rc.Products.UpdateOne(ctx, bson.M{"_id": productID}, bson.M{"$set": bson.M{
		"average_rating": summary.Avg,
		"rating_count":   summary.Count,
	}})
	return err
}
