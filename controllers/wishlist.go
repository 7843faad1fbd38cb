package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopkart/middleware"
	"shopkart/models"
	"shopkart/utils"
)

// WishlistController handles the customer's saved-product set.
type WishlistController struct {
	Wishlists *mongo.Collection
	Products  *mongo.Collection
}

// NewWishlistController creates a new WishlistController.
func NewWishlistController(db *mongo.Database) *WishlistController {
	return &WishlistController{
		Wishlists: db.Collection("wishlists"),
		Products:  db.Collection("products"),
	}
}

// AddToWishlist saves a product for the customer.
func (wc *WishlistController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.CustomerID(r)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	var req cartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}
	productID, err := req.productID()
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := wc.Products.FindOne(ctx, bson.M{"_id": productID}).Err(); err != nil {
		utils.RespondError(w, fmt.Errorf("product %s: %w", productID.Hex(), models.ErrNotFound))
		return
	}

	_, err = wc.Wishlists.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$addToSet": bson.M{"product_ids": productID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"message": "added to wishlist"})
}

// RemoveFromWishlist drops a product from the customer's set.
func (wc *WishlistController) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.CustomerID(r)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	productID, err := pathObjectID(r, "productId")
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := wc.Wishlists.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$pull": bson.M{"product_ids": productID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondError(w, fmt.Errorf("wishlist: %w", models.ErrNotFound))
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"message": "removed from wishlist"})
}

// GetWishlist returns the saved products resolved against the live catalog.
// Products that were deleted or are out of stock are skipped, matching how
// the cart prunes stale references.
func (wc *WishlistController) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.CustomerID(r)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var wishlist models.Wishlist
	err = wc.Wishlists.FindOne(ctx, bson.M{"user_id": userID}).Decode(&wishlist)
	if err == mongo.ErrNoDocuments {
		utils.RespondSuccess(w, http.StatusOK, utils.M{"products": []models.Product{}})
		return
	}
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	products := []models.Product{}
	if len(wishlist.ProductIDs) > 0 {
		cursor, err := wc.Products.Find(ctx, bson.M{
			"_id":   bson.M{"$in": wishlist.ProductIDs},
			"stock": bson.M{"$gt": 0},
		})
		if err != nil {
			utils.RespondError(w, err)
			return
		}
		defer cursor.Close(ctx)
		if err := cursor.All(ctx, &products); err != nil {
			utils.RespondError(w, err)
			return
		}
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"products": products})
}
