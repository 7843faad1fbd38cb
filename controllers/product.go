package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopkart/models"
	"shopkart/utils"
)

// ProductController handles catalog requests.
type ProductController struct {
	Collection *mongo.Collection
}

// NewProductController creates a new ProductController.
func NewProductController(db *mongo.Database) *ProductController {
	return &ProductController{Collection: db.Collection("products")}
}

// CreateProduct handles adding a new product (admin only).
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.RespondError(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}
	if err := validateProduct(&product); err != nil {
		utils.RespondError(w, err)
		return
	}
	if product.Slug == "" {
		product.Slug = slugify(product.Name)
	}
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := pc.Collection.InsertOne(ctx, product); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusCreated, utils.M{"product": product})
}

// GetProducts lists the catalog with pagination and filters: category,
// min_price/max_price (on MRP) and a text search on the name.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := bson.M{}
	if category := query.Get("category"); category != "" {
		filter["category"] = category
	}
	if search := query.Get("search"); search != "" {
		filter["name"] = bson.M{"$regex": search, "$options": "i"}
	}
	price := bson.M{}
	if min, err := strconv.ParseFloat(query.Get("min_price"), 64); err == nil {
		price["$gte"] = min
	}
	if max, err := strconv.ParseFloat(query.Get("max_price"), 64); err == nil {
		price["$lte"] = max
	}
	if len(price) > 0 {
		filter["mrp"] = price
	}

	page := utils.ParsePage(query)
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	cursor, err := pc.Collection.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(page.Limit()))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"products": products,
		"page":     page.Number,
	})
}

// GetProduct retrieves a single product by hex id, or by slug when the path
// segment is not a valid object id.
func (pc *ProductController) GetProduct(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["id"]
	filter := bson.M{"slug": key}
	if id, err := primitive.ObjectIDFromHex(key); err == nil {
		filter = bson.M{"_id": id}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var product models.Product
	err := pc.Collection.FindOne(ctx, filter).Decode(&product)
	if err == mongo.ErrNoDocuments {
		utils.RespondError(w, fmt.Errorf("product %s: %w", key, models.ErrNotFound))
		return
	}
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"product": product})
}

// UpdateProduct handles updating a product (admin only).
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathObjectID(r, "id")
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.RespondError(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}
	if err := validateProduct(&product); err != nil {
		utils.RespondError(w, err)
		return
	}

	update := bson.M{"$set": bson.M{
		"name":             product.Name,
		"slug":             product.Slug,
		"description":      product.Description,
		"category":         product.Category,
		"mrp":              product.MRP,
		"discount_percent": product.DiscountPercent,
		"stock":            product.Stock,
		"images":           product.Images,
	}}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := pc.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondError(w, fmt.Errorf("product %s: %w", id.Hex(), models.ErrNotFound))
		return
	}
	utils.RespondSuccess(w, http.StatusOK, nil)
}

// DeleteProduct handles deleting a product (admin only).
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathObjectID(r, "id")
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := pc.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondError(w, fmt.Errorf("product %s: %w", id.Hex(), models.ErrNotFound))
		return
	}
	utils.RespondSuccess(w, http.StatusOK, nil)
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", models.ErrValidation)
	}
	if p.MRP <= 0 {
		return fmt.Errorf("%w: mrp must be positive", models.ErrValidation)
	}
	if p.DiscountPercent < 0 || p.DiscountPercent > 100 {
		return fmt.Errorf("%w: discount must be between 0 and 100", models.ErrValidation)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: stock must be non-negative", models.ErrValidation)
	}
	return nil
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastDash := false
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
