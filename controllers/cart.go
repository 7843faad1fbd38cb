package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/middleware"
	"shopkart/models"
	"shopkart/services"
	"shopkart/utils"
)

// CartController handles cart-related requests.
type CartController struct {
	carts *services.CartService
}

// NewCartController creates a new CartController.
func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (req *cartItemRequest) productID() (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed product id", models.ErrValidation)
	}
	return id, nil
}

// AddToCart adds a product to the customer's cart.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
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

	cart, err := cc.carts.AddItem(ctx, userID, productID, req.Quantity)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"cart": cart})
}

// ReduceFromCart decrements a line item's quantity by one.
func (cc *CartController) ReduceFromCart(w http.ResponseWriter, r *http.Request) {
	cc.mutate(w, r, cc.carts.ReduceItem)
}

// RemoveFromCart deletes a line item outright.
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	cc.mutate(w, r, cc.carts.RemoveItem)
}

func (cc *CartController) mutate(w http.ResponseWriter, r *http.Request, op func(context.Context, primitive.ObjectID, primitive.ObjectID) (*models.Cart, error)) {
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

	cart, err := op(ctx, userID, productID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"cart": cart})
}

// ClearCart empties the customer's cart.
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.CustomerID(r)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cart, err := cc.carts.Clear(ctx, userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"cart": cart})
}

// GetCart retrieves the customer's cart, repriced against the live catalog.
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.CustomerID(r)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cart, err := cc.carts.GetCart(ctx, userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"cart": cart})
}
