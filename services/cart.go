// Package services holds the cart pricing engine and the order placement
// workflow. Services own the domain rules; storage and the payment provider
// sit behind small interfaces so the rules are testable in isolation.
package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/models"
)

// CatalogReader supplies live product snapshots for pricing and pruning.
type CatalogReader interface {
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

// CartStore persists carts keyed by owning customer.
type CartStore interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
}

// CartService owns a customer's pending line items. Every mutation reprices
// the cart from the live catalog before persisting, so the cart is never a
// long-lived price quote: checkout snapshots prices into the order instead.
type CartService struct {
	carts   CartStore
	catalog CatalogReader
	locks   *keyedMutex
	log     *logrus.Logger
}

// NewCartService builds the cart engine.
func NewCartService(carts CartStore, catalog CatalogReader, log *logrus.Logger) *CartService {
	return &CartService{
		carts:   carts,
		catalog: catalog,
		locks:   newKeyedMutex(),
		log:     log,
	}
}

// AddItem puts quantity units of a product into the customer's cart,
// creating the cart if none exists. The cumulative quantity (existing plus
// requested) is validated against live stock, not just the increment.
func (s *CartService) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", models.ErrValidation)
	}

	unlock := s.locks.Lock(userID.Hex())
	defer unlock()

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.loadOrNew(ctx, userID)
	if err != nil {
		return nil, err
	}

	current := 0
	if existing := cart.FindItem(productID); existing != nil {
		current = existing.Quantity
	}
	if product.Stock < current+quantity {
		return nil, fmt.Errorf("%w for product %q", models.ErrInsufficientStock, product.Name)
	}

	if existing := cart.FindItem(productID); existing != nil {
		existing.Quantity += quantity
	} else {
		cart.Items = append(cart.Items, models.CartLineItem{
			ProductID: productID,
			Quantity:  quantity,
		})
	}
	return s.recompute(ctx, cart)
}

// ReduceItem decrements the matching line item's quantity by one, removing
// the line entirely at the zero boundary.
func (s *CartService) ReduceItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	unlock := s.locks.Lock(userID.Hex())
	defer unlock()

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := cart.FindItem(productID)
	if item == nil {
		return nil, fmt.Errorf("product %s not in cart: %w", productID.Hex(), models.ErrNotFound)
	}
	item.Quantity--
	if item.Quantity <= 0 {
		cart.Items = removeItem(cart.Items, productID)
	}
	return s.recompute(ctx, cart)
}

// RemoveItem deletes the matching line item outright.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) (*models.Cart, error) {
	unlock := s.locks.Lock(userID.Hex())
	defer unlock()

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart.FindItem(productID) == nil {
		return nil, fmt.Errorf("product %s not in cart: %w", productID.Hex(), models.ErrNotFound)
	}
	cart.Items = removeItem(cart.Items, productID)
	return s.recompute(ctx, cart)
}

// Clear empties all line items, creating the cart lazily when absent.
func (s *CartService) Clear(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	unlock := s.locks.Lock(userID.Hex())
	defer unlock()

	cart, err := s.loadOrNew(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.Items = nil
	return s.recompute(ctx, cart)
}

// GetCart returns the customer's cart repriced against the live catalog,
// creating an empty cart for customers who have none.
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	unlock := s.locks.Lock(userID.Hex())
	defer unlock()

	cart, err := s.loadOrNew(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.recompute(ctx, cart)
}

func (s *CartService) loadOrNew(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return &models.Cart{UserID: userID}, nil
	}
	return cart, err
}

// recompute prices every line from the live catalog, prunes lines whose
// product is gone or out of stock, derives the totals and persists the
// result. Line items never carry authoritative prices of their own.
func (s *CartService) recompute(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	var items []models.CartLineItem
	totalQuantity := 0
	totalPrice := 0.0

	for _, item := range cart.Items {
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if errors.Is(err, models.ErrNotFound) {
			continue // stale reference, drop silently
		}
		if err != nil {
			return nil, err
		}
		if product.Stock <= 0 {
			continue
		}

		item.Name = product.Name
		item.Slug = product.Slug
		item.Image = product.PrimaryImage()
		item.UnitPrice = product.EffectivePrice()
		item.LineTotal = math.Round(item.UnitPrice * float64(item.Quantity))

		items = append(items, item)
		totalQuantity += item.Quantity
		totalPrice += item.LineTotal
	}

	cart.Items = items
	cart.TotalQuantity = totalQuantity
	cart.TotalPrice = totalPrice
	cart.UpdatedAt = time.Now().UTC()

	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func removeItem(items []models.CartLineItem, productID primitive.ObjectID) []models.CartLineItem {
	out := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}
