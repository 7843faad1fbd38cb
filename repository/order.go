package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopkart/models"
	"shopkart/utils"
)

// MongoOrderStore persists orders and owns the order half of the placement
// write: inserting the order and clearing the source cart.
type MongoOrderStore struct {
	client        *mongo.Client
	orders        *mongo.Collection
	carts         *mongo.Collection
	transactional bool
	log           *logrus.Logger
}

// NewMongoOrderStore builds an order store. With transactional set, the
// placement write runs in a session transaction (requires a replica set);
// otherwise order insert and cart clear are sequential writes and a failed
// clear is logged rather than rolled back.
func NewMongoOrderStore(client *mongo.Client, db *mongo.Database, transactional bool, log *logrus.Logger) *MongoOrderStore {
	return &MongoOrderStore{
		client:        client,
		orders:        db.Collection("orders"),
		carts:         db.Collection("carts"),
		transactional: transactional,
		log:           log,
	}
}

// CreateAndClearCart inserts the order and empties the owner's cart. The
// order insert failing always leaves the cart intact so the customer can
// retry checkout.
func (s *MongoOrderStore) CreateAndClearCart(ctx context.Context, order *models.Order) error {
	if s.transactional {
		return s.createInTransaction(ctx, order)
	}

	if _, err := s.orders.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	if err := s.clearCart(ctx, order.UserID); err != nil {
		// Order exists; the stale cart resolves on its next recompute.
		s.log.WithError(err).WithField("order_id", order.OrderID).
			Warn("order created but cart clear failed")
	}
	return nil
}

func (s *MongoOrderStore) createInTransaction(ctx context.Context, order *models.Order) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.orders.InsertOne(sc, order); err != nil {
			return nil, fmt.Errorf("insert order: %w", err)
		}
		if err := s.clearCart(sc, order.UserID); err != nil {
			return nil, fmt.Errorf("clear cart: %w", err)
		}
		return nil, nil
	})
	return err
}

func (s *MongoOrderStore) clearCart(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.carts.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{"$set": bson.M{
		"items":          []models.CartLineItem{},
		"total_quantity": 0,
		"total_price":    0.0,
		"updated_at":     time.Now().UTC(),
	}})
	return err
}

// FindByID loads an order by its Mongo id.
func (s *MongoOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("order %s: %w", id.Hex(), models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindBySession loads the order linked to a payment session.
func (s *MongoOrderStore) FindBySession(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := s.orders.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("order for session %s: %w", sessionID, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus overwrites the order's status. Legality of the transition is
// the service's responsibility; the store only checks existence.
func (s *MongoOrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error {
	result, err := s.orders.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("order %s: %w", id.Hex(), models.ErrNotFound)
	}
	return nil
}

// ListByUser returns a customer's orders, newest first.
func (s *MongoOrderStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	cursor, err := s.orders.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// List returns orders across all customers for the admin surface, newest
// first, optionally filtered by status.
func (s *MongoOrderStore) List(ctx context.Context, status models.OrderStatus, page utils.Page) ([]models.Order, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	cursor, err := s.orders.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(page.Limit()))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
