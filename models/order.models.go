package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderStatus describes the lifecycle of an order.
type OrderStatus string

const (
	OrderPending           OrderStatus = "pending"
	OrderPlaced            OrderStatus = "placed"
	OrderFailed            OrderStatus = "failed"
	OrderCancelled         OrderStatus = "cancelled"
	OrderShipped           OrderStatus = "shipped"
	OrderDelivered         OrderStatus = "delivered"
	OrderReturnRequested   OrderStatus = "return_requested"
	OrderReturned          OrderStatus = "returned"
	OrderRefunded          OrderStatus = "refunded"
	OrderExchangeRequested OrderStatus = "exchange_requested"
	OrderExchanged         OrderStatus = "exchanged"
)

// Payment methods accepted at checkout.
const (
	PaymentCOD  = "cod"  // pay on delivery, order is placed immediately
	PaymentCard = "card" // hosted payment session, order stays pending until paid
)

// orderTransitions is the table of legal status edges. Admin updates and
// customer cancellations alike must follow an edge in this table; failed
// keeps an edge back to placed because a late webhook can still confirm a
// session that an earlier poll marked failed.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:           {OrderPlaced, OrderFailed, OrderCancelled},
	OrderPlaced:            {OrderShipped, OrderCancelled},
	OrderFailed:            {OrderPlaced, OrderCancelled},
	OrderShipped:           {OrderDelivered},
	OrderDelivered:         {OrderReturnRequested, OrderExchangeRequested},
	OrderReturnRequested:   {OrderReturned, OrderDelivered},
	OrderReturned:          {OrderRefunded},
	OrderExchangeRequested: {OrderExchanged, OrderDelivered},
	OrderCancelled:         {},
	OrderRefunded:          {},
	OrderExchanged:         {},
}

// Valid reports whether s is a member of the status enumeration.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether s -> next is a legal edge.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, t := range orderTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s OrderStatus) Terminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// Cancellable reports whether a customer may still cancel from s. Once an
// order has shipped the cancellation window is closed.
func (s OrderStatus) Cancellable() bool {
	return s == OrderPending || s == OrderPlaced
}

// OrderItem is a frozen copy of a product at order-creation time. Later
// catalog edits never alter it.
type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Name      string             `bson:"name" json:"name"`
	Image     string             `bson:"image" json:"image"`
	Slug      string             `bson:"slug" json:"slug"`
	UnitPrice float64            `bson:"unit_price" json:"unit_price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	LineTotal float64            `bson:"line_total" json:"line_total"`
}

// Order is created from a priced cart at checkout. Everything except Status
// is immutable once written; SessionID is set once for card payments and
// thereafter stable.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderID       string             `bson:"order_id" json:"order_id"`
	UserID        primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items         []OrderItem        `bson:"items" json:"items"`
	TotalQuantity int                `bson:"total_quantity" json:"total_quantity"`
	TotalPrice    float64            `bson:"total_price" json:"total_price"`
	PaymentMethod string             `bson:"payment_method" json:"payment_method"`
	SessionID     string             `bson:"session_id,omitempty" json:"session_id,omitempty"`
	Status        OrderStatus        `bson:"status" json:"status"`
	Address       Address            `bson:"address" json:"address"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// NewOrderID builds the human-readable order reference. The timestamp prefix
// keeps references roughly monotonic; the random suffix disambiguates orders
// created within the same second.
func NewOrderID(now time.Time) string {
	suffix := now.UnixNano() % 10000
	if n, err := rand.Int(rand.Reader, big.NewInt(10000)); err == nil {
		suffix = n.Int64()
	}
	return fmt.Sprintf("ORD-%s-%04d", now.UTC().Format("20060102150405"), suffix)
}
