package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/models"
	"shopkart/payment"
	"shopkart/utils"
)

// CartProvider supplies the priced cart feeding order placement.
type CartProvider interface {
	GetCart(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
}

// OrderStore persists orders and participates in the placement write.
type OrderStore interface {
	CreateAndClearCart(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	FindBySession(ctx context.Context, sessionID string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	List(ctx context.Context, status models.OrderStatus, page utils.Page) ([]models.Order, error)
}

// UserReader resolves customer accounts for notification mail.
type UserReader interface {
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// Mailer sends order notifications. All sends are best effort.
type Mailer interface {
	SendOrderConfirmationEmail(toEmail string, order *models.Order) error
	SendOrderStatusEmail(toEmail string, order *models.Order) error
}

// PlacementInput is the checkout command after boundary validation.
type PlacementInput struct {
	UserID        primitive.ObjectID
	CartID        string
	PaymentMethod string
	Email         string
	Address       models.Address
}

// PlacementResult is what the client needs to continue: a confirmation
// reference for pay-on-delivery, or a redirect URL for card payments.
type PlacementResult struct {
	Order       *models.Order
	Reference   string
	RedirectURL string
}

// OrderService converts priced carts into immutable orders and drives the
// order status machine.
type OrderService struct {
	carts      CartProvider
	orders     OrderStore
	users      UserReader
	gateway    payment.Gateway
	mail       Mailer
	successURL string
	cancelURL  string
	log        *logrus.Logger
}

// NewOrderService builds the placement workflow.
func NewOrderService(carts CartProvider, orders OrderStore, users UserReader, gateway payment.Gateway, mail Mailer, successURL, cancelURL string, log *logrus.Logger) *OrderService {
	return &OrderService{
		carts:      carts,
		orders:     orders,
		users:      users,
		gateway:    gateway,
		mail:       mail,
		successURL: successURL,
		cancelURL:  cancelURL,
		log:        log,
	}
}

// PlaceOrder snapshots the customer's priced cart into an immutable order.
// Pay-on-delivery orders are placed immediately; card orders open a hosted
// payment session and stay pending until the session resolves. The cart is
// cleared only when the order write succeeds, so a failed placement always
// leaves the cart intact for retry.
func (s *OrderService) PlaceOrder(ctx context.Context, in PlacementInput) (*PlacementResult, error) {
	if in.CartID == "" {
		return nil, fmt.Errorf("%w: cart id is required", models.ErrValidation)
	}
	cartID, err := primitive.ObjectIDFromHex(in.CartID)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed cart id", models.ErrValidation)
	}

	method := strings.ToLower(in.PaymentMethod)
	if method != models.PaymentCOD && method != models.PaymentCard {
		return nil, fmt.Errorf("%w: unknown payment method %q", models.ErrValidation, in.PaymentMethod)
	}

	cart, err := s.carts.GetCart(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if cart.ID != cartID {
		return nil, fmt.Errorf("cart %s: %w", in.CartID, models.ErrNotFound)
	}
	if cart.TotalQuantity == 0 {
		return nil, models.ErrEmptyCart
	}

	now := time.Now().UTC()
	order := &models.Order{
		OrderID:       models.NewOrderID(now),
		UserID:        in.UserID,
		Items:         snapshotItems(cart),
		TotalQuantity: cart.TotalQuantity,
		TotalPrice:    cart.TotalPrice,
		PaymentMethod: method,
		Address:       in.Address,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	result := &PlacementResult{Order: order}
	switch method {
	case models.PaymentCOD:
		order.Status = models.OrderPlaced
		result.Reference = order.OrderID
	case models.PaymentCard:
		sess, err := s.gateway.CreateSession(ctx, gatewayItems(order.Items),
			s.successURL+"?sessionId={CHECKOUT_SESSION_ID}", s.cancelURL, in.Email)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrGateway, err)
		}
		order.Status = models.OrderPending
		order.SessionID = sess.ID
		result.RedirectURL = sess.URL
	}

	if err := s.orders.CreateAndClearCart(ctx, order); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrOrderCreation, err)
	}

	if order.Status == models.OrderPlaced {
		s.notifyConfirmation(in.Email, order)
	}
	return result, nil
}

// CheckSession polls the gateway for a session's payment status and settles
// the linked order: paid sessions place it, unpaid ones fail it. Repeated
// calls on an already placed order are no-ops.
func (s *OrderService) CheckSession(ctx context.Context, sessionID string) (*models.Order, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", models.ErrValidation)
	}
	order, err := s.orders.FindBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderPlaced {
		return order, nil
	}

	sess, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGateway, err)
	}

	next := models.OrderFailed
	if sess.Paid() {
		next = models.OrderPlaced
	}
	return s.settleSession(ctx, order, next)
}

// HandleWebhook processes the gateway's asynchronous notification. The
// payload must carry a valid signature; unrecognized event types are
// acknowledged without a state change.
func (s *OrderService) HandleWebhook(ctx context.Context, body []byte, sigHeader string) error {
	event, err := s.gateway.VerifyWebhook(body, sigHeader)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	switch event.Type {
	case payment.EventSessionCompleted:
		return s.settleSessionByID(ctx, event.SessionID, models.OrderPlaced)
	case payment.EventSessionExpired:
		return s.settleSessionByID(ctx, event.SessionID, models.OrderFailed)
	default:
		s.log.WithField("event_type", event.Type).Debug("ignoring webhook event")
		return nil
	}
}

func (s *OrderService) settleSessionByID(ctx context.Context, sessionID string, next models.OrderStatus) error {
	order, err := s.orders.FindBySession(ctx, sessionID)
	if err != nil {
		return err
	}
	_, err = s.settleSession(ctx, order, next)
	return err
}

// settleSession transitions a session-backed order toward its payment
// outcome. An order already in the target state is left untouched; the poll
// and webhook paths can race, both converge on the same state.
func (s *OrderService) settleSession(ctx context.Context, order *models.Order, next models.OrderStatus) (*models.Order, error) {
	if order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransitionTo(next) {
		// A late or contradictory notification for an order that already
		// progressed; acknowledge without touching it.
		s.log.WithFields(logrus.Fields{
			"order_id": order.OrderID,
			"status":   order.Status,
			"target":   next,
		}).Info("ignoring session settlement for progressed order")
		return order, nil
	}
	if err := s.orders.UpdateStatus(ctx, order.ID, next); err != nil {
		return nil, err
	}
	order.Status = next
	order.UpdatedAt = time.Now().UTC()

	if next == models.OrderPlaced {
		s.notifyConfirmation("", order)
	}
	return order, nil
}

// Cancel performs the customer-initiated cancellation. Shipped orders and
// beyond are past the cancellation window.
func (s *OrderService) Cancel(ctx context.Context, userID, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order %s: %w", orderID.Hex(), models.ErrUnauthorized)
	}
	if order.Status == models.OrderCancelled {
		return nil, models.ErrAlreadyInState
	}
	if !order.Status.Cancellable() {
		return nil, fmt.Errorf("%w: cannot cancel %s order", models.ErrInvalidTransition, order.Status)
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, models.OrderCancelled); err != nil {
		return nil, err
	}
	order.Status = models.OrderCancelled
	s.notifyStatus(order)
	return order, nil
}

// UpdateStatus performs an admin-initiated transition. Unlike the historical
// free-form overwrite, the target must be a legal edge in the transition
// table.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, next)
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == next {
		return nil, models.ErrAlreadyInState
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, order.Status, next)
	}

	if err := s.orders.UpdateStatus(ctx, order.ID, next); err != nil {
		return nil, err
	}
	order.Status = next
	s.notifyStatus(order)
	return order, nil
}

// Get returns an order to its owner.
func (s *OrderService) Get(ctx context.Context, userID, orderID primitive.ObjectID) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order %s: %w", orderID.Hex(), models.ErrUnauthorized)
	}
	return order, nil
}

// ListByUser returns a customer's order history.
func (s *OrderService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// List returns orders for the admin surface.
func (s *OrderService) List(ctx context.Context, status models.OrderStatus, page utils.Page) ([]models.Order, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrValidation, status)
	}
	return s.orders.List(ctx, status, page)
}

// notifyConfirmation sends the order confirmation without blocking the
// response. When no email was supplied at checkout the account email is
// looked up instead.
func (s *OrderService) notifyConfirmation(email string, order *models.Order) {
	go func() {
		to := email
		if to == "" {
			to = s.lookupEmail(order.UserID)
		}
		if to == "" {
			return
		}
		if err := s.mail.SendOrderConfirmationEmail(to, order); err != nil {
			s.log.WithError(err).WithField("order_id", order.OrderID).
				Warn("failed to send order confirmation email")
		}
	}()
}

func (s *OrderService) notifyStatus(order *models.Order) {
	go func() {
		to := s.lookupEmail(order.UserID)
		if to == "" {
			return
		}
		if err := s.mail.SendOrderStatusEmail(to, order); err != nil {
			s.log.WithError(err).WithField("order_id", order.OrderID).
				Warn("failed to send order status email")
		}
	}()
}

func (s *OrderService) lookupEmail(userID primitive.ObjectID) string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.log.WithError(err).Warn("failed to resolve user email")
		}
		return ""
	}
	return user.Email
}

// snapshotItems freezes the cart's priced lines into order items. The copies
// are immune to later catalog edits.
func snapshotItems(cart *models.Cart) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			Slug:      line.Slug,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		})
	}
	return items
}

// gatewayItems converts frozen order items into provider line items, with
// unit amounts in the currency's minor unit.
func gatewayItems(items []models.OrderItem) []payment.LineItem {
	out := make([]payment.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, payment.LineItem{
			Name:       item.Name,
			Image:      item.Image,
			UnitAmount: int64(math.Round(item.UnitPrice * 100)),
			Quantity:   int64(item.Quantity),
		})
	}
	return out
}
