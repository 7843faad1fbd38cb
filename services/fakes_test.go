package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/models"
	"shopkart/payment"
	"shopkart/utils"
)

// In-memory doubles for the store and gateway interfaces. They are mutex
// guarded because the services fire notification goroutines.

type fakeCatalog struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]models.Product
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[primitive.ObjectID]models.Product{}}
}

func (f *fakeCatalog) put(p models.Product) primitive.ObjectID {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	f.products[p.ID] = p
	return p.ID
}

func (f *fakeCatalog) setStock(id primitive.ObjectID, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	p.Stock = stock
	f.products[id] = p
}

func (f *fakeCatalog) setMRP(id primitive.ObjectID, mrp float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	p.MRP = mrp
	f.products[id] = p
}

func (f *fakeCatalog) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id.Hex(), models.ErrNotFound)
	}
	copied := p
	return &copied, nil
}

type fakeCartStore struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]models.Cart
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[primitive.ObjectID]models.Cart{}}
}

func (f *fakeCartStore) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cart, ok := f.carts[userID]
	if !ok {
		return nil, fmt.Errorf("cart for user %s: %w", userID.Hex(), models.ErrNotFound)
	}
	copied := cart
	copied.Items = append([]models.CartLineItem(nil), cart.Items...)
	return &copied, nil
}

func (f *fakeCartStore) Save(ctx context.Context, cart *models.Cart) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cart.ID.IsZero() {
		cart.ID = primitive.NewObjectID()
	}
	saved := *cart
	saved.Items = append([]models.CartLineItem(nil), cart.Items...)
	f.carts[cart.UserID] = saved
	return nil
}

type fakeOrderStore struct {
	mu            sync.Mutex
	orders        map[primitive.ObjectID]models.Order
	carts         *fakeCartStore
	statusUpdates int
	failCreate    bool
}

func newFakeOrderStore(carts *fakeCartStore) *fakeOrderStore {
	return &fakeOrderStore{orders: map[primitive.ObjectID]models.Order{}, carts: carts}
}

func (f *fakeOrderStore) CreateAndClearCart(ctx context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return fmt.Errorf("insert order: store unavailable")
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	f.orders[order.ID] = *order

	f.carts.mu.Lock()
	cart := f.carts.carts[order.UserID]
	cart.Items = nil
	cart.TotalQuantity = 0
	cart.TotalPrice = 0
	f.carts.carts[order.UserID] = cart
	f.carts.mu.Unlock()
	return nil
}

func (f *fakeOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id.Hex(), models.ErrNotFound)
	}
	copied := order
	return &copied, nil
}

func (f *fakeOrderStore) FindBySession(ctx context.Context, sessionID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.SessionID == sessionID {
			copied := order
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("order for session %s: %w", sessionID, models.ErrNotFound)
}

func (f *fakeOrderStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id.Hex(), models.ErrNotFound)
	}
	order.Status = status
	f.orders[id] = order
	f.statusUpdates++
	return nil
}

func (f *fakeOrderStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, order := range f.orders {
		if order.UserID == userID {
			out = append(out, order)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) List(ctx context.Context, status models.OrderStatus, page utils.Page) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Order
	for _, order := range f.orders {
		if status == "" || order.Status == status {
			out = append(out, order)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusUpdates
}

type fakeGateway struct {
	mu       sync.Mutex
	sessions map[string]*payment.Session
	nextID   int
	failNext bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{sessions: map[string]*payment.Session{}}
}

func (f *fakeGateway) CreateSession(ctx context.Context, items []payment.LineItem, successURL, cancelURL, customerEmail string) (*payment.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return nil, fmt.Errorf("gateway unreachable")
	}
	f.nextID++
	sess := &payment.Session{
		ID:            fmt.Sprintf("cs_test_%d", f.nextID),
		URL:           fmt.Sprintf("https://checkout.example/%d", f.nextID),
		PaymentStatus: payment.StatusUnpaid,
	}
	f.sessions[sess.ID] = sess
	return sess, nil
}

func (f *fakeGateway) RetrieveSession(ctx context.Context, id string) (*payment.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such session %s", id)
	}
	copied := *sess
	return &copied, nil
}

func (f *fakeGateway) markPaid(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[id].PaymentStatus = payment.StatusPaid
}

// VerifyWebhook accepts payloads of the form {"type":..., "session_id":...}
// when the signature header is "valid".
func (f *fakeGateway) VerifyWebhook(body []byte, sigHeader string) (*payment.Event, error) {
	if sigHeader != "valid" {
		return nil, fmt.Errorf("bad signature")
	}
	var event payment.Event
	if err := json.Unmarshal(body, &struct {
		Type      *string `json:"type"`
		SessionID *string `json:"session_id"`
	}{&event.Type, &event.SessionID}); err != nil {
		return nil, err
	}
	return &event, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[primitive.ObjectID]models.User{}}
}

func (f *fakeUsers) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), models.ErrNotFound)
	}
	copied := user
	return &copied, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent int
}

func (f *fakeMailer) SendOrderConfirmationEmail(to string, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
	return nil
}

func (f *fakeMailer) SendOrderStatusEmail(to string, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent++
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}
