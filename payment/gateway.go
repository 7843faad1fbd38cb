// Package payment wraps the hosted-checkout provider behind a small
// interface so order placement can be exercised without network calls.
package payment

import "context"

// LineItem is one product line handed to the provider when opening a session.
// UnitAmount is in the currency's minor unit (paise/cents).
type LineItem struct {
	Name       string
	Image      string
	UnitAmount int64
	Quantity   int64
}

// Session payment statuses as reported by the provider.
const (
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
)

// Session is a hosted checkout session.
type Session struct {
	ID            string
	URL           string
	PaymentStatus string
}

// Paid reports whether the session has been paid in full.
func (s *Session) Paid() bool {
	return s.PaymentStatus == StatusPaid
}

// Event types the order workflow reacts to. Anything else is acknowledged
// without a state change.
const (
	EventSessionCompleted = "checkout.session.completed"
	EventSessionExpired   = "checkout.session.expired"
)

// Event is a provider webhook notification after signature verification.
type Event struct {
	Type      string
	SessionID string
}

// Gateway is the payment-provider surface consumed by the order workflow.
type Gateway interface {
	CreateSession(ctx context.Context, items []LineItem, successURL, cancelURL, customerEmail string) (*Session, error)
	RetrieveSession(ctx context.Context, id string) (*Session, error)
	VerifyWebhook(payload []byte, sigHeader string) (*Event, error)
}
