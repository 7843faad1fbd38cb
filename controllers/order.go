package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopkart/middleware"
	"shopkart/models"
	"shopkart/services"
	"shopkart/utils"
)

const maxWebhookBody = 64 << 10

// OrderController handles checkout, payment callbacks and order management.
type OrderController struct {
	orders *services.OrderService
}

// NewOrderController creates a new OrderController.
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

type checkoutRequest struct {
	PaymentMethod string         `json:"payment_method"`
	Email         string         `json:"email"`
	CartID        string         `json:"cart_id"`
	Address       models.Address `json:"address"`
}

// CreateCheckoutSession converts the customer's priced cart into an order.
// For card payments the response carries the gateway redirect URL; for
// pay-on-delivery it carries the order reference.
func (oc *OrderController) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.CustomerID(r)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := oc.orders.PlaceOrder(ctx, services.PlacementInput{
		UserID:        userID,
		CartID:        req.CartID,
		PaymentMethod: req.PaymentMethod,
		Email:         req.Email,
		Address:       req.Address,
	})
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	payload := utils.M{"order": result.Order}
	if result.RedirectURL != "" {
		payload["url"] = result.RedirectURL
	}
	if result.Reference != "" {
		payload["reference"] = result.Reference
	}
	utils.RespondSuccess(w, http.StatusCreated, payload)
}

// Webhook receives the payment gateway's asynchronous notifications. The
// route is unauthenticated; trust comes from the payload signature.
func (oc *OrderController) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		utils.RespondError(w, fmt.Errorf("%w: unreadable payload", models.ErrValidation))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := oc.orders.HandleWebhook(ctx, body, r.Header.Get("Stripe-Signature")); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, nil)
}

// CheckSession polls the gateway for a session's payment outcome.
func (oc *OrderController) CheckSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	order, err := oc.orders.CheckSession(ctx, r.URL.Query().Get("sessionId"))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"order": order,
		"paid":  order.Status == models.OrderPlaced,
	})
}

// CancelOrder performs the customer-initiated cancellation.
func (oc *OrderController) CancelOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.CustomerID(r)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	orderID, err := pathObjectID(r, "id")
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.orders.Cancel(ctx, userID, orderID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"order": order})
}

// GetOrders lists the authenticated customer's orders.
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.CustomerID(r)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orders, err := oc.orders.ListByUser(ctx, userID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"orders": orders})
}

// GetOrder returns one of the customer's orders.
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.CustomerID(r)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	orderID, err := pathObjectID(r, "id")
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.orders.Get(ctx, userID, orderID)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"order": order})
}

// ListOrders returns orders across customers for the admin surface.
func (oc *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	status := models.OrderStatus(r.URL.Query().Get("status"))
	orders, err := oc.orders.List(ctx, status, utils.ParsePage(r.URL.Query()))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"orders": orders})
}

// UpdateOrderStatus performs an admin-initiated status transition.
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathObjectID(r, "id")
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := oc.orders.UpdateStatus(ctx, orderID, req.Status)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"order": order})
}

func pathObjectID(r *http.Request, key string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[key])
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed %s", models.ErrValidation, key)
	}
	return id, nil
}
