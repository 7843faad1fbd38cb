package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopkart/controllers"
	"shopkart/middleware"
	"shopkart/utils"
)

// Controllers groups the handler sets wired by RegisterRoutes.
type Controllers struct {
	Users     *controllers.UserController
	Products  *controllers.ProductController
	Carts     *controllers.CartController
	Orders    *controllers.OrderController
	Wishlists *controllers.WishlistController
	Ratings   *controllers.RatingController
	Dashboard *controllers.DashboardController
}

// RegisterRoutes sets up all the routes for the application.
func RegisterRoutes(router *mux.Router, c Controllers, auth *middleware.Auth) {
	router.Use(middleware.Metrics)

	// Public routes
	router.HandleFunc("/register", c.Users.Register).Methods("POST")
	router.HandleFunc("/login", c.Users.Login).Methods("POST")
	router.HandleFunc("/verify", c.Users.VerifyEmail).Methods("GET")
	router.HandleFunc("/health", healthHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Catalog, public reads
	router.HandleFunc("/products", c.Products.GetProducts).Methods("GET")
	router.HandleFunc("/products/{id}", c.Products.GetProduct).Methods("GET")
	router.HandleFunc("/products/{id}/ratings", c.Ratings.ListRatings).Methods("GET")

	// Payment gateway callback, authenticated by payload signature
	router.HandleFunc("/orders/webhook", c.Orders.Webhook).Methods("POST")

	// Customer routes
	customer := router.PathPrefix("/").Subrouter()
	customer.Use(auth.Authenticate)
	customer.HandleFunc("/profile", c.Users.GetProfile).Methods("GET")
	customer.HandleFunc("/profile/address", c.Users.UpdateAddress).Methods("PUT")

	customer.HandleFunc("/cart/add", c.Carts.AddToCart).Methods("POST")
	customer.HandleFunc("/cart/decrease", c.Carts.ReduceFromCart).Methods("POST")
	customer.HandleFunc("/cart/remove", c.Carts.RemoveFromCart).Methods("POST")
	customer.HandleFunc("/cart/clear", c.Carts.ClearCart).Methods("DELETE")
	customer.HandleFunc("/cart", c.Carts.GetCart).Methods("GET")

	customer.HandleFunc("/orders/create-checkout-session", c.Orders.CreateCheckoutSession).Methods("POST")
	customer.HandleFunc("/orders/check-session", c.Orders.CheckSession).Methods("GET")
	customer.HandleFunc("/orders/cancel/{id}", c.Orders.CancelOrder).Methods("PUT")
	customer.HandleFunc("/orders", c.Orders.GetOrders).Methods("GET")
	customer.HandleFunc("/orders/{id}", c.Orders.GetOrder).Methods("GET")

	customer.HandleFunc("/wishlist", c.Wishlists.AddToWishlist).Methods("POST")
	customer.HandleFunc("/wishlist/{productId}", c.Wishlists.RemoveFromWishlist).Methods("DELETE")
	customer.HandleFunc("/wishlist", c.Wishlists.GetWishlist).Methods("GET")

	customer.HandleFunc("/products/{id}/ratings", c.Ratings.RateProduct).Methods("POST")

	// Admin routes
	adminProducts := router.PathPrefix("/products").Subrouter()
	adminProducts.Use(auth.Authenticate)
	adminProducts.Use(auth.RequireAdmin)
	adminProducts.HandleFunc("", c.Products.CreateProduct).Methods("POST")
	adminProducts.HandleFunc("/{id}", c.Products.UpdateProduct).Methods("PUT")
	adminProducts.HandleFunc("/{id}", c.Products.DeleteProduct).Methods("DELETE")

	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(auth.Authenticate)
	admin.Use(auth.RequireAdmin)
	admin.HandleFunc("/orders", c.Orders.ListOrders).Methods("GET")
	admin.HandleFunc("/orders/{id}/status", c.Orders.UpdateOrderStatus).Methods("PUT")
	admin.HandleFunc("/customers", c.Users.ListCustomers).Methods("GET")
	admin.HandleFunc("/dashboard", c.Dashboard.GetDashboard).Methods("GET")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	utils.RespondSuccess(w, http.StatusOK, utils.M{"status": "ok"})
}
