// main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"shopkart/config"
	"shopkart/controllers"
	"shopkart/middleware"
	"shopkart/payment"
	"shopkart/repository"
	"shopkart/routes"
	"shopkart/services"
	"shopkart/utils"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, proceeding with environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logrus.New()
	if cfg.LogJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	// Connect to MongoDB
	client, err := utils.ConnectDB(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.WithError(err).Error("failed to disconnect mongodb client")
		}
	}()
	db := client.Database(cfg.MongoDatabase)

	// Stores
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	cartStore, err := repository.NewMongoCartStore(ctx, db)
	cancel()
	if err != nil {
		log.WithError(err).Fatal("failed to initialize cart store")
	}
	catalog := repository.NewMongoCatalog(db)
	orderStore := repository.NewMongoOrderStore(client, db, cfg.MongoTransactions, log)
	userStore := repository.NewMongoUserStore(db)

	// Collaborators
	emailService := utils.NewEmailService(cfg.PostmarkToken, cfg.EmailSender, "http://localhost:"+cfg.Port)
	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	// Services
	cartService := services.NewCartService(cartStore, catalog, log)
	orderService := services.NewOrderService(cartService, orderStore, userStore, gateway,
		emailService, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL, log)

	// Controllers and routes
	router := mux.NewRouter()
	auth := middleware.NewAuth(cfg.JWTSecret)
	routes.RegisterRoutes(router, routes.Controllers{
		Users:     controllers.NewUserController(db, emailService, cfg.JWTSecret, log),
		Products:  controllers.NewProductController(db),
		Carts:     controllers.NewCartController(cartService),
		Orders:    controllers.NewOrderController(orderService),
		Wishlists: controllers.NewWishlistController(db),
		Ratings:   controllers.NewRatingController(db),
		Dashboard: controllers.NewDashboardController(db),
	}, auth)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("server is running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
