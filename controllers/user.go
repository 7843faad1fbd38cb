package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"shopkart/middleware"
	"shopkart/models"
	"shopkart/utils"
)

// UserController handles account requests.
type UserController struct {
	Collection   *mongo.Collection
	EmailService *utils.EmailService
	JWTSecret    []byte
	Log          *logrus.Logger
}

// NewUserController creates a new UserController.
func NewUserController(db *mongo.Database, emailService *utils.EmailService, jwtSecret []byte, log *logrus.Logger) *UserController {
	return &UserController{
		Collection:   db.Collection("users"),
		EmailService: emailService,
		JWTSecret:    jwtSecret,
		Log:          log,
	}
}

// Register handles user registration.
func (uc *UserController) Register(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		utils.RespondError(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" || user.Password == "" || user.Name == "" {
		utils.RespondError(w, fmt.Errorf("%w: name, email and password are required", models.ErrValidation))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	count, err := uc.Collection.CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	if count > 0 {
		utils.RespondError(w, fmt.Errorf("%w: user already exists", models.ErrValidation))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	user.Password = string(hashedPassword)
	user.Role = "user"
	user.IsVerified = false
	user.VerificationToken = uuid.NewString()
	user.CreatedAt = time.Now().UTC()

	if _, err := uc.Collection.InsertOne(ctx, user); err != nil {
		utils.RespondError(w, err)
		return
	}

	go func(email, token string) {
		if err := uc.EmailService.SendVerificationEmail(email, token); err != nil {
			uc.Log.WithError(err).WithField("email", email).Warn("failed to send verification email")
		}
	}(user.Email, user.VerificationToken)

	utils.RespondSuccess(w, http.StatusCreated, utils.M{
		"message": "registered, verification email sent",
	})
}

// Login authenticates a user and issues a JWT.
func (uc *UserController) Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		utils.RespondError(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := uc.Collection.FindOne(ctx, bson.M{"email": strings.ToLower(creds.Email)}).Decode(&user)
	if err != nil {
		utils.RespondError(w, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(creds.Password)); err != nil {
		utils.RespondError(w, fmt.Errorf("%w: invalid credentials", models.ErrUnauthorized))
		return
	}

	token, err := utils.GenerateJWT(uc.JWTSecret, user.ID.Hex(), user.Email, user.Role)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"token": token})
}

// VerifyEmail marks an account verified from the emailed token.
func (uc *UserController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.RespondError(w, fmt.Errorf("%w: token is required", models.ErrValidation))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := uc.Collection.UpdateOne(ctx,
		bson.M{"verification_token": token},
		bson.M{"$set": bson.M{"is_verified": true}, "$unset": bson.M{"verification_token": ""}})
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondError(w, fmt.Errorf("verification token: %w", models.ErrNotFound))
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"message": "email verified"})
}

// GetProfile returns the authenticated user's account.
func (uc *UserController) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.CustomerID(r)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	if err := uc.Collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		utils.RespondError(w, fmt.Errorf("user: %w", models.ErrNotFound))
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"user": user})
}

// UpdateAddress replaces the profile delivery address.
func (uc *UserController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.CustomerID(r)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	var address models.Address
	if err := json.NewDecoder(r.Body).Decode(&address); err != nil {
		utils.RespondError(w, fmt.Errorf("%w: malformed request body", models.ErrValidation))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := uc.Collection.UpdateOne(ctx, bson.M{"_id": userID},
		bson.M{"$set": bson.M{"address": address}})
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	if result.MatchedCount == 0 {
		utils.RespondError(w, fmt.Errorf("user: %w", models.ErrNotFound))
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{"address": address})
}

// ListCustomers returns customer accounts for the admin surface.
func (uc *UserController) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page := utils.ParsePage(r.URL.Query())
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	cursor, err := uc.Collection.Find(ctx, bson.M{"role": "user"}, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(page.Skip()).
		SetLimit(page.Limit()).
		SetProjection(bson.M{"password": 0, "verification_token": 0}))
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	defer cursor.Close(ctx)

	var customers []models.User
	if err := cursor.All(ctx, &customers); err != nil {
		utils.RespondError(w, err)
		return
	}
	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"customers": customers,
		"page":      page.Number,
	})
}
