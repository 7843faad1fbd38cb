package controllers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"shopkart/models"
	"shopkart/utils"
)

// DashboardController serves the admin overview aggregates.
type DashboardController struct {
	Orders   *mongo.Collection
	Users    *mongo.Collection
	Products *mongo.Collection
}

// NewDashboardController creates a new DashboardController.
func NewDashboardController(db *mongo.Database) *DashboardController {
	return &DashboardController{
		Orders:   db.Collection("orders"),
		Users:    db.Collection("users"),
		Products: db.Collection("products"),
	}
}

// revenueStatuses are the statuses counted as realized revenue: orders that
// were paid for and kept. Failed and cancelled orders never earned anything;
// returned, refunded and exchanged orders gave the money (or goods) back.
var revenueStatuses = []models.OrderStatus{
	models.OrderPlaced, models.OrderShipped, models.OrderDelivered,
	models.OrderReturnRequested, models.OrderExchangeRequested,
}

// GetDashboard aggregates revenue, order counts by status, account/catalog
// totals and the top products by quantity sold.
func (dc *DashboardController) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	revenue, err := dc.totalRevenue(ctx)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	byStatus, err := dc.ordersByStatus(ctx)
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	topProducts, err := dc.topProducts(ctx, 5)
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	customers, err := dc.Users.CountDocuments(ctx, bson.M{"role": "user"})
	if err != nil {
		utils.RespondError(w, err)
		return
	}
	products, err := dc.Products.CountDocuments(ctx, bson.M{})
	if err != nil {
		utils.RespondError(w, err)
		return
	}

	utils.RespondSuccess(w, http.StatusOK, utils.M{
		"total_revenue":    revenue,
		"orders_by_status": byStatus,
		"total_customers":  customers,
		"total_products":   products,
		"top_products":     topProducts,
	})
}

func (dc *DashboardController) totalRevenue(ctx context.Context) (float64, error) {
	cursor, err := dc.Orders.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"status": bson.M{"$in": revenueStatuses}}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$total_price"},
		}}},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	result := struct {
		Total float64 `bson:"total"`
	}{}
	if cursor.Next(ctx) {
		if err := cursor.Decode(&result); err != nil {
			return 0, err
		}
	}
	return result.Total, nil
}

func (dc *DashboardController) ordersByStatus(ctx context.Context) (map[string]int64, error) {
	cursor, err := dc.Orders.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := map[string]int64{}
	for cursor.Next(ctx) {
		row := struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}{}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.Status] = row.Count
	}
	return counts, cursor.Err()
}

func (dc *DashboardController) topProducts(ctx context.Context, limit int) ([]bson.M, error) {
	cursor, err := dc.Orders.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"status": bson.M{"$in": revenueStatuses}}}},
		bson.D{{Key: "$unwind", Value: "$items"}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":      "$items.product_id",
			"name":     bson.M{"$first": "$items.name"},
			"quantity": bson.M{"$sum": "$items.quantity"},
			"revenue":  bson.M{"$sum": "$items.line_total"},
		}}},
		bson.D{{Key: "$sort", Value: bson.M{"quantity": -1}}},
		bson.D{{Key: "$limit", Value: limit}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []bson.M
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
