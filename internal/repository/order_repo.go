package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// OrderCollection is the Mongo collection holding order documents.
const OrderCollection = "orders"

// OrderSortFields maps accepted sort keys of an order search to document fields.
var OrderSortFields = map[string]string{
	"createdAt":   "createdAt",
	"updatedAt":   "updatedAt",
	"deliveredAt": "deliveredAt",
	"subtotal":    "subtotal",
	"total":       "total",
	"status":      "status",
}

// OrderQuery is one page of an order search.
type OrderQuery struct {
	Status models.OrderStatus
	UserID primitive.ObjectID
	Sort   *catalog.SortSpec
	Skip   int
	Limit  int
}

// OrderRepository handles data access for orders.
type OrderRepository struct {
	coll *mongo.Collection
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{coll: db.Collection(OrderCollection)}
}

// Create inserts an order and sets its ID and timestamps.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	now := time.Now().UTC()
	o.ID = primitive.NewObjectID()
	o.CreatedAt, o.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, o); err != nil {
		return mapMongoErr(err)
	}
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.ErrNotFound
	}
	var o models.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&o); err != nil {
		return nil, mapMongoErr(err)
	}
	return &o, nil
}

// Replace overwrites the stored order with o.
func (r *OrderRepository) Replace(ctx context.Context, o *models.Order) error {
	o.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": o.ID}, o)
	if err != nil {
		return mapMongoErr(err)
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// Delete removes an order and returns the deleted document.
func (r *OrderRepository) Delete(ctx context.Context, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.ErrNotFound
	}
	var o models.Order
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&o); err != nil {
		return nil, mapMongoErr(err)
	}
	return &o, nil
}

// Find returns one page of orders matching q.
func (r *OrderRepository) Find(ctx context.Context, q OrderQuery) ([]models.Order, error) {
	opts := options.Find().
		SetSort(orderSort(q.Sort)).
		SetSkip(int64(q.Skip)).
		SetLimit(int64(q.Limit))

	cur, err := r.coll.Find(ctx, orderFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	orders := make([]models.Order, 0, q.Limit)
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

// Count returns the number of orders matching q, ignoring paging.
func (r *OrderRepository) Count(ctx context.Context, q OrderQuery) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, orderFilter(q))
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

// CountByStatus groups orders by status.
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$status", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate order statuses: %w", err)
	}
	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode order statuses: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Count
	}
	return out, nil
}

// DeliveredRevenue sums the totals of delivered orders.
func (r *OrderRepository) DeliveredRevenue(ctx context.Context) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.OrderDelivered}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$total"}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate revenue: %w", err)
	}
	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode revenue: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

func orderFilter(q OrderQuery) bson.M {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if !q.UserID.IsZero() {
		filter["userId"] = q.UserID
	}
	return filter
}

// orderSort orders by the requested field, newest first when no sort was
// requested.
func orderSort(s *catalog.SortSpec) bson.D {
	if s == nil {
		return bson.D{{Key: "_id", Value: -1}}
	}
	dir := 1
	if s.Desc {
		dir = -1
	}
	return bson.D{{Key: s.Field, Value: dir}, {Key: "_id", Value: 1}}
}
