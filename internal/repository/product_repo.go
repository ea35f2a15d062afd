package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// ProductCollection is the Mongo collection holding product documents.
const ProductCollection = "products"

// ProductRepository handles data access for products.
type ProductRepository struct {
	coll *mongo.Collection
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(ProductCollection)}
}

// Create inserts a normalized product and sets its ID and timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now, now

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return mapMongoErr(err)
	}
	return nil
}

// GetByID returns the product with the given hex id.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.ErrNotFound
	}
	var p models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, mapMongoErr(err)
	}
	return &p, nil
}

// Replace overwrites the stored document with p.
func (r *ProductRepository) Replace(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return mapMongoErr(err)
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// Delete removes a product and returns the deleted document.
func (r *ProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, utils.ErrNotFound
	}
	var p models.Product
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&p); err != nil {
		return nil, mapMongoErr(err)
	}
	return &p, nil
}

// FindMany returns one page of products matching spec.
func (r *ProductRepository) FindMany(ctx context.Context, spec *catalog.FilterSpec) ([]models.Product, error) {
	opts := options.Find().
		SetSort(productSort(spec.Sort)).
		SetSkip(int64(spec.Skip)).
		SetLimit(int64(spec.Limit))

	cur, err := r.coll.Find(ctx, productFilter(spec), opts)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	products := make([]models.Product, 0, spec.Limit)
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	return products, nil
}

// Count returns the number of products matching spec, ignoring paging.
func (r *ProductRepository) Count(ctx context.Context, spec *catalog.FilterSpec) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, productFilter(spec))
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// FindByGroup returns every color sibling sharing groupID, oldest first.
func (r *ProductRepository) FindByGroup(ctx context.Context, groupID string) ([]models.Product, error) {
	cur, err := r.coll.Find(ctx, bson.M{"groupId": groupID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find group %s: %w", groupID, err)
	}
	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("decode group %s: %w", groupID, err)
	}
	return products, nil
}

// CountMediaRefs returns how many products other than exclude still
// reference url as a product or color image.
func (r *ProductRepository) CountMediaRefs(ctx context.Context, url string, exclude primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"_id": bson.M{"$ne": exclude},
		"$or": bson.A{
			bson.M{"images": url},
			bson.M{"colors.image": url},
		},
	}
	return r.coll.CountDocuments(ctx, filter)
}

// PropagateColor copies a color's name and image to every sibling in the
// group that declares the same connection id. Last writer wins.
func (r *ProductRepository) PropagateColor(ctx context.Context, groupID string, change catalog.ColorChange) (int64, error) {
	filter := bson.M{
		"groupId":             groupID,
		"colors.connectionId": change.ConnectionID,
	}
	update := bson.M{"$set": bson.M{
		"colors.$.name":  change.Name,
		"colors.$.image": change.Image,
		"updatedAt":      time.Now().UTC(),
	}}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("propagate color %s: %w", change.ConnectionID, err)
	}
	return res.ModifiedCount, nil
}

// CountAll returns the number of products.
func (r *ProductRepository) CountAll(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

// CountOutOfStock returns the number of products whose default variant has
// no stock left.
func (r *ProductRepository) CountOutOfStock(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"stock": bson.M{"$lte": 0}})
}

// CountByShape groups products by variant shape.
func (r *ProductRepository) CountByShape(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"hasColor": "$hasColor", "hasSize": "$hasSize"},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate shapes: %w", err)
	}
	var rows []struct {
		ID struct {
			HasColor bool `bson:"hasColor"`
			HasSize  bool `bson:"hasSize"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode shapes: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[string(models.ShapeOf(row.ID.HasColor, row.ID.HasSize))] += row.Count
	}
	return out, nil
}

// CountByCategory groups products by category.
func (r *ProductRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}
	var rows []struct {
		ID    string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ID] = row.Count
	}
	return out, nil
}

// Ping checks the Mongo connection.
func (r *ProductRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}

// productFilter translates a FilterSpec into a Mongo filter document.
func productFilter(spec *catalog.FilterSpec) bson.M {
	filter := bson.M{}
	if spec == nil {
		return filter
	}
	if spec.Category != "" {
		filter["category"] = spec.Category
	}
	if spec.Brand != "" {
		filter["brand"] = spec.Brand
	}
	if len(spec.Tokens) > 0 {
		titleAll := make(bson.A, 0, len(spec.Tokens))
		for _, t := range spec.Tokens {
			titleAll = append(titleAll, bson.M{"title": tokenRegex(t)})
		}
		filter["$or"] = bson.A{
			bson.M{"$and": titleAll},
			bson.M{"sizes": bson.M{"$elemMatch": bson.M{"$and": titleAll}}},
		}
	}
	for _, c := range spec.Ranges {
		bounds, ok := filter[c.Field].(bson.M)
		if !ok {
			bounds = bson.M{}
			filter[c.Field] = bounds
		}
		bounds["$"+c.Op] = c.Value
	}
	return filter
}

// productSort orders by the requested field with _id as tie-break, or by
// insertion order when no sort was requested.
func productSort(s *catalog.SortSpec) bson.D {
	if s == nil {
		return bson.D{{Key: "_id", Value: 1}}
	}
	dir := 1
	if s.Desc {
		dir = -1
	}
	return bson.D{{Key: s.Field, Value: dir}, {Key: "_id", Value: 1}}
}

func tokenRegex(token string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(token), Options: "i"}
}

func mapMongoErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return utils.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return utils.ErrDuplicateUniqueField
	}
	return err
}
