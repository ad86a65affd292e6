package repository

import (
	"context"
	"errors"
	"fmt"

	"sunnah_sayings/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// QuoteRepository defines operations for quote data
type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	FindByID(ctx context.Context, id string) (*model.Quote, error)
	Find(ctx context.Context, filter model.QuoteFilter) ([]model.Quote, error)
	FindLatest(ctx context.Context, status string, limit int64) ([]model.Quote, error)
	Update(ctx context.Context, id string, fields map[string]any) (*model.UpdateResult, error)
	Delete(ctx context.Context, id string) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type quoteRepository struct {
	coll *mongo.Collection
}

// NewQuoteRepository creates a new QuoteRepository
func NewQuoteRepository(db *mongo.Database) QuoteRepository {
	return &quoteRepository{coll: db.Collection(QuotesCollection)}
}

// Create inserts a new quote and sets its ID
func (r *quoteRepository) Create(ctx context.Context, q *model.Quote) error {
	res, err := r.coll.InsertOne(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		q.ID = oid
	}
	return nil
}

// FindByID retrieves a quote by its hex ObjectID
func (r *quoteRepository) FindByID(ctx context.Context, id string) (*model.Quote, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	q := &model.Quote{}
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(q); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find quote by ID: %w", err)
	}
	return q, nil
}

// Find lists quotes matching the filter in natural order. The submitter
// filter ignores case.
func (r *quoteRepository) Find(ctx context.Context, filter model.QuoteFilter) ([]model.Quote, error) {
	query := bson.M{}
	opts := options.Find()
	if filter.SubmittedBy != nil && *filter.SubmittedBy != "" {
		query["submittedBy"] = *filter.SubmittedBy
		opts.SetCollation(emailCollation)
	}
	if filter.Status != nil && *filter.Status != "" {
		query["status"] = *filter.Status
	}
	return r.find(ctx, query, opts)
}

// FindLatest lists quotes with the given status, newest first
func (r *quoteRepository) FindLatest(ctx context.Context, status string, limit int64) ([]model.Quote, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, bson.M{"status": status}, opts)
}

func (r *quoteRepository) find(ctx context.Context, query bson.M, opts ...*options.FindOptions) ([]model.Quote, error) {
	cursor, err := r.coll.Find(ctx, query, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer cursor.Close(ctx)

	quotes := []model.Quote{}
	if err := cursor.All(ctx, &quotes); err != nil {
		return nil, fmt.Errorf("failed to decode quotes: %w", err)
	}
	if quotes == nil {
		quotes = []model.Quote{}
	}
	return quotes, nil
}

// Update applies a $set of the given fields to one quote
func (r *quoteRepository) Update(ctx context.Context, id string, fields map[string]any) (*model.UpdateResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}
	return &model.UpdateResult{MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

// Delete removes one quote and returns the deleted count
func (r *quoteRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return 0, err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, fmt.Errorf("failed to delete quote: %w", err)
	}
	return res.DeletedCount, nil
}

// EnsureIndexes creates the indexes used by the public feeds and the
// per-submitter listing
func (r *quoteRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("status_createdAt"),
		},
		{
			Keys:    bson.D{{Key: "submittedBy", Value: 1}},
			Options: options.Index().SetName("submittedBy_ci").SetCollation(emailCollation),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create quotes indexes: %w", err)
	}
	return nil
}
