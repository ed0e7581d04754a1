package store

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

	"github.com/arjun/estate-market/backend/internal/models"
)

// MongoStore handles listing CRUD and search in MongoDB.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("listings")}
}

// EnsureIndexes creates the indexes that per-user reads and the default
// search sort rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_ref", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return err
}

func (s *MongoStore) Insert(ctx context.Context, l *models.Listing) (*models.Listing, error) {
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now
	res, err := s.col.InsertOne(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("mongo insert: %w", err)
	}
	l.ID = res.InsertedID.(primitive.ObjectID)
	return l, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var l models.Listing
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (s *MongoStore) Update(ctx context.Context, l *models.Listing) (*models.Listing, error) {
	l.UpdatedAt = time.Now()
	res, err := s.col.ReplaceOne(ctx, bson.M{"_id": l.ID}, l)
	if err != nil {
		return nil, fmt.Errorf("mongo replace: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return l, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListByUser(ctx context.Context, userID string) ([]models.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{"user_ref": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	listings := []models.Listing{}
	if err := cur.All(ctx, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// Search returns the listings matching q along with the total match count
// before limit/skip are applied.
func (s *MongoStore) Search(ctx context.Context, q models.SearchQuery) ([]models.Listing, int64, error) {
	filter := searchFilter(q)

	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: q.Sort, Value: q.Order}})
	if q.StartIndex > 0 {
		opts.SetSkip(q.StartIndex)
	}
	if q.Limit > 0 {
		opts.SetLimit(q.Limit)
	}

	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	listings := []models.Listing{}
	if err := cur.All(ctx, &listings); err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// searchFilter translates the parsed query into a Mongo filter document.
// The search term is quoted so user input cannot inject regex syntax.
func searchFilter(q models.SearchQuery) bson.M {
	filter := bson.M{}
	if q.SearchTerm != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(q.SearchTerm), "$options": "i"}
	}
	if q.Type == models.TypeRent || q.Type == models.TypeSale {
		filter["type"] = q.Type
	}
	if q.Parking {
		filter["parking"] = true
	}
	if q.Furnished {
		filter["furnished"] = true
	}
	if q.Offer {
		filter["offer"] = true
	}
	return filter
}
