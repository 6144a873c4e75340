package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eshitag/Dev-connector/internal/models"
)

// MongoStore handles post document CRUD in MongoDB.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("posts")}
}

// EnsureIndexes creates the index backing the newest-first listing.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("posts index: %w", err)
	}
	return nil
}

// Insert stores a new post and sets its ID.
func (s *MongoStore) Insert(ctx context.Context, post *models.Post) error {
	res, err := s.col.InsertOne(ctx, post)
	if err != nil {
		return fmt.Errorf("mongo insert: %w", err)
	}
	post.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// List returns every post, newest first.
func (s *MongoStore) List(ctx context.Context) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var posts []models.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var post models.Post
	if err := s.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Save writes the likes and comments of an already stored post.
func (s *MongoStore) Save(ctx context.Context, post *models.Post) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": post.ID}, bson.M{"$set": bson.M{
		"likes":    post.Likes,
		"comments": post.Comments,
	}})
	if err != nil {
		return fmt.Errorf("mongo save: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
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
