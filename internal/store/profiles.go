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

// ProfileStore keeps one profile document per user in MongoDB.
type ProfileStore struct {
	col *mongo.Collection
}

func NewProfileStore(db *mongo.Database) *ProfileStore {
	return &ProfileStore{col: db.Collection("profiles")}
}

// EnsureIndexes makes the owning user id unique.
func (s *ProfileStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("profiles index: %w", err)
	}
	return nil
}

// Upsert replaces the user's profile, creating it on first write.
func (s *ProfileStore) Upsert(ctx context.Context, p *models.Profile) error {
	opts := options.FindOneAndReplace().
		SetUpsert(true).
		SetReturnDocument(options.After)
	replacement := *p
	replacement.ID = primitive.NilObjectID
	if err := s.col.FindOneAndReplace(ctx, bson.M{"user": p.User}, replacement, opts).Decode(p); err != nil {
		return fmt.Errorf("mongo upsert profile: %w", err)
	}
	return nil
}

func (s *ProfileStore) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	if err := s.col.FindOne(ctx, bson.M{"user": userID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns every profile, most recently updated first.
func (s *ProfileStore) List(ctx context.Context) ([]models.Profile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var profiles []models.Profile
	if err := cur.All(ctx, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}
