package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dbpulse/dbpulse/internal/models"
)

// UserStore persists user accounts.
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore creates a user store on the given database.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(collUsers)}
}

// Insert stores a new user.
func (s *UserStore) Insert(ctx context.Context, user *models.User) error {
	_, err := s.coll.InsertOne(ctx, user)
	return err
}

// FindByEmail loads one user by email, returning (nil, nil) when absent.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll returns every non-deleted user.
func (s *UserStore) FindAll(ctx context.Context) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{"isDeleted": false})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
