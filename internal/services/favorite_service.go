package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/db"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
)

// Toggle outcomes.
const (
	FavoriteAdded   = "added"
	FavoriteRemoved = "removed"
)

// IFavoriteService defines the interface for the favorites relation.
type IFavoriteService interface {
	Toggle(ctx context.Context, userID, listingID string, snapshot models.ListingSnapshot) (string, error)
	FindFavoritesByUser(ctx context.Context, userID string) ([]models.Favorite, error)
	IsFavorite(ctx context.Context, userID, listingID string) (bool, error)
}

const favoritesCollection = "favorites"

type favoriteService struct {
	db *mongo.Database
}

// NewFavoriteService creates a new FavoriteService.
func NewFavoriteService(db *mongo.Database) IFavoriteService {
	return &favoriteService{db: db}
}

// Toggle flips the (user, listing) favorite: deletes it when present,
// creates it with the given display snapshot when absent. Check-then-act is
// fine here because a user cannot race against themselves in the supported
// client.
func (s *favoriteService) Toggle(ctx context.Context, userID, listingID string, snapshot models.ListingSnapshot) (string, error) {
	if userID == "" || listingID == "" {
		return "", fmt.Errorf("user id and listing id are required: %w", ErrValidation)
	}

	collection := s.db.Collection(favoritesCollection)
	key := bson.M{"user_id": userID, "listing_id": listingID}

	result, err := collection.DeleteOne(ctx, key)
	if err != nil {
		return "", fmt.Errorf("db error toggling favorite (%s, %s): %w", userID, listingID, err)
	}
	if result.DeletedCount > 0 {
		return FavoriteRemoved, nil
	}

	operation := func() error {
		favorite := &models.Favorite{
			Base:      models.NewBase(), // ID regenerated on each attempt
			UserID:    userID,
			ListingID: listingID,
			Snapshot:  snapshot,
			CreatedAt: time.Now().UTC(),
		}
		_, insertErr := collection.InsertOne(ctx, favorite)
		return insertErr
	}
	if err := db.Try(operation); err != nil {
		return "", fmt.Errorf("failed to insert favorite (%s, %s): %w", userID, listingID, err)
	}
	return FavoriteAdded, nil
}

// FindFavoritesByUser returns the user's favorites, newest first.
func (s *favoriteService) FindFavoritesByUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(favoritesCollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var favorites []models.Favorite
	if err = cursor.All(ctx, &favorites); err != nil {
		return nil, fmt.Errorf("failed to decode favorites: %w", err)
	}
	return favorites, nil
}

// IsFavorite reports whether the (user, listing) pair is currently saved.
func (s *favoriteService) IsFavorite(ctx context.Context, userID, listingID string) (bool, error) {
	err := s.db.Collection(favoritesCollection).
		FindOne(ctx, bson.M{"user_id": userID, "listing_id": listingID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("db error checking favorite (%s, %s): %w", userID, listingID, err)
	}
	return true, nil
}
