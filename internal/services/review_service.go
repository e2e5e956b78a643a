package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/db"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
)

// IReviewService defines the interface for listing reviews.
type IReviewService interface {
	CreateReview(ctx context.Context, userID, listingID string, rating int, comment string) (*models.Review, error)
	FindReviewsByListing(ctx context.Context, listingID string) ([]models.Review, error)
	FindReviewByID(ctx context.Context, reviewID string) (*models.Review, error)
	DeleteReview(ctx context.Context, reviewID string) error
}

const reviewsCollection = "reviews"

type reviewService struct {
	db             *mongo.Database
	listingService IListingService
}

// NewReviewService creates a new ReviewService.
func NewReviewService(db *mongo.Database, listingService IListingService) IReviewService {
	return &reviewService{db: db, listingService: listingService}
}

// CreateReview stores a rating for a listing. There is no uniqueness
// constraint: a user may submit more than one review for the same listing.
func (s *reviewService) CreateReview(ctx context.Context, userID, listingID string, rating int, comment string) (*models.Review, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", ErrValidation)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", ErrValidation)
	}
	if _, err := s.listingService.FindListingByID(ctx, listingID); err != nil {
		return nil, err
	}

	collection := s.db.Collection(reviewsCollection)
	var review *models.Review

	operation := func() error {
		review = &models.Review{
			Base:      models.NewBase(), // ID regenerated on each attempt
			ListingID: listingID,
			UserID:    userID,
			Rating:    rating,
			Comment:   comment,
			CreatedAt: time.Now().UTC(),
		}
		_, insertErr := collection.InsertOne(ctx, review)
		return insertErr
	}
	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert review for listing %s: %w", listingID, err)
	}
	return review, nil
}

// FindReviewsByListing returns a listing's reviews, newest first.
func (s *reviewService) FindReviewsByListing(ctx context.Context, listingID string) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(reviewsCollection).Find(ctx, bson.M{"listing_id": listingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews for listing %s: %w", listingID, err)
	}
	defer cursor.Close(ctx)

	var reviews []models.Review
	if err = cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}

// FindReviewByID finds a review by its ID.
func (s *reviewService) FindReviewByID(ctx context.Context, reviewID string) (*models.Review, error) {
	var review models.Review
	err := s.db.Collection(reviewsCollection).FindOne(ctx, bson.M{"_id": reviewID}).Decode(&review)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
		}
		return nil, fmt.Errorf("error finding review by ID %s: %w", reviewID, err)
	}
	return &review, nil
}

// DeleteReview removes a review. Authorization is the moderation engine's
// concern; this is the raw store operation.
func (s *reviewService) DeleteReview(ctx context.Context, reviewID string) error {
	result, err := s.db.Collection(reviewsCollection).DeleteOne(ctx, bson.M{"_id": reviewID})
	if err != nil {
		return fmt.Errorf("db error deleting review %s: %w", reviewID, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("review %s: %w", reviewID, ErrNotFound)
	}
	return nil
}
