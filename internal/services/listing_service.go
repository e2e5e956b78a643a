package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/config"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/db"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
)

// ListingDraft carries the user-supplied fields for a new listing.
type ListingDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	DailyRate   float64  `json:"daily_rate"`
	Images      []string `json:"images"`
}

// IListingService defines the interface for listing-related operations.
type IListingService interface {
	CreateListing(ctx context.Context, ownerID string, draft ListingDraft) (*models.Listing, error)
	FindListingByID(ctx context.Context, listingID string) (*models.Listing, error)
	FindListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error)
	FindListingsByStatus(ctx context.Context, status models.ListingStatus) ([]models.Listing, error)
	FindAllListings(ctx context.Context) ([]models.Listing, error)
	UpdateListing(ctx context.Context, listingID, actingUserID string, updates map[string]interface{}) (*models.Listing, error)
	SetListingStatus(ctx context.Context, listingID string, status models.ListingStatus, actingAdminID string) error
	DeleteListing(ctx context.Context, listingID, actingUserID string) error
}

const listingsCollection = "listings"

// listingService implements IListingService.
type listingService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewListingService creates a new ListingService.
func NewListingService(db *mongo.Database, cfg *config.Config) IListingService {
	return &listingService{db: db, cfg: cfg}
}

func validateDraft(draft ListingDraft) error {
	if strings.TrimSpace(draft.Title) == "" {
		return fmt.Errorf("title is required: %w", ErrValidation)
	}
	if strings.TrimSpace(draft.Description) == "" {
		return fmt.Errorf("description is required: %w", ErrValidation)
	}
	if draft.DailyRate <= 0 {
		return fmt.Errorf("daily rate must be positive: %w", ErrValidation)
	}
	if draft.Category != "" && !models.IsValidCategory(draft.Category) {
		return fmt.Errorf("unknown category %q: %w", draft.Category, ErrValidation)
	}
	return nil
}

// CreateListing creates a new listing in pending status, owned by ownerID.
// Listings with no images get the configured placeholder substituted so the
// images sequence is never empty after creation.
func (s *listingService) CreateListing(ctx context.Context, ownerID string, draft ListingDraft) (*models.Listing, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner id is required: %w", ErrValidation)
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	images := draft.Images
	if len(images) == 0 {
		placeholder := "/static/placeholder.png"
		if s.cfg != nil && s.cfg.PlaceholderImageURL != "" {
			placeholder = s.cfg.PlaceholderImageURL
		}
		images = []string{placeholder}
	}

	collection := s.db.Collection(listingsCollection)
	now := time.Now().UTC()

	var newListing *models.Listing

	operation := func() error {
		newListing = &models.Listing{
			Base:        models.NewBase(), // ID regenerated on each attempt
			OwnerID:     ownerID,
			Title:       draft.Title,
			Description: draft.Description,
			Category:    draft.Category,
			DailyRate:   draft.DailyRate,
			Images:      images,
			Status:      models.ListingStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, insertErr := collection.InsertOne(ctx, newListing)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert new listing for owner %s: %w", ownerID, err)
	}

	return newListing, nil
}

// FindListingByID finds a listing by its ID. It does NOT check ownership.
func (s *listingService) FindListingByID(ctx context.Context, listingID string) (*models.Listing, error) {
	var listing models.Listing
	collection := s.db.Collection(listingsCollection)

	err := collection.FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("listing %s: %w", listingID, ErrNotFound)
		}
		return nil, fmt.Errorf("error finding listing by ID %s: %w", listingID, err)
	}
	return &listing, nil
}

// FindListingsByOwner returns all listings owned by ownerID, newest first.
func (s *listingService) FindListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	return s.findListings(ctx, bson.M{"ownerId": ownerID})
}

// FindListingsByStatus returns all listings in the given status, newest
// first. Listings whose owner is blocked are excluded from the result: a
// blocked member's inventory disappears from browse without a listing write.
func (s *listingService) FindListingsByStatus(ctx context.Context, status models.ListingStatus) ([]models.Listing, error) {
	listings, err := s.findListings(ctx, bson.M{"status": status})
	if err != nil {
		return nil, err
	}

	userColl := s.db.Collection(usersCollection)
	visible := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		var owner models.User
		err := userColl.FindOne(ctx, bson.M{"_id": l.OwnerID}).Decode(&owner)
		if err != nil || owner.IsBlocked {
			continue
		}
		visible = append(visible, l)
	}
	return visible, nil
}

// FindAllListings returns every listing ordered by creation time descending.
func (s *listingService) FindAllListings(ctx context.Context) ([]models.Listing, error) {
	return s.findListings(ctx, bson.M{})
}

func (s *listingService) findListings(ctx context.Context, filter bson.M) ([]models.Listing, error) {
	collection := s.db.Collection(listingsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}

// UpdateListing applies a field-level patch to a listing. The actor must be
// the owner or an administrator. Ownership and creation time are immutable;
// patches naming them are rejected outright.
func (s *listingService) UpdateListing(ctx context.Context, listingID, actingUserID string, updates map[string]interface{}) (*models.Listing, error) {
	allowedUpdates := bson.M{}
	for key, value := range updates {
		switch key {
		case "title", "description", "category", "daily_rate", "images":
			allowedUpdates[key] = value
		case "ownerId", "owner_id", "created_at":
			return nil, fmt.Errorf("field '%s' is immutable: %w", key, ErrValidation)
		default:
			return nil, fmt.Errorf("field '%s' cannot be updated via UpdateListing: %w", key, ErrValidation)
		}
	}
	if len(allowedUpdates) == 0 {
		return nil, fmt.Errorf("no valid fields provided for update: %w", ErrValidation)
	}
	if rate, ok := allowedUpdates["daily_rate"]; ok {
		if rateVal, ok := rate.(float64); !ok || rateVal <= 0 {
			return nil, fmt.Errorf("daily rate must be positive: %w", ErrValidation)
		}
	}
	allowedUpdates["updated_at"] = time.Now().UTC()

	listing, err := s.FindListingByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != actingUserID {
		actor, err := loadActor(ctx, s.db, actingUserID)
		if err != nil {
			return nil, err
		}
		if !isModerator(actor, s.cfg) {
			return nil, fmt.Errorf("listing %s does not belong to user %s: %w", listingID, actingUserID, ErrUnauthorized)
		}
	}

	// Single atomic write against the document
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updatedListing models.Listing
	err = s.db.Collection(listingsCollection).
		FindOneAndUpdate(ctx, bson.M{"_id": listingID}, bson.M{"$set": allowedUpdates}, opts).
		Decode(&updatedListing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("listing %s: %w", listingID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update listing %s: %w", listingID, err)
	}

	return &updatedListing, nil
}

// SetListingStatus writes the publication status directly. Administrator
// only; no review workflow is validated here.
func (s *listingService) SetListingStatus(ctx context.Context, listingID string, status models.ListingStatus, actingAdminID string) error {
	if status != models.ListingStatusPending && status != models.ListingStatusActive {
		return fmt.Errorf("unknown listing status %q: %w", status, ErrValidation)
	}
	if _, err := requireModerator(ctx, s.db, s.cfg, actingAdminID); err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}
	result, err := s.db.Collection(listingsCollection).UpdateOne(ctx, bson.M{"_id": listingID}, update)
	if err != nil {
		return fmt.Errorf("db error setting status on listing %s: %w", listingID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("listing %s: %w", listingID, ErrNotFound)
	}
	return nil
}

// DeleteListing removes a listing. Owner or administrator only. Dependent
// bookings, reviews and favorites are left in place; their snapshots keep
// them displayable.
func (s *listingService) DeleteListing(ctx context.Context, listingID, actingUserID string) error {
	listing, err := s.FindListingByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.OwnerID != actingUserID {
		actor, err := loadActor(ctx, s.db, actingUserID)
		if err != nil {
			return err
		}
		if !isModerator(actor, s.cfg) {
			return fmt.Errorf("listing %s does not belong to user %s: %w", listingID, actingUserID, ErrUnauthorized)
		}
	}

	result, err := s.db.Collection(listingsCollection).DeleteOne(ctx, bson.M{"_id": listingID})
	if err != nil {
		return fmt.Errorf("db error deleting listing %s: %w", listingID, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("listing %s: %w", listingID, ErrNotFound)
	}
	return nil
}
