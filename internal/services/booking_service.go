package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/config"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/db"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/pricing"
)

// CheckoutFailure records why a single cart item could not be booked.
// Failures never abort the rest of the batch.
type CheckoutFailure struct {
	ListingID string `json:"listing_id"`
	Reason    string `json:"reason"`
	Err       error  `json:"-"`
}

// CheckoutResult is the per-item accounting of a checkout batch.
type CheckoutResult struct {
	Bookings []models.Booking  `json:"bookings"`
	Failures []CheckoutFailure `json:"failures,omitempty"`
}

// IBookingService defines the interface for booking lifecycle operations.
type IBookingService interface {
	Checkout(ctx context.Context, renterID string, items []models.CartItem) (*CheckoutResult, error)
	FindBookingByID(ctx context.Context, bookingID string) (*models.Booking, error)
	FindBookingsByRenter(ctx context.Context, renterID string) ([]models.Booking, error)
	FindBookingsByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error)
	FindBookingsByListingOwner(ctx context.Context, ownerID string) ([]models.Booking, error)
	TransitionBooking(ctx context.Context, bookingID string, target models.BookingStatus, actingAdminID string) (*models.Booking, error)
}

const bookingsCollection = "bookings"

// bookingService implements IBookingService.
type bookingService struct {
	db             *mongo.Database
	cfg            *config.Config
	listingService IListingService // Source for the denormalized snapshot and the current rate
}

// NewBookingService creates a new BookingService.
func NewBookingService(db *mongo.Database, cfg *config.Config, listingService IListingService) IBookingService {
	return &bookingService{db: db, cfg: cfg, listingService: listingService}
}

// Checkout creates one booking per cart item. Each item commits
// independently: a missing listing fails that item only and the rest of the
// cart keeps processing. Prices use the listing's daily rate as of now, not
// as of cart-add time, and are frozen into the booking. Payment is mocked,
// so bookings start out approved.
//
// The caller must clear only the successfully processed cart entries; no
// idempotency key is generated per item, so a retry after a crash between
// persistence and cart-clear can duplicate a booking.
func (s *bookingService) Checkout(ctx context.Context, renterID string, items []models.CartItem) (*CheckoutResult, error) {
	if renterID == "" {
		return nil, fmt.Errorf("renter id is required: %w", ErrValidation)
	}

	result := &CheckoutResult{}
	collection := s.db.Collection(bookingsCollection)
	now := time.Now().UTC()

	for _, item := range items {
		listing, err := s.listingService.FindListingByID(ctx, item.ListingID)
		if err != nil {
			result.Failures = append(result.Failures, CheckoutFailure{
				ListingID: item.ListingID,
				Reason:    "listing not found",
				Err:       err,
			})
			continue
		}

		quote := pricing.ComputeStay(listing.DailyRate, item.StartDate, item.EndDate)

		var booking *models.Booking
		operation := func() error {
			booking = &models.Booking{
				Base:                 models.NewBase(), // ID regenerated on each attempt
				ListingID:            listing.ID,
				ListingTitleSnapshot: listing.Title,
				ListingImageSnapshot: listing.CanonicalImage(),
				RenterID:             renterID,
				StartDate:            item.StartDate,
				EndDate:              item.EndDate,
				Days:                 quote.Days,
				TotalPrice:           quote.Total,
				Status:               models.BookingStatusApproved,
				CreatedAt:            now,
				UpdatedAt:            now,
			}
			_, insertErr := collection.InsertOne(ctx, booking)
			return insertErr
		}

		if err := db.Try(operation); err != nil {
			log.Printf("Checkout: failed to persist booking for listing %s (renter %s): %v", listing.ID, renterID, err)
			result.Failures = append(result.Failures, CheckoutFailure{
				ListingID: item.ListingID,
				Reason:    "failed to persist booking",
				Err:       err,
			})
			continue
		}

		result.Bookings = append(result.Bookings, *booking)
	}

	return result, nil
}

// FindBookingByID finds a booking by its ID.
func (s *bookingService) FindBookingByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.Collection(bookingsCollection).FindOne(ctx, bson.M{"_id": bookingID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}
		return nil, fmt.Errorf("error finding booking by ID %s: %w", bookingID, err)
	}
	return &booking, nil
}

// FindBookingsByRenter returns the renter's bookings, newest first.
func (s *bookingService) FindBookingsByRenter(ctx context.Context, renterID string) ([]models.Booking, error) {
	return s.findBookings(ctx, bson.M{"renter_id": renterID})
}

// FindBookingsByStatus returns all bookings in the given status, newest first.
func (s *bookingService) FindBookingsByStatus(ctx context.Context, status models.BookingStatus) ([]models.Booking, error) {
	return s.findBookings(ctx, bson.M{"status": status})
}

// FindBookingsByListingOwner returns bookings made against any listing the
// owner currently holds. Bookings whose listing was deleted are orphaned and
// not included here; their snapshots keep them renderable elsewhere.
func (s *bookingService) FindBookingsByListingOwner(ctx context.Context, ownerID string) ([]models.Booking, error) {
	listings, err := s.listingService.FindListingsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return []models.Booking{}, nil
	}
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	return s.findBookings(ctx, bson.M{"listing_id": bson.M{"$in": ids}})
}

func (s *bookingService) findBookings(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(bookingsCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// TransitionBooking moves a booking along its settlement state machine.
// Administrator only; renters cannot self-approve or cancel. The write is a
// single conditional update keyed on the required source status, so a
// concurrent transition cannot produce a lost update.
func (s *bookingService) TransitionBooking(ctx context.Context, bookingID string, target models.BookingStatus, actingAdminID string) (*models.Booking, error) {
	if _, err := requireModerator(ctx, s.db, s.cfg, actingAdminID); err != nil {
		return nil, err
	}

	var source models.BookingStatus
	switch target {
	case models.BookingStatusApproved, models.BookingStatusRejected:
		source = models.BookingStatusPending
	case models.BookingStatusCompleted:
		source = models.BookingStatusApproved
	default:
		return nil, fmt.Errorf("booking %s: no legal edge to status %q: %w", bookingID, target, ErrInvalidTransition)
	}

	filter := bson.M{"_id": bookingID, "status": source}
	update := bson.M{"$set": bson.M{
		"status":     target,
		"updated_at": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Booking
	err := s.db.Collection(bookingsCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("db error transitioning booking %s: %w", bookingID, err)
	}

	// Distinguish a missing booking from an illegal edge
	booking, findErr := s.FindBookingByID(ctx, bookingID)
	if findErr != nil {
		return nil, findErr
	}
	return nil, fmt.Errorf("booking %s is %q, cannot move to %q: %w", bookingID, booking.Status, target, ErrInvalidTransition)
}

// AggregateRevenue sums the fixed total price of approved bookings.
// Completed bookings are deliberately excluded: this figure is the revenue
// still pending settlement, and settled (completed) bookings belong to a
// historical report, not this view.
func AggregateRevenue(bookings []models.Booking) float64 {
	total := 0.0
	for _, b := range bookings {
		if b.Status == models.BookingStatusApproved {
			total += b.TotalPrice
		}
	}
	return total
}
