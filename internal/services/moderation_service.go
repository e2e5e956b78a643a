package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/config"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
)

// ModerationEntry describes one administrative action for the audit trail.
type ModerationEntry struct {
	models.Base `bson:",inline"`
	ActorID     string    `bson:"actor_id" json:"actor_id"`
	Action      string    `bson:"action" json:"action"`
	EntityKind  string    `bson:"entity_kind" json:"entity_kind"`
	EntityID    string    `bson:"entity_id" json:"entity_id"`
	OccurredAt  time.Time `bson:"occurred_at" json:"occurred_at"`
}

// AuditLogger records moderation actions. Logging is best-effort: a failing
// logger never blocks the action itself.
type AuditLogger interface {
	Record(ctx context.Context, entry ModerationEntry) error
}

const moderationLogCollection = "moderation_log"

type mongoAuditLogger struct {
	db *mongo.Database
}

// NewMongoAuditLogger creates an AuditLogger backed by the moderation_log collection.
func NewMongoAuditLogger(db *mongo.Database) AuditLogger {
	return &mongoAuditLogger{db: db}
}

func (l *mongoAuditLogger) Record(ctx context.Context, entry ModerationEntry) error {
	entry.GenIDIfEmpty()
	_, err := l.db.Collection(moderationLogCollection).InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to record moderation entry: %w", err)
	}
	return nil
}

// IModerationService gates all administrative state transitions behind the
// admin role (or the break-glass super-admin identity).
type IModerationService interface {
	ApproveListing(ctx context.Context, listingID, actorID string) error
	RejectListing(ctx context.Context, listingID, actorID string) error
	ApproveBooking(ctx context.Context, bookingID, actorID string) (*models.Booking, error)
	RejectBooking(ctx context.Context, bookingID, actorID string) (*models.Booking, error)
	CompleteBooking(ctx context.Context, bookingID, actorID string) (*models.Booking, error)
	BlockUser(ctx context.Context, userID, actorID string) error
	UnblockUser(ctx context.Context, userID, actorID string) error
	PromoteUser(ctx context.Context, userID, actorID string) error
	DeleteReview(ctx context.Context, reviewID, actorID string) error
}

type moderationService struct {
	db             *mongo.Database
	cfg            *config.Config
	listingService IListingService
	bookingService IBookingService
	userService    IUserService
	reviewService  IReviewService
	audit          AuditLogger // May be nil
}

// NewModerationService creates a new ModerationService. audit may be nil, in
// which case actions proceed unlogged.
func NewModerationService(db *mongo.Database, cfg *config.Config, listingService IListingService, bookingService IBookingService, userService IUserService, reviewService IReviewService, audit AuditLogger) IModerationService {
	return &moderationService{
		db:             db,
		cfg:            cfg,
		listingService: listingService,
		bookingService: bookingService,
		userService:    userService,
		reviewService:  reviewService,
		audit:          audit,
	}
}

func (s *moderationService) record(ctx context.Context, actorID, action, entityKind, entityID string) {
	if s.audit == nil {
		return
	}
	entry := ModerationEntry{
		ActorID:    actorID,
		Action:     action,
		EntityKind: entityKind,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		log.Printf("Warning: failed to audit-log moderation action %s on %s %s by %s: %v", action, entityKind, entityID, actorID, err)
	}
}

// ApproveListing publishes a pending listing.
func (s *moderationService) ApproveListing(ctx context.Context, listingID, actorID string) error {
	if err := s.listingService.SetListingStatus(ctx, listingID, models.ListingStatusActive, actorID); err != nil {
		return err
	}
	s.record(ctx, actorID, "approve", "listing", listingID)
	return nil
}

// RejectListing removes a listing. Rejection is represented by deletion, not
// a separate status.
func (s *moderationService) RejectListing(ctx context.Context, listingID, actorID string) error {
	if _, err := requireModerator(ctx, s.db, s.cfg, actorID); err != nil {
		return err
	}
	if err := s.listingService.DeleteListing(ctx, listingID, actorID); err != nil {
		return err
	}
	s.record(ctx, actorID, "reject", "listing", listingID)
	return nil
}

// ApproveBooking settles a pending booking.
func (s *moderationService) ApproveBooking(ctx context.Context, bookingID, actorID string) (*models.Booking, error) {
	booking, err := s.bookingService.TransitionBooking(ctx, bookingID, models.BookingStatusApproved, actorID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "approve", "booking", bookingID)
	return booking, nil
}

// RejectBooking declines a pending booking. Terminal.
func (s *moderationService) RejectBooking(ctx context.Context, bookingID, actorID string) (*models.Booking, error) {
	booking, err := s.bookingService.TransitionBooking(ctx, bookingID, models.BookingStatusRejected, actorID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "reject", "booking", bookingID)
	return booking, nil
}

// CompleteBooking closes out an approved booking after the rental ends. Terminal.
func (s *moderationService) CompleteBooking(ctx context.Context, bookingID, actorID string) (*models.Booking, error) {
	booking, err := s.bookingService.TransitionBooking(ctx, bookingID, models.BookingStatusCompleted, actorID)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actorID, "complete", "booking", bookingID)
	return booking, nil
}

// BlockUser marks an account blocked, which also hides its listings from browse.
func (s *moderationService) BlockUser(ctx context.Context, userID, actorID string) error {
	if _, err := requireModerator(ctx, s.db, s.cfg, actorID); err != nil {
		return err
	}
	if err := s.userService.SetBlocked(ctx, userID, true); err != nil {
		return err
	}
	s.record(ctx, actorID, "block", "user", userID)
	return nil
}

// UnblockUser lifts a block.
func (s *moderationService) UnblockUser(ctx context.Context, userID, actorID string) error {
	if _, err := requireModerator(ctx, s.db, s.cfg, actorID); err != nil {
		return err
	}
	if err := s.userService.SetBlocked(ctx, userID, false); err != nil {
		return err
	}
	s.record(ctx, actorID, "unblock", "user", userID)
	return nil
}

// PromoteUser escalates a member to admin. One-directional: there is no
// demotion operation.
func (s *moderationService) PromoteUser(ctx context.Context, userID, actorID string) error {
	if _, err := requireModerator(ctx, s.db, s.cfg, actorID); err != nil {
		return err
	}
	if err := s.userService.PromoteToAdmin(ctx, userID); err != nil {
		return err
	}
	s.record(ctx, actorID, "promote", "user", userID)
	return nil
}

// DeleteReview removes a review.
func (s *moderationService) DeleteReview(ctx context.Context, reviewID, actorID string) error {
	if _, err := requireModerator(ctx, s.db, s.cfg, actorID); err != nil {
		return err
	}
	if err := s.reviewService.DeleteReview(ctx, reviewID); err != nil {
		return err
	}
	s.record(ctx, actorID, "delete", "review", reviewID)
	return nil
}
