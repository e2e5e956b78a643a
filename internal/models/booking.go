package models

import (
	"time"
)

// BookingStatus defines the settlement state of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusApproved  BookingStatus = "approved"
	BookingStatusRejected  BookingStatus = "rejected"  // Terminal
	BookingStatusCompleted BookingStatus = "completed" // Terminal
)

// Booking represents a reserved date range against a listing.
// Title and image are denormalized at creation time and never refreshed;
// TotalPrice is fixed at creation regardless of later rate changes.
type Booking struct {
	Base                 `bson:",inline"`
	ListingID            string        `bson:"listing_id" json:"listing_id"`
	ListingTitleSnapshot string        `bson:"listing_title" json:"listing_title"`
	ListingImageSnapshot string        `bson:"listing_image" json:"listing_image"`
	RenterID             string        `bson:"renter_id" json:"renter_id"`
	StartDate            time.Time     `bson:"start_date" json:"start_date"`
	EndDate              time.Time     `bson:"end_date" json:"end_date"`
	Days                 int           `bson:"days" json:"days"`
	TotalPrice           float64       `bson:"total_price" json:"total_price"`
	Status               BookingStatus `bson:"status" json:"status"`
	CreatedAt            time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time     `bson:"updated_at" json:"updated_at"`
}

// CanTransition reports whether a booking may move from one status to
// another. Rejected and completed are terminal.
func CanTransition(from, to BookingStatus) bool {
	switch from {
	case BookingStatusPending:
		return to == BookingStatusApproved || to == BookingStatusRejected
	case BookingStatusApproved:
		return to == BookingStatusCompleted
	default:
		return false
	}
}

// CartItem is a client-held reservation request passed into checkout.
// The cart itself lives on the client; it is never ambient server state.
type CartItem struct {
	ListingID string    `json:"listing_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}
