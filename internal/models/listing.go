package models

import (
	"time"
)

// ListingStatus defines the publication state of a listing.
// Rejected listings are deleted rather than kept in a third state.
type ListingStatus string

const (
	ListingStatusPending ListingStatus = "pending"
	ListingStatusActive  ListingStatus = "active"
)

// ListingCategories is the fixed set of accepted listing categories.
var ListingCategories = []string{
	"electronics",
	"tools",
	"vehicles",
	"sports",
	"home",
	"clothing",
	"other",
}

// IsValidCategory reports whether category is one of ListingCategories.
func IsValidCategory(category string) bool {
	for _, c := range ListingCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Listing represents a publishable rental offer owned by a user.
type Listing struct {
	Base        `bson:",inline"`
	OwnerID     string        `bson:"ownerId" json:"owner_id"` // Immutable after creation
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description" json:"description"`
	Category    string        `bson:"category" json:"category"`
	DailyRate   float64       `bson:"daily_rate" json:"daily_rate"` // Must stay > 0
	Images      []string      `bson:"images" json:"images"`         // First entry is canonical
	Status      ListingStatus `bson:"status" json:"status"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at" json:"updated_at"`
}

// CanonicalImage returns the first image URI, or empty when none exist.
func (l *Listing) CanonicalImage() string {
	if len(l.Images) == 0 {
		return ""
	}
	return l.Images[0]
}
