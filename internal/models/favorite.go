package models

import (
	"time"
)

// ListingSnapshot is a copy of listing display fields captured when the
// favorite is created. It does not track later listing changes.
type ListingSnapshot struct {
	Title     string  `bson:"title" json:"title"`
	Image     string  `bson:"image" json:"image"`
	DailyRate float64 `bson:"daily_rate" json:"daily_rate"`
	Category  string  `bson:"category" json:"category"`
}

// Favorite links a user to a listing they saved. Identity is the
// (user_id, listing_id) pair; the document is never mutated in place.
type Favorite struct {
	Base      `bson:",inline"`
	UserID    string          `bson:"user_id" json:"user_id"`
	ListingID string          `bson:"listing_id" json:"listing_id"`
	Snapshot  ListingSnapshot `bson:"snapshot" json:"snapshot"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
}
