package models

import (
	"time"
)

// Review is a user's rating of a listing. Nothing prevents a user from
// reviewing the same listing more than once.
type Review struct {
	Base      `bson:",inline"`
	ListingID string    `bson:"listing_id" json:"listing_id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Rating    int       `bson:"rating" json:"rating"` // 1..5
	Comment   string    `bson:"comment" json:"comment"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
