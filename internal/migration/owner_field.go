// Package migration contains batch repair jobs for historical records.
package migration

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	listingsCollection = "listings"
	oldOwnerField      = "owner_id"
	newOwnerField      = "ownerId"
)

// WriteHookFunc is the signature of the per-record write hook. Tests can set
// WriteHook to inject a store failure for a specific document; a non-nil
// return is treated as the record's write error.
type WriteHookFunc func(docID interface{}) error

// WriteHook is a package-level variable that tests can set to override
// per-record write behavior.
var WriteHook WriteHookFunc

// Result is the per-record accounting of one migration run.
type Result struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// OwnerFieldMigration renames the legacy owner_id field to ownerId across
// every listing document. Safe to re-run from any partial state: each
// record's old/new field pair fully describes what is left to do, so no
// external run-state is kept.
type OwnerFieldMigration struct {
	db *mongo.Database
}

// NewOwnerFieldMigration creates the migration over the given database.
func NewOwnerFieldMigration(db *mongo.Database) *OwnerFieldMigration {
	return &OwnerFieldMigration{db: db}
}

// Run visits every listing exactly once. Records are migrated independently:
// a failed write counts toward Errors and the scan continues. The context is
// checked between records so a long scan can be cancelled cooperatively; on
// cancellation the counters so far are returned along with the context error.
func (m *OwnerFieldMigration) Run(ctx context.Context) (Result, error) {
	var res Result
	collection := m.db.Collection(listingsCollection)

	cursor, err := collection.Find(ctx, bson.M{})
	if err != nil {
		return res, fmt.Errorf("failed to scan listings for migration: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			res.Errors++
			log.Printf("Migration: failed to decode listing document: %v", err)
			continue
		}
		res.Checked++

		docID := doc["_id"]
		oldVal, hasOld := doc[oldOwnerField]
		_, hasNew := doc[newOwnerField]

		switch {
		case !hasOld && !hasNew:
			// Nothing to migrate and nothing migrated; likely a foreign record
			res.Skipped++

		case hasNew && !hasOld:
			// Already clean
			res.Skipped++

		case hasNew && hasOld:
			// New field won an earlier partial run; drop the leftover old field
			update := bson.M{"$unset": bson.M{oldOwnerField: ""}}
			if err := m.write(ctx, collection, docID, update); err != nil {
				res.Errors++
				log.Printf("Migration: failed to clean old owner field on listing %v: %v", docID, err)
				continue
			}
			res.Updated++

		default:
			// Only the old field present; move the value across
			update := bson.M{
				"$set":   bson.M{newOwnerField: oldVal},
				"$unset": bson.M{oldOwnerField: ""},
			}
			if err := m.write(ctx, collection, docID, update); err != nil {
				res.Errors++
				log.Printf("Migration: failed to migrate owner field on listing %v: %v", docID, err)
				continue
			}
			res.Updated++
		}
	}
	if err := cursor.Err(); err != nil {
		return res, fmt.Errorf("listing scan aborted: %w", err)
	}

	return res, nil
}

func (m *OwnerFieldMigration) write(ctx context.Context, collection *mongo.Collection, docID interface{}, update bson.M) error {
	if WriteHook != nil {
		if err := WriteHook(docID); err != nil {
			return err
		}
	}
	_, err := collection.UpdateOne(ctx, bson.M{"_id": docID}, update)
	return err
}
