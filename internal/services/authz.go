package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/config"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
)

// loadActor fetches the acting user. A blocked actor may not mutate anything.
func loadActor(ctx context.Context, db *mongo.Database, actorID string) (*models.User, error) {
	if actorID == "" {
		return nil, fmt.Errorf("missing acting user id: %w", ErrUnauthorized)
	}
	var actor models.User
	err := db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": actorID}).Decode(&actor)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("acting user %s: %w", actorID, ErrUnauthorized)
		}
		return nil, fmt.Errorf("error loading acting user %s: %w", actorID, err)
	}
	if actor.IsBlocked {
		return nil, fmt.Errorf("acting user %s is blocked: %w", actorID, ErrUnauthorized)
	}
	return &actor, nil
}

// isModerator reports whether the actor may perform administrative
// transitions: either the stored admin role, or the configured break-glass
// super-admin email when the role write was lost.
func isModerator(actor *models.User, cfg *config.Config) bool {
	if actor.IsAdmin() {
		return true
	}
	return cfg != nil && cfg.SuperAdminEmail != "" && actor.Email == cfg.SuperAdminEmail
}

// requireModerator loads the actor and fails with ErrUnauthorized unless they
// may moderate.
func requireModerator(ctx context.Context, db *mongo.Database, cfg *config.Config, actorID string) (*models.User, error) {
	actor, err := loadActor(ctx, db, actorID)
	if err != nil {
		return nil, err
	}
	if !isModerator(actor, cfg) {
		return nil, fmt.Errorf("user %s lacks the admin role: %w", actorID, ErrUnauthorized)
	}
	return actor, nil
}
