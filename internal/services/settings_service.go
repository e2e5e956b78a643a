package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/config"
)

// ISettingsService exposes runtime-tunable settings stored in the database.
// Values override the .env defaults without a restart: instances reload on a
// Redis pub/sub notification.
type ISettingsService interface {
	Load(ctx context.Context) error
	Get(ctx context.Context, key string) (interface{}, error)
	GetString(ctx context.Context, key string, defaultValue string) string
	GetInt(ctx context.Context, key string, defaultValue int) int
	GetBool(ctx context.Context, key string, defaultValue bool) bool
	GetFloat64(ctx context.Context, key string, defaultValue float64) float64
	GetDuration(ctx context.Context, key string, defaultValue time.Duration) time.Duration
	Set(ctx context.Context, key string, value interface{}) error
	SubscribeToChanges(ctx context.Context) error
}

const (
	settingsCollection    = "settings"
	settingsUpdateChannel = "settings_updates"
)

// SettingEntry is a document in the settings collection.
type SettingEntry struct {
	Key   string      `bson:"key"`
	Value interface{} `bson:"value"`
}

type settingsService struct {
	db    *mongo.Database
	cfg   *config.Config // .env defaults
	rdb   *redis.Client  // may be nil, disables live reload
	cache map[string]interface{}
	mutex sync.RWMutex
}

// NewSettingsService creates the service, loads the current settings and, when
// Redis is available, starts listening for update notifications.
func NewSettingsService(db *mongo.Database, initialCfg *config.Config, rdb *redis.Client) ISettingsService {
	s := &settingsService{
		db:    db,
		cfg:   initialCfg,
		rdb:   rdb,
		cache: make(map[string]interface{}),
	}
	if err := s.Load(context.Background()); err != nil {
		log.Printf("WARNING: failed to load settings from DB: %v. Using .env defaults.", err)
	}
	go func() {
		if err := s.SubscribeToChanges(context.Background()); err != nil {
			log.Printf("Settings pub/sub listener stopped: %v", err)
		}
	}()
	return s
}

// Load replaces the in-memory cache with the current DB contents.
func (s *settingsService) Load(ctx context.Context) error {
	cursor, err := s.db.Collection(settingsCollection).Find(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to query settings collection: %w", err)
	}
	defer cursor.Close(ctx)

	newCache := make(map[string]interface{})
	for cursor.Next(ctx) {
		var entry SettingEntry
		if err := cursor.Decode(&entry); err != nil {
			log.Printf("Warning: failed to decode setting entry: %v", err)
			continue
		}
		newCache[entry.Key] = entry.Value
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("error iterating settings cursor: %w", err)
	}

	s.mutex.Lock()
	s.cache = newCache
	s.mutex.Unlock()
	log.Printf("Loaded %d settings from DB.", len(newCache))
	return nil
}

// Get returns the cached value for key, or an error when unset.
func (s *settingsService) Get(ctx context.Context, key string) (interface{}, error) {
	s.mutex.RLock()
	val, exists := s.cache[key]
	s.mutex.RUnlock()

	if exists {
		return val, nil
	}
	return nil, fmt.Errorf("setting '%s' not found", key)
}

func (s *settingsService) GetString(ctx context.Context, key string, defaultValue string) string {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	if strVal, ok := val.(string); ok {
		return strVal
	}
	log.Printf("Warning: setting '%s' is not a string, using default.", key)
	return defaultValue
}

// GetInt converts the stored value, tolerating the numeric types BSON
// round-trips numbers through.
func (s *settingsService) GetInt(ctx context.Context, key string, defaultValue int) int {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	switch v := val.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		log.Printf("Warning: setting '%s' is not an integer type (%T), using default.", key, val)
		return defaultValue
	}
}

func (s *settingsService) GetBool(ctx context.Context, key string, defaultValue bool) bool {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	if boolVal, ok := val.(bool); ok {
		return boolVal
	}
	log.Printf("Warning: setting '%s' is not a boolean, using default.", key)
	return defaultValue
}

func (s *settingsService) GetFloat64(ctx context.Context, key string, defaultValue float64) float64 {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		log.Printf("Warning: setting '%s' is not a numeric type (%T), using default.", key, val)
		return defaultValue
	}
}

// GetDuration reads a value stored as integer seconds.
func (s *settingsService) GetDuration(ctx context.Context, key string, defaultValue time.Duration) time.Duration {
	val, err := s.Get(ctx, key)
	if err != nil {
		return defaultValue
	}
	switch v := val.(type) {
	case int:
		return time.Duration(v) * time.Second
	case int32:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v) * time.Second
	default:
		log.Printf("Warning: setting '%s' is not a numeric type for duration (%T), using default.", key, val)
		return defaultValue
	}
}

// Set upserts the value in the DB, updates the local cache and notifies other
// instances via Redis.
func (s *settingsService) Set(ctx context.Context, key string, value interface{}) error {
	filter := bson.M{"key": key}
	update := bson.M{"$set": bson.M{"key": key, "value": value}}
	opts := options.Update().SetUpsert(true)

	if _, err := s.db.Collection(settingsCollection).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert setting '%s': %w", key, err)
	}

	s.mutex.Lock()
	s.cache[key] = value
	s.mutex.Unlock()

	if s.rdb != nil {
		if err := s.rdb.Publish(ctx, settingsUpdateChannel, key).Err(); err != nil {
			log.Printf("Warning: failed to publish settings update for '%s': %v", key, err)
		}
	}
	return nil
}

// SubscribeToChanges blocks, reloading the cache whenever another instance
// publishes an update. Returns nil immediately when Redis is not configured.
func (s *settingsService) SubscribeToChanges(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}

	pubsub := s.rdb.Subscribe(ctx, settingsUpdateChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to confirm settings pub/sub subscription: %w", err)
	}

	ch := pubsub.Channel()
	log.Println("Subscribed to settings updates on channel:", settingsUpdateChannel)

	for msg := range ch {
		log.Printf("Settings update notification: %s", msg.Payload)
		if err := s.Load(context.Background()); err != nil {
			log.Printf("ERROR reloading settings after notification: %v", err)
		}
	}
	return nil
}
