package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/config"
)

// RedisSender captures emails in Redis instead of delivering them. End-to-end
// tests read the captured message back by recipient and kind.
type RedisSender struct {
	client *redis.Client
	cfg    *config.Config
}

// NewRedisSender creates a capture sender over the given Redis client.
func NewRedisSender(client *redis.Client, cfg *config.Config) Sender {
	return &RedisSender{
		client: client,
		cfg:    cfg,
	}
}

// classifyKind derives a coarse notification kind from the subject so test
// code can look a message up without parsing the body.
func classifyKind(subject string) string {
	switch {
	case strings.Contains(subject, "approved"):
		return "booking_approved"
	case strings.Contains(subject, "declined"):
		return "booking_rejected"
	case strings.Contains(subject, "completed"):
		return "booking_completed"
	case strings.Contains(subject, "published"):
		return "listing_published"
	case strings.Contains(subject, "Welcome"):
		return "welcome"
	default:
		return "unknown"
	}
}

// Send stores the email under mockemail:<recipient>:<kind> with a short TTL.
func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	primaryTo := ""
	if len(to) > 0 {
		primaryTo = to[0]
	}
	kind := classifyKind(subject)

	emailData := map[string]interface{}{
		"to":      strings.Join(to, ", "),
		"from":    s.cfg.SmtpFromAddress,
		"subject": subject,
		"body":    string(rawMessage),
		"sent_at": time.Now().UTC().Format(time.RFC3339Nano),
		"kind":    kind,
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}

	key := fmt.Sprintf("mockemail:%s:%s", primaryTo, kind)
	ttl := 5 * time.Minute

	if err := s.client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
	}

	log.Printf("Mock email stored in Redis key '%s' (TTL: %v, To: %s, Subject: %s)", key, ttl, strings.Join(to, ", "), subject)
	return nil
}
