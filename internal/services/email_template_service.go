package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/models"
)

// Built-in fallbacks used when a template is not stored in the database.
var defaultEmailTemplates = map[string]models.EmailTemplate{
	"welcome": {
		TemplateID: "welcome",
		Locale:     "en-US",
		Subject:    "Welcome to {{.app_name}}",
		Body:       "Hi {{.name}}, your account is ready. Browse listings and start renting.",
	},
	"booking_approved": {
		TemplateID: "booking_approved",
		Locale:     "en-US",
		Subject:    "Your booking was approved",
		Body:       "Good news {{.name}}: your booking for \"{{.listing_title}}\" ({{.days}} days, {{.total_price}}) was approved.",
	},
	"booking_rejected": {
		TemplateID: "booking_rejected",
		Locale:     "en-US",
		Subject:    "Your booking was declined",
		Body:       "Sorry {{.name}}, your booking for \"{{.listing_title}}\" was declined.",
	},
	"booking_completed": {
		TemplateID: "booking_completed",
		Locale:     "en-US",
		Subject:    "Your rental is completed",
		Body:       "Your rental of \"{{.listing_title}}\" is marked completed. Thanks for using {{.app_name}}.",
	},
	"listing_published": {
		TemplateID: "listing_published",
		Locale:     "en-US",
		Subject:    "Your listing was published",
		Body:       "\"{{.listing_title}}\" passed review and is now visible to renters.",
	},
}

// IEmailTemplateService defines the interface for email template lookup.
type IEmailTemplateService interface {
	GetTemplate(ctx context.Context, templateID, locale string) (*models.EmailTemplate, error)
}

const emailTemplatesCollection = "email_templates"

// EmailTemplateService reads and writes notification templates.
type EmailTemplateService struct {
	db *mongo.Database
}

// NewEmailTemplateService creates a new EmailTemplateService.
func NewEmailTemplateService(db *mongo.Database) *EmailTemplateService {
	return &EmailTemplateService{db: db}
}

// GetTemplate retrieves a template by ID and locale, falling back to the
// built-in default for the ID when no document exists.
func (s *EmailTemplateService) GetTemplate(ctx context.Context, templateID string, locale string) (*models.EmailTemplate, error) {
	filter := bson.M{
		"template_id": templateID,
		"locale":      locale,
	}

	var template models.EmailTemplate
	err := s.db.Collection(emailTemplatesCollection).FindOne(ctx, filter).Decode(&template)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			if defaultTemplate, ok := defaultEmailTemplates[templateID]; ok {
				return &defaultTemplate, nil
			}
			return nil, fmt.Errorf("template not found: %s (locale: %s)", templateID, locale)
		}
		return nil, fmt.Errorf("error retrieving template: %w", err)
	}

	return &template, nil
}

// SaveTemplate upserts a template keyed by (template_id, locale).
func (s *EmailTemplateService) SaveTemplate(ctx context.Context, template *models.EmailTemplate) error {
	filter := bson.M{
		"template_id": template.TemplateID,
		"locale":      template.Locale,
	}

	update := bson.M{"$set": template}
	opts := options.Update().SetUpsert(true)

	if _, err := s.db.Collection(emailTemplatesCollection).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("error saving template: %w", err)
	}
	return nil
}

// DeleteTemplate removes a stored template; lookups fall back to defaults.
func (s *EmailTemplateService) DeleteTemplate(ctx context.Context, templateID string, locale string) error {
	filter := bson.M{
		"template_id": templateID,
		"locale":      locale,
	}
	if _, err := s.db.Collection(emailTemplatesCollection).DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("error deleting template: %w", err)
	}
	return nil
}
