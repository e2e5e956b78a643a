package models

// EmailTemplate is a notification template stored in the DB, overridable per
// locale without a redeploy.
type EmailTemplate struct {
	Base       `bson:",inline"`
	TemplateID string `bson:"template_id" json:"template_id"` // e.g. "booking_approved"
	Locale     string `bson:"locale" json:"locale"`           // e.g. "en-US", "tr-TR"
	Subject    string `bson:"subject" json:"subject"`
	Body       string `bson:"body" json:"body"`
}
