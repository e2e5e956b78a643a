package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/config"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/email"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/migration"
	"github.com/bahadirhanceylan58/sivaskirala-sub000/internal/services"
)

// Task types.
const (
	TypeEmailDelivery       = "email:deliver"
	TypeOwnerFieldMigration = "migration:owner_field"
)

// NewClient creates an asynq client over the shared Redis connection.
func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// TaskProcessor holds the dependencies task handlers need.
type TaskProcessor struct {
	cfg                  *config.Config
	emailSender          email.Sender
	emailTemplateService services.IEmailTemplateService
	db                   *mongo.Database
}

// NewTaskProcessor creates a new TaskProcessor.
func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	emailTemplateService services.IEmailTemplateService,
	db *mongo.Database,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:                  cfg,
		emailSender:          emailSender,
		emailTemplateService: emailTemplateService,
		db:                   db,
	}
}

// SetupServer configures the asynq server and its handler mux. The caller is
// responsible for running it.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	serverOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}

	srv := asynq.NewServer(
		serverOpt,
		asynq.Config{
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeEmailDelivery, processor.HandleEmailDeliveryTask)
	mux.HandleFunc(TypeOwnerFieldMigration, processor.HandleOwnerFieldMigrationTask)

	return srv, mux
}

// EmailTaskPayload is the payload of an email delivery task. Data values are
// substituted into the template's {{.key}} placeholders.
type EmailTaskPayload struct {
	To         string                 `json:"to"`
	TemplateID string                 `json:"template_id"`
	Locale     string                 `json:"locale,omitempty"`
	Data       map[string]interface{} `json:"data"`
}

// NewEmailDeliveryTask builds a TypeEmailDelivery task.
func NewEmailDeliveryTask(payload EmailTaskPayload) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal email task payload: %w", err)
	}
	return asynq.NewTask(TypeEmailDelivery, payloadBytes), nil
}

// HandleEmailDeliveryTask renders the stored template and delivers the email.
func (p *TaskProcessor) HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload EmailTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}

	locale := payload.Locale
	if locale == "" {
		locale = "en-US"
	}

	tmpl, err := p.emailTemplateService.GetTemplate(ctx, payload.TemplateID, locale)
	if err != nil {
		log.Printf("Error getting email template %s/%s: %v", payload.TemplateID, locale, err)
		// Missing templates will not appear on retry
		return fmt.Errorf("email template not found: %w", asynq.SkipRetry)
	}

	subjectRendered := tmpl.Subject
	bodyRendered := tmpl.Body
	for key, val := range payload.Data {
		placeholder := fmt.Sprintf("{{.%s}}", key)
		valueStr := fmt.Sprintf("%v", val)
		subjectRendered = strings.ReplaceAll(subjectRendered, placeholder, valueStr)
		bodyRendered = strings.ReplaceAll(bodyRendered, placeholder, valueStr)
	}

	fromAddress := p.cfg.SmtpFromAddress
	if fromAddress == "" {
		fromAddress = "noreply@example.com"
		log.Printf("Warning: SmtpFromAddress not configured, using fallback %s for email to %s", fromAddress, payload.To)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", payload.To))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", fromAddress))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subjectRendered))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(bodyRendered)
	sb.WriteString("\r\n")

	if err := p.emailSender.Send(ctx, []string{payload.To}, subjectRendered, []byte(sb.String())); err != nil {
		log.Printf("Email delivery failed for %s (template %s): %v", payload.To, payload.TemplateID, err)
		return err
	}

	log.Printf("Email task processed: To=%s, Template=%s", payload.To, payload.TemplateID)
	return nil
}

// NewOwnerFieldMigrationTask builds a TypeOwnerFieldMigration task. The task
// has no payload: the migration derives all of its work from record state.
func NewOwnerFieldMigrationTask() *asynq.Task {
	return asynq.NewTask(TypeOwnerFieldMigration, nil)
}

// HandleOwnerFieldMigrationTask runs the owner field rename over all listings.
// The job is idempotent, so asynq retrying it after a transient failure is
// safe.
func (p *TaskProcessor) HandleOwnerFieldMigrationTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Starting owner field migration task...")

	result, err := migration.NewOwnerFieldMigration(p.db).Run(ctx)
	if err != nil {
		log.Printf("Owner field migration aborted (checked=%d updated=%d skipped=%d errors=%d): %v",
			result.Checked, result.Updated, result.Skipped, result.Errors, err)
		return err
	}

	log.Printf("Owner field migration finished: checked=%d updated=%d skipped=%d errors=%d",
		result.Checked, result.Updated, result.Skipped, result.Errors)
	if result.Errors > 0 {
		// Re-running picks up only the records that failed
		return fmt.Errorf("owner field migration completed with %d record errors", result.Errors)
	}
	return nil
}
