package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/config"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/db"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/email"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/services"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/utils"
)

// TaskType defines the type of a background task.
const (
	TypeExpirationSweep = "billing:expiration:sweep"
	TypeChargeReminder  = "billing:charge:remind"
)

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	clientOpt := asynq.RedisClientOpt{
		Addr:     rdb.Options().Addr,
		Password: rdb.Options().Password,
		DB:       rdb.Options().DB,
	}
	return asynq.NewClient(clientOpt)
}

// Dispatcher wraps the asynq client with typed enqueue helpers. It
// implements services.ChargeNotifier.
type Dispatcher struct {
	client *asynq.Client
	cfg    *config.Config
}

func NewDispatcher(client *asynq.Client, cfg *config.Config) *Dispatcher {
	return &Dispatcher{client: client, cfg: cfg}
}

// ChargeReminderPayload is the payload of a charge reminder task.
type ChargeReminderPayload struct {
	ChargeID string `json:"charge_id"`
	MentorID string `json:"mentor_id"`
}

// EnqueueChargeReminder schedules reminder delivery for a charge.
func (d *Dispatcher) EnqueueChargeReminder(chargeID, mentorID uuid.UUID) error {
	payload, err := json.Marshal(ChargeReminderPayload{
		ChargeID: chargeID.String(),
		MentorID: mentorID.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal charge reminder payload: %w", err)
	}
	task := asynq.NewTask(TypeChargeReminder, payload)
	info, err := d.client.Enqueue(task, asynq.ProcessIn(d.cfg.ChargeReminderTaskDelay))
	if err != nil {
		return fmt.Errorf("failed to enqueue charge reminder: %w", err)
	}
	log.Printf("Enqueued charge reminder task %s for charge %s", info.ID, chargeID)
	return nil
}

// EnqueueExpirationSweep schedules the next expiration sweep in delay.
// The sweep task re-enqueues itself, so this is normally called once at
// worker startup.
func (d *Dispatcher) EnqueueExpirationSweep(delay time.Duration) error {
	task := asynq.NewTask(TypeExpirationSweep, nil)
	info, err := d.client.Enqueue(task, asynq.ProcessIn(delay),
		asynq.Queue(d.cfg.ExpirationSweepQueueName),
		asynq.TaskID("expiration-sweep"))
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		// A sweep is already scheduled.
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue expiration sweep: %w", err)
	}
	log.Printf("Enqueued expiration sweep task %s to run in %v", info.ID, delay)
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg         *config.Config
	emailSender email.Sender
	sweeper     services.ISweeperService
	db          *mongo.Database
	dispatcher  *Dispatcher
	clock       utils.Clock
}

func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	sweeper services.ISweeperService,
	database *mongo.Database,
	dispatcher *Dispatcher,
	clock utils.Clock,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:         cfg,
		emailSender: emailSender,
		sweeper:     sweeper,
		db:          database,
		dispatcher:  dispatcher,
		clock:       clock,
	}
}

// SetupServer configures and returns an Asynq server with the background
// handlers registered. The caller runs it, typically in its own goroutine,
// and shuts it down on exit. Returns nil when not running as a worker.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isBgWorker bool) (*asynq.Server, *asynq.ServeMux) {
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
				processor.cfg.ExpirationSweepQueueName: 2,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				fmt.Printf("[Asynq Error] Task Type: %s, Payload: %s, Error: %v\n", task.Type(), string(task.Payload()), err)
			}),
		},
	)

	mux := asynq.NewServeMux()

	if !isBgWorker {
		fmt.Println("Running in API mode, no task server started.")
		return nil, nil
	}

	mux.HandleFunc(TypeExpirationSweep, processor.HandleExpirationSweepTask)
	mux.HandleFunc(TypeChargeReminder, processor.HandleChargeReminderTask)
	fmt.Println("Registered background task handlers (sweep & charge reminders).")

	return srv, mux
}

// --- Task Handlers ---

// HandleExpirationSweepTask runs one expiration sweep and re-enqueues
// itself to run again after the configured interval, so the sweep keeps
// running as long as a worker is up.
func (p *TaskProcessor) HandleExpirationSweepTask(ctx context.Context, t *asynq.Task) error {
	log.Println("Starting expiration sweep task...")

	result, err := p.sweeper.ProcessExpirations(ctx)
	if err != nil {
		log.Printf("Expiration sweep failed: %v", err)
		return err
	}
	log.Printf("Expiration sweep finished. Expired %d plans, notified %d.", result.Expired, result.Notified)

	if err := p.dispatcher.EnqueueExpirationSweep(p.cfg.SweepInterval); err != nil {
		log.Printf("ERROR failed to re-enqueue expiration sweep: %v", err)
		return err
	}
	return nil
}

// HandleChargeReminderTask delivers a reminder email for a charge. The
// charge is re-read at delivery time: one paid or deleted in the meantime
// is silently skipped.
func (p *TaskProcessor) HandleChargeReminderTask(ctx context.Context, t *asynq.Task) error {
	var payload ChargeReminderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal charge reminder payload: %v: %w", err, asynq.SkipRetry)
	}

	chargeID, err := uuid.Parse(payload.ChargeID)
	if err != nil {
		log.Printf("Invalid ChargeID in reminder task payload: %s", payload.ChargeID)
		return fmt.Errorf("invalid charge ID in payload: %w", asynq.SkipRetry)
	}
	mentorID, err := uuid.Parse(payload.MentorID)
	if err != nil {
		log.Printf("Invalid MentorID in reminder task payload: %s", payload.MentorID)
		return fmt.Errorf("invalid mentor ID in payload: %w", asynq.SkipRetry)
	}

	var charge models.MentorshipCharge
	err = p.db.Collection(db.ChargesCollection).FindOne(ctx,
		bson.M{"_id": chargeID, "mentor_id": mentorID}).Decode(&charge)
	if errors.Is(err, mongo.ErrNoDocuments) {
		log.Printf("Charge %s no longer exists, skipping reminder.", chargeID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load charge %s: %w", chargeID, err)
	}
	if charge.Status == models.ChargeStatusPaid {
		log.Printf("Charge %s already paid, skipping reminder.", chargeID)
		return nil
	}

	subject := fmt.Sprintf("Lembrete de cobrança: %s", charge.Description)
	rawMessage := buildReminderMessage(p.cfg.SmtpFromAddress, subject, &charge, p.clock.Now())
	if err := p.emailSender.Send(ctx, []string{p.cfg.SmtpFromAddress}, subject, rawMessage); err != nil {
		log.Printf("Charge reminder delivery failed for %s (will retry): %v", chargeID, err)
		return err
	}

	log.Printf("Charge reminder delivered for charge %s", chargeID)
	return nil
}

func buildReminderMessage(from, subject string, charge *models.MentorshipCharge, sentAt time.Time) []byte {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", from))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("Date: " + sentAt.Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(fmt.Sprintf("Cobrança: %s\r\n", charge.Description))
	sb.WriteString(fmt.Sprintf("Valor: %s\r\n", charge.Amount.StringFixed(2)))
	sb.WriteString(fmt.Sprintf("Vencimento: %s\r\n", charge.DueDate.Format("02/01/2006")))
	return []byte(sb.String())
}
