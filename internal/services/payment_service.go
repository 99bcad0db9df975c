package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/cache"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/config"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/db"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/schedule"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/utils"
)

// IPaymentService is the reminder payment state machine: confirm, revert
// and cancel, plus the payment history read side.
type IPaymentService interface {
	ConfirmPayment(ctx context.Context, reminderID, mentorID uuid.UUID, notes string) (*models.BillingReminder, *models.PaymentHistory, error)
	RevertPayment(ctx context.Context, reminderID, mentorID uuid.UUID) (*models.BillingReminder, error)
	CancelReminder(ctx context.Context, reminderID, mentorID uuid.UUID) error
	ListPayments(ctx context.Context, mentorID uuid.UUID, menteeID *uuid.UUID, limit int) ([]models.PaymentHistory, error)
}

// paymentService implements IPaymentService.
type paymentService struct {
	db    *mongo.Database
	cfg   *config.Config
	clock utils.Clock
	stats *cache.StatsCache
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(database *mongo.Database, cfg *config.Config, clock utils.Clock, stats *cache.StatsCache) IPaymentService {
	return &paymentService{db: database, cfg: cfg, clock: clock, stats: stats}
}

// ConfirmPayment marks a reminder as PAID and records the payment. The
// plan's next billing date is stepped from the confirmation instant, not
// from the reminder's due date: a late payment pushes the following
// obligation out rather than stacking it.
func (s *paymentService) ConfirmPayment(ctx context.Context, reminderID, mentorID uuid.UUID, notes string) (*models.BillingReminder, *models.PaymentHistory, error) {
	reminders := s.db.Collection(db.RemindersCollection)

	var reminder models.BillingReminder
	err := reminders.FindOne(ctx, bson.M{"_id": reminderID, "mentor_id": mentorID}).Decode(&reminder)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil, notFound("billing reminder", reminderID.String())
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load reminder %s: %w", reminderID, err)
	}

	switch reminder.Status {
	case models.ReminderStatusPaid:
		return nil, nil, invalid("reminder %s is already paid", reminderID)
	case models.ReminderStatusCancelled:
		return nil, nil, invalid("reminder %s is cancelled", reminderID)
	}

	// The plan supplies payment type and billing step. A dangling reminder
	// (plan row gone) still confirms, with defaults.
	var plan models.FinancialPlan
	planFound := true
	err = s.db.Collection(db.PlansCollection).FindOne(ctx, bson.M{"_id": reminder.PlanID}).Decode(&plan)
	if errors.Is(err, mongo.ErrNoDocuments) {
		planFound = false
		log.Printf("Reminder %s references missing plan %s, confirming with defaults", reminderID, reminder.PlanID)
	} else if err != nil {
		return nil, nil, fmt.Errorf("failed to load plan %s: %w", reminder.PlanID, err)
	}

	now := s.clock.Now()

	set := bson.M{
		"status":       models.ReminderStatusPaid,
		"paid_at":      now,
		"confirmed_by": mentorID,
		"updated_at":   now,
	}
	if notes != "" {
		set["notes"] = notes
	}

	after := options.After
	var updated models.BillingReminder
	err = reminders.FindOneAndUpdate(ctx,
		bson.M{"_id": reminderID, "mentor_id": mentorID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&updated)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to mark reminder %s paid: %w", reminderID, err)
	}

	paymentType := models.PaymentTypeOther
	if planFound {
		paymentType = plan.PaymentType
	}

	payments := s.db.Collection(db.PaymentsCollection)
	var payment *models.PaymentHistory
	operation := func() error {
		rid := reminderID
		payment = &models.PaymentHistory{
			ID:                uuid.New(),
			PlanID:            reminder.PlanID,
			MentorshipID:      reminder.MentorshipID,
			MenteeID:          reminder.MenteeID,
			MentorID:          mentorID,
			Amount:            reminder.Amount,
			PaymentType:       paymentType,
			InstallmentNumber: reminder.InstallmentNumber,
			PaymentDate:       now,
			ConfirmedAt:       now,
			ConfirmedBy:       mentorID,
			ReminderID:        &rid,
			Notes:             notes,
			CreatedAt:         now,
		}
		_, insertErr := payments.InsertOne(ctx, payment)
		return insertErr
	}
	if err := db.Try(operation); err != nil {
		return nil, nil, fmt.Errorf("failed to record payment for reminder %s: %w", reminderID, err)
	}

	if planFound {
		frequency := plan.BillingFrequency
		nextBilling := schedule.NextBillingDate(now, frequency, plan.CustomFrequencyDays)
		_, err = s.db.Collection(db.PlansCollection).UpdateOne(ctx,
			bson.M{"_id": plan.ID},
			bson.M{"$set": bson.M{
				"last_payment_date": now,
				"next_billing_date": nextBilling,
				"updated_at":        now,
			}},
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to roll plan %s billing dates: %w", plan.ID, err)
		}
	}

	s.invalidateStats(ctx, mentorID)
	return &updated, payment, nil
}

// RevertPayment undoes a confirmation: the reminder returns to OVERDUE when
// its due date's calendar day has passed, PENDING otherwise, and the
// associated payment row is deleted.
func (s *paymentService) RevertPayment(ctx context.Context, reminderID, mentorID uuid.UUID) (*models.BillingReminder, error) {
	reminders := s.db.Collection(db.RemindersCollection)

	var reminder models.BillingReminder
	err := reminders.FindOne(ctx, bson.M{"_id": reminderID, "mentor_id": mentorID}).Decode(&reminder)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("billing reminder", reminderID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder %s: %w", reminderID, err)
	}

	if reminder.Status != models.ReminderStatusPaid {
		return nil, invalid("reminder %s is not marked as paid", reminderID)
	}

	now := s.clock.Now()
	target := models.ReminderStatusPending
	if utils.BeforeDay(reminder.DueDate, now) {
		target = models.ReminderStatusOverdue
	}

	after := options.After
	var updated models.BillingReminder
	err = reminders.FindOneAndUpdate(ctx,
		bson.M{"_id": reminderID, "mentor_id": mentorID},
		bson.M{
			"$set":   bson.M{"status": target, "updated_at": now},
			"$unset": bson.M{"paid_at": "", "confirmed_by": ""},
		},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&updated)
	if err != nil {
		return nil, fmt.Errorf("failed to revert reminder %s: %w", reminderID, err)
	}

	_, err = s.db.Collection(db.PaymentsCollection).DeleteMany(ctx, bson.M{
		"reminder_id": reminderID,
		"mentor_id":   mentorID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete payment record for reminder %s: %w", reminderID, err)
	}

	s.invalidateStats(ctx, mentorID)
	return &updated, nil
}

// CancelReminder transitions a reminder to CANCELLED. No state
// precondition: cancelling twice is a no-op, and CANCELLED is terminal.
func (s *paymentService) CancelReminder(ctx context.Context, reminderID, mentorID uuid.UUID) error {
	res, err := s.db.Collection(db.RemindersCollection).UpdateOne(ctx,
		bson.M{"_id": reminderID, "mentor_id": mentorID},
		bson.M{"$set": bson.M{"status": models.ReminderStatusCancelled, "updated_at": s.clock.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to cancel reminder %s: %w", reminderID, err)
	}
	if res.MatchedCount == 0 {
		return notFound("billing reminder", reminderID.String())
	}
	s.invalidateStats(ctx, mentorID)
	return nil
}

// ListPayments returns the mentor's payment history, newest first,
// optionally narrowed to one mentee. limit <= 0 uses the configured default.
func (s *paymentService) ListPayments(ctx context.Context, mentorID uuid.UUID, menteeID *uuid.UUID, limit int) ([]models.PaymentHistory, error) {
	if limit <= 0 {
		limit = s.cfg.PaymentHistoryLimit
	}
	filter := bson.M{"mentor_id": mentorID}
	if menteeID != nil {
		filter["mentee_id"] = *menteeID
	}

	cursor, err := s.db.Collection(db.PaymentsCollection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "payment_date", Value: -1}}).SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("failed to list payments for mentor %s: %w", mentorID, err)
	}
	defer cursor.Close(ctx)

	payments := []models.PaymentHistory{}
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments for mentor %s: %w", mentorID, err)
	}
	return payments, nil
}

func (s *paymentService) invalidateStats(ctx context.Context, mentorID uuid.UUID) {
	if err := s.stats.Invalidate(ctx, mentorID); err != nil {
		log.Printf("Failed to invalidate stats cache for mentor %s: %v", mentorID, err)
	}
}
