package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/db"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/utils"
)

// CreateChargePayload is the input for creating a one-off charge.
type CreateChargePayload struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	DueDate     time.Time       `json:"dueDate" binding:"required"`
}

// UpdateChargePayload carries optional charge field changes.
type UpdateChargePayload struct {
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	DueDate     *time.Time       `json:"dueDate"`
}

// ChargeNotifier dispatches a reminder for a charge out of band.
type ChargeNotifier interface {
	EnqueueChargeReminder(chargeID, mentorID uuid.UUID) error
}

// IChargeService manages one-off charges attached to a mentorship,
// outside the recurring plan schedule.
type IChargeService interface {
	ListCharges(ctx context.Context, mentorshipID, mentorID uuid.UUID) ([]models.MentorshipCharge, error)
	CreateCharge(ctx context.Context, mentorshipID, mentorID uuid.UUID, payload CreateChargePayload) (*models.MentorshipCharge, error)
	UpdateCharge(ctx context.Context, chargeID, mentorID uuid.UUID, payload UpdateChargePayload) (*models.MentorshipCharge, error)
	DeleteCharge(ctx context.Context, chargeID, mentorID uuid.UUID) error
	MarkChargeAsPaid(ctx context.Context, chargeID, mentorID uuid.UUID) (*models.MentorshipCharge, error)
	SendChargeReminder(ctx context.Context, chargeID, mentorID uuid.UUID) error
}

// chargeService implements IChargeService.
type chargeService struct {
	db       *mongo.Database
	clock    utils.Clock
	notifier ChargeNotifier
}

// NewChargeService creates a new ChargeService. notifier may be nil when
// running without a background worker; SendChargeReminder then only logs.
func NewChargeService(database *mongo.Database, clock utils.Clock, notifier ChargeNotifier) IChargeService {
	return &chargeService{db: database, clock: clock, notifier: notifier}
}

// ListCharges returns a mentorship's charges, newest due date first. A
// pending charge whose due date has passed is presented as overdue without
// writing the transition back; the stored status stays pending until paid.
func (s *chargeService) ListCharges(ctx context.Context, mentorshipID, mentorID uuid.UUID) ([]models.MentorshipCharge, error) {
	cursor, err := s.db.Collection(db.ChargesCollection).Find(ctx,
		bson.M{"mentorship_id": mentorshipID, "mentor_id": mentorID},
		options.Find().SetSort(bson.D{{Key: "due_date", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query charges for mentorship %s: %w", mentorshipID, err)
	}
	var charges []models.MentorshipCharge
	if err := cursor.All(ctx, &charges); err != nil {
		return nil, fmt.Errorf("failed to decode charges for mentorship %s: %w", mentorshipID, err)
	}

	now := s.clock.Now()
	for i := range charges {
		if charges[i].Status == models.ChargeStatusPending && charges[i].DueDate.Before(now) {
			charges[i].Status = models.ChargeStatusOverdue
		}
	}
	return charges, nil
}

// CreateCharge records a new pending charge.
func (s *chargeService) CreateCharge(ctx context.Context, mentorshipID, mentorID uuid.UUID, payload CreateChargePayload) (*models.MentorshipCharge, error) {
	if payload.Description == "" {
		return nil, invalid("description is required")
	}
	if !payload.Amount.IsPositive() {
		return nil, invalid("amount must be positive")
	}

	now := s.clock.Now()
	charge := &models.MentorshipCharge{
		MentorshipID: mentorshipID,
		MentorID:     mentorID,
		Description:  payload.Description,
		Amount:       payload.Amount,
		DueDate:      payload.DueDate,
		Status:       models.ChargeStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := db.Try(func() error {
		charge.ID = uuid.New()
		_, err := s.db.Collection(db.ChargesCollection).InsertOne(ctx, charge)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert charge: %w", err)
	}
	return charge, nil
}

// UpdateCharge applies the provided fields to a charge.
func (s *chargeService) UpdateCharge(ctx context.Context, chargeID, mentorID uuid.UUID, payload UpdateChargePayload) (*models.MentorshipCharge, error) {
	set := bson.M{"updated_at": s.clock.Now()}
	if payload.Description != nil {
		set["description"] = *payload.Description
	}
	if payload.Amount != nil {
		if !payload.Amount.IsPositive() {
			return nil, invalid("amount must be positive")
		}
		set["amount"] = *payload.Amount
	}
	if payload.DueDate != nil {
		set["due_date"] = *payload.DueDate
	}

	var charge models.MentorshipCharge
	err := s.db.Collection(db.ChargesCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": chargeID, "mentor_id": mentorID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&charge)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("charge", chargeID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update charge %s: %w", chargeID, err)
	}
	return &charge, nil
}

// DeleteCharge removes a charge.
func (s *chargeService) DeleteCharge(ctx context.Context, chargeID, mentorID uuid.UUID) error {
	res, err := s.db.Collection(db.ChargesCollection).DeleteOne(ctx,
		bson.M{"_id": chargeID, "mentor_id": mentorID})
	if err != nil {
		return fmt.Errorf("failed to delete charge %s: %w", chargeID, err)
	}
	if res.DeletedCount == 0 {
		return notFound("charge", chargeID.String())
	}
	return nil
}

// MarkChargeAsPaid settles a charge.
func (s *chargeService) MarkChargeAsPaid(ctx context.Context, chargeID, mentorID uuid.UUID) (*models.MentorshipCharge, error) {
	now := s.clock.Now()
	var charge models.MentorshipCharge
	err := s.db.Collection(db.ChargesCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": chargeID, "mentor_id": mentorID},
		bson.M{"$set": bson.M{
			"status":     models.ChargeStatusPaid,
			"paid_at":    now,
			"updated_at": now,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&charge)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("charge", chargeID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark charge %s as paid: %w", chargeID, err)
	}
	return &charge, nil
}

// SendChargeReminder verifies charge ownership and hands delivery off to
// the background worker.
func (s *chargeService) SendChargeReminder(ctx context.Context, chargeID, mentorID uuid.UUID) error {
	err := s.db.Collection(db.ChargesCollection).FindOne(ctx,
		bson.M{"_id": chargeID, "mentor_id": mentorID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound("charge", chargeID.String())
	}
	if err != nil {
		return fmt.Errorf("failed to load charge %s: %w", chargeID, err)
	}

	if s.notifier == nil {
		log.Printf("No notifier configured, skipping reminder for charge %s", chargeID)
		return nil
	}
	if err := s.notifier.EnqueueChargeReminder(chargeID, mentorID); err != nil {
		return fmt.Errorf("failed to enqueue reminder for charge %s: %w", chargeID, err)
	}
	return nil
}
