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

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/cache"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/config"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/db"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/schedule"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/utils"
)

// CreatePlanPayload carries the fields a mentor sets when establishing
// payment terms for a mentorship.
type CreatePlanPayload struct {
	MentorshipID        uuid.UUID              `json:"mentorshipId"`
	MenteeID            uuid.UUID              `json:"menteeId"`
	PaymentType         models.PaymentType     `json:"paymentType"`
	PaymentModality     models.PaymentModality `json:"paymentModality"`
	TotalAmount         decimal.Decimal        `json:"totalAmount"`
	Installments        int                    `json:"installments"`
	BillingFrequency    models.BillingFrequency `json:"billingFrequency"`
	CustomFrequencyDays *int                   `json:"customFrequencyDays,omitempty"`
	StartDate           time.Time              `json:"startDate"`
	ExpirationDate      time.Time              `json:"expirationDate"`
	Notes               string                 `json:"notes,omitempty"`
}

// UpdatePlanPayload carries optional plan changes; nil fields are untouched.
type UpdatePlanPayload struct {
	PaymentType         *models.PaymentType      `json:"paymentType,omitempty"`
	PaymentModality     *models.PaymentModality  `json:"paymentModality,omitempty"`
	TotalAmount         *decimal.Decimal         `json:"totalAmount,omitempty"`
	Installments        *int                     `json:"installments,omitempty"`
	BillingFrequency    *models.BillingFrequency `json:"billingFrequency,omitempty"`
	CustomFrequencyDays *int                     `json:"customFrequencyDays,omitempty"`
	ExpirationDate      *time.Time               `json:"expirationDate,omitempty"`
	Notes               *string                  `json:"notes,omitempty"`
	Status              *models.PlanStatus       `json:"status,omitempty"`
}

// PlanFilters narrows plan listings.
type PlanFilters struct {
	Statuses         []models.PlanStatus
	MenteeID         *uuid.UUID
	ExpiringBefore   *time.Time
	ExpiringAfter    *time.Time
	BillingDueBefore *time.Time
}

// IPlanService manages financial plans and their reminder schedules.
type IPlanService interface {
	CreatePlan(ctx context.Context, mentorID uuid.UUID, payload CreatePlanPayload) (*models.FinancialPlan, error)
	UpdatePlan(ctx context.Context, planID, mentorID uuid.UUID, payload UpdatePlanPayload) (*models.FinancialPlan, error)
	GetPlanByMentorship(ctx context.Context, mentorshipID, mentorID uuid.UUID) (*models.FinancialPlan, error)
	ListPlans(ctx context.Context, mentorID uuid.UUID, filters PlanFilters) ([]models.FinancialPlan, int64, error)
	// GenerateReminders persists the reminder batch for plan over
	// [start, end], numbering installments from firstInstallment. Insert
	// failures are logged, not returned: reminder generation is a
	// non-critical side effect of plan mutations.
	GenerateReminders(ctx context.Context, plan *models.FinancialPlan, start, end time.Time, firstInstallment int)
}

// planService implements IPlanService.
type planService struct {
	db    *mongo.Database
	cfg   *config.Config
	clock utils.Clock
	stats *cache.StatsCache
}

// NewPlanService creates a new PlanService. stats may be nil when no cache
// layer is wired (tests, one-off tools).
func NewPlanService(database *mongo.Database, cfg *config.Config, clock utils.Clock, stats *cache.StatsCache) IPlanService {
	return &planService{db: database, cfg: cfg, clock: clock, stats: stats}
}

// CreatePlan computes the installment amount and first billing date,
// persists the plan, then generates its initial reminder batch.
func (s *planService) CreatePlan(ctx context.Context, mentorID uuid.UUID, payload CreatePlanPayload) (*models.FinancialPlan, error) {
	installments := payload.Installments
	if installments < 1 {
		installments = 1
	}
	if err := s.validateTerms(payload.TotalAmount, installments, payload.BillingFrequency, payload.CustomFrequencyDays); err != nil {
		return nil, err
	}
	if !payload.ExpirationDate.After(payload.StartDate) {
		return nil, invalid("expiration date must be after start date")
	}
	installmentAmount := payload.TotalAmount.Div(decimal.NewFromInt(int64(installments)))

	now := s.clock.Now()
	nextBilling := schedule.NextBillingDate(payload.StartDate, payload.BillingFrequency, payload.CustomFrequencyDays)

	collection := s.db.Collection(db.PlansCollection)
	var plan *models.FinancialPlan

	operation := func() error {
		plan = &models.FinancialPlan{
			ID:                  uuid.New(),
			MentorshipID:        payload.MentorshipID,
			MenteeID:            payload.MenteeID,
			MentorID:            mentorID,
			PaymentType:         payload.PaymentType,
			PaymentModality:     payload.PaymentModality,
			TotalAmount:         payload.TotalAmount,
			Installments:        installments,
			InstallmentAmount:   installmentAmount,
			BillingFrequency:    payload.BillingFrequency,
			CustomFrequencyDays: payload.CustomFrequencyDays,
			StartDate:           payload.StartDate,
			ExpirationDate:      payload.ExpirationDate,
			NextBillingDate:     &nextBilling,
			Status:              models.PlanStatusActive,
			Notes:               payload.Notes,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		_, insertErr := collection.InsertOne(ctx, plan)
		return insertErr
	}

	if err := db.Try(operation); err != nil {
		return nil, fmt.Errorf("failed to insert financial plan for mentor %s: %w", mentorID, err)
	}

	s.GenerateReminders(ctx, plan, plan.StartDate, plan.ExpirationDate, 1)
	s.invalidateStats(ctx, mentorID)

	return plan, nil
}

// UpdatePlan applies the provided fields to a mentor-owned plan. A material
// change to the billing terms (total amount, installments, frequency or
// custom step) triggers regeneration of the unsettled reminder schedule.
func (s *planService) UpdatePlan(ctx context.Context, planID, mentorID uuid.UUID, payload UpdatePlanPayload) (*models.FinancialPlan, error) {
	collection := s.db.Collection(db.PlansCollection)

	var current models.FinancialPlan
	err := collection.FindOne(ctx, bson.M{"_id": planID, "mentor_id": mentorID}).Decode(&current)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("financial plan", planID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load financial plan %s: %w", planID, err)
	}

	materialChange := (payload.TotalAmount != nil && !payload.TotalAmount.Equal(current.TotalAmount)) ||
		(payload.Installments != nil && *payload.Installments != current.Installments) ||
		(payload.BillingFrequency != nil && *payload.BillingFrequency != current.BillingFrequency) ||
		(payload.CustomFrequencyDays != nil && !intPtrEqual(payload.CustomFrequencyDays, current.CustomFrequencyDays))

	total := current.TotalAmount
	if payload.TotalAmount != nil {
		total = *payload.TotalAmount
	}
	installments := current.Installments
	if payload.Installments != nil {
		installments = *payload.Installments
	}
	frequency := current.BillingFrequency
	if payload.BillingFrequency != nil {
		frequency = *payload.BillingFrequency
	}
	customDays := current.CustomFrequencyDays
	if payload.CustomFrequencyDays != nil {
		customDays = payload.CustomFrequencyDays
	}
	if err := s.validateTerms(total, installments, frequency, customDays); err != nil {
		return nil, err
	}

	update := bson.M{"updated_at": s.clock.Now()}
	if payload.PaymentType != nil {
		update["payment_type"] = *payload.PaymentType
	}
	if payload.PaymentModality != nil {
		update["payment_modality"] = *payload.PaymentModality
	}
	if payload.TotalAmount != nil {
		update["total_amount"] = *payload.TotalAmount
	}
	if payload.Installments != nil {
		update["installments"] = *payload.Installments
	}
	if payload.BillingFrequency != nil {
		update["billing_frequency"] = *payload.BillingFrequency
	}
	if payload.CustomFrequencyDays != nil {
		update["custom_frequency_days"] = *payload.CustomFrequencyDays
	}
	if payload.ExpirationDate != nil {
		update["expiration_date"] = *payload.ExpirationDate
	}
	if payload.Notes != nil {
		update["notes"] = *payload.Notes
	}
	if payload.Status != nil {
		update["status"] = *payload.Status
	}

	// The installment amount tracks totalAmount/installments whenever
	// either side changes.
	if payload.TotalAmount != nil || payload.Installments != nil {
		update["installment_amount"] = total.Div(decimal.NewFromInt(int64(installments)))
	}

	after := options.After
	var updated models.FinancialPlan
	err = collection.FindOneAndUpdate(ctx,
		bson.M{"_id": planID, "mentor_id": mentorID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("financial plan", planID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update financial plan %s: %w", planID, err)
	}

	if materialChange {
		s.regeneratePendingReminders(ctx, &updated)
	}
	s.invalidateStats(ctx, mentorID)

	return &updated, nil
}

// regeneratePendingReminders deletes the plan's unsettled reminders
// (PENDING and OVERDUE) and rebuilds the schedule from today through the
// expiration date. PAID and CANCELLED reminders are never touched, so the
// collected-money history survives every regeneration. Installment
// numbering resumes after the already-paid count.
func (s *planService) regeneratePendingReminders(ctx context.Context, plan *models.FinancialPlan) {
	reminders := s.db.Collection(db.RemindersCollection)

	_, err := reminders.DeleteMany(ctx, bson.M{
		"plan_id": plan.ID,
		"status":  bson.M{"$in": []models.ReminderStatus{models.ReminderStatusPending, models.ReminderStatusOverdue}},
	})
	if err != nil {
		log.Printf("Failed to delete pending reminders for plan %s: %v", plan.ID, err)
		return
	}

	paidCount, err := reminders.CountDocuments(ctx, bson.M{
		"plan_id": plan.ID,
		"status":  models.ReminderStatusPaid,
	})
	if err != nil {
		log.Printf("Failed to count paid reminders for plan %s: %v", plan.ID, err)
		paidCount = 0
	}

	start := utils.StartOfDay(s.clock.Now())
	s.GenerateReminders(ctx, plan, start, plan.ExpirationDate, int(paidCount)+1)
}

// GenerateReminders persists the schedule batch for plan. See IPlanService.
func (s *planService) GenerateReminders(ctx context.Context, plan *models.FinancialPlan, start, end time.Time, firstInstallment int) {
	customDays := plan.CustomFrequencyDays
	if customDays == nil && plan.BillingFrequency == models.FrequencyCustom {
		d := s.cfg.DefaultCustomDays
		customDays = &d
	}

	entries := schedule.Generate(start, end, plan.BillingFrequency, customDays,
		plan.InstallmentAmount, plan.Installments, firstInstallment)
	if len(entries) > s.cfg.ReminderCap {
		entries = entries[:s.cfg.ReminderCap]
	}
	if len(entries) == 0 {
		return
	}

	now := s.clock.Now()
	docs := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, models.BillingReminder{
			ID:                uuid.New(),
			PlanID:            plan.ID,
			MentorshipID:      plan.MentorshipID,
			MenteeID:          plan.MenteeID,
			MentorID:          plan.MentorID,
			DueDate:           e.DueDate,
			Amount:            e.Amount,
			InstallmentNumber: e.InstallmentNumber,
			TotalInstallments: e.TotalInstallments,
			Status:            models.ReminderStatusPending,
			CreatedAt:         now,
			UpdatedAt:         now,
		})
	}

	if _, err := s.db.Collection(db.RemindersCollection).InsertMany(ctx, docs); err != nil {
		log.Printf("Failed to insert %d billing reminders for plan %s: %v", len(docs), plan.ID, err)
	}
}

// GetPlanByMentorship finds the mentor-owned plan linked to a mentorship.
func (s *planService) GetPlanByMentorship(ctx context.Context, mentorshipID, mentorID uuid.UUID) (*models.FinancialPlan, error) {
	var plan models.FinancialPlan
	err := s.db.Collection(db.PlansCollection).FindOne(ctx, bson.M{
		"mentorship_id": mentorshipID,
		"mentor_id":     mentorID,
	}).Decode(&plan)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("financial plan for mentorship", mentorshipID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan for mentorship %s: %w", mentorshipID, err)
	}
	return &plan, nil
}

// ListPlans returns the mentor's plans matching filters, ordered by
// expiration date ascending, along with the total match count.
func (s *planService) ListPlans(ctx context.Context, mentorID uuid.UUID, filters PlanFilters) ([]models.FinancialPlan, int64, error) {
	filter := bson.M{"mentor_id": mentorID}
	if len(filters.Statuses) > 0 {
		filter["status"] = bson.M{"$in": filters.Statuses}
	}
	if filters.MenteeID != nil {
		filter["mentee_id"] = *filters.MenteeID
	}
	expiration := bson.M{}
	if filters.ExpiringBefore != nil {
		expiration["$lte"] = *filters.ExpiringBefore
	}
	if filters.ExpiringAfter != nil {
		expiration["$gte"] = *filters.ExpiringAfter
	}
	if len(expiration) > 0 {
		filter["expiration_date"] = expiration
	}
	if filters.BillingDueBefore != nil {
		filter["next_billing_date"] = bson.M{"$lte": *filters.BillingDueBefore}
	}

	collection := s.db.Collection(db.PlansCollection)
	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count plans for mentor %s: %w", mentorID, err)
	}

	cursor, err := collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "expiration_date", Value: 1}}))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list plans for mentor %s: %w", mentorID, err)
	}
	defer cursor.Close(ctx)

	plans := []models.FinancialPlan{}
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, 0, fmt.Errorf("failed to decode plans for mentor %s: %w", mentorID, err)
	}
	return plans, total, nil
}

// validateTerms checks the billing-term invariants shared by create and
// update: a positive total, at least one installment, a known frequency,
// and a day step when the frequency is CUSTOM.
func (s *planService) validateTerms(total decimal.Decimal, installments int, frequency models.BillingFrequency, customDays *int) error {
	if total.LessThanOrEqual(decimal.Zero) {
		return invalid("total amount must be positive")
	}
	if installments < 1 {
		return invalid("installments must be at least 1")
	}
	if !frequency.Valid() {
		return invalid("unknown billing frequency %q", frequency)
	}
	if frequency == models.FrequencyCustom && (customDays == nil || *customDays <= 0) {
		return invalid("custom frequency requires a positive customFrequencyDays")
	}
	return nil
}

func (s *planService) invalidateStats(ctx context.Context, mentorID uuid.UUID) {
	if err := s.stats.Invalidate(ctx, mentorID); err != nil {
		log.Printf("Failed to invalidate stats cache for mentor %s: %v", mentorID, err)
	}
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
