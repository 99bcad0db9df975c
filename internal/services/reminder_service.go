package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/db"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/utils"
)

// ReminderFilters narrows reminder listings.
type ReminderFilters struct {
	Statuses     []models.ReminderStatus
	MenteeID     *uuid.UUID
	DueDateStart *time.Time
	DueDateEnd   *time.Time
}

// IReminderService is the read side of billing reminders, plus
// rescheduling.
type IReminderService interface {
	ListReminders(ctx context.Context, mentorID uuid.UUID, filters ReminderFilters) ([]models.BillingReminder, int64, error)
	RemindersByMentorship(ctx context.Context, mentorshipID, mentorID uuid.UUID) ([]models.BillingReminder, error)
	TodayReminders(ctx context.Context, mentorID uuid.UUID) ([]models.BillingReminder, error)
	WeekReminders(ctx context.Context, mentorID uuid.UUID) ([]models.BillingReminder, error)
	RescheduleReminder(ctx context.Context, reminderID, mentorID uuid.UUID, newDueDate time.Time) (*models.BillingReminder, error)
}

// reminderService implements IReminderService.
type reminderService struct {
	db    *mongo.Database
	clock utils.Clock
}

// NewReminderService creates a new ReminderService.
func NewReminderService(database *mongo.Database, clock utils.Clock) IReminderService {
	return &reminderService{db: database, clock: clock}
}

var dueDateAsc = options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}})

// ListReminders returns the mentor's reminders matching filters, ordered by
// due date ascending, with the total match count.
func (s *reminderService) ListReminders(ctx context.Context, mentorID uuid.UUID, filters ReminderFilters) ([]models.BillingReminder, int64, error) {
	filter := bson.M{"mentor_id": mentorID}
	if len(filters.Statuses) > 0 {
		filter["status"] = bson.M{"$in": filters.Statuses}
	}
	if filters.MenteeID != nil {
		filter["mentee_id"] = *filters.MenteeID
	}
	due := bson.M{}
	if filters.DueDateStart != nil {
		due["$gte"] = *filters.DueDateStart
	}
	if filters.DueDateEnd != nil {
		due["$lte"] = *filters.DueDateEnd
	}
	if len(due) > 0 {
		filter["due_date"] = due
	}

	collection := s.db.Collection(db.RemindersCollection)
	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reminders for mentor %s: %w", mentorID, err)
	}

	reminders, err := s.find(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return reminders, total, nil
}

// RemindersByMentorship returns every reminder of one mentorship, due date
// ascending.
func (s *reminderService) RemindersByMentorship(ctx context.Context, mentorshipID, mentorID uuid.UUID) ([]models.BillingReminder, error) {
	return s.find(ctx, bson.M{"mentorship_id": mentorshipID, "mentor_id": mentorID})
}

// TodayReminders returns the mentor's PENDING reminders due today.
func (s *reminderService) TodayReminders(ctx context.Context, mentorID uuid.UUID) ([]models.BillingReminder, error) {
	now := s.clock.Now()
	return s.find(ctx, bson.M{
		"mentor_id": mentorID,
		"status":    models.ReminderStatusPending,
		"due_date":  bson.M{"$gte": utils.StartOfDay(now), "$lte": utils.EndOfDay(now)},
	})
}

// WeekReminders returns PENDING and OVERDUE reminders due within the next
// seven days, today included.
func (s *reminderService) WeekReminders(ctx context.Context, mentorID uuid.UUID) ([]models.BillingReminder, error) {
	now := s.clock.Now()
	weekEnd := utils.EndOfDay(now.AddDate(0, 0, 7))
	return s.find(ctx, bson.M{
		"mentor_id": mentorID,
		"status":    bson.M{"$in": []models.ReminderStatus{models.ReminderStatusPending, models.ReminderStatusOverdue}},
		"due_date":  bson.M{"$gte": utils.StartOfDay(now), "$lte": weekEnd},
	})
}

// RescheduleReminder moves a reminder to a new due date.
func (s *reminderService) RescheduleReminder(ctx context.Context, reminderID, mentorID uuid.UUID, newDueDate time.Time) (*models.BillingReminder, error) {
	after := options.After
	var updated models.BillingReminder
	err := s.db.Collection(db.RemindersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": reminderID, "mentor_id": mentorID},
		bson.M{"$set": bson.M{"due_date": newDueDate, "updated_at": s.clock.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(after),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("billing reminder", reminderID.String())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reschedule reminder %s: %w", reminderID, err)
	}
	return &updated, nil
}

func (s *reminderService) find(ctx context.Context, filter bson.M) ([]models.BillingReminder, error) {
	cursor, err := s.db.Collection(db.RemindersCollection).Find(ctx, filter, dueDateAsc)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer cursor.Close(ctx)

	reminders := []models.BillingReminder{}
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders: %w", err)
	}
	return reminders, nil
}
