package services

import (
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/db"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/utils"
)

// SweepResult summarizes one expiration sweep.
type SweepResult struct {
	Expired  int `json:"expired"`
	Notified int `json:"notified"`
}

// ISweeperService runs the periodic maintenance pass over all mentors' data.
type ISweeperService interface {
	ProcessExpirations(ctx context.Context) (SweepResult, error)
}

// sweeperService implements ISweeperService.
type sweeperService struct {
	db    *mongo.Database
	clock utils.Clock
}

// NewSweeperService creates a new SweeperService.
func NewSweeperService(database *mongo.Database, clock utils.Clock) ISweeperService {
	return &sweeperService{db: database, clock: clock}
}

// ProcessExpirations expires every ACTIVE plan whose expiration date has
// passed and flips past-due PENDING reminders to OVERDUE. Both checks
// compare calendar days, so a plan expiring today stays active until
// tomorrow's sweep. Each plan is handled independently: one bad record
// never blocks the rest. The sweep is idempotent.
func (s *sweeperService) ProcessExpirations(ctx context.Context) (SweepResult, error) {
	result := SweepResult{}
	todayStart := utils.StartOfDay(s.clock.Now())

	cursor, err := s.db.Collection(db.PlansCollection).Find(ctx, bson.M{
		"status":          models.PlanStatusActive,
		"expiration_date": bson.M{"$lt": todayStart},
	})
	if err != nil {
		return result, fmt.Errorf("failed to query expired plans: %w", err)
	}
	var expired []models.FinancialPlan
	if err := cursor.All(ctx, &expired); err != nil {
		return result, fmt.Errorf("failed to decode expired plans: %w", err)
	}

	now := s.clock.Now()
	for _, plan := range expired {
		_, err := s.db.Collection(db.PlansCollection).UpdateOne(ctx,
			bson.M{"_id": plan.ID},
			bson.M{"$set": bson.M{"status": models.PlanStatusExpired, "updated_at": now}},
		)
		if err != nil {
			log.Printf("Sweep: failed to expire plan %s: %v", plan.ID, err)
			continue
		}
		_, err = s.db.Collection(db.MentorshipsCollection).UpdateOne(ctx,
			bson.M{"_id": plan.MentorshipID},
			bson.M{"$set": bson.M{"status": models.MentorshipStatusExpired, "updated_at": now}},
		)
		if err != nil {
			// A plan counts as expired only when both writes went through.
			log.Printf("Sweep: failed to cascade expiration to mentorship %s: %v", plan.MentorshipID, err)
			continue
		}
		result.Expired++
	}

	// Notifications for expired plans are not dispatched from the sweep
	// yet, so the count stays at zero.
	res, err := s.db.Collection(db.RemindersCollection).UpdateMany(ctx,
		bson.M{
			"status":   models.ReminderStatusPending,
			"due_date": bson.M{"$lt": todayStart},
		},
		bson.M{"$set": bson.M{"status": models.ReminderStatusOverdue, "updated_at": now}},
	)
	if err != nil {
		return result, fmt.Errorf("failed to mark overdue reminders: %w", err)
	}
	if res.ModifiedCount > 0 {
		log.Printf("Sweep: marked %d reminders overdue", res.ModifiedCount)
	}
	return result, nil
}
