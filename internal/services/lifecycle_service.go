package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/cache"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/db"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/utils"
)

// ILifecycleService transitions a plan through its statuses and mirrors
// each transition onto the linked mentorship. The two writes are sequential
// and non-transactional: a crash in between leaves the mentorship one
// sweep behind, never money unaccounted for.
type ILifecycleService interface {
	SuspendPlan(ctx context.Context, mentorshipID, mentorID uuid.UUID, reason string) error
	ReactivatePlan(ctx context.Context, mentorshipID, mentorID uuid.UUID, newExpirationDate *time.Time) error
	ExpirePlan(ctx context.Context, mentorshipID, mentorID uuid.UUID) error
	ExtendPlan(ctx context.Context, mentorshipID, mentorID uuid.UUID, newExpirationDate time.Time, regenerateReminders bool) error
}

// lifecycleService implements ILifecycleService.
type lifecycleService struct {
	db    *mongo.Database
	clock utils.Clock
	plans IPlanService
	stats *cache.StatsCache
}

// NewLifecycleService creates a new LifecycleService. It needs the plan
// service for reminder regeneration on extension.
func NewLifecycleService(database *mongo.Database, clock utils.Clock, plans IPlanService, stats *cache.StatsCache) ILifecycleService {
	return &lifecycleService{db: database, clock: clock, plans: plans, stats: stats}
}

// SuspendPlan pauses billing for a mentorship.
func (s *lifecycleService) SuspendPlan(ctx context.Context, mentorshipID, mentorID uuid.UUID, reason string) error {
	now := s.clock.Now()
	set := bson.M{"status": models.PlanStatusSuspended, "updated_at": now}
	if reason != "" {
		set["notes"] = reason
	}
	if err := s.updatePlan(ctx, mentorshipID, mentorID, set); err != nil {
		return err
	}
	s.cascadeMentorship(ctx, mentorshipID, mentorID, bson.M{"status": models.MentorshipStatusSuspended, "updated_at": now})
	s.invalidateStats(ctx, mentorID)
	return nil
}

// ReactivatePlan resumes billing, optionally with a fresh expiration date.
func (s *lifecycleService) ReactivatePlan(ctx context.Context, mentorshipID, mentorID uuid.UUID, newExpirationDate *time.Time) error {
	now := s.clock.Now()
	set := bson.M{"status": models.PlanStatusActive, "updated_at": now}
	if newExpirationDate != nil {
		set["expiration_date"] = *newExpirationDate
	}
	if err := s.updatePlan(ctx, mentorshipID, mentorID, set); err != nil {
		return err
	}

	cascade := bson.M{"status": models.MentorshipStatusActive, "updated_at": now}
	if newExpirationDate != nil {
		cascade["end_date"] = *newExpirationDate
	}
	s.cascadeMentorship(ctx, mentorshipID, mentorID, cascade)
	s.invalidateStats(ctx, mentorID)
	return nil
}

// ExpirePlan manually expires a mentorship's plan.
func (s *lifecycleService) ExpirePlan(ctx context.Context, mentorshipID, mentorID uuid.UUID) error {
	now := s.clock.Now()
	if err := s.updatePlan(ctx, mentorshipID, mentorID, bson.M{"status": models.PlanStatusExpired, "updated_at": now}); err != nil {
		return err
	}
	s.cascadeMentorship(ctx, mentorshipID, mentorID, bson.M{"status": models.MentorshipStatusExpired, "updated_at": now})
	s.invalidateStats(ctx, mentorID)
	return nil
}

// ExtendPlan pushes the expiration date out. When regenerateReminders is
// set, only future PENDING reminders are replaced: reminders already
// overdue keep their dates so the debt stays visible. This is deliberately
// narrower than the regeneration a terms change triggers.
func (s *lifecycleService) ExtendPlan(ctx context.Context, mentorshipID, mentorID uuid.UUID, newExpirationDate time.Time, regenerateReminders bool) error {
	var plan models.FinancialPlan
	err := s.db.Collection(db.PlansCollection).FindOne(ctx, bson.M{
		"mentorship_id": mentorshipID,
		"mentor_id":     mentorID,
	}).Decode(&plan)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound("financial plan for mentorship", mentorshipID.String())
	}
	if err != nil {
		return fmt.Errorf("failed to load plan for mentorship %s: %w", mentorshipID, err)
	}

	now := s.clock.Now()
	if err := s.updatePlan(ctx, mentorshipID, mentorID, bson.M{"expiration_date": newExpirationDate, "updated_at": now}); err != nil {
		return err
	}
	s.cascadeMentorship(ctx, mentorshipID, mentorID, bson.M{"end_date": newExpirationDate, "updated_at": now})

	if regenerateReminders {
		_, err := s.db.Collection(db.RemindersCollection).DeleteMany(ctx, bson.M{
			"plan_id":  plan.ID,
			"status":   models.ReminderStatusPending,
			"due_date": bson.M{"$gt": now},
		})
		if err != nil {
			log.Printf("Failed to delete future reminders for plan %s on extension: %v", plan.ID, err)
		} else {
			plan.ExpirationDate = newExpirationDate
			s.plans.GenerateReminders(ctx, &plan, now, newExpirationDate, 1)
		}
	}

	s.invalidateStats(ctx, mentorID)
	return nil
}

func (s *lifecycleService) updatePlan(ctx context.Context, mentorshipID, mentorID uuid.UUID, set bson.M) error {
	res, err := s.db.Collection(db.PlansCollection).UpdateOne(ctx,
		bson.M{"mentorship_id": mentorshipID, "mentor_id": mentorID},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to update plan for mentorship %s: %w", mentorshipID, err)
	}
	if res.MatchedCount == 0 {
		return notFound("financial plan for mentorship", mentorshipID.String())
	}
	return nil
}

// cascadeMentorship mirrors a status change onto the mentorship record.
// The cascade is best-effort: the plan is the source of truth for billing,
// and a missed mentorship write is caught by the next sweep.
func (s *lifecycleService) cascadeMentorship(ctx context.Context, mentorshipID, mentorID uuid.UUID, set bson.M) {
	_, err := s.db.Collection(db.MentorshipsCollection).UpdateOne(ctx,
		bson.M{"_id": mentorshipID, "mentor_id": mentorID},
		bson.M{"$set": set},
	)
	if err != nil {
		log.Printf("Failed to cascade status to mentorship %s: %v", mentorshipID, err)
	}
}

func (s *lifecycleService) invalidateStats(ctx context.Context, mentorID uuid.UUID) {
	if err := s.stats.Invalidate(ctx, mentorID); err != nil {
		log.Printf("Failed to invalidate stats cache for mentor %s: %v", mentorID, err)
	}
}
