package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/cache"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/db"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/utils"
)

// FinancialStats is the per-mentor dashboard snapshot.
type FinancialStats struct {
	TotalMentees      int             `json:"totalMentees"`
	ActiveMentees     int             `json:"activeMentees"`
	ExpiredMentees    int             `json:"expiredMentees"`
	SuspendedMentees  int             `json:"suspendedMentees"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	PendingPayments   decimal.Decimal `json:"pendingPayments"`
	OverduePayments   decimal.Decimal `json:"overduePayments"`
	PendingReminders  int             `json:"pendingReminders"`
	OverdueReminders  int             `json:"overdueReminders"`
	TodayReminders    int             `json:"todayReminders"`
	WeekReminders     int             `json:"weekReminders"`
	ExpiringThisWeek  int             `json:"expiringThisWeek"`
	ExpiringThisMonth int             `json:"expiringThisMonth"`
}

// IStatsService aggregates a mentor's billing data into dashboard counters.
type IStatsService interface {
	GetFinancialStats(ctx context.Context, mentorID uuid.UUID) (*FinancialStats, error)
}

// statsService implements IStatsService.
type statsService struct {
	db    *mongo.Database
	clock utils.Clock
	cache *cache.StatsCache
}

// NewStatsService creates a new StatsService.
func NewStatsService(database *mongo.Database, clock utils.Clock, statsCache *cache.StatsCache) IStatsService {
	return &statsService{db: database, clock: clock, cache: statsCache}
}

// GetFinancialStats returns the mentor's snapshot, serving from the cache
// when a fresh copy exists. A reminder counts as overdue when its due
// date's calendar day precedes today, or when the sweep already marked
// it OVERDUE; a reminder due today is pending, not overdue.
func (s *statsService) GetFinancialStats(ctx context.Context, mentorID uuid.UUID) (*FinancialStats, error) {
	var cached FinancialStats
	err := s.cache.Get(ctx, mentorID, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Printf("Stats cache read failed for mentor %s: %v", mentorID, err)
	}

	stats, err := s.compute(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, mentorID, stats); err != nil {
		log.Printf("Stats cache write failed for mentor %s: %v", mentorID, err)
	}
	return stats, nil
}

func (s *statsService) compute(ctx context.Context, mentorID uuid.UUID) (*FinancialStats, error) {
	now := s.clock.Now()
	todayStart := utils.StartOfDay(now)
	todayEnd := utils.EndOfDay(now)
	weekFromNow := now.AddDate(0, 0, 7)
	monthFromNow := now.AddDate(0, 0, 30)

	stats := &FinancialStats{}

	cursor, err := s.db.Collection(db.PlansCollection).Find(ctx, bson.M{"mentor_id": mentorID})
	if err != nil {
		return nil, fmt.Errorf("failed to query plans for stats: %w", err)
	}
	var plans []models.FinancialPlan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("failed to decode plans for stats: %w", err)
	}
	for _, p := range plans {
		stats.TotalMentees++
		switch p.Status {
		case models.PlanStatusActive:
			stats.ActiveMentees++
			if !p.ExpirationDate.After(weekFromNow) {
				stats.ExpiringThisWeek++
			}
			if !p.ExpirationDate.After(monthFromNow) {
				stats.ExpiringThisMonth++
			}
		case models.PlanStatusExpired:
			stats.ExpiredMentees++
		case models.PlanStatusSuspended:
			stats.SuspendedMentees++
		}
	}

	cursor, err = s.db.Collection(db.RemindersCollection).Find(ctx, bson.M{"mentor_id": mentorID})
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders for stats: %w", err)
	}
	var reminders []models.BillingReminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders for stats: %w", err)
	}
	for _, r := range reminders {
		switch r.Status {
		case models.ReminderStatusPending:
			stats.PendingReminders++
			stats.PendingPayments = stats.PendingPayments.Add(r.Amount)
			if utils.BeforeDay(r.DueDate, now) {
				stats.OverdueReminders++
				stats.OverduePayments = stats.OverduePayments.Add(r.Amount)
			}
			if !r.DueDate.Before(todayStart) && !r.DueDate.After(todayEnd) {
				stats.TodayReminders++
			}
			if !r.DueDate.After(weekFromNow) {
				stats.WeekReminders++
			}
		case models.ReminderStatusOverdue:
			stats.OverdueReminders++
			stats.OverduePayments = stats.OverduePayments.Add(r.Amount)
		}
	}

	cursor, err = s.db.Collection(db.PaymentsCollection).Find(ctx, bson.M{"mentor_id": mentorID})
	if err != nil {
		return nil, fmt.Errorf("failed to query payments for stats: %w", err)
	}
	var payments []models.PaymentHistory
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments for stats: %w", err)
	}
	for _, p := range payments {
		stats.TotalRevenue = stats.TotalRevenue.Add(p.Amount)
	}
	return stats, nil
}
