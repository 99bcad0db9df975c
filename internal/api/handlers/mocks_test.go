package handlers_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/services"
)

// --- Mocks ---

// MockPlanService
type MockPlanService struct {
	mock.Mock
}

func (m *MockPlanService) CreatePlan(ctx context.Context, mentorID uuid.UUID, payload services.CreatePlanPayload) (*models.FinancialPlan, error) {
	args := m.Called(ctx, mentorID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FinancialPlan), args.Error(1)
}

func (m *MockPlanService) UpdatePlan(ctx context.Context, planID, mentorID uuid.UUID, payload services.UpdatePlanPayload) (*models.FinancialPlan, error) {
	args := m.Called(ctx, planID, mentorID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FinancialPlan), args.Error(1)
}

func (m *MockPlanService) GetPlanByMentorship(ctx context.Context, mentorshipID, mentorID uuid.UUID) (*models.FinancialPlan, error) {
	args := m.Called(ctx, mentorshipID, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FinancialPlan), args.Error(1)
}

func (m *MockPlanService) ListPlans(ctx context.Context, mentorID uuid.UUID, filters services.PlanFilters) ([]models.FinancialPlan, int64, error) {
	args := m.Called(ctx, mentorID, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.FinancialPlan), args.Get(1).(int64), args.Error(2)
}

func (m *MockPlanService) GenerateReminders(ctx context.Context, plan *models.FinancialPlan, start, end time.Time, firstInstallment int) {
	m.Called(ctx, plan, start, end, firstInstallment)
}

// MockLifecycleService
type MockLifecycleService struct {
	mock.Mock
}

func (m *MockLifecycleService) SuspendPlan(ctx context.Context, mentorshipID, mentorID uuid.UUID, reason string) error {
	args := m.Called(ctx, mentorshipID, mentorID, reason)
	return args.Error(0)
}

func (m *MockLifecycleService) ReactivatePlan(ctx context.Context, mentorshipID, mentorID uuid.UUID, newExpirationDate *time.Time) error {
	args := m.Called(ctx, mentorshipID, mentorID, newExpirationDate)
	return args.Error(0)
}

func (m *MockLifecycleService) ExpirePlan(ctx context.Context, mentorshipID, mentorID uuid.UUID) error {
	args := m.Called(ctx, mentorshipID, mentorID)
	return args.Error(0)
}

func (m *MockLifecycleService) ExtendPlan(ctx context.Context, mentorshipID, mentorID uuid.UUID, newExpirationDate time.Time, regenerateReminders bool) error {
	args := m.Called(ctx, mentorshipID, mentorID, newExpirationDate, regenerateReminders)
	return args.Error(0)
}

// MockReminderService
type MockReminderService struct {
	mock.Mock
}

func (m *MockReminderService) ListReminders(ctx context.Context, mentorID uuid.UUID, filters services.ReminderFilters) ([]models.BillingReminder, int64, error) {
	args := m.Called(ctx, mentorID, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.BillingReminder), args.Get(1).(int64), args.Error(2)
}

func (m *MockReminderService) RemindersByMentorship(ctx context.Context, mentorshipID, mentorID uuid.UUID) ([]models.BillingReminder, error) {
	args := m.Called(ctx, mentorshipID, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BillingReminder), args.Error(1)
}

func (m *MockReminderService) TodayReminders(ctx context.Context, mentorID uuid.UUID) ([]models.BillingReminder, error) {
	args := m.Called(ctx, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BillingReminder), args.Error(1)
}

func (m *MockReminderService) WeekReminders(ctx context.Context, mentorID uuid.UUID) ([]models.BillingReminder, error) {
	args := m.Called(ctx, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.BillingReminder), args.Error(1)
}

func (m *MockReminderService) RescheduleReminder(ctx context.Context, reminderID, mentorID uuid.UUID, newDueDate time.Time) (*models.BillingReminder, error) {
	args := m.Called(ctx, reminderID, mentorID, newDueDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillingReminder), args.Error(1)
}

// MockPaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) ConfirmPayment(ctx context.Context, reminderID, mentorID uuid.UUID, notes string) (*models.BillingReminder, *models.PaymentHistory, error) {
	args := m.Called(ctx, reminderID, mentorID, notes)
	var reminder *models.BillingReminder
	var payment *models.PaymentHistory
	if args.Get(0) != nil {
		reminder = args.Get(0).(*models.BillingReminder)
	}
	if args.Get(1) != nil {
		payment = args.Get(1).(*models.PaymentHistory)
	}
	return reminder, payment, args.Error(2)
}

func (m *MockPaymentService) RevertPayment(ctx context.Context, reminderID, mentorID uuid.UUID) (*models.BillingReminder, error) {
	args := m.Called(ctx, reminderID, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BillingReminder), args.Error(1)
}

func (m *MockPaymentService) CancelReminder(ctx context.Context, reminderID, mentorID uuid.UUID) error {
	args := m.Called(ctx, reminderID, mentorID)
	return args.Error(0)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, mentorID uuid.UUID, menteeID *uuid.UUID, limit int) ([]models.PaymentHistory, error) {
	args := m.Called(ctx, mentorID, menteeID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PaymentHistory), args.Error(1)
}

// MockStatsService
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetFinancialStats(ctx context.Context, mentorID uuid.UUID) (*services.FinancialStats, error) {
	args := m.Called(ctx, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.FinancialStats), args.Error(1)
}

// MockReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) GetFinancialReport(ctx context.Context, mentorID uuid.UUID, startDate, endDate *time.Time) (*services.FinancialReport, error) {
	args := m.Called(ctx, mentorID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.FinancialReport), args.Error(1)
}

func (m *MockReportService) GetMonthlyRevenue(ctx context.Context, mentorID uuid.UUID) ([]services.MonthlyRevenue, error) {
	args := m.Called(ctx, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.MonthlyRevenue), args.Error(1)
}

func (m *MockReportService) GetRevenueByPaymentType(ctx context.Context, mentorID uuid.UUID) ([]services.PaymentTypeRevenue, error) {
	args := m.Called(ctx, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.PaymentTypeRevenue), args.Error(1)
}

func (m *MockReportService) GetTopMenteesByRevenue(ctx context.Context, mentorID uuid.UUID, limit int) ([]services.MenteeRevenue, error) {
	args := m.Called(ctx, mentorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.MenteeRevenue), args.Error(1)
}

// MockChargeService
type MockChargeService struct {
	mock.Mock
}

func (m *MockChargeService) ListCharges(ctx context.Context, mentorshipID, mentorID uuid.UUID) ([]models.MentorshipCharge, error) {
	args := m.Called(ctx, mentorshipID, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MentorshipCharge), args.Error(1)
}

func (m *MockChargeService) CreateCharge(ctx context.Context, mentorshipID, mentorID uuid.UUID, payload services.CreateChargePayload) (*models.MentorshipCharge, error) {
	args := m.Called(ctx, mentorshipID, mentorID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorshipCharge), args.Error(1)
}

func (m *MockChargeService) UpdateCharge(ctx context.Context, chargeID, mentorID uuid.UUID, payload services.UpdateChargePayload) (*models.MentorshipCharge, error) {
	args := m.Called(ctx, chargeID, mentorID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorshipCharge), args.Error(1)
}

func (m *MockChargeService) DeleteCharge(ctx context.Context, chargeID, mentorID uuid.UUID) error {
	args := m.Called(ctx, chargeID, mentorID)
	return args.Error(0)
}

func (m *MockChargeService) MarkChargeAsPaid(ctx context.Context, chargeID, mentorID uuid.UUID) (*models.MentorshipCharge, error) {
	args := m.Called(ctx, chargeID, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MentorshipCharge), args.Error(1)
}

func (m *MockChargeService) SendChargeReminder(ctx context.Context, chargeID, mentorID uuid.UUID) error {
	args := m.Called(ctx, chargeID, mentorID)
	return args.Error(0)
}
