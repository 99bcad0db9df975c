package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/config"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/db"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/utils"
)

// ReportSummary is the headline block of a financial report.
type ReportSummary struct {
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	PendingAmount    decimal.Decimal `json:"pendingAmount"`
	OverdueAmount    decimal.Decimal `json:"overdueAmount"`
	PaidThisMonth    decimal.Decimal `json:"paidThisMonth"`
	PaidLastMonth    decimal.Decimal `json:"paidLastMonth"`
	GrowthPercentage float64         `json:"growthPercentage"`
	AverageTicket    decimal.Decimal `json:"averageTicket"`
	TotalPayments    int             `json:"totalPayments"`
}

// FinancialReport bundles the summary with the most recent payments.
type FinancialReport struct {
	Summary        ReportSummary           `json:"summary"`
	RecentPayments []models.PaymentHistory `json:"recentPayments"`
}

// MonthlyRevenue is one calendar-month revenue bucket.
type MonthlyRevenue struct {
	Month    string          `json:"month"`
	Revenue  decimal.Decimal `json:"revenue"`
	Payments int             `json:"payments"`
}

// PaymentTypeRevenue is the revenue share of one payment type.
type PaymentTypeRevenue struct {
	Type       models.PaymentType `json:"type"`
	Label      string             `json:"label"`
	Revenue    decimal.Decimal    `json:"revenue"`
	Count      int                `json:"count"`
	Percentage float64            `json:"percentage"`
}

// MenteeRevenue is one mentee's aggregate payment total.
type MenteeRevenue struct {
	MenteeID      uuid.UUID       `json:"menteeId"`
	TotalPaid     decimal.Decimal `json:"totalPaid"`
	PaymentsCount int             `json:"paymentsCount"`
}

// IReportService builds revenue reports from payment history.
type IReportService interface {
	GetFinancialReport(ctx context.Context, mentorID uuid.UUID, startDate, endDate *time.Time) (*FinancialReport, error)
	GetMonthlyRevenue(ctx context.Context, mentorID uuid.UUID) ([]MonthlyRevenue, error)
	GetRevenueByPaymentType(ctx context.Context, mentorID uuid.UUID) ([]PaymentTypeRevenue, error)
	GetTopMenteesByRevenue(ctx context.Context, mentorID uuid.UUID, limit int) ([]MenteeRevenue, error)
}

// reportService implements IReportService.
type reportService struct {
	db    *mongo.Database
	cfg   *config.Config
	clock utils.Clock
}

// NewReportService creates a new ReportService.
func NewReportService(database *mongo.Database, cfg *config.Config, clock utils.Clock) IReportService {
	return &reportService{db: database, cfg: cfg, clock: clock}
}

var ptBRPaymentLabels = map[models.PaymentType]string{
	models.PaymentTypePix:          "PIX",
	models.PaymentTypeCreditCard:   "Cartão de Crédito",
	models.PaymentTypeDebitCard:    "Cartão de Débito",
	models.PaymentTypeBankTransfer: "Transferência",
	models.PaymentTypeCash:         "Dinheiro",
	models.PaymentTypeOther:        "Outro",
}

var ptBRMonths = [12]string{
	"Jan", "Fev", "Mar", "Abr", "Mai", "Jun",
	"Jul", "Ago", "Set", "Out", "Nov", "Dez",
}

// GetFinancialReport aggregates a mentor's payments, optionally bounded to
// [startDate, endDate]. Month-over-month growth always uses calendar-month
// boundaries regardless of the requested range.
func (s *reportService) GetFinancialReport(ctx context.Context, mentorID uuid.UUID, startDate, endDate *time.Time) (*FinancialReport, error) {
	now := s.clock.Now()
	thisMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	lastMonthStart := thisMonthStart.AddDate(0, -1, 0)

	filter := bson.M{"mentor_id": mentorID}
	if startDate != nil || endDate != nil {
		rng := bson.M{}
		if startDate != nil {
			rng["$gte"] = *startDate
		}
		if endDate != nil {
			rng["$lte"] = *endDate
		}
		filter["payment_date"] = rng
	}

	cursor, err := s.db.Collection(db.PaymentsCollection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "payment_date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query payments for report: %w", err)
	}
	var payments []models.PaymentHistory
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments for report: %w", err)
	}

	report := &FinancialReport{}
	for _, p := range payments {
		report.Summary.TotalRevenue = report.Summary.TotalRevenue.Add(p.Amount)
	}
	report.Summary.TotalPayments = len(payments)

	// The month-over-month buckets come from their own calendar-month
	// queries, independent of the caller's range filter.
	report.Summary.PaidThisMonth, err = s.sumPaymentsBetween(ctx, mentorID, thisMonthStart, thisMonthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	report.Summary.PaidLastMonth, err = s.sumPaymentsBetween(ctx, mentorID, lastMonthStart, thisMonthStart)
	if err != nil {
		return nil, err
	}
	if report.Summary.PaidLastMonth.IsPositive() {
		growth := report.Summary.PaidThisMonth.Sub(report.Summary.PaidLastMonth).
			Div(report.Summary.PaidLastMonth).Mul(decimal.NewFromInt(100))
		report.Summary.GrowthPercentage, _ = growth.Float64()
	}
	if len(payments) > 0 {
		report.Summary.AverageTicket = report.Summary.TotalRevenue.
			Div(decimal.NewFromInt(int64(len(payments)))).Round(2)
	}

	cursor, err = s.db.Collection(db.RemindersCollection).Find(ctx, bson.M{
		"mentor_id": mentorID,
		"status":    bson.M{"$in": []models.ReminderStatus{models.ReminderStatusPending, models.ReminderStatusOverdue}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders for report: %w", err)
	}
	var reminders []models.BillingReminder
	if err := cursor.All(ctx, &reminders); err != nil {
		return nil, fmt.Errorf("failed to decode reminders for report: %w", err)
	}
	for _, r := range reminders {
		if r.Status == models.ReminderStatusOverdue || utils.BeforeDay(r.DueDate, now) {
			report.Summary.OverdueAmount = report.Summary.OverdueAmount.Add(r.Amount)
		} else {
			report.Summary.PendingAmount = report.Summary.PendingAmount.Add(r.Amount)
		}
	}

	limit := s.cfg.RecentPaymentsLimit
	if len(payments) < limit {
		limit = len(payments)
	}
	report.RecentPayments = payments[:limit]
	return report, nil
}

// sumPaymentsBetween sums a mentor's payments with payment_date in [from, to).
func (s *reportService) sumPaymentsBetween(ctx context.Context, mentorID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	cursor, err := s.db.Collection(db.PaymentsCollection).Find(ctx, bson.M{
		"mentor_id":    mentorID,
		"payment_date": bson.M{"$gte": from, "$lt": to},
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query payments for %s: %w", from.Format("2006-01"), err)
	}
	var payments []models.PaymentHistory
	if err := cursor.All(ctx, &payments); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode payments for %s: %w", from.Format("2006-01"), err)
	}
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total, nil
}

// GetMonthlyRevenue returns the 12 trailing calendar months, oldest first.
func (s *reportService) GetMonthlyRevenue(ctx context.Context, mentorID uuid.UUID) ([]MonthlyRevenue, error) {
	now := s.clock.Now()
	months := make([]MonthlyRevenue, 0, 12)

	for i := 11; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -i, 0)
		nextMonthStart := monthStart.AddDate(0, 1, 0)

		cursor, err := s.db.Collection(db.PaymentsCollection).Find(ctx, bson.M{
			"mentor_id":    mentorID,
			"payment_date": bson.M{"$gte": monthStart, "$lt": nextMonthStart},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query payments for %s: %w", monthStart.Format("2006-01"), err)
		}
		var payments []models.PaymentHistory
		if err := cursor.All(ctx, &payments); err != nil {
			return nil, fmt.Errorf("failed to decode payments for %s: %w", monthStart.Format("2006-01"), err)
		}

		bucket := MonthlyRevenue{
			Month:    fmt.Sprintf("%s/%02d", ptBRMonths[monthStart.Month()-1], monthStart.Year()%100),
			Payments: len(payments),
		}
		for _, p := range payments {
			bucket.Revenue = bucket.Revenue.Add(p.Amount)
		}
		months = append(months, bucket)
	}
	return months, nil
}

// GetRevenueByPaymentType groups all of the mentor's payments by type,
// sorted by revenue descending.
func (s *reportService) GetRevenueByPaymentType(ctx context.Context, mentorID uuid.UUID) ([]PaymentTypeRevenue, error) {
	cursor, err := s.db.Collection(db.PaymentsCollection).Find(ctx, bson.M{"mentor_id": mentorID})
	if err != nil {
		return nil, fmt.Errorf("failed to query payments by type: %w", err)
	}
	var payments []models.PaymentHistory
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments by type: %w", err)
	}

	buckets := map[models.PaymentType]*PaymentTypeRevenue{}
	total := decimal.Zero
	for _, p := range payments {
		pt := p.PaymentType
		if pt == "" {
			pt = models.PaymentTypeOther
		}
		b, ok := buckets[pt]
		if !ok {
			label, known := ptBRPaymentLabels[pt]
			if !known {
				label = string(pt)
			}
			b = &PaymentTypeRevenue{Type: pt, Label: label}
			buckets[pt] = b
		}
		b.Revenue = b.Revenue.Add(p.Amount)
		b.Count++
		total = total.Add(p.Amount)
	}

	result := make([]PaymentTypeRevenue, 0, len(buckets))
	for _, b := range buckets {
		if total.IsPositive() {
			pct := b.Revenue.Div(total).Mul(decimal.NewFromInt(100))
			b.Percentage, _ = pct.Float64()
		}
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Revenue.GreaterThan(result[j].Revenue)
	})
	return result, nil
}

// GetTopMenteesByRevenue ranks mentees by total amount paid.
func (s *reportService) GetTopMenteesByRevenue(ctx context.Context, mentorID uuid.UUID, limit int) ([]MenteeRevenue, error) {
	if limit <= 0 {
		limit = s.cfg.TopMenteesLimit
	}

	cursor, err := s.db.Collection(db.PaymentsCollection).Find(ctx, bson.M{"mentor_id": mentorID})
	if err != nil {
		return nil, fmt.Errorf("failed to query payments for top mentees: %w", err)
	}
	var payments []models.PaymentHistory
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, fmt.Errorf("failed to decode payments for top mentees: %w", err)
	}

	buckets := map[uuid.UUID]*MenteeRevenue{}
	for _, p := range payments {
		b, ok := buckets[p.MenteeID]
		if !ok {
			b = &MenteeRevenue{MenteeID: p.MenteeID}
			buckets[p.MenteeID] = b
		}
		b.TotalPaid = b.TotalPaid.Add(p.Amount)
		b.PaymentsCount++
	}

	result := make([]MenteeRevenue, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TotalPaid.GreaterThan(result[j].TotalPaid)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
