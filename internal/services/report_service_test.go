package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/db"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/utils"
)

var testMongoURIReports = ""

func init() {
	testMongoURIReports = os.Getenv("MONGO_URI_TEST")
	if testMongoURIReports == "" {
		testMongoURIReports = "mongodb://localhost:27017"
	}
}

func setupTestDBReports(t *testing.T, dbName string) *mongo.Database {
	client, err := mongo.Connect(context.Background(),
		options.Client().ApplyURI(testMongoURIReports).SetRegistry(db.Registry()))
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	database := client.Database(dbName)
	_ = database.Collection(db.PaymentsCollection).Drop(context.Background())
	_ = database.Collection(db.RemindersCollection).Drop(context.Background())
	return database
}

func insertReportPayment(t *testing.T, database *mongo.Database, mentorID, menteeID uuid.UUID, amount int64, paymentType models.PaymentType, paymentDate time.Time) {
	_, err := database.Collection(db.PaymentsCollection).InsertOne(context.Background(), &models.PaymentHistory{
		ID:          uuid.New(),
		PlanID:      uuid.New(),
		MenteeID:    menteeID,
		MentorID:    mentorID,
		Amount:      decimal.NewFromInt(amount),
		PaymentType: paymentType,
		PaymentDate: paymentDate,
		ConfirmedAt: paymentDate,
		ConfirmedBy: mentorID,
		CreatedAt:   paymentDate,
	})
	assert.NoError(t, err)
}

func TestReportService_GetFinancialReport(t *testing.T) {
	database := setupTestDBReports(t, "testdb_report_summary")
	now := date(2024, time.June, 15)
	clock := utils.FixedClock{Instant: now}
	svc := NewReportService(database, testConfig(), clock)
	ctx := context.Background()

	mentorID := uuid.New()
	menteeID := uuid.New()
	insertReportPayment(t, database, mentorID, menteeID, 300, models.PaymentTypePix, date(2024, time.June, 5))
	insertReportPayment(t, database, mentorID, menteeID, 100, models.PaymentTypePix, date(2024, time.June, 10))
	insertReportPayment(t, database, mentorID, menteeID, 200, models.PaymentTypeCash, date(2024, time.May, 20))
	insertReportPayment(t, database, mentorID, menteeID, 400, models.PaymentTypeCash, date(2024, time.March, 1))

	report, err := svc.GetFinancialReport(ctx, mentorID, nil, nil)
	assert.NoError(t, err)

	assert.True(t, report.Summary.TotalRevenue.Equal(decimal.NewFromInt(1000)))
	assert.True(t, report.Summary.PaidThisMonth.Equal(decimal.NewFromInt(400)))
	assert.True(t, report.Summary.PaidLastMonth.Equal(decimal.NewFromInt(200)))
	assert.InDelta(t, 100.0, report.Summary.GrowthPercentage, 0.001)
	assert.True(t, report.Summary.AverageTicket.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 4, report.Summary.TotalPayments)

	// Newest first.
	assert.Len(t, report.RecentPayments, 4)
	assert.True(t, report.RecentPayments[0].Amount.Equal(decimal.NewFromInt(100)))
}

func TestReportService_GetFinancialReport_DateRange(t *testing.T) {
	database := setupTestDBReports(t, "testdb_report_range")
	clock := utils.FixedClock{Instant: date(2024, time.June, 15)}
	svc := NewReportService(database, testConfig(), clock)

	mentorID := uuid.New()
	menteeID := uuid.New()
	insertReportPayment(t, database, mentorID, menteeID, 100, models.PaymentTypePix, date(2024, time.June, 1))
	insertReportPayment(t, database, mentorID, menteeID, 150, models.PaymentTypePix, date(2024, time.May, 20))
	insertReportPayment(t, database, mentorID, menteeID, 200, models.PaymentTypePix, date(2024, time.April, 1))

	start := date(2024, time.June, 1)
	report, err := svc.GetFinancialReport(context.Background(), mentorID, &start, nil)
	assert.NoError(t, err)
	assert.True(t, report.Summary.TotalRevenue.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, report.Summary.TotalPayments)

	// The month-over-month buckets ignore the range filter: May's payment
	// is outside the requested range but still drives the growth figure.
	assert.True(t, report.Summary.PaidThisMonth.Equal(decimal.NewFromInt(100)))
	assert.True(t, report.Summary.PaidLastMonth.Equal(decimal.NewFromInt(150)),
		"paidLastMonth must come from its own calendar-month query, got %s", report.Summary.PaidLastMonth)
	assert.InDelta(t, -33.333, report.Summary.GrowthPercentage, 0.001)
}

func TestReportService_GetFinancialReport_PendingOverdueSplit(t *testing.T) {
	database := setupTestDBReports(t, "testdb_report_split")
	now := date(2024, time.June, 15)
	clock := utils.FixedClock{Instant: now}
	svc := NewReportService(database, testConfig(), clock)
	ctx := context.Background()

	mentorID := uuid.New()
	insertStatsReminderForReport := func(status models.ReminderStatus, dueDate time.Time, amount int64) {
		_, err := database.Collection(db.RemindersCollection).InsertOne(ctx, &models.BillingReminder{
			ID:       uuid.New(),
			PlanID:   uuid.New(),
			MentorID: mentorID,
			DueDate:  dueDate,
			Amount:   decimal.NewFromInt(amount),
			Status:   status,
		})
		assert.NoError(t, err)
	}
	insertStatsReminderForReport(models.ReminderStatusPending, date(2024, time.June, 10), 100) // past due
	insertStatsReminderForReport(models.ReminderStatusPending, date(2024, time.June, 15), 200) // due today
	insertStatsReminderForReport(models.ReminderStatusPending, date(2024, time.July, 1), 300)
	insertStatsReminderForReport(models.ReminderStatusOverdue, date(2024, time.May, 1), 400)

	report, err := svc.GetFinancialReport(ctx, mentorID, nil, nil)
	assert.NoError(t, err)
	assert.True(t, report.Summary.PendingAmount.Equal(decimal.NewFromInt(500)),
		"due today and future stay pending, got %s", report.Summary.PendingAmount)
	assert.True(t, report.Summary.OverdueAmount.Equal(decimal.NewFromInt(500)))
}

func TestReportService_GetMonthlyRevenue(t *testing.T) {
	database := setupTestDBReports(t, "testdb_report_monthly")
	clock := utils.FixedClock{Instant: date(2024, time.June, 15)}
	svc := NewReportService(database, testConfig(), clock)

	mentorID := uuid.New()
	menteeID := uuid.New()
	insertReportPayment(t, database, mentorID, menteeID, 100, models.PaymentTypePix, date(2024, time.June, 5))
	insertReportPayment(t, database, mentorID, menteeID, 150, models.PaymentTypePix, date(2024, time.June, 20))
	insertReportPayment(t, database, mentorID, menteeID, 200, models.PaymentTypePix, date(2024, time.May, 10))
	insertReportPayment(t, database, mentorID, menteeID, 999, models.PaymentTypePix, date(2023, time.June, 1)) // outside the window

	months, err := svc.GetMonthlyRevenue(context.Background(), mentorID)
	assert.NoError(t, err)
	assert.Len(t, months, 12)

	assert.Equal(t, "Jul/23", months[0].Month)
	assert.Equal(t, "Jun/24", months[11].Month)
	assert.True(t, months[11].Revenue.Equal(decimal.NewFromInt(250)))
	assert.Equal(t, 2, months[11].Payments)
	assert.True(t, months[10].Revenue.Equal(decimal.NewFromInt(200)))
	assert.True(t, months[0].Revenue.IsZero())
}

func TestReportService_GetRevenueByPaymentType(t *testing.T) {
	database := setupTestDBReports(t, "testdb_report_types")
	clock := utils.FixedClock{Instant: date(2024, time.June, 15)}
	svc := NewReportService(database, testConfig(), clock)

	mentorID := uuid.New()
	menteeID := uuid.New()
	insertReportPayment(t, database, mentorID, menteeID, 300, models.PaymentTypePix, date(2024, time.June, 1))
	insertReportPayment(t, database, mentorID, menteeID, 450, models.PaymentTypePix, date(2024, time.June, 2))
	insertReportPayment(t, database, mentorID, menteeID, 250, models.PaymentTypeCreditCard, date(2024, time.June, 3))

	byType, err := svc.GetRevenueByPaymentType(context.Background(), mentorID)
	assert.NoError(t, err)
	assert.Len(t, byType, 2)

	assert.Equal(t, models.PaymentTypePix, byType[0].Type)
	assert.Equal(t, "PIX", byType[0].Label)
	assert.True(t, byType[0].Revenue.Equal(decimal.NewFromInt(750)))
	assert.Equal(t, 2, byType[0].Count)
	assert.InDelta(t, 75.0, byType[0].Percentage, 0.001)

	assert.Equal(t, models.PaymentTypeCreditCard, byType[1].Type)
	assert.Equal(t, "Cartão de Crédito", byType[1].Label)
	assert.InDelta(t, 25.0, byType[1].Percentage, 0.001)
}

func TestReportService_GetTopMenteesByRevenue(t *testing.T) {
	database := setupTestDBReports(t, "testdb_report_top")
	clock := utils.FixedClock{Instant: date(2024, time.June, 15)}
	svc := NewReportService(database, testConfig(), clock)

	mentorID := uuid.New()
	big := uuid.New()
	small := uuid.New()
	insertReportPayment(t, database, mentorID, big, 500, models.PaymentTypePix, date(2024, time.June, 1))
	insertReportPayment(t, database, mentorID, big, 500, models.PaymentTypePix, date(2024, time.June, 2))
	insertReportPayment(t, database, mentorID, small, 100, models.PaymentTypePix, date(2024, time.June, 3))

	top, err := svc.GetTopMenteesByRevenue(context.Background(), mentorID, 0)
	assert.NoError(t, err)
	assert.Len(t, top, 2)
	assert.Equal(t, big, top[0].MenteeID)
	assert.True(t, top[0].TotalPaid.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, 2, top[0].PaymentsCount)

	top, err = svc.GetTopMenteesByRevenue(context.Background(), mentorID, 1)
	assert.NoError(t, err)
	assert.Len(t, top, 1)
	assert.Equal(t, big, top[0].MenteeID)
}
