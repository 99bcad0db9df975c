package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/config"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/db"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/models"
	"github.com/inocenciorjr/MEDBRAVE.APP-sub007/internal/utils"
)

var testMongoURIPlans = ""

func init() {
	testMongoURIPlans = os.Getenv("MONGO_URI_TEST")
	if testMongoURIPlans == "" {
		testMongoURIPlans = "mongodb://localhost:27017"
	}
}

func setupTestDBPlans(t *testing.T, dbName string) *mongo.Database {
	client, err := mongo.Connect(context.Background(),
		options.Client().ApplyURI(testMongoURIPlans).SetRegistry(db.Registry()))
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	database := client.Database(dbName)
	_ = database.Collection(db.PlansCollection).Drop(context.Background())
	_ = database.Collection(db.RemindersCollection).Drop(context.Background())
	_ = database.Collection(db.PaymentsCollection).Drop(context.Background())
	_ = database.Collection(db.MentorshipsCollection).Drop(context.Background())
	return database
}

func testConfig() *config.Config {
	return &config.Config{
		ReminderCap:         24,
		DefaultCustomDays:   30,
		RecentPaymentsLimit: 20,
		TopMenteesLimit:     10,
		PaymentHistoryLimit: 50,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPlanService_CreatePlan_MonthlyInstallments(t *testing.T) {
	database := setupTestDBPlans(t, "testdb_plan_service_create")
	clock := utils.FixedClock{Instant: date(2024, time.January, 1)}
	svc := NewPlanService(database, testConfig(), clock, nil)
	ctx := context.Background()

	mentorID := uuid.New()
	plan, err := svc.CreatePlan(ctx, mentorID, CreatePlanPayload{
		MentorshipID:     uuid.New(),
		MenteeID:         uuid.New(),
		PaymentType:      models.PaymentTypePix,
		PaymentModality:  models.ModalityInstallment,
		TotalAmount:      decimal.NewFromInt(1200),
		Installments:     12,
		BillingFrequency: models.FrequencyMonthly,
		StartDate:        date(2024, time.January, 1),
		ExpirationDate:   date(2024, time.December, 31),
	})
	assert.NoError(t, err)
	assert.Equal(t, models.PlanStatusActive, plan.Status)
	assert.True(t, plan.InstallmentAmount.Equal(decimal.NewFromInt(100)),
		"installment amount should be 100, got %s", plan.InstallmentAmount)
	if assert.NotNil(t, plan.NextBillingDate) {
		assert.Equal(t, date(2024, time.February, 1), plan.NextBillingDate.UTC())
	}

	cursor, err := database.Collection(db.RemindersCollection).Find(ctx,
		bson.M{"plan_id": plan.ID}, options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
	assert.NoError(t, err)
	var reminders []models.BillingReminder
	assert.NoError(t, cursor.All(ctx, &reminders))
	assert.Len(t, reminders, 12)
	for i, r := range reminders {
		assert.True(t, r.Amount.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, models.ReminderStatusPending, r.Status)
		if assert.NotNil(t, r.InstallmentNumber) {
			assert.Equal(t, i+1, *r.InstallmentNumber)
		}
		if assert.NotNil(t, r.TotalInstallments) {
			assert.Equal(t, 12, *r.TotalInstallments)
		}
		assert.Equal(t, date(2024, time.Month(i+1), 1), r.DueDate.UTC())
	}
}

func TestPlanService_CreatePlan_CustomFrequencyCapped(t *testing.T) {
	database := setupTestDBPlans(t, "testdb_plan_service_cap")
	clock := utils.FixedClock{Instant: date(2024, time.January, 1)}
	svc := NewPlanService(database, testConfig(), clock, nil)
	ctx := context.Background()

	customDays := 10
	plan, err := svc.CreatePlan(ctx, uuid.New(), CreatePlanPayload{
		MentorshipID:        uuid.New(),
		MenteeID:            uuid.New(),
		PaymentType:         models.PaymentTypeCreditCard,
		PaymentModality:     models.ModalityCash,
		TotalAmount:         decimal.NewFromInt(5000),
		BillingFrequency:    models.FrequencyCustom,
		CustomFrequencyDays: &customDays,
		StartDate:           date(2024, time.January, 1),
		ExpirationDate:      date(2030, time.January, 1),
	})
	assert.NoError(t, err)

	count, err := database.Collection(db.RemindersCollection).CountDocuments(ctx,
		bson.M{"plan_id": plan.ID})
	assert.NoError(t, err)
	assert.Equal(t, int64(24), count)
}

func TestPlanService_CreatePlan_SingleInstallmentNoNumbering(t *testing.T) {
	database := setupTestDBPlans(t, "testdb_plan_service_single")
	clock := utils.FixedClock{Instant: date(2024, time.January, 1)}
	svc := NewPlanService(database, testConfig(), clock, nil)
	ctx := context.Background()

	plan, err := svc.CreatePlan(ctx, uuid.New(), CreatePlanPayload{
		MentorshipID:     uuid.New(),
		MenteeID:         uuid.New(),
		PaymentType:      models.PaymentTypeCash,
		PaymentModality:  models.ModalityCash,
		TotalAmount:      decimal.NewFromInt(500),
		Installments:     1,
		BillingFrequency: models.FrequencyMonthly,
		StartDate:        date(2024, time.January, 1),
		ExpirationDate:   date(2024, time.January, 31),
	})
	assert.NoError(t, err)
	assert.True(t, plan.InstallmentAmount.Equal(decimal.NewFromInt(500)))

	var reminder models.BillingReminder
	err = database.Collection(db.RemindersCollection).FindOne(ctx,
		bson.M{"plan_id": plan.ID}).Decode(&reminder)
	assert.NoError(t, err)
	assert.Nil(t, reminder.InstallmentNumber)
	assert.Nil(t, reminder.TotalInstallments)
}

func TestPlanService_CreatePlan_Validation(t *testing.T) {
	database := setupTestDBPlans(t, "testdb_plan_service_validation")
	clock := utils.FixedClock{Instant: date(2024, time.January, 1)}
	svc := NewPlanService(database, testConfig(), clock, nil)
	ctx := context.Background()

	base := CreatePlanPayload{
		MentorshipID:     uuid.New(),
		MenteeID:         uuid.New(),
		PaymentType:      models.PaymentTypePix,
		PaymentModality:  models.ModalityInstallment,
		TotalAmount:      decimal.NewFromInt(1200),
		Installments:     12,
		BillingFrequency: models.FrequencyMonthly,
		StartDate:        date(2024, time.January, 1),
		ExpirationDate:   date(2024, time.December, 31),
	}

	negative := base
	negative.TotalAmount = decimal.NewFromInt(-1)
	_, err := svc.CreatePlan(ctx, uuid.New(), negative)
	assert.True(t, IsValidation(err))

	badFrequency := base
	badFrequency.BillingFrequency = "WEEKLY"
	_, err = svc.CreatePlan(ctx, uuid.New(), badFrequency)
	assert.True(t, IsValidation(err))

	inverted := base
	inverted.ExpirationDate = date(2023, time.December, 31)
	_, err = svc.CreatePlan(ctx, uuid.New(), inverted)
	assert.True(t, IsValidation(err))
}

func TestPlanService_UpdatePlan_MaterialChangeRegenerates(t *testing.T) {
	database := setupTestDBPlans(t, "testdb_plan_service_regen")
	clock := utils.FixedClock{Instant: date(2024, time.June, 15)}
	svc := NewPlanService(database, testConfig(), clock, nil)
	ctx := context.Background()

	mentorID := uuid.New()
	plan, err := svc.CreatePlan(ctx, mentorID, CreatePlanPayload{
		MentorshipID:     uuid.New(),
		MenteeID:         uuid.New(),
		PaymentType:      models.PaymentTypePix,
		PaymentModality:  models.ModalityInstallment,
		TotalAmount:      decimal.NewFromInt(1200),
		Installments:     12,
		BillingFrequency: models.FrequencyMonthly,
		StartDate:        date(2024, time.June, 15),
		ExpirationDate:   date(2025, time.June, 15),
	})
	assert.NoError(t, err)

	// Settle the first two installments so regeneration has history to
	// preserve.
	reminders := bson.M{"plan_id": plan.ID}
	cursor, err := database.Collection(db.RemindersCollection).Find(ctx, reminders,
		options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}).SetLimit(2))
	assert.NoError(t, err)
	var firstTwo []models.BillingReminder
	assert.NoError(t, cursor.All(ctx, &firstTwo))
	for _, r := range firstTwo {
		_, err = database.Collection(db.RemindersCollection).UpdateOne(ctx,
			bson.M{"_id": r.ID}, bson.M{"$set": bson.M{"status": models.ReminderStatusPaid}})
		assert.NoError(t, err)
	}

	newTotal := decimal.NewFromInt(2400)
	updated, err := svc.UpdatePlan(ctx, plan.ID, mentorID, UpdatePlanPayload{
		TotalAmount: &newTotal,
	})
	assert.NoError(t, err)
	assert.True(t, updated.InstallmentAmount.Equal(decimal.NewFromInt(200)))

	paidCount, err := database.Collection(db.RemindersCollection).CountDocuments(ctx,
		bson.M{"plan_id": plan.ID, "status": models.ReminderStatusPaid})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), paidCount, "paid reminders must survive regeneration")

	// Numbering resumes after the paid installments.
	var firstPending models.BillingReminder
	err = database.Collection(db.RemindersCollection).FindOne(ctx,
		bson.M{"plan_id": plan.ID, "status": models.ReminderStatusPending},
		options.FindOne().SetSort(bson.D{{Key: "due_date", Value: 1}})).Decode(&firstPending)
	assert.NoError(t, err)
	if assert.NotNil(t, firstPending.InstallmentNumber) {
		assert.Equal(t, 3, *firstPending.InstallmentNumber)
	}
	assert.True(t, firstPending.Amount.Equal(decimal.NewFromInt(200)))
}

func TestPlanService_UpdatePlan_ImmaterialChangeKeepsReminders(t *testing.T) {
	database := setupTestDBPlans(t, "testdb_plan_service_immaterial")
	clock := utils.FixedClock{Instant: date(2024, time.June, 15)}
	svc := NewPlanService(database, testConfig(), clock, nil)
	ctx := context.Background()

	mentorID := uuid.New()
	plan, err := svc.CreatePlan(ctx, mentorID, CreatePlanPayload{
		MentorshipID:     uuid.New(),
		MenteeID:         uuid.New(),
		PaymentType:      models.PaymentTypePix,
		PaymentModality:  models.ModalityInstallment,
		TotalAmount:      decimal.NewFromInt(1200),
		Installments:     12,
		BillingFrequency: models.FrequencyMonthly,
		StartDate:        date(2024, time.June, 15),
		ExpirationDate:   date(2025, time.June, 15),
	})
	assert.NoError(t, err)

	var before []models.BillingReminder
	cursor, err := database.Collection(db.RemindersCollection).Find(ctx, bson.M{"plan_id": plan.ID})
	assert.NoError(t, err)
	assert.NoError(t, cursor.All(ctx, &before))

	notes := "pays on the 5th"
	_, err = svc.UpdatePlan(ctx, plan.ID, mentorID, UpdatePlanPayload{Notes: &notes})
	assert.NoError(t, err)

	var after []models.BillingReminder
	cursor, err = database.Collection(db.RemindersCollection).Find(ctx, bson.M{"plan_id": plan.ID})
	assert.NoError(t, err)
	assert.NoError(t, cursor.All(ctx, &after))
	assert.Equal(t, len(before), len(after))
	assert.Equal(t, before[0].ID, after[0].ID)
}

func TestPlanService_UpdatePlan_NotOwned(t *testing.T) {
	database := setupTestDBPlans(t, "testdb_plan_service_ownership")
	clock := utils.FixedClock{Instant: date(2024, time.June, 15)}
	svc := NewPlanService(database, testConfig(), clock, nil)
	ctx := context.Background()

	mentorID := uuid.New()
	plan, err := svc.CreatePlan(ctx, mentorID, CreatePlanPayload{
		MentorshipID:     uuid.New(),
		MenteeID:         uuid.New(),
		PaymentType:      models.PaymentTypePix,
		PaymentModality:  models.ModalityCash,
		TotalAmount:      decimal.NewFromInt(300),
		BillingFrequency: models.FrequencyMonthly,
		StartDate:        date(2024, time.June, 15),
		ExpirationDate:   date(2024, time.September, 15),
	})
	assert.NoError(t, err)

	notes := "someone else's plan"
	_, err = svc.UpdatePlan(ctx, plan.ID, uuid.New(), UpdatePlanPayload{Notes: &notes})
	assert.True(t, IsNotFound(err))
}

func TestPlanService_ListPlans_Filters(t *testing.T) {
	database := setupTestDBPlans(t, "testdb_plan_service_list")
	clock := utils.FixedClock{Instant: date(2024, time.June, 15)}
	svc := NewPlanService(database, testConfig(), clock, nil)
	ctx := context.Background()

	mentorID := uuid.New()
	for i, status := range []models.PlanStatus{
		models.PlanStatusActive, models.PlanStatusActive, models.PlanStatusSuspended,
	} {
		plan, err := svc.CreatePlan(ctx, mentorID, CreatePlanPayload{
			MentorshipID:     uuid.New(),
			MenteeID:         uuid.New(),
			PaymentType:      models.PaymentTypePix,
			PaymentModality:  models.ModalityCash,
			TotalAmount:      decimal.NewFromInt(100),
			BillingFrequency: models.FrequencyMonthly,
			StartDate:        date(2024, time.June, 15),
			ExpirationDate:   date(2024, time.July+time.Month(i), 15),
		})
		assert.NoError(t, err)
		if status != models.PlanStatusActive {
			_, err = database.Collection(db.PlansCollection).UpdateOne(ctx,
				bson.M{"_id": plan.ID}, bson.M{"$set": bson.M{"status": status}})
			assert.NoError(t, err)
		}
	}

	plans, total, err := svc.ListPlans(ctx, mentorID, PlanFilters{
		Statuses: []models.PlanStatus{models.PlanStatusActive},
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, plans, 2)

	cutoff := date(2024, time.July, 31)
	plans, _, err = svc.ListPlans(ctx, mentorID, PlanFilters{ExpiringBefore: &cutoff})
	assert.NoError(t, err)
	assert.Len(t, plans, 1)

	// Another mentor sees nothing.
	plans, total, err = svc.ListPlans(ctx, uuid.New(), PlanFilters{})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, plans)
}
