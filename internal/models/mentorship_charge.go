package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeStatus is the status of an ad-hoc charge. Unlike reminders, charges
// keep the historical lowercase vocabulary.
type ChargeStatus string

const (
	ChargeStatusPending ChargeStatus = "pending"
	ChargeStatusPaid    ChargeStatus = "paid"
	ChargeStatusOverdue ChargeStatus = "overdue"
)

// MentorshipCharge is a lighter-weight, non-recurring billing item,
// independent of any FinancialPlan.
type MentorshipCharge struct {
	ID           uuid.UUID       `bson:"_id" json:"id"`
	MentorshipID uuid.UUID       `bson:"mentorship_id" json:"mentorshipId"`
	MentorID     uuid.UUID       `bson:"mentor_id" json:"mentorId"`
	Description  string          `bson:"description" json:"description"`
	Amount       decimal.Decimal `bson:"amount" json:"amount"`
	DueDate      time.Time       `bson:"due_date" json:"dueDate"`
	Status       ChargeStatus    `bson:"status" json:"status"`
	PaidAt       *time.Time      `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	CreatedAt    time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `bson:"updated_at" json:"updatedAt"`
}
