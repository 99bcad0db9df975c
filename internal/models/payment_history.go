package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHistory records a confirmed payment. Exactly one row exists for a
// reminder while that reminder is PAID; confirm creates it and revert
// deletes it. ReminderID is nil for ad-hoc charges recorded outside the
// reminder schedule.
type PaymentHistory struct {
	ID                uuid.UUID       `bson:"_id" json:"id"`
	PlanID            uuid.UUID       `bson:"plan_id" json:"planId"`
	MentorshipID      uuid.UUID       `bson:"mentorship_id" json:"mentorshipId"`
	MenteeID          uuid.UUID       `bson:"mentee_id" json:"menteeId"`
	MentorID          uuid.UUID       `bson:"mentor_id" json:"mentorId"`
	Amount            decimal.Decimal `bson:"amount" json:"amount"`
	PaymentType       PaymentType     `bson:"payment_type" json:"paymentType"`
	InstallmentNumber *int            `bson:"installment_number,omitempty" json:"installmentNumber,omitempty"`
	PaymentDate       time.Time       `bson:"payment_date" json:"paymentDate"`
	ConfirmedAt       time.Time       `bson:"confirmed_at" json:"confirmedAt"`
	ConfirmedBy       uuid.UUID       `bson:"confirmed_by" json:"confirmedBy"`
	ReminderID        *uuid.UUID      `bson:"reminder_id,omitempty" json:"reminderId,omitempty"`
	Notes             string          `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt         time.Time       `bson:"created_at" json:"createdAt"`
}
