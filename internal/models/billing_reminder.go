package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReminderStatus is the lifecycle status of a billing reminder.
// CANCELLED is terminal: there is no transition out of it.
type ReminderStatus string

const (
	ReminderStatusPending   ReminderStatus = "PENDING"
	ReminderStatusSent      ReminderStatus = "SENT"
	ReminderStatusPaid      ReminderStatus = "PAID"
	ReminderStatusOverdue   ReminderStatus = "OVERDUE"
	ReminderStatusCancelled ReminderStatus = "CANCELLED"
)

// BillingReminder is one scheduled billing obligation (an installment or a
// lump sum) with a due date and lifecycle status. Reminders are created in
// batches by schedule generation and mutated one at a time afterwards.
//
// InstallmentNumber and TotalInstallments are set only when the plan has
// more than one installment; both are nil otherwise.
type BillingReminder struct {
	ID                uuid.UUID       `bson:"_id" json:"id"`
	PlanID            uuid.UUID       `bson:"plan_id" json:"planId"`
	MentorshipID      uuid.UUID       `bson:"mentorship_id" json:"mentorshipId"`
	MenteeID          uuid.UUID       `bson:"mentee_id" json:"menteeId"`
	MentorID          uuid.UUID       `bson:"mentor_id" json:"mentorId"`
	DueDate           time.Time       `bson:"due_date" json:"dueDate"`
	Amount            decimal.Decimal `bson:"amount" json:"amount"`
	InstallmentNumber *int            `bson:"installment_number,omitempty" json:"installmentNumber,omitempty"`
	TotalInstallments *int            `bson:"total_installments,omitempty" json:"totalInstallments,omitempty"`
	Status            ReminderStatus  `bson:"status" json:"status"`
	SentAt            *time.Time      `bson:"sent_at,omitempty" json:"sentAt,omitempty"`
	PaidAt            *time.Time      `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	ConfirmedBy       *uuid.UUID      `bson:"confirmed_by,omitempty" json:"confirmedBy,omitempty"`
	Notes             string          `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt         time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time       `bson:"updated_at" json:"updatedAt"`
}
