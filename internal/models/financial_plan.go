package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlanStatus is the lifecycle status of a financial plan.
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "ACTIVE"
	PlanStatusSuspended PlanStatus = "SUSPENDED"
	PlanStatusExpired   PlanStatus = "EXPIRED"
	PlanStatusCancelled PlanStatus = "CANCELLED"
	PlanStatusPending   PlanStatus = "PENDING"
)

// PaymentType identifies how a mentee pays.
type PaymentType string

const (
	PaymentTypePix          PaymentType = "pix"
	PaymentTypeCreditCard   PaymentType = "credit_card"
	PaymentTypeDebitCard    PaymentType = "debit_card"
	PaymentTypeBankTransfer PaymentType = "bank_transfer"
	PaymentTypeCash         PaymentType = "cash"
	PaymentTypeOther        PaymentType = "other"
)

// PaymentModality distinguishes a lump-sum arrangement from an installment one.
type PaymentModality string

const (
	ModalityCash        PaymentModality = "cash"
	ModalityInstallment PaymentModality = "installment"
)

// BillingFrequency is the recurrence step of a plan's billing schedule.
type BillingFrequency string

const (
	FrequencyMonthly    BillingFrequency = "MONTHLY"
	FrequencyQuarterly  BillingFrequency = "QUARTERLY"
	FrequencySemiannual BillingFrequency = "SEMIANNUAL"
	FrequencyAnnual     BillingFrequency = "ANNUAL"
	FrequencyCustom     BillingFrequency = "CUSTOM"
)

// Valid reports whether f is one of the known frequencies.
func (f BillingFrequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencySemiannual, FrequencyAnnual, FrequencyCustom:
		return true
	}
	return false
}

// FinancialPlan is a mentee's recurring financial arrangement within a
// mentorship. Owned by the mentor; one plan per mentorship in normal use.
// Plans are never hard-deleted, only transitioned through Status.
type FinancialPlan struct {
	ID                  uuid.UUID        `bson:"_id" json:"id"`
	MentorshipID        uuid.UUID        `bson:"mentorship_id" json:"mentorshipId"`
	MenteeID            uuid.UUID        `bson:"mentee_id" json:"menteeId"`
	MentorID            uuid.UUID        `bson:"mentor_id" json:"mentorId"`
	PaymentType         PaymentType      `bson:"payment_type" json:"paymentType"`
	PaymentModality     PaymentModality  `bson:"payment_modality" json:"paymentModality"`
	TotalAmount         decimal.Decimal  `bson:"total_amount" json:"totalAmount"`
	Installments        int              `bson:"installments" json:"installments"`
	InstallmentAmount   decimal.Decimal  `bson:"installment_amount" json:"installmentAmount"`
	BillingFrequency    BillingFrequency `bson:"billing_frequency" json:"billingFrequency"`
	CustomFrequencyDays *int             `bson:"custom_frequency_days,omitempty" json:"customFrequencyDays,omitempty"`
	StartDate           time.Time        `bson:"start_date" json:"startDate"`
	ExpirationDate      time.Time        `bson:"expiration_date" json:"expirationDate"`
	NextBillingDate     *time.Time       `bson:"next_billing_date,omitempty" json:"nextBillingDate,omitempty"`
	LastPaymentDate     *time.Time       `bson:"last_payment_date,omitempty" json:"lastPaymentDate,omitempty"`
	Status              PlanStatus       `bson:"status" json:"status"`
	Notes               string           `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt           time.Time        `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time        `bson:"updated_at" json:"updatedAt"`
}
