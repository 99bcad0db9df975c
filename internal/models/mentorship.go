package models

import (
	"time"

	"github.com/google/uuid"
)

// MentorshipStatus mirrors the plan status vocabulary for the subset the
// lifecycle manager cascades.
type MentorshipStatus string

const (
	MentorshipStatusActive    MentorshipStatus = "ACTIVE"
	MentorshipStatusSuspended MentorshipStatus = "SUSPENDED"
	MentorshipStatusExpired   MentorshipStatus = "EXPIRED"
)

// Mentorship is the relationship record a financial plan belongs to. The
// billing core only writes its status and end date, as a second independent
// write after the plan update (no cross-document transaction).
type Mentorship struct {
	ID        uuid.UUID        `bson:"_id" json:"id"`
	MentorID  uuid.UUID        `bson:"mentor_id" json:"mentorId"`
	MenteeID  uuid.UUID        `bson:"mentee_id" json:"menteeId"`
	Status    MentorshipStatus `bson:"status" json:"status"`
	StartDate time.Time        `bson:"start_date" json:"startDate"`
	EndDate   *time.Time       `bson:"end_date,omitempty" json:"endDate,omitempty"`
	CreatedAt time.Time        `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `bson:"updated_at" json:"updatedAt"`
}
