package models

import "time"

// DisputeType classifies what a dispute is about
type DisputeType string

const (
	DisputeDamage     DisputeType = "damage"
	DisputeIncomplete DisputeType = "incomplete"
	DisputeNoShow     DisputeType = "no_show"
	DisputeOvercharge DisputeType = "overcharge"
)

// DisputeStatus is independent of the reservation's own lifecycle
type DisputeStatus string

const (
	DisputeOpen        DisputeStatus = "open"
	DisputeUnderReview DisputeStatus = "under_review"
	DisputeResolved    DisputeStatus = "resolved"
	DisputeRejected    DisputeStatus = "rejected"
)

type Dispute struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	ReservationID uint          `json:"reservation_id" gorm:"not null"`
	Reservation   Reservation   `json:"reservation,omitempty" gorm:"foreignKey:ReservationID"`
	OpenedByID    uint          `json:"opened_by_id" gorm:"not null"`
	OpenedBy      User          `json:"opened_by,omitempty" gorm:"foreignKey:OpenedByID"`
	Type          DisputeType   `json:"type" gorm:"not null"`
	Status        DisputeStatus `json:"status" gorm:"not null;default:'open'"`
	Description   string        `json:"description"`
	Resolution    string        `json:"resolution,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
