package models

import "time"

// ReservationStatus represents all possible states of a snow-clearing reservation
type ReservationStatus string

const (
	StatusPending    ReservationStatus = "pending"
	StatusAssigned   ReservationStatus = "assigned"
	StatusEnRoute    ReservationStatus = "enRoute"
	StatusInProgress ReservationStatus = "inProgress"
	StatusCompleted  ReservationStatus = "completed"
	StatusCancelled  ReservationStatus = "cancelled"
)

// PaymentStatus tracks the card charge on a reservation. It is a separate
// axis from ReservationStatus: a completed job may still be awaiting its
// payment confirmation webhook.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

// PayoutStatus tracks the worker transfer, independent of both the
// reservation and the payment axes.
type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "pending"
	PayoutProcessing PayoutStatus = "processing"
	PayoutPaid       PayoutStatus = "paid"
	PayoutFailed     PayoutStatus = "failed"
)

// CancelActor records who cancelled a reservation
type CancelActor string

const (
	CancelledByClient CancelActor = "client"
	CancelledByWorker CancelActor = "worker"
	CancelledBySystem CancelActor = "system"
)

// SnowDepth is the client's estimate of accumulation on the vehicle
type SnowDepth string

const (
	DepthLight    SnowDepth = "light"
	DepthModerate SnowDepth = "moderate"
	DepthHeavy    SnowDepth = "heavy"
	DepthExtreme  SnowDepth = "extreme"
)

// ServiceOption is a requested add-on for the clearing job
type ServiceOption string

const (
	OptionClearWindshield  ServiceOption = "clearWindshield"
	OptionClearRoof        ServiceOption = "clearRoof"
	OptionClearDoors       ServiceOption = "clearDoors"
	OptionClearAroundTires ServiceOption = "clearAroundTires"
	OptionDeIce            ServiceOption = "deIce"
)

// Payout is the settlement computed when a job completes. It is written
// once at completion and never recomputed; a confirmed transfer freezes it.
type Payout struct {
	Status         PayoutStatus `json:"status"`
	GrossTotal     float64      `json:"gross_total"`
	PlatformFee    float64      `json:"platform_fee"`
	WorkerAmount   float64      `json:"worker_amount"`
	ProcessorFee   float64      `json:"processor_fee"`
	PlatformFeeNet float64      `json:"platform_fee_net"`
	TipAmount      float64      `json:"tip_amount"`
	TransferID     string       `json:"transfer_id,omitempty"`
	SettledAt      *time.Time   `json:"settled_at,omitempty"`
}

type Reservation struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	ClientID  uint    `json:"client_id" gorm:"not null"`
	Client    User    `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	VehicleID uint    `json:"vehicle_id" gorm:"not null"`
	Vehicle   Vehicle `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	WorkerID  *uint   `json:"worker_id"`
	Worker    *User   `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`

	Latitude       float64         `json:"latitude"`
	Longitude      float64         `json:"longitude"`
	Address        string          `json:"address"`
	LocationNote   string          `json:"location_note"`
	ServiceOptions []ServiceOption `json:"service_options" gorm:"serializer:json"`
	SnowDepth      SnowDepth       `json:"snow_depth"`

	// The client needs the vehicle clear by DepartureTime; Deadline is the
	// latest the platform keeps looking for a worker.
	DepartureTime time.Time `json:"departure_time"`
	Deadline      time.Time `json:"deadline"`

	TotalPrice float64 `json:"total_price"`
	TipAmount  float64 `json:"tip_amount"`

	Status        ReservationStatus `json:"status" gorm:"index;not null;default:'pending'"`
	PaymentStatus PaymentStatus     `json:"payment_status" gorm:"not null;default:'pending'"`
	ChargeID      string            `json:"charge_id,omitempty"`

	Payout Payout `json:"payout" gorm:"embedded;embeddedPrefix:payout_"`

	CancelledBy  CancelActor `json:"cancelled_by,omitempty"`
	CancelReason string      `json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time  `json:"cancelled_at,omitempty"`
	AssignedAt   *time.Time  `json:"assigned_at,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`

	StatusHistory []ReservationStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:ReservationID"`
	CreatedAt     time.Time                  `json:"created_at"`
	UpdatedAt     time.Time                  `json:"updated_at"`
}

// ReservationStatusHistory tracks every status change for audit
type ReservationStatusHistory struct {
	ID            uint              `json:"id" gorm:"primaryKey"`
	ReservationID uint              `json:"reservation_id" gorm:"not null"`
	FromStatus    ReservationStatus `json:"from_status"`
	ToStatus      ReservationStatus `json:"to_status" gorm:"not null"`
	Actor         string            `json:"actor"`
	ChangedBy     uint              `json:"changed_by"` // user ID who triggered the transition, 0 for system
	Note          string            `json:"note"`
	CreatedAt     time.Time         `json:"created_at"`
}
