// Package reservations implements the booking lifecycle. Every transition
// is a single conditional UPDATE keyed on the current status, so two
// racing actors resolve at the database without any in-process locking.
package reservations

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"snowclear-api/models"
	"snowclear-api/money"
	"snowclear-api/statemachine"
)

var (
	ErrNotFound                = errors.New("reservation not found")
	ErrMissingVehicle          = errors.New("a vehicle must be selected")
	ErrMissingLocation         = errors.New("a location must be provided")
	ErrDepartureTimePassed     = errors.New("departure time has already passed")
	ErrAlreadyAssigned         = errors.New("reservation has already been accepted by another worker")
	ErrNotAssignedToYou        = errors.New("reservation is not assigned to you")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrAlreadyCompleted        = errors.New("reservation is already completed")
	ErrAlreadyCancelled        = errors.New("reservation is already cancelled")
)

// Event is a worker-driven progress step between assignment and completion
type Event string

const (
	EventDepart Event = "depart" // assigned → enRoute
	EventStart  Event = "start"  // enRoute → inProgress
)

var eventTargets = map[Event]struct {
	from models.ReservationStatus
	to   models.ReservationStatus
}{
	EventDepart: {models.StatusAssigned, models.StatusEnRoute},
	EventStart:  {models.StatusEnRoute, models.StatusInProgress},
}

// CreateInput carries everything needed to book a clearing job
type CreateInput struct {
	ClientID       uint
	VehicleID      uint
	Latitude       float64
	Longitude      float64
	Address        string
	LocationNote   string
	ServiceOptions []models.ServiceOption
	SnowDepth      models.SnowDepth
	DepartureTime  time.Time
	Deadline       time.Time
	TotalPrice     float64
}

// Create books a new reservation in the pending state
func Create(db *gorm.DB, in CreateInput) (*models.Reservation, error) {
	if in.VehicleID == 0 {
		return nil, ErrMissingVehicle
	}
	if in.Address == "" && in.Latitude == 0 && in.Longitude == 0 {
		return nil, ErrMissingLocation
	}
	if !in.DepartureTime.After(time.Now()) {
		return nil, ErrDepartureTimePassed
	}
	total, err := money.ValidateAmount(in.TotalPrice, "total_price")
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, fmt.Errorf("total_price must be positive: %w", money.ErrInvalidAmount)
	}

	deadline := in.Deadline
	if deadline.IsZero() {
		deadline = in.DepartureTime
	}

	res := models.Reservation{
		ClientID:       in.ClientID,
		VehicleID:      in.VehicleID,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
		Address:        in.Address,
		LocationNote:   in.LocationNote,
		ServiceOptions: in.ServiceOptions,
		SnowDepth:      in.SnowDepth,
		DepartureTime:  in.DepartureTime,
		Deadline:       deadline,
		TotalPrice:     total,
		Status:         models.StatusPending,
		PaymentStatus:  models.PaymentPending,
	}
	if err := db.Create(&res).Error; err != nil {
		return nil, err
	}

	recordHistory(db, res.ID, "", models.StatusPending, "client", in.ClientID, "Reservation created")
	return &res, nil
}

// Get loads a reservation with its references
func Get(db *gorm.DB, id uint) (*models.Reservation, error) {
	var res models.Reservation
	err := db.Preload("Vehicle").Preload("Client").Preload("Worker").
		Preload("StatusHistory").First(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Accept assigns a pending reservation to a worker. Two workers racing
// for the same job resolve at the conditional update: exactly one update
// matches "status = pending AND worker_id IS NULL", the loser gets
// ErrAlreadyAssigned.
func Accept(db *gorm.DB, id, workerID uint) (*models.Reservation, error) {
	res, err := fetch(db, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := db.Model(&models.Reservation{}).
		Where("id = ? AND status = ? AND worker_id IS NULL", id, models.StatusPending).
		Updates(map[string]interface{}{
			"status":      models.StatusAssigned,
			"worker_id":   workerID,
			"assigned_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrAlreadyAssigned
	}

	recordHistory(db, id, res.Status, models.StatusAssigned, "worker", workerID, "Worker accepted the job")
	return Get(db, id)
}

// Advance moves an assigned reservation one step forward (depart, start).
// Only the assigned worker may do this.
func Advance(db *gorm.DB, id, actorID uint, event Event) (*models.Reservation, error) {
	target, ok := eventTargets[event]
	if !ok {
		return nil, fmt.Errorf("unknown event %q: %w", event, ErrInvalidStatusTransition)
	}

	res, err := fetch(db, id)
	if err != nil {
		return nil, err
	}
	if res.WorkerID == nil || *res.WorkerID != actorID {
		return nil, ErrNotAssignedToYou
	}
	if err := statemachine.CanTransition(res.Status, target.to, "worker"); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidStatusTransition)
	}

	result := db.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, target.from).
		Update("status", target.to)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Lost a race: the status moved under us since the read.
		return nil, ErrInvalidStatusTransition
	}

	recordHistory(db, id, target.from, target.to, "worker", actorID, "Worker "+string(event))
	return Get(db, id)
}

// Cancel moves a non-terminal reservation to cancelled and records who
// did it and why.
func Cancel(db *gorm.DB, id, actorID uint, actor models.CancelActor, reason string) (*models.Reservation, error) {
	res, err := fetch(db, id)
	if err != nil {
		return nil, err
	}
	if err := terminalError(res.Status); err != nil {
		return nil, err
	}
	if err := statemachine.CanTransition(res.Status, models.StatusCancelled, string(actor)); err != nil {
		return nil, fmt.Errorf("%v: %w", err, ErrInvalidStatusTransition)
	}

	now := time.Now()
	result := db.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, res.Status).
		Updates(map[string]interface{}{
			"status":        models.StatusCancelled,
			"cancelled_by":  actor,
			"cancel_reason": reason,
			"cancelled_at":  now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// Re-read to report the precise terminal error to the caller.
		fresh, ferr := fetch(db, id)
		if ferr != nil {
			return nil, ferr
		}
		if err := terminalError(fresh.Status); err != nil {
			return nil, err
		}
		return nil, ErrInvalidStatusTransition
	}

	recordHistory(db, id, res.Status, models.StatusCancelled, string(actor), actorID, "Cancelled: "+reason)
	return Get(db, id)
}

// Complete finishes an in-progress job and settles it: the payment
// breakdown is computed once, persisted as the payout sub-record with
// status pending, all in the same conditional update. A retried
// completion finds the status already moved and fails without
// recomputing anything.
func Complete(db *gorm.DB, id, actorID uint, platformFeePercent float64) (*models.Reservation, *money.Breakdown, error) {
	res, err := fetch(db, id)
	if err != nil {
		return nil, nil, err
	}
	if res.WorkerID == nil || *res.WorkerID != actorID {
		return nil, nil, ErrNotAssignedToYou
	}
	if err := statemachine.CanTransition(res.Status, models.StatusCompleted, "worker"); err != nil {
		return nil, nil, fmt.Errorf("%v: %w", err, ErrInvalidStatusTransition)
	}

	bd, err := money.CalculatePaymentBreakdown(res.TotalPrice, platformFeePercent, res.TipAmount)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	result := db.Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, models.StatusInProgress).
		Updates(map[string]interface{}{
			"status":                  models.StatusCompleted,
			"completed_at":            now,
			"payout_status":           models.PayoutPending,
			"payout_gross_total":      bd.GrossTotal,
			"payout_platform_fee":     bd.PlatformFee,
			"payout_worker_amount":    bd.WorkerAmount,
			"payout_processor_fee":    bd.ProcessorFee,
			"payout_platform_fee_net": bd.PlatformFeeNet,
			"payout_tip_amount":       bd.TipAmount,
		})
	if result.Error != nil {
		return nil, nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil, ErrInvalidStatusTransition
	}

	recordHistory(db, id, models.StatusInProgress, models.StatusCompleted, "worker", actorID, "Job completed, payout settled")
	updated, err := Get(db, id)
	if err != nil {
		return nil, nil, err
	}
	return updated, bd, nil
}

// AddTip records a tip on a reservation that has not yet settled. Tips
// recorded before completion flow into the payout breakdown.
func AddTip(db *gorm.DB, id, clientID uint, tip any) (*models.Reservation, error) {
	amount, err := money.ValidateAmount(tip, "tip_amount")
	if err != nil {
		return nil, err
	}

	res, err := fetch(db, id)
	if err != nil {
		return nil, err
	}
	if res.ClientID != clientID {
		return nil, ErrNotFound
	}
	if err := terminalError(res.Status); err != nil {
		return nil, err
	}

	if err := db.Model(&models.Reservation{}).
		Where("id = ? AND status NOT IN ?", id, []models.ReservationStatus{models.StatusCompleted, models.StatusCancelled}).
		Update("tip_amount", amount).Error; err != nil {
		return nil, err
	}
	return Get(db, id)
}

func terminalError(status models.ReservationStatus) error {
	switch status {
	case models.StatusCompleted:
		return ErrAlreadyCompleted
	case models.StatusCancelled:
		return ErrAlreadyCancelled
	}
	return nil
}

// fetch is the lightweight load used by transition guards
func fetch(db *gorm.DB, id uint) (*models.Reservation, error) {
	var res models.Reservation
	err := db.First(&res, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func recordHistory(db *gorm.DB, resID uint, from, to models.ReservationStatus, actor string, changedBy uint, note string) {
	db.Create(&models.ReservationStatusHistory{
		ReservationID: resID,
		FromStatus:    from,
		ToStatus:      to,
		Actor:         actor,
		ChangedBy:     changedBy,
		Note:          note,
	})
}
