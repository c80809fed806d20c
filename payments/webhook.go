package payments

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"snowclear-api/models"
	"snowclear-api/money"
	"snowclear-api/reservations"
	"snowclear-api/statemachine"
)

var ErrUnknownEvent = errors.New("unknown payment event")

// paymentEvents maps processor webhook event types onto the payment axis
var paymentEvents = map[string]models.PaymentStatus{
	"charge.succeeded":          models.PaymentPaid,
	"charge.failed":             models.PaymentFailed,
	"charge.refunded":           models.PaymentRefunded,
	"charge.partially_refunded": models.PaymentPartiallyRefunded,
}

// ApplyPaymentEvent applies an asynchronous processor confirmation to a
// reservation's payment status. The reservation lifecycle is untouched:
// status=completed with paymentStatus still pending is a normal
// "awaiting reconciliation" combination, not an error.
func ApplyPaymentEvent(db *gorm.DB, reservationID uint, eventType string) (*models.Reservation, error) {
	target, ok := paymentEvents[eventType]
	if !ok {
		return nil, fmt.Errorf("%q: %w", eventType, ErrUnknownEvent)
	}

	res, err := reservations.Get(db, reservationID)
	if err != nil {
		return nil, err
	}
	if err := statemachine.CanPaymentTransition(res.PaymentStatus, target); err != nil {
		return nil, err
	}

	result := db.Model(&models.Reservation{}).
		Where("id = ? AND payment_status = ?", reservationID, res.PaymentStatus).
		Update("payment_status", target)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		// An out-of-order webhook raced us; re-check against the fresh state.
		fresh, ferr := reservations.Get(db, reservationID)
		if ferr != nil {
			return nil, ferr
		}
		return nil, statemachine.CanPaymentTransition(fresh.PaymentStatus, target)
	}
	return reservations.Get(db, reservationID)
}

// InitiateCharge submits the card charge for a reservation. Payment
// status stays pending until the processor's webhook confirms.
func InitiateCharge(db *gorm.DB, p Processor, res *models.Reservation, cardToken string) (*models.Reservation, error) {
	cents, err := money.ToCents(res.TotalPrice + res.TipAmount)
	if err != nil {
		return nil, err
	}
	result, err := p.Charge(ChargeRequest{
		ReservationID: res.ID,
		AmountCents:   cents,
		Currency:      "usd",
		CardToken:     cardToken,
		Description:   fmt.Sprintf("Snow clearing reservation #%d", res.ID),
	})
	if err != nil {
		// A declined card marks the payment failed and leaves the
		// reservation alone. No automatic retry.
		db.Model(&models.Reservation{}).
			Where("id = ? AND payment_status = ?", res.ID, models.PaymentPending).
			Update("payment_status", models.PaymentFailed)
		return nil, fmt.Errorf("%v: %w", err, ErrChargeFailed)
	}

	if err := db.Model(&models.Reservation{}).
		Where("id = ?", res.ID).
		Update("charge_id", result.ChargeID).Error; err != nil {
		return nil, err
	}
	return reservations.Get(db, res.ID)
}
