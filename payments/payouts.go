package payments

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"snowclear-api/models"
	"snowclear-api/money"
	"snowclear-api/reservations"
)

var (
	ErrPayoutNotDue      = errors.New("payout is not due for transfer")
	ErrNoPayoutAccount   = errors.New("worker has no payout account")
	ErrReservationUnpaid = errors.New("reservation is not completed")
)

// TransferPayout sends the settled worker amount to the worker's
// external account. The transfer is gated on the payout still being
// pending (or failed, for a manual retry) at the moment of transfer:
// the claim to processing is a conditional update, so a retried
// completion or a double-submitted transfer can never pay twice.
func TransferPayout(db *gorm.DB, p Processor, reservationID uint) (*models.Reservation, error) {
	res, err := reservations.Get(db, reservationID)
	if err != nil {
		return nil, err
	}
	if res.Status != models.StatusCompleted {
		return nil, ErrReservationUnpaid
	}
	if res.Worker == nil || res.Worker.PayoutAccountID == "" {
		return nil, ErrNoPayoutAccount
	}

	// Claim the payout. Only one caller can move pending|failed → processing.
	claim := db.Model(&models.Reservation{}).
		Where("id = ? AND payout_status IN ?", reservationID,
			[]models.PayoutStatus{models.PayoutPending, models.PayoutFailed}).
		Update("payout_status", models.PayoutProcessing)
	if claim.Error != nil {
		return nil, claim.Error
	}
	if claim.RowsAffected == 0 {
		return nil, ErrPayoutNotDue
	}

	cents, err := money.ToCents(res.Payout.WorkerAmount)
	if err != nil {
		return nil, err
	}

	result, err := p.Transfer(res.Worker.PayoutAccountID, cents, uuid.NewString())
	if err != nil {
		// Submission itself failed; record it for financial-ops review. The
		// reservation stays completed regardless.
		db.Model(&models.Reservation{}).
			Where("id = ? AND payout_status = ?", reservationID, models.PayoutProcessing).
			Update("payout_status", models.PayoutFailed)
		return nil, fmt.Errorf("%v: %w", err, ErrTransferFailed)
	}

	if err := db.Model(&models.Reservation{}).
		Where("id = ? AND payout_status = ?", reservationID, models.PayoutProcessing).
		Update("payout_transfer_id", result.TransferID).Error; err != nil {
		return nil, err
	}
	return reservations.Get(db, reservationID)
}

// ApplyTransferEvent applies the processor's asynchronous transfer
// confirmation to the payout axis. A paid payout also gets its
// settlement timestamp and becomes immutable.
func ApplyTransferEvent(db *gorm.DB, reservationID uint, succeeded bool) error {
	target := models.PayoutFailed
	updates := map[string]interface{}{"payout_status": models.PayoutFailed}
	if succeeded {
		target = models.PayoutPaid
		updates["payout_status"] = models.PayoutPaid
		updates["payout_settled_at"] = time.Now()
	}

	result := db.Model(&models.Reservation{}).
		Where("id = ? AND payout_status = ?", reservationID, models.PayoutProcessing).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("payout for reservation %d is not processing, cannot mark %s: %w",
			reservationID, target, ErrPayoutNotDue)
	}
	return nil
}
