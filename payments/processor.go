// Package payments wraps the external card processor and drives the
// payment and payout status axes. Charging, refunding and transferring
// are the processor's job; this package only initiates them and applies
// the asynchronous confirmations.
package payments

import (
	"errors"
	"log"

	"github.com/google/uuid"
)

var (
	ErrChargeFailed   = errors.New("charge failed")
	ErrTransferFailed = errors.New("transfer failed")
)

type ChargeRequest struct {
	ReservationID uint
	AmountCents   int64
	Currency      string
	CardToken     string
	Description   string
}

type ChargeResult struct {
	ChargeID string
	Status   string
}

type RefundResult struct {
	RefundID string
	Status   string
}

type TransferResult struct {
	TransferID string
	Status     string
}

// Processor is the card-processor client. Charges and transfers are
// asynchronous: the result here only acknowledges submission, the final
// outcome arrives on a webhook.
type Processor interface {
	Charge(req ChargeRequest) (*ChargeResult, error)
	Refund(chargeID string, amountCents int64) (*RefundResult, error)
	Transfer(accountID string, amountCents int64, idempotencyKey string) (*TransferResult, error)
}

// SandboxProcessor acknowledges every request without moving real money.
// Used in development and tests; a production deployment injects the
// real client instead.
type SandboxProcessor struct{}

func (SandboxProcessor) Charge(req ChargeRequest) (*ChargeResult, error) {
	id := "ch_" + uuid.NewString()
	log.Printf("sandbox charge %s: reservation %d, %d cents", id, req.ReservationID, req.AmountCents)
	return &ChargeResult{ChargeID: id, Status: "submitted"}, nil
}

func (SandboxProcessor) Refund(chargeID string, amountCents int64) (*RefundResult, error) {
	id := "re_" + uuid.NewString()
	log.Printf("sandbox refund %s: charge %s, %d cents", id, chargeID, amountCents)
	return &RefundResult{RefundID: id, Status: "submitted"}, nil
}

func (SandboxProcessor) Transfer(accountID string, amountCents int64, idempotencyKey string) (*TransferResult, error) {
	id := "tr_" + uuid.NewString()
	log.Printf("sandbox transfer %s: account %s, %d cents (key %s)", id, accountID, amountCents, idempotencyKey)
	return &TransferResult{TransferID: id, Status: "submitted"}, nil
}

// Default is the processor used by the handlers. Swapped out in tests.
var Default Processor = SandboxProcessor{}
