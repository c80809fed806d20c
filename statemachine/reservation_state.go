package statemachine

import (
	"errors"

	"snowclear-api/models"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.ReservationStatus
	To    models.ReservationStatus
	Actor string // "client", "worker", "system", "admin"
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Worker claims an open job
	{From: models.StatusPending, To: models.StatusAssigned, Actor: "worker"},
	// Assigned worker heads out
	{From: models.StatusAssigned, To: models.StatusEnRoute, Actor: "worker"},
	// Worker arrives and starts clearing
	{From: models.StatusEnRoute, To: models.StatusInProgress, Actor: "worker"},
	// Worker finishes the job; settlement happens here
	{From: models.StatusInProgress, To: models.StatusCompleted, Actor: "worker"},
	// Cancellation is allowed from every non-terminal state
	{From: models.StatusPending, To: models.StatusCancelled, Actor: "client"},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: "worker"},
	{From: models.StatusPending, To: models.StatusCancelled, Actor: "system"},
	{From: models.StatusAssigned, To: models.StatusCancelled, Actor: "client"},
	{From: models.StatusAssigned, To: models.StatusCancelled, Actor: "worker"},
	{From: models.StatusAssigned, To: models.StatusCancelled, Actor: "system"},
	{From: models.StatusEnRoute, To: models.StatusCancelled, Actor: "client"},
	{From: models.StatusEnRoute, To: models.StatusCancelled, Actor: "worker"},
	{From: models.StatusEnRoute, To: models.StatusCancelled, Actor: "system"},
	{From: models.StatusInProgress, To: models.StatusCancelled, Actor: "client"},
	{From: models.StatusInProgress, To: models.StatusCancelled, Actor: "worker"},
	{From: models.StatusInProgress, To: models.StatusCancelled, Actor: "system"},
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.ReservationStatus
	To    models.ReservationStatus
	Actor string
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.ReservationStatus) []models.ReservationStatus {
	var nexts []models.ReservationStatus
	seen := map[models.ReservationStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// IsTerminal reports whether no transition can ever leave the given state
func IsTerminal(status models.ReservationStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// CanTransition checks if a given actor can move from one state to another
func CanTransition(from, to models.ReservationStatus, actor string) error {
	key := transitionKey{From: from, To: to, Actor: actor}
	if transitionMap[key] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " → " + string(to) +
			" is not allowed for actor '" + actor + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.ReservationStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}

// paymentTransitions is the payment axis. It is driven by processor
// webhooks, never by the reservation lifecycle directly.
var paymentTransitions = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentPending: {models.PaymentPaid, models.PaymentFailed},
	models.PaymentPaid:    {models.PaymentRefunded, models.PaymentPartiallyRefunded},
}

// CanPaymentTransition validates a payment-status change
func CanPaymentTransition(from, to models.PaymentStatus) error {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return nil
		}
	}
	return errors.New("invalid payment transition: " + string(from) + " → " + string(to))
}

// payoutTransitions is the payout axis. failed → processing allows a
// manual re-transfer after a failed payout.
var payoutTransitions = map[models.PayoutStatus][]models.PayoutStatus{
	models.PayoutPending:    {models.PayoutProcessing},
	models.PayoutProcessing: {models.PayoutPaid, models.PayoutFailed},
	models.PayoutFailed:     {models.PayoutProcessing},
}

// CanPayoutTransition validates a payout-status change
func CanPayoutTransition(from, to models.PayoutStatus) error {
	for _, next := range payoutTransitions[from] {
		if next == to {
			return nil
		}
	}
	return errors.New("invalid payout transition: " + string(from) + " → " + string(to))
}
