package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"snowclear-api/money"
	"snowclear-api/payments"
	"snowclear-api/reservations"
)

// respondError maps domain errors onto HTTP status codes. Guard failures
// are rejected actions, not system faults, so they surface as 4xx.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reservations.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, reservations.ErrMissingVehicle),
		errors.Is(err, reservations.ErrMissingLocation),
		errors.Is(err, reservations.ErrDepartureTimePassed),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrInvalidFeePercent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, reservations.ErrAlreadyAssigned):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, reservations.ErrNotAssignedToYou):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, reservations.ErrInvalidStatusTransition),
		errors.Is(err, reservations.ErrAlreadyCompleted),
		errors.Is(err, reservations.ErrAlreadyCancelled),
		errors.Is(err, payments.ErrPayoutNotDue),
		errors.Is(err, payments.ErrNoPayoutAccount),
		errors.Is(err, payments.ErrReservationUnpaid):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, payments.ErrChargeFailed),
		errors.Is(err, payments.ErrTransferFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
