package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"snowclear-api/config"
	"snowclear-api/middleware"
	"snowclear-api/models"
	"snowclear-api/notifications"
	"snowclear-api/reservations"
)

// GetOpenJobs shows pending reservations that have no worker assigned
func GetOpenJobs(c *gin.Context) {
	var list []models.Reservation
	config.DB.Preload("Vehicle").Preload("Client").
		Where("status = ? AND worker_id IS NULL", models.StatusPending).
		Order("departure_time asc").
		Find(&list)
	c.JSON(http.StatusOK, gin.H{"count": len(list), "reservations": list})
}

// GetMyJobs returns all reservations assigned to the logged-in worker
func GetMyJobs(c *gin.Context) {
	workerID := middleware.GetUserID(c)
	var list []models.Reservation
	query := config.DB.Preload("Vehicle").Preload("Client").
		Where("worker_id = ?", workerID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query.Order("updated_at desc").Find(&list)
	c.JSON(http.StatusOK, gin.H{"count": len(list), "reservations": list})
}

// AcceptJob claims a pending reservation. Two workers racing for the
// same job resolve atomically: exactly one wins, the other gets 409.
func AcceptJob(c *gin.Context) {
	workerID := middleware.GetUserID(c)
	id := parseID(c)

	res, err := reservations.Accept(config.DB, id, workerID)
	if err != nil {
		respondError(c, err)
		return
	}

	notifications.Notify(&res.Client, "Worker on the way soon",
		fmt.Sprintf("A worker accepted your reservation #%d.", res.ID))

	c.JSON(http.StatusOK, gin.H{
		"message":     "Job accepted",
		"reservation": res,
	})
}

// DepartJob transitions assigned → enRoute
func DepartJob(c *gin.Context) {
	workerID := middleware.GetUserID(c)
	id := parseID(c)

	res, err := reservations.Advance(config.DB, id, workerID, reservations.EventDepart)
	if err != nil {
		respondError(c, err)
		return
	}

	notifications.Notify(&res.Client, "Worker en route",
		fmt.Sprintf("Your worker is on the way for reservation #%d.", res.ID))

	c.JSON(http.StatusOK, gin.H{"message": "Marked en route", "reservation": res})
}

// StartJob transitions enRoute → inProgress
func StartJob(c *gin.Context) {
	workerID := middleware.GetUserID(c)
	id := parseID(c)

	res, err := reservations.Advance(config.DB, id, workerID, reservations.EventStart)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Job started", "reservation": res})
}

// CompleteJob transitions inProgress → completed and settles the payout.
// The payout transfer itself is a separate, later operation; a failed
// transfer never rolls this back.
func CompleteJob(c *gin.Context) {
	workerID := middleware.GetUserID(c)
	id := parseID(c)

	res, breakdown, err := reservations.Complete(config.DB, id, workerID, config.PlatformFeePercent)
	if err != nil {
		respondError(c, err)
		return
	}

	notifications.Notify(&res.Client, "Your vehicle is clear",
		fmt.Sprintf("Reservation #%d is complete. Total charged: $%.2f (tip $%.2f).",
			res.ID, breakdown.GrossTotal, breakdown.TipAmount))

	c.JSON(http.StatusOK, gin.H{
		"message":     "Job completed",
		"reservation": res,
		"payout":      breakdown,
	})
}

// WorkerCancelJob lets the assigned worker back out of a job
func WorkerCancelJob(c *gin.Context) {
	workerID := middleware.GetUserID(c)
	id := parseID(c)

	var req struct {
		Reason string `json:"reason"`
	}
	c.ShouldBindJSON(&req)

	res, err := reservations.Get(config.DB, id)
	if err != nil {
		respondError(c, err)
		return
	}
	// A worker may only cancel a job that is theirs (or decline has no
	// meaning: unassigned pending jobs are simply not accepted).
	if res.WorkerID == nil || *res.WorkerID != workerID {
		respondError(c, reservations.ErrNotAssignedToYou)
		return
	}

	cancelled, err := reservations.Cancel(config.DB, id, workerID, models.CancelledByWorker, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	notifications.Notify(&cancelled.Client, "Reservation cancelled",
		fmt.Sprintf("The worker cancelled reservation #%d: %s", cancelled.ID, req.Reason))

	c.JSON(http.StatusOK, gin.H{"message": "Job cancelled", "reservation": cancelled})
}
