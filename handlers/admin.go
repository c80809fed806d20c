package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"snowclear-api/config"
	"snowclear-api/middleware"
	"snowclear-api/models"
	"snowclear-api/money"
	"snowclear-api/payments"
)

// AdminGetAllReservations returns all reservations with full detail
func AdminGetAllReservations(c *gin.Context) {
	var list []models.Reservation
	query := config.DB.Preload("Vehicle").Preload("Client").Preload("Worker").Preload("StatusHistory")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if paymentStatus := c.Query("payment_status"); paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}
	if clientID := c.Query("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}
	if workerID := c.Query("worker_id"); workerID != "" {
		query = query.Where("worker_id = ?", workerID)
	}

	query.Order("created_at desc").Find(&list)

	// Admin dashboard: aggregate by status
	summary := map[string]int{}
	var grossRevenue, platformNet float64
	for _, r := range list {
		summary[string(r.Status)]++
		if r.Status == models.StatusCompleted {
			grossRevenue += r.Payout.GrossTotal
			platformNet += r.Payout.PlatformFeeNet
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status_summary":   summary,
		"gross_revenue":    money.RoundMoney(grossRevenue),
		"platform_fee_net": money.RoundMoney(platformNet),
		"count":            len(list),
		"reservations":     list,
	})
}

// AdminGetAllUsers returns all users
func AdminGetAllUsers(c *gin.Context) {
	var users []models.User
	query := config.DB
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	query.Find(&users)
	c.JSON(http.StatusOK, gin.H{"count": len(users), "users": users})
}

// AdminPromoteUser is the only path that changes a user's role
func AdminPromoteUser(c *gin.Context) {
	var req struct {
		Role models.UserRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	validRoles := map[models.UserRole]bool{
		models.RoleClient: true,
		models.RoleWorker: true,
		models.RoleAdmin:  true,
	}
	if !validRoles[req.Role] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role. Must be: client, snowWorker, or admin"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	previous := user.Role
	config.DB.Model(&user).Update("role", req.Role)

	c.JSON(http.StatusOK, gin.H{
		"message":       "User role updated",
		"user_id":       user.ID,
		"previous_role": previous,
		"new_role":      req.Role,
	})
}

// AdminForceReservationStatus lets admin override any reservation state
// (emergency use)
func AdminForceReservationStatus(c *gin.Context) {
	adminID := middleware.GetUserID(c)
	var req struct {
		Status models.ReservationStatus `json:"status" binding:"required"`
		Reason string                   `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var res models.Reservation
	if err := config.DB.First(&res, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
		return
	}
	prevStatus := res.Status
	config.DB.Model(&res).Update("status", req.Status)

	history := models.ReservationStatusHistory{
		ReservationID: res.ID,
		FromStatus:    prevStatus,
		ToStatus:      req.Status,
		Actor:         "admin",
		ChangedBy:     adminID,
		Note:          "[ADMIN OVERRIDE] " + req.Reason,
	}
	config.DB.Create(&history)

	c.JSON(http.StatusOK, gin.H{
		"message":         "Reservation status force-updated by admin",
		"reservation_id":  res.ID,
		"previous_status": prevStatus,
		"new_status":      req.Status,
	})
}

// AdminTransferPayout triggers (or retries) the worker payout transfer
// for a completed reservation
func AdminTransferPayout(c *gin.Context) {
	id := parseID(c)

	res, err := payments.TransferPayout(config.DB, payments.Default, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Payout transfer submitted",
		"payout_status": res.Payout.Status,
		"transfer_id":   res.Payout.TransferID,
	})
}

// AdminListDisputes returns disputes, optionally filtered by status
func AdminListDisputes(c *gin.Context) {
	var disputes []models.Dispute
	query := config.DB.Preload("Reservation").Preload("OpenedBy")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query.Order("created_at desc").Find(&disputes)
	c.JSON(http.StatusOK, gin.H{"count": len(disputes), "disputes": disputes})
}

// AdminResolveDispute advances a dispute through its lifecycle
func AdminResolveDispute(c *gin.Context) {
	var req struct {
		Status     models.DisputeStatus `json:"status" binding:"required"`
		Resolution string               `json:"resolution"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var dispute models.Dispute
	if err := config.DB.First(&dispute, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Dispute not found"})
		return
	}

	allowed := map[models.DisputeStatus][]models.DisputeStatus{
		models.DisputeOpen:        {models.DisputeUnderReview, models.DisputeResolved, models.DisputeRejected},
		models.DisputeUnderReview: {models.DisputeResolved, models.DisputeRejected},
	}
	ok := false
	for _, next := range allowed[dispute.Status] {
		if next == req.Status {
			ok = true
			break
		}
	}
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          "Invalid dispute transition",
			"current_status": dispute.Status,
		})
		return
	}

	config.DB.Model(&dispute).Updates(map[string]interface{}{
		"status":     req.Status,
		"resolution": req.Resolution,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Dispute updated", "dispute": dispute})
}
