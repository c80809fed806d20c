package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"snowclear-api/config"
	"snowclear-api/middleware"
	"snowclear-api/models"
	"snowclear-api/notifications"
	"snowclear-api/payments"
	"snowclear-api/reservations"
)

// ── Vehicles ─────────────────────────────────────────────────────

type VehicleRequest struct {
	Make         string `json:"make" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Color        string `json:"color"`
	LicensePlate string `json:"license_plate" binding:"required"`
	ParkingNote  string `json:"parking_note"`
}

// AddVehicle registers a vehicle for the logged-in client
func AddVehicle(c *gin.Context) {
	clientID := middleware.GetUserID(c)
	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle := models.Vehicle{
		OwnerID:      clientID,
		Make:         req.Make,
		Model:        req.Model,
		Color:        req.Color,
		LicensePlate: req.LicensePlate,
		ParkingNote:  req.ParkingNote,
	}
	if err := config.DB.Create(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add vehicle"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Vehicle added", "vehicle": vehicle})
}

// GetMyVehicles lists the client's vehicles
func GetMyVehicles(c *gin.Context) {
	clientID := middleware.GetUserID(c)
	var vehicles []models.Vehicle
	config.DB.Where("owner_id = ?", clientID).Find(&vehicles)
	c.JSON(http.StatusOK, gin.H{"count": len(vehicles), "vehicles": vehicles})
}

// UpdateVehicle updates one of the client's vehicles
func UpdateVehicle(c *gin.Context) {
	clientID := middleware.GetUserID(c)
	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}
	if vehicle.OwnerID != clientID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This vehicle does not belong to you"})
		return
	}
	var req VehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	config.DB.Model(&vehicle).Updates(models.Vehicle{
		Make:         req.Make,
		Model:        req.Model,
		Color:        req.Color,
		LicensePlate: req.LicensePlate,
		ParkingNote:  req.ParkingNote,
	})
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle updated", "vehicle": vehicle})
}

// DeleteVehicle removes a vehicle without open reservations
func DeleteVehicle(c *gin.Context) {
	clientID := middleware.GetUserID(c)
	var vehicle models.Vehicle
	if err := config.DB.First(&vehicle, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return
	}
	if vehicle.OwnerID != clientID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This vehicle does not belong to you"})
		return
	}

	var open int64
	config.DB.Model(&models.Reservation{}).
		Where("vehicle_id = ? AND status NOT IN ?", vehicle.ID,
			[]models.ReservationStatus{models.StatusCompleted, models.StatusCancelled}).
		Count(&open)
	if open > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Vehicle has open reservations"})
		return
	}

	config.DB.Delete(&vehicle)
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted"})
}

// ── Reservations ─────────────────────────────────────────────────

type CreateReservationRequest struct {
	VehicleID      uint                   `json:"vehicle_id"`
	Latitude       float64                `json:"latitude"`
	Longitude      float64                `json:"longitude"`
	Address        string                 `json:"address"`
	LocationNote   string                 `json:"location_note"`
	ServiceOptions []models.ServiceOption `json:"service_options"`
	SnowDepth      models.SnowDepth       `json:"snow_depth"`
	DepartureTime  time.Time              `json:"departure_time" binding:"required"`
	Deadline       time.Time              `json:"deadline"`
	TotalPrice     float64                `json:"total_price" binding:"required"`
}

// CreateReservation books a new snow-clearing job (client only)
func CreateReservation(c *gin.Context) {
	clientID := middleware.GetUserID(c)

	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The vehicle must exist and belong to the caller
	if req.VehicleID != 0 {
		var vehicle models.Vehicle
		if err := config.DB.First(&vehicle, req.VehicleID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
			return
		}
		if vehicle.OwnerID != clientID {
			c.JSON(http.StatusForbidden, gin.H{"error": "This vehicle does not belong to you"})
			return
		}
	}

	res, err := reservations.Create(config.DB, reservations.CreateInput{
		ClientID:       clientID,
		VehicleID:      req.VehicleID,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		Address:        req.Address,
		LocationNote:   req.LocationNote,
		ServiceOptions: req.ServiceOptions,
		SnowDepth:      req.SnowDepth,
		DepartureTime:  req.DepartureTime,
		Deadline:       req.Deadline,
		TotalPrice:     req.TotalPrice,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Reservation created",
		"reservation": res,
	})
}

// GetMyReservations returns all reservations for the logged-in client
func GetMyReservations(c *gin.Context) {
	clientID := middleware.GetUserID(c)
	var list []models.Reservation
	query := config.DB.Preload("Vehicle").Preload("Worker").
		Where("client_id = ?", clientID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query.Order("created_at desc").Find(&list)
	c.JSON(http.StatusOK, gin.H{"count": len(list), "reservations": list})
}

// GetReservationDetail returns a single reservation's full detail with history
func GetReservationDetail(c *gin.Context) {
	clientID := middleware.GetUserID(c)
	id := parseID(c)

	res, err := reservations.Get(config.DB, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.ClientID != clientID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This reservation does not belong to you"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservation": res})
}

// CancelReservation cancels the client's own reservation
func CancelReservation(c *gin.Context) {
	clientID := middleware.GetUserID(c)
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
	if res.ClientID != clientID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This reservation does not belong to you"})
		return
	}

	cancelled, err := reservations.Cancel(config.DB, id, clientID, models.CancelledByClient, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	// Refund policy for already-charged reservations is explicit
	// configuration, never an implicit side effect of cancelling.
	if cancelled.PaymentStatus == models.PaymentPaid && config.RefundOnCancel == "auto" {
		cents, cerr := centsOf(cancelled.TotalPrice + cancelled.TipAmount)
		if cerr == nil {
			if _, rerr := payments.Default.Refund(cancelled.ChargeID, cents); rerr != nil {
				respondError(c, rerr)
				return
			}
		}
	}

	if cancelled.Worker != nil {
		notifications.Notify(cancelled.Worker, "Reservation cancelled",
			fmt.Sprintf("Reservation #%d was cancelled by the client.", cancelled.ID))
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reservation cancelled", "reservation": cancelled})
}

// AddTip records a tip before the job settles
func AddTip(c *gin.Context) {
	clientID := middleware.GetUserID(c)
	id := parseID(c)

	var req struct {
		Tip any `json:"tip_amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := reservations.AddTip(config.DB, id, clientID, req.Tip)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tip recorded", "reservation": res})
}

// PayReservation submits the card charge. Payment status stays pending
// until the processor webhook confirms the outcome.
func PayReservation(c *gin.Context) {
	clientID := middleware.GetUserID(c)
	id := parseID(c)

	var req struct {
		CardToken string `json:"card_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := reservations.Get(config.DB, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.ClientID != clientID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This reservation does not belong to you"})
		return
	}
	if res.PaymentStatus != models.PaymentPending {
		c.JSON(http.StatusConflict, gin.H{"error": "Reservation is already charged", "payment_status": res.PaymentStatus})
		return
	}

	charged, err := payments.InitiateCharge(config.DB, payments.Default, res, req.CardToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Charge submitted, awaiting confirmation",
		"charge_id":      charged.ChargeID,
		"payment_status": charged.PaymentStatus,
	})
}

// OpenDispute lets a client contest a finished reservation
func OpenDispute(c *gin.Context) {
	clientID := middleware.GetUserID(c)
	id := parseID(c)

	var req struct {
		Type        models.DisputeType `json:"type" binding:"required"`
		Description string             `json:"description" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	validTypes := map[models.DisputeType]bool{
		models.DisputeDamage:     true,
		models.DisputeIncomplete: true,
		models.DisputeNoShow:     true,
		models.DisputeOvercharge: true,
	}
	if !validTypes[req.Type] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid dispute type. Must be: damage, incomplete, no_show, or overcharge"})
		return
	}

	res, err := reservations.Get(config.DB, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if res.ClientID != clientID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This reservation does not belong to you"})
		return
	}
	if res.Status != models.StatusCompleted && res.Status != models.StatusCancelled {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Disputes can only be opened on finished reservations"})
		return
	}

	dispute := models.Dispute{
		ReservationID: res.ID,
		OpenedByID:    clientID,
		Type:          req.Type,
		Status:        models.DisputeOpen,
		Description:   req.Description,
	}
	if err := config.DB.Create(&dispute).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open dispute"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Dispute opened", "dispute": dispute})
}
