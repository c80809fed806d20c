package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"snowclear-api/config"
	"snowclear-api/models"
	"snowclear-api/notifications"
	"snowclear-api/reservations"
)

// StartCronJobs initializes and starts the background sweeps: departure
// reminders and stale-reservation expiry
func StartCronJobs() {
	c := cron.New()
	if _, err := c.AddFunc("* * * * *", sendDepartureReminders); err != nil {
		log.Fatalf("Failed to add reminder cron job: %v", err)
	}
	if _, err := c.AddFunc("* * * * *", expireStaleReservations); err != nil {
		log.Fatalf("Failed to add expiry cron job: %v", err)
	}
	c.Start()
	log.Println("Cron scheduler started (reminders + stale reservation expiry)")
}

// sendDepartureReminders notifies clients whose departure time is about
// an hour away and whose job is still moving
func sendDepartureReminders() {
	var list []models.Reservation
	now := time.Now()
	startWindow := now.Add(55 * time.Minute)
	endWindow := now.Add(65 * time.Minute)

	err := config.DB.Preload("Client").Preload("Worker").
		Where("status IN ? AND departure_time BETWEEN ? AND ?",
			[]models.ReservationStatus{models.StatusAssigned, models.StatusEnRoute},
			startWindow, endWindow).
		Find(&list).Error
	if err != nil {
		log.Printf("Error fetching reservations for reminders: %v", err)
		return
	}

	for _, res := range list {
		notifications.Notify(&res.Client, "Departure coming up",
			fmt.Sprintf("Your departure is at %s and your snow-clearing job (reservation #%d) is %s.",
				res.DepartureTime.Format("15:04"), res.ID, res.Status))
		log.Printf("Sent departure reminder for reservation %d", res.ID)
	}
}

// expireStaleReservations system-cancels pending jobs nobody accepted
// before their deadline
func expireStaleReservations() {
	var list []models.Reservation
	err := config.DB.Preload("Client").
		Where("status = ? AND worker_id IS NULL AND deadline < ?", models.StatusPending, time.Now()).
		Find(&list).Error
	if err != nil {
		log.Printf("Error fetching stale reservations: %v", err)
		return
	}

	for _, res := range list {
		// The conditional update inside Cancel keeps this safe against a
		// worker accepting at the same moment.
		if _, err := reservations.Cancel(config.DB, res.ID, 0, models.CancelledBySystem, "No worker accepted before the deadline"); err != nil {
			log.Printf("Could not expire reservation %d: %v", res.ID, err)
			continue
		}
		notifications.Notify(&res.Client, "Reservation expired",
			fmt.Sprintf("No worker was available for reservation #%d before your deadline.", res.ID))
		log.Printf("Expired stale reservation %d", res.ID)
	}
}
