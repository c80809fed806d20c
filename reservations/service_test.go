package reservations

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"snowclear-api/models"
	"snowclear-api/money"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.Reservation{},
		&models.ReservationStatusHistory{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func seedUsers(t *testing.T, db *gorm.DB) (client, worker, worker2 models.User) {
	t.Helper()
	client = models.User{Name: "Cleo Client", Email: "cleo@example.com", PasswordHash: "x", Role: models.RoleClient, IsActive: true}
	worker = models.User{Name: "Wanda Worker", Email: "wanda@example.com", PasswordHash: "x", Role: models.RoleWorker, IsActive: true, PayoutAccountID: "acct_1"}
	worker2 = models.User{Name: "Wes Worker", Email: "wes@example.com", PasswordHash: "x", Role: models.RoleWorker, IsActive: true, PayoutAccountID: "acct_2"}
	for _, u := range []*models.User{&client, &worker, &worker2} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}
	return client, worker, worker2
}

func seedVehicle(t *testing.T, db *gorm.DB, ownerID uint) models.Vehicle {
	t.Helper()
	v := models.Vehicle{OwnerID: ownerID, Make: "Subaru", Model: "Outback", LicensePlate: "SNOW-123"}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("failed to seed vehicle: %v", err)
	}
	return v
}

func validInput(clientID, vehicleID uint) CreateInput {
	return CreateInput{
		ClientID:      clientID,
		VehicleID:     vehicleID,
		Latitude:      45.5,
		Longitude:     -73.6,
		Address:       "123 Blizzard Ave",
		SnowDepth:     models.DepthHeavy,
		DepartureTime: time.Now().Add(2 * time.Hour),
		Deadline:      time.Now().Add(90 * time.Minute),
		TotalPrice:    25.00,
	}
}

func TestCreateValidation(t *testing.T) {
	db := setupTestDB(t)
	client, _, _ := seedUsers(t, db)
	vehicle := seedVehicle(t, db, client.ID)

	cases := []struct {
		name    string
		mutate  func(*CreateInput)
		wantErr error
	}{
		{"missing vehicle", func(in *CreateInput) { in.VehicleID = 0 }, ErrMissingVehicle},
		{"missing location", func(in *CreateInput) { in.Address = ""; in.Latitude = 0; in.Longitude = 0 }, ErrMissingLocation},
		{"departure in the past", func(in *CreateInput) { in.DepartureTime = time.Now().Add(-time.Minute) }, ErrDepartureTimePassed},
		{"bad price", func(in *CreateInput) { in.TotalPrice = -10 }, money.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput(client.ID, vehicle.ID)
			tc.mutate(&in)
			if _, err := Create(db, in); !errors.Is(err, tc.wantErr) {
				t.Errorf("Create = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCreateStartsPendingOnBothAxes(t *testing.T) {
	db := setupTestDB(t)
	client, _, _ := seedUsers(t, db)
	vehicle := seedVehicle(t, db, client.ID)

	res, err := Create(db, validInput(client.ID, vehicle.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Status != models.StatusPending {
		t.Errorf("Status = %s, want pending", res.Status)
	}
	if res.PaymentStatus != models.PaymentPending {
		t.Errorf("PaymentStatus = %s, want pending", res.PaymentStatus)
	}
	if res.WorkerID != nil {
		t.Errorf("WorkerID should be nil at creation")
	}

	var history []models.ReservationStatusHistory
	db.Where("reservation_id = ?", res.ID).Find(&history)
	if len(history) != 1 {
		t.Errorf("expected 1 history row after creation, got %d", len(history))
	}
}

func TestAcceptRaceExactlyOneWinner(t *testing.T) {
	db := setupTestDB(t)
	client, worker, worker2 := seedUsers(t, db)
	vehicle := seedVehicle(t, db, client.ID)
	res, err := Create(db, validInput(client.ID, vehicle.ID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	won, err := Accept(db, res.ID, worker.ID)
	if err != nil {
		t.Fatalf("first Accept: %v", err)
	}
	if won.Status != models.StatusAssigned {
		t.Errorf("Status = %s, want assigned", won.Status)
	}
	if won.WorkerID == nil || *won.WorkerID != worker.ID {
		t.Errorf("WorkerID = %v, want %d", won.WorkerID, worker.ID)
	}

	if _, err := Accept(db, res.ID, worker2.ID); !errors.Is(err, ErrAlreadyAssigned) {
		t.Errorf("second Accept = %v, want ErrAlreadyAssigned", err)
	}

	// The loser's attempt must not have overwritten the winner
	fresh, _ := Get(db, res.ID)
	if *fresh.WorkerID != worker.ID {
		t.Errorf("WorkerID = %d after losing accept, want %d", *fresh.WorkerID, worker.ID)
	}
}

func TestAcceptMissingReservation(t *testing.T) {
	db := setupTestDB(t)
	_, worker, _ := seedUsers(t, db)
	if _, err := Accept(db, 9999, worker.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Accept(missing) = %v, want ErrNotFound", err)
	}
}

func TestAdvanceRequiresAssignedWorker(t *testing.T) {
	db := setupTestDB(t)
	client, worker, worker2 := seedUsers(t, db)
	vehicle := seedVehicle(t, db, client.ID)
	res, _ := Create(db, validInput(client.ID, vehicle.ID))
	if _, err := Accept(db, res.ID, worker.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if _, err := Advance(db, res.ID, worker2.ID, EventDepart); !errors.Is(err, ErrNotAssignedToYou) {
		t.Errorf("Advance by other worker = %v, want ErrNotAssignedToYou", err)
	}

	// Cannot start before departing
	if _, err := Advance(db, res.ID, worker.ID, EventStart); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("start before depart = %v, want ErrInvalidStatusTransition", err)
	}

	if _, err := Advance(db, res.ID, worker.ID, EventDepart); err != nil {
		t.Fatalf("depart: %v", err)
	}
	adv, err := Advance(db, res.ID, worker.ID, EventStart)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if adv.Status != models.StatusInProgress {
		t.Errorf("Status = %s, want inProgress", adv.Status)
	}
}

func progressToInProgress(t *testing.T, db *gorm.DB, resID, workerID uint) {
	t.Helper()
	if _, err := Accept(db, resID, workerID); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if _, err := Advance(db, resID, workerID, EventDepart); err != nil {
		t.Fatalf("depart: %v", err)
	}
	if _, err := Advance(db, resID, workerID, EventStart); err != nil {
		t.Fatalf("start: %v", err)
	}
}

func TestCompleteSettlesPayout(t *testing.T) {
	db := setupTestDB(t)
	client, worker, _ := seedUsers(t, db)
	vehicle := seedVehicle(t, db, client.ID)
	res, _ := Create(db, validInput(client.ID, vehicle.ID))
	progressToInProgress(t, db, res.ID, worker.ID)

	if _, err := AddTip(db, res.ID, client.ID, 5.00); err != nil {
		t.Fatalf("AddTip: %v", err)
	}

	done, bd, err := Complete(db, res.ID, worker.ID, 0.25)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != models.StatusCompleted {
		t.Errorf("Status = %s, want completed", done.Status)
	}
	if done.Payout.Status != models.PayoutPending {
		t.Errorf("Payout.Status = %s, want pending", done.Payout.Status)
	}
	if done.CompletedAt == nil {
		t.Errorf("CompletedAt should be set")
	}

	// $25 at 25% with a $5 tip
	if bd.PlatformFee != 6.25 || bd.WorkerAmount != 23.75 || bd.GrossTotal != 30.00 {
		t.Errorf("unexpected breakdown: %+v", bd)
	}
	// Persisted payout mirrors the computed breakdown to the cent
	if done.Payout.PlatformFee+done.Payout.WorkerAmount-done.Payout.TipAmount != 25.00 {
		t.Errorf("persisted payout does not reconstruct the total: %+v", done.Payout)
	}

	// Reservation is completed even though payment confirmation has not
	// arrived yet; that combination is reconciliation, not an error.
	if done.PaymentStatus != models.PaymentPending {
		t.Errorf("PaymentStatus = %s, want still pending", done.PaymentStatus)
	}
}

func TestCompleteRequiresInProgress(t *testing.T) {
	db := setupTestDB(t)
	client, worker, _ := seedUsers(t, db)
	vehicle := seedVehicle(t, db, client.ID)
	res, _ := Create(db, validInput(client.ID, vehicle.ID))
	if _, err := Accept(db, res.ID, worker.ID); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	if _, _, err := Complete(db, res.ID, worker.ID, 0.25); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("Complete from assigned = %v, want ErrInvalidStatusTransition", err)
	}
}

func TestCompleteIsIdempotentOnRetry(t *testing.T) {
	db := setupTestDB(t)
	client, worker, _ := seedUsers(t, db)
	vehicle := seedVehicle(t, db, client.ID)
	res, _ := Create(db, validInput(client.ID, vehicle.ID))
	progressToInProgress(t, db, res.ID, worker.ID)

	first, _, err := Complete(db, res.ID, worker.ID, 0.25)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if _, _, err := Complete(db, res.ID, worker.ID, 0.25); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Errorf("retried Complete = %v, want ErrInvalidStatusTransition", err)
	}

	// The settled payout must be untouched by the retry
	fresh, _ := Get(db, res.ID)
	if fresh.Payout != first.Payout {
		t.Errorf("payout changed on retried completion: %+v vs %+v", fresh.Payout, first.Payout)
	}
}

func TestCancelRecordsActorAndReason(t *testing.T) {
	db := setupTestDB(t)
	client, _, _ := seedUsers(t, db)
	vehicle := seedVehicle(t, db, client.ID)
	res, _ := Create(db, validInput(client.ID, vehicle.ID))

	cancelled, err := Cancel(db, res.ID, client.ID, models.CancelledByClient, "changed my mind")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Errorf("Status = %s, want cancelled", cancelled.Status)
	}
	if cancelled.CancelledBy != models.CancelledByClient {
		t.Errorf("CancelledBy = %s, want client", cancelled.CancelledBy)
	}
	if cancelled.CancelReason != "changed my mind" {
		t.Errorf("CancelReason = %q", cancelled.CancelReason)
	}
	if cancelled.CancelledAt == nil {
		t.Errorf("CancelledAt should be set")
	}
}

func TestCancelTerminalStates(t *testing.T) {
	db := setupTestDB(t)
	client, worker, _ := seedUsers(t, db)
	vehicle := seedVehicle(t, db, client.ID)

	// Already cancelled
	res, _ := Create(db, validInput(client.ID, vehicle.ID))
	if _, err := Cancel(db, res.ID, client.ID, models.CancelledByClient, "first"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if _, err := Cancel(db, res.ID, client.ID, models.CancelledByClient, "again"); !errors.Is(err, ErrAlreadyCancelled) {
		t.Errorf("cancel of cancelled = %v, want ErrAlreadyCancelled", err)
	}

	// Already completed
	res2, _ := Create(db, validInput(client.ID, vehicle.ID))
	progressToInProgress(t, db, res2.ID, worker.ID)
	if _, _, err := Complete(db, res2.ID, worker.ID, 0.25); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := Cancel(db, res2.ID, client.ID, models.CancelledByClient, "too late"); !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("cancel of completed = %v, want ErrAlreadyCompleted", err)
	}
}

func TestAddTipRejectsBadAmounts(t *testing.T) {
	db := setupTestDB(t)
	client, _, _ := seedUsers(t, db)
	vehicle := seedVehicle(t, db, client.ID)
	res, _ := Create(db, validInput(client.ID, vehicle.ID))

	if _, err := AddTip(db, res.ID, client.ID, "not a number"); !errors.Is(err, money.ErrInvalidAmount) {
		t.Errorf("AddTip(garbage) = %v, want ErrInvalidAmount", err)
	}
	if _, err := AddTip(db, res.ID, client.ID, -2.0); !errors.Is(err, money.ErrInvalidAmount) {
		t.Errorf("AddTip(negative) = %v, want ErrInvalidAmount", err)
	}

	res2, err := AddTip(db, res.ID, client.ID, "3.50")
	if err != nil {
		t.Fatalf("AddTip: %v", err)
	}
	if res2.TipAmount != 3.5 {
		t.Errorf("TipAmount = %v, want 3.5", res2.TipAmount)
	}
}
