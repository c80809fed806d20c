package models

import "time"

type Vehicle struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	OwnerID      uint   `json:"owner_id" gorm:"not null"`
	Owner        User   `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Make         string `json:"make" gorm:"not null"`
	Model        string `json:"model" gorm:"not null"`
	Color        string `json:"color"`
	LicensePlate string `json:"license_plate" gorm:"not null"`
	// Where the vehicle is usually parked ("street side", "lot B", ...).
	ParkingNote string    `json:"parking_note"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
