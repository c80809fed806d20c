package config

import (
	"log"
	"os"
	"strconv"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"snowclear-api/models"
)

var DB *gorm.DB

// JWTSecret used to sign tokens — read from env or fallback
var JWTSecret []byte

// PlatformFeePercent is the platform's cut of each job, as a ratio in [0,1]
var PlatformFeePercent float64

// RefundOnCancel decides what happens to a charged reservation that gets
// cancelled: "auto" requests a refund immediately, "manual" leaves it for
// financial-ops review. Default is manual.
var RefundOnCancel string

// Load reads .env (if present) and resolves all settings
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: no .env file found. Using environment variables directly.")
	}

	JWTSecret = []byte(getEnv("JWT_SECRET", "snowclear_super_secret_2024"))
	RefundOnCancel = getEnv("REFUND_ON_CANCEL", "manual")

	PlatformFeePercent = 0.25
	if raw := os.Getenv("PLATFORM_FEE_PERCENT"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			log.Fatalf("PLATFORM_FEE_PERCENT must be a ratio between 0 and 1, got %q", raw)
		}
		PlatformFeePercent = parsed
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func InitDB() {
	var err error
	DB, err = gorm.Open(sqlite.Open(getEnv("DATABASE_PATH", "snowclear.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate all models
	err = DB.AutoMigrate(
		&models.User{},
		&models.Vehicle{},
		&models.Reservation{},
		&models.ReservationStatusHistory{},
		&models.Dispute{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Println("✅ Database connected and migrated successfully")
}
