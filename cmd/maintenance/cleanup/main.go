package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/davidzorentals/booking-backend/internal/config"
	"github.com/davidzorentals/booking-backend/internal/database"
	"github.com/davidzorentals/booking-backend/internal/services"
)

// Removes expired authentication artifacts: OTP codes, rate limit
// windows and magic links past their expiry. Intended to run from cron.
func main() {
	var dbURLFlag string
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.Parse()

	// Try loading .env from current working directory (optional)
	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	// Build minimal database config without loading full app config
	dbCfg := config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     5,
		MaxIdleConnections: 2,
	}

	db, err := database.NewConnection(dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	fmt.Println("Connected to database. Cleaning up expired records...")

	otpService := services.NewOTPService(db)
	otpCount, err := otpService.CleanupExpiredOTPs()
	if err != nil {
		log.Fatalf("failed to clean up expired OTPs: %v", err)
	}
	fmt.Printf("Expired OTP codes removed: %d\n", otpCount)

	// Retention only depends on the window widths; mirror the server
	// defaults unless overridden in the environment
	rateLimitService := services.NewRateLimitService(db, config.RateLimitConfig{
		PhoneWindow: time.Duration(envInt("OTP_RATE_WINDOW_MINUTES", 10)) * time.Minute,
		IPWindow:    time.Duration(envInt("OTP_IP_RATE_WINDOW_MINUTES", 60)) * time.Minute,
	})
	rateCount, err := rateLimitService.CleanupExpiredRateLimits()
	if err != nil {
		log.Fatalf("failed to clean up rate limit windows: %v", err)
	}
	fmt.Printf("Expired rate limit windows removed: %d\n", rateCount)

	result, err := db.Exec("DELETE FROM magic_links WHERE expires_at < NOW() OR used = true")
	if err != nil {
		log.Fatalf("failed to clean up magic links: %v", err)
	}
	if rows, err := result.RowsAffected(); err == nil {
		fmt.Printf("Magic links removed: %d\n", rows)
	}

	fmt.Println("Cleanup completed.")
}

func envInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return value
}
