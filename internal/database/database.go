package database

import (
	"fmt"
	"log"

	"talaam-backend/internal/config"
	"talaam-backend/internal/models"
	"talaam-backend/internal/workflow"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	log.Println("database connected")
	return db
}

func AutoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Subject{},
		&models.Topic{},
		&models.Subtopic{},
		&models.Question{},
		&models.HistoryEntry{},
		&models.Plan{},
		&models.Subscription{},
		&models.PaymentEvent{},
		&models.TestAttempt{},
		&models.AttemptAnswer{},
	)
	if err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}
	log.Println("database migrated")
}

// Seed creates the bootstrap admin account and the default plans when they
// are missing. Safe to run on every start.
func Seed(db *gorm.DB, adminEmail, adminPassword string) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", workflow.RoleAdmin).Count(&count)
	if count == 0 && adminEmail != "" && adminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash admin password: %v", err)
		}
		admin := models.User{
			Name:         "Admin",
			Email:        adminEmail,
			PasswordHash: string(hash),
			Role:         workflow.RoleAdmin,
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Printf("failed to seed admin user: %v", err)
		} else {
			log.Printf("seeded admin user %s", adminEmail)
		}
	}

	plans := []models.Plan{
		{Code: "monthly", Name: "Monthly", PriceCents: 999, Currency: "USD", DurationDays: 30, IsActive: true},
		{Code: "yearly", Name: "Yearly", PriceCents: 9999, Currency: "USD", DurationDays: 365, IsActive: true},
	}
	for _, p := range plans {
		var existing models.Plan
		if err := db.Where("code = ?", p.Code).First(&existing).Error; err != nil {
			db.Create(&p)
		}
	}
}
