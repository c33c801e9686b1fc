package services

import (
	"testing"

	"talaam-backend/internal/models"
	"talaam-backend/internal/workflow"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	err = db.AutoMigrate(
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
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, name string, role workflow.Role) *models.User {
	t.Helper()

	user := models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "x",
		Role:         role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return &user
}

func createSubject(t *testing.T, db *gorm.DB, name string) *models.Subject {
	t.Helper()

	subject := models.Subject{Name: name}
	if err := db.Create(&subject).Error; err != nil {
		t.Fatalf("create subject %s: %v", name, err)
	}
	return &subject
}

func sampleInput(subjectID uint) QuestionInput {
	return QuestionInput{
		Text:          "What is the capital of France?",
		Type:          models.QuestionTypeMultipleChoice,
		Options:       map[string]string{"a": "Paris", "b": "Lyon", "c": "Marseille"},
		CorrectAnswer: "a",
		Difficulty:    models.DifficultyEasy,
		SubjectID:     subjectID,
	}
}

func countHistory(t *testing.T, db *gorm.DB, questionID uint) int64 {
	t.Helper()

	var n int64
	if err := db.Model(&models.HistoryEntry{}).Where("question_id = ?", questionID).Count(&n).Error; err != nil {
		t.Fatalf("count history: %v", err)
	}
	return n
}
