package models

import "time"

const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusFinished   = "finished"
)

type TestAttempt struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;index" json:"user_id"`
	SubjectID  *uint           `json:"subject_id,omitempty"`
	Status     string          `gorm:"size:20;not null;default:'in_progress'" json:"status"`
	Score      int             `gorm:"not null;default:0" json:"score"`
	Total      int             `gorm:"not null;default:0" json:"total"`
	Answers    []AttemptAnswer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}

type AttemptAnswer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AttemptID  uint      `gorm:"not null;uniqueIndex:idx_attempt_question" json:"attempt_id"`
	QuestionID uint      `gorm:"not null;uniqueIndex:idx_attempt_question" json:"question_id"`
	Selected   string    `gorm:"size:10" json:"selected"`
	IsCorrect  bool      `gorm:"not null;default:false" json:"is_correct"`
	AnsweredAt time.Time `json:"answered_at"`
}
