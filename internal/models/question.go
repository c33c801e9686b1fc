package models

import (
	"time"

	"talaam-backend/internal/workflow"

	"gorm.io/datatypes"
)

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Question is the unit of work moving through the review pipeline. Options
// maps option keys ("a".."f", or "true"/"false") to display text.
type Question struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	Text          string            `gorm:"type:text;not null" json:"text"`
	Type          string            `gorm:"size:20;not null;default:'multiple_choice'" json:"type"`
	Options       datatypes.JSONMap `gorm:"not null" json:"options"`
	CorrectAnswer string            `gorm:"size:10;not null" json:"correct_answer"`
	Difficulty    string            `gorm:"size:10;not null;default:'medium'" json:"difficulty"`
	SubjectID     uint              `gorm:"not null;index" json:"subject_id"`
	TopicID       *uint             `gorm:"index" json:"topic_id,omitempty"`
	SubtopicID    *uint             `json:"subtopic_id,omitempty"`
	Explanation   string            `gorm:"type:text" json:"explanation,omitempty"`
	Notes         string            `gorm:"type:text" json:"notes,omitempty"`

	Status          workflow.Status `gorm:"size:20;not null;index" json:"status"`
	RejectionReason string          `gorm:"size:500" json:"rejection_reason,omitempty"`

	IsVariant          bool  `gorm:"not null;default:false" json:"is_variant"`
	VariantNumber      int   `gorm:"not null;default:0" json:"variant_number,omitempty"`
	OriginalQuestionID *uint `gorm:"index" json:"original_question_id,omitempty"`

	IsFlagged           bool                `gorm:"not null;default:false;index" json:"is_flagged"`
	FlagType            workflow.Role       `gorm:"size:20" json:"flag_type,omitempty"`
	FlagReason          string              `gorm:"size:500" json:"flag_reason,omitempty"`
	FlagStatus          workflow.FlagStatus `gorm:"size:20" json:"flag_status,omitempty"`
	FlagRejectionReason string              `gorm:"size:500" json:"flag_rejection_reason,omitempty"`

	CreatedByID         uint  `gorm:"not null;index" json:"created_by"`
	AssignedProcessorID *uint `gorm:"index" json:"assigned_processor,omitempty"`
	ApprovedByID        *uint `json:"approved_by,omitempty"`
	LastModifiedByID    *uint `json:"last_modified_by,omitempty"`

	History []HistoryEntry `gorm:"foreignKey:QuestionID" json:"history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WorkflowState projects the persisted columns into the transition engine's
// value type.
func (q *Question) WorkflowState() workflow.State {
	return workflow.State{
		Status: q.Status,
		Flag: workflow.Flag{
			Raised: q.IsFlagged,
			Type:   q.FlagType,
			Status: q.FlagStatus,
		},
	}
}

// ApplyWorkflowState writes a transition result back onto the columns. Flag
// text fields are cleared when the overlay is gone.
func (q *Question) ApplyWorkflowState(s workflow.State) {
	q.Status = s.Status
	q.IsFlagged = s.Flag.Raised
	q.FlagType = s.Flag.Type
	q.FlagStatus = s.Flag.Status
	if !s.Flag.Raised {
		q.FlagReason = ""
		q.FlagRejectionReason = ""
	}
}

// HistoryEntry records one workflow event. Rows are append-only: nothing in
// the codebase updates or deletes them.
type HistoryEntry struct {
	ID            uint          `gorm:"primaryKey" json:"id"`
	QuestionID    uint          `gorm:"not null;index:idx_history_question" json:"question_id"`
	Action        string        `gorm:"size:50;not null" json:"action"`
	Role          workflow.Role `gorm:"size:20;not null" json:"role"`
	PerformedByID uint          `gorm:"not null" json:"performed_by"`
	Notes         string        `gorm:"size:500" json:"notes,omitempty"`
	CreatedAt     time.Time     `gorm:"index:idx_history_question" json:"created_at"`
}
