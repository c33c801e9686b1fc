package services

import (
	"time"

	"talaam-backend/internal/models"
	"talaam-backend/internal/workflow"

	"gorm.io/gorm"
)

// QuestionInput is the content half of a question, shared by submit,
// resubmit and variant/update payloads.
type QuestionInput struct {
	Text          string            `json:"text"`
	Type          string            `json:"type"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correct_answer"`
	Difficulty    string            `json:"difficulty"`
	SubjectID     uint              `json:"subject_id"`
	TopicID       *uint             `json:"topic_id"`
	SubtopicID    *uint             `json:"subtopic_id"`
	Notes         string            `json:"notes"`
}

func validateQuestionInput(in QuestionInput) error {
	if in.Text == "" {
		return invalidf("question text is required")
	}
	if in.SubjectID == 0 {
		return invalidf("subject_id is required")
	}

	qType := in.Type
	if qType == "" {
		qType = models.QuestionTypeMultipleChoice
	}

	switch qType {
	case models.QuestionTypeMultipleChoice:
		if len(in.Options) < 2 || len(in.Options) > 6 {
			return invalidf("multiple choice must have 2 to 6 options")
		}
	case models.QuestionTypeTrueFalse:
		if len(in.Options) != 2 {
			return invalidf("true/false must have exactly 2 options")
		}
	default:
		return invalidf("unknown question type %q", qType)
	}

	if in.CorrectAnswer == "" {
		return invalidf("correct_answer is required")
	}
	if _, ok := in.Options[in.CorrectAnswer]; !ok {
		return invalidf("correct_answer %q is not an option key", in.CorrectAnswer)
	}

	switch in.Difficulty {
	case "", models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		return invalidf("unknown difficulty %q", in.Difficulty)
	}
	return nil
}

func (in QuestionInput) apply(q *models.Question) {
	q.Text = in.Text
	if in.Type != "" {
		q.Type = in.Type
	} else if q.Type == "" {
		q.Type = models.QuestionTypeMultipleChoice
	}
	opts := make(map[string]interface{}, len(in.Options))
	for k, v := range in.Options {
		opts[k] = v
	}
	q.Options = opts
	q.CorrectAnswer = in.CorrectAnswer
	if in.Difficulty != "" {
		q.Difficulty = in.Difficulty
	} else if q.Difficulty == "" {
		q.Difficulty = models.DifficultyMedium
	}
	q.SubjectID = in.SubjectID
	q.TopicID = in.TopicID
	q.SubtopicID = in.SubtopicID
	q.Notes = in.Notes
}

func questionByID(tx *gorm.DB, id uint) (*models.Question, error) {
	var q models.Question
	if err := tx.First(&q, id).Error; err != nil {
		return nil, notFoundf("question %d not found", id)
	}
	return &q, nil
}

// saveTransition runs the workflow rules for req against q, then persists the
// outcome: a compare-and-swap on the state columns the transition read, plus
// any extra column updates, plus one history entry. Everything happens inside
// tx so a status change never lands without its history row. A transition
// that leaves the state untouched (idempotent flag approval) writes nothing.
func saveTransition(tx *gorm.DB, q *models.Question, req workflow.Request, performedBy uint, notes string, extra map[string]interface{}) error {
	prev := q.WorkflowState()
	next, err := workflow.Apply(prev, req)
	if err != nil {
		return err
	}
	if next == prev && len(extra) == 0 {
		return nil
	}

	q.ApplyWorkflowState(next)

	updates := map[string]interface{}{
		"status":                q.Status,
		"is_flagged":            q.IsFlagged,
		"flag_type":             q.FlagType,
		"flag_status":           q.FlagStatus,
		"flag_reason":           q.FlagReason,
		"flag_rejection_reason": q.FlagRejectionReason,
		"last_modified_by_id":   performedBy,
	}
	for k, v := range extra {
		updates[k] = v
	}

	res := tx.Model(&models.Question{}).
		Where("id = ? AND status = ? AND is_flagged = ? AND flag_status = ?",
			q.ID, prev.Status, prev.Flag.Raised, prev.Flag.Status).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return conflictf("question %d was modified concurrently", q.ID)
	}

	entry := models.HistoryEntry{
		QuestionID:    q.ID,
		Action:        string(req.Action),
		Role:          req.Actor,
		PerformedByID: performedBy,
		Notes:         notes,
		CreatedAt:     time.Now(),
	}
	return tx.Create(&entry).Error
}

// raiseFlag records a dispute against a question on behalf of role.
func raiseFlag(db *gorm.DB, questionID, userID uint, role workflow.Role, reason string) (*models.Question, error) {
	var q *models.Question
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		q, err = questionByID(tx, questionID)
		if err != nil {
			return err
		}

		req := workflow.Request{Actor: role, Action: workflow.ActionRaiseFlag, Reason: reason}
		extra := map[string]interface{}{"flag_reason": reason}
		if err := saveTransition(tx, q, req, userID, reason, extra); err != nil {
			return err
		}
		q.FlagReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// resubmit returns a question to the processor queue after a rejection or an
// approved-flag correction, clearing the rejection reason.
func resubmit(db *gorm.DB, questionID, userID uint, role workflow.Role) (*models.Question, error) {
	var q *models.Question
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		q, err = questionByID(tx, questionID)
		if err != nil {
			return err
		}

		req := workflow.Request{Actor: role, Action: workflow.ActionResubmit}
		extra := map[string]interface{}{"rejection_reason": ""}
		if err := saveTransition(tx, q, req, userID, "", extra); err != nil {
			return err
		}
		q.RejectionReason = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// historyFor returns a question's event log oldest first.
func historyFor(db *gorm.DB, questionID uint) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	err := db.Where("question_id = ?", questionID).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}
