package services

import (
	"talaam-backend/internal/models"
	"talaam-backend/internal/workflow"

	"gorm.io/gorm"
)

type GathererService struct {
	db *gorm.DB
}

func NewGathererService(db *gorm.DB) *GathererService {
	return &GathererService{db: db}
}

// Submit creates a new question in the processor queue.
func (s *GathererService) Submit(userID uint, input QuestionInput) (*models.Question, error) {
	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	state, err := workflow.Apply(workflow.State{}, workflow.Request{
		Actor:  workflow.RoleGatherer,
		Action: workflow.ActionSubmit,
	})
	if err != nil {
		return nil, err
	}

	q := models.Question{CreatedByID: userID}
	input.apply(&q)
	q.ApplyWorkflowState(state)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&q).Error; err != nil {
			return err
		}
		entry := models.HistoryEntry{
			QuestionID:    q.ID,
			Action:        string(workflow.ActionSubmit),
			Role:          workflow.RoleGatherer,
			PerformedByID: userID,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListMine returns the gatherer's own questions, optionally filtered by
// status.
func (s *GathererService) ListMine(userID uint, status workflow.Status) ([]models.Question, error) {
	query := s.db.Where("created_by_id = ?", userID)
	if status != workflow.StatusNone {
		if !status.IsValid() {
			return nil, invalidf("unknown status %q", status)
		}
		query = query.Where("status = ?", status)
	}

	var questions []models.Question
	err := query.Order("created_at DESC").Find(&questions).Error
	return questions, err
}

func (s *GathererService) GetMine(questionID, userID uint) (*models.Question, error) {
	q, err := questionByID(s.db, questionID)
	if err != nil {
		return nil, err
	}
	if q.CreatedByID != userID {
		return nil, forbiddenf("question %d belongs to another gatherer", questionID)
	}

	q.History, err = historyFor(s.db, q.ID)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Resubmit edits a rejected question and returns it to the processor queue,
// clearing the rejection reason.
func (s *GathererService) Resubmit(questionID, userID uint, input QuestionInput) (*models.Question, error) {
	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	var q *models.Question
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		q, err = questionByID(tx, questionID)
		if err != nil {
			return err
		}
		if q.CreatedByID != userID {
			return forbiddenf("question %d belongs to another gatherer", questionID)
		}

		input.apply(q)
		extra := map[string]interface{}{
			"text":             q.Text,
			"type":             q.Type,
			"options":          q.Options,
			"correct_answer":   q.CorrectAnswer,
			"difficulty":       q.Difficulty,
			"subject_id":       q.SubjectID,
			"topic_id":         q.TopicID,
			"subtopic_id":      q.SubtopicID,
			"notes":            q.Notes,
			"rejection_reason": "",
		}
		req := workflow.Request{Actor: workflow.RoleGatherer, Action: workflow.ActionResubmit}
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
