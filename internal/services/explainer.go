package services

import (
	"talaam-backend/internal/models"
	"talaam-backend/internal/workflow"

	"gorm.io/gorm"
)

type ExplainerService struct {
	db *gorm.DB
}

func NewExplainerService(db *gorm.DB) *ExplainerService {
	return &ExplainerService{db: db}
}

// Queue returns questions awaiting an explanation, oldest first.
func (s *ExplainerService) Queue() ([]models.Question, error) {
	var questions []models.Question
	err := s.db.Where("status = ?", workflow.StatusPendingExplainer).
		Order("updated_at ASC").
		Find(&questions).Error
	return questions, err
}

func (s *ExplainerService) Get(questionID uint) (*models.Question, error) {
	q, err := questionByID(s.db, questionID)
	if err != nil {
		return nil, err
	}
	q.History, err = historyFor(s.db, q.ID)
	if err != nil {
		return nil, err
	}
	return q, nil
}

// SubmitExplanation attaches the explanation text and completes the question,
// or routes it back through the processor queue when review is requested.
func (s *ExplainerService) SubmitExplanation(questionID, explainerID uint, text string, needsReview bool) (*models.Question, error) {
	if text == "" {
		return nil, invalidf("explanation text is required")
	}

	var q *models.Question
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		q, err = questionByID(tx, questionID)
		if err != nil {
			return err
		}

		req := workflow.Request{
			Actor:       workflow.RoleExplainer,
			Action:      workflow.ActionSubmitExplanation,
			NeedsReview: needsReview,
		}
		extra := map[string]interface{}{"explanation": text}
		if err := saveTransition(tx, q, req, explainerID, "", extra); err != nil {
			return err
		}
		q.Explanation = text
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// RaiseFlag disputes a question sitting in the explainer queue.
func (s *ExplainerService) RaiseFlag(questionID, explainerID uint, reason string) (*models.Question, error) {
	return raiseFlag(s.db, questionID, explainerID, workflow.RoleExplainer, reason)
}

// Resubmit returns a rejected or correction-routed question to the processor
// queue.
func (s *ExplainerService) Resubmit(questionID, explainerID uint) (*models.Question, error) {
	return resubmit(s.db, questionID, explainerID, workflow.RoleExplainer)
}
