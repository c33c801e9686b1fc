package services

import (
	"talaam-backend/internal/models"
	"talaam-backend/internal/workflow"

	"gorm.io/gorm"
)

type CreatorService struct {
	db *gorm.DB
}

func NewCreatorService(db *gorm.DB) *CreatorService {
	return &CreatorService{db: db}
}

// Queue returns questions referred for variant creation, oldest first.
func (s *CreatorService) Queue() ([]models.Question, error) {
	var questions []models.Question
	err := s.db.Where("status = ?", workflow.StatusPendingCreator).
		Order("updated_at ASC").
		Find(&questions).Error
	return questions, err
}

func (s *CreatorService) Get(questionID uint) (*models.Question, error) {
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

// SubmitVariant creates a new question row as a numbered variant of the
// original and returns the original to the processor queue. The variant
// itself enters the processor queue as a fresh submission.
func (s *CreatorService) SubmitVariant(originalID, creatorID uint, input QuestionInput) (*models.Question, error) {
	if err := validateQuestionInput(input); err != nil {
		return nil, err
	}

	var variant models.Question
	err := s.db.Transaction(func(tx *gorm.DB) error {
		original, err := questionByID(tx, originalID)
		if err != nil {
			return err
		}
		if original.IsVariant {
			return invalidf("cannot create a variant of a variant")
		}

		// Move the original first; the CAS guards against a concurrent
		// transition racing this one.
		req := workflow.Request{Actor: workflow.RoleCreator, Action: workflow.ActionSubmitVariant}
		if err := saveTransition(tx, original, req, creatorID, "", nil); err != nil {
			return err
		}

		var maxVariant int
		tx.Model(&models.Question{}).
			Where("original_question_id = ?", originalID).
			Select("COALESCE(MAX(variant_number), 0)").
			Scan(&maxVariant)

		variant = models.Question{
			CreatedByID:        creatorID,
			IsVariant:          true,
			VariantNumber:      maxVariant + 1,
			OriginalQuestionID: &originalID,
			Status:             workflow.StatusPendingProcessor,
		}
		input.apply(&variant)
		if err := tx.Create(&variant).Error; err != nil {
			return err
		}

		entry := models.HistoryEntry{
			QuestionID:    variant.ID,
			Action:        string(workflow.ActionSubmitVariant),
			Role:          workflow.RoleCreator,
			PerformedByID: creatorID,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// SubmitUpdate edits the question in place and re-enters the processor queue.
func (s *CreatorService) SubmitUpdate(questionID, creatorID uint, input QuestionInput) (*models.Question, error) {
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

		input.apply(q)
		extra := map[string]interface{}{
			"text":           q.Text,
			"type":           q.Type,
			"options":        q.Options,
			"correct_answer": q.CorrectAnswer,
			"difficulty":     q.Difficulty,
			"subject_id":     q.SubjectID,
			"topic_id":       q.TopicID,
			"subtopic_id":    q.SubtopicID,
			"notes":          q.Notes,
		}
		req := workflow.Request{Actor: workflow.RoleCreator, Action: workflow.ActionSubmitUpdate}
		return saveTransition(tx, q, req, creatorID, "", extra)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// RaiseFlag disputes a question sitting in the creator queue.
func (s *CreatorService) RaiseFlag(questionID, creatorID uint, reason string) (*models.Question, error) {
	return raiseFlag(s.db, questionID, creatorID, workflow.RoleCreator, reason)
}

// Resubmit returns a rejected or correction-routed question to the processor
// queue without content changes beyond the flag/rejection reset.
func (s *CreatorService) Resubmit(questionID, creatorID uint) (*models.Question, error) {
	return resubmit(s.db, questionID, creatorID, workflow.RoleCreator)
}
