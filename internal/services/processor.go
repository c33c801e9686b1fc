package services

import (
	"talaam-backend/internal/models"
	"talaam-backend/internal/workflow"

	"gorm.io/gorm"
)

type ProcessorService struct {
	db *gorm.DB
}

func NewProcessorService(db *gorm.DB) *ProcessorService {
	return &ProcessorService{db: db}
}

// Queue returns questions awaiting processor review, oldest first.
func (s *ProcessorService) Queue() ([]models.Question, error) {
	var questions []models.Question
	err := s.db.Where("status = ?", workflow.StatusPendingProcessor).
		Order("created_at ASC").
		Find(&questions).Error
	return questions, err
}

// PendingFlags returns questions whose flags still need adjudication,
// regardless of status.
func (s *ProcessorService) PendingFlags() ([]models.Question, error) {
	var questions []models.Question
	err := s.db.Where("is_flagged = ? AND flag_status = ?", true, workflow.FlagPending).
		Order("updated_at ASC").
		Find(&questions).Error
	return questions, err
}

// Flagged returns the visibly flagged set: raised flags the processor has
// approved. Pending and rejected flags are excluded.
func (s *ProcessorService) Flagged() ([]models.Question, error) {
	var questions []models.Question
	err := s.db.Where("is_flagged = ? AND flag_status = ?", true, workflow.FlagApproved).
		Order("updated_at ASC").
		Find(&questions).Error
	return questions, err
}

func (s *ProcessorService) Get(questionID uint) (*models.Question, error) {
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

// Accept routes a pending question onward. Destination "completed" requires
// the question to already carry an explanation.
func (s *ProcessorService) Accept(questionID, processorID uint, dest workflow.Destination, notes string) (*models.Question, error) {
	var q *models.Question
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		q, err = questionByID(tx, questionID)
		if err != nil {
			return err
		}
		if dest == workflow.DestinationCompleted && q.Explanation == "" {
			return invalidf("cannot complete a question without an explanation")
		}

		req := workflow.Request{
			Actor:       workflow.RoleProcessor,
			Action:      workflow.ActionAccept,
			Destination: dest,
		}
		extra := map[string]interface{}{
			"assigned_processor_id": processorID,
			"approved_by_id":        processorID,
		}
		return saveTransition(tx, q, req, processorID, notes, extra)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (s *ProcessorService) Reject(questionID, processorID uint, reason string) (*models.Question, error) {
	var q *models.Question
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		q, err = questionByID(tx, questionID)
		if err != nil {
			return err
		}

		req := workflow.Request{
			Actor:  workflow.RoleProcessor,
			Action: workflow.ActionReject,
			Reason: reason,
		}
		extra := map[string]interface{}{
			"rejection_reason":      reason,
			"assigned_processor_id": processorID,
		}
		if err := saveTransition(tx, q, req, processorID, reason, extra); err != nil {
			return err
		}
		q.RejectionReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ApproveFlag upholds a pending flag. With sendForCorrection the question is
// routed to the flag originator's queue; otherwise it stays where it is,
// now visibly flagged. Approving an already-approved flag is a no-op.
func (s *ProcessorService) ApproveFlag(questionID, processorID uint, sendForCorrection bool) (*models.Question, error) {
	var q *models.Question
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		q, err = questionByID(tx, questionID)
		if err != nil {
			return err
		}

		req := workflow.Request{
			Actor:             workflow.RoleProcessor,
			Action:            workflow.ActionApproveFlag,
			SendForCorrection: sendForCorrection,
		}
		return saveTransition(tx, q, req, processorID, q.FlagReason, nil)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// RejectFlag dismisses a pending flag with a reason; the question drops out
// of the visibly flagged set.
func (s *ProcessorService) RejectFlag(questionID, processorID uint, reason string) (*models.Question, error) {
	var q *models.Question
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		q, err = questionByID(tx, questionID)
		if err != nil {
			return err
		}

		req := workflow.Request{
			Actor:  workflow.RoleProcessor,
			Action: workflow.ActionRejectFlag,
			Reason: reason,
		}
		extra := map[string]interface{}{
			"flag_rejection_reason": reason,
		}
		if err := saveTransition(tx, q, req, processorID, reason, extra); err != nil {
			return err
		}
		q.FlagRejectionReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}
