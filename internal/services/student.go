package services

import (
	"time"

	"talaam-backend/internal/models"
	"talaam-backend/internal/workflow"

	"gorm.io/gorm"
)

type StudentService struct {
	db            *gorm.DB
	subscriptions *SubscriptionService
}

func NewStudentService(db *gorm.DB, subscriptions *SubscriptionService) *StudentService {
	return &StudentService{db: db, subscriptions: subscriptions}
}

func (s *StudentService) requireActiveSubscription(userID uint) error {
	sub, err := s.subscriptions.Current(userID)
	if err != nil {
		return forbiddenf("an active subscription is required")
	}
	if !sub.IsActive || sub.ExpiryDate == nil || sub.ExpiryDate.Before(time.Now()) {
		return forbiddenf("an active subscription is required")
	}
	return nil
}

// hideFlagOverlay blanks the dispute fields on questions leaving the service
// toward students. Only an approved flag is public; pending and rejected
// flags stay internal.
func hideFlagOverlay(questions []models.Question) {
	for i := range questions {
		if questions[i].WorkflowState().Flag.Visible() {
			questions[i].FlagRejectionReason = ""
			continue
		}
		questions[i].IsFlagged = false
		questions[i].FlagType = ""
		questions[i].FlagReason = ""
		questions[i].FlagStatus = ""
		questions[i].FlagRejectionReason = ""
	}
}

// BrowseQuestions lists published questions for study mode. Correct answers
// and explanations are included; that is the point of studying.
func (s *StudentService) BrowseQuestions(userID uint, subjectID *uint, difficulty string) ([]models.Question, error) {
	if err := s.requireActiveSubscription(userID); err != nil {
		return nil, err
	}

	query := s.db.Where("status IN ?", []workflow.Status{workflow.StatusApproved, workflow.StatusCompleted})
	if subjectID != nil {
		query = query.Where("subject_id = ?", *subjectID)
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}

	var questions []models.Question
	if err := query.Order("created_at DESC").Find(&questions).Error; err != nil {
		return nil, err
	}
	hideFlagOverlay(questions)
	return questions, nil
}

// RaiseFlag disputes a published question.
func (s *StudentService) RaiseFlag(questionID, userID uint, reason string) (*models.Question, error) {
	if err := s.requireActiveSubscription(userID); err != nil {
		return nil, err
	}
	return raiseFlag(s.db, questionID, userID, workflow.RoleStudent, reason)
}

// StartAttempt samples count published questions (optionally one subject)
// into a new test attempt. The sampled questions come back with answer keys
// and explanations stripped.
func (s *StudentService) StartAttempt(userID uint, subjectID *uint, count int) (*models.TestAttempt, []models.Question, error) {
	if err := s.requireActiveSubscription(userID); err != nil {
		return nil, nil, err
	}
	if count <= 0 || count > 100 {
		return nil, nil, invalidf("question count must be between 1 and 100")
	}

	query := s.db.Where("status IN ?", []workflow.Status{workflow.StatusApproved, workflow.StatusCompleted})
	if subjectID != nil {
		query = query.Where("subject_id = ?", *subjectID)
	}

	var questions []models.Question
	if err := query.Order("RANDOM()").Limit(count).Find(&questions).Error; err != nil {
		return nil, nil, err
	}
	if len(questions) == 0 {
		return nil, nil, notFoundf("no published questions match")
	}

	attempt := models.TestAttempt{
		UserID:    userID,
		SubjectID: subjectID,
		Status:    models.AttemptStatusInProgress,
		Total:     len(questions),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}
		for _, q := range questions {
			ans := models.AttemptAnswer{AttemptID: attempt.ID, QuestionID: q.ID}
			if err := tx.Create(&ans).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	for i := range questions {
		questions[i].CorrectAnswer = ""
		questions[i].Explanation = ""
	}
	hideFlagOverlay(questions)
	return &attempt, questions, nil
}

// SubmitAnswers grades the attempt against the stored answer keys and
// finishes it. An already-finished attempt conflicts.
func (s *StudentService) SubmitAnswers(attemptID, userID uint, answers map[uint]string) (*models.TestAttempt, error) {
	if err := s.requireActiveSubscription(userID); err != nil {
		return nil, err
	}

	var attempt models.TestAttempt
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Answers").First(&attempt, attemptID).Error; err != nil {
			return notFoundf("attempt %d not found", attemptID)
		}
		if attempt.UserID != userID {
			return forbiddenf("attempt %d belongs to another student", attemptID)
		}
		if attempt.Status == models.AttemptStatusFinished {
			return conflictf("attempt %d is already finished", attemptID)
		}

		score := 0
		now := time.Now()
		for i := range attempt.Answers {
			ans := &attempt.Answers[i]
			selected, ok := answers[ans.QuestionID]
			if !ok {
				continue
			}

			var q models.Question
			if err := tx.First(&q, ans.QuestionID).Error; err != nil {
				return err
			}
			ans.Selected = selected
			ans.IsCorrect = selected == q.CorrectAnswer
			ans.AnsweredAt = now
			if ans.IsCorrect {
				score++
			}
			if err := tx.Save(ans).Error; err != nil {
				return err
			}
		}

		attempt.Score = score
		attempt.Status = models.AttemptStatusFinished
		attempt.FinishedAt = &now
		return tx.Save(&attempt).Error
	})
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// AttemptResult returns a finished attempt with per-question correctness.
func (s *StudentService) AttemptResult(attemptID, userID uint) (*models.TestAttempt, error) {
	if err := s.requireActiveSubscription(userID); err != nil {
		return nil, err
	}

	var attempt models.TestAttempt
	if err := s.db.Preload("Answers").First(&attempt, attemptID).Error; err != nil {
		return nil, notFoundf("attempt %d not found", attemptID)
	}
	if attempt.UserID != userID {
		return nil, forbiddenf("attempt %d belongs to another student", attemptID)
	}
	return &attempt, nil
}
