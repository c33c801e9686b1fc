package services

import (
	"talaam-backend/internal/models"
	"talaam-backend/internal/workflow"

	"gorm.io/gorm"
)

type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) ListUsers(role workflow.Role) ([]models.User, error) {
	query := s.db.Order("created_at ASC")
	if role != "" {
		if !role.IsValid() {
			return nil, invalidf("unknown role %q", role)
		}
		query = query.Where("role = ?", role)
	}
	var users []models.User
	err := query.Find(&users).Error
	return users, err
}

func (s *AdminService) ChangeUserRole(userID uint, role workflow.Role) (*models.User, error) {
	if !role.IsValid() {
		return nil, invalidf("unknown role %q", role)
	}
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, notFoundf("user %d not found", userID)
	}
	user.Role = role
	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListQuestions is the admin's unfiltered view across every role queue.
func (s *AdminService) ListQuestions(status workflow.Status) ([]models.Question, error) {
	query := s.db.Order("created_at DESC")
	if status != workflow.StatusNone {
		if !status.IsValid() {
			return nil, invalidf("unknown status %q", status)
		}
		query = query.Where("status = ?", status)
	}
	var questions []models.Question
	err := query.Find(&questions).Error
	return questions, err
}

func (s *AdminService) CreatePlan(code, name string, priceCents, durationDays int, currency string) (*models.Plan, error) {
	if code == "" || name == "" || durationDays <= 0 {
		return nil, invalidf("plan requires code, name and a positive duration")
	}
	var existing models.Plan
	if err := s.db.Where("code = ?", code).First(&existing).Error; err == nil {
		return nil, conflictf("plan code %q already exists", code)
	}
	if currency == "" {
		currency = "USD"
	}
	plan := models.Plan{
		Code:         code,
		Name:         name,
		PriceCents:   priceCents,
		Currency:     currency,
		DurationDays: durationDays,
		IsActive:     true,
	}
	if err := s.db.Create(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (s *AdminService) DeactivatePlan(planID uint) error {
	res := s.db.Model(&models.Plan{}).Where("id = ?", planID).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFoundf("plan %d not found", planID)
	}
	return nil
}

func (s *AdminService) ListSubjects() ([]models.Subject, error) {
	var subjects []models.Subject
	err := s.db.Preload("Topics").Preload("Topics.Subtopics").Order("name ASC").Find(&subjects).Error
	return subjects, err
}

func (s *AdminService) CreateSubject(name string) (*models.Subject, error) {
	if name == "" {
		return nil, invalidf("subject name is required")
	}
	var existing models.Subject
	if err := s.db.Where("name = ?", name).First(&existing).Error; err == nil {
		return nil, conflictf("subject %q already exists", name)
	}
	subject := models.Subject{Name: name}
	if err := s.db.Create(&subject).Error; err != nil {
		return nil, err
	}
	return &subject, nil
}

func (s *AdminService) CreateTopic(subjectID uint, name string) (*models.Topic, error) {
	if name == "" {
		return nil, invalidf("topic name is required")
	}
	var subject models.Subject
	if err := s.db.First(&subject, subjectID).Error; err != nil {
		return nil, notFoundf("subject %d not found", subjectID)
	}
	topic := models.Topic{SubjectID: subjectID, Name: name}
	if err := s.db.Create(&topic).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (s *AdminService) CreateSubtopic(topicID uint, name string) (*models.Subtopic, error) {
	if name == "" {
		return nil, invalidf("subtopic name is required")
	}
	var topic models.Topic
	if err := s.db.First(&topic, topicID).Error; err != nil {
		return nil, notFoundf("topic %d not found", topicID)
	}
	subtopic := models.Subtopic{TopicID: topicID, Name: name}
	if err := s.db.Create(&subtopic).Error; err != nil {
		return nil, err
	}
	return &subtopic, nil
}
