package services

import (
	"errors"
	"log"
	"time"

	"talaam-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SubscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{db: db}
}

func (s *SubscriptionService) Plans() ([]models.Plan, error) {
	var plans []models.Plan
	err := s.db.Where("is_active = ?", true).Order("price_cents ASC").Find(&plans).Error
	return plans, err
}

// Subscribe opens a pending subscription and returns it with the payment
// reference the gateway checkout is keyed on. An existing active
// subscription conflicts.
func (s *SubscriptionService) Subscribe(userID, planID uint) (*models.Subscription, error) {
	var plan models.Plan
	if err := s.db.Where("id = ? AND is_active = ?", planID, true).First(&plan).Error; err != nil {
		return nil, notFoundf("plan %d not found", planID)
	}

	var active models.Subscription
	err := s.db.Where("user_id = ? AND is_active = ? AND expiry_date > ?", userID, true, time.Now()).
		First(&active).Error
	if err == nil {
		return nil, conflictf("user already has an active subscription")
	}

	sub := models.Subscription{
		UserID:        userID,
		PlanID:        planID,
		PaymentRef:    uuid.NewString(),
		PaymentStatus: models.PaymentStatusPending,
	}
	if err := s.db.Create(&sub).Error; err != nil {
		return nil, err
	}
	sub.Plan = plan
	return &sub, nil
}

// Current returns the user's most recent subscription.
func (s *SubscriptionService) Current(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.Where("user_id = ?", userID).
		Preload("Plan").
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, notFoundf("no subscription for user %d", userID)
	}
	return &sub, nil
}

// WebhookEvent is one payment notification from the gateway.
type WebhookEvent struct {
	Reference  string `json:"reference"`
	PaymentRef string `json:"payment_ref"`
	Status     string `json:"status"`
}

// ApplyWebhookEvent records and applies a gateway notification. The event
// reference is an idempotency key: a redelivered event is dropped without
// touching the subscription again.
func (s *SubscriptionService) ApplyWebhookEvent(event WebhookEvent, rawPayload []byte) error {
	if event.Reference == "" || event.PaymentRef == "" {
		return invalidf("webhook event missing reference or payment_ref")
	}
	if event.Status != models.PaymentStatusPaid && event.Status != models.PaymentStatusFailed {
		return invalidf("unknown payment status %q", event.Status)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var seen models.PaymentEvent
		if err := tx.Where("reference = ?", event.Reference).First(&seen).Error; err == nil {
			log.Printf("webhook: duplicate event %s ignored", event.Reference)
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		record := models.PaymentEvent{
			Reference:   event.Reference,
			PaymentRef:  event.PaymentRef,
			Status:      event.Status,
			RawPayload:  datatypes.JSON(rawPayload),
			ProcessedAt: time.Now(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		var sub models.Subscription
		if err := tx.Preload("Plan").Where("payment_ref = ?", event.PaymentRef).First(&sub).Error; err != nil {
			return notFoundf("no subscription for payment ref %s", event.PaymentRef)
		}

		switch event.Status {
		case models.PaymentStatusPaid:
			now := time.Now()
			expiry := now.AddDate(0, 0, sub.Plan.DurationDays)
			sub.PaymentStatus = models.PaymentStatusPaid
			sub.StartDate = &now
			sub.ExpiryDate = &expiry
			sub.IsActive = true
		case models.PaymentStatusFailed:
			sub.PaymentStatus = models.PaymentStatusFailed
			sub.IsActive = false
		}
		return tx.Save(&sub).Error
	})
}

// ExpireSweep deactivates subscriptions past their expiry date. Best-effort
// correction pass; safe to run concurrently with webhook handling since it
// only ever narrows is_active.
func (s *SubscriptionService) ExpireSweep(now time.Time) (int64, error) {
	res := s.db.Model(&models.Subscription{}).
		Where("is_active = ? AND expiry_date < ?", true, now).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}
