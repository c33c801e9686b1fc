package services

import (
	"errors"
	"testing"
	"time"

	"talaam-backend/internal/models"
	"talaam-backend/internal/workflow"

	"gorm.io/gorm"
)

func createPlan(t *testing.T, db *gorm.DB) *models.Plan {
	t.Helper()

	plan := models.Plan{
		Code:         "monthly",
		Name:         "Monthly",
		PriceCents:   999,
		Currency:     "USD",
		DurationDays: 30,
		IsActive:     true,
	}
	if err := db.Create(&plan).Error; err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return &plan
}

// activateSubscription subscribes the user and confirms payment through the
// webhook path.
func activateSubscription(t *testing.T, db *gorm.DB, subs *SubscriptionService, userID uint) *models.Subscription {
	t.Helper()

	var plan models.Plan
	if err := db.Where("code = ?", "monthly").First(&plan).Error; err != nil {
		plan = *createPlan(t, db)
	}

	sub, err := subs.Subscribe(userID, plan.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	event := WebhookEvent{
		Reference:  "evt_" + sub.PaymentRef,
		PaymentRef: sub.PaymentRef,
		Status:     models.PaymentStatusPaid,
	}
	if err := subs.ApplyWebhookEvent(event, []byte(`{}`)); err != nil {
		t.Fatalf("apply webhook: %v", err)
	}

	active, err := subs.Current(userID)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	return active
}

func TestSubscription_WebhookActivates(t *testing.T) {
	db := openTestDB(t)
	student := createUser(t, db, "student", workflow.RoleStudent)
	subs := NewSubscriptionService(db)

	sub := activateSubscription(t, db, subs, student.ID)
	if !sub.IsActive {
		t.Fatal("subscription not active after paid webhook")
	}
	if sub.PaymentStatus != models.PaymentStatusPaid {
		t.Fatalf("payment status = %q, want paid", sub.PaymentStatus)
	}
	if sub.ExpiryDate == nil || !sub.ExpiryDate.After(time.Now()) {
		t.Fatal("expiry date missing or in the past")
	}
}

func TestSubscription_WebhookIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	student := createUser(t, db, "student", workflow.RoleStudent)
	subs := NewSubscriptionService(db)

	sub := activateSubscription(t, db, subs, student.ID)
	firstExpiry := *sub.ExpiryDate

	// Same event redelivered must not extend the subscription.
	event := WebhookEvent{
		Reference:  "evt_" + sub.PaymentRef,
		PaymentRef: sub.PaymentRef,
		Status:     models.PaymentStatusPaid,
	}
	if err := subs.ApplyWebhookEvent(event, []byte(`{}`)); err != nil {
		t.Fatalf("redelivered webhook: %v", err)
	}

	again, err := subs.Current(student.ID)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if !again.ExpiryDate.Equal(firstExpiry) {
		t.Fatalf("redelivery moved expiry: %v -> %v", firstExpiry, again.ExpiryDate)
	}

	var events int64
	db.Model(&models.PaymentEvent{}).Count(&events)
	if events != 1 {
		t.Fatalf("payment events = %d, want 1", events)
	}
}

func TestSubscription_FailedWebhook(t *testing.T) {
	db := openTestDB(t)
	student := createUser(t, db, "student", workflow.RoleStudent)
	subs := NewSubscriptionService(db)
	plan := createPlan(t, db)

	sub, err := subs.Subscribe(student.ID, plan.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	event := WebhookEvent{Reference: "evt_1", PaymentRef: sub.PaymentRef, Status: models.PaymentStatusFailed}
	if err := subs.ApplyWebhookEvent(event, []byte(`{}`)); err != nil {
		t.Fatalf("apply webhook: %v", err)
	}

	got, err := subs.Current(student.ID)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if got.IsActive || got.PaymentStatus != models.PaymentStatusFailed {
		t.Fatalf("subscription after failed payment: active=%v status=%q", got.IsActive, got.PaymentStatus)
	}
}

func TestSubscription_WebhookValidation(t *testing.T) {
	db := openTestDB(t)
	subs := NewSubscriptionService(db)

	tests := []struct {
		name  string
		event WebhookEvent
	}{
		{"missing reference", WebhookEvent{PaymentRef: "x", Status: models.PaymentStatusPaid}},
		{"missing payment ref", WebhookEvent{Reference: "evt", Status: models.PaymentStatusPaid}},
		{"unknown status", WebhookEvent{Reference: "evt", PaymentRef: "x", Status: "refunded"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := subs.ApplyWebhookEvent(tt.event, nil); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("ApplyWebhookEvent() err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSubscription_DoubleSubscribeConflicts(t *testing.T) {
	db := openTestDB(t)
	student := createUser(t, db, "student", workflow.RoleStudent)
	subs := NewSubscriptionService(db)

	activateSubscription(t, db, subs, student.ID)

	var plan models.Plan
	if err := db.Where("code = ?", "monthly").First(&plan).Error; err != nil {
		t.Fatalf("plan: %v", err)
	}
	if _, err := subs.Subscribe(student.ID, plan.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("second subscribe err = %v, want ErrConflict", err)
	}
}

func TestSubscription_ExpireSweep(t *testing.T) {
	db := openTestDB(t)
	student := createUser(t, db, "student", workflow.RoleStudent)
	subs := NewSubscriptionService(db)

	sub := activateSubscription(t, db, subs, student.ID)

	// Nothing to expire yet.
	n, err := subs.ExpireSweep(time.Now())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("sweep expired %d, want 0", n)
	}

	n, err = subs.ExpireSweep(time.Now().AddDate(0, 0, 31))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("sweep expired %d, want 1", n)
	}

	got, err := subs.Current(student.ID)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if got.IsActive {
		t.Fatal("subscription still active after sweep")
	}

	// Sweep is a no-op the second time.
	n, err = subs.ExpireSweep(time.Now().AddDate(0, 0, 31))
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 0 {
		t.Fatalf("second sweep expired %d, want 0", n)
	}
	_ = sub
}
