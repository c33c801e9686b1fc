package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"talaam-backend/internal/models"
	"talaam-backend/internal/workflow"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func publishQuestion(t *testing.T, db *gorm.DB, subjectID, createdBy uint, correct string) *models.Question {
	t.Helper()

	q := models.Question{
		Text:          fmt.Sprintf("published question (key %s)", correct),
		Type:          models.QuestionTypeMultipleChoice,
		Options:       datatypes.JSONMap{"a": "first", "b": "second", "c": "third"},
		CorrectAnswer: correct,
		Difficulty:    models.DifficultyMedium,
		SubjectID:     subjectID,
		Status:        workflow.StatusCompleted,
		Explanation:   "because it is",
		CreatedByID:   createdBy,
	}
	if err := db.Create(&q).Error; err != nil {
		t.Fatalf("publish question: %v", err)
	}
	return &q
}

func TestStudent_SubscriptionGate(t *testing.T) {
	db := openTestDB(t)
	student := createUser(t, db, "student", workflow.RoleStudent)
	subs := NewSubscriptionService(db)
	svc := NewStudentService(db, subs)

	if _, err := svc.BrowseQuestions(student.ID, nil, ""); !errors.Is(err, ErrForbidden) {
		t.Fatalf("browse without subscription err = %v, want ErrForbidden", err)
	}
	if _, _, err := svc.StartAttempt(student.ID, nil, 5); !errors.Is(err, ErrForbidden) {
		t.Fatalf("start attempt without subscription err = %v, want ErrForbidden", err)
	}

	activateSubscription(t, db, subs, student.ID)

	gatherer := createUser(t, db, "gatherer", workflow.RoleGatherer)
	subject := createSubject(t, db, "Geography")
	publishQuestion(t, db, subject.ID, gatherer.ID, "a")

	questions, err := svc.BrowseQuestions(student.ID, nil, "")
	if err != nil {
		t.Fatalf("browse with subscription: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("browse returned %d questions, want 1", len(questions))
	}
	// Study mode keeps the answer key and explanation.
	if questions[0].CorrectAnswer == "" || questions[0].Explanation == "" {
		t.Fatal("study mode stripped the answer key or explanation")
	}
}

func TestStudent_BrowseExcludesUnpublished(t *testing.T) {
	db := openTestDB(t)
	student := createUser(t, db, "student", workflow.RoleStudent)
	gatherer := createUser(t, db, "gatherer", workflow.RoleGatherer)
	subject := createSubject(t, db, "Geography")
	subs := NewSubscriptionService(db)
	svc := NewStudentService(db, subs)
	activateSubscription(t, db, subs, student.ID)

	publishQuestion(t, db, subject.ID, gatherer.ID, "a")

	gatherers := NewGathererService(db)
	if _, err := gatherers.Submit(gatherer.ID, sampleInput(subject.ID)); err != nil {
		t.Fatalf("submit: %v", err)
	}

	questions, err := svc.BrowseQuestions(student.ID, nil, "")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	for _, q := range questions {
		if q.Status != workflow.StatusApproved && q.Status != workflow.StatusCompleted {
			t.Fatalf("browse returned unpublished question in status %q", q.Status)
		}
	}
	if len(questions) != 1 {
		t.Fatalf("browse returned %d questions, want 1", len(questions))
	}
}

func TestStudent_BrowseHidesUnapprovedFlags(t *testing.T) {
	db := openTestDB(t)
	student := createUser(t, db, "student", workflow.RoleStudent)
	processor := createUser(t, db, "processor", workflow.RoleProcessor)
	gatherer := createUser(t, db, "gatherer", workflow.RoleGatherer)
	subject := createSubject(t, db, "Geography")
	subs := NewSubscriptionService(db)
	svc := NewStudentService(db, subs)
	processors := NewProcessorService(db)
	activateSubscription(t, db, subs, student.ID)

	q := publishQuestion(t, db, subject.ID, gatherer.ID, "a")
	if _, err := svc.RaiseFlag(q.ID, student.ID, "the answer key looks wrong"); err != nil {
		t.Fatalf("raise flag: %v", err)
	}

	browse := func() models.Question {
		t.Helper()
		questions, err := svc.BrowseQuestions(student.ID, nil, "")
		if err != nil {
			t.Fatalf("browse: %v", err)
		}
		if len(questions) != 1 {
			t.Fatalf("browse returned %d questions, want 1", len(questions))
		}
		return questions[0]
	}

	// Pending flag stays internal.
	got := browse()
	if got.IsFlagged || got.FlagReason != "" || got.FlagStatus != workflow.FlagNone {
		t.Fatalf("pending flag leaked to students: %+v", got.WorkflowState().Flag)
	}

	if _, err := processors.ApproveFlag(q.ID, processor.ID, false); err != nil {
		t.Fatalf("approve flag: %v", err)
	}
	got = browse()
	if !got.IsFlagged || got.FlagStatus != workflow.FlagApproved || got.FlagReason == "" {
		t.Fatalf("approved flag hidden from students: %+v", got.WorkflowState().Flag)
	}

	// A rejected flag is hidden again, reason and all.
	q2 := publishQuestion(t, db, subject.ID, gatherer.ID, "b")
	if _, err := svc.RaiseFlag(q2.ID, student.ID, "too easy"); err != nil {
		t.Fatalf("raise flag: %v", err)
	}
	if _, err := processors.RejectFlag(q2.ID, processor.ID, "difficulty is fine"); err != nil {
		t.Fatalf("reject flag: %v", err)
	}
	questions, err := svc.BrowseQuestions(student.ID, nil, "")
	if err != nil {
		t.Fatalf("browse: %v", err)
	}
	for _, bq := range questions {
		if bq.ID != q2.ID {
			continue
		}
		if bq.IsFlagged || bq.FlagReason != "" || bq.FlagRejectionReason != "" {
			t.Fatalf("rejected flag leaked to students: %+v", bq)
		}
	}

	// Test mode strips the overlay the same way.
	_, sampled, err := svc.StartAttempt(student.ID, nil, 2)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	for _, sq := range sampled {
		if sq.ID == q2.ID && (sq.IsFlagged || sq.FlagReason != "") {
			t.Fatalf("test mode leaked flag overlay: %+v", sq)
		}
	}
}

func TestStudent_AttemptGrading(t *testing.T) {
	db := openTestDB(t)
	student := createUser(t, db, "student", workflow.RoleStudent)
	gatherer := createUser(t, db, "gatherer", workflow.RoleGatherer)
	subject := createSubject(t, db, "Geography")
	subs := NewSubscriptionService(db)
	svc := NewStudentService(db, subs)
	activateSubscription(t, db, subs, student.ID)

	q1 := publishQuestion(t, db, subject.ID, gatherer.ID, "a")
	q2 := publishQuestion(t, db, subject.ID, gatherer.ID, "b")
	q3 := publishQuestion(t, db, subject.ID, gatherer.ID, "c")

	attempt, questions, err := svc.StartAttempt(student.ID, &subject.ID, 3)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	if attempt.Total != 3 || len(questions) != 3 {
		t.Fatalf("attempt total = %d, questions = %d, want 3 each", attempt.Total, len(questions))
	}
	for _, q := range questions {
		if q.CorrectAnswer != "" || q.Explanation != "" {
			t.Fatal("test mode leaked the answer key or explanation")
		}
	}

	// Two right, one wrong, graded against the stored keys.
	answers := map[uint]string{q1.ID: "a", q2.ID: "b", q3.ID: "a"}
	finished, err := svc.SubmitAnswers(attempt.ID, student.ID, answers)
	if err != nil {
		t.Fatalf("submit answers: %v", err)
	}
	if finished.Score != 2 {
		t.Fatalf("score = %d, want 2", finished.Score)
	}
	if finished.Status != models.AttemptStatusFinished || finished.FinishedAt == nil {
		t.Fatal("attempt not marked finished")
	}

	if _, err := svc.SubmitAnswers(attempt.ID, student.ID, answers); !errors.Is(err, ErrConflict) {
		t.Fatalf("resubmit err = %v, want ErrConflict", err)
	}

	result, err := svc.AttemptResult(attempt.ID, student.ID)
	if err != nil {
		t.Fatalf("attempt result: %v", err)
	}
	correct := 0
	for _, ans := range result.Answers {
		if ans.IsCorrect {
			correct++
		}
	}
	if correct != 2 {
		t.Fatalf("result has %d correct answers, want 2", correct)
	}
}

func TestStudent_AttemptOwnership(t *testing.T) {
	db := openTestDB(t)
	student := createUser(t, db, "student", workflow.RoleStudent)
	other := createUser(t, db, "other", workflow.RoleStudent)
	gatherer := createUser(t, db, "gatherer", workflow.RoleGatherer)
	subject := createSubject(t, db, "Geography")
	subs := NewSubscriptionService(db)
	svc := NewStudentService(db, subs)
	activateSubscription(t, db, subs, student.ID)

	publishQuestion(t, db, subject.ID, gatherer.ID, "a")

	attempt, _, err := svc.StartAttempt(student.ID, nil, 1)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}

	if _, err := svc.SubmitAnswers(attempt.ID, other.ID, nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign submit err = %v, want ErrForbidden", err)
	}
	if _, err := svc.AttemptResult(attempt.ID, other.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign result err = %v, want ErrForbidden", err)
	}
}

func TestStudent_LapsedSubscriptionBlocksGrading(t *testing.T) {
	db := openTestDB(t)
	student := createUser(t, db, "student", workflow.RoleStudent)
	gatherer := createUser(t, db, "gatherer", workflow.RoleGatherer)
	subject := createSubject(t, db, "Geography")
	subs := NewSubscriptionService(db)
	svc := NewStudentService(db, subs)
	activateSubscription(t, db, subs, student.ID)

	q := publishQuestion(t, db, subject.ID, gatherer.ID, "a")

	attempt, _, err := svc.StartAttempt(student.ID, nil, 1)
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}

	// Subscription lapses while the attempt is open.
	if _, err := subs.ExpireSweep(time.Now().AddDate(0, 0, 31)); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	answers := map[uint]string{q.ID: "a"}
	if _, err := svc.SubmitAnswers(attempt.ID, student.ID, answers); !errors.Is(err, ErrForbidden) {
		t.Fatalf("submit after lapse err = %v, want ErrForbidden", err)
	}
	if _, err := svc.AttemptResult(attempt.ID, student.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("result after lapse err = %v, want ErrForbidden", err)
	}
}

func TestStudent_AttemptCountBounds(t *testing.T) {
	db := openTestDB(t)
	student := createUser(t, db, "student", workflow.RoleStudent)
	subs := NewSubscriptionService(db)
	svc := NewStudentService(db, subs)
	activateSubscription(t, db, subs, student.ID)

	for _, count := range []int{0, -1, 101} {
		if _, _, err := svc.StartAttempt(student.ID, nil, count); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("count %d err = %v, want ErrInvalidInput", count, err)
		}
	}
}
