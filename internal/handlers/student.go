package handlers

import (
	"net/http"
	"strconv"

	"talaam-backend/internal/services"
	"talaam-backend/internal/ws"

	"github.com/gin-gonic/gin"
)

type StudentHandler struct {
	studentService *services.StudentService
	hub            *ws.Hub
}

func NewStudentHandler(studentService *services.StudentService, hub *ws.Hub) *StudentHandler {
	return &StudentHandler{studentService: studentService, hub: hub}
}

func parseSubjectQuery(c *gin.Context) *uint {
	raw := c.Query("subject_id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	sid := uint(id)
	return &sid
}

// Browse godoc
// @Summary      Browse published questions for study
// @Tags         student
// @Produce      json
// @Security     BearerAuth
// @Param        subject_id query int false "Filter by subject"
// @Param        difficulty query string false "easy | medium | hard"
// @Success      200 {array} Question
// @Failure      403 {object} ErrorResponse
// @Router       /api/v1/student/questions [get]
func (h *StudentHandler) Browse(c *gin.Context) {
	userID := c.GetUint("user_id")

	questions, err := h.studentService.BrowseQuestions(userID, parseSubjectQuery(c), c.Query("difficulty"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// RaiseFlag godoc
// @Summary      Dispute a published question
// @Tags         student
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Param        request body RaiseFlagRequest true "Flag reason"
// @Success      200 {object} Question
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/student/questions/{id}/flag [post]
func (h *StudentHandler) RaiseFlag(c *gin.Context) {
	userID := c.GetUint("user_id")
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	var req RaiseFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	question, err := h.studentService.RaiseFlag(uint(questionID), userID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.NotifyFlag(question.ID, question.Status)
	c.JSON(http.StatusOK, question)
}

type StartTestRequest struct {
	Count     int   `json:"count" binding:"required,min=1,max=100"`
	SubjectID *uint `json:"subject_id"`
}

type StartTestResponse struct {
	Attempt   TestAttempt `json:"attempt"`
	Questions []Question  `json:"questions"`
}

// StartTest godoc
// @Summary      Start a practice test
// @Description  Samples published questions with answer keys stripped.
// @Tags         student
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body StartTestRequest true "Test size and optional subject"
// @Success      201 {object} StartTestResponse
// @Failure      403 {object} ErrorResponse
// @Router       /api/v1/student/tests [post]
func (h *StudentHandler) StartTest(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req StartTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	attempt, questions, err := h.studentService.StartAttempt(userID, req.SubjectID, req.Count)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, StartTestResponse{Attempt: *attempt, Questions: questions})
}

type SubmitAnswersRequest struct {
	// Answers maps question id to the selected option key.
	Answers map[uint]string `json:"answers" binding:"required"`
}

// SubmitAnswers godoc
// @Summary      Submit and grade a practice test
// @Tags         student
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Attempt ID"
// @Param        request body SubmitAnswersRequest true "Selected answers keyed by question id"
// @Success      200 {object} TestAttempt
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/student/tests/{id}/answers [post]
func (h *StudentHandler) SubmitAnswers(c *gin.Context) {
	userID := c.GetUint("user_id")
	attemptID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid attempt id"})
		return
	}

	var req SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	attempt, err := h.studentService.SubmitAnswers(uint(attemptID), userID, req.Answers)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// TestResult godoc
// @Summary      Get a practice test result
// @Tags         student
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Attempt ID"
// @Success      200 {object} TestAttempt
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/student/tests/{id} [get]
func (h *StudentHandler) TestResult(c *gin.Context) {
	userID := c.GetUint("user_id")
	attemptID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid attempt id"})
		return
	}

	attempt, err := h.studentService.AttemptResult(uint(attemptID), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}
