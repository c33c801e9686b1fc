package handlers

import (
	"net/http"
	"strconv"

	"talaam-backend/internal/services"
	"talaam-backend/internal/workflow"
	"talaam-backend/internal/ws"

	"github.com/gin-gonic/gin"
)

type GathererHandler struct {
	gathererService *services.GathererService
	hub             *ws.Hub
}

func NewGathererHandler(gathererService *services.GathererService, hub *ws.Hub) *GathererHandler {
	return &GathererHandler{gathererService: gathererService, hub: hub}
}

type SubmitQuestionRequest struct {
	Text          string            `json:"text" binding:"required"`
	Type          string            `json:"type"`
	Options       map[string]string `json:"options" binding:"required"`
	CorrectAnswer string            `json:"correct_answer" binding:"required"`
	Difficulty    string            `json:"difficulty"`
	SubjectID     uint              `json:"subject_id" binding:"required"`
	TopicID       *uint             `json:"topic_id"`
	SubtopicID    *uint             `json:"subtopic_id"`
	Notes         string            `json:"notes"`
}

func (r SubmitQuestionRequest) toInput() services.QuestionInput {
	return services.QuestionInput{
		Text:          r.Text,
		Type:          r.Type,
		Options:       r.Options,
		CorrectAnswer: r.CorrectAnswer,
		Difficulty:    r.Difficulty,
		SubjectID:     r.SubjectID,
		TopicID:       r.TopicID,
		SubtopicID:    r.SubtopicID,
		Notes:         r.Notes,
	}
}

// Submit godoc
// @Summary      Submit a new question
// @Tags         gatherer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SubmitQuestionRequest true "Question content"
// @Success      201 {object} Question
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/gatherer/questions [post]
func (h *GathererHandler) Submit(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req SubmitQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	question, err := h.gathererService.Submit(userID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.NotifyStatus(question.ID, question.Status)
	c.JSON(http.StatusCreated, question)
}

// ListMine godoc
// @Summary      List own submissions
// @Tags         gatherer
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Filter by status"
// @Success      200 {array} Question
// @Router       /api/v1/gatherer/questions [get]
func (h *GathererHandler) ListMine(c *gin.Context) {
	userID := c.GetUint("user_id")

	questions, err := h.gathererService.ListMine(userID, workflow.Status(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// GetMine godoc
// @Summary      Get one of own submissions, with history
// @Tags         gatherer
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Success      200 {object} Question
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/gatherer/questions/{id} [get]
func (h *GathererHandler) GetMine(c *gin.Context) {
	userID := c.GetUint("user_id")
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	question, err := h.gathererService.GetMine(uint(questionID), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// Resubmit godoc
// @Summary      Edit and resubmit a rejected question
// @Tags         gatherer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Param        request body SubmitQuestionRequest true "Revised content"
// @Success      200 {object} Question
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/gatherer/questions/{id}/resubmit [post]
func (h *GathererHandler) Resubmit(c *gin.Context) {
	userID := c.GetUint("user_id")
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	var req SubmitQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	question, err := h.gathererService.Resubmit(uint(questionID), userID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.NotifyStatus(question.ID, question.Status)
	c.JSON(http.StatusOK, question)
}
