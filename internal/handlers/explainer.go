package handlers

import (
	"net/http"
	"strconv"

	"talaam-backend/internal/services"
	"talaam-backend/internal/ws"

	"github.com/gin-gonic/gin"
)

type ExplainerHandler struct {
	explainerService *services.ExplainerService
	hub              *ws.Hub
}

func NewExplainerHandler(explainerService *services.ExplainerService, hub *ws.Hub) *ExplainerHandler {
	return &ExplainerHandler{explainerService: explainerService, hub: hub}
}

// Queue godoc
// @Summary      List questions awaiting an explanation
// @Tags         explainer
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Question
// @Router       /api/v1/explainer/questions [get]
func (h *ExplainerHandler) Queue(c *gin.Context) {
	questions, err := h.explainerService.Queue()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// Get godoc
// @Summary      Get a question with its history
// @Tags         explainer
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Success      200 {object} Question
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/explainer/questions/{id} [get]
func (h *ExplainerHandler) Get(c *gin.Context) {
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	question, err := h.explainerService.Get(uint(questionID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

type SubmitExplanationRequest struct {
	Text        string `json:"text" binding:"required"`
	NeedsReview bool   `json:"needs_review"`
}

// SubmitExplanation godoc
// @Summary      Attach an explanation
// @Description  Completes the question, or returns it to the processor queue when needs_review is set.
// @Tags         explainer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Param        request body SubmitExplanationRequest true "Explanation"
// @Success      200 {object} Question
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/explainer/questions/{id}/explanation [post]
func (h *ExplainerHandler) SubmitExplanation(c *gin.Context) {
	userID := c.GetUint("user_id")
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	var req SubmitExplanationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	question, err := h.explainerService.SubmitExplanation(uint(questionID), userID, req.Text, req.NeedsReview)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.NotifyStatus(question.ID, question.Status)
	c.JSON(http.StatusOK, question)
}

// RaiseFlag godoc
// @Summary      Flag a question back to the processor
// @Tags         explainer
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Param        request body RaiseFlagRequest true "Flag reason"
// @Success      200 {object} Question
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/explainer/questions/{id}/flag [post]
func (h *ExplainerHandler) RaiseFlag(c *gin.Context) {
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

	question, err := h.explainerService.RaiseFlag(uint(questionID), userID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.NotifyFlag(question.ID, question.Status)
	c.JSON(http.StatusOK, question)
}

// Resubmit godoc
// @Summary      Resubmit a corrected question to the processor queue
// @Tags         explainer
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Success      200 {object} Question
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/explainer/questions/{id}/resubmit [post]
func (h *ExplainerHandler) Resubmit(c *gin.Context) {
	userID := c.GetUint("user_id")
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	question, err := h.explainerService.Resubmit(uint(questionID), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.NotifyStatus(question.ID, question.Status)
	c.JSON(http.StatusOK, question)
}
