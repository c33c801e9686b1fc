package handlers

import (
	"net/http"
	"strconv"

	"talaam-backend/internal/services"
	"talaam-backend/internal/ws"

	"github.com/gin-gonic/gin"
)

type CreatorHandler struct {
	creatorService *services.CreatorService
	hub            *ws.Hub
}

func NewCreatorHandler(creatorService *services.CreatorService, hub *ws.Hub) *CreatorHandler {
	return &CreatorHandler{creatorService: creatorService, hub: hub}
}

// Queue godoc
// @Summary      List questions referred for variant creation
// @Tags         creator
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Question
// @Router       /api/v1/creator/questions [get]
func (h *CreatorHandler) Queue(c *gin.Context) {
	questions, err := h.creatorService.Queue()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

// Get godoc
// @Summary      Get a question with its history
// @Tags         creator
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Success      200 {object} Question
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/creator/questions/{id} [get]
func (h *CreatorHandler) Get(c *gin.Context) {
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	question, err := h.creatorService.Get(uint(questionID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, question)
}

// SubmitVariant godoc
// @Summary      Submit a variant of a referred question
// @Description  Creates a new question row referencing the original; both re-enter the processor queue.
// @Tags         creator
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Original question ID"
// @Param        request body SubmitQuestionRequest true "Variant content"
// @Success      201 {object} Question
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/creator/questions/{id}/variants [post]
func (h *CreatorHandler) SubmitVariant(c *gin.Context) {
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

	variant, err := h.creatorService.SubmitVariant(uint(questionID), userID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.NotifyStatus(variant.ID, variant.Status)
	c.JSON(http.StatusCreated, variant)
}

// SubmitUpdate godoc
// @Summary      Edit a referred question and return it to review
// @Tags         creator
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Param        request body SubmitQuestionRequest true "Updated content"
// @Success      200 {object} Question
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/creator/questions/{id}/update [post]
func (h *CreatorHandler) SubmitUpdate(c *gin.Context) {
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

	question, err := h.creatorService.SubmitUpdate(uint(questionID), userID, req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.NotifyStatus(question.ID, question.Status)
	c.JSON(http.StatusOK, question)
}

type RaiseFlagRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RaiseFlag godoc
// @Summary      Flag a referred question back to the processor
// @Tags         creator
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Param        request body RaiseFlagRequest true "Flag reason"
// @Success      200 {object} Question
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/creator/questions/{id}/flag [post]
func (h *CreatorHandler) RaiseFlag(c *gin.Context) {
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

	question, err := h.creatorService.RaiseFlag(uint(questionID), userID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.NotifyFlag(question.ID, question.Status)
	c.JSON(http.StatusOK, question)
}

// Resubmit godoc
// @Summary      Resubmit a corrected question to the processor queue
// @Tags         creator
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Success      200 {object} Question
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/creator/questions/{id}/resubmit [post]
func (h *CreatorHandler) Resubmit(c *gin.Context) {
	userID := c.GetUint("user_id")
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	question, err := h.creatorService.Resubmit(uint(questionID), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.NotifyStatus(question.ID, question.Status)
	c.JSON(http.StatusOK, question)
}
