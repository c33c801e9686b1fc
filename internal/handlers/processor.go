package handlers

import (
	"net/http"
	"strconv"

	"talaam-backend/internal/services"
	"talaam-backend/internal/workflow"
	"talaam-backend/internal/ws"

	"github.com/gin-gonic/gin"
)

type ProcessorHandler struct {
	processorService *services.ProcessorService
	hub              *ws.Hub
}

func NewProcessorHandler(processorService *services.ProcessorService, hub *ws.Hub) *ProcessorHandler {
	return &ProcessorHandler{processorService: processorService, hub: hub}
}

// Queue godoc
// @Summary      List questions awaiting review
// @Description  filter=flagged lists visibly flagged questions; filter=pending_flags lists flags awaiting adjudication.
// @Tags         processor
// @Produce      json
// @Security     BearerAuth
// @Param        filter query string false "flagged | pending_flags"
// @Success      200 {array} Question
// @Router       /api/v1/processor/questions [get]
func (h *ProcessorHandler) Queue(c *gin.Context) {
	var (
		questions []Question
		err       error
	)
	switch c.Query("filter") {
	case "flagged":
		questions, err = h.processorService.Flagged()
	case "pending_flags":
		questions, err = h.processorService.PendingFlags()
	case "":
		questions, err = h.processorService.Queue()
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown filter"})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, questions)
}

// Get godoc
// @Summary      Get a question with its history
// @Tags         processor
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Success      200 {object} Question
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/processor/questions/{id} [get]
func (h *ProcessorHandler) Get(c *gin.Context) {
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	question, err := h.processorService.Get(uint(questionID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

type AcceptRequest struct {
	Destination string `json:"next_destination" binding:"required"`
	Notes       string `json:"notes"`
}

// Accept godoc
// @Summary      Accept a question and route it onward
// @Tags         processor
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Param        request body AcceptRequest true "Routing choice: creator, explainer, approved or completed"
// @Success      200 {object} Question
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/processor/questions/{id}/accept [post]
func (h *ProcessorHandler) Accept(c *gin.Context) {
	userID := c.GetUint("user_id")
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	var req AcceptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	question, err := h.processorService.Accept(uint(questionID), userID, workflow.Destination(req.Destination), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.NotifyStatus(question.ID, question.Status)
	c.JSON(http.StatusOK, question)
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// Reject godoc
// @Summary      Reject a question with a reason
// @Tags         processor
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Param        request body RejectRequest true "Rejection reason"
// @Success      200 {object} Question
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/processor/questions/{id}/reject [post]
func (h *ProcessorHandler) Reject(c *gin.Context) {
	userID := c.GetUint("user_id")
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	question, err := h.processorService.Reject(uint(questionID), userID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

type ApproveFlagRequest struct {
	SendForCorrection bool `json:"send_for_correction"`
}

// ApproveFlag godoc
// @Summary      Uphold a pending flag
// @Description  Idempotent: approving an already-approved flag changes nothing.
// @Tags         processor
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Param        request body ApproveFlagRequest false "Routing choice"
// @Success      200 {object} Question
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/processor/questions/{id}/flag/approve [post]
func (h *ProcessorHandler) ApproveFlag(c *gin.Context) {
	userID := c.GetUint("user_id")
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	var req ApproveFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	question, err := h.processorService.ApproveFlag(uint(questionID), userID, req.SendForCorrection)
	if err != nil {
		respondError(c, err)
		return
	}

	h.hub.NotifyStatus(question.ID, question.Status)
	c.JSON(http.StatusOK, question)
}

// RejectFlag godoc
// @Summary      Dismiss a pending flag with a reason
// @Tags         processor
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Question ID"
// @Param        request body RejectRequest true "Flag rejection reason"
// @Success      200 {object} Question
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/processor/questions/{id}/flag/reject [post]
func (h *ProcessorHandler) RejectFlag(c *gin.Context) {
	userID := c.GetUint("user_id")
	questionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid question id"})
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	question, err := h.processorService.RejectFlag(uint(questionID), userID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}
