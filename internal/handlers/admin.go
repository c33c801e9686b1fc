package handlers

import (
	"net/http"
	"strconv"

	"talaam-backend/internal/services"
	"talaam-backend/internal/workflow"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// ListUsers godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        role query string false "Filter by role"
// @Success      200 {array} User
// @Router       /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(workflow.Role(c.Query("role")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// ChangeUserRole godoc
// @Summary      Change a user's role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Param        request body ChangeRoleRequest true "New role"
// @Success      200 {object} User
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/admin/users/{id}/role [put]
func (h *AdminHandler) ChangeUserRole(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	user, err := h.adminService.ChangeUserRole(uint(userID), workflow.Role(req.Role))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListQuestions godoc
// @Summary      List questions across all queues
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Filter by status"
// @Success      200 {array} Question
// @Router       /api/v1/admin/questions [get]
func (h *AdminHandler) ListQuestions(c *gin.Context) {
	questions, err := h.adminService.ListQuestions(workflow.Status(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questions)
}

type CreatePlanRequest struct {
	Code         string `json:"code" binding:"required"`
	Name         string `json:"name" binding:"required"`
	PriceCents   int    `json:"price_cents"`
	Currency     string `json:"currency"`
	DurationDays int    `json:"duration_days" binding:"required,min=1"`
}

// CreatePlan godoc
// @Summary      Create a subscription plan
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreatePlanRequest true "Plan data"
// @Success      201 {object} Plan
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/admin/plans [post]
func (h *AdminHandler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	plan, err := h.adminService.CreatePlan(req.Code, req.Name, req.PriceCents, req.DurationDays, req.Currency)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

// DeactivatePlan godoc
// @Summary      Deactivate a plan
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Plan ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/admin/plans/{id} [delete]
func (h *AdminHandler) DeactivatePlan(c *gin.Context) {
	planID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid plan id"})
		return
	}

	if err := h.adminService.DeactivatePlan(uint(planID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "plan deactivated"})
}

// ListSubjects godoc
// @Summary      List the subject taxonomy
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} map[string]interface{}
// @Router       /api/v1/admin/subjects [get]
func (h *AdminHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.adminService.ListSubjects()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjects)
}

type CreateNameRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateSubject godoc
// @Summary      Create a subject
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateNameRequest true "Subject name"
// @Success      201 {object} map[string]interface{}
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/admin/subjects [post]
func (h *AdminHandler) CreateSubject(c *gin.Context) {
	var req CreateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	subject, err := h.adminService.CreateSubject(req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subject)
}

// CreateTopic godoc
// @Summary      Create a topic under a subject
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Subject ID"
// @Param        request body CreateNameRequest true "Topic name"
// @Success      201 {object} map[string]interface{}
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/admin/subjects/{id}/topics [post]
func (h *AdminHandler) CreateTopic(c *gin.Context) {
	subjectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid subject id"})
		return
	}

	var req CreateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	topic, err := h.adminService.CreateTopic(uint(subjectID), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, topic)
}

// CreateSubtopic godoc
// @Summary      Create a subtopic under a topic
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Topic ID"
// @Param        request body CreateNameRequest true "Subtopic name"
// @Success      201 {object} map[string]interface{}
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/admin/topics/{id}/subtopics [post]
func (h *AdminHandler) CreateSubtopic(c *gin.Context) {
	topicID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid topic id"})
		return
	}

	var req CreateNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	subtopic, err := h.adminService.CreateSubtopic(uint(topicID), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subtopic)
}
