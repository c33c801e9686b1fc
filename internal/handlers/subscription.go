package handlers

import (
	"net/http"

	"talaam-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// ListPlans godoc
// @Summary      List active plans
// @Tags         subscription
// @Produce      json
// @Success      200 {array} Plan
// @Router       /api/v1/subscription/plans [get]
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	plans, err := h.subscriptionService.Plans()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

type SubscribeRequest struct {
	PlanID uint `json:"plan_id" binding:"required"`
}

// Subscribe godoc
// @Summary      Open a pending subscription
// @Description  Returns the payment reference the gateway checkout is keyed on.
// @Tags         subscription
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SubscribeRequest true "Plan choice"
// @Success      201 {object} Subscription
// @Failure      409 {object} ErrorResponse
// @Router       /api/v1/subscription/subscribe [post]
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	sub, err := h.subscriptionService.Subscribe(userID, req.PlanID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// Current godoc
// @Summary      Get the caller's latest subscription
// @Tags         subscription
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} Subscription
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/subscription/me [get]
func (h *SubscriptionHandler) Current(c *gin.Context) {
	userID := c.GetUint("user_id")

	sub, err := h.subscriptionService.Current(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}
