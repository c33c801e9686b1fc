package handlers

import (
	"net/http"
	"time"

	"talaam-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type CronHandler struct {
	subscriptionService *services.SubscriptionService
}

func NewCronHandler(subscriptionService *services.SubscriptionService) *CronHandler {
	return &CronHandler{subscriptionService: subscriptionService}
}

type SweepResponse struct {
	Expired int64 `json:"expired"`
}

// SubscriptionExpiry godoc
// @Summary      Deactivate subscriptions past their expiry date
// @Description  Called by the external scheduler; guarded by CRON_SECRET.
// @Tags         cron
// @Produce      json
// @Success      200 {object} SweepResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/cron/subscription-expiry [post]
func (h *CronHandler) SubscriptionExpiry(c *gin.Context) {
	expired, err := h.subscriptionService.ExpireSweep(time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SweepResponse{Expired: expired})
}
