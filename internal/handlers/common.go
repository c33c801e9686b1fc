package handlers

import (
	"errors"
	"net/http"

	"talaam-backend/internal/models"
	"talaam-backend/internal/services"
	"talaam-backend/internal/workflow"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

// respondError translates service error kinds into HTTP statuses. Disallowed
// workflow transitions and concurrent-write losses both surface as 409.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrConflict), errors.Is(err, workflow.ErrInvalidTransition):
		status = http.StatusConflict
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

// Type aliases so swag can resolve models in annotations.
type Question = models.Question
type Subscription = models.Subscription
type Plan = models.Plan
type User = models.User
type TestAttempt = models.TestAttempt
