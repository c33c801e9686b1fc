package handlers

import (
	"log"
	"net/http"

	"talaam-backend/internal/services"
	"talaam-backend/internal/workflow"
	"talaam-backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	hub         *ws.Hub
	authService *services.AuthService
}

func NewWSHandler(hub *ws.Hub, authService *services.AuthService) *WSHandler {
	return &WSHandler{hub: hub, authService: authService}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleQueueSocket godoc
// @Summary      Subscribe to a role's queue events
// @Description  Pushes question.queued and question.flagged events as work lands in the role's queue. Auth via token query param.
// @Tags         websocket
// @Param        role path string true "processor | creator | explainer"
// @Param        token query string true "JWT"
// @Router       /ws/queue/{role} [get]
func (h *WSHandler) HandleQueueSocket(c *gin.Context) {
	role := workflow.Role(c.Param("role"))
	switch role {
	case workflow.RoleProcessor, workflow.RoleCreator, workflow.RoleExplainer:
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no queue for that role"})
		return
	}

	_, tokenRole, err := h.authService.ValidateToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
		return
	}
	if tokenRole != role && tokenRole != workflow.RoleAdmin {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "insufficient role"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	h.hub.AddConnection(role, conn)
	defer h.hub.RemoveConnection(role, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
