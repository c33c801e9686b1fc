package ws

import (
	"encoding/json"
	"log"
	"sync"

	"talaam-backend/internal/workflow"

	"github.com/gorilla/websocket"
)

type QueueEvent struct {
	Type       string `json:"type"`
	QuestionID uint   `json:"question_id"`
	Status     string `json:"status"`
}

const (
	EventQuestionQueued  = "question.queued"
	EventQuestionFlagged = "question.flagged"
)

// Hub fans queue events out to role subscribers: a processor connected to
// the hub hears about every question landing in the processor queue, and so
// on for creators and explainers.
type Hub struct {
	mu    sync.RWMutex
	roles map[workflow.Role]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		roles: make(map[workflow.Role]map[*websocket.Conn]bool),
	}
}

func (h *Hub) AddConnection(role workflow.Role, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.roles[role] == nil {
		h.roles[role] = make(map[*websocket.Conn]bool)
	}
	h.roles[role][conn] = true
	log.Printf("ws: client subscribed to %s queue (total: %d)", role, len(h.roles[role]))
}

func (h *Hub) RemoveConnection(role workflow.Role, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.roles[role]; ok {
		delete(conns, conn)
		conn.Close()
		if len(conns) == 0 {
			delete(h.roles, role)
		}
		log.Printf("ws: client left %s queue", role)
	}
}

func (h *Hub) Broadcast(role workflow.Role, event QueueEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	conns, ok := h.roles[role]
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("ws: write error: %v", err)
			conn.Close()
			delete(conns, conn)
		}
	}
}

// NotifyStatus routes a queue event to whichever role owns the question's
// new status. Terminal and ownerless statuses broadcast nowhere.
func (h *Hub) NotifyStatus(questionID uint, status workflow.Status) {
	var role workflow.Role
	switch status {
	case workflow.StatusPendingProcessor:
		role = workflow.RoleProcessor
	case workflow.StatusPendingCreator:
		role = workflow.RoleCreator
	case workflow.StatusPendingExplainer:
		role = workflow.RoleExplainer
	default:
		return
	}
	h.Broadcast(role, QueueEvent{
		Type:       EventQuestionQueued,
		QuestionID: questionID,
		Status:     string(status),
	})
}

// NotifyFlag tells processors a new flag needs adjudication.
func (h *Hub) NotifyFlag(questionID uint, status workflow.Status) {
	h.Broadcast(workflow.RoleProcessor, QueueEvent{
		Type:       EventQuestionFlagged,
		QuestionID: questionID,
		Status:     string(status),
	})
}
