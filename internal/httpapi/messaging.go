package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"lalan-be/internal/message"
	"lalan-be/internal/messaging"
	"lalan-be/internal/middleware"
	"lalan-be/internal/response"
)

// MessagingHandler menangani Open conversation dan Send/list messages
// dari §6 dan §4.6.
type MessagingHandler struct {
	service messaging.Service
}

func NewMessagingHandler(s messaging.Service) *MessagingHandler {
	return &MessagingHandler{service: s}
}

type openConversationRequest struct {
	CounterpartyID string  `json:"counterparty_id"`
	BookingID      *string `json:"booking_id"`
}

func (h *MessagingHandler) Open(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	actorID := middleware.GetUserID(r)
	var req openConversationRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, message.BadRequest)
		return
	}
	c, err := h.service.OpenOrCreateConversation(r.Context(), actorID, req.CounterpartyID, req.BookingID)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, c, message.Success)
}

func (h *MessagingHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	actorID := middleware.GetUserID(r)
	cs, err := h.service.ListConversations(r.Context(), actorID)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, cs, message.Success)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

func (h *MessagingHandler) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	conversationID := mux.Vars(r)["id"]
	actorID := middleware.GetUserID(r)
	var req sendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, message.BadRequest)
		return
	}
	m, err := h.service.SendMessage(r.Context(), actorID, conversationID, req.Content)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, m, message.Success)
}

// List menangani GET /api/v1/conversations/{id}/messages?before&limit,
// dipaging lewat cursor `before` per §5 Ordering guarantees.
func (h *MessagingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	conversationID := mux.Vars(r)["id"]
	actorID := middleware.GetUserID(r)

	before := time.Now().Add(24 * time.Hour)
	if raw := r.URL.Query().Get("before"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			before = t
		}
	}
	limit := parseIntQuery(r, "limit", 50)

	ms, err := h.service.ListMessages(r.Context(), actorID, conversationID, before, limit)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, ms, message.Success)
}

func (h *MessagingHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	conversationID := mux.Vars(r)["id"]
	actorID := middleware.GetUserID(r)
	if err := h.service.MarkRead(r.Context(), actorID, conversationID); err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, nil, message.Success)
}
