package httpapi

import (
	"net/http"

	"lalan-be/internal/message"
	"lalan-be/internal/middleware"
	"lalan-be/internal/response"
	"lalan-be/internal/review"
)

// ReviewHandler menangani Create review dan daftar review milik user,
// per §6 dan §4.5.
type ReviewHandler struct {
	service review.Service
}

func NewReviewHandler(s review.Service) *ReviewHandler {
	return &ReviewHandler{service: s}
}

type createReviewRequest struct {
	BookingID string `json:"booking_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	reviewerID := middleware.GetUserID(r)
	var req createReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, message.BadRequest)
		return
	}
	rv, err := h.service.Submit(r.Context(), reviewerID, req.BookingID, req.Rating, req.Comment)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, rv, message.Success)
}

func (h *ReviewHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = middleware.GetUserID(r)
	}
	rs, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, rs, message.Success)
}
