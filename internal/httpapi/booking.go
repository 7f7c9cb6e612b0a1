package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"lalan-be/internal/availability"
	"lalan-be/internal/booking"
	"lalan-be/internal/domain"
	"lalan-be/internal/message"
	"lalan-be/internal/middleware"
	"lalan-be/internal/response"
)

// BookingHandler menangani Create/Transition/List/Get booking dari §6.
// Setelah setiap write yang berhasil, cache availability untuk item
// tersebut di-invalidate — lihat internal/availability.Projector.
type BookingHandler struct {
	service   booking.Service
	projector *availability.Projector
}

func NewBookingHandler(s booking.Service, proj *availability.Projector) *BookingHandler {
	return &BookingHandler{service: s, projector: proj}
}

type createBookingRequest struct {
	ItemID    string `json:"item_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Create menangani POST /api/v1/bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	renterID := middleware.GetUserID(r)
	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, message.BadRequest)
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeBadRequest(w, "start_date")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeBadRequest(w, "end_date")
		return
	}

	b, err := h.service.Create(r.Context(), booking.CreateRequest{
		ItemID:    req.ItemID,
		RenterID:  renterID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	h.projector.Invalidate(r.Context(), b.ItemID)
	response.OK(w, b, message.Success)
}

type transitionRequest struct {
	Action string `json:"action"`
}

// Transition menangani POST /api/v1/bookings/{id}/transition.
func (h *BookingHandler) Transition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	bookingID := mux.Vars(r)["id"]
	actorID := middleware.GetUserID(r)
	var req transitionRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, message.BadRequest)
		return
	}
	b, err := h.service.Transition(r.Context(), bookingID, actorID, domain.Status(req.Action))
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	h.projector.Invalidate(r.Context(), b.ItemID)
	response.OK(w, b, message.Success)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	bookingID := mux.Vars(r)["id"]
	b, err := h.service.Get(r.Context(), bookingID)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, b, message.Success)
}

// ListMine menangani GET /api/v1/bookings/me?role=renter|owner|both
// per §6 "List my bookings".
func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	userID := middleware.GetUserID(r)
	role := r.URL.Query().Get("role")
	asRenter, asOwner := role != "owner", role != "renter"
	bs, err := h.service.ListForUser(r.Context(), userID, asRenter, asOwner)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, bs, message.Success)
}
