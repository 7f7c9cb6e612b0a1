package httpapi

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"lalan-be/internal/apperr"
	"lalan-be/internal/availability"
	"lalan-be/internal/catalog"
	"lalan-be/internal/message"
	"lalan-be/internal/money"
	"lalan-be/internal/pricing"
	"lalan-be/internal/response"
)

// AvailabilityHandler menangani Get availability dan Preview price
// dari §6 — keduanya murni baca, tidak pernah menulis Booking.
type AvailabilityHandler struct {
	projector *availability.Projector
	items     catalog.Service
}

func NewAvailabilityHandler(proj *availability.Projector, items catalog.Service) *AvailabilityHandler {
	return &AvailabilityHandler{projector: proj, items: items}
}

// GetAvailability menangani GET /api/v1/items/{id}/availability?from&to.
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	itemID := mux.Vars(r)["id"]
	if _, err := h.items.GetItem(r.Context(), itemID); err != nil {
		response.FromAppError(w, err)
		return
	}
	from, err := parseDateParam(r, "from")
	if err != nil {
		writeBadRequest(w, "from")
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		writeBadRequest(w, "to")
		return
	}
	slots, err := h.projector.Project(r.Context(), itemID, from, to)
	if err != nil {
		response.FromAppError(w, apperr.Internal(err))
		return
	}
	response.OK(w, slots, message.Success)
}

// PreviewPrice menangani GET /api/v1/items/{id}/price-preview?from&to,
// menjalankan internal/pricing.Compute tanpa membuat Booking apa pun.
func (h *AvailabilityHandler) PreviewPrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	itemID := mux.Vars(r)["id"]
	it, err := h.items.GetItem(r.Context(), itemID)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	start, err := parseDateParam(r, "start_date")
	if err != nil {
		writeBadRequest(w, "start_date")
		return
	}
	end, err := parseDateParam(r, "end_date")
	if err != nil {
		writeBadRequest(w, "end_date")
		return
	}

	pricePerDay, err := money.Parse(it.PricePerDayStr)
	if err != nil {
		response.FromAppError(w, apperr.Internal(err))
		return
	}
	snap, err := pricing.Compute(pricePerDay, start, end)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidDateRange) {
			response.FromAppError(w, apperr.ErrInvalidRange)
			return
		}
		response.FromAppError(w, apperr.Internal(err))
		return
	}
	response.OK(w, map[string]any{
		"total_days":      snap.TotalDays,
		"base_total":      money.String(snap.BaseTotal),
		"discount_rate":   snap.DiscountRate.String(),
		"discount_amount": money.String(snap.DiscountAmount),
		"final_total":     money.String(snap.FinalTotal),
	}, message.Success)
}
