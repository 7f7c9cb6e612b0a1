// Package httpapi is the transport layer of §6: it adapts HTTP
// requests to the service-layer operations of internal/auth,
// internal/catalog, internal/category, internal/booking,
// internal/review, internal/messaging, and internal/availability.
// Handlers are kept thin per the teacher's own doc comment in
// internal/features/customer/booking/handler.go — parsing and status
// mapping only, no business rule ever lives here.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"lalan-be/internal/message"
	"lalan-be/internal/response"
)

// decodeJSON decodes the request body strictly (unknown fields
// rejected), matching the teacher's DisallowUnknownFields discipline
// in every handler.Decode call.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeBadRequest(w http.ResponseWriter, field string) {
	response.BadRequest(w, fmt.Sprintf(message.Required, field))
}

// parseDateParam reads a YYYY-MM-DD query parameter into a UTC
// midnight time.Time, matching the calendar-date representation used
// throughout internal/domain and internal/pricing.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%s is required", name)
	}
	return time.Parse("2006-01-02", raw)
}

func parseIntQuery(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
