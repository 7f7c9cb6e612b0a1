package response

import (
	"encoding/json"
	"net/http"

	"lalan-be/internal/apperr"
)

/*
Mewakili struktur respons API standar.
Digunakan untuk format JSON respons sukses atau error.
*/
type Response struct {
	Code    int    `json:"code"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	Success bool   `json:"success"`
}

/*
Mengirim respons bad request dengan pesan error.
Mengembalikan status 400 dan JSON error.
*/
func BadRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(Response{
		Code:    http.StatusBadRequest,
		Message: msg,
		Success: false,
	})
}

/*
Mengirim respons error dengan kode dan pesan.
Mengembalikan JSON dengan success false.
*/
func Error(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(Response{
		Code:    code,
		Message: message,
		Success: false,
	})
}

/*
Mengirim respons forbidden dengan pesan.
Mengembalikan status 403 dan JSON error.
*/
func Forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	json.NewEncoder(w).Encode(Response{
		Code:    http.StatusForbidden,
		Message: message,
		Success: false,
	})
}

/*
Mengirim respons OK dengan data dan pesan.
Mengembalikan status 200 dan JSON sukses.
*/
func OK(w http.ResponseWriter, data any, msg string) {
	Success(w, http.StatusOK, data, msg)
}

/*
Mengirim respons sukses dengan kode, data, dan pesan.
Mengembalikan JSON dengan success true.
*/
func Success(w http.ResponseWriter, code int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(Response{
		Code:    code,
		Data:    data,
		Message: message,
		Success: true,
	})
}

/*
Mengirim respons unauthorized dengan pesan.
Mengembalikan status 401 dan JSON error.
*/
func Unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(Response{
		Code:    http.StatusUnauthorized,
		Message: msg,
		Success: false,
	})
}

/*
Mengirim respons not found dengan pesan.
Mengembalikan status 404 dan JSON error.
*/
func NotFound(w http.ResponseWriter, msg string) {
	Error(w, http.StatusNotFound, msg)
}

/*
Mengirim respons method not allowed dengan pesan.
Mengembalikan status 405 dan JSON error.
*/
func MethodNotAllowed(w http.ResponseWriter, msg string) {
	Error(w, http.StatusMethodNotAllowed, msg)
}

// FieldErrors adalah payload data untuk respons validasi per-field,
// dikirim sebagai Response.Data ketika err membawa apperr.Error.Fields.
type FieldErrors struct {
	Fields map[string]string `json:"fields,omitempty"`
}

/*
FromAppError menerjemahkan satu error dari lapisan servis (§7) ke
respons HTTP, menggunakan apperr.StatusFor sebagai satu-satunya
otoritas pemetaan Kind -> status code alih-alih status ad hoc per
handler. Error internal tidak pernah membocorkan detail backend ke
klien — hanya pesan generik yang dikirim, causa aslinya sudah dicatat
oleh pemanggil lewat log.
*/
func FromAppError(w http.ResponseWriter, err error) {
	ae := apperr.AsAppError(err)
	status := apperr.StatusFor(ae.Kind)
	var data any
	if len(ae.Fields) > 0 {
		data = FieldErrors{Fields: ae.Fields}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{
		Code:    status,
		Data:    data,
		Message: ae.Message,
		Success: false,
	})
}
