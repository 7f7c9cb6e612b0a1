// Package middleware provides the HTTP-layer cross-cutting concerns
// of §6: CORS and JWT authentication. Token parsing itself lives in
// internal/auth.Service — this package only adapts that result into
// request context and a 401/403 response, rather than re-implementing
// jwt.ParseWithClaims a second time the way the teacher's
// jwt.go/middleware.go/rules.go trio did.
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"lalan-be/internal/auth"
	"lalan-be/internal/config"
	"lalan-be/internal/message"
	"lalan-be/internal/response"
)

// contextKey adalah tipe khusus untuk key pada context agar type-safe
// dan menghindari collision.
type contextKey string

const (
	userIDKey  contextKey = "user_id"
	isAdminKey contextKey = "is_admin"
)

// CORSMiddleware mengatur header CORS sesuai konfigurasi environment.
//
// Alur kerja:
//  1. Baca APP_ENV dan ALLOWED_ORIGIN_* dari config
//  2. Di production, hanya izinkan origin yang match exact
//  3. Di dev/staging, mirror origin request agar cocok dengan credentials
//  4. Tangani preflight request (OPTIONS) langsung dengan 200 OK
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env := config.GetEnv("APP_ENV", "dev")
		var allowedCfg string
		if env == "production" {
			allowedCfg = config.GetEnv("ALLOWED_ORIGIN_PROD", "")
		} else if env == "dev" {
			allowedCfg = config.GetEnv("ALLOWED_ORIGIN_DEV", "*")
		} else {
			allowedCfg = config.GetEnv("ALLOWED_ORIGIN_STAGING", "")
		}

		reqOrigin := r.Header.Get("Origin")
		allowed := ""
		if env == "production" {
			if reqOrigin != "" && reqOrigin == allowedCfg {
				allowed = reqOrigin
			}
		} else if reqOrigin != "" {
			allowed = reqOrigin
		} else {
			allowed = allowedCfg
		}

		if allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserID mengambil user ID yang sudah disimpan di context oleh
// RequireAuth. Mengembalikan string kosong bila belum divalidasi.
func GetUserID(r *http.Request) string {
	if val := r.Context().Value(userIDKey); val != nil {
		return val.(string)
	}
	return ""
}

// IsAdmin melaporkan apakah token terotentikasi membawa klaim
// is_admin — dipakai semata untuk RequireAdmin, tidak pernah untuk
// keputusan di booking kernel.
func IsAdmin(r *http.Request) bool {
	val, _ := r.Context().Value(isAdminKey).(bool)
	return val
}

// RequireAuth memvalidasi bearer token lewat auth.Service dan mengisi
// context dengan user ID serta klaim is_admin.
//
// Output sukses: lanjut ke handler berikutnya dengan context terisi.
// Output error: 401 Unauthorized bila header kosong, format salah,
// atau token invalid/expired.
func RequireAuth(authSvc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, message.Unauthorized)
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if tokenStr == "" || tokenStr == authHeader {
				response.Unauthorized(w, message.Unauthorized)
				return
			}

			userID, isAdmin, err := authSvc.ParseAndValidate(tokenStr)
			if err != nil {
				log.Printf("RequireAuth: token rejected for %s %s: %v", r.Method, r.URL.Path, err)
				response.Unauthorized(w, message.Unauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			ctx = context.WithValue(ctx, isAdminKey, isAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin wraps a handler already behind RequireAuth and rejects
// callers whose token lacks the is_admin claim — the only use of that
// flag in this repo, per §9's "User.IsAdmin grants no booking rights".
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r) {
			response.Forbidden(w, message.AdminAccessRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
