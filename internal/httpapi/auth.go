package httpapi

import (
	"log"
	"net/http"

	"lalan-be/internal/auth"
	"lalan-be/internal/message"
	"lalan-be/internal/middleware"
	"lalan-be/internal/response"
)

// AuthHandler adalah HTTP layer untuk Register/Login/Refresh/profil
// sendiri, seluruhnya didelegasikan ke internal/auth.Service.
type AuthHandler struct {
	service *auth.Service
}

func NewAuthHandler(s *auth.Service) *AuthHandler {
	return &AuthHandler{service: s}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int         `json:"expires_in"`
	User         interface{} `json:"user"`
}

func writeTokenPair(w http.ResponseWriter, tp *auth.TokenPair) {
	response.OK(w, tokenPairResponse{
		AccessToken:  tp.AccessToken,
		RefreshToken: tp.RefreshToken,
		ExpiresIn:    tp.ExpiresIn,
		User:         tp.User,
	}, message.Success)
}

// Register menangani POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, message.BadRequest)
		return
	}
	tp, err := h.service.Register(r.Context(), auth.RegisterRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		log.Printf("Register: %v", err)
		response.FromAppError(w, err)
		return
	}
	writeTokenPair(w, tp)
}

// Login menangani POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, message.BadRequest)
		return
	}
	tp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	writeTokenPair(w, tp)
}

// Refresh menangani POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil || req.RefreshToken == "" {
		writeBadRequest(w, "refresh_token")
		return
	}
	tp, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	writeTokenPair(w, tp)
}

// Me menangani GET /api/v1/me — profil pemanggil yang sudah
// terautentikasi.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	userID := middleware.GetUserID(r)
	u, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, u, message.Success)
}

type updateProfileRequest map[string]any

// UpdateMe menangani PATCH /api/v1/me dengan sparse update, ditolak
// bila ada field di luar domain.UserProfileFields.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	userID := middleware.GetUserID(r)
	var fields updateProfileRequest
	if err := decodeJSON(r, &fields); err != nil {
		response.BadRequest(w, message.BadRequest)
		return
	}
	u, err := h.service.UpdateProfile(r.Context(), userID, fields)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, u, message.Success)
}
