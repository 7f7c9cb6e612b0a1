package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"lalan-be/internal/apperr"
	"lalan-be/internal/category"
	"lalan-be/internal/message"
	"lalan-be/internal/response"
)

// CategoryHandler menangani List/get categories (publik) dan
// Create/Update/Delete (dilindungi RequireAdmin di router.go, §9
// "User.IsAdmin" melindungi administrasi kategori saja).
type CategoryHandler struct {
	service category.Service
}

func NewCategoryHandler(s category.Service) *CategoryHandler {
	return &CategoryHandler{service: s}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	cs, err := h.service.Tree(r.Context())
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, cs, message.Success)
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	id, err := categoryIDFromPath(r)
	if err != nil {
		writeBadRequest(w, "category id")
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, c, message.Success)
}

type createCategoryRequest struct {
	Slug     string `json:"slug"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	ParentID *int   `json:"parent_id"`
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, message.BadRequest)
		return
	}
	c, err := h.service.Create(r.Context(), req.Slug, req.Name, req.Icon, req.ParentID)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, c, message.Success)
}

type updateCategoryRequest struct {
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	ParentID *int   `json:"parent_id"`
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	id, err := categoryIDFromPath(r)
	if err != nil {
		writeBadRequest(w, "category id")
		return
	}
	var req updateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, message.BadRequest)
		return
	}
	c, err := h.service.Update(r.Context(), id, req.Name, req.Icon, req.ParentID)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, c, message.Success)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	id, err := categoryIDFromPath(r)
	if err != nil {
		writeBadRequest(w, "category id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, nil, message.Success)
}

func categoryIDFromPath(r *http.Request) (int, error) {
	raw := mux.Vars(r)["id"]
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(apperr.CodeInvalidField, "category id must be numeric")
	}
	return n, nil
}
