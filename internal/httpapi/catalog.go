package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"lalan-be/internal/apperr"
	"lalan-be/internal/catalog"
	"lalan-be/internal/domain"
	"lalan-be/internal/message"
	"lalan-be/internal/middleware"
	"lalan-be/internal/response"
	"lalan-be/internal/utils"
)

// ItemHandler menangani Create/update/delete item dan List/search
// items dari §6, plus upload gambar sebagai fitur pendukung §4.10.
type ItemHandler struct {
	service catalog.Service
	storage utils.Storage
}

func NewItemHandler(s catalog.Service, storage utils.Storage) *ItemHandler {
	return &ItemHandler{service: s, storage: storage}
}

type createItemRequest struct {
	CategoryID    *int   `json:"category_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Condition     string `json:"condition"`
	Location      string `json:"location"`
	PricePerDay   string `json:"price_per_day"`
	DepositAmount string `json:"deposit_amount"`
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	ownerID := middleware.GetUserID(r)
	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		response.BadRequest(w, message.BadRequest)
		return
	}
	it, err := h.service.CreateItem(r.Context(), catalog.CreateItemRequest{
		OwnerID:        ownerID,
		CategoryID:     req.CategoryID,
		Title:          req.Title,
		Description:    req.Description,
		Condition:      domain.Condition(req.Condition),
		Location:       req.Location,
		PricePerDayStr: req.PricePerDay,
		DepositStr:     req.DepositAmount,
	})
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, it, message.Success)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	id := mux.Vars(r)["id"]
	it, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, it, message.Success)
}

type updateItemRequest map[string]any

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPatch {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	id := mux.Vars(r)["id"]
	ownerID := middleware.GetUserID(r)
	var fields updateItemRequest
	if err := decodeJSON(r, &fields); err != nil {
		response.BadRequest(w, message.BadRequest)
		return
	}
	it, err := h.service.UpdateItem(r.Context(), id, ownerID, fields)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, it, message.Success)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	id := mux.Vars(r)["id"]
	ownerID := middleware.GetUserID(r)
	if err := h.service.DeleteItem(r.Context(), id, ownerID); err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, nil, message.Success)
}

// List menangani GET /api/v1/items dengan filter/search/pagination
// dari query string, per §6 "List/search items".
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	q := r.URL.Query()
	f := domain.ItemFilter{
		Location: q.Get("location"),
		Text:     q.Get("q"),
		OrderBy:  q.Get("order_by"),
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
	}
	if raw := q.Get("category_id"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			f.CategoryID = &n
		}
	}
	if raw := q.Get("min_price"); raw != "" {
		f.MinPrice = &raw
	}
	if raw := q.Get("max_price"); raw != "" {
		f.MaxPrice = &raw
	}

	items, total, err := h.service.ListItems(r.Context(), f)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, map[string]any{
		"items": items,
		"total": total,
		"page":  f.Page,
	}, message.Success)
}

func (h *ItemHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	ownerID := middleware.GetUserID(r)
	items, err := h.service.ListItemsByOwner(r.Context(), ownerID)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, items, message.Success)
}

// AddImage menangani POST /api/v1/items/{id}/images — multipart
// upload ke object storage (§4.10), lalu AddImage di layer service.
func (h *ItemHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, message.MethodNotAllowed)
		return
	}
	itemID := mux.Vars(r)["id"]
	ownerID := middleware.GetUserID(r)

	if err := r.ParseMultipartForm(utils.MaxImageSize); err != nil {
		response.BadRequest(w, message.BadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "file")
		return
	}
	file.Close()

	meta, err := h.storage.UploadFile(r.Context(), header, "items/"+itemID)
	if err != nil {
		response.FromAppError(w, apperr.Internal(err))
		return
	}

	isCover := r.FormValue("is_cover") == "true"
	img, err := h.service.AddImage(r.Context(), itemID, ownerID, meta.URL, isCover)
	if err != nil {
		response.FromAppError(w, err)
		return
	}
	response.OK(w, img, message.Success)
}
