package httpapi

import (
	"github.com/gorilla/mux"

	"lalan-be/internal/auth"
	"lalan-be/internal/availability"
	"lalan-be/internal/booking"
	"lalan-be/internal/catalog"
	"lalan-be/internal/category"
	"lalan-be/internal/message"
	"lalan-be/internal/messaging"
	"lalan-be/internal/middleware"
	"lalan-be/internal/response"
	"lalan-be/internal/review"
	"lalan-be/internal/utils"

	"net/http"
)

// Services bundles every service-layer dependency the router needs to
// wire its handlers, mirroring the teacher's main.go pattern of
// constructing one Repository/Service/Handler triple per feature —
// collapsed here into one struct since every handler in this repo
// shares the same unified User/Item/Booking domain instead of a
// feature-sliced one.
type Services struct {
	Auth         *auth.Service
	Catalog      catalog.Service
	Category     category.Service
	Booking      booking.Service
	Review       review.Service
	Messaging    messaging.Service
	Availability *availability.Projector
	Storage      utils.Storage
}

// NewRouter builds the complete HTTP surface of §6, wired against
// Services. CORS applies globally; RequireAuth protects everything
// under /api/v1 except Register/Login/Refresh and the public
// read-only catalog/category/availability endpoints.
func NewRouter(svc Services) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, message.NotFound)
	})

	authH := NewAuthHandler(svc.Auth)
	catH := NewCategoryHandler(svc.Category)
	itemH := NewItemHandler(svc.Catalog, svc.Storage)
	availH := NewAvailabilityHandler(svc.Availability, svc.Catalog)
	bookH := NewBookingHandler(svc.Booking, svc.Availability)
	revH := NewReviewHandler(svc.Review)
	msgH := NewMessagingHandler(svc.Messaging)

	api := r.PathPrefix("/api/v1").Subrouter()

	// --- public ---
	api.HandleFunc("/auth/register", authH.Register).Methods("POST")
	api.HandleFunc("/auth/login", authH.Login).Methods("POST")
	api.HandleFunc("/auth/refresh", authH.Refresh).Methods("POST")

	api.HandleFunc("/categories", catH.List).Methods("GET")
	api.HandleFunc("/categories/{id:[0-9]+}", catH.Get).Methods("GET")

	api.HandleFunc("/items", itemH.List).Methods("GET")
	api.HandleFunc("/items/{id}", itemH.Get).Methods("GET")
	api.HandleFunc("/items/{id}/availability", availH.GetAvailability).Methods("GET")
	api.HandleFunc("/items/{id}/price-preview", availH.PreviewPrice).Methods("GET")

	// --- authenticated ---
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.RequireAuth(svc.Auth))

	protected.HandleFunc("/me", authH.Me).Methods("GET")
	protected.HandleFunc("/me", authH.UpdateMe).Methods("PATCH")

	protected.HandleFunc("/items", itemH.Create).Methods("POST")
	protected.HandleFunc("/items/me", itemH.ListMine).Methods("GET")
	protected.HandleFunc("/items/{id}", itemH.Update).Methods("PUT", "PATCH")
	protected.HandleFunc("/items/{id}", itemH.Delete).Methods("DELETE")
	protected.HandleFunc("/items/{id}/images", itemH.AddImage).Methods("POST")

	protected.HandleFunc("/bookings", bookH.Create).Methods("POST")
	protected.HandleFunc("/bookings/me", bookH.ListMine).Methods("GET")
	protected.HandleFunc("/bookings/{id}", bookH.Get).Methods("GET")
	protected.HandleFunc("/bookings/{id}/transition", bookH.Transition).Methods("POST")

	protected.HandleFunc("/reviews", revH.Create).Methods("POST")
	protected.HandleFunc("/reviews", revH.ListForUser).Methods("GET")

	protected.HandleFunc("/conversations", msgH.Open).Methods("POST")
	protected.HandleFunc("/conversations", msgH.ListConversations).Methods("GET")
	protected.HandleFunc("/conversations/{id}/messages", msgH.Send).Methods("POST")
	protected.HandleFunc("/conversations/{id}/messages", msgH.List).Methods("GET")
	protected.HandleFunc("/conversations/{id}/read", msgH.MarkRead).Methods("POST")

	// --- admin-only category administration (§9) ---
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAuth(svc.Auth))
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/categories", catH.Create).Methods("POST")
	admin.HandleFunc("/categories/{id:[0-9]+}", catH.Update).Methods("PUT", "PATCH")
	admin.HandleFunc("/categories/{id:[0-9]+}", catH.Delete).Methods("DELETE")

	return r
}
