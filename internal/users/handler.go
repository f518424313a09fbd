package users

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/wolfeidau/moontravel/internal/apierr"
	"github.com/wolfeidau/moontravel/internal/models"

	httpmiddleware "github.com/wolfeidau/moontravel/internal/http"
)

const (
	msgUpdated     = "User updated successfully!"
	msgActivated   = "User account reactivated"
	msgDeactivated = "User account deactivated."
	msgSignedOut   = "User sessions ended"
)

// UserResponse is the admin view of an identity. The password digest is never
// included.
type UserResponse struct {
	UserID uuid.UUID     `json:"userId"`
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Role   models.Role   `json:"role"`
	Status models.Status `json:"status"`
}

// UpdateResponse is the body of a successful update.
type UpdateResponse struct {
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"userId"`
}

// StatusResponse is the body of an activate or deactivate call.
type StatusResponse struct {
	Message string        `json:"message"`
	UserID  uuid.UUID     `json:"userId"`
	Status  models.Status `json:"status"`
}

// SessionsResponse is the body of a forced sign-out.
type SessionsResponse struct {
	Message  string    `json:"message"`
	UserID   uuid.UUID `json:"userId"`
	Sessions int       `json:"sessionsEnded"`
	Tokens   int       `json:"tokensRevoked"`
}

// HotelResponse is the admin view of a provisioned hotel.
type HotelResponse struct {
	HotelID        uuid.UUID `json:"hotelId"`
	Name           string    `json:"name"`
	Location       string    `json:"location"`
	Price          int       `json:"price"`
	Description    string    `json:"description"`
	RoomsAvailable int       `json:"roomsAvailable"`
	CreatedAt      time.Time `json:"createdAt"`
}

// AuditEntryResponse is one line of an identity's audit trail.
type AuditEntryResponse struct {
	ID        uuid.UUID        `json:"id"`
	EventType models.EventType `json:"eventType"`
	IPAddress string           `json:"ipAddress"`
	Timestamp time.Time        `json:"timestamp"`
}

func toResponse(identity *models.Identity) UserResponse {
	return UserResponse{
		UserID: identity.ID,
		Name:   identity.Username,
		Email:  identity.Email,
		Role:   identity.Role,
		Status: identity.Status,
	}
}

// Handler exposes the admin service over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register adds the admin routes to r. The caller is responsible for gating r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("", h.List).Methods(http.MethodGet)
	r.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/{id}", h.Update).Methods(http.MethodPut)
	r.HandleFunc("/{id}/activate", h.Activate).Methods(http.MethodPut)
	r.HandleFunc("/{id}/deactivate", h.Deactivate).Methods(http.MethodPut)
	r.HandleFunc("/{id}/sessions", h.EndSessions).Methods(http.MethodDelete)
	r.HandleFunc("/{id}/hotels", h.Hotels).Methods(http.MethodGet)
	r.HandleFunc("/{id}/audit", h.Audit).Methods(http.MethodGet)
}

// List handles GET /v1/users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identities, err := h.service.List(r.Context())
	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	resp := make([]UserResponse, 0, len(identities))
	for _, identity := range identities {
		resp = append(resp, toResponse(identity))
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, resp)
}

// Get handles GET /v1/users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	identity, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, toResponse(identity))
}

// Update handles PUT /v1/users/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	var req UpdateRequest
	if err := httpmiddleware.DecodeJSON(w, r, &req); err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	if _, err := h.service.Update(r.Context(), id, req); err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, UpdateResponse{Message: msgUpdated, UserID: id})
}

// Activate handles PUT /v1/users/{id}/activate.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.StatusActive)
}

// Deactivate handles PUT /v1/users/{id}/deactivate.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, models.StatusDeactivated)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, status models.Status) {
	id, err := userID(r)
	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	message := msgActivated
	if status == models.StatusActive {
		err = h.service.Activate(r.Context(), id)
	} else {
		message = msgDeactivated
		err = h.service.Deactivate(r.Context(), id)
	}
	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, StatusResponse{Message: message, UserID: id, Status: status})
}

// EndSessions handles DELETE /v1/users/{id}/sessions.
func (h *Handler) EndSessions(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	revoked, err := h.service.EndSessions(r.Context(), id)
	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, SessionsResponse{
		Message:  msgSignedOut,
		UserID:   id,
		Sessions: revoked.Sessions,
		Tokens:   revoked.Tokens,
	})
}

// Hotels handles GET /v1/users/{id}/hotels.
func (h *Handler) Hotels(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	hotels, err := h.service.Hotels(r.Context(), id)
	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	resp := make([]HotelResponse, 0, len(hotels))
	for _, hotel := range hotels {
		resp = append(resp, HotelResponse{
			HotelID:        hotel.HotelID,
			Name:           hotel.Name,
			Location:       hotel.Location,
			Price:          hotel.Price,
			Description:    hotel.Description,
			RoomsAvailable: hotel.RoomsAvailable,
			CreatedAt:      hotel.CreatedAt,
		})
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, resp)
}

// Audit handles GET /v1/users/{id}/audit?eventType=&limit=.
func (h *Handler) Audit(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	query := AuditQuery{EventType: r.URL.Query().Get("eventType")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		query.Limit, err = strconv.Atoi(raw)
		if err != nil {
			httpmiddleware.WriteError(w, r, apierr.Validation(MsgInvalidQuery))
			return
		}
	}

	entries, err := h.service.AuditTrail(r.Context(), id, query)
	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	resp := make([]AuditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, AuditEntryResponse{
			ID:        entry.ID,
			EventType: entry.EventType,
			IPAddress: entry.IPAddress,
			Timestamp: entry.Timestamp,
		})
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, resp)
}

func userID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		return uuid.Nil, apierr.Validation(MsgInvalidID)
	}
	return id, nil
}
