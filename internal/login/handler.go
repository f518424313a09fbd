package login

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/wolfeidau/moontravel/internal/auth"
	"github.com/wolfeidau/moontravel/internal/cookie"
	"github.com/wolfeidau/moontravel/internal/models"

	httpmiddleware "github.com/wolfeidau/moontravel/internal/http"
)

const (
	msgSignupOK          = "User registered successfully!"
	msgSignupWithHotel   = "User and hotel registered successfully!"
	msgSignupHotelFailed = "User registered successfully, but hotel insert failed"
	msgLoginOK           = "Login successful"
	msgLogoutOK          = "Logged out successfully!"
)

// SignupResponse is the body of a successful signup.
type SignupResponse struct {
	Message   string      `json:"message"`
	UserID    uuid.UUID   `json:"userId"`
	Role      models.Role `json:"role"`
	HotelName string      `json:"hotelName,omitempty"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Message string        `json:"message"`
	Role    models.Role   `json:"role"`
	Cookies CookieSummary `json:"cookies"`
}

// CookieSummary reports which cookies were set.
type CookieSummary struct {
	Session    string `json:"session_cookie"`
	Auth       string `json:"auth_cookie"`
	Persistent string `json:"persistent_cookie"`
}

// Handler exposes the service over HTTP.
type Handler struct {
	service *Service
	cookies cookie.Policy
}

// NewHandler creates the HTTP handlers.
func NewHandler(service *Service, cookies cookie.Policy) *Handler {
	return &Handler{service: service, cookies: cookies}
}

// Signup handles POST /v1/signup.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := httpmiddleware.DecodeJSON(w, r, &req); err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	result, err := h.service.Signup(r.Context(), req)
	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	resp := SignupResponse{Message: msgSignupOK, UserID: result.UserID, Role: result.Role}
	switch {
	case result.HotelFailed:
		resp.Message = msgSignupHotelFailed
	case result.HotelName != "":
		resp.Message = msgSignupWithHotel
		resp.HotelName = result.HotelName
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, resp)
}

// Login handles POST /v1/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpmiddleware.DecodeJSON(w, r, &req); err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	result, err := h.service.Login(r.Context(), req, clientInfo(r))
	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	h.cookies.SetLogin(w, result.SessionID, result.Token, result.Remember)

	persistent := "not_set"
	if result.Remember {
		persistent = "set"
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, LoginResponse{
		Message: msgLoginOK,
		Role:    result.Role,
		Cookies: CookieSummary{Session: "set", Auth: "set", Persistent: persistent},
	})
}

// Logout handles POST /v1/logout. The cookies are cleared even when the
// server-side cleanup fails.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.service.Logout(r.Context(), cookie.SessionID(r), cookie.Token(r), clientInfo(r))

	h.cookies.Clear(w)

	if err != nil {
		httpmiddleware.WriteError(w, r, err)
		return
	}

	httpmiddleware.WriteJSON(w, http.StatusOK, httpmiddleware.MessageResponse{Message: msgLogoutOK})
}

func clientInfo(r *http.Request) auth.ClientInfo {
	return auth.ClientInfo{
		UserAgent: r.UserAgent(),
		IPAddress: httpmiddleware.ClientIPFromContext(r.Context()),
	}
}
