package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"dynamite/internal/domain/admin"
)

const (
	// AdminCookie holds the admin token in browsers
	AdminCookie = "admin_token"
	// AdminHeader carries the admin token for API clients
	AdminHeader = "X-Admin-Token"
)

// AdminHandler authenticates administrators and serves the account overview
type AdminHandler struct {
	admin  *admin.Service
	logger *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *admin.Service, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger}
}

// AuthenticateRequest is the admin login form; the key travels in values.username
type AuthenticateRequest struct {
	Values struct {
		Username string `json:"username"`
	} `json:"values"`
}

// AuthenticateResponse carries the issued admin token
type AuthenticateResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// HandleAuthenticate exchanges the admin key for a token, also set as a cookie
func (h *AdminHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req AuthenticateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, h.logger, err, "invalid authenticate body")
		return
	}

	token, expires, err := h.admin.Authenticate(r.Context(), req.Values.Username)
	if err != nil {
		writeDomainError(w, h.logger, err, "admin authentication failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AdminCookie,
		Value:    token,
		Path:     "/api/admin",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, http.StatusOK, AuthenticateResponse{Token: token, ExpiresAt: expires})
}

// HandleOverview lists every account for a verified administrator
func (h *AdminHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.VerifyToken(adminToken(r)); err != nil {
		writeDomainError(w, h.logger, err, "admin token rejected")
		return
	}

	overview, err := h.admin.Overview(r.Context())
	if err != nil {
		writeDomainError(w, h.logger, err, "failed to build admin overview")
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

func adminToken(r *http.Request) string {
	if token := r.Header.Get(AdminHeader); token != "" {
		return token
	}
	if cookie, err := r.Cookie(AdminCookie); err == nil {
		return cookie.Value
	}
	return ""
}
