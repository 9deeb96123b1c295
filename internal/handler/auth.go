package handler

import (
	"net/http"

	"github.com/msomdec/irhis/internal/service"
)

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// HandleLogin processes a JSON login request.
// POST /login
// Request:  {"email":"...","password":"...","role":"patient|doctor"}
// Response: {"token":"...","expiresAt":"...","user":{...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body.")
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionDTO(session))
}

// HandleSignup processes a JSON registration request.
// POST /signup
// Request:  {"email":"...","password":"...","role":"...","name":"..."}
// Response: {"token":"...","expiresAt":"...","user":{...}}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
		Name     string `json:"name"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Invalid request body.")
		return
	}

	session, err := h.auth.Signup(r.Context(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Name:     req.Name,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toSessionDTO(session))
}

// HandleMe returns the currently authenticated user.
// GET /me
// Response: {"user": {...}}
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := authorize(w, r, service.OpReadProfile, "")
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user": toUserDTO(user),
	})
}
