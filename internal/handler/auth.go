package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Tajaar/Employee-Attendence-System/internal/service"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	Service *service.AuthService
}

func (h AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.login)
	r.Post("/auth/logout", h.logout)
}

func (h AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email        string `json:"email"`
		EmployeeCode string `json:"employee_code"`
		Password     string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	login := strings.TrimSpace(req.EmployeeCode)
	if login == "" {
		login = strings.TrimSpace(strings.ToLower(req.Email))
	}
	res, err := h.Service.Login(r.Context(), service.LoginInput{
		Login:    login,
		Password: strings.TrimSpace(req.Password),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      res.AccessToken,
		"expires_at": res.ExpiresAt.Format(time.RFC3339),
		"user":       employeeJSON(res.Employee),
	})
}

func (h AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	// Tokens are stateless; logout is client-side.
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out successfully"})
}
