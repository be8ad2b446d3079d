package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/staybook/audit-service/internal/audit"
	"github.com/staybook/audit-service/internal/middleware"
	"github.com/staybook/audit-service/internal/repo"
)

// ==========================
// Auth Handler
// ==========================
type AuthHandler struct {
	Ops         *repo.OperatorRepo
	Recorder    *audit.Recorder
	Secret      []byte
	ExpireHours int
}

// ==========================
// Register (admin only; wired behind RequireRole in the router)
// ==========================
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}
	if input.Email == "" || input.Password == "" {
		JSONError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	op, err := h.Ops.Create(input.Email, input.Password, input.Role)
	if err != nil {
		if e, ok := err.(*pq.Error); ok && e.Code == "23505" {
			JSONError(w, "operator already exists", http.StatusConflict)
			return
		}
		slog.Error("register operator failed", "error", err)
		JSONError(w, "failed to create operator", http.StatusInternalServerError)
		return
	}

	h.Recorder.Log(r.Context(), "CREATE", "OPERATOR", op.Email, nil, audit.Options{
		Actor:    middleware.OperatorFromContext(r.Context()),
		Category: "AUTHORIZATION",
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(op)
}

// ==========================
// Login (bcrypt verify; outcome recorded in the audit trail)
// ==========================
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	op, err := h.Ops.GetByEmail(input.Email)
	if err != nil {
		h.Recorder.LogFailedLogin(r.Context(), input.Email, "unknown operator", audit.Options{})
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(input.Password)); err != nil {
		h.Recorder.LogFailedLogin(r.Context(), input.Email, "wrong password", audit.Options{})
		JSONError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	claims := jwt.MapClaims{
		"sub":  op.Email,
		"role": op.Role,
		"exp":  time.Now().Add(time.Duration(h.ExpireHours) * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.Secret)
	if err != nil {
		slog.Error("sign token failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	h.Recorder.LogLogin(r.Context(), op.Email, audit.Options{})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"token": signed})
}
