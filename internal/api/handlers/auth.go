package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/speaker-diarize/backend/internal/api/middleware"
	"github.com/speaker-diarize/backend/internal/auth"
	"github.com/speaker-diarize/backend/internal/db"
)

type AuthHandler struct {
	db  *db.Database
	jwt *auth.JWTService
}

func NewAuthHandler(db *db.Database, jwt *auth.JWTService) *AuthHandler {
	return &AuthHandler{db: db, jwt: jwt}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is flat on purpose; the polling client stores it whole and
// re-checks expires_at before long downloads.
type loginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Identical responses for unknown user and wrong password.
	user, err := h.db.GetUserByUsername(req.Username)
	if err != nil || !auth.CheckPassword(req.Password, user.Password) {
		jsonError(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	token, expiresAt, err := h.jwt.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		jsonError(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	jsonResponse(w, loginResponse{
		Token:     token,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: expiresAt,
	}, http.StatusOK)
}

// Me returns the account behind the presented token. The database is
// re-queried so a role change takes effect without waiting for re-login.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		jsonError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	user, err := h.db.GetUserByID(claims.UserID)
	if err != nil {
		jsonError(w, "account no longer exists", http.StatusNotFound)
		return
	}

	jsonResponse(w, map[string]interface{}{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
	}, http.StatusOK)
}

func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
