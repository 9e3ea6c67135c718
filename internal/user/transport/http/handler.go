package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"defiguard/internal/api/dto"
	"defiguard/internal/token"
	tokenrepository "defiguard/internal/token/repository"
	"defiguard/internal/user/service"
)

const refreshTokenTTL = 30 * 24 * time.Hour

type Handler struct {
	UserService *service.UserService
	JWT         *service.JWTManager
	Tokens      *tokenrepository.RefreshTokenRepository
}

func NewHandler(us *service.UserService, jwtSecret string, tokens *tokenrepository.RefreshTokenRepository) *Handler {
	return &Handler{
		UserService: us,
		JWT:         service.NewJWTManager(jwtSecret),
		Tokens:      tokens,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := h.UserService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := map[string]interface{}{
		"id":    u.ID,
		"email": u.Email,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	accessToken, err := h.JWT.Generate(u.ID, u.Email)
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	refresh := &token.Token{
		UserID:    u.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := h.Tokens.Save(r.Context(), refresh); err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"id":            u.ID,
		"email":         u.Email,
		"token":         accessToken,
		"refresh_token": refresh.Token,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// Refresh rotates the refresh token and issues a new access token.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := dto.Validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stored, err := h.Tokens.GetByToken(r.Context(), req.RefreshToken)
	if err != nil || stored.ExpiresAt.Before(time.Now()) {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	u, err := h.UserService.GetByID(r.Context(), stored.UserID)
	if err != nil {
		http.Error(w, "invalid refresh token", http.StatusUnauthorized)
		return
	}

	if err := h.Tokens.DeleteByToken(r.Context(), req.RefreshToken); err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	accessToken, err := h.JWT.Generate(u.ID, u.Email)
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	refresh := &token.Token{
		UserID:    u.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(refreshTokenTTL),
	}
	if err := h.Tokens.Save(r.Context(), refresh); err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	resp := map[string]interface{}{
		"token":         accessToken,
		"refresh_token": refresh.Token,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
