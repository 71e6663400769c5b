package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"trustvest-backend/internal/service"
	"trustvest-backend/internal/util"
)

// AccountHandler handles registration, login and profile retrieval.
type AccountHandler struct {
	accounts *service.AccountService
	logger   *zap.Logger
}

func NewAccountHandler(accounts *service.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

type authResponse struct {
	Message string      `json:"message"`
	User    interface{} `json:"user"`
}

// Register handles POST /register.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	profile, err := h.accounts.Register(ctx, &req)
	if err != nil {
		respondError(w, h.logger, statusCode(err), err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, authResponse{
		Message: "User registered successfully",
		User:    profile,
	})
	h.logger.Info("user registered via HTTP",
		util.String("user_id", profile.ID),
		util.Duration("duration", time.Since(startTime)),
	)
}

// Login handles POST /login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	profile, err := h.accounts.Login(ctx, &req)
	if err != nil {
		respondError(w, h.logger, statusCode(err), err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, authResponse{
		Message: "Login successful",
		User:    profile,
	})
	h.logger.Info("user logged in via HTTP",
		util.String("user_id", profile.ID),
		util.Duration("duration", time.Since(startTime)),
	)
}

// GetProfile handles GET /user/{userID}. The body is the bare profile, not an
// envelope.
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := chi.URLParam(r, "userID")
	profile, err := h.accounts.GetProfile(ctx, userID)
	if err != nil {
		respondError(w, h.logger, statusCode(err), err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, profile)
}
