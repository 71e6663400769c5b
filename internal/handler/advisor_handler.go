package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"trustvest-backend/internal/models"
	"trustvest-backend/internal/service"
	"trustvest-backend/internal/util"
)

// AdvisorHandler handles the LLM-backed chat and debate endpoints.
type AdvisorHandler struct {
	advisor *service.AdvisorService
	logger  *zap.Logger
}

func NewAdvisorHandler(advisor *service.AdvisorService, logger *zap.Logger) *AdvisorHandler {
	return &AdvisorHandler{
		advisor: advisor,
		logger:  logger,
	}
}

type chatRequest struct {
	History  []models.ChatMessage `json:"history"`
	UserName string               `json:"user_name"`
}

type chatResponse struct {
	Text string `json:"text"`
}

// Chat handles POST /chat.
func (h *AdvisorHandler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	text, err := h.advisor.Chat(ctx, req.History, req.UserName)
	if err != nil {
		respondError(w, h.logger, statusCode(err), err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, chatResponse{Text: text})
	h.logger.Debug("chat served",
		util.Int("history_len", len(req.History)),
		util.Duration("duration", time.Since(startTime)),
	)
}

// Debate handles POST /debate. The body is the structured debate itself, not
// an envelope.
func (h *AdvisorHandler) Debate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	var req service.DebateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	result, err := h.advisor.Debate(ctx, &req)
	if err != nil {
		respondError(w, h.logger, statusCode(err), err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
	h.logger.Debug("debate served",
		util.String("asset", req.AssetName),
		util.Duration("duration", time.Since(startTime)),
	)
}
