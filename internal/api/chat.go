package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ronak026/chatbot/internal/chatlog"
	"github.com/ronak026/chatbot/internal/resolver"
)

const maxChatBodyBytes = 1 << 20 // 1 MiB

// Resolver resolves one chat message to a reply.
type Resolver interface {
	Resolve(ctx context.Context, raw, callerID string) (resolver.Result, error)
}

// ChatLog records and retrieves conversation history.
type ChatLog interface {
	Append(ctx context.Context, callerID, message, reply, stage string) (*chatlog.Entry, error)
	Recent(ctx context.Context, callerID string, limit int32) ([]chatlog.Entry, error)
}

// QuotaReader reports how many generator calls a caller has left today.
type QuotaReader interface {
	Remaining(ctx context.Context, callerID string) (int, error)
}

type chatHandler struct {
	resolver Resolver
	chatLog  ChatLog // optional
	quota    QuotaReader
	logger   *slog.Logger
}

type chatRequest struct {
	Message  string `json:"message"`
	CallerID string `json:"caller_id"`
}

type chatResponse struct {
	Reply          string `json:"reply"`
	Stage          string `json:"stage"`
	RemainingQuota *int   `json:"remaining_quota,omitempty"`
}

// send handles POST /api/v1/chat. An empty or unanswerable message still
// produces a 200 with the pipeline's canned reply; only infrastructure
// failures surface as errors.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body exceeds limit")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	result, err := h.resolver.Resolve(r.Context(), req.Message, req.CallerID)
	if err != nil {
		h.logger.Error("resolution failed", "error", err, "caller_id", req.CallerID)
		writeError(w, http.StatusInternalServerError, "resolution_failed", "could not resolve message")
		return
	}

	if h.chatLog != nil {
		// History is best effort; the caller already has their answer.
		if _, err := h.chatLog.Append(r.Context(), req.CallerID, req.Message, result.Answer, result.Stage.String()); err != nil {
			h.logger.Warn("failed to append chat log", "error", err, "caller_id", req.CallerID)
		}
	}

	resp := chatResponse{Reply: result.Answer, Stage: result.Stage.String()}
	if h.quota != nil && req.CallerID != "" {
		if remaining, err := h.quota.Remaining(r.Context(), req.CallerID); err != nil {
			h.logger.Warn("failed to read quota", "error", err, "caller_id", req.CallerID)
		} else {
			resp.RemainingQuota = &remaining
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type historyEntry struct {
	Message   string    `json:"message"`
	Reply     string    `json:"reply"`
	Stage     string    `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
}

// history handles GET /api/v1/history. Entries come back newest first.
func (h *chatHandler) history(w http.ResponseWriter, r *http.Request) {
	callerID := r.URL.Query().Get("caller_id")
	if callerID == "" {
		writeError(w, http.StatusBadRequest, "missing_caller_id", "caller_id query parameter is required")
		return
	}

	limit := int32(20)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer between 1 and 100")
			return
		}
		limit = int32(n)
	}

	entries, err := h.chatLog.Recent(r.Context(), callerID, limit)
	if err != nil {
		h.logger.Error("failed to read chat log", "error", err, "caller_id", callerID)
		writeError(w, http.StatusInternalServerError, "history_failed", "could not read history")
		return
	}

	out := make([]historyEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, historyEntry{
			Message:   e.Message,
			Reply:     e.Reply,
			Stage:     e.Stage,
			CreatedAt: e.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}
