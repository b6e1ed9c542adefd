package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/notably-ai/notably/internal/chat"
	"github.com/notably-ai/notably/internal/core"
	"github.com/notably-ai/notably/internal/models"
)

var errStreamingUnsupported = errors.New("response writer does not support streaming")

type ChatHandler struct {
	service *chat.Service
}

func NewChatHandler(service *chat.Service) *ChatHandler {
	return &ChatHandler{service: service}
}

// sse event payloads
type tokenEvent struct {
	Token string `json:"token"`
}
type doneEvent struct {
	Done bool `json:"done"`
}
type errorEvent struct {
	Error string `json:"error"`
}

// StreamChat forwards the reply token stream as server-sent events. The
// stream always ends with a done or error event; provider failures never
// surface as a broken connection. When the client disconnects, the request
// context cancels and the generation is abandoned downstream.
func (h *ChatHandler) StreamChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &core.ValidationError{Reason: "invalid request body"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, &core.GenerationError{Err: errStreamingUnsupported})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events := h.service.StreamReplySafe(r.Context(), req)
	for ev := range events {
		switch {
		case ev.Err != nil:
			writeEvent(w, errorEvent{Error: ev.Err.Error()})
		case ev.Done:
			writeEvent(w, doneEvent{Done: true})
		default:
			writeEvent(w, tokenEvent{Token: ev.Token})
		}
		flusher.Flush()
		if ev.Terminal() {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n\n"))
}

// ListMessages returns the timestamp-ordered log for a notebook.
func (h *ChatHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	notebookID := chi.URLParam(r, "notebookID")
	messages, err := h.service.History(r.Context(), notebookID)
	if err != nil {
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	writeJSON(w, http.StatusOK, messages)
}
