package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/notably-ai/notably/internal/core"
	"github.com/notably-ai/notably/internal/flashcards"
	"github.com/notably-ai/notably/internal/models"
)

type FlashcardHandler struct {
	dbclient core.DbClient
	service  *flashcards.Service
}

func NewFlashcardHandler(db core.DbClient, service *flashcards.Service) *FlashcardHandler {
	return &FlashcardHandler{dbclient: db, service: service}
}

type generateDeckRequest struct {
	ResourceIDs []string         `json:"resource_ids"`
	Options     core.DeckOptions `json:"options"`
}

// GenerateDeck runs the structured generator and returns the persisted deck
// as a single payload once generation completes.
func (h *FlashcardHandler) GenerateDeck(w http.ResponseWriter, r *http.Request) {
	notebookID := chi.URLParam(r, "notebookID")

	var req generateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &core.ValidationError{Reason: "invalid request body"})
		return
	}

	deck, err := h.service.Generate(r.Context(), notebookID, req.ResourceIDs, req.Options)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

func (h *FlashcardHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	notebookID := chi.URLParam(r, "notebookID")
	decks, err := h.dbclient.ListDecksByNotebook(r.Context(), notebookID)
	if err != nil {
		writeError(w, err)
		return
	}
	if decks == nil {
		decks = []models.FlashcardDeck{}
	}
	writeJSON(w, http.StatusOK, decks)
}
