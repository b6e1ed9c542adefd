package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notably-ai/notably/internal/core"
	"github.com/notably-ai/notably/internal/models"
)

type NotebookHandler struct {
	dbclient core.DbClient
}

func NewNotebookHandler(db core.DbClient) *NotebookHandler {
	return &NotebookHandler{dbclient: db}
}

type createNotebookRequest struct {
	Name string `json:"name"`
}

func (h *NotebookHandler) CreateNotebook(w http.ResponseWriter, r *http.Request) {
	var req createNotebookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &core.ValidationError{Reason: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, &core.ValidationError{Reason: "notebook name is required"})
		return
	}

	now := time.Now()
	nb := &models.Notebook{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		CreatedAt:    now,
		LastModified: now,
	}
	if err := h.dbclient.CreateNotebook(r.Context(), nb); err != nil {
		writeError(w, &core.PersistenceError{Op: "notebook", Err: err})
		return
	}
	writeJSON(w, http.StatusCreated, nb)
}

func (h *NotebookHandler) ListNotebooks(w http.ResponseWriter, r *http.Request) {
	notebooks, err := h.dbclient.ListNotebooks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if notebooks == nil {
		notebooks = []models.Notebook{}
	}
	writeJSON(w, http.StatusOK, notebooks)
}
