package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/notably-ai/notably/internal/core"
	"github.com/notably-ai/notably/internal/ingest"
	"github.com/notably-ai/notably/internal/models"
)

const maxUploadBytes = 52 << 20

type ResourceHandler struct {
	dbclient core.DbClient
	pipeline *ingest.Pipeline
	obj      core.ObjectClient
	bucket   string
}

func NewResourceHandler(db core.DbClient, pipeline *ingest.Pipeline, obj core.ObjectClient, bucket string) *ResourceHandler {
	return &ResourceHandler{dbclient: db, pipeline: pipeline, obj: obj, bucket: bucket}
}

// UploadResources ingests a multipart batch under the "files" field and
// returns the created resource ids in upload order, or a single failure.
func (h *ResourceHandler) UploadResources(w http.ResponseWriter, r *http.Request) {
	notebookID := chi.URLParam(r, "notebookID")

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, &core.ValidationError{Reason: "invalid multipart body"})
		return
	}

	var files []ingest.File
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			f, err := header.Open()
			if err != nil {
				writeError(w, &core.ValidationError{Reason: "unreadable file: " + header.Filename})
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				writeError(w, &core.ValidationError{Reason: "unreadable file: " + header.Filename})
				return
			}
			files = append(files, ingest.File{Name: header.Filename, Data: data})
		}
	}

	ids, err := h.pipeline.Ingest(r.Context(), notebookID, files)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":      true,
		"resource_ids": ids,
	})
}

func (h *ResourceHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	notebookID := chi.URLParam(r, "notebookID")
	resources, err := h.dbclient.ListResourcesByNotebook(r.Context(), notebookID)
	if err != nil {
		writeError(w, err)
		return
	}
	if resources == nil {
		resources = []models.Resource{}
	}
	writeJSON(w, http.StatusOK, resources)
}

// CountResources is the reconciliation read for partially persisted batches.
func (h *ResourceHandler) CountResources(w http.ResponseWriter, r *http.Request) {
	notebookID := chi.URLParam(r, "notebookID")
	n, err := h.dbclient.CountResourcesByNotebook(r.Context(), notebookID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *ResourceHandler) DeleteResource(w http.ResponseWriter, r *http.Request) {
	resourceID := chi.URLParam(r, "resourceID")

	// Look the resource up first so the archived original can be removed too.
	var archived *models.Resource
	if h.obj != nil {
		if res, err := h.dbclient.GetResourceByID(r.Context(), resourceID); err == nil {
			archived = res
		}
	}

	if err := h.dbclient.DeleteResourceByID(r.Context(), resourceID); err != nil {
		writeError(w, &core.PersistenceError{Op: "delete resource", Err: err})
		return
	}

	if h.obj != nil && archived != nil {
		key := ingest.ObjectKey(archived.NotebookID, archived.ID, archived.FileName)
		if err := h.obj.DeleteFile(r.Context(), h.bucket, key); err != nil {
			log.Printf("WARN: archived object for resource %s not removed: %v", resourceID, err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
