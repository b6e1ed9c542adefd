package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/notably-ai/notably/internal/chat"
	"github.com/notably-ai/notably/internal/core"
	"github.com/notably-ai/notably/internal/core/mocks"
	"github.com/notably-ai/notably/internal/grounding"
	"github.com/notably-ai/notably/internal/ingest"
	"github.com/notably-ai/notably/internal/models"
)

type scriptedStreamer struct {
	events []core.StreamEvent
}

func (s *scriptedStreamer) StreamChat(ctx context.Context, system string, history []core.ChatTurn, prompt string) (<-chan core.StreamEvent, error) {
	out := make(chan core.StreamEvent, len(s.events))
	for _, ev := range s.events {
		out <- ev
	}
	close(out)
	return out, nil
}

func testRouter(db *mocks.MockDbClient, streamer core.ChatStreamer) chi.Router {
	assembler := grounding.NewAssembler(db)
	pipeline := ingest.NewPipeline(db, nil, "")
	chatService := chat.NewService(db, streamer, assembler, time.Minute)

	resourceHandler := NewResourceHandler(db, pipeline, nil, "")
	chatHandler := NewChatHandler(chatService)

	r := chi.NewRouter()
	r.Post("/api/notebooks/{notebookID}/resources", resourceHandler.UploadResources)
	r.Get("/api/notebooks/{notebookID}/resources/count", resourceHandler.CountResources)
	r.Post("/api/chat", chatHandler.StreamChat)
	return r
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadResourcesCreatesBatch(t *testing.T) {
	db := mocks.NewMockDbClient()
	r := testRouter(db, &scriptedStreamer{})

	body, contentType := multipartBody(t, map[string][]byte{
		"a.txt": []byte("alpha"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/notebooks/nb-1/resources", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success     bool     `json:"success"`
		ResourceIDs []string `json:"resource_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Len(t, resp.ResourceIDs, 1)

	// Count endpoint reflects the created batch.
	countReq := httptest.NewRequest(http.MethodGet, "/api/notebooks/nb-1/resources/count", nil)
	countRec := httptest.NewRecorder()
	r.ServeHTTP(countRec, countReq)
	require.Equal(t, http.StatusOK, countRec.Code)
	require.JSONEq(t, `{"count": 1}`, countRec.Body.String())
}

func TestUploadResourcesRejectsUnsupportedExtension(t *testing.T) {
	db := mocks.NewMockDbClient()
	r := testRouter(db, &scriptedStreamer{})

	body, contentType := multipartBody(t, map[string][]byte{
		"a.txt": []byte("alpha"),
		"v.mp4": []byte{0, 0, 0},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/notebooks/nb-1/resources", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "unsupported")

	n, _ := db.CountResourcesByNotebook(context.Background(), "nb-1")
	require.Zero(t, n)
}

func TestUploadResourcesRejectsEmptySet(t *testing.T) {
	r := testRouter(mocks.NewMockDbClient(), &scriptedStreamer{})

	body, contentType := multipartBody(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/notebooks/nb-1/resources", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamChatEmitsTokensAndDone(t *testing.T) {
	db := mocks.NewMockDbClient()
	r := testRouter(db, &scriptedStreamer{events: []core.StreamEvent{
		{Token: "hello"},
		{Token: " there"},
		{Done: true},
	}})

	payload, err := json.Marshal(chat.Request{
		NotebookID: "nb-1",
		Messages: []chat.UIMessage{{
			Role:  models.RoleUser,
			Parts: []chat.UIMessagePart{{Type: "text", Text: "hi"}},
		}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	require.Contains(t, body, `data: {"token":"hello"}`)
	require.Contains(t, body, `data: {"token":" there"}`)
	require.Contains(t, body, `data: {"done":true}`)

	// The user turn landed in the log.
	messages, _ := db.ListMessagesByNotebook(context.Background(), "nb-1")
	require.Len(t, messages, 1)
}

func TestStreamChatTerminatesWithErrorEvent(t *testing.T) {
	db := mocks.NewMockDbClient()
	r := testRouter(db, &scriptedStreamer{}) // closes without terminal marker

	payload, err := json.Marshal(chat.Request{
		NotebookID: "nb-1",
		Messages: []chat.UIMessage{{
			Role:  models.RoleUser,
			Parts: []chat.UIMessagePart{{Type: "text", Text: "hi"}},
		}},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `data: {"error":`)
	require.False(t, strings.Contains(rec.Body.String(), `"done":true`))
}

func TestStreamChatValidationArrivesAsErrorEvent(t *testing.T) {
	r := testRouter(mocks.NewMockDbClient(), &scriptedStreamer{})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"notebook_id":""}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	// Stream transport already committed; failures ride the stream.
	require.Contains(t, rec.Body.String(), `data: {"error":`)
}
