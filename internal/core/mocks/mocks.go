// Package mocks provides in-memory collaborators for service tests.
package mocks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/notably-ai/notably/internal/core"
	"github.com/notably-ai/notably/internal/models"
)

// MockDbClient is an in-memory core.DbClient. Error fields inject failures
// at specific call counts so partial-failure semantics can be exercised.
type MockDbClient struct {
	mu sync.Mutex

	Notebooks map[string]*models.Notebook
	Resources map[string]*models.Resource
	Decks     []*models.FlashcardDeck
	Messages  []*models.Message

	resourceOrder []string

	// FailResourceCreateAt makes the n-th CreateResource call fail (1-based).
	FailResourceCreateAt int
	resourceCreates      int

	CreateDeckErr    error
	CreateMessageErr error
}

var _ core.DbClient = (*MockDbClient)(nil)

func NewMockDbClient() *MockDbClient {
	return &MockDbClient{
		Notebooks: make(map[string]*models.Notebook),
		Resources: make(map[string]*models.Resource),
	}
}

func (m *MockDbClient) CreateNotebook(ctx context.Context, nb *models.Notebook) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *nb
	m.Notebooks[nb.ID] = &cp
	return nil
}

func (m *MockDbClient) GetNotebookByID(ctx context.Context, id string) (*models.Notebook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	nb, ok := m.Notebooks[id]
	if !ok {
		return nil, nil
	}
	cp := *nb
	return &cp, nil
}

func (m *MockDbClient) ListNotebooks(ctx context.Context) ([]models.Notebook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Notebook, 0, len(m.Notebooks))
	for _, nb := range m.Notebooks {
		out = append(out, *nb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockDbClient) CreateResource(ctx context.Context, res *models.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resourceCreates++
	if m.FailResourceCreateAt > 0 && m.resourceCreates == m.FailResourceCreateAt {
		return fmt.Errorf("store rejected create %d", m.resourceCreates)
	}
	cp := *res
	m.Resources[res.ID] = &cp
	m.resourceOrder = append(m.resourceOrder, res.ID)
	return nil
}

func (m *MockDbClient) GetResourceByID(ctx context.Context, id string) (*models.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res, ok := m.Resources[id]
	if !ok {
		return nil, nil
	}
	cp := *res
	return &cp, nil
}

func (m *MockDbClient) ListResourcesByNotebook(ctx context.Context, notebookID string) ([]models.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Resource
	for _, id := range m.resourceOrder {
		if res := m.Resources[id]; res != nil && res.NotebookID == notebookID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (m *MockDbClient) GetResourceContents(ctx context.Context, ids []string) ([]models.ResourceContent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ResourceContent
	for _, id := range ids {
		if res, ok := m.Resources[id]; ok {
			out = append(out, models.ResourceContent{ID: res.ID, Content: res.Content})
		}
	}
	return out, nil
}

func (m *MockDbClient) CountResourcesByNotebook(ctx context.Context, notebookID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, res := range m.Resources {
		if res.NotebookID == notebookID {
			n++
		}
	}
	return n, nil
}

func (m *MockDbClient) DeleteResourceByID(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Resources[id]; !ok {
		return fmt.Errorf("resource not found: %s", id)
	}
	delete(m.Resources, id)
	return nil
}

func (m *MockDbClient) CreateDeck(ctx context.Context, deck *models.FlashcardDeck) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateDeckErr != nil {
		return m.CreateDeckErr
	}
	cp := *deck
	cp.Cards = append([]models.Card(nil), deck.Cards...)
	m.Decks = append(m.Decks, &cp)
	return nil
}

func (m *MockDbClient) ListDecksByNotebook(ctx context.Context, notebookID string) ([]models.FlashcardDeck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.FlashcardDeck
	for _, d := range m.Decks {
		if d.NotebookID == notebookID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *MockDbClient) CreateMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateMessageErr != nil {
		return m.CreateMessageErr
	}
	cp := *msg
	m.Messages = append(m.Messages, &cp)
	return nil
}

func (m *MockDbClient) ListMessagesByNotebook(ctx context.Context, notebookID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Message
	for _, msg := range m.Messages {
		if msg.NotebookID == notebookID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *MockDbClient) Close() error { return nil }

// MockObjectClient records uploads in memory.
type MockObjectClient struct {
	mu      sync.Mutex
	Objects map[string][]byte

	UploadErr error
}

var _ core.ObjectClient = (*MockObjectClient)(nil)

func NewMockObjectClient() *MockObjectClient {
	return &MockObjectClient{Objects: make(map[string][]byte)}
}

func (m *MockObjectClient) UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	m.Objects[bucket+"/"+key] = append([]byte(nil), data...)
	return fmt.Sprintf("https://%s.s3.test.amazonaws.com/%s", bucket, key), nil
}

func (m *MockObjectClient) DeleteFile(ctx context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, bucket+"/"+key)
	return nil
}

func (m *MockObjectClient) GetFile(ctx context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[bucket+"/"+key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s/%s", bucket, key)
	}
	return data, nil
}

func (m *MockObjectClient) GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	data, err := m.GetFile(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
