package core

import (
	"context"
	"io"

	"github.com/notably-ai/notably/internal/models"
)

// DbClient defines all persistence operations the pipeline needs.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	CreateNotebook(ctx context.Context, nb *models.Notebook) error
	GetNotebookByID(ctx context.Context, id string) (*models.Notebook, error)
	ListNotebooks(ctx context.Context) ([]models.Notebook, error)

	CreateResource(ctx context.Context, res *models.Resource) error
	GetResourceByID(ctx context.Context, id string) (*models.Resource, error)
	ListResourcesByNotebook(ctx context.Context, notebookID string) ([]models.Resource, error)
	GetResourceContents(ctx context.Context, ids []string) ([]models.ResourceContent, error)
	CountResourcesByNotebook(ctx context.Context, notebookID string) (int, error)
	DeleteResourceByID(ctx context.Context, id string) error

	CreateDeck(ctx context.Context, deck *models.FlashcardDeck) error
	ListDecksByNotebook(ctx context.Context, notebookID string) ([]models.FlashcardDeck, error)

	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessagesByNotebook(ctx context.Context, notebookID string) ([]models.Message, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so AWS can be swapped for MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)

	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
