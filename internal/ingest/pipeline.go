package ingest

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/notably-ai/notably/internal/core"
	"github.com/notably-ai/notably/internal/core/extract"
	"github.com/notably-ai/notably/internal/models"
)

// File is one named upload inside a batch.
type File struct {
	Name string
	Data []byte
}

// Pipeline turns a validated batch of uploads into Resources: text is
// extracted for all files concurrently, then each result is persisted
// sequentially, one create call in flight at a time.
type Pipeline struct {
	db     core.DbClient
	obj    core.ObjectClient
	bucket string
}

func NewPipeline(db core.DbClient, obj core.ObjectClient, bucket string) *Pipeline {
	return &Pipeline{db: db, obj: obj, bucket: bucket}
}

// ObjectKey is the deterministic archive location of an upload, so delete
// paths can recompute it without storing it.
func ObjectKey(notebookID, resourceID, fileName string) string {
	return fmt.Sprintf("%s/%s/%s", notebookID, resourceID, filepath.Base(fileName))
}

// Ingest validates the whole batch up front, extracts in parallel, persists
// sequentially and returns created resource ids in input order. A corrupt
// file fails the batch before anything is persisted. The first persistence
// failure aborts the rest; resources created before it remain, and callers
// reconcile via the resource count.
func (p *Pipeline) Ingest(ctx context.Context, notebookID string, files []File) ([]string, error) {
	if notebookID == "" {
		return nil, &core.ValidationError{Reason: "notebook id is required"}
	}
	if len(files) == 0 {
		return nil, &core.ValidationError{Reason: "file set is empty"}
	}

	kinds := make([]models.DocumentType, len(files))
	for i, f := range files {
		kind, ok := models.DocumentTypeForFile(f.Name)
		if !ok {
			return nil, &core.ValidationError{
				Reason: fmt.Sprintf("unsupported file type: %s", f.Name),
			}
		}
		kinds[i] = kind
	}

	// Fan-out: extraction is pure per file, so order does not matter and
	// all files run concurrently. Results land in their input slot.
	texts := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := extract.Text(files[i].Data, kinds[i])
			if err != nil {
				return &core.ExtractionError{FileName: files[i].Name, Err: err}
			}
			texts[i] = text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Fan-in: persist one resource at a time to bound burst load on the
	// store. Deliberate throughput/latency trade-off.
	ids := make([]string, 0, len(files))
	for i, f := range files {
		res := &models.Resource{
			ID:         uuid.NewString(),
			NotebookID: notebookID,
			FileName:   filepath.Base(f.Name),
			Type:       kinds[i],
			Content:    texts[i],
			CreatedAt:  time.Now(),
		}

		if p.obj != nil {
			key := ObjectKey(notebookID, res.ID, f.Name)
			url, err := p.obj.UploadFile(ctx, p.bucket, key, f.Data, contentTypeFor(f.Name))
			if err != nil {
				return nil, &core.PersistenceError{Op: "archive " + f.Name, Err: err}
			}
			res.URL = url
		}

		if err := p.db.CreateResource(ctx, res); err != nil {
			return nil, &core.PersistenceError{Op: "resource " + f.Name, Err: err}
		}
		ids = append(ids, res.ID)
	}

	return ids, nil
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
