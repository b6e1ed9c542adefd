package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/notably-ai/notably/internal/config"
	"github.com/notably-ai/notably/internal/core"
	"github.com/notably-ai/notably/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

var _ core.DbClient = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// touchNotebook bumps last_modified; every child create runs it in-tx.
func touchNotebook(ctx context.Context, tx *sql.Tx, notebookID string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE notebooks SET last_modified = now() WHERE id = $1`, notebookID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("notebook not found: %s", notebookID)
	}
	return nil
}

// Notebooks

func (c *DatabaseClient) CreateNotebook(ctx context.Context, nb *models.Notebook) error {
	if nb == nil {
		return errors.New("nil notebook")
	}
	const q = `
		INSERT INTO notebooks (id, name, created_at, last_modified)
		VALUES ($1, $2, COALESCE($3, now()), COALESCE($3, now()))
	`
	_, err := c.db.ExecContext(ctx, q, nb.ID, nb.Name, nb.CreatedAt)
	return err
}

func (c *DatabaseClient) GetNotebookByID(ctx context.Context, id string) (*models.Notebook, error) {
	const q = `
		SELECT id, name, created_at, last_modified
		FROM notebooks WHERE id = $1
	`
	var nb models.Notebook
	err := c.db.QueryRowContext(ctx, q, id).Scan(&nb.ID, &nb.Name, &nb.CreatedAt, &nb.LastModified)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &nb, nil
}

func (c *DatabaseClient) ListNotebooks(ctx context.Context) ([]models.Notebook, error) {
	const q = `
		SELECT id, name, created_at, last_modified
		FROM notebooks
		ORDER BY last_modified DESC
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notebook
	for rows.Next() {
		var nb models.Notebook
		if err := rows.Scan(&nb.ID, &nb.Name, &nb.CreatedAt, &nb.LastModified); err != nil {
			return nil, err
		}
		out = append(out, nb)
	}
	return out, rows.Err()
}

// Resources

func (c *DatabaseClient) CreateResource(ctx context.Context, res *models.Resource) error {
	if res == nil {
		return errors.New("nil resource")
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO resources (id, notebook_id, file_name, document_type, content, url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	if _, err := tx.ExecContext(ctx, q,
		res.ID, res.NotebookID, res.FileName, string(res.Type), res.Content, res.URL, res.CreatedAt,
	); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := touchNotebook(ctx, tx, res.NotebookID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (c *DatabaseClient) GetResourceByID(ctx context.Context, id string) (*models.Resource, error) {
	const q = `
		SELECT id, notebook_id, file_name, document_type, content, url, created_at
		FROM resources
		WHERE id = $1
	`
	var r models.Resource
	var docType string
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&r.ID, &r.NotebookID, &r.FileName, &docType, &r.Content, &r.URL, &r.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Type = models.DocumentType(docType)
	return &r, nil
}

func (c *DatabaseClient) ListResourcesByNotebook(ctx context.Context, notebookID string) ([]models.Resource, error) {
	const q = `
		SELECT id, notebook_id, file_name, document_type, content, url, created_at
		FROM resources
		WHERE notebook_id = $1
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, notebookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Resource
	for rows.Next() {
		var r models.Resource
		var docType string
		if err := rows.Scan(&r.ID, &r.NotebookID, &r.FileName, &docType, &r.Content, &r.URL, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Type = models.DocumentType(docType)
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetResourceContents fetches id/content pairs for the given ids in one
// batched query. Ids with no matching row are simply absent from the result.
func (c *DatabaseClient) GetResourceContents(ctx context.Context, ids []string) ([]models.ResourceContent, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	q := fmt.Sprintf(`SELECT id, content FROM resources WHERE id IN (%s)`,
		strings.Join(placeholders, ", "))

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ResourceContent
	for rows.Next() {
		var rc models.ResourceContent
		if err := rows.Scan(&rc.ID, &rc.Content); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) CountResourcesByNotebook(ctx context.Context, notebookID string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resources WHERE notebook_id = $1`, notebookID).Scan(&n)
	return n, err
}

func (c *DatabaseClient) DeleteResourceByID(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("resource not found: %s", id)
	}
	return nil
}

// Flashcard decks

// CreateDeck writes the deck as one row; the cards live in a jsonb column,
// so the whole deck persists or none of it does.
func (c *DatabaseClient) CreateDeck(ctx context.Context, deck *models.FlashcardDeck) error {
	if deck == nil {
		return errors.New("nil deck")
	}
	cards, err := json.Marshal(deck.Cards)
	if err != nil {
		return fmt.Errorf("marshal cards: %w", err)
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO flashcard_decks (id, notebook_id, title, cards, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`
	if _, err := tx.ExecContext(ctx, q, deck.ID, deck.NotebookID, deck.Title, cards, deck.CreatedAt); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := touchNotebook(ctx, tx, deck.NotebookID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (c *DatabaseClient) ListDecksByNotebook(ctx context.Context, notebookID string) ([]models.FlashcardDeck, error) {
	const q = `
		SELECT id, notebook_id, title, cards, created_at
		FROM flashcard_decks
		WHERE notebook_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, notebookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FlashcardDeck
	for rows.Next() {
		var d models.FlashcardDeck
		var cards []byte
		if err := rows.Scan(&d.ID, &d.NotebookID, &d.Title, &cards, &d.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(cards, &d.Cards); err != nil {
			return nil, fmt.Errorf("unmarshal cards for deck %s: %w", d.ID, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Messages

func (c *DatabaseClient) CreateMessage(ctx context.Context, msg *models.Message) error {
	if msg == nil {
		return errors.New("nil message")
	}
	sources, err := json.Marshal(msg.SourceIDs)
	if err != nil {
		return fmt.Errorf("marshal source ids: %w", err)
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO messages (id, notebook_id, role, content, source_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	`
	if _, err := tx.ExecContext(ctx, q, msg.ID, msg.NotebookID, msg.Role, msg.Content, sources, msg.CreatedAt); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := touchNotebook(ctx, tx, msg.NotebookID); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (c *DatabaseClient) ListMessagesByNotebook(ctx context.Context, notebookID string) ([]models.Message, error) {
	const q = `
		SELECT id, notebook_id, role, content, source_ids, created_at
		FROM messages
		WHERE notebook_id = $1
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, q, notebookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Message
	for rows.Next() {
		var m models.Message
		var sources []byte
		if err := rows.Scan(&m.ID, &m.NotebookID, &m.Role, &m.Content, &sources, &m.CreatedAt); err != nil {
			return nil, err
		}
		if len(sources) > 0 {
			if err := json.Unmarshal(sources, &m.SourceIDs); err != nil {
				return nil, fmt.Errorf("unmarshal source ids for message %s: %w", m.ID, err)
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
