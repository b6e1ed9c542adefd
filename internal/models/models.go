package models

import (
	"path/filepath"
	"strings"
	"time"
)

// DocumentType identifies the binary format of an uploaded document.
type DocumentType string

const (
	DocTypePDF  DocumentType = "pdf"
	DocTypeDOC  DocumentType = "doc"
	DocTypeDOCX DocumentType = "docx"
	DocTypeTXT  DocumentType = "txt"
	DocTypePPTX DocumentType = "pptx"
	DocTypeXLSX DocumentType = "xlsx"
	DocTypeCSV  DocumentType = "csv"
)

// DocumentTypeForFile maps a file name's extension to its DocumentType.
// The second return value is false for unsupported extensions.
func DocumentTypeForFile(name string) (DocumentType, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch DocumentType(ext) {
	case DocTypePDF, DocTypeDOC, DocTypeDOCX, DocTypeTXT, DocTypePPTX, DocTypeXLSX, DocTypeCSV:
		return DocumentType(ext), true
	}
	return "", false
}

// Notebook is a named container owning resources, decks and messages.
// LastModified moves forward whenever a child row is created.
type Notebook struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	LastModified time.Time `db:"last_modified" json:"last_modified"`
}

// Resource is the extracted plain text of one ingested document.
// Content is immutable after creation; corrections are delete + recreate.
type Resource struct {
	ID         string       `db:"id" json:"id"`
	NotebookID string       `db:"notebook_id" json:"notebook_id"`
	FileName   string       `db:"file_name" json:"file_name"`
	Type       DocumentType `db:"document_type" json:"document_type"`
	Content    string       `db:"content" json:"content"`
	URL        string       `db:"url" json:"url,omitempty"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}

// ResourceContent is the id/content pair returned by batched content reads.
type ResourceContent struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// Card is one front/back pair. Identity inside a deck is its index.
type Card struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// FlashcardDeck is a titled, ordered set of cards, created atomically.
type FlashcardDeck struct {
	ID         string    `db:"id" json:"id"`
	NotebookID string    `db:"notebook_id" json:"notebook_id"`
	Title      string    `db:"title" json:"title"`
	Cards      []Card    `db:"cards" json:"cards"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one persisted chat turn. The log is append-only.
type Message struct {
	ID         string    `db:"id" json:"id"`
	NotebookID string    `db:"notebook_id" json:"notebook_id"`
	Role       string    `db:"role" json:"role"`
	Content    string    `db:"content" json:"content"`
	SourceIDs  []string  `db:"source_ids" json:"source_ids,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
