package flashcards

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notably-ai/notably/internal/core"
	"github.com/notably-ai/notably/internal/grounding"
	"github.com/notably-ai/notably/internal/models"
)

// MaxTitleLen bounds a deck title.
const MaxTitleLen = 100

// Service generates a flashcard deck from resource contents with one
// schema-constrained call and persists it as a unit.
type Service struct {
	db        core.DbClient
	gen       core.DeckGenerator
	assembler *grounding.Assembler
}

func NewService(db core.DbClient, gen core.DeckGenerator, assembler *grounding.Assembler) *Service {
	return &Service{db: db, gen: gen, assembler: assembler}
}

// Generate assembles the grounding context, runs the generation call and
// persists the full deck. Provider failure fails the whole request; there
// is never a partially persisted deck.
func (s *Service) Generate(ctx context.Context, notebookID string, resourceIDs []string, opts core.DeckOptions) (*models.FlashcardDeck, error) {
	if notebookID == "" {
		return nil, &core.ValidationError{Reason: "notebook id is required"}
	}
	if len(resourceIDs) == 0 {
		return nil, &core.ValidationError{Reason: "at least one resource id is required"}
	}

	content, err := s.assembler.Assemble(ctx, resourceIDs)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, &core.ValidationError{Reason: "selected resources have no content"}
	}

	draft, err := s.gen.GenerateDeck(ctx, content, opts)
	if err != nil {
		return nil, &core.GenerationError{Err: err}
	}
	if len(draft.Cards) == 0 {
		return nil, &core.GenerationError{Err: errNoCards}
	}

	deck := &models.FlashcardDeck{
		ID:         uuid.NewString(),
		NotebookID: notebookID,
		Title:      clampTitle(draft.Title),
		Cards:      make([]models.Card, len(draft.Cards)),
		CreatedAt:  time.Now(),
	}
	for i, c := range draft.Cards {
		deck.Cards[i] = models.Card{Front: c.Front, Back: c.Back}
	}

	if err := s.db.CreateDeck(ctx, deck); err != nil {
		return nil, &core.PersistenceError{Op: "deck", Err: err}
	}
	return deck, nil
}

func clampTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Untitled deck"
	}
	runes := []rune(title)
	if len(runes) > MaxTitleLen {
		return string(runes[:MaxTitleLen])
	}
	return title
}

var errNoCards = errors.New("model returned a deck with no cards")
