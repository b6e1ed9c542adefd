package grounding

import (
	"context"
	"strings"

	"github.com/notably-ai/notably/internal/core"
)

// Separator sits between resource contents in an assembled context.
const Separator = "\n\n"

// Assembler builds the grounding context for a generation call from the
// immutable contents of one or more resources. Nothing mutates resources
// during a request, so reads need no locking.
type Assembler struct {
	db core.DbClient
}

func NewAssembler(db core.DbClient) *Assembler {
	return &Assembler{db: db}
}

// Assemble fetches the contents for the given ids in one batched read and
// joins them with a blank line, preserving the caller's id order so file
// name attribution lines up positionally. An id with no matching resource
// contributes an empty segment instead of failing the call.
func (a *Assembler) Assemble(ctx context.Context, resourceIDs []string) (string, error) {
	if len(resourceIDs) == 0 {
		return "", nil
	}

	contents, err := a.db.GetResourceContents(ctx, resourceIDs)
	if err != nil {
		return "", err
	}

	byID := make(map[string]string, len(contents))
	for _, rc := range contents {
		byID[rc.ID] = rc.Content
	}

	segments := make([]string, len(resourceIDs))
	for i, id := range resourceIDs {
		segments[i] = byID[id]
	}
	return strings.Join(segments, Separator), nil
}
