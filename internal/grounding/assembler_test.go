package grounding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notably-ai/notably/internal/core/mocks"
	"github.com/notably-ai/notably/internal/models"
)

func seedResource(t *testing.T, db *mocks.MockDbClient, id, content string) {
	t.Helper()
	err := db.CreateResource(context.Background(), &models.Resource{
		ID:         id,
		NotebookID: "nb-1",
		FileName:   id + ".txt",
		Type:       models.DocTypeTXT,
		Content:    content,
	})
	require.NoError(t, err)
}

func TestAssembleJoinsInRequestedOrder(t *testing.T) {
	db := mocks.NewMockDbClient()
	seedResource(t, db, "r1", "alpha")
	seedResource(t, db, "r2", "beta")
	a := NewAssembler(db)

	got, err := a.Assemble(context.Background(), []string{"r1", "r2"})
	require.NoError(t, err)
	require.Equal(t, "alpha\n\nbeta", got)

	// Order sensitivity round-trips.
	got, err = a.Assemble(context.Background(), []string{"r2", "r1"})
	require.NoError(t, err)
	require.Equal(t, "beta\n\nalpha", got)
}

func TestAssembleMissingResourceContributesEmptySegment(t *testing.T) {
	db := mocks.NewMockDbClient()
	seedResource(t, db, "r1", "alpha")
	a := NewAssembler(db)

	got, err := a.Assemble(context.Background(), []string{"r1", "gone", "r1"})
	require.NoError(t, err)
	require.Equal(t, "alpha\n\n\n\nalpha", got)
}

func TestAssembleNoIDs(t *testing.T) {
	a := NewAssembler(mocks.NewMockDbClient())

	got, err := a.Assemble(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, got)
}
