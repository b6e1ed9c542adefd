package chat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notably-ai/notably/internal/models"
)

func TestFlattenPartsConcatenatesTextInOrder(t *testing.T) {
	m := UIMessage{Role: models.RoleUser, Parts: []UIMessagePart{
		{Type: "text", Text: "summarize "},
		{Type: "text", Text: "chapter two"},
	}}
	require.Equal(t, "summarize chapter two", FlattenParts(m))
}

func TestFlattenPartsDropsNonTextParts(t *testing.T) {
	m := UIMessage{Role: models.RoleUser, Parts: []UIMessagePart{
		{Type: "text", Text: "look at "},
		{Type: "image", Text: "ignored"},
		{Type: "tool-call"},
		{Type: "text", Text: "this"},
	}}
	require.Equal(t, "look at this", FlattenParts(m))
}

func TestToStoredMessageMapsFields(t *testing.T) {
	m := UIMessage{Role: models.RoleUser, Parts: []UIMessagePart{{Type: "text", Text: "hi"}}}

	stored := ToStoredMessage("nb-1", m, []string{"r1", "r2"})
	require.NotEmpty(t, stored.ID)
	require.Equal(t, "nb-1", stored.NotebookID)
	require.Equal(t, models.RoleUser, stored.Role)
	require.Equal(t, "hi", stored.Content)
	require.Equal(t, []string{"r1", "r2"}, stored.SourceIDs)
	require.False(t, stored.CreatedAt.IsZero())
}

func TestToChatTurns(t *testing.T) {
	msgs := []UIMessage{
		{Role: models.RoleUser, Parts: []UIMessagePart{{Type: "text", Text: "q1"}}},
		{Role: models.RoleAssistant, Parts: []UIMessagePart{{Type: "text", Text: "a1"}}},
	}
	turns := ToChatTurns(msgs)
	require.Len(t, turns, 2)
	require.Equal(t, models.RoleUser, turns[0].Role)
	require.Equal(t, "q1", turns[0].Text)
	require.Equal(t, models.RoleAssistant, turns[1].Role)
	require.Equal(t, "a1", turns[1].Text)
}
