package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"

	"github.com/notably-ai/notably/internal/core"
)

func TestDeckPromptOmitsAbsentOptions(t *testing.T) {
	got := deckPrompt("the material", core.DeckOptions{})
	require.Contains(t, got, "the material")
	require.NotContains(t, got, "cards.")
	require.NotContains(t, got, "difficulty")
	require.NotContains(t, got, "topic")
}

func TestDeckPromptEmbedsPresentOptions(t *testing.T) {
	got := deckPrompt("m", core.DeckOptions{Count: 12, Difficulty: "hard", Topic: "enzymes"})
	require.Contains(t, got, "about 12 cards")
	require.Contains(t, got, "difficulty: hard")
	require.Contains(t, got, "topic: enzymes")
}

func TestToGenaiHistoryMapsRoles(t *testing.T) {
	history := toGenaiHistory([]core.ChatTurn{
		{Role: "user", Text: "q"},
		{Role: "assistant", Text: "a"},
	})
	require.Len(t, history, 2)
	require.Equal(t, "user", history[0].Role)
	require.Equal(t, "model", history[1].Role)
	require.Equal(t, genai.Text("a"), history[1].Parts[0])
}

func TestResponseTextJoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []genai.Part{genai.Text("hello "), genai.Text("world")},
			},
		}},
	}
	require.Equal(t, "hello world", responseText(resp))
	require.Empty(t, responseText(nil))
	require.Empty(t, responseText(&genai.GenerateContentResponse{}))
}
