package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/notably-ai/notably/internal/core"
)

type GeminiLLM struct {
	client    *genai.Client
	modelName string
}

var (
	_ core.DeckGenerator = (*GeminiLLM)(nil)
	_ core.ChatStreamer  = (*GeminiLLM)(nil)
)

func NewGeminiLLM(ctx context.Context, apiKey, modelName string) (*GeminiLLM, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &GeminiLLM{client: cl, modelName: modelName}, nil
}

func (g *GeminiLLM) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// deckSchema constrains the response to a titled front/back card set.
// The schema is the correctness mechanism; no free-form prose can come back.
var deckSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title": {
			Type:        genai.TypeString,
			Description: "Short deck title, at most 100 characters.",
		},
		"cards": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"front": {Type: genai.TypeString},
					"back":  {Type: genai.TypeString},
				},
				Required: []string{"front", "back"},
			},
		},
	},
	Required: []string{"title", "cards"},
}

// GenerateDeck issues one schema-constrained call and decodes the JSON body.
func (g *GeminiLLM) GenerateDeck(ctx context.Context, content string, opts core.DeckOptions) (*core.DeckDraft, error) {
	m := g.client.GenerativeModel(g.modelName)
	m.GenerationConfig.ResponseMIMEType = "application/json"
	m.GenerationConfig.ResponseSchema = deckSchema
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(
			"You create study flashcards from the provided material. " +
				"Each card has a concise question on the front and the answer on the back. " +
				"Use only facts present in the material.",
		)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(deckPrompt(content, opts)))
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	body := responseText(resp)
	if body == "" {
		return nil, fmt.Errorf("gemini generate: empty response")
	}

	var draft core.DeckDraft
	if err := json.Unmarshal([]byte(body), &draft); err != nil {
		return nil, fmt.Errorf("gemini generate: response violates schema: %w", err)
	}
	return &draft, nil
}

// deckPrompt embeds advisory hints only when present, so absent options
// never bias the model toward defaults.
func deckPrompt(content string, opts core.DeckOptions) string {
	var b strings.Builder
	b.WriteString("Create a flashcard deck from the following material.\n")
	if opts.Count > 0 {
		fmt.Fprintf(&b, "Aim for about %d cards.\n", opts.Count)
	}
	if opts.Difficulty != "" {
		fmt.Fprintf(&b, "Target difficulty: %s.\n", opts.Difficulty)
	}
	if opts.Topic != "" {
		fmt.Fprintf(&b, "Focus on the topic: %s.\n", opts.Topic)
	}
	b.WriteString("\nMaterial:\n")
	b.WriteString(content)
	return b.String()
}

// StreamChat runs a streaming generation call over the prior turns plus the
// fresh prompt. The returned channel carries tokens in generation order and
// always ends with exactly one terminal event before closing.
func (g *GeminiLLM) StreamChat(ctx context.Context, system string, history []core.ChatTurn, prompt string) (<-chan core.StreamEvent, error) {
	m := g.client.GenerativeModel(g.modelName)
	if system != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	cs := m.StartChat()
	cs.History = toGenaiHistory(history)

	iter := cs.SendMessageStream(ctx, genai.Text(prompt))

	// Buffer of one: the terminal event must never block an abandoned consumer.
	out := make(chan core.StreamEvent, 1)
	go func() {
		defer close(out)
		terminal := func(ev core.StreamEvent) {
			select {
			case out <- ev:
			case <-ctx.Done():
			}
		}
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				terminal(core.StreamEvent{Done: true})
				return
			}
			if err != nil {
				terminal(core.StreamEvent{Err: fmt.Errorf("gemini stream: %w", err)})
				return
			}
			token := responseText(resp)
			if token == "" {
				continue
			}
			select {
			case out <- core.StreamEvent{Token: token}:
			case <-ctx.Done():
				terminal(core.StreamEvent{Err: ctx.Err()})
				return
			}
		}
	}()

	return out, nil
}

func toGenaiHistory(history []core.ChatTurn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := "user"
		if turn.Role == "assistant" {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(turn.Text)},
		})
	}
	return out
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}
