package chat

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/notably-ai/notably/internal/core"
	"github.com/notably-ai/notably/internal/models"
)

// UIMessagePart is one part of a UI-shaped message. Only text parts carry
// into persisted history; attachments and tool-call parts are dropped.
type UIMessagePart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// UIMessage is the message shape the chat boundary accepts.
type UIMessage struct {
	Role  string          `json:"role"`
	Parts []UIMessagePart `json:"parts"`
}

// FlattenParts concatenates the text parts of a UI message in order.
// Non-text parts are silently ignored.
func FlattenParts(m UIMessage) string {
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Type != "text" {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// ToStoredMessage maps a UI message to the flat stored shape.
func ToStoredMessage(notebookID string, m UIMessage, sourceIDs []string) *models.Message {
	return &models.Message{
		ID:         uuid.NewString(),
		NotebookID: notebookID,
		Role:       m.Role,
		Content:    FlattenParts(m),
		SourceIDs:  sourceIDs,
		CreatedAt:  time.Now(),
	}
}

// ToChatTurns maps UI history to the provider's turn shape.
func ToChatTurns(msgs []UIMessage) []core.ChatTurn {
	out := make([]core.ChatTurn, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, core.ChatTurn{Role: m.Role, Text: FlattenParts(m)})
	}
	return out
}
