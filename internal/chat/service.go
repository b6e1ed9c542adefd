package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/notably-ai/notably/internal/core"
	"github.com/notably-ai/notably/internal/grounding"
	"github.com/notably-ai/notably/internal/models"
)

// Request is one conversational turn: the full UI history, the notebook it
// belongs to, the resources to ground on and their file names for citation.
type Request struct {
	NotebookID  string      `json:"notebook_id"`
	ResourceIDs []string    `json:"resource_ids"`
	FileNames   []string    `json:"file_names"`
	Messages    []UIMessage `json:"messages"`
}

// Service drives grounded streaming replies and keeps the message log
// consistent with what was actually sent to the model.
type Service struct {
	db        core.DbClient
	llm       core.ChatStreamer
	assembler *grounding.Assembler
	timeout   time.Duration
}

func NewService(db core.DbClient, llm core.ChatStreamer, assembler *grounding.Assembler, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Service{db: db, llm: llm, assembler: assembler, timeout: timeout}
}

// StreamReply persists the most recent user turn, assembles the grounding
// context and returns the reply token stream. The user turn is recorded
// before generation starts, so it survives a failed reply. The stream runs
// under the service timeout; if the consumer's ctx is cancelled mid-flight
// the underlying provider call is abandoned best-effort.
func (s *Service) StreamReply(ctx context.Context, req Request) (<-chan core.StreamEvent, error) {
	if req.NotebookID == "" {
		return nil, &core.ValidationError{Reason: "notebook id is required"}
	}
	if len(req.Messages) == 0 {
		return nil, &core.ValidationError{Reason: "message history is empty"}
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != models.RoleUser {
		return nil, &core.ValidationError{Reason: "last message must be a user turn"}
	}
	prompt := FlattenParts(last)
	if strings.TrimSpace(prompt) == "" {
		return nil, &core.ValidationError{Reason: "user message is empty"}
	}

	// Record the user's utterance first, whatever happens to the reply.
	if err := s.db.CreateMessage(ctx, ToStoredMessage(req.NotebookID, last, req.ResourceIDs)); err != nil {
		return nil, &core.PersistenceError{Op: "message", Err: err}
	}

	contextText, err := s.assembler.Assemble(ctx, req.ResourceIDs)
	if err != nil {
		return nil, &core.GenerationError{Err: fmt.Errorf("assemble context: %w", err)}
	}

	system := systemPrompt(contextText, req.FileNames)
	history := ToChatTurns(req.Messages[:len(req.Messages)-1])

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	events, err := s.llm.StreamChat(genCtx, system, history, prompt)
	if err != nil {
		cancel()
		return nil, &core.GenerationError{Err: err}
	}

	out := make(chan core.StreamEvent, 1)
	go func() {
		defer close(out)
		defer cancel()
		for ev := range events {
			if ev.Err != nil {
				ev.Err = &core.GenerationError{Err: ev.Err}
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
			if ev.Terminal() {
				return
			}
		}
		// Provider closed without a terminal marker; treat as truncation.
		select {
		case out <- core.StreamEvent{Err: &core.GenerationError{Err: fmt.Errorf("stream ended without completion")}}:
		case <-ctx.Done():
		}
	}()

	return out, nil
}

// StreamReplySafe never returns an error: any failure, including setup
// failures, arrives as a terminal error event so the transport can end the
// visible response with an error marker instead of crashing mid-flight.
func (s *Service) StreamReplySafe(ctx context.Context, req Request) <-chan core.StreamEvent {
	events, err := s.StreamReply(ctx, req)
	if err != nil {
		out := make(chan core.StreamEvent, 1)
		out <- core.StreamEvent{Err: err}
		close(out)
		return out
	}
	return events
}

// History returns the persisted, timestamp-ordered log for a notebook.
func (s *Service) History(ctx context.Context, notebookID string) ([]models.Message, error) {
	if notebookID == "" {
		return nil, &core.ValidationError{Reason: "notebook id is required"}
	}
	return s.db.ListMessagesByNotebook(ctx, notebookID)
}

// systemPrompt pins the assistant to the assembled material. File names are
// listed so replies can cite sources by name.
func systemPrompt(contextText string, fileNames []string) string {
	var b strings.Builder
	b.WriteString("You are a study assistant answering based only on the provided material. ")
	b.WriteString("If the material does not cover the question, say so.\n")
	if len(fileNames) > 0 {
		b.WriteString("Source files: ")
		b.WriteString(strings.Join(fileNames, ", "))
		b.WriteString("\n")
	}
	if contextText != "" {
		b.WriteString("\nMaterial:\n")
		b.WriteString(contextText)
	}
	return b.String()
}
