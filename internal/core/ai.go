package core

import "context"

// DeckOptions are advisory hints for deck generation. Zero values mean
// "unspecified" and are left out of the instruction text entirely.
type DeckOptions struct {
	Count      int    `json:"count,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Topic      string `json:"topic,omitempty"`
}

// DeckDraft is the model's schema-constrained output before persistence.
type DeckDraft struct {
	Title string `json:"title"`
	Cards []struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	} `json:"cards"`
}

// DeckGenerator produces a titled card set from grounding content in a
// single schema-constrained call.
type DeckGenerator interface {
	GenerateDeck(ctx context.Context, content string, opts DeckOptions) (*DeckDraft, error)
}

// ChatTurn is one prior conversation turn fed back to the model.
type ChatTurn struct {
	Role string
	Text string
}

// StreamEvent is one element of a reply token stream. Exactly one terminal
// event (Done or Err set) is emitted, after which the channel closes.
type StreamEvent struct {
	Token string
	Done  bool
	Err   error
}

// Terminal reports whether no further tokens will follow this event.
func (e StreamEvent) Terminal() bool { return e.Done || e.Err != nil }

// ChatStreamer runs a streaming generation call over prior turns plus a
// fresh prompt, under a grounding system instruction.
type ChatStreamer interface {
	StreamChat(ctx context.Context, system string, history []ChatTurn, prompt string) (<-chan StreamEvent, error)
}
