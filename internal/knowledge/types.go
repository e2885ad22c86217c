// Package knowledge provides retrieval over the user's personal knowledge
// base: scored passages with stable citation handles, exposed to the
// orchestrator as a tool adapter like any other information source.
package knowledge

import (
	"fmt"
	"time"
)

// Passage is one stored knowledge chunk.
type Passage struct {
	// ID is the stable identifier used as the citation handle
	ID string `json:"id"`

	// Title is the source document title
	Title string `json:"title"`

	// Source is the origin kind: "url", "manual", or "file"
	Source string `json:"source"`

	// DestinationScope optionally ties the passage to a destination so
	// searches for one trip don't surface notes about another
	DestinationScope string `json:"destination_scope,omitempty"`

	// Text is the passage content
	Text string `json:"text"`

	// ChunkIdx is the chunk's position within its source document
	ChunkIdx int `json:"chunk_idx"`

	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the passage has the fields storage requires.
func (p Passage) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("passage ID cannot be empty")
	}
	if p.Text == "" {
		return fmt.Errorf("passage text cannot be empty")
	}
	return nil
}

// Result is a passage with its similarity score for one query.
type Result struct {
	Passage Passage `json:"passage"`

	// Score is the similarity score in [0,1]; higher is better
	Score float64 `json:"score"`
}

// Citation is a stable reference tying a claim to its backing passage or
// tool result. Ref is the passage ID for knowledge citations, or
// "tool_name#call_id" for tool-derived claims.
type Citation struct {
	Title    string `json:"title"`
	Source   string `json:"source"`
	Ref      string `json:"ref"`
	ChunkIdx int    `json:"chunk_idx,omitempty"`
}

// SearchOptions narrow a retrieval query.
type SearchOptions struct {
	// DestinationScope restricts results to passages scoped to the given
	// destination (unscoped passages always match)
	DestinationScope string

	// TopK is the maximum number of results; defaults to 5
	TopK int
}
