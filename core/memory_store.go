package core

// SearchResult represents a retrieved memory item with a relevance score and arbitrary metadata.
type SearchResult struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}

// MemoryStore provides long-lived recall across turns of a session, e.g.
// previously synthesized findings queried during the follow-up stage.
type MemoryStore interface {
	Store(sessionID, content string, metadata map[string]any) error
	Search(sessionID, query string, limit int) ([]SearchResult, error)
}
