package store

import "time"

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message is a single turn in a conversation. Messages are immutable once
// created and ordered chronologically within their session.
type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	Image  string `json:"image,omitempty"` // URL reference, stored as-is
}

// Session is a saved conversation. The messages' text is stored encrypted;
// decryption happens in the orchestrator when a session is fetched by id.
type Session struct {
	ID        string    `json:"_id"` // UUID, exposed under the original wire name
	Title     string    `json:"title"`
	Pinned    bool      `json:"pinned"`
	Messages  []Message `json:"messages,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionSummary is the history-listing projection of a Session.
type SessionSummary struct {
	ID     string `json:"_id"`
	Title  string `json:"title"`
	Pinned bool   `json:"pinned"`
}
