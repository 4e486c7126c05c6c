package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/aarushchaudhary/medai/internal/store"
)

// Reference sites consulted for every text turn.
const (
	cdscoURL        = "https://cdsco.gov.in/opencms/opencms/en/Home/"
	pubmedSearchURL = "https://pubmed.ncbi.nlm.nih.gov/?term=%s"
)

const (
	titleMaxLength = 30
	fallbackTitle  = "Saved conversation"
)

var (
	ErrEmptyMessage    = errors.New("message is required")
	ErrSessionTooShort = errors.New("a valid chat session is required")
	ErrInvalidSender   = errors.New("message sender must be user or bot")
)

// Extractor fetches a best-effort excerpt of a page relevant to a query.
// It reports failure through a sentinel string, never an error.
type Extractor interface {
	Scrape(ctx context.Context, pageURL, query string) string
}

// Generator produces a model reply for an assembled prompt, optionally with
// an inline image.
type Generator interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
	GenerateImageReply(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// ChatService composes the extractor, generator, cipher, and session store
// for each client-facing operation. It holds no per-request state.
type ChatService struct {
	dbStore   *store.SQLiteStore
	cipher    *CipherService
	extractor Extractor
	generator Generator
}

func NewChatService(db *store.SQLiteStore, cipher *CipherService, extractor Extractor, generator Generator) *ChatService {
	return &ChatService{
		dbStore:   db,
		cipher:    cipher,
		extractor: extractor,
		generator: generator,
	}
}

// SendMessage handles one text turn: both reference sites are scraped
// concurrently, joined before prompt assembly, and the assembled prompt is
// sent to the model.
func (s *ChatService) SendMessage(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	var cdscoData, pubmedData string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		cdscoData = s.extractor.Scrape(ctx, cdscoURL, message)
	}()
	go func() {
		defer wg.Done()
		pubmedData = s.extractor.Scrape(ctx, fmt.Sprintf(pubmedSearchURL, url.QueryEscape(message)), message)
	}()
	wg.Wait()

	status := IndexingStatus(cdscoData, pubmedData)
	prompt := BuildChatPrompt(message, status, cdscoData, pubmedData)

	return s.generator.GenerateReply(ctx, prompt)
}

// AnalyzeImage handles one image turn. No web extraction is involved.
func (s *ChatService) AnalyzeImage(ctx context.Context, message string, image []byte, mimeType string) (string, error) {
	prompt := BuildImagePrompt(message)
	return s.generator.GenerateImageReply(ctx, prompt, image, mimeType)
}

// SaveSession encrypts each message's text and persists the conversation.
// Image references are stored as-is, unencrypted. Returns the new session
// id.
func (s *ChatService) SaveSession(messages []store.Message) (string, error) {
	if len(messages) < 2 {
		return "", ErrSessionTooShort
	}
	for _, msg := range messages {
		if msg.Sender != store.SenderUser && msg.Sender != store.SenderBot {
			return "", ErrInvalidSender
		}
	}

	title := deriveTitle(messages)

	encrypted := make([]store.Message, 0, len(messages))
	for i, msg := range messages {
		ciphertext, err := s.cipher.Encrypt(msg.Text)
		if err != nil {
			return "", fmt.Errorf("failed to encrypt message %d: %w", i, err)
		}
		encrypted = append(encrypted, store.Message{
			Sender: msg.Sender,
			Text:   ciphertext,
			Image:  msg.Image,
		})
	}

	session, err := s.dbStore.CreateSession(title, encrypted)
	if err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	return session.ID, nil
}

// deriveTitle snapshots the first user message, truncated to 30 characters
// plus an ellipsis. The title is never re-derived on later edits.
func deriveTitle(messages []store.Message) string {
	for _, msg := range messages {
		if msg.Sender == store.SenderUser && strings.TrimSpace(msg.Text) != "" {
			runes := []rune(msg.Text)
			if len(runes) > titleMaxLength {
				runes = runes[:titleMaxLength]
			}
			return string(runes) + "..."
		}
	}
	return fallbackTitle
}

// GetSession fetches a session by id and decrypts its message text. Returns
// (nil, nil) when the id is unknown.
func (s *ChatService) GetSession(id string) (*store.Session, error) {
	session, err := s.dbStore.GetSessionByID(id)
	if err != nil || session == nil {
		return session, err
	}

	for i := range session.Messages {
		plaintext, err := s.cipher.Decrypt(session.Messages[i].Text)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt message %d of session %s: %w", i, id, err)
		}
		session.Messages[i].Text = plaintext
	}
	return session, nil
}

func (s *ChatService) ListSessions() ([]store.SessionSummary, error) {
	return s.dbStore.ListSessions()
}

// UpdateSession applies a partial title/pinned update.
func (s *ChatService) UpdateSession(id string, title *string, pinned *bool) (*store.Session, error) {
	return s.dbStore.UpdateSession(id, title, pinned)
}

func (s *ChatService) DeleteSession(id string) error {
	return s.dbStore.DeleteSession(id)
}
