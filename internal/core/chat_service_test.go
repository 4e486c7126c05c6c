package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aarushchaudhary/medai/internal/core"
	"github.com/aarushchaudhary/medai/internal/store"
)

type extractorFunc func(ctx context.Context, pageURL, query string) string

func (f extractorFunc) Scrape(ctx context.Context, pageURL, query string) string {
	return f(ctx, pageURL, query)
}

type fakeGenerator struct {
	lastPrompt string
	reply      string
	err        error
}

func (g *fakeGenerator) GenerateReply(ctx context.Context, prompt string) (string, error) {
	g.lastPrompt = prompt
	return g.reply, g.err
}

func (g *fakeGenerator) GenerateImageReply(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	g.lastPrompt = prompt
	return g.reply, g.err
}

func newTestService(t *testing.T, extractor core.Extractor, generator core.Generator) (*core.ChatService, *store.SQLiteStore) {
	t.Helper()

	dbStore, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore err: %v", err)
	}
	t.Cleanup(func() { dbStore.Close() })

	cipher, err := core.NewCipherService("test-secret")
	if err != nil {
		t.Fatalf("NewCipherService err: %v", err)
	}

	return core.NewChatService(dbStore, cipher, extractor, generator), dbStore
}

func sentinelExtractor(ctx context.Context, pageURL, query string) string {
	return "Could not retrieve information from " + pageURL + "."
}

func TestSendMessageRejectsEmpty(t *testing.T) {
	svc, _ := newTestService(t, extractorFunc(sentinelExtractor), &fakeGenerator{})

	if _, err := svc.SendMessage(context.Background(), "   "); !errors.Is(err, core.ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestSendMessageBothExtractionsFailed(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	svc, _ := newTestService(t, extractorFunc(sentinelExtractor), gen)

	reply, err := svc.SendMessage(context.Background(), "aspirin and ibuprofen interaction")
	if err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if reply != "ok" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if !strings.Contains(gen.lastPrompt, "Site indexing failed.") {
		t.Fatalf("prompt status should read the failure variant:\n%s", gen.lastPrompt)
	}
}

func TestSendMessageOneExtractionSucceeded(t *testing.T) {
	gen := &fakeGenerator{reply: "ok"}
	extractor := extractorFunc(func(ctx context.Context, pageURL, query string) string {
		if strings.Contains(pageURL, "pubmed") {
			return "Aspirin thins the blood."
		}
		return sentinelExtractor(ctx, pageURL, query)
	})
	svc, _ := newTestService(t, extractor, gen)

	if _, err := svc.SendMessage(context.Background(), "aspirin"); err != nil {
		t.Fatalf("SendMessage err: %v", err)
	}
	if !strings.Contains(gen.lastPrompt, "Sites successfully indexed.") {
		t.Fatalf("prompt status should read the success variant:\n%s", gen.lastPrompt)
	}
	if !strings.Contains(gen.lastPrompt, "Aspirin thins the blood.") {
		t.Fatalf("prompt missing extracted context:\n%s", gen.lastPrompt)
	}
}

func TestSendMessageSurfacesGeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: core.ErrAIUnavailable}
	svc, _ := newTestService(t, extractorFunc(sentinelExtractor), gen)

	if _, err := svc.SendMessage(context.Background(), "aspirin"); !errors.Is(err, core.ErrAIUnavailable) {
		t.Fatalf("expected ErrAIUnavailable, got %v", err)
	}
}

func TestSaveSessionRejectsShortConversations(t *testing.T) {
	svc, _ := newTestService(t, extractorFunc(sentinelExtractor), &fakeGenerator{})

	if _, err := svc.SaveSession(nil); !errors.Is(err, core.ErrSessionTooShort) {
		t.Fatalf("expected ErrSessionTooShort for empty save, got %v", err)
	}

	one := []store.Message{{Sender: store.SenderUser, Text: "hi"}}
	if _, err := svc.SaveSession(one); !errors.Is(err, core.ErrSessionTooShort) {
		t.Fatalf("expected ErrSessionTooShort for single message, got %v", err)
	}
}

func TestSaveSessionRejectsUnknownSender(t *testing.T) {
	svc, _ := newTestService(t, extractorFunc(sentinelExtractor), &fakeGenerator{})

	messages := []store.Message{
		{Sender: "assistant", Text: "hi"},
		{Sender: store.SenderBot, Text: "hello"},
	}
	if _, err := svc.SaveSession(messages); !errors.Is(err, core.ErrInvalidSender) {
		t.Fatalf("expected ErrInvalidSender, got %v", err)
	}
}

func TestSaveAndGetSessionRoundTrip(t *testing.T) {
	svc, dbStore := newTestService(t, extractorFunc(sentinelExtractor), &fakeGenerator{})

	messages := []store.Message{
		{Sender: store.SenderUser, Text: "hi"},
		{Sender: store.SenderBot, Text: "hello", Image: "/uploads/123-scan.png"},
	}

	id, err := svc.SaveSession(messages)
	if err != nil {
		t.Fatalf("SaveSession err: %v", err)
	}
	if id == "" {
		t.Fatal("expected a chat id")
	}

	// At rest the text must be encrypted; the image reference must not be.
	raw, err := dbStore.GetSessionByID(id)
	if err != nil {
		t.Fatalf("GetSessionByID err: %v", err)
	}
	if raw.Messages[0].Text == "hi" || raw.Messages[1].Text == "hello" {
		t.Fatal("message text stored in plaintext")
	}
	if raw.Messages[1].Image != "/uploads/123-scan.png" {
		t.Fatalf("image reference altered at rest: %q", raw.Messages[1].Image)
	}

	session, err := svc.GetSession(id)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if len(session.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(session.Messages))
	}
	if session.Messages[0].Text != "hi" || session.Messages[1].Text != "hello" {
		t.Fatalf("decrypted messages mismatch: %+v", session.Messages)
	}
}

func TestSaveSessionDerivesTitle(t *testing.T) {
	svc, _ := newTestService(t, extractorFunc(sentinelExtractor), &fakeGenerator{})

	long := "can I take aspirin together with ibuprofen every day"
	id, err := svc.SaveSession([]store.Message{
		{Sender: store.SenderBot, Text: "Hello!"},
		{Sender: store.SenderUser, Text: long},
		{Sender: store.SenderBot, Text: "Short answer: ask your doctor."},
	})
	if err != nil {
		t.Fatalf("SaveSession err: %v", err)
	}

	session, err := svc.GetSession(id)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	want := long[:30] + "..."
	if session.Title != want {
		t.Fatalf("title = %q, want %q", session.Title, want)
	}
}

func TestSaveSessionFallbackTitle(t *testing.T) {
	svc, _ := newTestService(t, extractorFunc(sentinelExtractor), &fakeGenerator{})

	id, err := svc.SaveSession([]store.Message{
		{Sender: store.SenderBot, Text: "Hello!"},
		{Sender: store.SenderBot, Text: "Still here."},
	})
	if err != nil {
		t.Fatalf("SaveSession err: %v", err)
	}

	session, err := svc.GetSession(id)
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if session.Title != "Saved conversation" {
		t.Fatalf("fallback title = %q", session.Title)
	}
}

func TestGetSessionUnknownID(t *testing.T) {
	svc, _ := newTestService(t, extractorFunc(sentinelExtractor), &fakeGenerator{})

	session, err := svc.GetSession("missing")
	if err != nil {
		t.Fatalf("GetSession err: %v", err)
	}
	if session != nil {
		t.Fatal("expected nil session for unknown id")
	}
}
