package client

import (
	"bytes"
	"context"
	"errors"
	"sync"
)

// Greeting seeds every new conversation.
const Greeting = "Hello! I am MedAI, your assistant for all medical needs. How can I help you today?"

const apologyMessage = "Sorry, something went wrong."

// ErrNothingToSave is returned when a save is attempted before the
// conversation has at least a user message and a reply.
var ErrNothingToSave = errors.New("there is nothing to save yet")

// Attachment is an image to send with a message. LocalRef is the caller's
// tentative reference (e.g. a local file path or blob URL) shown until the
// server confirms the stored image URL.
type Attachment struct {
	Filename string
	Data     []byte
	LocalRef string
}

// SessionController holds the active conversation state: the ordered
// message list, the typing indicator, and the saved flag. Overlapping sends
// are serialized: a second Send blocks until the in-flight turn completes.
type SessionController struct {
	api *Client

	sendMu sync.Mutex // serializes turns against the server
	mu     sync.Mutex // guards the fields below

	messages         []Message
	typing           bool
	saved            bool
	onHistoryChanged func()
	confirmSave      func() bool
}

func NewSessionController(api *Client) *SessionController {
	return &SessionController{
		api:      api,
		messages: []Message{{Sender: SenderBot, Text: Greeting}},
	}
}

// SetHistoryListener registers a callback fired whenever the saved-session
// list may have changed (save, rename, pin, delete).
func (c *SessionController) SetHistoryListener(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onHistoryChanged = fn
}

// SetSaveConfirmer registers the prompt shown when NewChat finds unsaved
// messages. Returning true saves before resetting.
func (c *SessionController) SetSaveConfirmer(fn func() bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmSave = fn
}

// Messages returns a snapshot of the current conversation.
func (c *SessionController) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *SessionController) Typing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typing
}

func (c *SessionController) Saved() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saved
}

// Send appends the user's message, calls the server, and appends the reply.
// With an attachment the local image reference is shown immediately and
// replaced by the server-confirmed URL once the upload succeeds. On any
// failure a generic apology message is appended instead of a reply.
func (c *SessionController) Send(ctx context.Context, text string, attachment *Attachment) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	userMsg := Message{Sender: SenderUser, Text: text}
	if attachment != nil {
		userMsg.Image = attachment.LocalRef
	}

	c.mu.Lock()
	c.messages = append(c.messages, userMsg)
	userIndex := len(c.messages) - 1
	c.typing = true
	c.saved = false
	c.mu.Unlock()

	var reply string
	var err error
	if attachment != nil {
		var imageURL string
		reply, imageURL, err = c.api.UploadImage(ctx, text, attachment.Filename, bytes.NewReader(attachment.Data))
		if err == nil {
			c.mu.Lock()
			c.messages[userIndex].Image = c.api.BaseURL() + imageURL
			c.mu.Unlock()
		}
	} else {
		reply, err = c.api.SendMessage(ctx, text)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.typing = false
	if err != nil {
		c.messages = append(c.messages, Message{Sender: SenderBot, Text: apologyMessage})
		return err
	}
	c.messages = append(c.messages, Message{Sender: SenderBot, Text: reply})
	return nil
}

// Save persists the current conversation and returns its id.
func (c *SessionController) Save(ctx context.Context) (string, error) {
	c.mu.Lock()
	if len(c.messages) < 2 {
		c.mu.Unlock()
		return "", ErrNothingToSave
	}
	snapshot := make([]Message, len(c.messages))
	copy(snapshot, c.messages)
	c.mu.Unlock()

	chatID, err := c.api.SaveChat(ctx, snapshot)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.saved = true
	c.mu.Unlock()

	c.notifyHistoryChanged()
	return chatID, nil
}

// NewChat resets the conversation to the greeting. If unsaved messages
// exist and the registered confirmer agrees, the conversation is saved
// first.
func (c *SessionController) NewChat(ctx context.Context) error {
	c.mu.Lock()
	unsaved := len(c.messages) > 1 && !c.saved
	confirm := c.confirmSave
	c.mu.Unlock()

	if unsaved && confirm != nil && confirm() {
		if _, err := c.Save(ctx); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.messages = []Message{{Sender: SenderBot, Text: Greeting}}
	c.saved = false
	c.mu.Unlock()
	return nil
}

// SelectFromHistory replaces the current conversation with a saved session.
func (c *SessionController) SelectFromHistory(ctx context.Context, id string) error {
	session, err := c.api.GetSession(ctx, id)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.messages = session.Messages
	c.saved = true
	c.mu.Unlock()
	return nil
}

// Rename changes a saved session's title and refreshes the history list.
func (c *SessionController) Rename(ctx context.Context, id, title string) error {
	if err := c.api.UpdateSession(ctx, id, &title, nil); err != nil {
		return err
	}
	c.notifyHistoryChanged()
	return nil
}

// Pin sets a saved session's pinned flag and refreshes the history list.
func (c *SessionController) Pin(ctx context.Context, id string, pinned bool) error {
	if err := c.api.UpdateSession(ctx, id, nil, &pinned); err != nil {
		return err
	}
	c.notifyHistoryChanged()
	return nil
}

// Delete removes a saved session and refreshes the history list.
func (c *SessionController) Delete(ctx context.Context, id string) error {
	if err := c.api.DeleteSession(ctx, id); err != nil {
		return err
	}
	c.notifyHistoryChanged()
	return nil
}

func (c *SessionController) notifyHistoryChanged() {
	c.mu.Lock()
	fn := c.onHistoryChanged
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
