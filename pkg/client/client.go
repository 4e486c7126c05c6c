// Package client provides a Go client for the MedAI chat API and a
// SessionController that mirrors the browser dashboard's conversation
// lifecycle: greeting seed, optimistic sends, save/new-chat handling, and
// history selection.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// Message mirrors the API wire format for a single chat turn.
type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	Image  string `json:"image,omitempty"`
}

// SessionSummary is one row of the history list.
type SessionSummary struct {
	ID     string `json:"_id"`
	Title  string `json:"title"`
	Pinned bool   `json:"pinned"`
}

// Session is a full saved conversation as returned by the API, with message
// text already decrypted server-side.
type Session struct {
	ID       string    `json:"_id"`
	Title    string    `json:"title"`
	Pinned   bool      `json:"pinned"`
	Messages []Message `json:"messages"`
}

// Client talks to the MedAI HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// BaseURL returns the server address the client was built with. The
// controller uses it to turn relative image URLs into absolute ones.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendMessage posts a text turn and returns the assistant's reply.
func (c *Client) SendMessage(ctx context.Context, message string) (string, error) {
	var resp struct {
		Reply string `json:"reply"`
	}
	err := c.postJSON(ctx, "/api/chat/send", map[string]string{"message": message}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// UploadImage posts an image turn as multipart form data. It returns the
// assistant's reply and the server-side URL of the stored image.
func (c *Client) UploadImage(ctx context.Context, message, filename string, image io.Reader) (reply, imageURL string, err error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", "", fmt.Errorf("failed to buffer image: %w", err)
	}
	if err := mw.WriteField("message", message); err != nil {
		return "", "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", "", fmt.Errorf("failed to finish upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat/upload", &body)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp struct {
		Reply    string `json:"reply"`
		ImageURL string `json:"imageUrl"`
	}
	if err := c.do(req, &resp); err != nil {
		return "", "", err
	}
	return resp.Reply, resp.ImageURL, nil
}

// SaveChat persists the conversation and returns the new chat id.
func (c *Client) SaveChat(ctx context.Context, messages []Message) (string, error) {
	var resp struct {
		ChatID string `json:"chatId"`
	}
	err := c.postJSON(ctx, "/api/chat/save", map[string]interface{}{"messages": messages}, &resp)
	if err != nil {
		return "", err
	}
	return resp.ChatID, nil
}

// History lists saved sessions, pinned first then newest first.
func (c *Client) History(ctx context.Context) ([]SessionSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/chat/history", nil)
	if err != nil {
		return nil, err
	}
	var sessions []SessionSummary
	if err := c.do(req, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSession fetches a full saved session.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/chat/"+id, nil)
	if err != nil {
		return nil, err
	}
	var session Session
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSession applies a partial title/pinned update.
func (c *Client) UpdateSession(ctx context.Context, id string, title *string, pinned *bool) error {
	payload := map[string]interface{}{}
	if title != nil {
		payload["title"] = *title
	}
	if pinned != nil {
		payload["pinned"] = *pinned
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/chat/"+id, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// DeleteSession removes a saved session.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/chat/"+id, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
