package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const chatModelName = "gemini-2.5-flash"

// ErrAIUnavailable is the single opaque failure surfaced for any problem
// talking to the model. Callers treat it as terminal for the request; there
// is no retry or backoff.
var ErrAIUnavailable = errors.New("failed to communicate with the AI model")

// LLMService is the reply generator. It holds the Gemini client for the
// lifetime of the process.
type LLMService struct {
	client *genai.Client
}

func NewLLMService(ctx context.Context, apiKey string) (*LLMService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &LLMService{client: client}, nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			log.Printf("Error closing GenAI client: %v", err)
		}
	}
}

// GenerateReply sends an assembled prompt and returns the model's text.
func (s *LLMService) GenerateReply(ctx context.Context, prompt string) (string, error) {
	return s.generate(ctx, genai.Text(prompt))
}

// GenerateImageReply attaches the image as an inline content part ahead of
// the prompt text.
func (s *LLMService) GenerateImageReply(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	format := strings.TrimPrefix(mimeType, "image/")
	return s.generate(ctx, genai.ImageData(format, image), genai.Text(prompt))
}

func (s *LLMService) generate(ctx context.Context, parts ...genai.Part) (string, error) {
	model := s.client.GenerativeModel(chatModelName)

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		log.Printf("Error getting response from AI: %v", err)
		return "", ErrAIUnavailable
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Println("Gemini response was empty or had no valid candidates/parts.")
		return "", ErrAIUnavailable
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		} else {
			log.Printf("Gemini response part was not text: %T", part)
		}
	}

	if responseText.Len() == 0 {
		log.Println("Gemini response contained no text parts.")
		return "", ErrAIUnavailable
	}

	return responseText.String(), nil
}
