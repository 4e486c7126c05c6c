package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aarushchaudhary/medai/internal/core"
	"github.com/aarushchaudhary/medai/internal/store"
	"github.com/aarushchaudhary/medai/internal/upload"
)

const genericServerError = "An internal server error occurred."

type APIHandler struct {
	chatService *core.ChatService
	uploads     *upload.Storage
}

func NewAPIHandler(cs *core.ChatService, uploads *upload.Storage) *APIHandler {
	return &APIHandler{chatService: cs, uploads: uploads}
}

type SendMessageRequest struct {
	Message string `json:"message"`
}

type SendMessageResponse struct {
	Reply string `json:"reply"`
}

func (h *APIHandler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	reply, err := h.chatService.SendMessage(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, core.ErrEmptyMessage) {
			respondError(w, http.StatusBadRequest, "Message is required.")
			return
		}
		log.Printf("Error in send handler: %v", err)
		respondError(w, http.StatusInternalServerError, genericServerError)
		return
	}

	respondJSON(w, http.StatusOK, SendMessageResponse{Reply: reply})
}

type UploadResponse struct {
	Reply    string `json:"reply"`
	ImageURL string `json:"imageUrl"`
}

func (h *APIHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxImageSize+1024*1024)
	if err := r.ParseMultipartForm(upload.MaxImageSize); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid upload request.")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "An image file is required.")
		return
	}
	defer file.Close()

	message := r.FormValue("message")

	image, err := io.ReadAll(file)
	if err != nil {
		log.Printf("Error reading uploaded image: %v", err)
		respondError(w, http.StatusInternalServerError, genericServerError)
		return
	}

	reply, err := h.chatService.AnalyzeImage(r.Context(), message, image, header.Header.Get("Content-Type"))
	if err != nil {
		log.Printf("Error in upload handler: %v", err)
		respondError(w, http.StatusInternalServerError, genericServerError)
		return
	}

	name, err := h.uploads.Save(header.Filename, bytes.NewReader(image))
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrUnsupportedType), errors.Is(err, upload.ErrImageTooLarge), errors.Is(err, upload.ErrEmptyFilename):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("Error persisting uploaded image: %v", err)
			respondError(w, http.StatusInternalServerError, genericServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, UploadResponse{Reply: reply, ImageURL: "/uploads/" + name})
}

type SaveChatRequest struct {
	Messages []store.Message `json:"messages"`
}

type SaveChatResponse struct {
	Message string `json:"message"`
	ChatID  string `json:"chatId"`
}

func (h *APIHandler) SaveChatHandler(w http.ResponseWriter, r *http.Request) {
	var req SaveChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	chatID, err := h.chatService.SaveSession(req.Messages)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrSessionTooShort):
			respondError(w, http.StatusBadRequest, "A valid chat session is required.")
		case errors.Is(err, core.ErrInvalidSender):
			respondError(w, http.StatusBadRequest, "Message sender must be user or bot.")
		default:
			log.Printf("Error saving chat: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to save chat.")
		}
		return
	}

	respondJSON(w, http.StatusCreated, SaveChatResponse{Message: "Chat saved successfully.", ChatID: chatID})
}

func (h *APIHandler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.chatService.ListSessions()
	if err != nil {
		log.Printf("Error fetching chat history: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch chat history.")
		return
	}
	if sessions == nil {
		sessions = []store.SessionSummary{}
	}
	respondJSON(w, http.StatusOK, sessions)
}

func (h *APIHandler) GetChatHandler(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	session, err := h.chatService.GetSession(chatID)
	if err != nil {
		log.Printf("Error fetching chat %s: %v", chatID, err)
		respondError(w, http.StatusInternalServerError, "Failed to fetch chat.")
		return
	}
	if session == nil {
		respondError(w, http.StatusNotFound, "Chat not found.")
		return
	}
	respondJSON(w, http.StatusOK, session)
}

type UpdateChatRequest struct {
	Title  *string `json:"title,omitempty"`
	Pinned *bool   `json:"pinned,omitempty"`
}

func (h *APIHandler) UpdateChatHandler(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	var req UpdateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Title == nil && req.Pinned == nil {
		respondError(w, http.StatusBadRequest, "Nothing to update.")
		return
	}

	session, err := h.chatService.UpdateSession(chatID, req.Title, req.Pinned)
	if err != nil {
		log.Printf("Error updating chat %s: %v", chatID, err)
		respondError(w, http.StatusInternalServerError, "Failed to update chat.")
		return
	}
	if session == nil {
		respondError(w, http.StatusNotFound, "Chat not found.")
		return
	}
	respondJSON(w, http.StatusOK, session)
}

func (h *APIHandler) DeleteChatHandler(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")

	if err := h.chatService.DeleteSession(chatID); err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "Chat not found.")
			return
		}
		log.Printf("Error deleting chat %s: %v", chatID, err)
		respondError(w, http.StatusInternalServerError, "Failed to delete chat.")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Chat deleted successfully."})
}
