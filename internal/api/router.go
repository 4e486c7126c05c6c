package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(apiHandler *APIHandler, uploadsDir string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Route("/chat", func(r chi.Router) {
			r.Post("/send", apiHandler.SendMessageHandler)
			r.Post("/upload", apiHandler.UploadHandler)
			r.Post("/save", apiHandler.SaveChatHandler)
			r.Get("/history", apiHandler.HistoryHandler)
			r.Get("/{chatID}", apiHandler.GetChatHandler)
			r.Put("/{chatID}", apiHandler.UpdateChatHandler)
			r.Delete("/{chatID}", apiHandler.DeleteChatHandler)
		})
	})

	// Serve uploaded images
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadsDir))))

	return r
}
