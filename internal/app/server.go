package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/notably-ai/notably/internal/api/handlers"
	appMiddleware "github.com/notably-ai/notably/internal/api/middlewares"
	"github.com/notably-ai/notably/internal/chat"
	"github.com/notably-ai/notably/internal/config"
	"github.com/notably-ai/notably/internal/core"
	"github.com/notably-ai/notably/internal/flashcards"
	"github.com/notably-ai/notably/internal/ingest"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, obj core.ObjectClient, pipeline *ingest.Pipeline, deckService *flashcards.Service, chatService *chat.Service) *Server {
	notebookHandler := handlers.NewNotebookHandler(db)
	resourceHandler := handlers.NewResourceHandler(db, pipeline, obj, cfg.BucketName)
	flashcardHandler := handlers.NewFlashcardHandler(db, deckService)
	chatHandler := handlers.NewChatHandler(chatService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware)

			// Non-streaming routes get a server-side deadline; the chat
			// stream manages its own generation timeout.
			protected.Group(func(timed chi.Router) {
				timed.Use(middleware.Timeout(60 * time.Second))

				timed.Post("/notebooks", notebookHandler.CreateNotebook)
				timed.Get("/notebooks", notebookHandler.ListNotebooks)

				timed.Post("/notebooks/{notebookID}/resources", resourceHandler.UploadResources)
				timed.Get("/notebooks/{notebookID}/resources", resourceHandler.ListResources)
				timed.Get("/notebooks/{notebookID}/resources/count", resourceHandler.CountResources)
				timed.Delete("/resources/{resourceID}", resourceHandler.DeleteResource)

				timed.Post("/notebooks/{notebookID}/flashcards", flashcardHandler.GenerateDeck)
				timed.Get("/notebooks/{notebookID}/flashcards", flashcardHandler.ListDecks)

				timed.Get("/notebooks/{notebookID}/messages", chatHandler.ListMessages)
			})

			protected.Post("/chat", chatHandler.StreamChat)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
