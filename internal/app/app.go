package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/notably-ai/notably/internal/chat"
	"github.com/notably-ai/notably/internal/config"
	"github.com/notably-ai/notably/internal/core"
	db "github.com/notably-ai/notably/internal/core/database"
	"github.com/notably-ai/notably/internal/core/llm"
	"github.com/notably-ai/notably/internal/core/objectclient"
	"github.com/notably-ai/notably/internal/flashcards"
	"github.com/notably-ai/notably/internal/grounding"
	"github.com/notably-ai/notably/internal/ingest"
)

type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	LLM          *llm.GeminiLLM
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Database initialized and ready.")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	log.Println("Object client initialized and ready.")

	gemini, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize the llm provider, %w", err)
	}

	pipeline := ingest.NewPipeline(dbClient, objClient, cfg.BucketName)
	assembler := grounding.NewAssembler(dbClient)
	deckService := flashcards.NewService(dbClient, gemini, assembler)
	chatService := chat.NewService(dbClient, gemini, assembler, time.Duration(cfg.ChatTimeout)*time.Second)

	server := NewServer(cfg, dbClient, objClient, pipeline, deckService, chatService)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		LLM:          gemini,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
