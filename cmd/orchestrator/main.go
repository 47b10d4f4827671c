package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/velora-ai/velora/internal/classifier"
	"github.com/velora-ai/velora/internal/generation"
	"github.com/velora-ai/velora/internal/interpreter"
	"github.com/velora-ai/velora/internal/models"
	"github.com/velora-ai/velora/internal/orchestrator"
	"github.com/velora-ai/velora/internal/router"
	"github.com/velora-ai/velora/internal/storage"
	"github.com/velora-ai/velora/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:        cfg.Database.Host,
			Port:        cfg.Database.Port,
			User:        cfg.Database.User,
			Password:    cfg.Database.Password,
			DBName:      cfg.Database.DBName,
			SSLMode:     cfg.Database.SSLMode,
			UseInMemory: cfg.Database.UseInMemory,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// Model gateway client; BaseURL empty means the public endpoint.
	clientCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAI.BaseURL
	}
	client := openai.NewClientWithConfig(clientCfg)

	chat := generation.NewOpenAIChat(client, logger)
	uploader := generation.NewGatewayUploader(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, nil)
	serializer := generation.NewGatewaySerializer(cfg.Gateway.BaseURL, cfg.Gateway.APIKey, nil)
	imageProvider := generation.NewOpenAIImage(client, logger)
	vision := generation.NewOpenAIVision(client, cfg.Router.VisionModels, logger)

	providers := generation.Providers{
		Chat: chat,
		Media: map[models.Capability]generation.MediaProvider{
			models.CapabilityImage:     imageProvider,
			models.CapabilityImageEdit: generation.NewImageEditor(vision, imageProvider, logger),
			models.CapabilityTTS:       generation.NewOpenAISpeech(client, uploader, logger),
			models.CapabilityPPT:       generation.NewSlidesProvider(chat, serializer, logger),
			models.CapabilityVideo:     generation.NewGatewayMedia(cfg.Gateway.BaseURL, cfg.Gateway.VideoPath, cfg.Gateway.APIKey, nil, logger),
			models.CapabilityMusic:     generation.NewGatewayMedia(cfg.Gateway.BaseURL, cfg.Gateway.MusicPath, cfg.Gateway.APIKey, nil, logger),
		},
	}

	// Initialize the interpretation pipeline
	local := classifier.NewLocal()
	summarizer := interpreter.NewSummarizer(chat, cfg.Interpreter.SummarizerModel, logger)
	interp := interpreter.New(chat, local, summarizer, interpreter.Options{
		Model:               cfg.Interpreter.Model,
		ConfidenceThreshold: cfg.Interpreter.ConfidenceThreshold,
		MaxRecent:           cfg.Interpreter.MaxRecentMessages,
		Timeout:             time.Duration(cfg.Interpreter.TimeoutSeconds) * time.Second,
	}, logger)

	ledger := router.NewLedger(store, logger)
	rt := router.New(providers, ledger, store, router.Options{
		GenerationTimeout: time.Duration(cfg.Router.GenerationTimeoutSeconds) * time.Second,
		FallbackChatModel: cfg.Router.FallbackChatModel,
	}, logger)

	orch := orchestrator.New(interp, rt, ledger, store, logger)

	// Developer console: each stdin line is one turn on a single thread.
	logger.Info("Orchestrator ready; type a message and press enter")
	threadID := uuid.New().String()
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		result, err := orch.HandleTurn(context.Background(), orchestrator.TurnRequest{
			UserID:   "console",
			ThreadID: threadID,
			Message:  message,
			Tier:     models.ParseTier(os.Getenv("VELORA_TIER")),
			State:    orchestrator.ThreadIdle,
		})
		if err != nil {
			logger.Error("Turn failed", zap.Error(err))
			continue
		}
		fmt.Printf("[%s/%s] %s\n", result.Outcome.Capability, result.Outcome.Kind, result.AssistantTurn.Content)
		if result.Outcome.ArtifactURL != "" {
			fmt.Println(result.Outcome.ArtifactURL)
		}
	}
}
