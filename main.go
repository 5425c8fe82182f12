package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v9"

	"github.com/thirdwheel/companion-backend/pkg/api/handler"
	"github.com/thirdwheel/companion-backend/pkg/chatgpt"
	"github.com/thirdwheel/companion-backend/pkg/engine"
	"github.com/thirdwheel/companion-backend/pkg/index"
	"github.com/thirdwheel/companion-backend/pkg/ingest"
	"github.com/thirdwheel/companion-backend/pkg/logger"
	"github.com/thirdwheel/companion-backend/pkg/sidecar"
	"github.com/thirdwheel/companion-backend/pkg/workers"
)

type Config struct {
	OpenAIKey           string `env:"OPENAI_API_KEY,required"`
	Port                int    `env:"PORT" envDefault:"8080"`
	StorageDir          string `env:"STORAGE_DIR" envDefault:"./cache"`
	DocumentsDir        string `env:"DOCUMENTS_DIR" envDefault:"./data"`
	ChunkSize           int    `env:"CHUNK_SIZE" envDefault:"512"`
	ChunkOverlap        int    `env:"CHUNK_OVERLAP" envDefault:"20"`
	SystemPrompt        string `env:"SYSTEM_PROMPT"`
	InferenceWebhookURL string `env:"INFERENCE_WEBHOOK_URL"`
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, slog.LevelDebug)))

	generate := flag.Bool("generate", false, "build the context store from the documents directory and exit")
	flag.Parse()

	if err := runMain(*generate); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain(generate bool) error {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parsing env config: %w", err)
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	if generate {
		return runGenerate(ctx, cfg)
	}

	workerGroup, err := setupWorkers(cfg)
	if err != nil {
		return err
	}
	return workerGroup.Start(ctx)
}

func runGenerate(ctx context.Context, cfg Config) error {
	llmClient, err := chatgpt.NewClient(cfg.OpenAIKey)
	if err != nil {
		return fmt.Errorf("creating openai client: %w", err)
	}

	store, err := index.Open(cfg.StorageDir)
	if err != nil {
		return fmt.Errorf("opening context store: %w", err)
	}
	defer store.Close()

	builder := ingest.NewBuilder(llmClient, store, cfg.ChunkSize, cfg.ChunkOverlap)
	return builder.Build(ctx, cfg.DocumentsDir)
}

func setupWorkers(cfg Config) (workers.Group, error) {
	var worker workers.Worker
	var workerGroup workers.Group

	llmClient, err := chatgpt.NewClient(cfg.OpenAIKey)
	if err != nil {
		return nil, fmt.Errorf("creating openai client: %w", err)
	}

	engineProvider := engine.NewProvider(func(ctx context.Context) (*engine.Engine, error) {
		store, err := index.Open(cfg.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("opening context store: %w", err)
		}
		eng, err := engine.New(ctx, llmClient, llmClient, store, cfg.SystemPrompt)
		if err != nil {
			store.Close()
			return nil, err
		}
		return eng, nil
	})

	notifier := sidecar.NewNotifier(cfg.InferenceWebhookURL)

	chatHandler := handler.NewChat(engineProvider, notifier)
	healthHandler := handler.NewHealth()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", chatHandler.HandleChatMessage)
	mux.HandleFunc("/api/health", healthHandler.Check)

	if worker, err = workers.NewWebServer(fmt.Sprintf(":%d", cfg.Port), mux); err == nil {
		workerGroup = append(workerGroup, worker)
	} else {
		return nil, err
	}

	if worker, err = workers.NewIndexWatcher(cfg.StorageDir, engineProvider); err == nil {
		workerGroup = append(workerGroup, worker)
	} else {
		return nil, err
	}

	return workerGroup, nil
}
