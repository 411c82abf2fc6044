package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smarttodo/context-engine/internal/analysis"
	"github.com/smarttodo/context-engine/internal/api"
	"github.com/smarttodo/context-engine/internal/config"
	"github.com/smarttodo/context-engine/internal/engine"
)

var (
	configFile   = flag.String("config", os.ExpandEnv("$HOME/.context-engine/config.yaml"), "Path to configuration file")
	analyzeText  = flag.String("analyze", "", "Analyze the given content and print the result")
	sourceType   = flag.String("source", "other", "Source type for -analyze (email, calendar, note, chat, other)")
	enhanceTitle = flag.String("enhance", "", "Enhance the task with the given title")
	description  = flag.String("description", "", "Task description for -enhance")
	category     = flag.String("category", "", "Task category for -enhance")
	prioritize   = flag.String("prioritize", "", "Prioritize tasks from a JSON file (\"-\" for stdin)")
	capabilities = flag.Bool("capabilities", false, "Print configured providers and features")
	serve        = flag.Bool("serve", false, "Run the HTTP API server")
	version      = flag.Bool("version", false, "Show version")
)

const VERSION = "0.1.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("context-engine v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng := engine.NewFromConfig(ctx, cfg)
	defer eng.Close()

	switch {
	case *analyzeText != "":
		printJSON(eng.AnalyzeContext(ctx, *analyzeText, *sourceType))

	case *enhanceTitle != "":
		printJSON(eng.EnhanceTask(ctx, analysis.EnhancementRequest{
			Title:       *enhanceTitle,
			Description: *description,
			Category:    *category,
		}))

	case *prioritize != "":
		items, err := readTasks(*prioritize)
		if err != nil {
			log.Fatalf("Failed to read tasks: %v", err)
		}
		printJSON(eng.PrioritizeTasks(ctx, items))

	case *capabilities:
		printJSON(eng.Capabilities())

	case *serve:
		runServer(ctx, eng, cfg)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(data))
}

func readTasks(path string) ([]analysis.TaskItem, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var items []analysis.TaskItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("invalid task list: %w", err)
	}
	return items, nil
}

func runServer(ctx context.Context, eng *engine.Engine, cfg *config.Config) {
	server := api.NewServer(eng, cfg)

	go func() {
		if err := server.Start(cfg.API.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, shutting down...", sig)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
