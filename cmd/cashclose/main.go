package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/cashclose/internal/extraction"
	"github.com/zombor/cashclose/internal/report"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	fs := ff.NewFlagSet("cashclose")
	var (
		port          = fs.IntLong("port", 8080, "HTTP server port")
		storeKind     = fs.StringLong("store", report.StoreBolt, "Report store: 'bolt' or 'postgres'")
		dbPath        = fs.StringLong("db", "cashclose.db", "BoltDB file path")
		databaseURL   = fs.StringLong("database-url", "", "Postgres connection string (store=postgres)")
		storagePath   = fs.StringLong("storage", "./sheets", "Directory for uploaded closing sheets")
		extractorType = fs.StringLong("extractor", "gemini", "Extraction provider: 'gemini' or 'ollama'")
		geminiKey     = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel   = fs.StringLong("gemini-model", extraction.DefaultGeminiModel, "Google Gemini model name")
		geminiTimeout = fs.DurationLong("gemini-timeout", 0, "Gemini request timeout (0 for none)")
		ollamaURL     = fs.StringLong("ollama-url", extraction.DefaultOllamaURL, "Ollama API base URL")
		ollamaModel   = fs.StringLong("ollama-model", extraction.DefaultOllamaModel, "Ollama vision model name")
		ollamaTimeout = fs.DurationLong("ollama-timeout", 0, "Ollama request timeout (0 for none)")
		authUser      = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass      = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		scanRate      = fs.Float64Long("scan-rate", report.DefaultScanRate, "Scans allowed per minute (0 disables the limit)")
		scanBurst     = fs.IntLong("scan-burst", report.DefaultScanBurst, "Scans allowed back to back")
		showVersion   = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("CASHCLOSE"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	ctx := context.Background()

	slog.Info("Initializing database...", "store", *storeKind)
	db, err := report.OpenDB(ctx, report.StoreConfig{
		Kind:        *storeKind,
		BoltPath:    *dbPath,
		DatabaseURL: *databaseURL,
	})
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var extractor extraction.Extractor
	switch *extractorType {
	case "gemini":
		apiKey := *geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini extractor...", "model", *geminiModel)
		extractor, err = extraction.NewGemini(ctx, extraction.GeminiConfig{
			APIKey:  apiKey,
			Model:   *geminiModel,
			Timeout: *geminiTimeout,
		})
		if errors.Is(err, extraction.ErrMissingCredential) {
			slog.Error("Gemini API key is required. Set --gemini-key flag or GEMINI_API_KEY environment variable")
			os.Exit(1)
		}
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
	case "ollama":
		slog.Info("Initializing Ollama extractor...", "url", *ollamaURL, "model", *ollamaModel)
		extractor, err = extraction.NewOllama(extraction.OllamaConfig{
			BaseURL: *ollamaURL,
			Model:   *ollamaModel,
			Timeout: *ollamaTimeout,
		})
		if err != nil {
			slog.Error("Failed to initialize Ollama", "error", err)
			os.Exit(1)
		}
	default:
		slog.Error("Invalid extractor type", "type", *extractorType, "valid", "gemini or ollama")
		os.Exit(1)
	}
	defer extractor.Close()

	slog.Info("Initializing storage...", "path", *storagePath)
	archive, err := report.NewLocalArchive(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	service := report.NewService(db, extractor, archive, report.NewMetrics())

	basicAuth := report.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := report.NewServer(service, basicAuth,
		report.WithScanLimiter(report.NewScanLimiter(*scanRate, *scanBurst)),
	)

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}
