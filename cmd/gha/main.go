package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/davidmanzanoai/github-analytics/internal/adapter/cli"
	githubadapter "github.com/davidmanzanoai/github-analytics/internal/adapter/github"
	"github.com/davidmanzanoai/github-analytics/internal/adapter/llm/anthropic"
	llmhttp "github.com/davidmanzanoai/github-analytics/internal/adapter/llm/http"
	"github.com/davidmanzanoai/github-analytics/internal/adapter/observability"
	"github.com/davidmanzanoai/github-analytics/internal/adapter/output/json"
	"github.com/davidmanzanoai/github-analytics/internal/adapter/output/markdown"
	"github.com/davidmanzanoai/github-analytics/internal/adapter/repository"
	storeAdapter "github.com/davidmanzanoai/github-analytics/internal/adapter/store"
	"github.com/davidmanzanoai/github-analytics/internal/adapter/store/sqlite"
	"github.com/davidmanzanoai/github-analytics/internal/config"
	"github.com/davidmanzanoai/github-analytics/internal/domain"
	"github.com/davidmanzanoai/github-analytics/internal/redaction"
	"github.com/davidmanzanoai/github-analytics/internal/usecase/analysis"
	"github.com/davidmanzanoai/github-analytics/internal/usecase/answer"
	"github.com/davidmanzanoai/github-analytics/internal/usecase/session"
	"github.com/davidmanzanoai/github-analytics/internal/version"
)

func main() {
	if err := run(); err != nil {
		// Redact API keys from URLs in error messages before logging
		log.Println(llmhttp.RedactURLSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "gha",
		EnvPrefix:   "GHA",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	obs := buildObservability(cfg.Observability)

	var usecaseLogger *observability.SessionLogger
	if obs.logger != nil {
		usecaseLogger = observability.NewSessionLogger(obs.logger)
	}

	// Repository data client and the components built on it
	githubClient := githubadapter.NewClient(cfg.GitHub.Token)
	if cfg.GitHub.BaseURL != "" {
		githubClient.SetBaseURL(cfg.GitHub.BaseURL)
	}
	githubClient.SetTimeout(llmhttp.ParseTimeout(cfg.GitHub.Timeout, 10*time.Second))
	source := githubadapter.NewDataSource(githubClient)

	var redactor analysis.Redactor
	if cfg.Redaction.Enabled {
		redactor = redaction.NewEngine()
	}

	contexts := analysis.NewContextBuilder(source, redactor)
	analyzer := analysis.NewAnalyzer(source, redactor)

	// Answering service: Anthropic Messages client behind the model port
	anthropicClient := anthropic.NewHTTPClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
	if cfg.Anthropic.BaseURL != "" {
		anthropicClient.SetBaseURL(cfg.Anthropic.BaseURL)
	}
	anthropicClient.SetTimeout(llmhttp.ParseTimeout(cfg.Anthropic.Timeout, 60*time.Second))
	anthropicClient.SetObservability(obs.logger, obs.metrics, obs.pricing)
	provider := anthropic.NewProvider(anthropicClient, cfg.Anthropic.MaxTokens, cfg.Anthropic.Temperature)

	var answerOpts []answer.Option
	if usecaseLogger != nil {
		answerOpts = append(answerOpts, answer.WithLogger(usecaseLogger))
	}
	answering := answer.NewService(provider, contexts, answerOpts...)

	// Session history store if enabled; failures disable history but never
	// block the conversation path.
	var recorder session.Recorder
	var history cli.HistoryLister
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0o755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				recorder = storeAdapter.NewBridge(sqliteStore)
				history = sqliteStore
				defer func() { _ = sqliteStore.Close() }()
			}
		}
	}

	newSession := func() (*session.Session, error) {
		if cfg.Anthropic.APIKey == "" {
			return nil, &domain.ConfigurationError{
				Reason: "no Anthropic API key configured; set ANTHROPIC_API_KEY or anthropic.apiKey",
			}
		}
		var opts []session.Option
		if recorder != nil {
			opts = append(opts, session.WithRecorder(recorder))
		}
		if usecaseLogger != nil {
			opts = append(opts, session.WithLogger(usecaseLogger))
		}
		return session.New(answering, opts...), nil
	}

	// Timestamp function for deterministic output file naming
	nowFunc := func() string {
		return time.Now().UTC().Format("20060102T150405Z")
	}

	var metrics cli.Metrics
	if obs.metrics != nil {
		metrics = obs.metrics
	}

	root := cli.NewRootCommand(cli.Dependencies{
		NewSession:    newSession,
		Resolver:      repository.NewResolver(),
		Analyzer:      analyzer,
		History:       history,
		Markdown:      markdown.NewWriter(nowFunc),
		JSON:          json.NewWriter(nowFunc),
		Metrics:       metrics,
		DefaultOutput: cfg.Output.Directory,
		Version:       version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "gha"))
	}
	return paths
}

// observabilityComponents holds shared observability instances
type observabilityComponents struct {
	logger  llmhttp.Logger
	metrics llmhttp.Metrics
	pricing llmhttp.Pricing
}

// buildObservability creates observability components based on configuration
func buildObservability(cfg config.ObservabilityConfig) observabilityComponents {
	var logger llmhttp.Logger
	var metrics llmhttp.Metrics

	if cfg.Logging.Enabled {
		logLevel := llmhttp.LogLevelInfo
		switch cfg.Logging.Level {
		case "debug":
			logLevel = llmhttp.LogLevelDebug
		case "error":
			logLevel = llmhttp.LogLevelError
		}

		logFormat := llmhttp.LogFormatHuman
		if cfg.Logging.Format == "json" {
			logFormat = llmhttp.LogFormatJSON
		}

		logger = llmhttp.NewDefaultLogger(logLevel, logFormat, cfg.Logging.RedactAPIKeys)
	}

	if cfg.Metrics.Enabled {
		metrics = llmhttp.NewDefaultMetrics()
	}

	return observabilityComponents{
		logger:  logger,
		metrics: metrics,
		pricing: llmhttp.NewDefaultPricing(),
	}
}
