package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/model-validator/backend/internal/api"
	"github.com/model-validator/backend/internal/archive"
	"github.com/model-validator/backend/internal/config"
	"github.com/model-validator/backend/internal/llm"
	"github.com/model-validator/backend/internal/validate"
	"github.com/model-validator/backend/internal/workspace"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	configPath := filepath.Join(exeDir, "model-validator.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The API credential is mandatory; refuse to start without it.
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize workspace manager for per-request scratch directories
	workspaces, err := workspace.NewManager(cfg.GetWorkspaceDir(), logger)
	if err != nil {
		fmt.Printf("Failed to initialize workspace manager: %v\n", err)
		os.Exit(1)
	}

	// Initialize the LLM backend client
	client := llm.NewClient(llm.Config{
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
		SiteURL:  cfg.LLM.SiteURL,
		SiteName: cfg.LLM.SiteName,
		Timeout:  time.Duration(cfg.LLM.TimeoutSeconds) * time.Second,
	}, logger)

	// Initialize the validation pipeline
	pipeline := validate.NewPipeline(
		client,
		workspaces,
		archive.Limits{
			MaxEntries:    cfg.Validation.MaxArchiveEntries,
			MaxTotalBytes: cfg.Validation.MaxExtractedBytes,
		},
		cfg.Validation.MaxConcurrentAnalyses,
		logger,
	)

	handlers := api.NewHandlers(&api.Dependencies{
		Pipeline:  pipeline,
		Completer: client,
		Version:   Version,
		BuildTime: BuildTime,
	})

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, handlers)

	// Configure server with settings from config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	logger.Info("server.starting",
		"version", Version,
		"build_time", BuildTime,
		"addr", cfg.GetServerAddr(),
		"model", cfg.LLM.Model,
		"workspace_dir", cfg.GetWorkspaceDir(),
	)

	e.Logger.Fatal(e.StartServer(s))
}
