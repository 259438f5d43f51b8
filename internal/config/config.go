// Package config provides YAML-based configuration management for the
// model validation service.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AppConfig represents the root configuration structure
type AppConfig struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// Storage configuration
	Storage StorageConfig `yaml:"storage"`

	// Validation pipeline configuration
	Validation ValidationConfig `yaml:"validation"`

	// External LLM backend configuration
	LLM LLMConfig `yaml:"llm"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bindAddress"`
	EnableCORS   bool   `yaml:"enableCors"`
	AllowOrigins string `yaml:"allowOrigins"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
	BodyLimit    string `yaml:"bodyLimit"`
}

// StorageConfig contains scratch workspace settings
type StorageConfig struct {
	WorkspaceDirectory string `yaml:"workspaceDirectory"`
}

// ValidationConfig contains archive inspection and analysis settings
type ValidationConfig struct {
	MaxArchiveEntries     int   `yaml:"maxArchiveEntries"`
	MaxExtractedBytes     int64 `yaml:"maxExtractedBytes"`
	MaxConcurrentAnalyses int   `yaml:"maxConcurrentAnalyses"`
}

// LLMConfig contains the external chat-completions backend settings.
// The API key is never written to the config file; it is read from the
// OPENROUTER_API_KEY environment variable.
type LLMConfig struct {
	APIKey         string `yaml:"-"`
	BaseURL        string `yaml:"baseUrl"`
	Model          string `yaml:"model"`
	SiteURL        string `yaml:"siteUrl"`
	SiteName       string `yaml:"siteName"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8080,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 180,
			IdleTimeout:  120,
			BodyLimit:    "100M",
		},
		Storage: StorageConfig{
			WorkspaceDirectory: "./data/workspaces",
		},
		Validation: ValidationConfig{
			MaxArchiveEntries:     1000,
			MaxExtractedBytes:     256 * 1024 * 1024,
			MaxConcurrentAnalyses: 4,
		},
		LLM: LLMConfig{
			BaseURL:        "https://openrouter.ai/api/v1",
			Model:          "deepseek/deepseek-r1-0528-qwen3-8b:free",
			SiteURL:        "http://localhost:3000",
			SiteName:       "Model Validator API",
			TimeoutSeconds: 60,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.applyEnvironmentOverrides()
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save saves the configuration to a YAML file
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Model Validator API configuration\n# This file is auto-generated on first run\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that required settings are present.
// The API credential is mandatory; the process must not start without it.
func (c *AppConfig) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY environment variable is not set")
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dir := os.Getenv("WORKSPACE_DIR"); dir != "" {
		c.Storage.WorkspaceDirectory = dir
	}

	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}

	if url := os.Getenv("OPENROUTER_BASE_URL"); url != "" {
		c.LLM.BaseURL = url
	}

	if model := os.Getenv("MODEL_NAME"); model != "" {
		c.LLM.Model = model
	}

	if siteURL := os.Getenv("SITE_URL"); siteURL != "" {
		c.LLM.SiteURL = siteURL
	}

	if siteName := os.Getenv("SITE_NAME"); siteName != "" {
		c.LLM.SiteName = siteName
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.WorkspaceDirectory) {
		c.Storage.WorkspaceDirectory = filepath.Join(configDir, c.Storage.WorkspaceDirectory)
	}
}

// GetWorkspaceDir returns the absolute workspace base directory path
func (c *AppConfig) GetWorkspaceDir() string {
	return c.Storage.WorkspaceDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}
