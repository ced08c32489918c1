package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider selects which LLM backend to use.
type Provider string

// Supported LLM providers.
const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
)

// Config holds all configuration values.
type Config struct {
	// LLM backend
	LLMProvider     Provider
	LLMModel        string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string
	OllamaHost      string
	AWSRegion       string

	// Book source
	GutenbergBaseURL string
	FetchTimeout     time.Duration

	// Analysis cache
	CacheTTL time.Duration

	// HTTP server
	Port string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// fileConfig is the optional YAML config file shape. Environment variables
// take precedence over values set here.
type fileConfig struct {
	Provider         string `yaml:"provider"`
	Model            string `yaml:"model"`
	OpenAIBaseURL    string `yaml:"openai_base_url"`
	OllamaHost       string `yaml:"ollama_host"`
	AWSRegion        string `yaml:"aws_region"`
	GutenbergBaseURL string `yaml:"gutenberg_base_url"`
	FetchTimeout     string `yaml:"fetch_timeout"`
	CacheTTL         string `yaml:"cache_ttl"`
	Port             string `yaml:"port"`
	LogFile          string `yaml:"log_file"`
	LogLevel         string `yaml:"log_level"`
}

// Load reads configuration from the optional YAML file and environment
// variables. Precedence: env > file > default.
func Load() Config {
	file := loadFile()

	return Config{
		LLMProvider:     Provider(pick("BOOKGRAPH_LLM_PROVIDER", file.Provider, string(ProviderOpenAI))),
		LLMModel:        pick("BOOKGRAPH_LLM_MODEL", file.Model, "Llama-4-Maverick-17B-128E-Instruct"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   pick("OPENAI_BASE_URL", file.OpenAIBaseURL, "https://api.sambanova.ai/v1"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		OllamaHost:      pick("OLLAMA_HOST", file.OllamaHost, "http://localhost:11434"),
		AWSRegion:       pick("AWS_REGION", file.AWSRegion, "us-east-1"),

		GutenbergBaseURL: pick("BOOKGRAPH_GUTENBERG_URL", file.GutenbergBaseURL, "https://www.gutenberg.org"),
		FetchTimeout:     pickDuration("BOOKGRAPH_FETCH_TIMEOUT", file.FetchTimeout, 30*time.Second),

		CacheTTL: pickDuration("BOOKGRAPH_CACHE_TTL", file.CacheTTL, time.Hour),

		Port: pick("BOOKGRAPH_PORT", file.Port, "8485"),

		LogFile:  pick("BOOKGRAPH_LOG_FILE", file.LogFile, "/tmp/bookgraph.log"),
		LogLevel: parseLogLevel(pick("BOOKGRAPH_LOG_LEVEL", file.LogLevel, "INFO")),
	}
}

// loadFile reads the optional YAML config file. Location comes from
// BOOKGRAPH_CONFIG, falling back to ./bookgraph.yaml. A missing file is
// not an error.
func loadFile() fileConfig {
	path := os.Getenv("BOOKGRAPH_CONFIG")
	if path == "" {
		path = "bookgraph.yaml"
	}

	var fc fileConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return fc
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		slog.Warn("ignoring malformed config file", "path", path, "error", err)
		return fileConfig{}
	}
	return fc
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func pick(envKey, fileVal, defaultVal string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	if fileVal != "" {
		return fileVal
	}
	return defaultVal
}

func pickDuration(envKey, fileVal string, defaultVal time.Duration) time.Duration {
	for _, s := range []string{os.Getenv(envKey), fileVal} {
		if s == "" {
			continue
		}
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
