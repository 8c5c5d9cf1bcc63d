/*
Package config reads the service configuration from the environment. A .env
file in the working directory is loaded automatically.
*/
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config is built once at startup and treated as read-only afterwards.
type Config struct {
	// Port specifies the TCP port the server will listen on.
	Port int

	// Provider selects the model backend: "gemini" or "openai".
	Provider string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// LLMTimeout bounds a single outbound provider HTTP call.
	LLMTimeout time.Duration

	// AllowOrigins is the CORS allow-list.
	AllowOrigins []string

	LogLevel  string
	LogPretty bool
}

// Load reads the environment. Invalid values fall back to their defaults;
// credentials are not checked here.
func Load() Config {
	// Attempt to parse port from environment; fallback to 8080 if not set or invalid.
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil || port <= 0 {
		port = 8080
	}

	timeout, err := time.ParseDuration(os.Getenv("LLM_TIMEOUT"))
	if err != nil || timeout <= 0 {
		timeout = 30 * time.Second
	}

	pretty, _ := strconv.ParseBool(os.Getenv("LOG_PRETTY"))

	return Config{
		Port:          port,
		Provider:      strings.ToLower(getEnv("LLM_PROVIDER", ProviderGemini)),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY")),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL: getEnv("GEMINI_API_BASE", "https://generativelanguage.googleapis.com/v1beta"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		LLMTimeout:    timeout,
		AllowOrigins:  splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPretty:     pretty,
	}
}

// Model returns the model identifier of the selected provider.
func (c Config) Model() string {
	if c.Provider == ProviderOpenAI {
		return c.OpenAIModel
	}
	return c.GeminiModel
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
