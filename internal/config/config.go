package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	// Registry source
	SystemsFilePath string `env:"SYSTEMS_FILE_PATH" envDefault:"systems.json"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`
	LLMMaxTokens     int         `env:"LLM_MAX_TOKENS" envDefault:"500"`
	LLMTemperature   float32     `env:"LLM_TEMPERATURE" envDefault:"0.7"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Web dashboard
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8501"`

	// Storage
	TranscriptLogPath string `env:"TRANSCRIPT_LOG_PATH" envDefault:"logs/transcript.jsonl"`

	// Sessions not used for this long are dropped; 0 keeps them forever
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`

	// Cron spec for automatic simulation, e.g. "@every 30s"; empty disables
	SimulateSchedule string `env:"SIMULATE_SCHEDULE"`

	// Telegram shell
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN"`
	AllowedUsers     []int64 `env:"ALLOWED_USERS" envSeparator:":"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// LoadDotEnv loads the given .env files into the process environment.
// A missing file is reported but is not fatal to the caller.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	return godotenv.Load(files...)
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.LLMMaxTokens <= 0 {
		return nil, fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", cfg.LLMMaxTokens)
	}
	return cfg, nil
}
