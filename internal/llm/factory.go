package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/opsbot/opsbot/internal/config"
)

var ErrMissingCredential = errors.New("llm credential not configured")

// New builds the client selected by cfg.LLMProvider.
func New(cfg *config.Config) (Client, error) {
	switch strings.ToLower(string(cfg.LLMProvider)) {
	case string(config.ProviderOpenAI):
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingCredential)
		}
		return NewOpenAI(OpenAIConfig{
			APIKey:   cfg.OpenAIAPIKey,
			BaseURL:  cfg.OpenAIBaseURL,
			Model:    cfg.OpenAIModel,
			Referrer: cfg.OpenRouterReferrer,
			Title:    cfg.OpenRouterTitle,
		}, Options{MaxTokens: cfg.LLMMaxTokens, Temperature: cfg.LLMTemperature}), nil
	case string(config.ProviderYandex):
		if cfg.YandexOAuthToken == "" || cfg.YandexFolderID == "" {
			return nil, fmt.Errorf("%w: YANDEX_OAUTH_TOKEN, YANDEX_FOLDER_ID", ErrMissingCredential)
		}
		return NewYandex(cfg.YandexOAuthToken, cfg.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLMProvider)
	}
}
