// Package narrator answers free-text questions about the registry by handing
// the whole dataset to a language model.
package narrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opsbot/opsbot/internal/llm"
	"github.com/opsbot/opsbot/internal/metrics"
	"github.com/opsbot/opsbot/internal/systems"
)

const UnavailableMessage = "Language model client is not available. Please check your API key configuration."

// errorPrefix starts every answer produced from a failed model call.
const errorPrefix = "Error querying language model: "

// Failed reports whether answer stands in for a reply the model never gave.
func Failed(answer string) bool {
	return answer == UnavailableMessage || strings.HasPrefix(answer, errorPrefix)
}

const promptTemplate = `You are an AI assistant for a system monitoring dashboard.
You have access to the following system data:

%s

Answer user questions about system status, CPU usage, memory usage, and provide helpful insights.
Be conversational and provide specific details from the data when relevant.
If asked about systems that are down or stopped, mention which ones specifically.
For numerical queries (like "over 80%%"), provide exact values and system names.
`

// ServiceError is any failure of the language model call: transport, auth,
// rate limiting or an empty completion.
type ServiceError struct {
	Err error
}

func (e *ServiceError) Error() string { return "language model service: " + e.Err.Error() }
func (e *ServiceError) Unwrap() error { return e.Err }

type Responder struct {
	client llm.Client
}

// New returns a responder. A nil client is allowed; every answer then
// explains that the model is not configured.
func New(client llm.Client) *Responder {
	return &Responder{client: client}
}

// SystemPrompt renders the fixed instruction with the full registry embedded.
func SystemPrompt(reg systems.Registry) string {
	return fmt.Sprintf(promptTemplate, systems.Table(reg))
}

func Messages(question string, reg systems.Registry) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: SystemPrompt(reg)},
		{Role: llm.RoleUser, Content: question},
	}
}

// Answer never fails. Service errors come back as readable text so the
// caller can show them like any other reply.
func (r *Responder) Answer(ctx context.Context, question string, reg systems.Registry) string {
	text, err := r.ask(ctx, question, reg)
	if err != nil {
		metrics.LLMErrors.Inc()
		slog.Warn("language model call failed", "error", err)
		return errorPrefix + err.Error()
	}
	return text
}

func (r *Responder) ask(ctx context.Context, question string, reg systems.Registry) (string, error) {
	if r.client == nil {
		return UnavailableMessage, nil
	}
	metrics.Questions.Inc()
	resp, err := r.client.Generate(ctx, Messages(question, reg))
	if err != nil {
		return "", &ServiceError{Err: err}
	}
	slog.Debug("language model answered",
		"model", resp.Model,
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens,
		"total_tokens", resp.TotalTokens)
	return strings.TrimSpace(resp.Content), nil
}
