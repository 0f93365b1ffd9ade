// Package mcpserver exposes one dashboard session as Model Context Protocol
// tools so other agents can inspect and drive it.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opsbot/opsbot/internal/session"
	"github.com/opsbot/opsbot/internal/systems"
)

type ListSystemsParams struct {
	Query string `json:"query,omitempty" mcp:"free-text filter such as 'which servers are down' or 'memory over 80'; empty returns every system"`
}

type AskParams struct {
	Question string `json:"question" mcp:"natural-language question about system status"`
}

type EmptyParams struct{}

type Tools struct {
	sess *session.Session
}

func NewTools(sess *session.Session) *Tools {
	return &Tools{sess: sess}
}

// NewServer registers every tool on a fresh MCP server.
func NewServer(sess *session.Session, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "opsbot-mcp",
		Version: version,
	}, nil)

	t := NewTools(sess)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_systems",
		Description: "Lists monitored systems, optionally filtered by a free-text query (down/stopped, high memory, high cpu, running)",
	}, t.ListSystems)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_systems",
		Description: "Returns running/stopped counts and average CPU and memory of running systems",
	}, t.Summarize)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "simulate_updates",
		Description: "Applies one random telemetry update to every system and returns the new state",
	}, t.Simulate)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_opsbot",
		Description: "Answers a natural-language question about the current system data",
	}, t.Ask)

	return server
}

// Run serves the tools on stdin/stdout until ctx is done or the client
// disconnects.
func Run(ctx context.Context, sess *session.Session, version string) error {
	slog.Info("starting MCP server on stdio", "tools", 4)
	return NewServer(sess, version).Run(ctx, mcp.NewStdioTransport())
}

func textResult(text string, meta map[string]any) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		Meta:    meta,
	}
}

func errorResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func registryJSON(reg systems.Registry) (string, error) {
	data, err := json.Marshal(reg)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (t *Tools) ListSystems(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[ListSystemsParams]) (*mcp.CallToolResultFor[any], error) {
	query := params.Arguments.Query
	reg := t.sess.Filter(query)
	raw, err := registryJSON(reg)
	if err != nil {
		return errorResult(fmt.Sprintf("failed to encode systems: %v", err)), nil
	}
	return textResult(systems.Table(reg), map[string]any{
		"intent":  systems.Classify(query).String(),
		"count":   len(reg),
		"systems": raw,
	}), nil
}

func (t *Tools) Summarize(ctx context.Context, _ *mcp.ServerSession, _ *mcp.CallToolParamsFor[EmptyParams]) (*mcp.CallToolResultFor[any], error) {
	s := t.sess.Summary()
	text := fmt.Sprintf("Total: %d\nRunning: %d\nStopped: %d\nAvg CPU: %s\nAvg Memory: %s",
		s.Total, s.Running, s.Stopped, s.AvgCPURunning, s.AvgMemoryRunning)
	return textResult(text, map[string]any{
		"total":   s.Total,
		"running": s.Running,
		"stopped": s.Stopped,
	}), nil
}

func (t *Tools) Simulate(ctx context.Context, _ *mcp.ServerSession, _ *mcp.CallToolParamsFor[EmptyParams]) (*mcp.CallToolResultFor[any], error) {
	reg := t.sess.Mutate()
	return textResult(systems.Table(reg), map[string]any{"count": len(reg)}), nil
}

func (t *Tools) Ask(ctx context.Context, _ *mcp.ServerSession, params *mcp.CallToolParamsFor[AskParams]) (*mcp.CallToolResultFor[any], error) {
	entry, ok := t.sess.Ask(ctx, params.Arguments.Question)
	if !ok {
		return errorResult("question is required"), nil
	}
	return textResult(entry.Response, nil), nil
}
