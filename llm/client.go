package llm

import (
	"context"
	"errors"
)

var (
	ErrMissingAPIKey    = errors.New("GEMINI_API_KEY environment variable not set")
	ErrEmptyPrompt      = errors.New("prompt cannot be empty")
	ErrNoResponse       = errors.New("no response from model")
	ErrTooManyToolCalls = errors.New("model kept calling tools without answering")
)

// ToolExecutor is called when the LLM wants to execute a tool.
// It receives the function name and arguments, and returns the result string.
type ToolExecutor func(name string, args map[string]any) string

// Client is a chat model. ChatWithTools runs the tool calling loop with
// system as the system instruction, falling back to Config.System when empty.
type Client interface {
	Chat(ctx context.Context, prompt string) (*Response, error)
	ChatWithConfig(ctx context.Context, prompt string, config *Config) (*Response, error)
	ChatWithTools(ctx context.Context, system, message string, history []*Message, tools []*Tool, executor ToolExecutor) (*Response, []*Message, error)
	Close() error
}
