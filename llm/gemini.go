package llm

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"google.golang.org/genai"
)

// maxToolRounds bounds the tool calling loop of one ChatWithTools call
const maxToolRounds = 10

type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a client using GEMINI_API_KEY. A nil config
// means DefaultConfig.
func NewGeminiClient(ctx context.Context, config *Config) (*GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config == nil {
		config = DefaultConfig()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &GeminiClient{client: client, config: config}, nil
}

func (g *GeminiClient) Chat(ctx context.Context, prompt string) (*Response, error) {
	return g.ChatWithConfig(ctx, prompt, g.config)
}

func (g *GeminiClient) ChatWithConfig(ctx context.Context, prompt string, config *Config) (*Response, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	if config == nil {
		config = g.config
	}

	genConfig := &genai.GenerateContentConfig{
		MaxOutputTokens: config.MaxTokens,
		Temperature:     genai.Ptr(config.Temperature),
	}

	if config.System != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(config.System, genai.RoleUser)
	}

	result, err := g.client.Models.GenerateContent(ctx, config.Model, genai.Text(prompt), genConfig)
	if err != nil {
		return nil, err
	}

	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, ErrNoResponse
	}

	text, _ := splitParts(result.Candidates[0].Content)
	resp := &Response{
		Text:         text,
		FinishReason: string(result.Candidates[0].FinishReason),
	}
	addUsage(resp, result.UsageMetadata)
	return resp, nil
}

func (g *GeminiClient) ChatWithTools(ctx context.Context, system, message string, history []*Message, tools []*Tool, executor ToolExecutor) (*Response, []*Message, error) {
	if strings.TrimSpace(message) == "" {
		return nil, history, ErrEmptyPrompt
	}

	if system == "" {
		system = g.config.System
	}
	genConfig := &genai.GenerateContentConfig{
		MaxOutputTokens: g.config.MaxTokens,
		Temperature:     genai.Ptr(g.config.Temperature),
	}
	if system != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if decls := functionDeclarations(tools); len(decls) > 0 {
		genConfig.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	newHistory := make([]*Message, len(history), len(history)+1)
	copy(newHistory, history)
	newHistory = append(newHistory, &Message{Role: "user", Content: message})

	resp := &Response{}

	// Tool calling loop
	for round := 0; round < maxToolRounds; round++ {
		result, err := g.client.Models.GenerateContent(ctx, g.config.Model, historyContents(newHistory), genConfig)
		if err != nil {
			return nil, newHistory, err
		}
		addUsage(resp, result.UsageMetadata)

		if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
			return nil, newHistory, ErrNoResponse
		}

		candidate := result.Candidates[0]
		text, calls := splitParts(candidate.Content)

		// If no function calls, return the text response
		if len(calls) == 0 {
			newHistory = append(newHistory, &Message{Role: "assistant", Content: text})
			resp.Text = text
			resp.FinishReason = string(candidate.FinishReason)
			return resp, newHistory, nil
		}

		newHistory = append(newHistory, &Message{Role: "assistant", Content: text, ToolCalls: calls})
		for _, call := range calls {
			newHistory = append(newHistory, &Message{
				Role:       "tool",
				Content:    executor(call.Name, call.Arguments),
				ToolCallID: call.ID,
				ToolName:   call.Name,
			})
		}
	}

	return nil, newHistory, ErrTooManyToolCalls
}

func (g *GeminiClient) Close() error {
	// The genai client holds no resources that need releasing
	return nil
}

func addUsage(resp *Response, usage *genai.GenerateContentResponseUsageMetadata) {
	if usage == nil {
		return
	}
	resp.InputTokens += int64(usage.PromptTokenCount)
	resp.OutputTokens += int64(usage.CandidatesTokenCount)
	resp.TokensUsed += int64(usage.TotalTokenCount)
}

// splitParts separates the text of a model turn from its function calls
func splitParts(content *genai.Content) (string, []ToolCall) {
	var text []string
	var calls []ToolCall
	for _, part := range content.Parts {
		if part.FunctionCall != nil {
			calls = append(calls, ToolCall{
				ID:        part.FunctionCall.ID,
				Name:      part.FunctionCall.Name,
				Arguments: part.FunctionCall.Args,
			})
		}
		if part.Text != "" && !part.Thought {
			text = append(text, part.Text)
		}
	}
	return strings.Join(text, ""), calls
}

// historyContents converts the conversation to genai contents. Command
// context entries become user turns because Gemini only knows user and
// model roles.
func historyContents(history []*Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case "assistant":
			var parts []*genai.Part
			if msg.Content != "" {
				parts = append(parts, genai.NewPartFromText(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				part := genai.NewPartFromFunctionCall(call.Name, call.Arguments)
				part.FunctionCall.ID = call.ID
				parts = append(parts, part)
			}
			if len(parts) == 0 {
				continue
			}
			contents = append(contents, genai.NewContentFromParts(parts, genai.RoleModel))
		case "tool":
			part := genai.NewPartFromFunctionResponse(msg.ToolName, map[string]any{"result": msg.Content})
			part.FunctionResponse.ID = msg.ToolCallID
			contents = append(contents, genai.NewContentFromParts([]*genai.Part{part}, genai.RoleUser))
		case "system":
			contents = append(contents, genai.NewContentFromText("[context] "+msg.Content, genai.RoleUser))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	return contents
}

// functionDeclarations converts tools to genai declarations, sorted by name
func functionDeclarations(tools []*Tool) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decl := &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
		}
		if t.Parameters != nil && len(t.Parameters.Properties) > 0 {
			props := make(map[string]*genai.Schema, len(t.Parameters.Properties))
			for name, p := range t.Parameters.Properties {
				props[name] = &genai.Schema{
					Type:        schemaType(p.Type),
					Description: p.Description,
				}
			}
			decl.Parameters = &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   t.Parameters.Required,
			}
		}
		decls = append(decls, decl)
	}
	sort.Slice(decls, func(i, j int) bool {
		return decls[i].Name < decls[j].Name
	})
	return decls
}

func schemaType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeString
	}
}
