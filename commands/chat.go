package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"daybook/llm"
)

// chatHistory stores the conversation history for the /chat command
var chatHistory []*llm.Message

// Session usage tracking
var (
	sessionInputTokens  int64
	sessionOutputTokens int64
	sessionPromptCount  int
)

// maxCommandContextEntries limits how many command context entries to keep
const maxCommandContextEntries = 10

// chatTimeout bounds one /chat exchange including its tool calls
const chatTimeout = 2 * time.Minute

// AddCommandContext adds a direct command and its output to the chat history
// so the LLM has context about recent user actions.
func AddCommandContext(command string, output string) {
	contextMsg := fmt.Sprintf("User ran: %s\nOutput: %s", command, output)
	chatHistory = append(chatHistory, &llm.Message{
		Role:    "system",
		Content: contextMsg,
	})

	// Trim old context entries to avoid unbounded growth
	// Keep only the most recent command context entries
	trimCommandContext()
}

// trimCommandContext removes old command context entries if there are too many
func trimCommandContext() {
	// Count system messages that are command context (not the initial system prompt)
	var contextCount int
	for _, msg := range chatHistory {
		if msg.Role == "system" && strings.HasPrefix(msg.Content, "User ran:") {
			contextCount++
		}
	}

	// Remove oldest context entries if over limit
	if contextCount > maxCommandContextEntries {
		toRemove := contextCount - maxCommandContextEntries
		var newHistory []*llm.Message
		for _, msg := range chatHistory {
			if toRemove > 0 && msg.Role == "system" && strings.HasPrefix(msg.Content, "User ran:") {
				toRemove--
				continue
			}
			newHistory = append(newHistory, msg)
		}
		chatHistory = newHistory
	}
}

func init() {
	Register(&Command{
		Name:        "/clearchat",
		Description: "Clear the chat conversation history",
		Hidden:      true,
		Handler: func(args []string) bool {
			chatHistory = nil
			fmt.Println("Chat history cleared.")
			return false
		},
	})

	Register(&Command{
		Name:        "/usage",
		Description: "Show session token usage statistics",
		Hidden:      true,
		Handler: func(args []string) bool {
			if sessionPromptCount == 0 {
				fmt.Println("No chat usage in this session yet.")
				return false
			}

			fmt.Println("Session Usage Statistics:")
			fmt.Printf("  Prompts:       %d\n", sessionPromptCount)
			fmt.Printf("  Input tokens:  %d\n", sessionInputTokens)
			fmt.Printf("  Output tokens: %d\n", sessionOutputTokens)
			fmt.Printf("  Total tokens:  %d\n", sessionInputTokens+sessionOutputTokens)
			return false
		},
	})

	Register(&Command{
		Name:        "/chat",
		Description: "Chat with the AI assistant",
		Hidden:      true, // Exclude from tool generation
		Params: []Param{
			{Name: "message", Type: ParamTypeString, Description: "The message to send to the assistant", Required: true},
		},
		Handler: func(args []string) bool {
			if len(args) == 0 {
				fmt.Println("Usage: /chat <message>")
				return false
			}

			client := GetLLMClient()
			if client == nil {
				fmt.Println("Error: LLM client not available. Set GEMINI_API_KEY environment variable.")
				return false
			}

			message := strings.Join(args, " ")
			tools := GenerateToolDefinitions()

			// Create the tool executor that runs commands and captures output
			executor := func(name string, fnArgs map[string]any) string {
				return executeTool(name, fnArgs)
			}

			ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
			defer cancel()
			response, newHistory, err := client.ChatWithTools(ctx, assistantPrompt(clock()), message, chatHistory, tools, executor)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				return false
			}

			// Update conversation history
			chatHistory = newHistory

			fmt.Println(response.Text)

			// Display usage statistics
			printUsageStats(response)
			return false
		},
	})
}

// executeTool runs a registered command on behalf of the assistant and
// returns what the command printed
func executeTool(name string, fnArgs map[string]any) string {
	cmd := GetByName(name)
	if cmd == nil || cmd.Hidden {
		return fmt.Sprintf("Error: unknown tool %s", name)
	}
	if cmd.Destructive {
		return fmt.Sprintf("Refused: %s needs confirmation. Ask the user to run %s themselves.", cmd.Name, cmd.Name)
	}

	cmdArgs := convertArgsToSlice(name, fnArgs)
	cmdStr := cmd.Name
	if len(cmdArgs) > 0 {
		cmdStr += " " + strings.Join(cmdArgs, " ")
	}

	if IsDebugMode() {
		fmt.Printf("[debug] tool call: %s\n", cmdStr)
	}

	output := captureOutput(func() {
		Execute(cmdStr)
	})

	if IsDebugMode() {
		fmt.Printf("[debug] tool result: %s\n", output)
	}
	return output
}

// printUsageStats displays token usage and updates session totals
func printUsageStats(response *llm.Response) {
	sessionInputTokens += response.InputTokens
	sessionOutputTokens += response.OutputTokens
	sessionPromptCount++

	// Only display if we have token data
	if response.TokensUsed == 0 && response.InputTokens == 0 && response.OutputTokens == 0 {
		return
	}

	fmt.Printf("\n[Tokens: %d in / %d out]\n", response.InputTokens, response.OutputTokens)
}

// convertArgsToSlice converts Gemini function call arguments to a string slice
// in the order expected by the command handler
func convertArgsToSlice(cmdName string, args map[string]any) []string {
	// Define the argument order for each command
	argOrder := map[string][]string{
		"add":      {"title"},
		"show":     {"task_id"},
		"rename":   {"task_id", "title"},
		"describe": {"task_id", "text"},
		"due":      {"task_id", "date", "time"},
		"status":   {"task_id", "status"},
		"start":    {"task_id"},
		"done":     {"task_id"},
		"undone":   {"task_id"},
		"toggle":   {"task_id"},
		"deltask":  {"task_id"},
		"sorted":   {"order"},
	}

	order, exists := argOrder[cmdName]
	if !exists {
		return nil
	}

	var result []string
	for _, key := range order {
		if val, ok := args[key]; ok {
			result = append(result, fmt.Sprintf("%v", val))
		}
	}

	// The description follows the title after a "--" separator
	if cmdName == "add" {
		if desc, ok := args["description"]; ok && fmt.Sprintf("%v", desc) != "" {
			result = append(result, "--", fmt.Sprintf("%v", desc))
		}
	}

	return result
}

// captureOutput captures stdout during execution of a function
func captureOutput(fn func()) string {
	// Save original stdout
	oldStdout := os.Stdout

	// Create a pipe
	r, w, err := os.Pipe()
	if err != nil {
		return fmt.Sprintf("Error capturing output: %v", err)
	}

	// Redirect stdout to the pipe
	os.Stdout = w
	defer func() { os.Stdout = oldStdout }()

	// Read in a goroutine so large output cannot fill the pipe and block fn
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		io.Copy(&buf, r)
		close(done)
	}()

	// Run the function
	fn()

	// Close the write end of the pipe and wait for read to complete
	w.Close()
	<-done
	r.Close()

	return strings.TrimSpace(buf.String())
}

// assistantPrompt is the system instruction for /chat, anchored to now
func assistantPrompt(now time.Time) string {
	today := now.Format("2006-01-02")
	weekday := now.Weekday().String()

	return fmt.Sprintf(`You are a helpful task management assistant for daybook.

TODAY'S DATE: %s (%s)

IMPORTANT RULES:
1. When a user refers to a task by TITLE, FIRST call "tasks" to find the task's ID.
2. NEVER ask the user for an ID. Always look it up using available tools.
3. Task IDs are shown as 8 characters, like "3f2a9c1d". Pass them exactly as shown.
4. Weeks run from Sunday to Saturday.
5. When setting due dates, use the current date above. "Today" means %s, "tomorrow" means the next day, etc.
6. Deleting a task needs the user's confirmation; tell them which command to run instead.

EXAMPLES:
- "what's due this week" -> call week
- "mark the dentist task done" -> call tasks, find its ID, then call done
- "due today at 5pm" -> call due with date %s and time 17:00`, today, weekday, today, today)
}
