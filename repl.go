package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"daybook/commands"
)

func runREPL(s *session) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "> ",
		HistoryFile:       s.cfg.HistoryPath(),
		AutoComplete:      completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "/quit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to start prompt: %w", err)
	}
	defer rl.Close()

	fmt.Printf("Welcome to daybook! %d tasks loaded. Type /help for available commands.\n", s.store.Len())
	if s.client == nil {
		fmt.Println("Chat is off. Set GEMINI_API_KEY to talk to the assistant.")
	}

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if handleInput(s, input) {
			return nil // quit signal
		}
	}
}

// handleInput runs one line of input and reports whether to quit. Plain
// text goes to the assistant.
func handleInput(s *session, input string) bool {
	if !strings.HasPrefix(input, "/") {
		if s.client == nil {
			fmt.Println("Commands start with /. Type /help for available commands.")
			return false
		}
		input = "/chat " + input
	}

	name := strings.ToLower(strings.Fields(input)[0])
	if name == "/chat" || s.client == nil {
		quit, err := commands.Execute(input)
		if err != nil {
			fmt.Printf("%v. Type /help for available commands.\n", err)
		}
		return quit
	}

	// Keep the assistant aware of what the user did directly
	quit, output, err := commands.ExecuteWithOutput(input)
	if err != nil {
		fmt.Printf("%v. Type /help for available commands.\n", err)
		return false
	}
	if output != "" {
		fmt.Println(output)
	}
	commands.AddCommandContext(input, output)
	return quit
}

func completer() *readline.PrefixCompleter {
	cmds := commands.List()
	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].Name < cmds[j].Name
	})

	items := make([]readline.PrefixCompleterInterface, 0, len(cmds))
	for _, cmd := range cmds {
		items = append(items, readline.PcItem(cmd.Name))
	}
	return readline.NewPrefixCompleter(items...)
}
