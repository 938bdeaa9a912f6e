package commands

import "fmt"

// debugMode prints each assistant tool call and its result
var debugMode bool

func init() {
	Register(&Command{
		Name:        "/debug",
		Description: "Toggle printing of assistant tool calls",
		Hidden:      true,
		Handler: func(args []string) bool {
			debugMode = !debugMode
			if debugMode {
				fmt.Println("Debug mode: ON (assistant tool calls will be shown)")
			} else {
				fmt.Println("Debug mode: OFF")
			}
			return false
		},
	})
}

// IsDebugMode returns whether debug mode is enabled
func IsDebugMode() bool {
	return debugMode
}
