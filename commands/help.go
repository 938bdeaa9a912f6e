package commands

import (
	"fmt"
	"sort"
)

func init() {
	Register(&Command{
		Name:        "/help",
		Description: "Show available commands",
		Hidden:      true,
		Handler: func(args []string) bool {
			cmds := List()
			sort.Slice(cmds, func(i, j int) bool {
				return cmds[i].Name < cmds[j].Name
			})

			// Task commands are the ones the assistant can also call
			fmt.Println("Task commands:")
			for _, cmd := range cmds {
				if !cmd.Hidden {
					fmt.Printf("  %-15s - %s\n", cmd.Name, cmd.Description)
				}
			}

			fmt.Println("\nSession commands:")
			for _, cmd := range cmds {
				if cmd.Hidden {
					fmt.Printf("  %-15s - %s\n", cmd.Name, cmd.Description)
				}
			}

			fmt.Println("\nTask IDs can be shortened to their first 6 or more characters.")
			return false
		},
	})
}
