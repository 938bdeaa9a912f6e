package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"daybook/commands"
	"daybook/config"
	"daybook/export"
)

var Version = "dev"

// rootOptions holds the persistent flags shared by every subcommand
type rootOptions struct {
	configPath string
	backend    string
	verbose    bool
}

func main() {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "daybook",
		Short:   "daybook - tasks with due dates, day, week and month views",
		Version: Version,
		// With no subcommand, start the interactive prompt
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()
			return runREPL(s)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVarP(&opts.backend, "backend", "b", "", "Override storage backend (file, sqlite, postgres, memory)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every load and save of the task collection")

	rootCmd.AddCommand(runCmd(opts))
	rootCmd.AddCommand(exportCmd(opts))
	rootCmd.AddCommand(configCmd(opts))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <command> [args...]",
		Short: "Run a single slash command and exit",
		Example: `  daybook run /add Renew passport
  daybook run week`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			input := strings.Join(args, " ")
			if !strings.HasPrefix(input, "/") {
				input = "/" + input
			}
			_, err = commands.Execute(input)
			return err
		},
	}
}

func exportCmd(opts *rootOptions) *cobra.Command {
	var view, format, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a view of the tasks as pdf, csv or json",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := commands.ExportView(view, format, out)
			if err != nil {
				return err
			}
			fmt.Printf("Exported %d tasks to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&view, "view", "week", "View to export ("+strings.Join(commands.Views, ", ")+")")
	cmd.Flags().StringVarP(&format, "format", "f", "pdf", "Output format ("+strings.Join(export.Formats, ", ")+")")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file")
	cmd.MarkFlagRequired("out")

	return cmd
}

func configCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(opts)
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(configPath(opts))
		},
	})

	return cmd
}

func configPath(opts *rootOptions) string {
	if opts.configPath != "" {
		return opts.configPath
	}
	return config.DefaultPath()
}
