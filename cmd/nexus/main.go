// Package main implements the nexus CLI: serve, run, tools, and info
// subcommands over the MCP tool server built by pkg/app.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nexuslabs/nexus/internal/config"
	"github.com/nexuslabs/nexus/internal/transport/stream"
	"github.com/nexuslabs/nexus/pkg/app"
)

var (
	version = "dev"

	configPath string
	logLevel   string
	useStdio   bool
	coreOnly   bool

	host string
	port uint16

	runArgsJSON string
	runFormat   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "nexus",
	Short:   "MCP tool server",
	Long:    "nexus runs a Model Context Protocol server exposing built-in, workflow, adapter, and plugin tools over stdio or HTTP.",
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().BoolVar(&useStdio, "stdio", false, "use the stdio transport instead of HTTP")
	rootCmd.PersistentFlags().BoolVar(&coreOnly, "core-only", false, "disable adapter tools regardless of config")

	serveCmd.Flags().StringVar(&host, "host", "", "override the configured bind host")
	serveCmd.Flags().Uint16Var(&port, "port", 0, "override the configured bind port")

	runCmd.Flags().StringVar(&runArgsJSON, "args", "{}", "tool arguments as a JSON object")
	runCmd.Flags().StringVar(&runFormat, "format", "text", "output format: text or json")

	rootCmd.AddCommand(serveCmd, runCmd, toolsCmd, infoCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if coreOnly {
		cfg.ExtrasEnabled = false
	}
	return cfg, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdio or HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if host != "" {
			cfg.Host = host
		}
		if port != 0 {
			cfg.Port = port
		}

		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		go a.StartScheduler(ctx)
		go a.WatchSecrets(ctx)

		if useStdio {
			transport := stream.NewStdio(os.Stdin, os.Stdout, a.Logger)
			return a.ServeStdio(ctx, transport)
		}
		return a.ServeHTTP(ctx)
	},
}

var runCmd = &cobra.Command{
	Use:   "run <tool>",
	Short: "Invoke a single tool and print its result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var arguments json.RawMessage
		if runArgsJSON != "" {
			arguments = json.RawMessage(runArgsJSON)
		} else {
			arguments = json.RawMessage(`{}`)
		}

		out, toolErr := a.Registry.Execute(cmd.Context(), args[0], arguments, a.State)
		if toolErr != nil {
			fmt.Fprintln(os.Stderr, toolErr.Error())
			os.Exit(1)
		}

		if runFormat == "json" {
			encoded, err := json.MarshalIndent(out.ToProtocol(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(encoded))
			if out.IsError {
				os.Exit(1)
			}
			return nil
		}

		for _, item := range out.Content {
			fmt.Println(item.Text)
		}
		if out.IsError {
			os.Exit(1)
		}
		return nil
	},
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List every registered tool",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		for _, tool := range a.Registry.List() {
			fmt.Printf("%-28s %s\n", tool.Name, tool.Description)
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print server name, version, and enabled adapters",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		a, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var adapterNames []string
		if cfg.ExtrasEnabled {
			for _, tool := range a.Registry.List() {
				if isAdapterTool(tool.Name) {
					adapterNames = append(adapterNames, tool.Name)
				}
			}
		}

		info := map[string]any{
			"name":           cfg.ServerName,
			"version":        cfg.ServerVersion,
			"extras_enabled": cfg.ExtrasEnabled,
			"database_path":  cfg.DatabasePath,
			"plugins":        len(cfg.Plugins),
			"adapters":       adapterNames,
		}

		encoded, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	},
}

var adapterPrefixes = []string{"llm.", "notify.", "git.", "web."}

func isAdapterTool(name string) bool {
	for _, prefix := range adapterPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
