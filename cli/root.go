package cli

import (
	"github.com/spf13/cobra"
)

// RootCmd builds the wishub-mcp command tree.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wishub-mcp",
		Short:         "WisHub MCP gateway",
		Long:          "Gateway that grounds generative model invocations in WisHub knowledge contexts.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("config", "", "path to a YAML configuration file")
	cmd.PersistentFlags().String("env-file", "", "path to a .env file loaded before configuration")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")
	cmd.PersistentFlags().Bool("log-source", false, "include source locations in logs")

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(versionCmd())
	return cmd
}
