package main

import (
	"github.com/spf13/cobra"

	"github.com/cristalexdent/clinicadmin/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve template, validation and import tools over MCP",
	Long: `Serve the resource catalog as Model Context Protocol tools:
list-resources, generate-template, validate-record and parse-import.

The tools never talk to the clinic API. The server speaks MCP on
stdin/stdout until the client disconnects.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return mcpserver.New(locales(cfg), cfg.StripHTML).ServeStdio()
	},
}
