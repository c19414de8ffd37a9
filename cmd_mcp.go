package main

import (
	"github.com/SaiNageswarS/opentargets-agent/mcpserver"
	"github.com/SaiNageswarS/opentargets-agent/tools"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the Open Targets tools and the team to MCP clients over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustApp(cmd.Context())
		defer a.Close()

		return mcpserver.Serve(mcpserver.New(version, tools.OpenTargetsTools(a.client), a.team.Root))
	},
}
