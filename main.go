package main

import (
	"context"
	"os"

	"github.com/SaiNageswarS/go-api-boot/dotenv"
	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "otagent",
	Short:        "Open Targets research team",
	Long:         "A principal investigator agent that delegates to a data steward, a safety agent and a biologist backed by the Open Targets Platform.",
	SilenceUsage: true,
}

func main() {
	dotenv.LoadEnv()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.ini", "path to config.ini")
	rootCmd.AddCommand(runCmd, webCmd, mcpCmd, initCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.Error("Command failed", zap.Error(err))
		os.Exit(1)
	}
}
