package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/opentargets-agent/agentboot"
	"github.com/SaiNageswarS/opentargets-agent/schema"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type answerer interface {
	Name() string
	Execute(ctx context.Context, reporter agentboot.ProgressReporter, req *schema.GenerateAnswerRequest) (*schema.StreamComplete, error)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Chat with the team in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := mustApp(cmd.Context())
		defer a.Close()

		return repl(cmd.Context(), a.team.Root, os.Stdin, cmd.OutOrStdout())
	},
}

// repl asks every input line in one session until exit, quit or EOF.
func repl(ctx context.Context, root answerer, in io.Reader, out io.Writer) error {
	sessionID := uuid.NewString()
	reporter := agentboot.NewConsoleProgressReporter(out)
	scanner := bufio.NewScanner(in)

	fmt.Fprintf(out, "Session %s with %s. Type exit to quit.\n", sessionID, root.Name())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		_, err := root.Execute(ctx, reporter, &schema.GenerateAnswerRequest{Question: question, SessionId: sessionID})
		if err != nil {
			logger.Error("Run failed", zap.String("session_id", sessionID), zap.Error(err))
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}

	return scanner.Err()
}
