package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//go:embed config.ini
var configTemplate string

const envTemplate = `# Gemini: an API key, or leave it empty to use Vertex AI with
# "gcloud auth application-default login".
GOOGLE_API_KEY=
GOOGLE_CLOUD_PROJECT=
GOOGLE_CLOUD_LOCATION=us-central1

# Other providers, selected with llm_provider in config.ini.
ANTHROPIC_API_KEY=
GROQ_API_KEY=
`

var initCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Create config.ini and .env in a new agent directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := scaffold(args[0])
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintln(cmd.OutOrStdout(), "created", f)
		}
		return nil
	},
}

// scaffold refuses to touch a directory that already has either file.
func scaffold(dir string) ([]string, error) {
	files := map[string]string{
		"config.ini": configTemplate,
		".env":       envTemplate,
	}
	order := []string{"config.ini", ".env"}

	for _, name := range order {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("%s already exists", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	var created []string
	for _, name := range order {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(files[name]), 0o600); err != nil {
			return created, err
		}
		created = append(created, path)
		logger.Info("Scaffolded file", zap.String("path", path))
	}
	return created, nil
}
