// Package commands defines all Cobra CLI commands for the docrag binary.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/docuquest/docrag-go/internal/audit"
	"github.com/docuquest/docrag-go/internal/config"
	"github.com/docuquest/docrag-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docrag",
		Short: "DocRAG — document question answering over your own files",
		Long: `DocRAG indexes your documents (PDF, Word, Markdown, plain text) into a
Qdrant vector store and answers natural language questions about them,
citing the exact document chunks each answer is grounded on.

Non-English documents are translated to English before indexing so a single
query language covers the whole corpus.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.docrag/config.yaml).
See 'docrag --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A .env in the working directory is a convenience for local
			// development; absence is not an error.
			_ = godotenv.Load()

			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.docrag/config.yaml)")

	root.AddCommand(
		NewServeCmd(),
		NewIngestCmd(),
		NewAskCmd(),
		NewVersionCmd(),
	)

	return root
}
