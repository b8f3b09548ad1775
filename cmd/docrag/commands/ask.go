package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docuquest/docrag-go/internal/answer"
	"github.com/docuquest/docrag-go/internal/logging"
	"github.com/docuquest/docrag-go/internal/provider"
	"github.com/docuquest/docrag-go/internal/rag"
)

// NewAskCmd constructs the `docrag ask` command, which answers a single
// natural language question from the indexed corpus and prints the answer
// with its citations.
func NewAskCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about your indexed documents",
		Long: `Ask a natural language question about documents previously indexed with
'docrag ingest' or the upload API.

The answer is grounded in the most relevant document chunks and each
source is cited below the answer.

Examples:
  docrag ask "what are the termination clauses in the contract?"
  docrag ask --top-k 5 "summarise the quarterly results"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			vs, err := buildVectorStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer func() { _ = vs.Close() }()

			retriever, err := rag.NewRetriever(emb, vs, 0)
			if err != nil {
				return fmt.Errorf("ask: failed to create retriever: %w", err)
			}

			composer, err := answer.NewComposer(retriever, chatModel)
			if err != nil {
				return fmt.Errorf("ask: failed to create answer composer: %w", err)
			}

			res, err := composer.Ask(ctx, args[0], topK)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Answer)
			if len(res.Citations) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "\nSources:")
				for _, c := range res.Citations {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s (chunk %s)\n", c.Source, c.ChunkIndex)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Number of document chunks to retrieve (default 3)")

	return cmd
}
