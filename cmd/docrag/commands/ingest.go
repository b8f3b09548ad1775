package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docuquest/docrag-go/internal/extract"
	"github.com/docuquest/docrag-go/internal/logging"
	"github.com/docuquest/docrag-go/internal/provider"
)

// NewIngestCmd constructs the `docrag ingest` command, which indexes local
// document files into the Qdrant vector store.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Index local documents into the vector store",
		Long: `Extract, translate, chunk, and index local document files into the Qdrant
vector store so they can be queried with 'docrag ask' or the HTTP API.

Supported formats: PDF, Word (.docx), Markdown, plain text. Non-English
documents are translated to English before indexing; the stored chunks
keep the original language tag.

Required environment variables:
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: docrag-docs)
  QDRANT_API_KEY       Optional API key for authenticated clusters
  MODEL_PROVIDER       Chat/embedding backend: ollama, openai, azure (default: ollama)
  EMBEDDING_*          Provider-specific overrides (see README)

Examples:
  docrag ingest report.pdf
  docrag ingest docs/*.md notes.txt
  TRANSLATION_DISABLED=true docrag ingest bericht.docx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("ingest: failed to initialise model provider: %w", err)
			}

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			vs, err := buildVectorStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer func() { _ = vs.Close() }()

			ledger, closeLedger := buildLedger(log)
			defer closeLedger()

			pipeline, err := buildPipeline(chatModel, emb, vs, ledger, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			log.Info("starting ingestion", slog.Int("files", len(args)))

			var failed int
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					log.Error("read failed", slog.String("path", path), slog.Any("error", err))
					failed++
					continue
				}

				res, err := pipeline.Ingest(ctx, filepath.Base(path), data)
				if err != nil {
					if errors.Is(err, extract.ErrUnsupportedType) {
						log.Warn("skipping unsupported file type", slog.String("path", path))
					} else {
						log.Error("ingestion failed", slog.String("path", path), slog.Any("error", err))
					}
					failed++
					continue
				}

				log.Info("document indexed",
					slog.String("filename", res.Filename),
					slog.String("language", res.Language),
					slog.Int("chunks", res.TotalChunks),
				)
			}

			if failed > 0 {
				return fmt.Errorf("ingest: %d of %d files failed", failed, len(args))
			}
			log.Info("ingestion complete", slog.Int("files", len(args)))
			return nil
		},
	}

	return cmd
}
