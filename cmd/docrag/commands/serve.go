package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/docuquest/docrag-go/internal/answer"
	"github.com/docuquest/docrag-go/internal/logging"
	"github.com/docuquest/docrag-go/internal/provider"
	"github.com/docuquest/docrag-go/internal/rag"
	"github.com/docuquest/docrag-go/internal/server"
	"github.com/docuquest/docrag-go/internal/tracing"
)

// NewServeCmd constructs the `docrag serve` command, which starts the HTTP
// API for document upload and question answering.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the DocRAG HTTP server",
		Long: `Start the DocRAG HTTP server on localhost.

The server exposes a REST API for uploading documents (POST /api/upload),
asking questions about them (POST /api/query), and listing the indexed
corpus (GET /api/documents).

Examples:
  docrag serve
  docrag serve --port 9090
  MODEL_PROVIDER=azure docrag serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			chatModel, err := provider.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("serve: failed to initialise model provider: %w", err)
			}
			log.Info("provider initialised", slog.String("provider", getEnvOrDefault("MODEL_PROVIDER", "ollama")))

			vs, err := buildVectorStore(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer func() { _ = vs.Close() }()

			ledger, closeLedger := buildLedger(log)
			defer closeLedger()

			emb, err := buildEmbedder(log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			pipeline, err := buildPipeline(chatModel, emb, vs, ledger, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}

			retriever, err := rag.NewRetriever(emb, vs, 0)
			if err != nil {
				return fmt.Errorf("serve: failed to create retriever: %w", err)
			}

			composer, err := answer.NewComposer(retriever, chatModel)
			if err != nil {
				return fmt.Errorf("serve: failed to create answer composer: %w", err)
			}

			var origins []string
			if raw := os.Getenv("DOCRAG_ALLOWED_ORIGINS"); raw != "" {
				for _, o := range strings.Split(raw, ",") {
					if o = strings.TrimSpace(o); o != "" {
						origins = append(origins, o)
					}
				}
			}

			srv, err := server.New(pipeline, composer, ledger, &server.Config{
				Host:   host,
				Port:   port,
				Logger: log,
				Pingers: []server.Pinger{
					vs,
					server.NewLLMPinger(chatModel, "model"),
				},
				APIKey:         os.Getenv("DOCRAG_API_KEY"),
				AllowedOrigins: origins,
				RateLimit:      getEnvFloat("DOCRAG_RATE_LIMIT", 0),
				RateBurst:      getEnvInt("DOCRAG_RATE_BURST", 0),
				MaxUploadBytes: int64(getEnvInt("DOCRAG_MAX_UPLOAD_BYTES", 0)),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
