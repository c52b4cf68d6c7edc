package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yildizm/mclogsum/internal/emoji"
	"github.com/yildizm/mclogsum/internal/server"
	"github.com/yildizm/mclogsum/internal/upload"
)

var (
	serveAddr   string
	serveStatic string
)

func newServeCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Serve the diagnosis pipeline over HTTP.

Routes:
  GET  /health          service status
  POST /api/extract     multipart "file": extracted fields and the raw log
  POST /api/analyze     multipart "file": full diagnosis report
  POST /api/gemini      {"log", "proxy", "fields"}: Gemini explanation
  POST /proxy/gemini    raw Gemini request relayed upstream

AI routes answer 503 until an API key is configured.`,
		Example: `  mclogsum serve
  mclogsum serve --addr :8080 --static ./public`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, version)
		},
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.address)")
	cmd.Flags().StringVar(&serveStatic, "static", "", "directory served at / (default server.static_dir)")

	return cmd
}

func runServe(cmd *cobra.Command, version string) error {
	loaded, err := loadConfig()
	if err != nil {
		return err
	}
	cfg := *loaded
	if serveAddr != "" {
		cfg.Server.Address = serveAddr
	}
	if serveStatic != "" {
		cfg.Server.StaticDir = serveStatic
	}

	log := newLogger("serve")

	pipeline, err := buildPipeline(&cfg, "", nil)
	if err != nil {
		return err
	}

	uploads, err := upload.NewStore(cfg.Storage.TempDir, cfg.Analysis.MaxFileSize, log.WithComponent("upload"))
	if err != nil {
		return err
	}

	opts := server.Options{
		Config:    &cfg,
		Diagnoser: pipeline,
		Uploads:   uploads,
		Logger:    log.WithComponent("server"),
		Version:   version,
	}

	if cfg.AI.Enabled() {
		provider, err := newGemini(&cfg)
		if err != nil {
			return fmt.Errorf("failed to create AI provider: %w", err)
		}
		defer func() {
			if err := provider.Close(); err != nil {
				log.Warn("failed to close AI provider: %v", err)
			}
		}()
		opts.Summarizer = provider
		opts.Forwarder = provider
	} else {
		log.Warn("AI routes disabled: no API key configured")
	}

	srv, err := server.New(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.ErrOrStderr(), "%s Listening on %s\n", emoji.GetEmoji("server"), cfg.Server.Address)
	return srv.Start(ctx)
}
