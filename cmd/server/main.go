package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/classroomhelper/notes-assistant/api"
	"github.com/classroomhelper/notes-assistant/internal/ai"
	"github.com/classroomhelper/notes-assistant/internal/config"
	"github.com/classroomhelper/notes-assistant/internal/models"
	"github.com/classroomhelper/notes-assistant/internal/observability"
	"github.com/classroomhelper/notes-assistant/internal/ocr"
	"github.com/classroomhelper/notes-assistant/internal/session"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "notes-assistant",
		Short:         "Turn photos of classroom notes into summaries, quizzes and activities",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML configuration file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newProcessCmd(&configPath))
	return root
}

// app holds the wired components shared by every command
type app struct {
	config   *models.Config
	logger   zerolog.Logger
	engine   ocr.Engine
	provider ai.Provider
	flow     *session.Flow
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := observability.NewLogger(cfg.Log, os.Stderr)

	engine, err := ocr.NewEngine(cfg.OCR)
	if err != nil {
		return nil, err
	}
	provider, err := ai.NewProvider(ctx, cfg.AI)
	if err != nil {
		return nil, err
	}

	flow := session.NewFlow(
		ocr.NewExtractor(engine, cfg.OCR.Timeout, logger),
		ai.NewCompleter(provider, cfg.AI.Timeout, logger),
		logger,
	)

	return &app{config: cfg, logger: logger, engine: engine, provider: provider, flow: flow}, nil
}

func (a *app) close() {
	if c, ok := a.provider.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("provider close failed")
		}
	}
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	handler := api.NewHandler(a.config, a.flow, a.engine, a.provider, a.logger)
	router := handler.SetupRoutes()

	addr := fmt.Sprintf("%s:%d", a.config.Host, a.config.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.logger.Info().
		Str("addr", addr).
		Str("version", api.Version).
		Str("ocr_engine", a.engine.Name()).
		Str("ai_provider", a.provider.Name()).
		Str("model", a.provider.Model()).
		Msg("starting notes assistant")
	a.logger.Info().Msgf("  GET  http://%s/              - Upload page", addr)
	a.logger.Info().Msgf("  POST http://%s/api/extract   - Extract and generate (multipart)", addr)
	a.logger.Info().Msgf("  POST http://%s/api/generate  - Generate for extracted text", addr)
	a.logger.Info().Msgf("  GET  http://%s/health        - Health check", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		a.logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
