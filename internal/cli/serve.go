package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/microlog/internal/config"
	"github.com/roach88/microlog/internal/engine"
	"github.com/roach88/microlog/internal/firehose"
	"github.com/roach88/microlog/internal/monitoring"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	ConfigPath string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over HTTP with a websocket firehose",
		Long: `Start the ledger engine and expose it over HTTP.

The server accepts mutations on POST /ops, serves reads on /tweets and
/accounts, and streams accepted-operation notifications to websocket
subscribers on /subscribe.

Example:
  microlog serve
  microlog serve --config ./microlog.cue --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveLedger(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to CUE config file (default: built-in defaults)")

	return cmd
}

func serveLedger(opts *ServeOptions, cmd *cobra.Command) error {
	// In serve mode the default warn-level logging is too quiet.
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
	}
	slog.Info("config loaded",
		"db_path", cfg.DBPath,
		"listen_addr", cfg.ListenAddr,
		"subscriber_buffer", cfg.SubscriberBuffer,
		"metrics", cfg.Metrics,
	)

	monitoring.Register()

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	st, eng, err := openLedger(ctx, cfg.DBPath, nil)
	if err != nil {
		return err
	}
	defer closeStore(st)

	srv := firehose.NewServer(eng, st, firehose.Options{
		SubscriberBuffer: cfg.SubscriberBuffer,
		Metrics:          cfg.Metrics,
	})
	eng.SetNotifier(engine.NewFanoutNotifier(srv, engine.LogNotifier{}))

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	engineErr := make(chan error, 1)
	go func() {
		engineErr <- eng.Run(ctx)
	}()

	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: srv.Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown error", "error", err)
		}
	}()

	slog.Info("serving", "addr", cfg.ListenAddr)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		cancel()
		<-engineErr
		return WrapExitError(ExitCommandError, "http server error", err)
	}

	cancel()
	if err := <-engineErr; err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "engine error", err)
	}

	slog.Info("stopped gracefully")
	return nil
}
