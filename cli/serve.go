package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/robertjwhitney/fake-braintree/config"
	"github.com/robertjwhitney/fake-braintree/gateway"
	"github.com/robertjwhitney/fake-braintree/handlers"
	"github.com/robertjwhitney/fake-braintree/logging"
	"github.com/robertjwhitney/fake-braintree/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway server",
	RunE:  runServe,
}

func init() {
	addServeFlags(serveCmd)
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().String("addr", "", "listen address (default from config, :3000)")
	cmd.Flags().Bool("decline-all-cards", false, "start with every charge declined")
	cmd.Flags().Bool("trace", false, "write request spans to stderr")
}

// loadConfig reads the config file and applies serve flags that were set
// explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if f := cmd.Flags().Lookup("addr"); f != nil && f.Changed {
		cfg.Addr = f.Value.String()
	}
	if f := cmd.Flags().Lookup("decline-all-cards"); f != nil && f.Changed {
		cfg.DeclineAllCards, _ = cmd.Flags().GetBool("decline-all-cards")
	}
	if f := cmd.Flags().Lookup("trace"); f != nil && f.Changed {
		cfg.Trace, _ = cmd.Flags().GetBool("trace")
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logFile, err := logging.OpenFile(cfg.LogFilePath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	log := logging.New(io.MultiWriter(os.Stdout, logFile), logging.ParseLevel(cfg.LogLevel))

	opts := []gateway.Option{
		gateway.WithLogger(log),
		gateway.WithLogFile(logFile),
	}
	journalPath := cfg.JournalPath
	if journalPath == "" {
		dir, err := os.MkdirTemp("", "fake-braintree-")
		if err != nil {
			return fmt.Errorf("failed to create journal dir: %w", err)
		}
		defer os.RemoveAll(dir)
		journalPath = filepath.Join(dir, "journal.db")
	}
	j, err := store.OpenJournal(journalPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer j.Close()
	opts = append(opts, gateway.WithJournal(j))

	gw := gateway.New(opts...)
	if cfg.DeclineAllCards {
		gw.DeclineAllCards()
	}

	var handlerOpts []handlers.Option
	var tp *sdktrace.TracerProvider
	if cfg.Trace {
		tp, err = newTracerProvider(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to start tracing: %w", err)
		}
		handlerOpts = append(handlerOpts, handlers.WithTracerProvider(tp))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.New(log, gw, cfg.MerchantID, handlerOpts...).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := withSignals(cmd.Context())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		log.Info("http listening",
			"addr", cfg.Addr,
			"merchant_id", cfg.MerchantID,
			"environment", cfg.Environment,
			"journal", j.Path(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	log.Info("shutting down")
	return errors.Join(srv.Shutdown(shutdownCtx), shutdownTracing(shutdownCtx, tp))
}

// withSignals returns a context canceled on SIGINT or SIGTERM.
func withSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(ch)
	}()

	return ctx, cancel
}
