package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	"github.com/fivetwenty-io/asyncstripe/internal/fakestripe"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const fakeServerShutdownTimeout = 5 * time.Second

// NewFakeServerCommand creates the fake-server command
func NewFakeServerCommand() *cobra.Command {
	var (
		addr    string
		apiKeys []string
	)

	cmd := &cobra.Command{
		Use:   "fake-server",
		Short: "Run an in-memory fake of the Stripe API",
		Long: `Serve an in-memory imitation of the Stripe API for local development.

Point the client at it with --api-base http://ADDR or STRIPE_API_BASE. Any
sk_ prefixed key is accepted unless --allow-key values are given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newServerLogger(viper.GetBool("verbose"))
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			fake := fakestripe.NewServer(
				fakestripe.WithLogger(logger),
				fakestripe.WithAPIKeys(apiKeys...),
			)

			server := &http.Server{
				Addr:              addr,
				Handler:           fake,
				ReadHeaderTimeout: constants.ShortHTTPTimeout,
			}

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}

			ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serveUntilDone(ctx, server, logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:12111", "address to listen on")
	cmd.Flags().StringArrayVar(&apiKeys, "allow-key", nil, "accept only these API keys")

	return cmd
}

func newServerLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("building server logger: %w", err)
	}

	return logger, nil
}

// serveUntilDone runs server until ctx is cancelled, then shuts it down.
func serveUntilDone(ctx context.Context, server *http.Server, logger *zap.Logger) error {
	errs := make(chan error, 1)

	go func() {
		logger.Info("fake stripe listening", zap.String("addr", server.Addr))
		errs <- server.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("fake server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), fakeServerShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down fake server: %w", err)
	}

	logger.Info("fake stripe stopped")

	return nil
}
