// Command coverage builds the availability and boundary artifacts from the
// ledger, publishes availability to Kafka, and serves the coverage API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/zip-coverage/internal/adapter/filestore"
	httpadapter "github.com/couchcryptid/zip-coverage/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/zip-coverage/internal/adapter/kafka"
	"github.com/couchcryptid/zip-coverage/internal/adapter/tigerweb"
	"github.com/couchcryptid/zip-coverage/internal/config"
	"github.com/couchcryptid/zip-coverage/internal/coverage"
	"github.com/couchcryptid/zip-coverage/internal/observability"
	"github.com/couchcryptid/zip-coverage/internal/pipeline"
	"github.com/couchcryptid/zip-coverage/internal/report"
	"github.com/couchcryptid/zip-coverage/internal/selection"
)

const version = "0.1.0"

// app is the state shared by every subcommand once config is loaded.
type app struct {
	envFile string
	strict  bool

	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	store   *filestore.Store
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "coverage",
		Short:         "Brand coverage map for Columbus ZIP codes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Optional .env file loaded before the environment")
	cmd.PersistentFlags().BoolVar(&a.strict, "strict", false, "Fail on malformed ledger entries (overrides LEDGER_STRICT)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "availability",
			Short: "Extract the ledger into the availability artifact",
			RunE:  func(cmd *cobra.Command, _ []string) error { return a.runAvailability(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "boundaries",
			Short: "Fetch ZIP boundaries from TIGERweb into the geometry artifact",
			RunE:  func(cmd *cobra.Command, _ []string) error { return a.runBoundaries(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "publish",
			Short: "Publish the availability table to Kafka",
			RunE:  func(cmd *cobra.Command, _ []string) error { return a.runPublish(cmd.Context()) },
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the coverage API",
			RunE:  func(cmd *cobra.Command, _ []string) error { return a.runServe(cmd.Context()) },
		},
		&cobra.Command{
			Use:               "version",
			Short:             "Print version information",
			PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "coverage version %s\n", version)
			},
		},
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cmd.Flags().Changed("strict") {
		cfg.LedgerStrict = a.strict
	}

	a.cfg = cfg
	a.logger = observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(a.logger)
	a.metrics = observability.NewMetrics()
	a.store = filestore.New(cfg.LedgerPath, cfg.AvailabilityPath, cfg.GeometryPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	cobra.OnFinalize(stop)
	cmd.SetContext(ctx)
	return nil
}

func (a *app) newPipeline() *pipeline.Pipeline {
	return pipeline.New(a.store, pipeline.Options{
		Strict:    a.cfg.LedgerStrict,
		BatchSize: a.cfg.BatchSize,
	}, a.logger, a.metrics)
}

func (a *app) runAvailability(ctx context.Context) error {
	_, err := a.newPipeline().BuildAvailability(ctx, a.store)
	return err
}

func (a *app) runBoundaries(ctx context.Context) error {
	client := tigerweb.NewClient(a.cfg.TigerwebURL, a.cfg.TigerwebZIPField, a.cfg.TigerwebTimeout, a.metrics, a.logger)
	_, err := a.newPipeline().FetchBoundaries(ctx, client, a.store)
	return err
}

func (a *app) runPublish(ctx context.Context) error {
	if err := a.cfg.ValidatePublish(); err != nil {
		return err
	}
	pub := kafkaadapter.NewPublisher(a.cfg.KafkaBrokers, a.cfg.KafkaAvailabilityTopic, a.logger)
	defer func() {
		if err := pub.Close(); err != nil {
			a.logger.Error("kafka publisher close error", "error", err)
		}
	}()
	_, err := a.newPipeline().Publish(ctx, pub)
	return err
}

func (a *app) runServe(ctx context.Context) error {
	gin.SetMode(gin.ReleaseMode)

	variant := selection.Variant{BrandFilter: a.cfg.BrandFilter, ExportPanel: a.cfg.ExportEnabled}
	renderer := report.NewCachedRenderer(report.NewPDFRenderer(), a.cfg.ReportCacheSize, a.metrics)
	svc := coverage.NewService(selection.NewHolder(variant), renderer, a.metrics, a.logger)

	// Missing artifacts keep the API up but not ready.
	if d, err := coverage.LoadDataset(a.store); err != nil {
		a.logger.Error("coverage artifacts not loaded", "error", err)
	} else {
		svc.SetDataset(d)
	}

	srv := httpadapter.NewServer(a.cfg.HTTPAddr, svc, svc, a.logger)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
	}
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", "error", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}
