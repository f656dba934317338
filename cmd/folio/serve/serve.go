// Package servecmder provides the serve command running the folio HTTP API.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/folio/api"
	"github.com/papercomputeco/folio/cmd/folio/stack"
	"github.com/papercomputeco/folio/pkg/config"
	"github.com/papercomputeco/folio/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

const serveLongDesc string = `Run the folio API server.

Routes:
  GET /ping                       Health check
  GET /books                      Filtered catalog, ranked by ?sort=closeness|betweenness
  GET /books/similar              Cosine similarity search for ?keyword=
  GET /books/suggestions?ids=     Neighbor suggestions
  GET /books/:id/neighbors        Stored Jaccard neighbors of one book

Medium result sets are ranked by a background worker pool; their first
response is unsorted and marked pending.

With --log-file, records are also appended as JSON lines to the given file.

Examples:
  folio serve
  folio serve --log-file .folio/serve.log
  folio serve --listen :9000 --storage postgres --postgres postgres://localhost/folio`

const serveShortDesc string = "Run the API server"

type ServeCommander struct {
	storage config.StorageConfig
	listen  string
	logFile string
}

var serveFlags = []string{config.FlagStorage, config.FlagSQLite, config.FlagPostgres, config.FlagAPIListen}

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.FolioFlags, config.FlagStorage, &cmder.storage.Provider)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagSQLite, &cmder.storage.SQLitePath)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagPostgres, &cmder.storage.PostgresDSN)
	config.AddStringFlag(cmd, config.FolioFlags, config.FlagAPIListen, &cmder.listen)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also append JSON logs to this file")

	return cmd
}

func (c *ServeCommander) run(cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := stack.Logger(cmd)

	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		debug, _ := cmd.Flags().GetBool("debug")
		log = logger.Multi(log, logger.New(
			logger.WithDebug(debug),
			logger.WithJSON(true),
			logger.WithSource(debug),
			logger.WithWriter(f),
		))
	}

	cfg, configDir, err := stack.Resolve(cmd, serveFlags)
	if err != nil {
		return err
	}

	driver, err := stack.OpenDriver(ctx, cfg, configDir, log)
	if err != nil {
		return err
	}
	defer driver.Close()

	engines, err := stack.NewEngines(driver, cfg, log)
	if err != nil {
		return err
	}
	defer engines.Close()

	server, err := api.NewServer(api.Config{ListenAddr: cfg.API.Listen}, api.Dependencies{
		Store:    driver,
		Search:   engines.Search,
		Resolver: engines.Orchestrator,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		log.Info("received signal, shutting down", "signal", sig.String())
	case <-ctx.Done():
		log.Info("context done, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
