package main

import (
	"context"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/rebind-dev/rebind/internal/config"
	"github.com/rebind-dev/rebind/internal/errors"
	"github.com/rebind-dev/rebind/pkg/bind"
	"github.com/rebind-dev/rebind/pkg/server"
	"github.com/rebind-dev/rebind/pkg/snapshot"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		address    string
		jsonLogs   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the bound document",
		Long: `Serve the configured document over HTTP.

The document is parsed once, bound to the reference graph, and kept
in memory. Mutation verbs arrive on the JSON API; mirrors connect
on /ws and receive every patch batch.

Examples:
  rebind serve
  rebind serve --address=:3000
  rebind serve --config=./examples/todo/rebind.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, address, jsonLogs)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to rebind.json (default ./rebind.json)")
	cmd.Flags().StringVarP(&address, "address", "a", "", "Listen address (default from rebind.json)")
	cmd.Flags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")

	return cmd
}

func runServe(configPath, address string, jsonLogs bool) error {
	logger := newLogger(jsonLogs)
	slog.SetDefault(logger)

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if address != "" {
		cfg.Server.Address = address
	}

	root, err := loadDocument(cfg)
	if err != nil {
		return err
	}
	graph, err := loadGraph(cfg)
	if err != nil {
		return err
	}

	doc, err := server.NewDocument(root, graph, bind.WithConfig(bindConfig(cfg)))
	if err != nil {
		return errors.New(errors.CategoryDocument, "cannot bind document").Wrap(err)
	}

	srv := server.New(doc, &server.Config{Address: cfg.Server.Address})
	srv.SetLogger(logger)

	store, err := newSnapshotStore(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		srv.SetSnapshotStore(store)
	}

	logger.Info("document bound",
		"document", cfg.Document,
		"graph", cfg.Graph,
		"address", cfg.Server.Address)

	return srv.Run()
}

// newSnapshotStore builds the configured snapshot store, or nil when
// snapshots are disabled.
func newSnapshotStore(cfg *config.Config) (snapshot.Store, error) {
	switch cfg.Snapshot.Store {
	case "":
		return nil, nil
	case "memory":
		return snapshot.NewMemoryStore(), nil
	case "s3":
		if cfg.Snapshot.Bucket == "" {
			return nil, errors.New(errors.CategorySnapshot, "s3 store requires a bucket").
				WithSuggestion(`set "snapshot.bucket" in rebind.json`)
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.New(errors.CategorySnapshot, "cannot load AWS config").Wrap(err)
		}
		return snapshot.NewS3Store(s3.NewFromConfig(awsCfg), cfg.Snapshot.Bucket, cfg.Snapshot.Prefix), nil
	default:
		return nil, errors.Newf(errors.CategorySnapshot, "unknown snapshot store %q", cfg.Snapshot.Store).
			WithSuggestion(`use "memory" or "s3"`)
	}
}

func newLogger(jsonLogs bool) *slog.Logger {
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
