package cmd

import (
	"context"
	"fmt"
	"net"

	"github.com/arcanaland/spellbook/internal/api"
	spellhttp "github.com/arcanaland/spellbook/internal/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		listen         string
		requestLogging bool
		apiKeys        []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the card catalog over HTTP",
		Long: `Serve exposes the card document over a JSON HTTP API. Every change is
written back to the document before the response is sent.

Examples:
  spellbook serve
  spellbook serve --listen 127.0.0.1:9000 --api-key secret`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			if cmd.Flags().Changed("request-logging") {
				cfg.RequestLogging = requestLogging
			}
			keys := cfg.APIKeys()
			if cmd.Flags().Changed("api-key") {
				keys = apiKeys
			}

			s, err := a.openStore()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			catchCtrlC(cancel)

			srv := spellhttp.NewServer(a.logger, spellhttp.ServerConfig{
				EnableRequestLogging: cfg.RequestLogging,
				APIKeys:              keys,
				Gatherer:             prometheus.DefaultGatherer,
				Handlers:             []spellhttp.Handlers{api.New(a.logger, s, prometheus.DefaultRegisterer)},
				PublicHandlers:       []spellhttp.Handlers{api.Welcome{}},
			})

			ln, err := net.Listen("tcp", cfg.Listen)
			if err != nil {
				return fmt.Errorf("listening on %s: %w", cfg.Listen, err)
			}
			a.logger.Info("serving cards", "path", s.Path(), "cards", s.Len())
			return srv.Start(ctx, ln)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "Listening address (default from config, then :8080)")
	cmd.Flags().BoolVar(&requestLogging, "request-logging", false, "Log every HTTP request")
	cmd.Flags().StringSliceVar(&apiKeys, "api-key", nil, "API key required in the x-api-key header (repeatable)")
	return cmd
}
