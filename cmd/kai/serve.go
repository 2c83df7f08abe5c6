package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kaicatering/kai/internal/fulfillment"
	"github.com/kaicatering/kai/internal/httpapi"
	"github.com/kaicatering/kai/internal/prompt"
	"github.com/kaicatering/kai/internal/recommend"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the recommendation and order HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := createStorage()
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			client, err := createLLMClient()
			if err != nil {
				return err
			}

			notifier, err := createNotifier()
			if err != nil {
				return err
			}

			composer, err := prompt.NewComposer(viper.GetString("locale"), nil)
			if err != nil {
				return err
			}

			logger := slog.Default()
			recommender := recommend.NewService(store, client, composer, retryOptions(), logger)
			pipeline := fulfillment.NewPipeline(store, notifier, logger)
			api := httpapi.New(recommender, pipeline, logger)

			addr := viper.GetString("server.addr")
			if addr == "" {
				addr = ":8080"
			}
			return api.Serve(cmd.Context(), addr)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
