package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaicatering/kai/internal/cli"
	"github.com/kaicatering/kai/internal/storage"
)

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := createStorage()
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			if status {
				version, err := store.SchemaVersion(cmd.Context())
				if err != nil {
					return err
				}
				cmd.Printf("schema version: %d (expected %d)\n", version, storage.ExpectedSchemaVersion)
				return nil
			}

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
			cmd.Println(cli.SuccessStyle.Render("✓ database is up to date"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "show current schema version without migrating")
	return cmd
}
