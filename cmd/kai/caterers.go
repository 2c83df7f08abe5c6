package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kaicatering/kai/internal/cli"
	"github.com/kaicatering/kai/internal/model"
)

func caterersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "caterers",
		Short: "Manage the caterer catalog",
	}
	cmd.AddCommand(caterersListCmd())
	cmd.AddCommand(caterersImportCmd())
	return cmd
}

func caterersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := createStorage()
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			caterers, err := store.ListCaterers(cmd.Context())
			if err != nil {
				return err
			}

			cmd.Println(cli.TitleStyle.Render(fmt.Sprintf("Caterer catalog (%d)", len(caterers))))
			for _, c := range caterers {
				rating := "unrated"
				if c.Rating != nil {
					rating = fmt.Sprintf("%.1f", *c.Rating)
				}
				cmd.Printf("%s  %s\n", c.Name, cli.SubtleStyle.Render(c.ID))
				cmd.Printf("  %s · %s · %s · %d menu items\n",
					c.Location,
					strings.Join(c.Cuisines, ", "),
					rating,
					len(c.Menu.Items))
			}
			return nil
		},
	}
}

func caterersImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Bulk-load catalog records from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			var caterers []model.Caterer
			if err := json.Unmarshal(data, &caterers); err != nil {
				return fmt.Errorf("failed to parse %s: %w", args[0], err)
			}

			// Records without ids get one assigned at import time.
			for i := range caterers {
				if strings.TrimSpace(caterers[i].ID) == "" {
					caterers[i].ID = uuid.NewString()
				}
			}

			store, err := createStorage()
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			bar := progressbar.NewOptions(len(caterers),
				progressbar.OptionSetWriter(cmd.OutOrStderr()),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("importing caterers"),
			)

			// Save one at a time so the bar tracks real progress; the catalog
			// is small enough that per-record transactions are fine here.
			for _, c := range caterers {
				if err := store.SaveCaterers(cmd.Context(), []model.Caterer{c}); err != nil {
					return err
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()
			cmd.Println()
			cmd.Println(cli.SuccessStyle.Render(fmt.Sprintf("✓ imported %d caterers", len(caterers))))
			return nil
		},
	}
}
