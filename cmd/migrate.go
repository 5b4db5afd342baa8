package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "migrate",
		Short:       "Creates the spirits, brands, categories and job tables",
		Annotations: map[string]string{needsApp: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := appInstance.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			appInstance.Logger.Info("schema applied")
			return nil
		},
	}
}
