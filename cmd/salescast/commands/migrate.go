package commands

import (
	"github.com/spf13/cobra"

	"github.com/wonny/salescast/pkg/database"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "DB 스키마 적용",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if a.db == nil {
				return database.ErrNotConfigured
			}
			if err := a.db.Migrate(cmd.Context()); err != nil {
				return err
			}
			PrintSuccess("schema applied")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
