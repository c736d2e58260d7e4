package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the antiraid settings table if it does not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeRepo, err := openRepository(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer closeRepo()

		logrus.Infof("[MIGRATION] %s settings store is ready", appConfig.Store.Driver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
