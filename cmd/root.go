package cmd

import (
	"os"
	"time"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/core/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	appConfig *config.Config
	envFile   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kirbi-antiraid",
	Short: "Per-guild antiraid settings for the Kirbi Discord bot",
	Long: `Serves the antiraid command on Discord and keeps every guild's antiraid
settings in memory, persisted to a database or valkey.`,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
}

func init() {
	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()
}

func initFlags() {
	flags := rootCmd.PersistentFlags()

	flags.StringVar(&envFile, "env-file", ".env", `dotenv file loaded before reading the environment | example: --env-file=".env.production"`)
	flags.BoolP("debug", "d", false, "enable debug logging | example: --debug=true")
	flags.String("store", "", `settings store --store <database|valkey> | example: --store=valkey`)
	flags.String("db-driver", "", `database driver when --store=database --db-driver <sqlite|postgres>`)
	flags.String("db-name", "", `SQLite file path or Postgres database name | example: --db-name="storages/antiraid.db"`)
	flags.String("valkey-address", "", `valkey address | example: --valkey-address="localhost:6379"`)
	flags.String("prefix", "", `command prefix | example: --prefix="!"`)
	flags.Int("persist-workers", 0, "number of persistence workers | example: --persist-workers=4")

	bindings := map[string]string{
		"APP_DEBUG":                "debug",
		"STORE_DRIVER":             "store",
		"DB_DRIVER":                "db-driver",
		"DB_NAME":                  "db-name",
		"VALKEY_ADDRESS":           "valkey-address",
		"DISCORD_PREFIX":           "prefix",
		"PERSIST_WORKER_POOL_SIZE": "persist-workers",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

// initApp loads the configuration once flags are parsed.
func initApp(cmd *cobra.Command, args []string) error {
	config.Init(envFile)

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	appConfig = cfg
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
