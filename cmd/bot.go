package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/application"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/detector"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/infrastructure/discord"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/pkg/botmonitor"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/pkg/persistworker"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Connect to Discord and serve the antiraid command",
	RunE:  runBot,
}

func init() {
	rootCmd.AddCommand(botCmd)
}

func runBot(cmd *cobra.Command, args []string) error {
	if appConfig.Discord.Token == "" {
		return fmt.Errorf("DISCORD_TOKEN is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, appConfig)
	if err != nil {
		return err
	}
	defer closeRepo()

	session, err := discord.NewSession(appConfig.Discord.Token)
	if err != nil {
		return err
	}
	client := discord.NewClient(session)

	cache := application.NewSettingsCache(client)
	if _, err := cache.Preload(ctx, repo); err != nil {
		logrus.WithError(err).Warn("[ANTIRAID] Starting with an empty settings cache")
	}

	// workers run on their own context so queued upserts finish during shutdown
	pool := persistworker.NewPool(appConfig.WorkerPool.Size, appConfig.WorkerPool.QueueSize)
	pool.Start(context.Background())
	defer func() {
		pool.Stop()
		stats := pool.GetStats()
		logrus.Infof("[APP] Persisted %s settings changes (%s failed, %s dropped)",
			humanize.Comma(stats.TotalProcessed), humanize.Comma(stats.TotalErrors), humanize.Comma(stats.TotalDropped))
	}()

	monitor := botmonitor.New(appConfig.Monitor.BufferSize, appConfig.Monitor.TTL)
	defer func() {
		stats := monitor.GetStats()
		logrus.Infof("[APP] Handled %s antiraid commands and %s raids (%s errors)",
			humanize.Comma(stats.TotalCommands), humanize.Comma(stats.TotalRaids), humanize.Comma(stats.TotalErrors))
	}()

	resolver := application.NewSettingsResolver(cache, repo, pool, client).WithMonitor(monitor)
	router := discord.NewRouter(appConfig.Discord.CommandPrefix, client)
	router.Register(discord.AntiraidCommand(resolver))
	det := detector.New(cache, client, client).WithMonitor(monitor)

	session.AddHandler(router.OnMessageCreate)
	session.AddHandler(discord.OnGuildMemberAdd(det))

	if err := session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	defer session.Close()

	logrus.Infof("[APP] Antiraid bot %s (%s) running with prefix %q and %d cached guilds",
		appConfig.App.Version, appConfig.App.Environment, appConfig.Discord.CommandPrefix, cache.Len())
	<-ctx.Done()
	logrus.Info("[APP] Stopping application...")
	return nil
}
