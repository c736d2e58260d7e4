package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/application"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/domain"
	pkgError "github.com/Richardson-Media-House/kirbi-discord-antiraid/pkg/error"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/pkg/persistworker"
	"github.com/spf13/cobra"
)

var createMissing bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read or change antiraid settings without connecting to Discord",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get <guild> [parameter]",
	Short: "Print a parameter, or the list of parameters",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOffline(cmd, args[0], strings.Join(args[1:], " "))
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <guild> <parameter> <value...>",
	Short: "Change a parameter and persist it",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOffline(cmd, args[0], strings.Join(args[1:], " "))
	},
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every guild with stored antiraid settings",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	settingsCmd.PersistentFlags().BoolVar(&createMissing, "create", false, "treat guilds without stored settings as known")
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd, settingsListCmd)
	rootCmd.AddCommand(settingsCmd)
}

// storedCommunities knows the guilds that already have a stored document.
type storedCommunities struct {
	repo   domain.ISettingsRepository
	create bool
}

func (s storedCommunities) ResolveCommunity(ctx context.Context, communityID string) (*domain.Community, error) {
	if s.create {
		return &domain.Community{ID: communityID}, nil
	}
	doc, err := s.repo.Get(ctx, communityID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCommunityNotFound,
			pkgError.NotFoundError("no stored antiraid settings for "+communityID))
	}
	return &domain.Community{ID: communityID}, nil
}

type writerReplier struct {
	w io.Writer
}

func (r writerReplier) Reply(ctx context.Context, origin domain.Origin, text string) error {
	_, err := fmt.Fprintln(r.w, text)
	return err
}

func runOffline(cmd *cobra.Command, guildID, payload string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	repo, closeRepo, err := openRepository(ctx, appConfig)
	if err != nil {
		return err
	}
	defer closeRepo()

	cache := application.NewSettingsCache(storedCommunities{repo: repo, create: createMissing})
	if _, err := cache.Preload(ctx, repo); err != nil {
		return err
	}

	pool := persistworker.NewPool(1, 1)
	pool.Start(ctx)
	defer pool.Stop()

	out := writerReplier{w: cmd.OutOrStdout()}
	resolver := application.NewSettingsResolver(cache, repo, pool, out)
	res := resolver.Execute(ctx, domain.Invocation{
		Origin:  domain.Origin{CommunityID: guildID},
		Payload: payload,
	})
	_ = out.Reply(ctx, domain.Origin{}, res.Message)

	if res.Pending != nil {
		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := res.Pending.Wait(waitCtx); err != nil {
			return err
		}
	}
	return res.Err
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	repo, closeRepo, err := openRepository(ctx, appConfig)
	if err != nil {
		return err
	}
	defer closeRepo()

	docs, err := repo.List(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, doc := range docs {
		h := domain.NewHandle(doc.Record())
		fmt.Fprintf(out, "%s\n", doc.CommunityID)
		for _, p := range domain.Parameters() {
			fmt.Fprintf(out, "  %-16s %s\n", p.Name, p.Kind.Format(h.Get(p.Name)))
		}
	}
	fmt.Fprintf(out, "%d guilds\n", len(docs))
	return nil
}
