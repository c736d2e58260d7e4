// Package detector watches member joins and raises the antiraid alarm when
// a community receives more joins than its settings allow.
package detector

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/application"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/domain"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/pkg/botmonitor"
	"github.com/dustin/go-humanize"
	"github.com/jellydator/ttlcache/v3"
	"github.com/sirupsen/logrus"
)

// Values used while a parameter has never been set.
const (
	DefaultJoinLimit      = 10
	DefaultJoinWindow     = 10 // seconds
	DefaultNotifyMessage  = "Possible raid detected: %d members joined within %s."
	DefaultLockdownReason = "Antiraid lockdown"
)

// Moderator applies raid actions on the chat platform.
type Moderator interface {
	Kick(ctx context.Context, guildID, userID, reason string) error
	Ban(ctx context.Context, guildID, userID, reason string) error
}

// Member is a join event.
type Member struct {
	GuildID   string
	UserID    string
	CreatedAt time.Time
}

// Verdict describes what a join caused.
type Verdict struct {
	Joins        int
	Raid         bool
	Triggered    bool
	YoungAccount bool
	Actioned     []string
}

type Detector struct {
	settings  *application.SettingsCache
	notifier  domain.Replier
	moderator Moderator
	monitor   *botmonitor.Monitor
	now       func() time.Time

	mu        sync.Mutex
	joins     map[string]*ttlcache.Cache[string, time.Time] // userID -> join time
	raidUntil map[string]time.Time
}

func New(settings *application.SettingsCache, notifier domain.Replier, moderator Moderator) *Detector {
	return &Detector{
		settings:  settings,
		notifier:  notifier,
		moderator: moderator,
		now:       time.Now,
		joins:     map[string]*ttlcache.Cache[string, time.Time]{},
		raidUntil: map[string]time.Time{},
	}
}

// WithMonitor records every triggered raid on m.
func (d *Detector) WithMonitor(m *botmonitor.Monitor) *Detector {
	d.monitor = m
	return d
}

// MemberJoined records a join. Communities without antiraid settings in the
// cache are ignored.
func (d *Detector) MemberJoined(ctx context.Context, m Member) (Verdict, error) {
	h, ok := d.settings.Lookup(m.GuildID)
	if !ok {
		return Verdict{}, nil
	}

	limit := h.Int(domain.ParamJoinLimit, DefaultJoinLimit)
	window := time.Duration(h.Int(domain.ParamJoinWindow, DefaultJoinWindow)) * time.Second
	if limit == 0 || window == 0 {
		return Verdict{}, nil
	}

	now := d.now()
	var (
		v       Verdict
		targets []string
	)

	d.mu.Lock()
	joins := d.joinsFor(m.GuildID)
	joins.Set(m.UserID, now, window)
	joins.DeleteExpired()
	pruneJoins(joins, now.Add(-window))
	v.Joins = joins.Len()

	raiding := now.Before(d.raidUntil[m.GuildID])
	switch {
	case raiding:
		d.raidUntil[m.GuildID] = now.Add(window)
		targets = []string{m.UserID}
	case v.Joins > limit:
		d.raidUntil[m.GuildID] = now.Add(window)
		v.Triggered = true
		targets = joins.Keys()
		sort.Strings(targets)
	}
	d.mu.Unlock()
	v.Raid = raiding || v.Triggered

	origin := domain.Origin{
		CommunityID: m.GuildID,
		ChannelID:   h.Text(domain.ParamChannelID, m.GuildID),
	}

	var errs []error
	if minAge := h.Int(domain.ParamMinAccountAge, 0); minAge > 0 && !m.CreatedAt.IsZero() &&
		now.Sub(m.CreatedAt) < time.Duration(minAge)*24*time.Hour {
		v.YoungAccount = true
		notice := fmt.Sprintf("New account <@%s> joined, created %s.", m.UserID, humanize.RelTime(m.CreatedAt, now, "ago", "from now"))
		errs = append(errs, d.notify(ctx, origin, notice))
	}

	if v.Triggered {
		logrus.WithFields(logrus.Fields{"community": m.GuildID, "joins": v.Joins, "window": window}).
			Warn("[ANTIRAID] Raid detected")
		d.monitor.Record(botmonitor.Event{GuildID: m.GuildID, Stage: botmonitor.StageRaid, Status: botmonitor.StatusOK})
		notice := h.Text(domain.ParamNotifyMessage, fmt.Sprintf(DefaultNotifyMessage, v.Joins, window))
		errs = append(errs, d.notify(ctx, origin, notice))
	}

	if len(targets) > 0 {
		actioned, err := d.act(ctx, h, m.GuildID, targets)
		v.Actioned = actioned
		errs = append(errs, err)
	}

	return v, errors.Join(errs...)
}

// pruneJoins drops joins stamped at or before cutoff. Join times come from
// the detector clock; the cache TTL only releases memory.
func pruneJoins(joins *ttlcache.Cache[string, time.Time], cutoff time.Time) {
	var stale []string
	joins.Range(func(item *ttlcache.Item[string, time.Time]) bool {
		if !item.Value().After(cutoff) {
			stale = append(stale, item.Key())
		}
		return true
	})
	for _, userID := range stale {
		joins.Delete(userID)
	}
}

func (d *Detector) joinsFor(guildID string) *ttlcache.Cache[string, time.Time] {
	c, ok := d.joins[guildID]
	if !ok {
		c = ttlcache.New[string, time.Time](
			ttlcache.WithDisableTouchOnHit[string, time.Time](),
		)
		d.joins[guildID] = c
	}
	return c
}

func (d *Detector) notify(ctx context.Context, origin domain.Origin, text string) error {
	if d.notifier == nil {
		return nil
	}
	if err := d.notifier.Reply(ctx, origin, text); err != nil {
		return fmt.Errorf("failed to post antiraid notice to %s: %w", origin.ChannelID, err)
	}
	return nil
}

func (d *Detector) act(ctx context.Context, h *domain.Handle, guildID string, targets []string) ([]string, error) {
	action := h.Text(domain.ParamAction, domain.ActionNone)
	if action == domain.ActionNone || d.moderator == nil {
		return nil, nil
	}
	reason := h.Text(domain.ParamLockdownMessage, DefaultLockdownReason)

	var (
		actioned []string
		errs     []error
	)
	for _, userID := range targets {
		var err error
		switch action {
		case domain.ActionKick:
			err = d.moderator.Kick(ctx, guildID, userID, reason)
		case domain.ActionBan:
			err = d.moderator.Ban(ctx, guildID, userID, reason)
		default:
			return nil, fmt.Errorf("unknown antiraid action %q", action)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", action, userID, err))
			continue
		}
		actioned = append(actioned, userID)
	}

	if len(actioned) > 0 {
		logrus.Infof("[ANTIRAID] Applied %s to %d members of community %s", action, len(actioned), guildID)
	}
	return actioned, errors.Join(errs...)
}
