package discord

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/application"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/detector"
	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/domain"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Command is a prefix command the router can dispatch.
type Command struct {
	Name        string
	Usage       string
	Description string
	Process     func(ctx context.Context, inv domain.Invocation) string
}

// Message is the part of an incoming chat message the router looks at.
type Message struct {
	GuildID   string
	ChannelID string
	MessageID string
	AuthorBot bool
	Content   string
}

// Router parses prefixed messages and answers through a Replier.
type Router struct {
	prefix   string
	replier  domain.Replier
	commands map[string]Command
}

func NewRouter(prefix string, replier domain.Replier) *Router {
	r := &Router{
		prefix:   prefix,
		replier:  replier,
		commands: map[string]Command{},
	}
	r.Register(Command{
		Name:        "help",
		Usage:       "",
		Description: "Lists the available commands.",
		Process: func(ctx context.Context, inv domain.Invocation) string {
			return r.help()
		},
	})
	return r
}

func (r *Router) Register(cmd Command) {
	r.commands[strings.ToLower(cmd.Name)] = cmd
}

// AntiraidCommand exposes the settings resolver as the antiraid command.
func AntiraidCommand(resolver *application.SettingsResolver) Command {
	return Command{
		Name:        "antiraid",
		Usage:       "<parameter> <new value?>",
		Description: "Accesses the servers antiraid parameters. Adding a value will update the parameter.",
		Process: func(ctx context.Context, inv domain.Invocation) string {
			res := resolver.Execute(ctx, inv)
			if res.Err != nil {
				logrus.WithError(res.Err).Debugf("[DISCORD] antiraid command in %s", inv.Origin.CommunityID)
			}
			return res.Message
		},
	}
}

// Handle dispatches a message and reports whether it was a known command.
func (r *Router) Handle(ctx context.Context, msg Message) bool {
	if msg.AuthorBot || msg.GuildID == "" || !strings.HasPrefix(msg.Content, r.prefix) {
		return false
	}

	body := strings.TrimPrefix(msg.Content, r.prefix)
	name, suffix, _ := strings.Cut(strings.TrimLeft(body, " \t"), " ")
	cmd, ok := r.commands[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return false
	}

	origin := domain.Origin{CommunityID: msg.GuildID, ChannelID: msg.ChannelID, MessageID: msg.MessageID}
	reply := cmd.Process(ctx, domain.Invocation{Origin: origin, Payload: suffix})
	if reply == "" {
		return true
	}
	if err := r.replier.Reply(ctx, origin, reply); err != nil {
		logrus.WithError(err).Warnf("[DISCORD] Failed to reply to %s command", cmd.Name)
	}
	return true
}

func (r *Router) help() string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		cmd := r.commands[name]
		usage := cmd.Name
		if cmd.Usage != "" {
			usage += " " + cmd.Usage
		}
		fmt.Fprintf(&b, "%s%s - %s\n", r.prefix, usage, cmd.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// OnMessageCreate is the discordgo handler for incoming messages.
func (r *Router) OnMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}
	r.Handle(context.Background(), Message{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		AuthorBot: m.Author.Bot,
		Content:   m.Content,
	})
}

// OnGuildMemberAdd feeds member joins to the raid detector.
func OnGuildMemberAdd(det *detector.Detector) func(*discordgo.Session, *discordgo.GuildMemberAdd) {
	return func(s *discordgo.Session, e *discordgo.GuildMemberAdd) {
		if e.Member == nil || e.User == nil {
			return
		}
		created, err := discordgo.SnowflakeTimestamp(e.User.ID)
		if err != nil {
			logrus.WithError(err).Debugf("[DISCORD] Unable to read account age of %s", e.User.ID)
		}

		v, err := det.MemberJoined(context.Background(), detector.Member{
			GuildID:   e.GuildID,
			UserID:    e.User.ID,
			CreatedAt: created,
		})
		if err != nil {
			logrus.WithError(err).Warnf("[DISCORD] Antiraid handling failed for guild %s", e.GuildID)
		}
		if v.Triggered {
			logrus.Infof("[DISCORD] Raid mode enabled for guild %s after %d joins", e.GuildID, v.Joins)
		}
	}
}
