package discord

import (
	"context"
	"fmt"

	"github.com/Richardson-Media-House/kirbi-discord-antiraid/antiraid/domain"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Client adapts a discordgo session to the antiraid collaborator interfaces:
// community lookup, replies and moderation.
type Client struct {
	session *discordgo.Session
}

// NewSession creates a bot session with the intents the antiraid module
// needs. The session is not opened.
func NewSession(token string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent
	return s, nil
}

func NewClient(session *discordgo.Session) *Client {
	return &Client{session: session}
}

// ResolveCommunity checks the gateway state first and falls back to REST.
func (c *Client) ResolveCommunity(ctx context.Context, communityID string) (*domain.Community, error) {
	if c.session.State != nil {
		if g, err := c.session.State.Guild(communityID); err == nil {
			return &domain.Community{ID: g.ID, Name: g.Name}, nil
		}
	}

	g, err := c.session.Guild(communityID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCommunityNotFound, err)
	}
	return &domain.Community{ID: g.ID, Name: g.Name}, nil
}

// Reply answers the originating message when there is one, otherwise it
// posts to the channel.
func (c *Client) Reply(ctx context.Context, origin domain.Origin, text string) error {
	var err error
	if origin.MessageID != "" {
		_, err = c.session.ChannelMessageSendReply(origin.ChannelID, text, &discordgo.MessageReference{
			MessageID: origin.MessageID,
			ChannelID: origin.ChannelID,
			GuildID:   origin.CommunityID,
		}, discordgo.WithContext(ctx))
	} else {
		_, err = c.session.ChannelMessageSend(origin.ChannelID, text, discordgo.WithContext(ctx))
	}
	if err != nil {
		logrus.WithError(err).Debugf("[DISCORD] Failed to send message to channel %s", origin.ChannelID)
	}
	return err
}

func (c *Client) Kick(ctx context.Context, guildID, userID, reason string) error {
	return c.session.GuildMemberDeleteWithReason(guildID, userID, reason, discordgo.WithContext(ctx))
}

func (c *Client) Ban(ctx context.Context, guildID, userID, reason string) error {
	return c.session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx))
}
