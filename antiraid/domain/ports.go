package domain

import "context"

// Community is the subset of a chat-platform guild the settings store needs.
type Community struct {
	ID   string
	Name string
}

// CommunityResolver looks a community up on the chat platform. It returns
// ErrCommunityNotFound when the community does not exist.
type CommunityResolver interface {
	ResolveCommunity(ctx context.Context, communityID string) (*Community, error)
}

// ISettingsRepository persists antiraid documents keyed by community.
type ISettingsRepository interface {
	// Upsert inserts the document or replaces the stored one.
	Upsert(ctx context.Context, doc Document) error
	// Get returns nil when no document exists for the community.
	Get(ctx context.Context, communityID string) (*Document, error)
	List(ctx context.Context) ([]Document, error)

	InitSchema(ctx context.Context) error
}

// Origin identifies where a command was invoked so replies can be threaded.
type Origin struct {
	CommunityID string
	ChannelID   string
	MessageID   string
}

// Invocation is one call of the antiraid command.
type Invocation struct {
	Origin  Origin
	Payload string
}

// Replier sends text back to the chat platform.
type Replier interface {
	Reply(ctx context.Context, origin Origin, text string) error
}
