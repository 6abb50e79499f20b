// Package notify posts assignment notifications to a chat channel.
// Delivery is best-effort: the dispatch flow never blocks on a failed
// notification.
package notify

import (
	"fmt"

	"github.com/ybenali/roadcall/internal/store"
)

// AssignmentEvent describes an assignment that was just created or
// updated, with referenced names already resolved.
type AssignmentEvent struct {
	RequestID   int
	UserInfo    string
	Status      string
	ContactName string
	ContactRole string
	Username    string
}

// Notifier delivers assignment events to a channel.
type Notifier interface {
	AssignmentUpserted(e AssignmentEvent) error
}

// EventFromView builds an event from an enriched assignment, filling
// "unknown" for references that resolved to null.
func EventFromView(v store.AssignmentView) AssignmentEvent {
	e := AssignmentEvent{
		RequestID:   v.RequestID,
		Status:      v.Status,
		UserInfo:    "unknown",
		ContactName: "unknown",
		ContactRole: "unknown",
		Username:    "unknown",
	}
	if v.UserInfo != nil {
		e.UserInfo = *v.UserInfo
	}
	if v.ContactName != nil {
		e.ContactName = *v.ContactName
	}
	if v.ContactRole != nil {
		e.ContactRole = *v.ContactRole
	}
	if v.Username != nil {
		e.Username = *v.Username
	}
	return e
}

// Format renders the channel message for an assignment event.
func Format(e AssignmentEvent) string {
	return fmt.Sprintf("🚗 Request #%d (%s) assigned to %s [%s] by %s — status: %s",
		e.RequestID, e.UserInfo, e.ContactName, e.ContactRole, e.Username, e.Status)
}

// New builds a notifier for the given platform. An empty platform returns
// nil, which callers treat as notifications disabled.
func New(platform, token, channelID string) (Notifier, error) {
	switch platform {
	case "":
		return nil, nil
	case "slack":
		return NewSlack(SlackOpts{BotToken: token, ChannelID: channelID})
	case "discord":
		return NewDiscord(DiscordOpts{BotToken: token, ChannelID: channelID})
	default:
		return nil, fmt.Errorf("notify: unknown platform %q", platform)
	}
}
