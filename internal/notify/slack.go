package notify

import (
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// slackClient abstracts the Slack API methods we use, enabling test mocks.
type slackClient interface {
	PostMessage(channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// SlackNotifier posts assignment events to a Slack channel.
type SlackNotifier struct {
	client    slackClient
	channelID string
}

// SlackOpts holds parameters for creating a SlackNotifier.
type SlackOpts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string
	// For testing: inject a mock client instead of the real Slack API.
	Client slackClient
}

// NewSlack creates a Slack notifier.
func NewSlack(opts SlackOpts) (*SlackNotifier, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("notify: slack bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("notify: slack channel is required")
	}
	client := opts.Client
	if client == nil {
		client = slackapi.New(opts.BotToken)
	}
	return &SlackNotifier{client: client, channelID: opts.ChannelID}, nil
}

// AssignmentUpserted posts the event to the configured channel.
func (n *SlackNotifier) AssignmentUpserted(e AssignmentEvent) error {
	_, _, err := n.client.PostMessage(n.channelID, slackapi.MsgOptionText(Format(e), false))
	if err != nil {
		return fmt.Errorf("notify: slack post to %s: %w", n.channelID, err)
	}
	return nil
}
