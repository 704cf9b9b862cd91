package notify

import (
	"context"
	"fmt"

	slacklib "github.com/slack-go/slack"
)

// SlackAPI abstracts the subset of the Slack client used by SlackChannel.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// SlackChannel posts messages to Slack channels.
type SlackChannel struct {
	api SlackAPI
}

var _ Channel = (*SlackChannel)(nil) //nolint:gochecknoglobals // compile-time check

func NewSlackChannel(api SlackAPI) *SlackChannel {
	return &SlackChannel{api: api}
}

// Send posts text as a single section block with a plain-text fallback.
func (c *SlackChannel) Send(ctx context.Context, channelID, text string) error {
	section := slacklib.NewSectionBlock(
		slacklib.NewTextBlockObject(slacklib.MarkdownType, text, false, false),
		nil, nil,
	)
	_, _, err := c.api.PostMessageContext(ctx, channelID,
		slacklib.MsgOptionText(text, false),
		slacklib.MsgOptionBlocks(section),
	)
	if err != nil {
		return fmt.Errorf("notify.SlackChannel.Send: %w", err)
	}
	return nil
}

func (c *SlackChannel) Name() string { return ChannelSlack }
