package notify

import "context"

// Channel delivers a text message to a target on one platform. The target
// is platform specific: a Slack channel id, an email address, a phone number.
type Channel interface {
	Send(ctx context.Context, target, text string) error
	Name() string
}
