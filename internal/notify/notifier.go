package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/postpata/pata/internal/domain"
)

// Channel names.
const (
	ChannelSlack = "slack"
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// ErrChannelNotFound is returned when a channel is not registered.
var ErrChannelNotFound = errors.New("notify: channel not found") //nolint:gochecknoglobals // sentinel error

// ChannelRegistry maps channel names to implementations.
type ChannelRegistry interface {
	Get(name string) (Channel, bool)
}

// Notifier sends account codes to profile holders and listing alerts to
// administrators.
type Notifier struct {
	channels     ChannelRegistry
	adminChannel string // Slack channel id; empty disables alerts
}

func New(channels ChannelRegistry, adminChannel string) *Notifier {
	return &Notifier{channels: channels, adminChannel: adminChannel}
}

// PropertyCreated alerts administrators that a listing awaits approval.
func (n *Notifier) PropertyCreated(ctx context.Context, p *domain.Property, landlord *domain.Profile) error {
	if n.adminChannel == "" {
		return nil
	}

	owner := p.LandlordID.String()
	if landlord != nil {
		owner = landlord.FullName
	}
	text := fmt.Sprintf("*New property awaiting approval*\n%s in %s (%s)\nListed by %s\nID: `%s`",
		p.Title, p.Location, p.Price.StringFixed(2), owner, p.ID)

	if err := n.NotifyVia(ctx, ChannelSlack, n.adminChannel, text); err != nil {
		return fmt.Errorf("notify.Notifier.PropertyCreated: %w", err)
	}
	return nil
}

// SendCode delivers a verification code valid for ttl over email or SMS
// depending on the profile's contact. Without a registered channel the code
// is only logged at debug level on the request logger.
func (n *Notifier) SendCode(ctx context.Context, p *domain.Profile, code string, ttl time.Duration) error {
	name, target := ChannelSMS, p.Phone
	if p.Email != "" {
		name, target = ChannelEmail, p.Email
	}
	text := fmt.Sprintf("Your PostPata verification code is %s. It expires in %s.", code, expiry(ttl))

	err := n.NotifyVia(ctx, name, target, text)
	if errors.Is(err, ErrChannelNotFound) {
		zerolog.Ctx(ctx).Debug().Str("channel", name).Str("profile_id", p.ID.String()).Str("code", code).
			Msg("notify: no delivery channel, verification code not sent")
		return nil
	}
	if err != nil {
		return fmt.Errorf("notify.Notifier.SendCode: %w", err)
	}
	return nil
}

// NotifyVia sends text through a specific channel.
func (n *Notifier) NotifyVia(ctx context.Context, channel, target, text string) error {
	ch, ok := n.channels.Get(channel)
	if !ok {
		return fmt.Errorf("notify.Notifier.NotifyVia: channel %q: %w", channel, ErrChannelNotFound)
	}

	if err := ch.Send(ctx, target, text); err != nil {
		return fmt.Errorf("notify.Notifier.NotifyVia: send: %w", err)
	}

	return nil
}

// expiry renders ttl for people: "10 minutes", "1 hour", "90 seconds".
func expiry(ttl time.Duration) string {
	n, unit := int64(ttl/time.Second), "second"
	switch {
	case ttl >= time.Hour && ttl%time.Hour == 0:
		n, unit = int64(ttl/time.Hour), "hour"
	case ttl >= time.Minute && ttl%time.Minute == 0:
		n, unit = int64(ttl/time.Minute), "minute"
	}
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s", n, unit)
}
