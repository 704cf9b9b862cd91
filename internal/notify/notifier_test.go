package notify_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	slacklib "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpata/pata/internal/domain"
	"github.com/postpata/pata/internal/notify"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockSlackAPI struct {
	postMessageFunc func(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error) {
	return m.postMessageFunc(ctx, channelID, options...)
}

type sent struct {
	target, text string
}

type recordingChannel struct {
	name string
	err  error

	mu   sync.Mutex
	sent []sent
}

func (c *recordingChannel) Send(_ context.Context, target, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sent{target, text})
	return c.err
}

func (c *recordingChannel) Name() string { return c.name }

func property() *domain.Property {
	return &domain.Property{
		ID:         uuid.New(),
		Title:      "Garden cottage",
		Location:   "Runda",
		Price:      decimal.NewFromInt(85000),
		LandlordID: uuid.New(),
	}
}

// ---------------------------------------------------------------------------
// Notifier
// ---------------------------------------------------------------------------

func TestPropertyCreated(t *testing.T) {
	t.Parallel()

	slack := &recordingChannel{name: notify.ChannelSlack}
	reg := notify.NewRegistry()
	reg.Register(slack)
	n := notify.New(reg, "C0ADMIN")

	p := property()
	require.NoError(t, n.PropertyCreated(context.Background(), p, &domain.Profile{FullName: "Otieno Odhiambo"}))

	require.Len(t, slack.sent, 1)
	assert.Equal(t, "C0ADMIN", slack.sent[0].target)
	assert.Contains(t, slack.sent[0].text, "Garden cottage in Runda (85000.00)")
	assert.Contains(t, slack.sent[0].text, "Listed by Otieno Odhiambo")
	assert.Contains(t, slack.sent[0].text, p.ID.String())

	require.NoError(t, n.PropertyCreated(context.Background(), p, nil))
	assert.Contains(t, slack.sent[1].text, p.LandlordID.String(), "falls back to the landlord id")
}

func TestPropertyCreated_Disabled(t *testing.T) {
	t.Parallel()

	slack := &recordingChannel{name: notify.ChannelSlack}
	reg := notify.NewRegistry()
	reg.Register(slack)

	require.NoError(t, notify.New(reg, "").PropertyCreated(context.Background(), property(), nil))
	assert.Empty(t, slack.sent)
}

func TestPropertyCreated_NoSlackChannel(t *testing.T) {
	t.Parallel()

	err := notify.New(notify.NewRegistry(), "C0ADMIN").PropertyCreated(context.Background(), property(), nil)
	assert.ErrorIs(t, err, notify.ErrChannelNotFound)
}

func TestSendCode(t *testing.T) {
	t.Parallel()

	email := &recordingChannel{name: notify.ChannelEmail}
	sms := &recordingChannel{name: notify.ChannelSMS}
	reg := notify.NewRegistry()
	reg.Register(email)
	reg.Register(sms)
	n := notify.New(reg, "")
	ctx := context.Background()

	require.NoError(t, n.SendCode(ctx, &domain.Profile{ID: uuid.New(), Email: "amina@example.com"}, "123456", 10*time.Minute))
	require.NoError(t, n.SendCode(ctx, &domain.Profile{ID: uuid.New(), Phone: "+254711000000"}, "654321", 10*time.Minute))

	require.Len(t, email.sent, 1)
	assert.Equal(t, "amina@example.com", email.sent[0].target)
	assert.Contains(t, email.sent[0].text, "123456")
	assert.Contains(t, email.sent[0].text, "expires in 10 minutes")

	require.Len(t, sms.sent, 1)
	assert.Equal(t, "+254711000000", sms.sent[0].target)
	assert.Contains(t, sms.sent[0].text, "654321")
}

func TestSendCode_ExpiryFollowsTTL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ttl  time.Duration
		want string
	}{
		{10 * time.Minute, "expires in 10 minutes"},
		{time.Minute, "expires in 1 minute"},
		{2 * time.Hour, "expires in 2 hours"},
		{90 * time.Second, "expires in 90 seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.ttl.String(), func(t *testing.T) {
			t.Parallel()

			sms := &recordingChannel{name: notify.ChannelSMS}
			reg := notify.NewRegistry()
			reg.Register(sms)

			require.NoError(t, notify.New(reg, "").SendCode(context.Background(),
				&domain.Profile{ID: uuid.New(), Phone: "+254711000000"}, "111222", tt.ttl))
			require.Len(t, sms.sent, 1)
			assert.Contains(t, sms.sent[0].text, tt.want)
		})
	}
}

func TestSendCode_MissingChannelIsNotAnError(t *testing.T) {
	t.Parallel()

	n := notify.New(notify.NewRegistry(), "")
	assert.NoError(t, n.SendCode(context.Background(), &domain.Profile{ID: uuid.New(), Email: "a@example.com"}, "000000", time.Minute))
}

func TestSendCode_CodeStaysOutOfInfoLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level    zerolog.Level
		wantCode bool
	}{
		{zerolog.InfoLevel, false},
		{zerolog.DebugLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := zerolog.New(&buf).Level(tt.level)
			ctx := logger.WithContext(context.Background())

			n := notify.New(notify.NewRegistry(), "")
			require.NoError(t, n.SendCode(ctx, &domain.Profile{ID: uuid.New(), Email: "a@b.co"}, "482913", 10*time.Minute))

			assert.Equal(t, tt.wantCode, strings.Contains(buf.String(), "482913"), buf.String())
			assert.NotContains(t, buf.String(), "a@b.co")
		})
	}
}

func TestSendCode_DeliveryFailure(t *testing.T) {
	t.Parallel()

	reg := notify.NewRegistry()
	boom := errors.New("smtp: 421")
	reg.Register(&recordingChannel{name: notify.ChannelEmail, err: boom})

	err := notify.New(reg, "").SendCode(context.Background(), &domain.Profile{ID: uuid.New(), Email: "a@example.com"}, "000000", time.Minute)
	assert.ErrorIs(t, err, boom)
}

// ---------------------------------------------------------------------------
// Channels
// ---------------------------------------------------------------------------

func TestSlackChannel_Send(t *testing.T) {
	t.Parallel()

	var gotChannel string
	var gotOptions int
	api := &mockSlackAPI{postMessageFunc: func(_ context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error) {
		gotChannel, gotOptions = channelID, len(options)
		return channelID, "1700000000.000100", nil
	}}

	ch := notify.NewSlackChannel(api)
	assert.Equal(t, notify.ChannelSlack, ch.Name())
	require.NoError(t, ch.Send(context.Background(), "C123", "hello"))
	assert.Equal(t, "C123", gotChannel)
	assert.Equal(t, 2, gotOptions, "text fallback plus blocks")
}

func TestSlackChannel_SendError(t *testing.T) {
	t.Parallel()

	api := &mockSlackAPI{postMessageFunc: func(context.Context, string, ...slacklib.MsgOption) (string, string, error) {
		return "", "", errors.New("channel_not_found")
	}}

	err := notify.NewSlackChannel(api).Send(context.Background(), "C404", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := notify.NewRegistry()
	_, ok := reg.Get(notify.ChannelEmail)
	assert.False(t, ok)

	reg.Register(&recordingChannel{name: notify.ChannelEmail})
	ch, ok := reg.Get(notify.ChannelEmail)
	require.True(t, ok)
	assert.Equal(t, notify.ChannelEmail, ch.Name())
}
