package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

type recordingSender struct {
	sent []entity.OutboundMessage
}

func (r *recordingSender) Send(_ context.Context, msg entity.OutboundMessage) error {
	r.sent = append(r.sent, msg)
	return nil
}

func TestRouterDispatchesByChannel(t *testing.T) {
	email, sms := &recordingSender{}, &recordingSender{}
	r := NewRouter().Register(entity.ChannelEmail, email).Register(entity.ChannelSMS, sms).Register(entity.ChannelSocial, nil)

	assert.NoError(t, r.Send(context.Background(), entity.OutboundMessage{Channel: entity.ChannelEmail, ToEmail: "a@b.com"}))
	assert.NoError(t, r.Send(context.Background(), entity.OutboundMessage{Channel: entity.ChannelSMS, ToPhone: "1"}))

	assert.Len(t, email.sent, 1)
	assert.Len(t, sms.sent, 1)

	err := r.Send(context.Background(), entity.OutboundMessage{Channel: entity.ChannelSocial})
	assert.True(t, errors.Is(err, entity.ErrUnsupportedChannel))
}

func TestSimulatedSenderFailureRate(t *testing.T) {
	msg := entity.OutboundMessage{Channel: entity.ChannelEmail, ToEmail: "a@b.com"}

	never := NewSimulatedSender(0, 1)
	always := NewSimulatedSender(1.5, 1)
	for i := 0; i < 50; i++ {
		assert.NoError(t, never.Send(context.Background(), msg))
		assert.ErrorIs(t, always.Send(context.Background(), msg), ErrSimulatedFailure)
	}

	some := NewSimulatedSender(0.05, 42)
	failed := 0
	for i := 0; i < 4000; i++ {
		if some.Send(context.Background(), msg) != nil {
			failed++
		}
	}
	assert.InDelta(t, 200, failed, 80)
}

func TestSimulatedSenderHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSimulatedSender(0, 1).Send(ctx, entity.OutboundMessage{Channel: entity.ChannelEmail})
	assert.ErrorIs(t, err, context.Canceled)
}
