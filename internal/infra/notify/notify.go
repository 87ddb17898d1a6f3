// Package notify routes outbound messages to the delivery adapter for their
// channel.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

var ErrSimulatedFailure = errors.New("simulated delivery failure")

type Sender interface {
	Send(ctx context.Context, msg entity.OutboundMessage) error
}

// Router dispatches each message to the sender registered for its channel.
type Router struct {
	senders map[entity.Channel]Sender
}

func NewRouter() *Router {
	return &Router{senders: make(map[entity.Channel]Sender)}
}

// Register maps channel to s. A nil sender is ignored.
func (r *Router) Register(channel entity.Channel, s Sender) *Router {
	if s != nil {
		r.senders[channel] = s
	}
	return r
}

func (r *Router) Send(ctx context.Context, msg entity.OutboundMessage) error {
	s, ok := r.senders[msg.Channel]
	if !ok {
		return fmt.Errorf("%w: %q", entity.ErrUnsupportedChannel, msg.Channel)
	}
	return s.Send(ctx, msg)
}

// SimulatedSender logs each message and fails a configurable share of them.
type SimulatedSender struct {
	failureRate float64
	mu          sync.Mutex
	rnd         *rand.Rand
}

func NewSimulatedSender(failureRate float64, seed uint64) *SimulatedSender {
	if failureRate < 0 {
		failureRate = 0
	}
	if failureRate > 1 {
		failureRate = 1
	}
	return &SimulatedSender{
		failureRate: failureRate,
		rnd:         rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (s *SimulatedSender) Send(ctx context.Context, msg entity.OutboundMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	fail := s.rnd.Float64() < s.failureRate
	s.mu.Unlock()

	to := msg.ToEmail
	if msg.Channel == entity.ChannelSMS {
		to = msg.ToPhone
	}
	if fail {
		log.Printf("❌ [simulado] %s para %s falhou", msg.Channel, to)
		return ErrSimulatedFailure
	}
	log.Printf("📨 [simulado] %s para %s: %s", msg.Channel, to, msg.Subject)
	return nil
}
