package billing

import (
	"context"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/xavierca1/sitm-outreach/internal/entity"
)

// DefaultDeclineProbability is the share of authorizations the simulated
// gateway declines.
const DefaultDeclineProbability = 0.05

type AuthorizationRequest struct {
	TransactionID string
	AmountCents   int64
	Method        entity.PaymentMethod
	PayerName     string
	PayerEmail    string
}

type AuthorizationResult struct {
	Approved bool
	Reason   string
}

// SimulatedGateway approves a payment unless a uniform draw falls below the
// decline probability. It stands in for a real processor.
type SimulatedGateway struct {
	DeclineProbability float64

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSimulatedGateway(declineProbability float64) *SimulatedGateway {
	seed := uint64(time.Now().UnixNano())
	return NewSeededGateway(declineProbability, seed)
}

func NewSeededGateway(declineProbability float64, seed uint64) *SimulatedGateway {
	if declineProbability < 0 {
		declineProbability = 0
	}
	if declineProbability > 1 {
		declineProbability = 1
	}
	return &SimulatedGateway{
		DeclineProbability: declineProbability,
		rnd:                rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (g *SimulatedGateway) Authorize(ctx context.Context, req AuthorizationRequest) (AuthorizationResult, error) {
	if err := ctx.Err(); err != nil {
		return AuthorizationResult{}, err
	}

	g.mu.Lock()
	draw := g.rnd.Float64()
	g.mu.Unlock()

	if draw < g.DeclineProbability {
		return AuthorizationResult{Approved: false, Reason: "declined by issuer"}, nil
	}
	return AuthorizationResult{Approved: true}, nil
}

// Void releases an authorization whose payment could not be recorded.
func (g *SimulatedGateway) Void(ctx context.Context, transactionID string) error {
	log.Printf("↩️ Autorização %s cancelada", transactionID)
	return nil
}
