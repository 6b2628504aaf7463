package mailer

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// SimulatedProvider stands in when a tenant has no delivery credentials.
type SimulatedProvider struct {
	Delay       time.Duration
	FailureRate float64
	// Rand returns a value in [0,1); defaults to math/rand.
	Rand func() float64
}

func (p *SimulatedProvider) Name() string { return "simulated" }

func (p *SimulatedProvider) Send(ctx context.Context, msg Message) Result {
	if p.Delay > 0 {
		t := time.NewTimer(p.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return failed(ctx.Err())
		case <-t.C:
		}
	}

	roll := rand.Float64
	if p.Rand != nil {
		roll = p.Rand
	}
	if roll() < p.FailureRate {
		return Result{Error: "Mock email sending failed"}
	}
	return Result{Success: true, MessageID: "mock-" + uuid.NewString()}
}
