package simulate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"amrikyy/nanoagent/pkg/pricing"
	"amrikyy/nanoagent/pkg/strategy"
)

// ErrUpstream is returned by a provider when a simulated failure is drawn.
var ErrUpstream = errors.New("simulated upstream failure")

// Behavior describes how a simulated provider answers.
type Behavior struct {
	// BasePrice is the centre of the quoted price.
	BasePrice float64 `yaml:"base_price" validate:"gt=0"`

	// PriceJitter is the maximum deviation from BasePrice, either direction.
	PriceJitter float64 `yaml:"price_jitter" validate:"gte=0"`

	// Currency is the quote currency. Default: USD
	Currency string `yaml:"currency" validate:"omitempty,len=3"`

	// Latency is the typical response time.
	Latency time.Duration `yaml:"latency" validate:"gte=0"`

	// LatencyJitter is added uniformly on top of Latency.
	LatencyJitter time.Duration `yaml:"latency_jitter" validate:"gte=0"`

	// FailureRate is the probability of returning ErrUpstream.
	FailureRate float64 `yaml:"failure_rate" validate:"gte=0,lte=1"`

	// AbstainRate is the probability of returning no quote.
	AbstainRate float64 `yaml:"abstain_rate" validate:"gte=0,lte=1"`

	// UnavailableRate is the probability of quoting an unavailable offer.
	UnavailableRate float64 `yaml:"unavailable_rate" validate:"gte=0,lte=1"`
}

// ProviderStats counts what a provider has answered.
type ProviderStats struct {
	Calls      int64
	Quotes     int64
	Failures   int64
	Abstains   int64
	Interrupts int64
}

// Provider is a simulated price source. It is safe for concurrent use.
type Provider struct {
	name     string
	behavior Behavior

	mu  sync.Mutex
	rng *rand.Rand

	calls      atomic.Int64
	quotes     atomic.Int64
	failures   atomic.Int64
	abstains   atomic.Int64
	interrupts atomic.Int64
}

// NewProvider creates a provider whose draws are determined by seed.
func NewProvider(name string, b Behavior, seed uint64) *Provider {
	if b.Currency == "" {
		b.Currency = "USD"
	}
	return &Provider{
		name:     name,
		behavior: b,
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return p.name
}

// draw holds one call's random choices, taken together under the lock.
type draw struct {
	delay       time.Duration
	fail        bool
	abstain     bool
	unavailable bool
	price       float64
}

func (p *Provider) draw() draw {
	p.mu.Lock()
	defer p.mu.Unlock()

	b := p.behavior
	d := draw{delay: b.Latency}
	if b.LatencyJitter > 0 {
		d.delay += time.Duration(p.rng.Int64N(int64(b.LatencyJitter) + 1))
	}

	roll := p.rng.Float64()
	switch {
	case roll < b.FailureRate:
		d.fail = true
	case roll < b.FailureRate+b.AbstainRate:
		d.abstain = true
	}
	d.unavailable = p.rng.Float64() < b.UnavailableRate

	d.price = b.BasePrice
	if b.PriceJitter > 0 {
		d.price += (p.rng.Float64()*2 - 1) * b.PriceJitter
	}
	d.price = math.Max(0.01, math.Round(d.price*100)/100)
	return d
}

// Quote answers a query after the simulated latency. It returns nil, nil
// for an abstention and honours ctx while waiting.
func (p *Provider) Quote(ctx context.Context, q pricing.Query) (*pricing.Quote, error) {
	p.calls.Add(1)
	d := p.draw()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		p.interrupts.Add(1)
		return nil, ctx.Err()
	case <-timer.C:
	}

	switch {
	case d.fail:
		p.failures.Add(1)
		return nil, fmt.Errorf("%s %s-%s: %w", p.name, q.Origin, q.Destination, ErrUpstream)
	case d.abstain:
		p.abstains.Add(1)
		return nil, nil
	}

	p.quotes.Add(1)
	return &pricing.Quote{
		Price:     d.price * float64(max(q.Passengers, 1)),
		Currency:  p.behavior.Currency,
		Available: !d.unavailable,
		Provider:  p.name,
	}, nil
}

// Func adapts the provider to a strategy. The task payload must be a
// pricing.Query or *pricing.Query.
func (p *Provider) Func() strategy.Func {
	return func(ctx context.Context, task strategy.Task, _ any) (any, error) {
		var q pricing.Query
		switch v := task.Payload.(type) {
		case pricing.Query:
			q = v
		case *pricing.Query:
			if v == nil {
				return nil, fmt.Errorf("%s: nil query", p.name)
			}
			q = *v
		default:
			return nil, fmt.Errorf("%s: unsupported payload %T", p.name, task.Payload)
		}

		quote, err := p.Quote(ctx, q)
		if err != nil || quote == nil {
			return nil, err
		}
		return *quote, nil
	}
}

// Stats returns the provider's counters.
func (p *Provider) Stats() ProviderStats {
	return ProviderStats{
		Calls:      p.calls.Load(),
		Quotes:     p.quotes.Load(),
		Failures:   p.failures.Load(),
		Abstains:   p.abstains.Load(),
		Interrupts: p.interrupts.Load(),
	}
}
