// Package ratelimit paces replayed player actions.
package ratelimit

import (
	"context"
	"math"
	"sync"

	"golang.org/x/time/rate"
)

// Pacer lets through a fixed number of actions per second. A rate of zero
// disables pacing.
type Pacer struct {
	limiter *rate.Limiter
	mu      sync.RWMutex
}

// NewPacer creates a pacer for actionsPerSecond. Fractional rates are
// allowed; 0.5 lets one action through every two seconds.
func NewPacer(actionsPerSecond float64) *Pacer {
	return &Pacer{
		limiter: rate.NewLimiter(rate.Limit(actionsPerSecond), burst(actionsPerSecond)),
	}
}

func burst(actionsPerSecond float64) int {
	return int(math.Max(1, math.Ceil(actionsPerSecond)))
}

// Wait blocks until the next action may run or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.RLock()
	limiter := p.limiter
	limit := limiter.Limit()
	p.mu.RUnlock()

	if limit == 0 {
		return ctx.Err()
	}
	return limiter.Wait(ctx)
}

// Rate returns the current actions per second.
func (p *Pacer) Rate() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return float64(p.limiter.Limit())
}

func (p *Pacer) SetRate(actionsPerSecond float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.limiter.SetLimit(rate.Limit(actionsPerSecond))
	p.limiter.SetBurst(burst(actionsPerSecond))
}
