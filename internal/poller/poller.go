// Package poller keeps one order's displayed state fresh: it re-fetches the
// order on a fixed interval until the provider reports a terminal status, and
// derives a skew-corrected countdown from the order's expiry timestamp.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"foxgate/internal/foxpays"
	"foxgate/internal/gateway"
)

const (
	DefaultPollInterval  = 10 * time.Second
	DefaultCountdownTick = time.Second
)

// FetchFunc returns a fresh snapshot of the watched order.
type FetchFunc func(ctx context.Context) (*gateway.StatusSnapshot, error)

// State is what a UI renders: the last known provider state plus the locally
// derived countdown and expiry flag. LastErr holds the most recent poll
// failure; a set LastErr does not mean polling stopped.
type State struct {
	OrderID          string
	Status           foxpays.Status
	SubStatus        foxpays.SubStatus
	PaymentDetail    gateway.PaymentDetail
	DetailsPending   bool
	RemainingSeconds int64
	IsExpired        bool
	Terminal         bool
	LastErr          error
}

type Poller struct {
	fetch         FetchFunc
	pollInterval  time.Duration
	countdownTick time.Duration
	now           func() time.Time
	log           *zap.Logger

	mu        sync.Mutex
	state     State
	expiresAt int64
	skew      int64 // provider clock minus local clock, seconds

	refresh  chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	updates  chan State
}

type Option func(*Poller)

func WithPollInterval(d time.Duration) Option {
	return func(p *Poller) { p.pollInterval = d }
}

func WithCountdownTick(d time.Duration) Option {
	return func(p *Poller) { p.countdownTick = d }
}

func WithClock(now func() time.Time) Option {
	return func(p *Poller) { p.now = now }
}

func WithLogger(log *zap.Logger) Option {
	return func(p *Poller) { p.log = log }
}

func New(fetch FetchFunc, opts ...Option) *Poller {
	p := &Poller{
		fetch:         fetch,
		pollInterval:  DefaultPollInterval,
		countdownTick: DefaultCountdownTick,
		now:           time.Now,
		log:           zap.NewNop(),
		refresh:       make(chan struct{}, 1),
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		updates:       make(chan State, 16),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the polling loop. It fetches once immediately, then on every
// poll tick; the countdown ticks independently. Fetches are sequential: the
// single loop goroutine never has two requests in flight.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

// Refresh forces a fetch ahead of the next poll tick. Used after confirm or
// cancel so the UI does not wait out the interval.
func (p *Poller) Refresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Stop halts polling and the countdown. Safe to call multiple times.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// Done is closed when the loop has exited and both tickers are released.
func (p *Poller) Done() <-chan struct{} { return p.done }

// Updates delivers a State after every change. Slow consumers miss
// intermediate states, never the ability to call Snapshot.
func (p *Poller) Updates() <-chan State { return p.updates }

func (p *Poller) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	poll := time.NewTicker(p.pollInterval)
	defer poll.Stop()
	countdown := time.NewTicker(p.countdownTick)
	defer countdown.Stop()

	if halt := p.fetchOnce(ctx); halt {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-p.refresh:
			if p.fetchOnce(ctx) {
				return
			}
		case <-poll.C:
			if p.fetchOnce(ctx) {
				return
			}
		case <-countdown.C:
			if p.tickCountdown() {
				return
			}
		}
	}
}

// fetchOnce performs one status fetch and reports whether the loop should
// halt. A failed fetch is recorded and retried on the next tick; only a
// terminal status or local expiry halts the loop.
func (p *Poller) fetchOnce(ctx context.Context) bool {
	snap, err := p.fetch(ctx)
	if err != nil {
		p.log.Warn("order status fetch failed", zap.Error(err))
		p.mu.Lock()
		p.state.LastErr = err
		st := p.state
		p.mu.Unlock()
		p.publish(st)
		return false
	}

	p.mu.Lock()
	p.expiresAt = snap.ExpiresAt
	if snap.ServerTime != 0 {
		p.skew = snap.ServerTime - p.now().Unix()
	}
	p.state = State{
		OrderID:          snap.OrderID,
		Status:           snap.Status,
		SubStatus:        snap.SubStatus,
		PaymentDetail:    snap.PaymentDetail,
		DetailsPending:   snap.DetailsPending,
		RemainingSeconds: snap.RemainingSeconds,
		IsExpired:        snap.IsExpired,
		Terminal:         snap.Status.Terminal(),
	}
	st := p.state
	p.mu.Unlock()
	p.publish(st)

	// The countdown hitting zero stops polling but never fabricates a
	// terminal status; only the provider can confirm the real outcome.
	return st.Terminal || st.IsExpired
}

func (p *Poller) tickCountdown() bool {
	p.mu.Lock()
	if p.expiresAt == 0 || p.state.Status != foxpays.StatusPending {
		p.mu.Unlock()
		return false
	}
	remaining := p.expiresAt - (p.now().Unix() + p.skew)
	if remaining < 0 {
		remaining = 0
	}
	changed := remaining != p.state.RemainingSeconds
	p.state.RemainingSeconds = remaining
	if remaining == 0 {
		p.state.IsExpired = true
	}
	st := p.state
	p.mu.Unlock()

	if changed || st.IsExpired {
		p.publish(st)
	}
	return st.IsExpired
}

func (p *Poller) publish(st State) {
	select {
	case p.updates <- st:
	default:
	}
}
