package tracking

import (
	"sync"
	"time"
)

// SourceOptions are the sampling hints passed to a SampleSource.
type SourceOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

func DefaultSourceOptions() SourceOptions {
	return SourceOptions{HighAccuracy: true, Timeout: 10 * time.Second, MaximumAge: time.Second}
}

// Unsubscribe stops delivery. After it returns no new callback starts.
type Unsubscribe func()

// SampleSource delivers location samples in timestamp order until unsubscribed.
type SampleSource interface {
	Subscribe(opts SourceOptions, onSample func(LocationSample), onError func(error)) Unsubscribe
}

// PushSource is a SampleSource fed by the caller, used when samples arrive
// over HTTP or websocket from a client device.
type PushSource struct {
	mu       sync.Mutex
	opts     SourceOptions
	onSample func(LocationSample)
	onError  func(error)
	gen      uint64
}

func NewPushSource() *PushSource {
	return &PushSource{}
}

func (p *PushSource) Subscribe(opts SourceOptions, onSample func(LocationSample), onError func(error)) Unsubscribe {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.opts = opts
	p.onSample = onSample
	p.onError = onError
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.gen == gen {
			p.onSample = nil
			p.onError = nil
		}
	}
}

// Subscribed reports whether a subscriber is currently attached.
func (p *PushSource) Subscribed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.onSample != nil
}

// Push delivers a sample, stamping it with the current time when it has none.
// It returns false if nothing is subscribed.
func (p *PushSource) Push(s LocationSample) bool {
	p.mu.Lock()
	fn := p.onSample
	p.mu.Unlock()
	if fn == nil {
		return false
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}
	fn(s)
	return true
}

// Fail delivers a source error to the subscriber.
func (p *PushSource) Fail(err error) bool {
	p.mu.Lock()
	fn := p.onError
	p.mu.Unlock()
	if fn == nil {
		return false
	}
	fn(err)
	return true
}

// Options returns the options of the latest subscription.
func (p *PushSource) Options() SourceOptions {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opts
}
