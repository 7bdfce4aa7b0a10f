// Package notify presents transient, auto-dismissing status messages.
//
// At most one notification is visible. Showing a new one replaces the
// current one, and each notification is dismissed a fixed duration after it
// was shown regardless of what else happens in the meantime. Pending
// dismissal timers are cancelled by Close.
package notify

import (
	"sync"
	"time"

	"fluidnet/internal/domain"
)

// DefaultDuration is how long a notification stays visible
const DefaultDuration = 5 * time.Second

// Sink displays notifications
type Sink interface {
	Shown(n domain.Notification)
	Dismissed(n domain.Notification)
}

type stopper interface {
	Stop() bool
}

// Presenter shows one notification at a time
type Presenter struct {
	mu       sync.Mutex
	sink     Sink
	duration time.Duration
	after    func(d time.Duration, f func()) stopper

	current *domain.Notification
	timer   stopper
	seq     uint64
	closed  bool
}

// New creates a presenter. A zero duration selects DefaultDuration.
func New(sink Sink, duration time.Duration) *Presenter {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Presenter{
		sink:     sink,
		duration: duration,
		after: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// Show replaces any visible notification with message and schedules its
// dismissal
func (p *Presenter) Show(message string, severity domain.Severity) {
	n := domain.Notification{Message: message, Severity: severity}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	prev := p.current
	if p.timer != nil {
		p.timer.Stop()
	}
	p.seq++
	seq := p.seq
	p.current = &n
	p.timer = p.after(p.duration, func() { p.expire(seq) })
	p.mu.Unlock()

	if p.sink != nil {
		if prev != nil {
			p.sink.Dismissed(*prev)
		}
		p.sink.Shown(n)
	}
}

// Current returns the visible notification, if any
func (p *Presenter) Current() (domain.Notification, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return domain.Notification{}, false
	}
	return *p.current, true
}

// Close cancels the pending dismissal and stops accepting notifications
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.current = nil
	p.closed = true
}

func (p *Presenter) expire(seq uint64) {
	p.mu.Lock()
	if p.seq != seq || p.current == nil {
		// superseded by a later Show
		p.mu.Unlock()
		return
	}
	n := *p.current
	p.current = nil
	p.timer = nil
	p.mu.Unlock()

	if p.sink != nil {
		p.sink.Dismissed(n)
	}
}
