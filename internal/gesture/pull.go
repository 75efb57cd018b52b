package gesture

import (
	"sync"
	"time"
)

const (
	// PullThreshold is the drag distance that commits a refresh on
	// release.
	PullThreshold = 80.0

	// MaxPullDistance caps how far the indicator follows the drag.
	MaxPullDistance = 120.0

	// settleDelay keeps the indicator visible briefly after a refresh
	// completes so it does not blink.
	settleDelay = 500 * time.Millisecond
)

// PullState is a snapshot of the pull-to-refresh indicator.
type PullState struct {
	Distance   float64
	Pulling    bool
	Refreshing bool
}

// PullTracker drives the pull-to-refresh indicator. A pull only arms
// when the list is at the top, follows the drag up to MaxPullDistance,
// and commits a refresh when released past PullThreshold.
type PullTracker struct {
	mu sync.Mutex

	newTimer TimerFactory

	pulling    bool
	refreshing bool
	startY     float64
	distance   float64
	settleSeq  uint64
	settle     Timer
}

// NewPullTracker returns a tracker using real timers.
func NewPullTracker() *PullTracker {
	return NewPullTrackerWithTimer(realTimer)
}

// NewPullTrackerWithTimer returns a tracker whose settle delay goes
// through newTimer.
func NewPullTrackerWithTimer(newTimer TimerFactory) *PullTracker {
	if newTimer == nil {
		newTimer = realTimer
	}
	return &PullTracker{newTimer: newTimer}
}

// Start arms a pull beginning at y. It is ignored unless the list sits
// at the top and no refresh is in flight.
func (p *PullTracker) Start(scrollTop, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pulling || p.refreshing || scrollTop > 5 {
		return
	}
	p.pulling = true
	p.startY = y
	p.distance = 0
}

// Move updates the drag. Scrolling away from the top or dragging back
// above the start cancels the pull for the rest of the gesture.
func (p *PullTracker) Move(scrollTop, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.pulling {
		return
	}
	if scrollTop > 5 {
		p.pulling = false
		p.distance = 0
		return
	}
	d := y - p.startY
	if d < 0 {
		p.pulling = false
		p.distance = 0
		return
	}
	if d > MaxPullDistance {
		d = MaxPullDistance
	}
	p.distance = d
}

// Release ends the drag and reports whether a refresh should run. Past
// the threshold the indicator locks at PullThreshold until Settle.
func (p *PullTracker) Release() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.pulling {
		return false
	}
	p.pulling = false
	if p.distance < PullThreshold {
		p.distance = 0
		return false
	}
	p.distance = PullThreshold
	p.refreshing = true
	return true
}

// Settle marks the in-flight refresh done and hides the indicator after
// a short settle delay.
func (p *PullTracker) Settle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.refreshing {
		return
	}
	p.settleSeq++
	seq := p.settleSeq
	p.settle = p.newTimer(settleDelay, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if seq != p.settleSeq {
			return
		}
		p.refreshing = false
		p.distance = 0
		p.settle = nil
	})
}

// Cancel abandons the pull and hides the indicator immediately.
func (p *PullTracker) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.settle != nil {
		p.settle.Stop()
		p.settle = nil
	}
	p.settleSeq++
	p.pulling = false
	p.refreshing = false
	p.distance = 0
}

// State returns the current indicator snapshot.
func (p *PullTracker) State() PullState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PullState{Distance: p.distance, Pulling: p.pulling, Refreshing: p.refreshing}
}
