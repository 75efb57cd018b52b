// Package gesture tracks pointer interaction with the appointment list:
// swipe-to-reveal on a single row, long-press multi-select, and the
// pull-to-refresh tracker. The engine is a pure state machine; callers
// feed it pointer events and read the resulting state back.
package gesture

import (
	"sort"
	"sync"
	"time"
)

const (
	// LongPressDelay is how long a press must hold still before it
	// becomes a selection gesture.
	LongPressDelay = 600 * time.Millisecond

	// SwipeThreshold is the horizontal travel, in cells, that commits a
	// reveal or a close.
	SwipeThreshold = 40.0

	// LongPressSlop is the travel that cancels a pending long press.
	LongPressSlop = 10.0
)

// TapOutcome is what a completed press resolved to.
type TapOutcome int

const (
	// TapNone means the press was consumed by a gesture and the caller
	// should not act on it.
	TapNone TapOutcome = iota
	// TapToggleSelect means the press toggled the row's selection.
	TapToggleSelect
	// TapNavigate means the press was a plain tap on the row.
	TapNavigate
)

// Timer is the subset of time.Timer the engine needs. Tests inject a
// manual implementation to fire long presses deterministically.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn after d and returns a handle to cancel it.
type TimerFactory func(d time.Duration, fn func()) Timer

func realTimer(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Engine owns the swipe and selection state for the list. All methods
// are safe for concurrent use; the long-press timer fires on its own
// goroutine.
type Engine struct {
	mu sync.Mutex

	newTimer TimerFactory

	// press tracking
	pressSeq   uint64
	pressedRow string
	startX     float64
	pressed    bool
	moved      bool
	longPress  Timer
	longFired  bool

	// at most one row has its actions revealed
	swipedRow string

	selectMode bool
	selected   map[string]struct{}
}

// NewEngine returns an engine using real timers.
func NewEngine() *Engine {
	return NewEngineWithTimer(realTimer)
}

// NewEngineWithTimer returns an engine whose long-press scheduling goes
// through newTimer.
func NewEngineWithTimer(newTimer TimerFactory) *Engine {
	if newTimer == nil {
		newTimer = realTimer
	}
	return &Engine{
		newTimer: newTimer,
		selected: make(map[string]struct{}),
	}
}

// PointerDown starts tracking a press on rowID at horizontal position x
// and arms the long-press timer.
func (e *Engine) PointerDown(rowID string, x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopTimerLocked()
	e.pressSeq++
	seq := e.pressSeq
	e.pressedRow = rowID
	e.startX = x
	e.pressed = true
	e.moved = false
	e.longFired = false
	e.longPress = e.newTimer(LongPressDelay, func() {
		e.fireLongPress(seq, rowID)
	})
}

// PointerMove updates the press with a new horizontal position. Travel
// past the slop cancels the pending long press; travel past the swipe
// threshold reveals or closes the row's actions.
func (e *Engine) PointerMove(rowID string, x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.pressed || rowID != e.pressedRow {
		return
	}
	dx := x - e.startX
	if dx > LongPressSlop || dx < -LongPressSlop {
		e.moved = true
		e.stopTimerLocked()
	}
	if e.longFired || e.selectMode {
		return
	}
	if dx <= -SwipeThreshold {
		e.swipedRow = rowID
	} else if dx >= SwipeThreshold && e.swipedRow == rowID {
		e.swipedRow = ""
	}
}

// PointerUp finishes the press and reports what it resolved to.
func (e *Engine) PointerUp(rowID string) TapOutcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.pressed || rowID != e.pressedRow {
		return TapNone
	}
	e.stopTimerLocked()
	e.pressed = false

	if e.longFired || e.moved {
		return TapNone
	}
	if e.selectMode {
		e.toggleLocked(rowID)
		return TapToggleSelect
	}
	if e.swipedRow == rowID {
		// a clean tap on the revealed row just closes it
		e.swipedRow = ""
		return TapNone
	}
	return TapNavigate
}

// PointerCancel abandons the press without resolving it.
func (e *Engine) PointerCancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopTimerLocked()
	e.pressed = false
	e.moved = false
	e.longFired = false
}

// OutsideClick closes any revealed row and, when multi-select is
// active, clears the whole selection.
func (e *Engine) OutsideClick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.swipedRow = ""
	if e.selectMode {
		e.selected = make(map[string]struct{})
		e.selectMode = false
	}
}

// Swiped returns the id of the row whose actions are revealed, or "".
func (e *Engine) Swiped() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.swipedRow
}

// SelectionMode reports whether multi-select is active.
func (e *Engine) SelectionMode() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectMode
}

// Selected reports whether rowID is selected.
func (e *Engine) Selected(rowID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.selected[rowID]
	return ok
}

// SelectedIDs returns the selected row ids in stable order.
func (e *Engine) SelectedIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.selected))
	for id := range e.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SelectionCount returns how many rows are selected.
func (e *Engine) SelectionCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.selected)
}

// ToggleSelect flips rowID's membership. Deselecting the last row
// leaves multi-select mode.
func (e *Engine) ToggleSelect(rowID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.toggleLocked(rowID)
}

// ClearSelection drops every selected row and leaves multi-select mode.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = make(map[string]struct{})
	e.selectMode = false
}

// Reset drops press and swipe state after the list is replaced. The
// selection is untouched; the list owner remaps or clears it.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTimerLocked()
	e.pressed = false
	e.moved = false
	e.longFired = false
	e.swipedRow = ""
}

func (e *Engine) fireLongPress(seq uint64, rowID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.pressSeq || !e.pressed || e.moved {
		return
	}
	e.longFired = true
	e.longPress = nil
	e.swipedRow = ""
	e.selectMode = true
	e.selected[rowID] = struct{}{}
}

func (e *Engine) toggleLocked(rowID string) {
	if _, ok := e.selected[rowID]; ok {
		delete(e.selected, rowID)
		if len(e.selected) == 0 {
			e.selectMode = false
		}
		return
	}
	e.selectMode = true
	e.selected[rowID] = struct{}{}
}

func (e *Engine) stopTimerLocked() {
	if e.longPress != nil {
		e.longPress.Stop()
		e.longPress = nil
	}
}
