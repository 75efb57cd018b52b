// Package tui renders the appointment list and adapts terminal mouse
// and key events onto the gesture engine.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/qwicbook/qwicbook-pro/internal/gesture"
	"github.com/qwicbook/qwicbook-pro/internal/roster"
	"github.com/qwicbook/qwicbook-pro/pkg/logging"
)

type viewState int

const (
	stateList viewState = iota
	stateDetail
	statePhoneModal
	stateCancelModal
	stateBlocked
)

const (
	// listTop is the first screen line occupied by a roster row.
	listTop = 3

	successToastFor = 3 * time.Second
	errorToastFor   = 4 * time.Second

	// heartbeat repaints the view so state changed by the async
	// long-press timer shows up without waiting for the next event.
	heartbeat = 200 * time.Millisecond
)

// AccountBlockedMsg ends the session; the watchdog sends it through
// Program.Send when the account is deactivated.
type AccountBlockedMsg struct{}

type refreshDoneMsg struct{ err error }

type opDoneMsg struct {
	err     error
	success string
}

type toastClearMsg struct{ seq int }

type heartbeatMsg time.Time

// Model is the bubbletea model for the appointment list.
type Model struct {
	svc    *roster.Service
	engine *gesture.Engine
	pull   *gesture.PullTracker
	logger *logging.Logger

	keys    KeyMap
	help    help.Model
	spinner spinner.Model

	phoneInput  textinput.Model
	reasonInput textinput.Model

	state     viewState
	cursor    int
	scrollTop int

	detailRowID string
	pressRow    string

	loading  bool
	quitting bool

	toastText string
	toastErr  bool
	toastSeq  int

	width  int
	height int
}

// New builds the list model. The engine and pull tracker are shared
// with the roster service so refreshes reset gesture state.
func New(svc *roster.Service, eng *gesture.Engine, pull *gesture.PullTracker, logger *logging.Logger) Model {
	if logger == nil {
		logger = logging.Default()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	phone := textinput.New()
	phone.Placeholder = "alternate mobile (optional)"
	phone.CharLimit = 10
	phone.Width = 24

	reason := textinput.New()
	reason.Placeholder = "reason for cancellation"
	reason.CharLimit = roster.MaxCancelReason
	reason.Width = 48

	return Model{
		svc:         svc,
		engine:      eng,
		pull:        pull,
		logger:      logger,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		spinner:     sp,
		phoneInput:  phone,
		reasonInput: reason,
		loading:     true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refreshCmd(), heartbeatCmd())
}

func heartbeatCmd() tea.Cmd {
	return tea.Tick(heartbeat, func(t time.Time) tea.Msg {
		return heartbeatMsg(t)
	})
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: m.svc.Refresh(context.Background())}
	}
}

func (m Model) setDateCmd(shift func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: shift(context.Background())}
	}
}

// showToast replaces the current toast; the clear message carries a
// sequence number so a stale timer cannot wipe a newer toast.
func (m *Model) showToast(text string, isErr bool) tea.Cmd {
	m.toastSeq++
	seq := m.toastSeq
	m.toastText = text
	m.toastErr = isErr
	dur := successToastFor
	if isErr {
		dur = errorToastFor
	}
	return tea.Tick(dur, func(time.Time) tea.Msg {
		return toastClearMsg{seq: seq}
	})
}

// rowAt maps a screen line onto a roster index.
func (m Model) rowAt(y int) (int, bool) {
	if y < listTop {
		return 0, false
	}
	idx := m.scrollTop + (y - listTop)
	if idx < 0 || idx >= len(m.svc.Rows()) {
		return 0, false
	}
	return idx, true
}

// visibleRows is how many roster lines fit on screen.
func (m Model) visibleRows() int {
	n := m.height - listTop - 2
	if n < 1 {
		n = 1
	}
	return n
}

func (m *Model) clampScroll(total int) {
	max := total - m.visibleRows()
	if max < 0 {
		max = 0
	}
	if m.scrollTop > max {
		m.scrollTop = max
	}
	if m.scrollTop < 0 {
		m.scrollTop = 0
	}
	if m.cursor >= total {
		m.cursor = total - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
