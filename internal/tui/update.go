package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/qwicbook/qwicbook-pro/internal/gesture"
	"github.com/qwicbook/qwicbook-pro/internal/roster"
	"github.com/qwicbook/qwicbook-pro/internal/upstream"
)

// widths of the action buttons revealed on a swiped row, rendered as
// "[In] [Out] [Cancel]" against the right edge.
const (
	actionZoneWidth = 19
	actionInWidth   = 5
	actionOutWidth  = 6
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampScroll(len(m.svc.Rows()))
		return m, nil

	case AccountBlockedMsg:
		m.state = stateBlocked
		return m, nil

	case heartbeatMsg:
		return m, heartbeatCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshDoneMsg:
		m.loading = false
		m.pull.Settle()
		m.clampScroll(len(m.svc.Rows()))
		if msg.err != nil {
			m.logger.Warn("refresh failed", "error", msg.err)
			return m, m.showToast("Could not load appointments", true)
		}
		if m.detailRowID != "" {
			if _, ok := m.svc.RowByID(m.detailRowID); !ok {
				m.detailRowID = ""
				if m.state == stateDetail {
					m.state = stateList
				}
			}
		}
		return m, nil

	case opDoneMsg:
		m.loading = false
		if msg.err != nil {
			text := "Something went wrong"
			if roster.IsValidation(msg.err) || errors.Is(msg.err, roster.ErrCancelFailed) {
				text = msg.err.Error()
			} else {
				m.logger.Warn("operation failed", "error", msg.err)
			}
			return m, m.showToast(text, true)
		}
		return m, m.showToast(msg.success, false)

	case toastClearMsg:
		if msg.seq == m.toastSeq {
			m.toastText = ""
		}
		return m, nil

	case tea.MouseMsg:
		if m.state == stateList {
			return m.updateMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateBlocked:
			m.quitting = true
			return m, tea.Quit
		case statePhoneModal:
			return m.updatePhoneModal(msg)
		case stateCancelModal:
			return m.updateCancelModal(msg)
		case stateDetail:
			return m.updateDetailKeys(msg)
		default:
			return m.updateListKeys(msg)
		}
	}

	return m, nil
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scrollTop--
		m.clampScroll(len(m.svc.Rows()))
		return m, nil
	case tea.MouseButtonWheelDown:
		m.scrollTop++
		m.clampScroll(len(m.svc.Rows()))
		return m, nil
	}

	rows := m.svc.Rows()
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		idx, ok := m.rowAt(msg.Y)
		if !ok {
			// presses that miss every row can start a pull instead
			m.engine.OutsideClick()
			m.pressRow = ""
			m.pull.Start(float64(m.scrollTop), float64(msg.Y))
			return m, nil
		}
		m.cursor = idx
		m.pressRow = rows[idx].ID
		m.engine.PointerDown(m.pressRow, float64(msg.X))
		return m, nil

	case tea.MouseActionMotion:
		if m.pressRow != "" {
			m.engine.PointerMove(m.pressRow, float64(msg.X))
		}
		m.pull.Move(float64(m.scrollTop), float64(msg.Y))
		return m, nil

	case tea.MouseActionRelease:
		pressRow := m.pressRow
		m.pressRow = ""

		if m.pull.Release() {
			m.engine.PointerCancel()
			m.loading = true
			return m, m.refreshCmd()
		}

		if pressRow != "" && m.engine.Swiped() == pressRow && msg.X >= m.width-actionZoneWidth {
			m.engine.PointerCancel()
			m.engine.OutsideClick()
			return m.dispatchRowAction(pressRow, msg.X-(m.width-actionZoneWidth))
		}

		if pressRow == "" {
			return m, nil
		}
		switch m.engine.PointerUp(pressRow) {
		case gesture.TapNavigate:
			m.detailRowID = pressRow
			m.state = stateDetail
		}
		return m, nil
	}

	return m, nil
}

// dispatchRowAction resolves which revealed button the release landed
// on, by offset from the left edge of the action zone.
func (m Model) dispatchRowAction(rowID string, offset int) (tea.Model, tea.Cmd) {
	switch {
	case offset < actionInWidth:
		m.loading = true
		return m, m.toggleStatusCmd(rowID, upstream.StatusIn)
	case offset < actionInWidth+actionOutWidth:
		m.loading = true
		return m, m.toggleStatusCmd(rowID, upstream.StatusOut)
	default:
		return m.openCancelModal(rowID)
	}
}

func (m Model) updateListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.svc.Rows()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		if m.cursor < m.scrollTop {
			m.scrollTop = m.cursor
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
		if m.cursor >= m.scrollTop+m.visibleRows() {
			m.scrollTop = m.cursor - m.visibleRows() + 1
		}
		return m, nil

	case key.Matches(msg, m.keys.Enter):
		if len(rows) == 0 {
			return m, nil
		}
		id := rows[m.cursor].ID
		if m.engine.SelectionMode() {
			m.engine.ToggleSelect(id)
			return m, nil
		}
		if m.engine.Swiped() != "" {
			m.engine.OutsideClick()
			return m, nil
		}
		m.detailRowID = id
		m.state = stateDetail
		return m, nil

	case key.Matches(msg, m.keys.Select):
		if len(rows) == 0 {
			return m, nil
		}
		m.engine.ToggleSelect(rows[m.cursor].ID)
		return m, nil

	case key.Matches(msg, m.keys.Swipe):
		if len(rows) == 0 || m.engine.SelectionMode() {
			return m, nil
		}
		m.toggleSwipe(rows[m.cursor].ID)
		return m, nil

	case key.Matches(msg, m.keys.MarkIn):
		return m.markStatus(upstream.StatusIn)

	case key.Matches(msg, m.keys.MarkOut):
		return m.markStatus(upstream.StatusOut)

	case key.Matches(msg, m.keys.Delete):
		if !m.engine.SelectionMode() {
			return m, m.showToast("Long-press or space to select rows first", true)
		}
		m.loading = true
		return m, m.deleteSelectedCmd()

	case key.Matches(msg, m.keys.Cancel):
		id := m.actionRowID()
		if id == "" {
			return m, nil
		}
		return m.openCancelModal(id)

	case key.Matches(msg, m.keys.Book):
		m.state = statePhoneModal
		m.phoneInput.SetValue("")
		return m, m.phoneInput.Focus()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.PrevDay):
		m.loading = true
		return m, m.setDateCmd(m.svc.PrevDay)

	case key.Matches(msg, m.keys.NextDay):
		m.loading = true
		return m, m.setDateCmd(m.svc.NextDay)

	case key.Matches(msg, m.keys.Today):
		m.loading = true
		return m, m.setDateCmd(m.svc.Today)

	case key.Matches(msg, m.keys.Back):
		if m.engine.SelectionMode() {
			m.engine.ClearSelection()
			return m, nil
		}
		m.engine.OutsideClick()
		return m, nil
	}

	return m, nil
}

// markStatus applies In/Out to the selection when one exists, otherwise
// to the swiped or cursor row.
func (m Model) markStatus(status upstream.Status) (tea.Model, tea.Cmd) {
	if m.engine.SelectionMode() {
		m.loading = true
		return m, m.bulkStatusCmd(status)
	}
	id := m.actionRowID()
	if id == "" {
		return m, nil
	}
	m.loading = true
	return m, m.toggleStatusCmd(id, status)
}

// actionRowID is the row single-row actions target: the swiped row when
// one is open, the cursor row otherwise.
func (m Model) actionRowID() string {
	if id := m.engine.Swiped(); id != "" {
		return id
	}
	rows := m.svc.Rows()
	if len(rows) == 0 {
		return ""
	}
	return rows[m.cursor].ID
}

// toggleSwipe synthesizes the same pointer sequence a drag would
// produce so the keyboard path goes through the one state machine.
func (m Model) toggleSwipe(rowID string) {
	open := m.engine.Swiped() == rowID
	m.engine.PointerDown(rowID, gesture.SwipeThreshold*2)
	if open {
		m.engine.PointerMove(rowID, gesture.SwipeThreshold*3)
	} else {
		m.engine.PointerMove(rowID, 0)
	}
	m.engine.PointerUp(rowID)
}

func (m Model) updateDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.state = stateList
		m.detailRowID = ""
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		return m.openCancelModal(m.detailRowID)
	case key.Matches(msg, m.keys.MarkIn):
		m.loading = true
		return m, m.toggleStatusCmd(m.detailRowID, upstream.StatusIn)
	case key.Matches(msg, m.keys.MarkOut):
		m.loading = true
		return m, m.toggleStatusCmd(m.detailRowID, upstream.StatusOut)
	}
	return m, nil
}

func (m Model) updatePhoneModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.state = stateList
		m.phoneInput.Blur()
		return m, nil
	case tea.KeyEnter:
		mobile := m.phoneInput.Value()
		m.state = stateList
		m.phoneInput.Blur()
		m.loading = true
		return m, m.autoBookCmd(mobile)
	}
	var cmd tea.Cmd
	m.phoneInput, cmd = m.phoneInput.Update(msg)
	return m, cmd
}

func (m Model) updateCancelModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.state = stateList
		m.reasonInput.Blur()
		return m, nil
	case tea.KeyEnter:
		reason := m.reasonInput.Value()
		rowID := m.detailRowID
		m.state = stateList
		m.detailRowID = ""
		m.reasonInput.Blur()
		m.loading = true
		return m, m.cancelCmd(rowID, reason)
	}
	var cmd tea.Cmd
	m.reasonInput, cmd = m.reasonInput.Update(msg)
	return m, cmd
}

func (m Model) openCancelModal(rowID string) (tea.Model, tea.Cmd) {
	if rowID == "" {
		return m, nil
	}
	m.detailRowID = rowID
	m.state = stateCancelModal
	m.reasonInput.SetValue("")
	return m, m.reasonInput.Focus()
}

func (m Model) toggleStatusCmd(rowID string, status upstream.Status) tea.Cmd {
	return func() tea.Msg {
		err := m.svc.ToggleStatus(context.Background(), rowID, status)
		return opDoneMsg{err: err, success: fmt.Sprintf("Marked %s", status)}
	}
}

func (m Model) bulkStatusCmd(status upstream.Status) tea.Cmd {
	return func() tea.Msg {
		m.svc.BulkSetStatus(context.Background(), status)
		return opDoneMsg{success: fmt.Sprintf("Selected appointments marked %s", status)}
	}
}

func (m Model) deleteSelectedCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.svc.DeleteSelected(context.Background())
		return opDoneMsg{err: err, success: "Selected appointments deleted"}
	}
}

func (m Model) autoBookCmd(mobile string) tea.Cmd {
	return func() tea.Msg {
		err := m.svc.AutoBook(context.Background(), mobile)
		return opDoneMsg{err: err, success: "Auto token booked"}
	}
}

func (m Model) cancelCmd(rowID, reason string) tea.Cmd {
	return func() tea.Msg {
		err := m.svc.Cancel(context.Background(), rowID, reason)
		return opDoneMsg{err: err, success: "Appointment cancelled"}
	}
}
