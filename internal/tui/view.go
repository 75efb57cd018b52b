package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/qwicbook/qwicbook-pro/internal/gesture"
	"github.com/qwicbook/qwicbook-pro/internal/roster"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.state == stateBlocked {
		return lipgloss.Place(m.width, m.height,
			lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center,
				dangerStyle.Render("Your account has been deactivated."),
				"",
				"Press any key to exit.",
			),
		)
	}

	var content string
	switch m.state {
	case stateDetail:
		content = m.viewDetail()
	case statePhoneModal:
		content = m.viewModal("Book auto token", m.phoneInput.View())
	case stateCancelModal:
		content = m.viewModal("Cancel appointment", m.reasonInput.View())
	default:
		content = m.viewList()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		m.viewDateBar(),
		m.viewStatusLine(),
		content,
		m.help.View(m.keys),
	)
}

func (m Model) viewHeader() string {
	title := headerStyle.Render("QwicBook Pro")
	if m.toastText == "" {
		return title
	}
	style := toastStyle
	if m.toastErr {
		style = toastErrStyle
	}
	toast := style.Render(m.toastText)
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(toast)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + toast
}

func (m Model) viewDateBar() string {
	day := m.svc.Date()
	bar := fmt.Sprintf("◀  %s, %s  ▶", day.Format("Mon"), roster.FormatAPIDate(day))
	if m.loading {
		bar += "  " + m.spinner.View()
	}
	return dateStyle.Render(bar)
}

// viewStatusLine shows the pull indicator while a pull or refresh is in
// flight, the bulk toolbar while rows are selected, and nothing
// otherwise.
func (m Model) viewStatusLine() string {
	ps := m.pull.State()
	switch {
	case ps.Refreshing:
		return pullStyle.Render("⟳ refreshing…")
	case ps.Pulling && ps.Distance > 0:
		filled := int(ps.Distance / gesture.MaxPullDistance * 20)
		label := "↓ pull to refresh"
		if ps.Distance >= gesture.PullThreshold {
			label = "↑ release to refresh"
		}
		return pullStyle.Render(fmt.Sprintf("%s %s", strings.Repeat("─", filled), label))
	case m.engine.SelectionMode():
		return selectedRowStyle.Render(fmt.Sprintf(
			"%d selected · i mark in · o mark out · d delete · esc clear",
			m.engine.SelectionCount(),
		))
	}
	return ""
}

func (m Model) viewList() string {
	rows := m.svc.Rows()
	if len(rows) == 0 {
		return dimStyle.Render("  No appointments for this day.")
	}

	swiped := m.engine.Swiped()
	selecting := m.engine.SelectionMode()

	var b strings.Builder
	end := m.scrollTop + m.visibleRows()
	if end > len(rows) {
		end = len(rows)
	}
	for i := m.scrollTop; i < end; i++ {
		row := rows[i]
		line := m.renderRow(row, selecting, row.ID == swiped)
		switch {
		case row.ID == swiped:
			line = swipedRowStyle.Render(line)
		case selecting && m.engine.Selected(row.ID):
			line = selectedRowStyle.Render(line)
		case i == m.cursor:
			line = cursorRowStyle.Render(line)
		default:
			line = rowStyle.Render(line)
		}
		b.WriteString(line)
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderRow(row roster.Row, selecting, swiped bool) string {
	var b strings.Builder

	if selecting {
		if m.engine.Selected(row.ID) {
			b.WriteString("[x] ")
		} else {
			b.WriteString("[ ] ")
		}
	}

	if tok := row.TokenNumber.String(); tok != "" {
		b.WriteString(fmt.Sprintf("#%-4s", tok))
	} else {
		b.WriteString("     ")
	}
	b.WriteString(fmt.Sprintf("%-5s  %-24s  %-10s  ", row.FromTime, clip(row.DisplayedName(), 24), row.ContactMobile()))

	switch {
	case row.UserIn.Set():
		b.WriteString(statusInStyle.Render("IN "))
	case row.UserOut.Set():
		b.WriteString(statusOutStyle.Render("OUT"))
	default:
		b.WriteString(dimStyle.Render("—  "))
	}

	line := b.String()
	if swiped {
		actions := "[In] [Out] [Cancel]"
		pad := m.width - lipgloss.Width(line) - len(actions) - 2
		if pad < 1 {
			pad = 1
		}
		line += strings.Repeat(" ", pad) + actions
	}
	return line
}

func (m Model) viewDetail() string {
	row, ok := m.svc.RowByID(m.detailRowID)
	if !ok {
		return dimStyle.Render("  Appointment no longer in the list.")
	}

	status := "not checked in"
	if row.UserIn.Set() {
		status = "checked in"
	} else if row.UserOut.Set() {
		status = "checked out"
	}

	lines := []string{
		headerStyle.Render(row.DisplayedName()),
		"",
		fmt.Sprintf("  Time      %s – %s", row.FromTime, row.ToTime),
		fmt.Sprintf("  Token     %s", row.TokenNumber),
		fmt.Sprintf("  Mobile    %s", row.ContactMobile()),
		fmt.Sprintf("  Status    %s", status),
	}
	if row.Remarks != "" {
		lines = append(lines, fmt.Sprintf("  Remarks   %s", row.Remarks))
	}
	lines = append(lines, "", dimStyle.Render("  i mark in · o mark out · c cancel · esc back"))
	return strings.Join(lines, "\n")
}

func (m Model) viewModal(title, input string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		headerStyle.Render(title),
		"",
		"  "+input,
		"",
		dimStyle.Render("  enter confirm · esc dismiss"),
	)
}

func clip(s string, n int) string {
	return runewidth.Truncate(s, n, "…")
}
