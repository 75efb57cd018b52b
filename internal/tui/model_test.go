package tui

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/qwicbook/qwicbook-pro/internal/gesture"
	"github.com/qwicbook/qwicbook-pro/internal/roster"
	"github.com/qwicbook/qwicbook-pro/internal/upstream"
	"github.com/qwicbook/qwicbook-pro/pkg/logging"
)

type stubUpstream struct {
	appointments []upstream.AppointmentRecord
	statusCalls  []upstream.Status
}

func (s *stubUpstream) FetchAppointments(ctx context.Context, serviceID int64, date string) ([]upstream.AppointmentRecord, error) {
	return s.appointments, nil
}

func (s *stubUpstream) FetchSchedule(ctx context.Context, serviceID int64, currentDate, selectedDate, timeOfDay string) ([]upstream.SlotRecord, error) {
	return nil, nil
}

func (s *stubUpstream) SetStatus(ctx context.Context, bookingID int64, status upstream.Status) error {
	s.statusCalls = append(s.statusCalls, status)
	return nil
}

func (s *stubUpstream) DeleteMany(ctx context.Context, csv string) error { return nil }

func (s *stubUpstream) CreateBooking(ctx context.Context, req upstream.BookingRequest) error {
	return nil
}

func (s *stubUpstream) CancelBooking(ctx context.Context, bookingID int64, reason string) (int, error) {
	return 1, nil
}

type noopTimer struct{}

func (noopTimer) Stop() bool { return true }

func manualTimer(time.Duration, func()) gesture.Timer { return noopTimer{} }

func newTestModel(t *testing.T, up *stubUpstream) (Model, *gesture.Engine) {
	t.Helper()
	logger := logging.NewWithWriter("error", io.Discard)
	eng := gesture.NewEngineWithTimer(manualTimer)
	pull := gesture.NewPullTrackerWithTimer(manualTimer)
	svc := roster.NewService(up, eng, logger, 12, 3)
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	m := New(svc, eng, pull, logger)
	sized, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return sized.(Model), eng
}

func threeAppointments() []upstream.AppointmentRecord {
	return []upstream.AppointmentRecord{
		{BookingID: 101, PatientName: "Asha Rao", FromTime: "09:30"},
		{BookingID: 102, PatientName: "Vikram Shah", FromTime: "11:15"},
		{BookingID: 103, PatientName: "Meena Iyer", FromTime: "14:00"},
	}
}

func TestMouseTapOpensDetail(t *testing.T) {
	up := &stubUpstream{appointments: threeAppointments()}
	m, _ := newTestModel(t, up)
	want := m.svc.Rows()[1].ID

	next, _ := m.Update(tea.MouseMsg{X: 10, Y: listTop + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(Model)
	next, _ = m.Update(tea.MouseMsg{X: 10, Y: listTop + 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = next.(Model)

	if m.state != stateDetail || m.detailRowID != want {
		t.Fatalf("state = %v, detail = %q, want detail of %q", m.state, m.detailRowID, want)
	}
}

func TestMouseDragRevealsActions(t *testing.T) {
	up := &stubUpstream{appointments: threeAppointments()}
	m, eng := newTestModel(t, up)
	want := m.svc.Rows()[0].ID

	next, _ := m.Update(tea.MouseMsg{X: 60, Y: listTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(Model)
	next, _ = m.Update(tea.MouseMsg{X: 10, Y: listTop, Action: tea.MouseActionMotion})
	m = next.(Model)
	next, _ = m.Update(tea.MouseMsg{X: 10, Y: listTop, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = next.(Model)

	if eng.Swiped() != want {
		t.Fatalf("Swiped() = %q, want %q", eng.Swiped(), want)
	}
	if m.state != stateList {
		t.Fatalf("drag navigated away: state = %v", m.state)
	}
}

func TestActionZoneClickMarksIn(t *testing.T) {
	up := &stubUpstream{appointments: threeAppointments()}
	m, eng := newTestModel(t, up)
	id := m.svc.Rows()[0].ID

	// reveal the row's actions, then click the [In] button
	eng.PointerDown(id, 60)
	eng.PointerMove(id, 10)
	eng.PointerUp(id)

	x := m.width - actionZoneWidth + 1
	next, _ := m.Update(tea.MouseMsg{X: x, Y: listTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(Model)
	next, cmd := m.Update(tea.MouseMsg{X: x, Y: listTop, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = next.(Model)

	if cmd == nil {
		t.Fatal("action click produced no command")
	}
	msg := cmd()
	done, ok := msg.(opDoneMsg)
	if !ok || done.err != nil {
		t.Fatalf("msg = %#v", msg)
	}
	if len(up.statusCalls) != 1 || up.statusCalls[0] != upstream.StatusIn {
		t.Fatalf("status calls = %v", up.statusCalls)
	}
	if eng.Swiped() != "" {
		t.Error("action click left the row revealed")
	}
}

func TestPullReleaseTriggersRefresh(t *testing.T) {
	up := &stubUpstream{appointments: threeAppointments()}
	m, _ := newTestModel(t, up)

	// press below the last row so no row captures the gesture
	start := listTop + 3
	next, _ := m.Update(tea.MouseMsg{X: 10, Y: start, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(Model)
	next, _ = m.Update(tea.MouseMsg{X: 10, Y: start + 90, Action: tea.MouseActionMotion})
	m = next.(Model)
	next, cmd := m.Update(tea.MouseMsg{X: 10, Y: start + 90, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = next.(Model)

	if !m.loading || cmd == nil {
		t.Fatal("pull release did not start a refresh")
	}
	if _, ok := cmd().(refreshDoneMsg); !ok {
		t.Fatal("pull release command is not a refresh")
	}
	if !m.pull.State().Refreshing {
		t.Error("pull tracker not in refreshing state")
	}
}

func TestRowPressDoesNotArmPull(t *testing.T) {
	up := &stubUpstream{appointments: threeAppointments()}
	m, _ := newTestModel(t, up)

	next, _ := m.Update(tea.MouseMsg{X: 10, Y: listTop, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m = next.(Model)
	if m.pull.State().Pulling {
		t.Fatal("press on a row armed a pull")
	}
	next, _ = m.Update(tea.MouseMsg{X: 10, Y: listTop + 90, Action: tea.MouseActionMotion})
	m = next.(Model)
	next, _ = m.Update(tea.MouseMsg{X: 10, Y: listTop + 90, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	m = next.(Model)
	if m.loading {
		t.Fatal("dragging a row downward triggered a refresh")
	}
}

func TestToastSequenceIgnoresStaleClear(t *testing.T) {
	up := &stubUpstream{appointments: threeAppointments()}
	m, _ := newTestModel(t, up)

	m.showToast("first", false)
	stale := m.toastSeq
	m.showToast("second", true)

	next, _ := m.Update(toastClearMsg{seq: stale})
	m = next.(Model)
	if m.toastText != "second" {
		t.Fatalf("stale clear wiped the toast: %q", m.toastText)
	}
	next, _ = m.Update(toastClearMsg{seq: m.toastSeq})
	m = next.(Model)
	if m.toastText != "" {
		t.Fatalf("current clear left the toast: %q", m.toastText)
	}
}

func TestRefreshErrorShowsToast(t *testing.T) {
	up := &stubUpstream{appointments: threeAppointments()}
	m, _ := newTestModel(t, up)
	m.loading = true

	next, _ := m.Update(refreshDoneMsg{err: context.DeadlineExceeded})
	m = next.(Model)
	if m.loading {
		t.Error("loading flag survived refresh completion")
	}
	if m.toastText == "" || !m.toastErr {
		t.Fatalf("toast = %q err=%v", m.toastText, m.toastErr)
	}
}

func TestBlockedMessageLocksUI(t *testing.T) {
	up := &stubUpstream{appointments: threeAppointments()}
	m, _ := newTestModel(t, up)

	next, _ := m.Update(AccountBlockedMsg{})
	m = next.(Model)
	if m.state != stateBlocked {
		t.Fatalf("state = %v, want blocked", m.state)
	}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	if cmd == nil {
		t.Fatal("key in blocked state did not quit")
	}
}

func TestClipKeepsRuneBoundaries(t *testing.T) {
	got := clip("சிவகுமார் ராமச்சந்திரன்", 8)
	if !utf8.ValidString(got) {
		t.Fatalf("clip produced invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("clip did not append an ellipsis: %q", got)
	}
	if got := clip("short", 24); got != "short" {
		t.Fatalf("clip left a short name alone badly: %q", got)
	}
}
