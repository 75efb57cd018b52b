package roster

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/qwicbook/qwicbook-pro/internal/gesture"
	"github.com/qwicbook/qwicbook-pro/internal/upstream"
	"github.com/qwicbook/qwicbook-pro/pkg/logging"
)

// MaxCancelReason caps the free-text reason sent with a cancellation.
const MaxCancelReason = 200

// autoTokenLabel fills the name and remarks of a quick booking.
const autoTokenLabel = "Auto Token"

// ErrCancelFailed is surfaced verbatim when upstream declines a
// cancellation; the row stays in the list.
var ErrCancelFailed = errors.New("Something went wrong. Try again.")

// ValidationError marks input problems caught before any network call.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a pre-flight validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Upstream is the slice of the proxy client the service drives.
type Upstream interface {
	FetchAppointments(ctx context.Context, serviceID int64, date string) ([]upstream.AppointmentRecord, error)
	FetchSchedule(ctx context.Context, serviceID int64, currentDate, selectedDate, timeOfDay string) ([]upstream.SlotRecord, error)
	SetStatus(ctx context.Context, bookingID int64, status upstream.Status) error
	DeleteMany(ctx context.Context, bookingIDsCsv string) error
	CreateBooking(ctx context.Context, req upstream.BookingRequest) error
	CancelBooking(ctx context.Context, bookingID int64, reason string) (int, error)
}

// Service owns the roster for the selected day and runs every list
// operation against the upstream proxy. It is the single writer of the
// roster; reads hand out copies.
type Service struct {
	mu sync.Mutex

	upstream Upstream
	gestures *gesture.Engine
	logger   *logging.Logger

	serviceID   int64
	adminUserID int64

	date   time.Time
	roster Roster

	// gen discards fetch responses that land after a newer fetch
	// started, so a slow answer for an old day never overwrites the
	// current one.
	gen uint64

	now func() time.Time
}

// NewService builds a service for one provider service id. The engine
// is shared with the view so refreshes and bulk operations can reset
// gesture state.
func NewService(up Upstream, eng *gesture.Engine, logger *logging.Logger, serviceID, adminUserID int64) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if eng == nil {
		eng = gesture.NewEngine()
	}
	s := &Service{
		upstream:    up,
		gestures:    eng,
		logger:      logger,
		serviceID:   serviceID,
		adminUserID: adminUserID,
		now:         time.Now,
	}
	s.date = midnight(s.now())
	return s
}

// Date returns the selected day.
func (s *Service) Date() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.date
}

// Rows returns a copy of the current roster in display order.
func (s *Service) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]Row, len(s.roster.Rows()))
	copy(rows, s.roster.Rows())
	return rows
}

// RowByID resolves a synthetic row id.
func (s *Service) RowByID(id string) (Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.ByID(id)
}

// Refresh refetches the selected day and replaces the roster. A
// response that arrives after a newer refresh started is discarded.
// Swipe and press state reset with the new batch; the selection
// survives by booking id, rows that disappeared upstream drop out.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	serviceID := s.serviceID
	day := FormatAPIDate(s.date)
	s.mu.Unlock()

	records, err := s.upstream.FetchAppointments(ctx, serviceID, day)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		s.logger.Debug("discarding stale roster fetch", "date", day)
		return nil
	}
	if err != nil {
		return fmt.Errorf("refresh roster: %w", err)
	}

	selected := make(map[upstream.ID]bool)
	for _, id := range s.gestures.SelectedIDs() {
		if row, ok := s.roster.ByID(id); ok && row.BookingID != 0 {
			selected[row.BookingID] = true
		}
	}

	s.roster.Load(records)
	s.gestures.Reset()

	// row ids are fresh every batch, so carry the selection over by
	// booking id
	s.gestures.ClearSelection()
	if len(selected) > 0 {
		for _, row := range s.roster.Rows() {
			if selected[row.BookingID] {
				s.gestures.ToggleSelect(row.ID)
			}
		}
	}

	s.logger.Info("list refreshed", "date", day, "rows", s.roster.Len())
	return nil
}

// SetDate switches to day and refetches.
func (s *Service) SetDate(ctx context.Context, day time.Time) error {
	s.mu.Lock()
	s.date = midnight(day)
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// NextDay advances the selected day by one.
func (s *Service) NextDay(ctx context.Context) error {
	return s.SetDate(ctx, s.Date().AddDate(0, 0, 1))
}

// PrevDay moves the selected day back by one.
func (s *Service) PrevDay(ctx context.Context) error {
	return s.SetDate(ctx, s.Date().AddDate(0, 0, -1))
}

// Today jumps back to the current day.
func (s *Service) Today(ctx context.Context) error {
	return s.SetDate(ctx, s.now())
}

// ToggleStatus marks one row In or Out. The row is patched in place on
// success; the list is not reordered and not refetched.
func (s *Service) ToggleStatus(ctx context.Context, rowID string, status upstream.Status) error {
	row, ok := s.RowByID(rowID)
	if !ok {
		return validationf("appointment no longer in the list")
	}
	if row.BookingID == 0 {
		return validationf("appointment has no booking id")
	}
	if err := s.upstream.SetStatus(ctx, int64(row.BookingID), status); err != nil {
		return fmt.Errorf("toggle status: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roster.PatchStatus(rowID, status)
	return nil
}

// BulkSetStatus marks every selected row In or Out, one upstream call
// per row in selection order. Rows that fail are logged and skipped;
// the selection is cleared either way.
func (s *Service) BulkSetStatus(ctx context.Context, status upstream.Status) {
	ids := s.gestures.SelectedIDs()
	for _, id := range ids {
		row, ok := s.RowByID(id)
		if !ok || row.BookingID == 0 {
			continue
		}
		if err := s.upstream.SetStatus(ctx, int64(row.BookingID), status); err != nil {
			s.logger.Warn("bulk status update failed", "bookingID", int64(row.BookingID), "status", string(status), "error", err)
			continue
		}
		s.mu.Lock()
		s.roster.PatchStatus(id, status)
		s.mu.Unlock()
	}
	s.gestures.ClearSelection()
}

// DeleteSelected cancels every selected row in one upstream call. Rows
// without a booking id are skipped. On success the selection clears and
// the roster is refetched; on failure the selection stays.
func (s *Service) DeleteSelected(ctx context.Context) error {
	ids := s.gestures.SelectedIDs()
	var bookingIDs []string
	for _, id := range ids {
		row, ok := s.RowByID(id)
		if !ok || row.BookingID == 0 {
			continue
		}
		bookingIDs = append(bookingIDs, strconv.FormatInt(int64(row.BookingID), 10))
	}
	if len(bookingIDs) == 0 {
		s.gestures.ClearSelection()
		return nil
	}
	if err := s.upstream.DeleteMany(ctx, strings.Join(bookingIDs, ",")); err != nil {
		return fmt.Errorf("delete selected: %w", err)
	}
	s.gestures.ClearSelection()
	return s.Refresh(ctx)
}

// AutoBook books the first open slot of the selected day under the
// "Auto Token" label. altMobile is optional; when present it must be a
// valid mobile number. Past days are rejected before any network call.
func (s *Service) AutoBook(ctx context.Context, altMobile string) error {
	s.mu.Lock()
	day := s.date
	serviceID := s.serviceID
	adminUserID := s.adminUserID
	s.mu.Unlock()

	now := s.now()
	if PastDay(day, now) {
		return validationf("cannot book on a past date")
	}
	altMobile = strings.TrimSpace(altMobile)
	if altMobile != "" && !ValidMobile(altMobile) {
		return validationf("enter a valid 10 digit mobile number")
	}

	timeOfDay := "00:00"
	if SameDay(day, now) {
		timeOfDay = FormatClock(now)
	}
	slots, err := s.upstream.FetchSchedule(ctx, serviceID, FormatAPIDate(now), FormatAPIDate(day), timeOfDay)
	if err != nil {
		return fmt.Errorf("auto book: %w", err)
	}
	if len(slots) == 0 {
		return validationf("no open slots for %s", FormatAPIDate(day))
	}
	slot := slots[0]
	if slot.TransID == 0 {
		return validationf("first open slot is missing its transaction id")
	}

	req := upstream.BookingRequest{
		AdminUserID:     upstream.ID(adminUserID),
		TransID:         slot.TransID,
		PatientName:     autoTokenLabel,
		Remarks:         autoTokenLabel,
		BookedForDate:   FormatBookingDate(day),
		AlternateMobile: altMobile,
	}
	if err := s.upstream.CreateBooking(ctx, req); err != nil {
		return fmt.Errorf("auto book: %w", err)
	}
	s.logger.Info("auto token booked", "date", FormatAPIDate(day), "transID", int64(slot.TransID))
	return s.Refresh(ctx)
}

// Cancel cancels one row with a reason. Upstream answers 1 for success
// and 0 for failure; on failure the row stays and ErrCancelFailed is
// returned for the view to show verbatim.
func (s *Service) Cancel(ctx context.Context, rowID, reason string) error {
	if len(reason) > MaxCancelReason {
		return validationf("cancel reason must be at most %d characters", MaxCancelReason)
	}
	row, ok := s.RowByID(rowID)
	if !ok {
		return validationf("appointment no longer in the list")
	}
	if row.BookingID == 0 {
		return validationf("appointment has no booking id")
	}
	code, err := s.upstream.CancelBooking(ctx, int64(row.BookingID), reason)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	if code != 1 {
		return ErrCancelFailed
	}
	return s.Refresh(ctx)
}
