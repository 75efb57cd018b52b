// Package roster holds the in-memory appointment list for the selected
// day and the operations the list view performs against the upstream
// proxy.
package roster

import (
	"sort"

	"github.com/google/uuid"

	"github.com/qwicbook/qwicbook-pro/internal/upstream"
)

// Row is one list entry. ID is synthesized per fetch so rows stay
// addressable even when upstream omits its own identifiers; it is never
// derived from the row's position.
type Row struct {
	ID string
	upstream.AppointmentRecord
}

// Roster is the ordered set of rows for the selected day.
type Roster struct {
	rows []Row
}

// Load replaces the roster with a fresh batch. Every row gets a new id
// and the batch is ordered by start time; the lexical order of "HH:mm"
// strings matches their chronological order.
func (r *Roster) Load(records []upstream.AppointmentRecord) {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Row{ID: uuid.NewString(), AppointmentRecord: rec}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].FromTime < rows[j].FromTime
	})
	r.rows = rows
}

// Rows returns the current batch in display order.
func (r *Roster) Rows() []Row {
	return r.rows
}

// Len returns the number of rows.
func (r *Roster) Len() int {
	return len(r.rows)
}

// ByID finds a row by its synthetic id.
func (r *Roster) ByID(id string) (Row, bool) {
	for _, row := range r.rows {
		if row.ID == id {
			return row, true
		}
	}
	return Row{}, false
}

// PatchStatus updates a row's check-in flags in place without
// reordering the list. In and Out are mutually exclusive.
func (r *Roster) PatchStatus(id string, status upstream.Status) bool {
	for i := range r.rows {
		if r.rows[i].ID != id {
			continue
		}
		if status == upstream.StatusIn {
			r.rows[i].UserIn = 1
			r.rows[i].UserOut = 0
		} else {
			r.rows[i].UserIn = 0
			r.rows[i].UserOut = 1
		}
		return true
	}
	return false
}
