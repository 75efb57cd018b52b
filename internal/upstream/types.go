package upstream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Status is the check-in marker accepted by UpdateAppointmentStatus.
type Status string

const (
	StatusIn  Status = "In"
	StatusOut Status = "Out"
)

// ID is a numeric identifier that the upstream service serializes
// inconsistently: sometimes a JSON number, sometimes a quoted string.
// Zero means absent.
type ID int64

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = 0
		return nil
	}
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	if s == "" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			*id = 0
			return nil
		}
		n = int64(f)
	}
	*id = ID(n)
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(id), 10)), nil
}

// Flag is a boolean-like field serialized as 0/1, "0"/"1", or true/false.
type Flag int

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "", "null", "false":
		*f = 0
		return nil
	case "true":
		*f = 1
		return nil
	}
	s := strings.TrimSpace(strings.Trim(string(data), `"`))
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n == 0 {
		*f = 0
		return nil
	}
	*f = 1
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(f))), nil
}

// Set reports whether the flag holds.
func (f Flag) Set() bool { return f != 0 }

// Text is a string field that upstream may send as a number.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*t = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	*t = Text(strings.TrimSpace(string(data)))
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

func (t Text) String() string { return string(t) }

// AppointmentRecord is one booked slot as returned by GetAppointmentByShop.
// TransID is not guaranteed present; BookingID may be absent on
// transient/auto rows.
type AppointmentRecord struct {
	TransID         ID     `json:"APServiceTransID"`
	BookingID       ID     `json:"AppointmentBookingID"`
	PatientName     string `json:"PatientName"`
	DisplayName     string `json:"DisplayName"`
	Remarks         string `json:"Remarks"`
	FromTime        string `json:"FromTime"`
	ToTime          string `json:"ToTime"`
	TokenNumber     Text   `json:"TokenNumber"`
	Mobile          Text   `json:"Mobile"`
	AlternateMobile Text   `json:"AlternateMobile"`
	AppointmentDate string `json:"AppointmentDate"`
	BookedForDate   string `json:"BookedForDate"`
	UserIn          Flag   `json:"UserIn"`
	UserOut         Flag   `json:"UserOut"`
}

// DisplayedName resolves the name shown for a row.
func (r AppointmentRecord) DisplayedName() string {
	if r.PatientName != "" {
		return r.PatientName
	}
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return "N/A"
}

// ContactMobile resolves the mobile number shown for a row.
func (r AppointmentRecord) ContactMobile() string {
	if r.Mobile != "" {
		return r.Mobile.String()
	}
	return r.AlternateMobile.String()
}

// SlotRecord is one available time window from GetSchedule.
type SlotRecord struct {
	TransID  ID     `json:"APServiceTransID"`
	FromTime string `json:"FromTime"`
	ToTime   string `json:"ToTime"`
	DayPart  string `json:"DayPart"`
}

// ProviderService is one bookable service from ProviderDetails.
type ProviderService struct {
	ServiceID       ID     `json:"APServiceID"`
	ServiceName     string `json:"ServiceName"`
	AssociationType Text   `json:"AssociationType"`
}

// UserAccount is the GetUser payload. Active is kept raw: only an explicit
// "0" marks the account blocked, any other shape counts as active.
type UserAccount struct {
	AdminUserID ID     `json:"AdminUserMasterID"`
	Email       string `json:"Email"`
	Active      Text   `json:"Active"`
}

// Blocked reports whether the account has been deactivated upstream.
func (u UserAccount) Blocked() bool {
	return strings.TrimSpace(u.Active.String()) == "0"
}

// UserType is the CheckUserType payload stored into the session.
type UserType struct {
	AdminUserID ID     `json:"AdminUserMasterID"`
	City        string `json:"City"`
	CityID      ID     `json:"CityID"`
	Mobile      Text   `json:"Mobile"`
	UserType    string `json:"UserType"`
}

// BookingRequest is the InsertAppointments payload. BookedForDate uses the
// "Mon Jan 02 2006" wire format.
type BookingRequest struct {
	AdminUserID     ID     `json:"AdminUserMasterID"`
	TransID         ID     `json:"APServiceTransID"`
	PatientName     string `json:"PatientName"`
	Remarks         string `json:"Remarks"`
	BookedForDate   string `json:"BookedForDate"`
	AlternateMobile string `json:"AlternateMobile"`
}
