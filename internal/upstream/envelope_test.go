package upstream

import (
	"encoding/json"
	"testing"
)

func TestIsSuccess(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"odata value number", `{"value":1}`, true},
		{"data numeral string", `{"data":"1"}`, true},
		{"success boolean", `{"success":true}`, true},
		{"data zero", `{"data":0}`, false},
		{"other numeral string", `"2"`, false},
		{"raw number", `1`, true},
		{"raw numeral string", `"1"`, true},
		{"padded numeral string", `" 1 "`, true},
		{"nested value then data", `{"value":{"data":"1"}}`, true},
		{"proxy wrapper", `{"success":true,"data":1,"timestamp":"2025-12-03T10:00:00Z","source":"upstream"}`, true},
		{"proxy wrapper failure payload", `{"success":false,"data":0}`, false},
		{"success false", `{"success":false}`, false},
		{"empty object", `{}`, false},
		{"null", `null`, false},
		{"array", `[1]`, false},
		{"unrelated object", `{"Message":"ok"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSuccess([]byte(tt.body)); got != tt.want {
				t.Fatalf("IsSuccess(%s) = %v, want %v", tt.body, got, tt.want)
			}
		})
	}
}

func TestNumericSignal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"raw one", `1`, 1, false},
		{"raw zero", `0`, 0, false},
		{"quoted", `"0"`, 0, false},
		{"wrapped", `{"data":"1"}`, 1, false},
		{"value wrapped", `{"value":1}`, 1, false},
		{"garbage", `"maybe"`, 0, true},
		{"object", `{"Message":"ok"}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := numericSignal([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("numericSignal(%s) expected error, got %d", tt.body, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("numericSignal(%s) returned error: %v", tt.body, err)
			}
			if got != tt.want {
				t.Fatalf("numericSignal(%s) = %d, want %d", tt.body, got, tt.want)
			}
		})
	}
}

func TestDecodeListShapes(t *testing.T) {
	type row struct {
		Name string `json:"Name"`
	}

	t.Run("array", func(t *testing.T) {
		rows, err := decodeList[row]([]byte(`[{"Name":"a"},{"Name":"b"}]`))
		if err != nil {
			t.Fatalf("decodeList: %v", err)
		}
		if len(rows) != 2 || rows[1].Name != "b" {
			t.Fatalf("rows = %+v", rows)
		}
	})

	t.Run("odata envelope", func(t *testing.T) {
		rows, err := decodeList[row]([]byte(`{"value":[{"Name":"a"}]}`))
		if err != nil {
			t.Fatalf("decodeList: %v", err)
		}
		if len(rows) != 1 || rows[0].Name != "a" {
			t.Fatalf("rows = %+v", rows)
		}
	})

	t.Run("data wrapper single object", func(t *testing.T) {
		rows, err := decodeList[row]([]byte(`{"data":{"Name":"solo"}}`))
		if err != nil {
			t.Fatalf("decodeList: %v", err)
		}
		if len(rows) != 1 || rows[0].Name != "solo" {
			t.Fatalf("rows = %+v", rows)
		}
	})

	t.Run("scalar yields empty", func(t *testing.T) {
		rows, err := decodeList[row]([]byte(`1`))
		if err != nil {
			t.Fatalf("decodeList: %v", err)
		}
		if len(rows) != 0 {
			t.Fatalf("rows = %+v, want empty", rows)
		}
	})

	t.Run("null yields empty", func(t *testing.T) {
		rows, err := decodeList[row]([]byte(`null`))
		if err != nil {
			t.Fatalf("decodeList: %v", err)
		}
		if len(rows) != 0 {
			t.Fatalf("rows = %+v, want empty", rows)
		}
	})
}

func TestTolerantScalars(t *testing.T) {
	var rec AppointmentRecord
	body := []byte(`{
		"APServiceTransID": "88",
		"AppointmentBookingID": 101,
		"PatientName": "Asha Rao",
		"FromTime": "09:30",
		"TokenNumber": 7,
		"UserIn": "1",
		"UserOut": 0
	}`)
	if err := json.Unmarshal(body, &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.TransID != 88 {
		t.Errorf("TransID = %d, want 88", rec.TransID)
	}
	if rec.BookingID != 101 {
		t.Errorf("BookingID = %d, want 101", rec.BookingID)
	}
	if rec.TokenNumber != "7" {
		t.Errorf("TokenNumber = %q, want 7", rec.TokenNumber)
	}
	if !rec.UserIn.Set() || rec.UserOut.Set() {
		t.Errorf("flags = in:%v out:%v, want in only", rec.UserIn.Set(), rec.UserOut.Set())
	}
}

func TestUserAccountBlocked(t *testing.T) {
	tests := []struct {
		body    string
		blocked bool
	}{
		{`{"Active":"0"}`, true},
		{`{"Active":0}`, true},
		{`{"Active":"1"}`, false},
		{`{"Active":1}`, false},
		{`{}`, false},
	}
	for _, tt := range tests {
		var acct UserAccount
		if err := json.Unmarshal([]byte(tt.body), &acct); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.body, err)
		}
		if acct.Blocked() != tt.blocked {
			t.Errorf("Blocked(%s) = %v, want %v", tt.body, acct.Blocked(), tt.blocked)
		}
	}
}
