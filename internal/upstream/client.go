package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/qwicbook/qwicbook-pro/pkg/logging"
)

const (
	defaultBaseURL   = "http://localhost:5000/api"
	defaultTimeout   = 15 * time.Second
	defaultCacheSize = 32
)

// ErrRejected means the service answered but did not emit a recognized
// success signal. Ambiguous shapes are treated as failure.
var ErrRejected = errors.New("upstream rejected the request")

// Client wraps the REST surface the appointment proxy exposes. GET
// endpoints take PascalCase query parameters matching the upstream SOAP
// service field names; POST bodies wrap the payload in a single named
// object per operation.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger

	// GetSchedule answers are immutable for a given (service, date, time)
	// triple until a booking lands, so they are cached and purged on insert.
	schedules *lru.Cache[string, []SlotRecord]
}

// NewClient constructs a proxy REST client.
func NewClient(baseURL string, timeout time.Duration, cacheSize int, logger *logging.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	if logger == nil {
		logger = logging.Default()
	}
	schedules, _ := lru.New[string, []SlotRecord](cacheSize)
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
		schedules:  schedules,
	}
}

// FetchAppointments lists bookings for a service on a "dd-MMM-yyyy" date.
func (c *Client) FetchAppointments(ctx context.Context, serviceID int64, date string) ([]AppointmentRecord, error) {
	q := url.Values{}
	q.Set("APServiceID", strconv.FormatInt(serviceID, 10))
	q.Set("AppointmentDate", date)

	body, err := c.get(ctx, "/getappointmentbyshop", q)
	if err != nil {
		return nil, fmt.Errorf("fetch appointments: %w", err)
	}
	records, err := decodeList[AppointmentRecord](body)
	if err != nil {
		return nil, fmt.Errorf("fetch appointments: %w", err)
	}
	return records, nil
}

// FetchSchedule lists open slots for a service. currentDate and
// selectedDate use "dd-MMM-yyyy"; timeOfDay is "HH:mm" ("00:00" for any
// day other than today).
func (c *Client) FetchSchedule(ctx context.Context, serviceID int64, currentDate, selectedDate, timeOfDay string) ([]SlotRecord, error) {
	key := fmt.Sprintf("%d|%s|%s|%s", serviceID, currentDate, selectedDate, timeOfDay)
	if slots, ok := c.schedules.Get(key); ok {
		return slots, nil
	}

	q := url.Values{}
	q.Set("APServiceID", strconv.FormatInt(serviceID, 10))
	q.Set("CurrentDate", currentDate)
	q.Set("TodayDate", selectedDate)
	q.Set("TodayTime", timeOfDay)

	body, err := c.get(ctx, "/getschedule", q)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	slots, err := decodeList[SlotRecord](body)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	c.schedules.Add(key, slots)
	return slots, nil
}

// SetStatus flips a booking to In or Out. The upstream API takes one
// booking id per call.
func (c *Client) SetStatus(ctx context.Context, bookingID int64, status Status) error {
	q := url.Values{}
	q.Set("AppointmentBookingIDs", strconv.FormatInt(bookingID, 10))
	q.Set("UserInOut", "1")
	q.Set("InOutStatus", string(status))

	body, err := c.get(ctx, "/updateappointmentstatus", q)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if !IsSuccess(body) {
		return fmt.Errorf("set status %s for booking %d: %w", status, bookingID, ErrRejected)
	}
	return nil
}

// DeleteMany cancels a comma-separated list of booking ids in one call.
func (c *Client) DeleteMany(ctx context.Context, bookingIDsCsv string) error {
	q := url.Values{}
	q.Set("AppointmentBookingIDs", bookingIDsCsv)

	body, err := c.get(ctx, "/deletemultipleappointments", q)
	if err != nil {
		return fmt.Errorf("delete appointments: %w", err)
	}
	if !IsSuccess(body) {
		return fmt.Errorf("delete appointments %s: %w", bookingIDsCsv, ErrRejected)
	}
	return nil
}

// CreateBooking inserts a booking against a slot transaction id.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) error {
	payload := map[string]BookingRequest{"InsertAppointmentBookings": req}

	body, err := c.post(ctx, "/insertappointments", payload)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	if !IsSuccess(body) {
		return fmt.Errorf("create booking: %w", ErrRejected)
	}
	c.schedules.Purge()
	return nil
}

// CancelBooking cancels one booking with a reason (at most 200 characters).
// The operation uses its own convention: 1 = success, 0 = failure.
func (c *Client) CancelBooking(ctx context.Context, bookingID int64, reason string) (int, error) {
	payload := map[string]any{
		"AppointmentBookingID": bookingID,
		"CancelMessage":        reason,
	}

	body, err := c.post(ctx, "/deleteappointmentwithcustommessage", payload)
	if err != nil {
		return 0, fmt.Errorf("cancel booking: %w", err)
	}
	code, err := numericSignal(body)
	if err != nil {
		return 0, fmt.Errorf("cancel booking: %w", err)
	}
	return code, nil
}

// CheckAccountActive reports whether the admin account is still active.
// A missing or unparseable Active flag counts as active; blocking requires
// an explicit zero.
func (c *Client) CheckAccountActive(ctx context.Context, adminUserID int64) (bool, error) {
	q := url.Values{}
	q.Set("AdminUserMasterID", strconv.FormatInt(adminUserID, 10))

	body, err := c.get(ctx, "/getuser", q)
	if err != nil {
		return false, fmt.Errorf("check account: %w", err)
	}
	account, err := decodeFirst[UserAccount](body)
	if err != nil {
		return false, fmt.Errorf("check account: %w", err)
	}
	if account == nil {
		return true, nil
	}
	return !account.Blocked(), nil
}

// FetchProviderServices lists the services visible to an admin account.
func (c *Client) FetchProviderServices(ctx context.Context, adminUserID int64) ([]ProviderService, error) {
	q := url.Values{}
	q.Set("AdminUserMasterID", strconv.FormatInt(adminUserID, 10))

	body, err := c.get(ctx, "/providerdetails", q)
	if err != nil {
		return nil, fmt.Errorf("fetch services: %w", err)
	}
	services, err := decodeList[ProviderService](body)
	if err != nil {
		return nil, fmt.Errorf("fetch services: %w", err)
	}
	return services, nil
}

// FetchUserType resolves the user-info blob stored into the session.
func (c *Client) FetchUserType(ctx context.Context, email string) (*UserType, error) {
	q := url.Values{}
	q.Set("Email", email)

	body, err := c.get(ctx, "/checkusertype", q)
	if err != nil {
		return nil, fmt.Errorf("fetch user type: %w", err)
	}
	info, err := decodeFirst[UserType](body)
	if err != nil {
		return nil, fmt.Errorf("fetch user type: %w", err)
	}
	return info, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, path)
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, path)
}

func (c *Client) do(req *http.Request, path string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		c.logger.Warn("proxy non-2xx response", "status", resp.StatusCode, "path", path, "body", msg)
		return nil, fmt.Errorf("proxy returned %d: %s", resp.StatusCode, msg)
	}
	return respBody, nil
}
