// Package apiclient is the HTTP client for the remote booking API. It covers
// the wizard's collaborator operations (bookings fetch, atomic multi-slot
// creation, payment, order status, cancellation requests) and the catalog
// reads the surrounding screens need. Catalog GETs may be served from an
// optional Redis cache; booking state is always fetched fresh.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"fieldbook/internal/models"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d", e.Code)
}

// Client talks to the booking API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	loc        *time.Location

	redis    *redis.Client
	cacheTTL time.Duration
}

// New constructs a client. loc is the fixed reference timezone slot start
// times are normalized to for transmission; nil means UTC.
func New(baseURL, apiKey string, loc *time.Location) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(10), 20),
		loc:        loc,
	}
}

// SetRateLimit overrides the default client-side request budget.
func (c *Client) SetRateLimit(perSecond float64, burst int) {
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// UseRedisCache configures optional Redis caching for catalog GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// ListFacilities returns the facility catalog.
func (c *Client) ListFacilities(ctx context.Context) ([]models.Facility, error) {
	endpoint := fmt.Sprintf("%s/api/v1/facilities", c.baseURL)
	cacheKey := "facilities"
	var wrap struct {
		Facilities []models.Facility `json:"facilities"`
	}

	if c.readCache(ctx, cacheKey, &wrap) {
		return wrap.Facilities, nil
	}

	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, wrap)
	return wrap.Facilities, nil
}

// SubCourts returns the sub-courts of a facility.
func (c *Client) SubCourts(ctx context.Context, facilityID int64) ([]models.SubCourt, error) {
	endpoint := fmt.Sprintf("%s/api/v1/facilities/%d/sub-courts", c.baseURL, facilityID)
	cacheKey := fmt.Sprintf("sub-courts:%d", facilityID)
	var wrap struct {
		SubCourts []models.SubCourt `json:"sub_courts"`
	}

	if c.readCache(ctx, cacheKey, &wrap) {
		return wrap.SubCourts, nil
	}

	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, wrap)
	return wrap.SubCourts, nil
}

type bookingPayload struct {
	ID         string `json:"id"`
	SubCourtID int64  `json:"sub_court_id"`
	StartTime  string `json:"start_time"`
	Status     string `json:"status"`
}

// BookingsForSubCourt fetches the existing bookings for one sub-court. The
// response is re-filtered on sub_court_id: bookings the server leaked from
// another sub-court are dropped.
func (c *Client) BookingsForSubCourt(ctx context.Context, subCourtID int64) ([]models.ExistingBooking, error) {
	endpoint := fmt.Sprintf("%s/api/v1/sub-courts/%d/bookings", c.baseURL, subCourtID)
	var wrap struct {
		Bookings []bookingPayload `json:"bookings"`
	}
	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}

	out := make([]models.ExistingBooking, 0, len(wrap.Bookings))
	for _, b := range wrap.Bookings {
		if b.SubCourtID != subCourtID {
			continue
		}
		start, err := time.ParseInLocation(time.RFC3339, b.StartTime, c.loc)
		if err != nil {
			return nil, fmt.Errorf("parse booking start time %q: %w", b.StartTime, err)
		}
		out = append(out, models.ExistingBooking{
			ID:         b.ID,
			SubCourtID: b.SubCourtID,
			StartTime:  start.In(c.loc),
			Status:     b.Status,
		})
	}
	return out, nil
}

// CreateBookingsRequest is the body for the atomic multi-slot booking call.
type CreateBookingsRequest struct {
	SubCourtID int64    `json:"sub_court_id"`
	StartTimes []string `json:"start_times"`
	RequestID  string   `json:"request_id"`
}

// CreateBookings submits every slot in one request and returns the created
// booking ids. One call, one set; partial creation is the server's concern.
func (c *Client) CreateBookings(ctx context.Context, subCourtID int64, startTimes []time.Time) ([]string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bookings", c.baseURL)
	body := CreateBookingsRequest{
		SubCourtID: subCourtID,
		StartTimes: make([]string, 0, len(startTimes)),
		RequestID:  uuid.NewString(),
	}
	for _, t := range startTimes {
		body.StartTimes = append(body.StartTimes, t.In(c.loc).Format(time.RFC3339))
	}

	var resp struct {
		Bookings []struct {
			BookingID string `json:"booking_id"`
		} `json:"bookings"`
	}
	if err := c.doPost(ctx, endpoint, body, &resp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Bookings))
	for _, b := range resp.Bookings {
		ids = append(ids, b.BookingID)
	}
	return ids, nil
}

// CreatePayment aggregates booking ids into one order and returns the payment
// payload to present to the customer.
func (c *Client) CreatePayment(ctx context.Context, bookingIDs []string) (*models.PaymentIntent, error) {
	endpoint := fmt.Sprintf("%s/api/v1/payments", c.baseURL)
	body := struct {
		BookingIDs []string `json:"booking_ids"`
	}{BookingIDs: bookingIDs}

	var intent models.PaymentIntent
	if err := c.doPost(ctx, endpoint, body, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// OrderStatus returns the current status of an order.
func (c *Client) OrderStatus(ctx context.Context, orderID string) (string, error) {
	endpoint := fmt.Sprintf("%s/api/v1/orders/%s", c.baseURL, url.PathEscape(orderID))
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doGet(ctx, endpoint, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// RequestCancellation asks the facility owner to cancel a confirmed booking.
func (c *Client) RequestCancellation(ctx context.Context, bookingID string) error {
	endpoint := fmt.Sprintf("%s/api/v1/bookings/%s/cancel-request", c.baseURL, url.PathEscape(bookingID))
	return c.doPost(ctx, endpoint, struct{}{}, nil)
}

// WithdrawCancellation retracts a previously requested cancellation.
func (c *Client) WithdrawCancellation(ctx context.Context, bookingID string) error {
	endpoint := fmt.Sprintf("%s/api/v1/bookings/%s/cancel-request", c.baseURL, url.PathEscape(bookingID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	c.addHeaders(req)
	return c.do(req, nil)
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, "fieldbook:"+key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, "fieldbook:"+key, data, c.cacheTTL).Err()
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) doPost(ctx context.Context, endpoint string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(data)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &StatusError{Code: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}

func (c *Client) addHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
}
