package rentservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrUnavailable is returned when the rent service cannot be reached or
// answers with something other than a well-formed response. It is an
// infrastructure fault, distinct from a legitimate business "false".
var ErrUnavailable = errors.New("rent service unavailable")

// RentStatusCompleted is the status the rent service records once the
// backing payment has succeeded.
const RentStatusCompleted = "COMPLETED"

// Client is the interface for the rent service.
type Client interface {
	// CanAcceptPayment reports whether the rental may accept a new payment.
	CanAcceptPayment(ctx context.Context, rentID int64) (bool, error)

	// IsActive reports whether the rental is currently active.
	IsActive(ctx context.Context, rentID int64) (bool, error)

	// MarkCompleted moves the rental to COMPLETED.
	MarkCompleted(ctx context.Context, rentID int64) error
}

// HTTPClient calls the rent service over HTTP with a bounded timeout.
// Connectivity failures, timeouts and malformed responses all surface as
// ErrUnavailable; they are never retried here.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a rent service client against the given base URL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// CanAcceptPayment reports whether the rental may accept a new payment.
func (c *HTTPClient) CanAcceptPayment(ctx context.Context, rentID int64) (bool, error) {
	url := fmt.Sprintf("%s/api/v1/rent-service/canPay/%d", c.baseURL, rentID)
	return c.getBool(ctx, url)
}

// IsActive reports whether the rental is currently active.
func (c *HTTPClient) IsActive(ctx context.Context, rentID int64) (bool, error) {
	url := fmt.Sprintf("%s/api/v1/rent-service/active?rentId=%d", c.baseURL, rentID)
	return c.getBool(ctx, url)
}

// MarkCompleted moves the rental to COMPLETED.
func (c *HTTPClient) MarkCompleted(ctx context.Context, rentID int64) error {
	url := fmt.Sprintf("%s/api/v1/rent-service/status/%d", c.baseURL, rentID)

	body, err := json.Marshal(RentStatusCompleted)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %s", ErrUnavailable, strconv.Itoa(resp.StatusCode))
	}

	return nil
}

// getBool performs a GET that is expected to answer with a JSON boolean.
func (c *HTTPClient) getBool(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: unexpected status %s", ErrUnavailable, strconv.Itoa(resp.StatusCode))
	}

	var result bool
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}

	return result, nil
}

var _ Client = (*HTTPClient)(nil)
