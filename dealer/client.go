package dealer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"github.com/siamauto/chatcore/logging"
)

// ClientOptions configure the HTTP collaborator client.
type ClientOptions struct {
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Client talks JSON over HTTP to the business-data services. Every endpoint
// answers with {success, data|error, summary?}; success=false with an error
// string is a domain-level outcome, not a transport failure.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

var _ Service = (*Client)(nil)

// NewClient constructs a Client for the given base URL.
func NewClient(baseURL string, optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Logger:     logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{baseURL: baseURL, http: opts.HTTPClient, logger: opts.Logger}
}

// QueryCars implements Service.
func (c *Client) QueryCars(ctx context.Context, filter CarFilter) ([]Car, error) {
	body, err := c.post(ctx, "/api/cars/query", filter)
	if err != nil {
		return nil, err
	}
	var cars []Car
	if err := decodeData(body, &cars); err != nil {
		return nil, fmt.Errorf("decode cars: %w", err)
	}
	return cars, nil
}

// CreateAppointment implements Service.
func (c *Client) CreateAppointment(ctx context.Context, req AppointmentRequest) (*MutationResult, error) {
	body, err := c.post(ctx, "/api/appointments", req)
	if err != nil {
		return nil, err
	}
	return mutationResult(body), nil
}

// EditAppointment implements Service.
func (c *Client) EditAppointment(ctx context.Context, edit AppointmentEdit) (*MutationResult, error) {
	body, err := c.post(ctx, "/api/appointments/edit", edit)
	if err != nil {
		return nil, err
	}
	return mutationResult(body), nil
}

// CancelAppointment implements Service.
func (c *Client) CancelAppointment(ctx context.Context, referenceID string) (*MutationResult, error) {
	body, err := c.post(ctx, "/api/appointments/cancel", map[string]string{"reference_id": referenceID})
	if err != nil {
		return nil, err
	}
	return mutationResult(body), nil
}

// QueryAppointments implements Service.
func (c *Client) QueryAppointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error) {
	body, err := c.post(ctx, "/api/appointments/query", filter)
	if err != nil {
		return nil, err
	}
	var appts []Appointment
	if err := decodeData(body, &appts); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return appts, nil
}

// CheckIdentityLink implements Service.
func (c *Client) CheckIdentityLink(ctx context.Context, platform, externalID string) (*LinkStatus, error) {
	body, err := c.post(ctx, "/api/identity/check", map[string]string{
		"platform":    platform,
		"external_id": externalID,
	})
	if err != nil {
		return nil, err
	}
	return &LinkStatus{
		Linked:     gjson.GetBytes(body, "data.linked").Bool(),
		UserID:     gjson.GetBytes(body, "data.user_id").String(),
		EmployeeID: gjson.GetBytes(body, "data.employee_id").String(),
	}, nil
}

// post sends the payload and returns the raw response body after checking
// transport-level health. Domain-level success=false is left to callers.
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dealer request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	c.logger.Debug("dealer.request", "path", path, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("dealer service %s returned %d", path, resp.StatusCode)
	}
	return body, nil
}

// decodeData unmarshals the "data" field into out. A missing or null data
// field decodes to the zero value, which callers treat as an empty result.
func decodeData(body []byte, out any) error {
	data := gjson.GetBytes(body, "data")
	if !data.Exists() || data.Type == gjson.Null {
		return nil
	}
	return json.Unmarshal([]byte(data.Raw), out)
}

func mutationResult(body []byte) *MutationResult {
	return &MutationResult{
		Success:     gjson.GetBytes(body, "success").Bool(),
		ReferenceID: gjson.GetBytes(body, "data.reference_id").String(),
		Summary:     gjson.GetBytes(body, "summary").String(),
		Error:       gjson.GetBytes(body, "error").String(),
	}
}
