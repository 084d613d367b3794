package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"shop-service/internal/util"

	"go.uber.org/zap"
)

// ErrorKind distinguishes a gateway rejection from not reaching the gateway
// at all. Rejections are final; unavailability is retryable by the client.
type ErrorKind string

const (
	KindRejected    ErrorKind = "rejected"
	KindUnavailable ErrorKind = "unavailable"
)

// Error is returned for every failed gateway call. For rejections Body holds
// the gateway's structured error verbatim; it is surfaced to the client
// without interpretation.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Body       json.RawMessage
	cause      error
}

func (e *Error) Error() string {
	if e.Kind == KindRejected {
		return fmt.Sprintf("gateway rejected charge: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("gateway unavailable: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Client submits charges to the payment gateway. Safe for concurrent use;
// the underlying http.Client carries the request timeout.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a gateway client with a bounded request timeout
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: util.GetLogger(),
	}
}

// CreateCharge submits a charge request and returns the gateway's charge
// reference and initial status. There is no automatic retry: once submitted a
// charge cannot be withdrawn, so retries belong to the caller together with
// an idempotency strategy.
func (c *Client) CreateCharge(ctx context.Context, charge *ChargeRequest) (*ChargeResponse, error) {
	ctx, span := util.StartSpan(ctx, "Gateway.CreateCharge")
	defer span.End()

	start := time.Now()
	defer func() {
		util.GatewayRequestLatency.Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(charge)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal charge request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		util.GatewayErrorsTotal.WithLabelValues(string(KindUnavailable)).Inc()
		return nil, &Error{Kind: KindUnavailable, cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		util.GatewayErrorsTotal.WithLabelValues(string(KindRejected)).Inc()
		c.logger.Warn("Gateway rejected charge",
			zap.String("order_code", charge.Code),
			zap.Int("status", resp.StatusCode))
		return nil, &Error{Kind: KindRejected, StatusCode: resp.StatusCode, Body: respBody}
	}

	var chargeResp ChargeResponse
	if err := json.Unmarshal(respBody, &chargeResp); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	c.logger.Info("Charge submitted",
		zap.String("order_code", charge.Code),
		zap.String("gateway_ref", chargeResp.ID),
		zap.String("status", chargeResp.Status))

	return &chargeResp, nil
}

// ListOrders queries the gateway's paginated order list for an external
// customer reference. The result is passed through unmodified: the gateway
// is the source of truth for listing, not the local store.
func (c *Client) ListOrders(ctx context.Context, customerRef string, page int) (json.RawMessage, error) {
	ctx, span := util.StartSpan(ctx, "Gateway.ListOrders")
	defer span.End()

	url := c.baseURL + "/orders?customer_id=" + customerRef + "&page=" + strconv.Itoa(page)
	resp, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindRejected, StatusCode: resp.StatusCode, Body: respBody}
	}

	return respBody, nil
}

// do performs an authenticated request. The gateway expects HTTP Basic auth
// with the API key as username and an empty password, i.e.
// base64(apiKey + ":").
func (c *Client) do(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build gateway request: %w", err)
	}

	req.SetBasicAuth(c.apiKey, "")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		util.GatewayErrorsTotal.WithLabelValues(string(KindUnavailable)).Inc()
		c.logger.Warn("Gateway call failed", zap.String("url", url), zap.Error(err))
		return nil, &Error{Kind: KindUnavailable, cause: err}
	}

	return resp, nil
}
