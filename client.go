package baskets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

// Client is the baskets ordering API client. It owns the typed endpoint
// layer: deliveries are read-only, orders are created, updated and deleted
// on behalf of the authenticated user. The backend is the sole source of
// truth after every request; no retries are attempted, every failure is
// terminal for the triggering operation.
type Client struct {
	config     *Config
	httpClient *http.Client
	baseURL    *url.URL
	validate   *validator.Validate
	log        *zap.Logger
}

// Config holds client configuration
type Config struct {
	BaseURL        string         // Backend base URL (default: http://localhost:8000)
	UserAgent      string         // Optional custom user agent
	CSRFCookieName string         // Cookie the CSRF token is read from (default: csrftoken)
	CSRFToken      string         // Explicit CSRF token, overrides cookie lookup
	Cookies        []*http.Cookie // Session cookies seeded into the client jar
	Timeout        int            // Request timeout in seconds (default: 30)
	Logger         *zap.Logger    // Optional logger (default: no-op)
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "http://localhost:8000",
		UserAgent:      "baskets-go/1.0",
		CSRFCookieName: "csrftoken",
		Timeout:        30,
	}
}

// NewClient creates a new baskets API client. Session authentication is an
// external collaborator: seed Config.Cookies with the backend session cookie
// (and CSRF cookie) obtained out of band.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	// Apply defaults
	if config.BaseURL == "" {
		config.BaseURL = DefaultConfig().BaseURL
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultConfig().UserAgent
	}
	if config.CSRFCookieName == "" {
		config.CSRFCookieName = DefaultConfig().CSRFCookieName
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	if len(config.Cookies) > 0 {
		jar.SetCookies(base, config.Cookies)
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
			Jar:     jar,
		},
		baseURL:  base,
		validate: validator.New(),
		log:      config.Logger,
	}, nil
}

// resolve turns a row-carried URL (absolute or path-only) into an absolute
// URL against the configured base.
func (c *Client) resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", ref, err)
	}
	return c.baseURL.ResolveReference(u).String(), nil
}

// csrfToken returns the token to send on mutating requests, from the
// explicit config override or the named cookie in the jar.
func (c *Client) csrfToken() string {
	if c.config.CSRFToken != "" {
		return c.config.CSRFToken
	}
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		if cookie.Name == c.config.CSRFCookieName {
			return cookie.Value
		}
	}
	return ""
}

// get fetches rawURL and decodes the 200 body into v, failing closed if the
// payload does not match the endpoint shape.
func (c *Client) get(ctx context.Context, endpoint, rawURL string, v interface{}) error {
	target, err := c.resolve(rawURL)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return c.decodeValid(endpoint, resp.Body, v)
}

// send issues a mutating request with the CSRF token and JSON content type
// set. The caller owns the response body.
func (c *Client) send(ctx context.Context, method, rawURL string, body interface{}) (*http.Response, error) {
	target, err := c.resolve(rawURL)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("X-CSRFToken", c.csrfToken())

	c.log.Debug("sending request", zap.String("method", method), zap.String("url", target))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, rawURL, err)
	}
	return resp, nil
}

// decodeValid decodes JSON into v and validates the result, wrapping any
// mismatch in a PayloadError.
func (c *Client) decodeValid(endpoint string, r io.Reader, v interface{}) error {
	if err := readJSON(r, v); err != nil {
		return &PayloadError{Endpoint: endpoint, Err: err}
	}
	if err := c.validateWire(v); err != nil {
		return &PayloadError{Endpoint: endpoint, Err: err}
	}
	return nil
}

// validateWire checks decoded payloads. validator.Struct only accepts
// structs, so list endpoints are validated element by element.
func (c *Client) validateWire(v interface{}) error {
	switch w := v.(type) {
	case *[]deliveryWire:
		for _, e := range *w {
			if err := c.validate.Struct(e); err != nil {
				return err
			}
		}
		return nil
	case *[]orderWire:
		for _, e := range *w {
			if err := c.validate.Struct(e); err != nil {
				return err
			}
		}
		return nil
	default:
		return c.validate.Struct(v)
	}
}

// apiError builds the typed error for a non-success response, extracting the
// backend's message or detail field when present.
func apiError(resp *http.Response) error {
	return &APIError{
		StatusCode: resp.StatusCode,
		Detail:     responseDetail(resp),
	}
}

func responseDetail(resp *http.Response) string {
	body, _ := io.ReadAll(resp.Body)
	var parsed struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Detail != "" {
			return parsed.Detail
		}
	}
	return string(body)
}

// ListDeliveries returns the upcoming deliveries, in chronological order.
func (c *Client) ListDeliveries(ctx context.Context) ([]*Delivery, error) {
	var wires []deliveryWire
	if err := c.get(ctx, "delivery list", apiPrefix+"/deliveries/", &wires); err != nil {
		return nil, err
	}
	deliveries := make([]*Delivery, len(wires))
	for i, w := range wires {
		d := w.toDomain()
		deliveries[i] = &d
	}
	return deliveries, nil
}

// GetDelivery returns a delivery's detail, with its products grouped by
// producer.
func (c *Client) GetDelivery(ctx context.Context, deliveryURL string) (*DeliveryDetail, error) {
	var wire deliveryDetailWire
	if err := c.get(ctx, "delivery detail", deliveryURL, &wire); err != nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

// ListOrders returns the user's orders, most recent delivery first.
func (c *Client) ListOrders(ctx context.Context) ([]*Order, error) {
	var wires []orderWire
	if err := c.get(ctx, "order list", apiPrefix+"/orders/", &wires); err != nil {
		return nil, err
	}
	orders := make([]*Order, len(wires))
	for i, w := range wires {
		orders[i] = w.toDomain()
	}
	return orders, nil
}

// GetOrder returns an order's detail, including its item snapshot.
func (c *Client) GetOrder(ctx context.Context, orderURL string) (*OrderDetail, error) {
	var wire orderDetailWire
	if err := c.get(ctx, "order detail", orderURL, &wire); err != nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

// CreateOrder creates an order against a delivery. Items must be non-empty;
// zero-quantity items are the caller's responsibility to prune.
func (c *Client) CreateOrder(ctx context.Context, deliveryID int, items []OrderItemInput) (*OrderDetail, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	resp, err := c.send(ctx, http.MethodPost, apiPrefix+"/orders/", orderRequest(deliveryID, items))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}
	var wire orderDetailWire
	if err := c.decodeValid("order create", resp.Body, &wire); err != nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

// UpdateOrder replaces an existing order's items.
func (c *Client) UpdateOrder(ctx context.Context, orderURL string, deliveryID int, items []OrderItemInput) (*OrderDetail, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	resp, err := c.send(ctx, http.MethodPut, orderURL, orderRequest(deliveryID, items))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	var wire orderDetailWire
	if err := c.decodeValid("order update", resp.Body, &wire); err != nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

// DeleteOrder deletes an order. Anything other than 204 is an error: the
// backend answers 400 when the order deadline has passed.
func (c *Client) DeleteOrder(ctx context.Context, orderURL string) error {
	resp, err := c.send(ctx, http.MethodDelete, orderURL, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return &DeleteFailedError{
			StatusCode: resp.StatusCode,
			Detail:     responseDetail(resp),
		}
	}
	return nil
}

func orderRequest(deliveryID int, items []OrderItemInput) orderRequestWire {
	req := orderRequestWire{
		Delivery: deliveryID,
		Items:    make([]orderItemRequestWire, len(items)),
	}
	for i, item := range items {
		req.Items[i] = orderItemRequestWire{
			Product:  item.ProductID,
			Quantity: item.Quantity,
		}
	}
	return req
}
