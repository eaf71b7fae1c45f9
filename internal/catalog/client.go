package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/storefront/internal/logging"
)

// Loader fetches the product list. *Client implements it.
type Loader interface {
	Load(ctx context.Context) []Product
}

var _ Loader = (*Client)(nil)

// Client talks to the catalog endpoint.
type Client struct {
	endpoint  *url.URL
	http      *http.Client
	userAgent string
	log       logrus.FieldLogger
}

const (
	defaultUserAgent = "storefront/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client for the endpoint URL. A zero timeout uses the
// default; a nil logger discards output.
func NewClient(endpoint string, timeout time.Duration, log logrus.FieldLogger) (*Client, error) {
	u, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = requestTimeout
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Client{
		endpoint:  u,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		log:       log,
	}, nil
}

// Load fetches the catalog. It never fails: any fetch error is logged and
// the built-in fallback list is returned instead.
func (c *Client) Load(ctx context.Context) []Product {
	products, err := c.Fetch(ctx)
	if err != nil {
		c.log.WithError(err).Warn("catalog unavailable, using fallback products")
		return Fallback()
	}
	return products
}

// Fetch performs the request without the fallback. Errors wrap ErrNetwork.
func (c *Client) Fetch(ctx context.Context) ([]Product, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: client is nil", ErrNetwork)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: execute request: %v", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrNetwork, c.endpoint.Path, resp.StatusCode)
	}

	var products []Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	if products == nil {
		return nil, fmt.Errorf("%w: response is not a product list", ErrNetwork)
	}
	return products, nil
}

func parseEndpoint(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("catalog url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse catalog url %q: %w", raw, err)
	}
	u.Fragment = ""
	return u, nil
}
