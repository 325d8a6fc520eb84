package justetf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/buger/jsonparser"

	"etfmon/internal/application/port"
	"etfmon/internal/domain"
)

const (
	DefaultBaseURL   = "https://www.justetf.com"
	DefaultLocale    = "en"
	DefaultCurrency  = "EUR"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	notFoundMarker = "RESOURCE_NOT_FOUND"
	maxBodyBytes   = 4 << 20
)

// Options configures the client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL   string
	Locale    string
	Currency  string
	UserAgent string
	Timeout   time.Duration
}

// Client reads the latest market value from the JustETF performance chart endpoint.
type Client struct {
	baseURL   string
	locale    string
	currency  string
	userAgent string
	client    *http.Client
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Locale == "" {
		opts.Locale = DefaultLocale
	}
	if opts.Currency == "" {
		opts.Currency = DefaultCurrency
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		locale:    opts.Locale,
		currency:  opts.Currency,
		userAgent: opts.UserAgent,
		client:    &http.Client{Timeout: opts.Timeout},
	}
}

func (c *Client) Name() string { return "justetf" }

// ChartURL builds the performance chart URL for isin.
func (c *Client) ChartURL(isin string) string {
	q := url.Values{}
	q.Set("locale", c.locale)
	q.Set("currency", c.currency)
	q.Set("valuesType", "MARKET_VALUE")
	q.Set("reduceData", "true")
	q.Set("includeDividends", "true")
	q.Set("period", "D1")
	return fmt.Sprintf("%s/api/etfs/%s/performance-chart?%s", c.baseURL, url.PathEscape(isin), q.Encode())
}

// LatestPrice returns the last value of the chart series.
// A body carrying the vendor's not-found marker is reported as domain.ErrBadIdentifier,
// everything else that goes wrong as domain.ErrFetchFailed.
func (c *Client) LatestPrice(ctx context.Context, isin string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ChartURL(isin), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrFetchFailed, isin, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json,text/html;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrFetchFailed, isin, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, fmt.Errorf("%w: %s: read body: %v", domain.ErrFetchFailed, isin, err)
	}

	if bytes.Contains(body, []byte(notFoundMarker)) {
		return 0, fmt.Errorf("%w: %s", domain.ErrBadIdentifier, isin)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: %s: justetf http %d", domain.ErrFetchFailed, isin, resp.StatusCode)
	}

	price, err := ParseLatestValue(body)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrFetchFailed, isin, err)
	}
	return price, nil
}

var errEmptySeries = errors.New("empty series")

// ParseLatestValue extracts series[-1].value.localized as a number.
func ParseLatestValue(body []byte) (float64, error) {
	var last []byte
	var found bool
	_, err := jsonparser.ArrayEach(body, func(value []byte, dataType jsonparser.ValueType, _ int, _ error) {
		if dataType != jsonparser.Object {
			return
		}
		last = value
		found = true
	}, "series")
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, errEmptySeries
	}

	raw, dataType, _, err := jsonparser.Get(last, "value", "localized")
	if err != nil {
		return 0, fmt.Errorf("series value: %w", err)
	}
	var s string
	switch dataType {
	case jsonparser.String:
		s = string(raw)
	case jsonparser.Number:
		s = string(raw)
	default:
		return 0, fmt.Errorf("series value: unexpected %s", dataType)
	}
	// locale=en uses a comma as thousands separator
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return strconv.ParseFloat(s, 64)
}

var _ port.PriceSource = (*Client)(nil)
