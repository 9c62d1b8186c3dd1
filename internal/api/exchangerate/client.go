package exchangerate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	httpClient "github.com/Alias1177/GoldPredictor/internal/platform/http"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the exchangerate.host API root
const DefaultBaseURL = "https://api.exchangerate.host"

const maxBodySize = 1 << 20

// Client is the exchangerate.host API client
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new exchange rate client
type ClientOptions struct {
	BaseURL        string
	RequestTimeout time.Duration
	RequestsPerSec int
}

// NewClient creates a new exchange rate API client
func NewClient(options ClientOptions) *Client {
	baseURL := strings.TrimRight(options.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:        options.RequestTimeout,
			RequestsPerSec: options.RequestsPerSec,
		}),
		logger: log.With().Str("component", "exchangerate_client").Logger(),
	}
}

type convertResponse struct {
	Result *float64 `json:"result"`
}

type latestResponse struct {
	Rates map[string]*float64 `json:"rates"`
}

// Convert asks /convert for the price of one unit of from in to.
// The response must carry a positive numeric "result".
func (c *Client) Convert(ctx context.Context, from, to string) (float64, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	q.Set("amount", "1")

	body, err := c.get(ctx, "/convert", q)
	if err != nil {
		return 0, err
	}

	var data convertResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return 0, &ParseError{Endpoint: "/convert", Err: err}
	}

	return checkRate("/convert", "result", data.Result)
}

// Latest asks /latest for the base->symbol rate, read from "rates.<symbol>".
func (c *Client) Latest(ctx context.Context, base, symbol string) (float64, error) {
	q := url.Values{}
	q.Set("base", base)
	q.Set("symbols", symbol)

	body, err := c.get(ctx, "/latest", q)
	if err != nil {
		return 0, err
	}

	var data latestResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing JSON")
		return 0, &ParseError{Endpoint: "/latest", Err: err}
	}

	return checkRate("/latest", "rates."+symbol, data.Rates[symbol])
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path + "?" + q.Encode()

	c.logger.Debug().Str("url", u).Msg("Fetching exchange rate")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Endpoint: path, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, &FetchError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{Endpoint: path, Err: fmt.Errorf("reading response body: %w", err)}
	}

	return body, nil
}

func checkRate(endpoint, field string, v *float64) (float64, error) {
	if v == nil {
		return 0, &ParseError{Endpoint: endpoint, Field: field, Err: ErrMissingField}
	}
	if *v <= 0 {
		return 0, &ParseError{Endpoint: endpoint, Field: field, Err: ErrNonPositiveRate}
	}
	return *v, nil
}
