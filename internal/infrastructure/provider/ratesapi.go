package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rates-engine/internal/application"
	"rates-engine/internal/infrastructure/httpx"

	"github.com/shopspring/decimal"
)

const defaultTimeout = 10 * time.Second

// RatesAPIClient fetches the latest rates for a base currency:
//
//	GET {base_url}/latest/{BASE} -> {"rates": {"EUR": 0.85, ...}}
//
// Any other response shape is an error; the resolver treats every error here
// as "source unavailable".
type RatesAPIClient struct {
	BaseURL string
	Client  *httpx.Client
}

var _ application.RateProvider = (*RatesAPIClient)(nil)

type latestResponse struct {
	Rates map[string]decimal.Decimal `json:"rates"`
}

func NewRatesAPIClient(baseURL string, timeout time.Duration) *RatesAPIClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &RatesAPIClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &httpx.Client{HTTP: &http.Client{Timeout: timeout}},
	}
}

func (c *RatesAPIClient) FetchRates(ctx context.Context, base string) (map[string]decimal.Decimal, error) {
	if c.BaseURL == "" {
		return nil, errors.New("ratesapi: missing base url")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("ratesapi: invalid base url: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/latest/" + base

	client := c.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var body latestResponse
	if err := client.GetJSON(ctx, u.String(), &body); err != nil {
		return nil, fmt.Errorf("ratesapi: fetch %s: %w", base, err)
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("ratesapi: empty rates for %s", base)
	}
	return body.Rates, nil
}
