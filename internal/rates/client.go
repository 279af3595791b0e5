// Package rates talks to the external exchange-rate provider and refreshes
// the stored CAD/CNY rates.
package rates

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"nestegg/internal/core"
)

// Client fetches USD-based rates from the provider's JSON endpoint.
type Client struct {
	url   string
	httpc *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url: url,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// providerResponse is the subset of the provider payload we read. Rates come
// through as json.Number so they survive the trip into decimals unrounded.
type providerResponse struct {
	Result string                 `json:"result"`
	Rates  map[string]json.Number `json:"rates"`
}

// Fetch returns the current CAD and CNY rates (units per 1 USD). Every
// failure mode, from network errors to missing fields, comes back as a
// core.UpstreamError.
func (c *Client) Fetch(ctx context.Context) (cad, cny decimal.Decimal, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return decimal.Zero, decimal.Zero, core.Upstream(err, "build rate request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return decimal.Zero, decimal.Zero, core.Upstream(err, "fetch rates from provider")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, decimal.Zero, core.Upstream(nil, "rate provider returned status %d", resp.StatusCode)
	}

	var payload providerResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return decimal.Zero, decimal.Zero, core.Upstream(err, "decode provider response")
	}
	if payload.Result != "" && payload.Result != "success" {
		return decimal.Zero, decimal.Zero, core.Upstream(nil, "rate provider reported result %q", payload.Result)
	}

	cad, err = extractRate(payload.Rates, core.CAD)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	cny, err = extractRate(payload.Rates, core.CNY)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return cad, cny, nil
}

func extractRate(rates map[string]json.Number, currency core.Currency) (decimal.Decimal, error) {
	num, ok := rates[string(currency)]
	if !ok {
		return decimal.Zero, core.Upstream(nil, "provider response missing %s rate", currency)
	}
	d, err := decimal.NewFromString(num.String())
	if err != nil {
		return decimal.Zero, core.Upstream(err, "parse %s rate %q", currency, num)
	}
	if d.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, core.Upstream(nil, "provider returned non-positive %s rate %s", currency, d)
	}
	return d, nil
}
