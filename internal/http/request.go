package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"nestegg/internal/core"
)

// Request bodies are small; anything bigger than this is not a legitimate
// client.
const maxBodyBytes = 1 << 16

// decodeBody parses the JSON request body into dst. Malformed bodies map to
// a 400 BadRequest instead of leaking as a generic 500.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return core.BadRequest("invalid request body: %v", err)
	}
	return nil
}

// requirePositive validates a monetary amount from a request body.
func requirePositive(field string, d decimal.Decimal) error {
	if d.LessThanOrEqual(decimal.Zero) {
		return core.BadRequest("%s must be a positive number", field)
	}
	return nil
}

// requireNonNegative validates configuration values that may legally be zero.
func requireNonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return core.BadRequest("%s must not be negative", field)
	}
	return nil
}
