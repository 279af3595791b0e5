package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nestegg/internal/core"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":"success","rates":{"USD":1,"CAD":1.3612345678901234,"CNY":7.25}}`))
	}))
	defer srv.Close()

	cad, cny, err := NewClient(srv.URL).Fetch(context.Background())
	require.NoError(t, err)
	// json.Number keeps the full precision the provider sent.
	assert.Equal(t, "1.3612345678901234", cad.String())
	assert.True(t, cny.Equal(decimal.RequireFromString("7.25")))
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"provider error status", http.StatusBadGateway, `{}`, "status 502"},
		{"provider reports failure", http.StatusOK, `{"result":"error","error-type":"invalid-key"}`, `result "error"`},
		{"not json", http.StatusOK, `<html>maintenance</html>`, "decode provider response"},
		{"missing CAD", http.StatusOK, `{"result":"success","rates":{"CNY":7.25}}`, "missing CAD rate"},
		{"missing CNY", http.StatusOK, `{"result":"success","rates":{"CAD":1.36}}`, "missing CNY rate"},
		{"zero rate", http.StatusOK, `{"result":"success","rates":{"CAD":0,"CNY":7.25}}`, "non-positive CAD rate"},
		{"negative rate", http.StatusOK, `{"result":"success","rates":{"CAD":1.36,"CNY":-7.25}}`, "non-positive CNY rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, _, err := NewClient(srv.URL).Fetch(context.Background())
			require.Error(t, err)

			var upstream *core.UpstreamError
			assert.ErrorAs(t, err, &upstream)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, _, err := NewClient(srv.URL).Fetch(context.Background())
	require.Error(t, err)

	var upstream *core.UpstreamError
	assert.ErrorAs(t, err, &upstream)
}
