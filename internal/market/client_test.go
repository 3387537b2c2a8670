package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "VNP.TO", r.URL.Query().Get("symbols"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"quoteResponse":{"result":[{"symbol":"VNP.TO","regularMarketPrice":4.52,"currency":"CAD"}]}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)

	quote := client.GetQuote(context.Background(), "VNP.TO")
	require.True(t, quote.Available)
	assert.Equal(t, "VNP.TO", quote.Symbol)
	assert.Equal(t, 4.52, quote.Price)
	assert.Equal(t, "CAD", quote.Currency)
	assert.Equal(t, "4.52 CAD", FormatPrice(quote))
}

func TestGetQuote_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "Provider error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "Malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "Empty result set",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"quoteResponse":{"result":[]}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL)

			quote := client.GetQuote(context.Background(), "VNP.TO")
			assert.False(t, quote.Available)
			assert.Equal(t, "unavailable", FormatPrice(quote))
		})
	}
}
