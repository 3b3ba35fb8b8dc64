package currency

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = service.RetryOptions{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
	Multiplier:   2,
}

func TestFrankfurterClient_Rate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "INR", r.URL.Query().Get("from"))
		assert.Equal(t, "USD", r.URL.Query().Get("to"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"INR","date":"2026-10-16","rates":{"USD":0.01189}}`))
	}))
	defer server.Close()

	client := NewFrankfurterClient(server.URL+"/", time.Second, fastRetry)
	rate, err := client.Rate(context.Background(), "INR", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 0.01189, rate, 1e-12)
}

func TestFrankfurterClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantTry int32
	}{
		{name: "missing rate key", status: http.StatusOK, body: `{"rates":{"EUR":0.011}}`, wantTry: 1},
		{name: "malformed body", status: http.StatusOK, body: `<html>`, wantTry: 1},
		{name: "not found", status: http.StatusNotFound, body: `{"message":"not found"}`, wantTry: 1},
		{name: "server error is retried", status: http.StatusBadGateway, body: `oops`, wantTry: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tries atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				tries.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			conv := NewConverter(NewFrankfurterClient(server.URL, time.Second, fastRetry), nil)
			_, err := conv.Select(context.Background(), "USD")
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrConversionFailure)
			assert.Equal(t, tt.wantTry, tries.Load())
			assert.Equal(t, BaseQuote(), conv.Quote())
		})
	}
}

func TestFrankfurterClient_RecoversAfterTransientError(t *testing.T) {
	var tries atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if tries.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"rates":{"USD":0.012}}`))
	}))
	defer server.Close()

	client := NewFrankfurterClient(server.URL, time.Second, fastRetry)
	rate, err := client.Rate(context.Background(), "INR", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 0.012, rate, 1e-12)
	assert.Equal(t, int32(2), tries.Load())
}

func TestFrankfurterClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewFrankfurterClient(url, 200*time.Millisecond, fastRetry)
	_, err := client.Rate(context.Background(), "INR", "USD")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMaxRetries)
}

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider(map[string]float64{"usd": 0.012})

	rate, err := p.Rate(context.Background(), "INR", "USD")
	require.NoError(t, err)
	assert.InDelta(t, 0.012, rate, 1e-12)

	_, err = p.Rate(context.Background(), "INR", "EUR")
	assert.ErrorIs(t, err, common.ErrConversionFailure)

	_, err = p.Rate(context.Background(), "USD", "INR")
	assert.ErrorIs(t, err, common.ErrConversionFailure)
}
