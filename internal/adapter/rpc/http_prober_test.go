package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chainlist-rpcs/internal/domain/entity"
)

func newHTTPEndpoint(t *testing.T, rawURL string) entity.Endpoint {
	t.Helper()
	ep, err := entity.NewEndpoint(rawURL)
	require.NoError(t, err)
	return ep
}

func TestHTTPProber_Success(t *testing.T) {
	var gotMethod, gotContentType string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"number":"0x10"}}`))
	}))
	defer srv.Close()

	prober := NewHTTPProber(zap.NewNop())
	outcome, ok := prober.Probe(context.Background(), newHTTPEndpoint(t, srv.URL), time.Second)

	require.True(t, ok)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, string(probePayload), string(gotBody))
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{"number":"0x10"}}`, string(outcome.Payload))
	assert.GreaterOrEqual(t, outcome.Latency, time.Duration(0))
}

func TestHTTPProber_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, ok := NewHTTPProber(zap.NewNop()).Probe(context.Background(), newHTTPEndpoint(t, srv.URL), time.Second)
	assert.False(t, ok)
}

func TestHTTPProber_NotJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway</html>"))
	}))
	defer srv.Close()

	_, ok := NewHTTPProber(zap.NewNop()).Probe(context.Background(), newHTTPEndpoint(t, srv.URL), time.Second)
	assert.False(t, ok)
}

func TestHTTPProber_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"result":{"number":"0x1"}}`))
	}))
	defer srv.Close()

	start := time.Now()
	_, ok := NewHTTPProber(zap.NewNop()).Probe(context.Background(), newHTTPEndpoint(t, srv.URL), 50*time.Millisecond)

	assert.False(t, ok)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestHTTPProber_ZeroTimeoutUsesTransportDefault(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	prober := NewHTTPProber(zap.NewNop())
	prober.fallbackTimeout = 100 * time.Millisecond

	start := time.Now()
	_, ok := prober.Probe(context.Background(), newHTTPEndpoint(t, srv.URL), 0)

	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestHTTPProber_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, ok := NewHTTPProber(zap.NewNop()).Probe(context.Background(), newHTTPEndpoint(t, url), time.Second)
	assert.False(t, ok)
}

func TestHTTPProber_SkipsPlaceholder(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]string{"number": "0x1"}})
	}))
	defer srv.Close()

	ep := newHTTPEndpoint(t, srv.URL+"/v3/${INFURA_API_KEY}")
	_, ok := NewHTTPProber(zap.NewNop()).Probe(context.Background(), ep, time.Second)

	assert.False(t, ok)
	assert.Equal(t, int32(0), hits.Load())
}
