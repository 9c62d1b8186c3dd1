package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/GoldPredictor/internal/api/web"
	"github.com/Alias1177/GoldPredictor/internal/config"
	"github.com/Alias1177/GoldPredictor/internal/rediscache"
)

const linearModel = `{"kind":"linear","intercept":1900,"coefficients":[0,0,0,0]}`

func writeModel(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, os.WriteFile(path, []byte(linearModel), 0o600))
	return path
}

func testConfig(modelPath, ratesURL string) *config.Config {
	return &config.Config{
		ModelPath: modelPath,
		HTTP:      web.ServerConfig{Host: "127.0.0.1", Port: "0"},
		Rates: config.RatesConfig{
			BaseURL:        ratesURL,
			Timeout:        2 * time.Second,
			TTL:            300 * time.Second,
			Fallback:       84.5,
			RequestsPerSec: 50,
		},
	}
}

func TestNew_EndToEnd(t *testing.T) {
	var calls atomic.Int32
	rates := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":84.5}`))
	}))
	defer rates.Close()

	a, err := New(context.Background(), testConfig(writeModel(t), rates.URL))
	require.NoError(t, err)
	defer a.Close()

	h := a.Server().Handler()

	form := url.Values{"spx": {"4200"}, "uso": {"75"}, "eur_usd": {"1.08"}, "slv": {"22"}}
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "$1,900.00")
		assert.Contains(t, w.Body.String(), "₹160,550.00")
		assert.Contains(t, w.Body.String(), "1 USD = ₹84.50")
	}
	assert.Equal(t, int32(1), calls.Load(), "second request is served from the rate cache")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyness", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), `gold_predictor_predictions_total{outcome="ok"} 2`)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNew_RatesDown(t *testing.T) {
	rates := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer rates.Close()

	a, err := New(context.Background(), testConfig(writeModel(t), rates.URL))
	require.NoError(t, err)
	defer a.Close()

	w := httptest.NewRecorder()
	a.Server().Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/rate", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Rate      float64 `json:"rate"`
		Source    string  `json:"source"`
		Warning   string  `json:"warning"`
		ErrorKind string  `json:"error_kind"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 84.5, resp.Rate)
	assert.Equal(t, "static", resp.Source)
	assert.Equal(t, "Could not fetch live rate. Using default fallback (₹84.5/USD).", resp.Warning)
	assert.Equal(t, "fetch", resp.ErrorKind)
}

func TestNew_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)

	rates := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":83.9}`))
	}))
	defer rates.Close()

	cfg := testConfig(writeModel(t), rates.URL)
	cfg.Redis = rediscache.Config{Addr: mr.Addr(), Key: rediscache.DefaultKey}

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)

	q := a.Service.Rate(context.Background())
	assert.Equal(t, 83.9, q.Rate)
	assert.True(t, mr.Exists(rediscache.DefaultKey))
	assert.NoError(t, a.Ready(context.Background()))

	mr.SetError("LOADING Redis is loading the dataset in memory")
	assert.Error(t, a.Ready(context.Background()), "redis down means not ready")
	_ = a.Close()
}

func TestNew_RedisOutageKeepsCachedRate(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	var calls atomic.Int32
	rates := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"result":83.9}`))
	}))
	defer rates.Close()

	cfg := testConfig(writeModel(t), rates.URL)
	cfg.Redis = rediscache.Config{Addr: mr.Addr(), Key: rediscache.DefaultKey}

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	first := a.Service.Rate(context.Background())
	require.Equal(t, 83.9, first.Rate)

	mr.Close()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, a.Service.Rate(context.Background()))
	}
	assert.Equal(t, int32(1), calls.Load(), "no refetch inside the TTL while redis is gone")
}

func TestNew_RedisUnavailableFallsBackToMemory(t *testing.T) {
	cfg := testConfig(writeModel(t), "http://127.0.0.1:1")
	cfg.Redis = rediscache.Config{Addr: "127.0.0.1:1"}

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, 84.5, a.Service.Rate(context.Background()).Rate)
}

func TestNew_ModelMissing(t *testing.T) {
	_, err := New(context.Background(), testConfig(filepath.Join(t.TempDir(), "missing.json"), ""))
	assert.ErrorContains(t, err, "model")
}
