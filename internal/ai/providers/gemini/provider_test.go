package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/mclogsum/internal/ai"
)

const testAPIKey = "test-api-key"

func testConfig(target string) *Config {
	cfg := DefaultConfig()
	cfg.APIKey = testAPIKey
	cfg.ProxyTarget = target
	cfg.Timeout = 5 * time.Second
	cfg.Retry = ai.RetryConfig{MaxRetries: 1, InitialDelay: 10 * time.Millisecond}
	return cfg
}

func geminiReply(text string) string {
	return `{"candidates":[{"content":{"role":"model","parts":[{"text":"` + text + `"}]}}]}`
}

func TestProvider_New(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{name: "nil config fails without API key", config: nil, wantErr: true},
		{name: "valid config", config: testConfig(DefaultProxyTarget)},
		{name: "bad scheme", config: testConfig("ftp://example.com/"), wantErr: true},
		{name: "empty model", config: func() *Config { c := testConfig(DefaultProxyTarget); c.Model = ""; return c }(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.config)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, ai.IsConfigurationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, ProviderName, p.Name())
			assert.NoError(t, p.Close())
		})
	}
}

func TestProvider_Summarize(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/v1beta/models/"+DefaultModel+":generateContent")

		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, geminiReply("Increase memory."))
	}))
	defer server.Close()

	p, err := New(testConfig(server.URL))
	require.NoError(t, err)

	resp, err := p.Summarize(context.Background(), &ai.SummaryRequest{Log: "java.lang.OutOfMemoryError", RequestID: "r1"})
	require.NoError(t, err)

	assert.Equal(t, "Increase memory.", resp.Text)
	assert.Equal(t, DefaultModel, resp.Model)
	assert.Equal(t, "r1", resp.RequestID)

	raw, _ := json.Marshal(gotBody)
	assert.Contains(t, string(raw), "java.lang.OutOfMemoryError")
	assert.Contains(t, string(raw), "give the main error cause and suggestions")
}

func TestProvider_SummarizeProxyOverride(t *testing.T) {
	var configuredHits, overrideHits int32
	configured := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&configuredHits, 1)
		_, _ = io.WriteString(w, geminiReply("configured"))
	}))
	defer configured.Close()
	override := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&overrideHits, 1)
		_, _ = io.WriteString(w, geminiReply("override"))
	}))
	defer override.Close()

	p, err := New(testConfig(configured.URL))
	require.NoError(t, err)

	resp, err := p.Summarize(context.Background(), &ai.SummaryRequest{Log: "log", ProxyTarget: override.URL})
	require.NoError(t, err)
	assert.Equal(t, "override", resp.Text)

	resp, err = p.Summarize(context.Background(), &ai.SummaryRequest{Log: "log"})
	require.NoError(t, err)
	assert.Equal(t, "configured", resp.Text)

	assert.Equal(t, int32(1), atomic.LoadInt32(&overrideHits))
	assert.Equal(t, int32(1), atomic.LoadInt32(&configuredHits))
}

func TestProvider_SummarizeValidation(t *testing.T) {
	p, err := New(testConfig(DefaultProxyTarget))
	require.NoError(t, err)

	_, err = p.Summarize(context.Background(), &ai.SummaryRequest{Log: "   "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, &ai.ProviderError{Type: ai.ErrTypeValidation}))

	_, err = p.Summarize(context.Background(), &ai.SummaryRequest{Log: "x", ProxyTarget: "not a url"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, &ai.ProviderError{Type: ai.ErrTypeValidation}))
}

func TestProvider_SummarizeUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`)
	}))
	defer server.Close()

	p, err := New(testConfig(server.URL))
	require.NoError(t, err)

	_, err = p.Summarize(context.Background(), &ai.SummaryRequest{Log: "log"})
	require.Error(t, err)

	var pe *ai.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ProviderName, pe.Provider)
}

func TestProvider_Forward(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/"+DefaultModel+":generateContent", r.URL.Path)
		assert.Equal(t, testAPIKey, r.URL.Query().Get("key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		data, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"contents":[{"parts":[{"text":"hi"}]}]}`, string(data))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"quota"}}`)
	}))
	defer server.Close()

	p, err := New(testConfig(strings.TrimSuffix(server.URL, "/")))
	require.NoError(t, err)

	resp, err := p.Forward(context.Background(), []byte(`{"contents":[{"parts":[{"text":"hi"}]}]}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.JSONEq(t, `{"error":{"message":"quota"}}`, string(resp.Body))
}

func TestProvider_ForwardNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := server.URL
	server.Close()

	p, err := New(testConfig(target))
	require.NoError(t, err)

	_, err = p.Forward(context.Background(), []byte(`{}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, &ai.ProviderError{Type: ai.ErrTypeNetwork}))
}
