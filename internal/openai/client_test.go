package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/intellidb/internal/config"
	"github.com/bartekus/intellidb/internal/faults"
	"github.com/bartekus/intellidb/internal/metrics"
)

func testConfig(endpoint string) config.Config {
	cfg := config.Default()
	cfg.APIKey = "sk-test"
	cfg.Endpoint = endpoint
	cfg.Temperature = 0.2
	cfg.FrequencyPenalty = 0.5
	return cfg
}

func TestExecute_Success(t *testing.T) {
	var (
		gotHeader http.Header
		gotBody   map[string]any
		rawBody   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		gotHeader = r.Header.Clone()
		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		rawBody = string(raw)
		assert.NoError(t, json.Unmarshal(raw, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"<?php class A {}"}},{"message":{"content":"ignored"}}]}`)
	}))
	defer srv.Close()

	rec := metrics.New()
	c := New(testConfig(srv.URL), WithMetrics(rec), WithRequestID(func() string { return "req-1" }))

	out, err := c.Execute(context.Background(), "make a class", 3000)
	require.NoError(t, err)
	assert.Equal(t, "<?php class A {}", out)

	assert.Equal(t, "Bearer sk-test", gotHeader.Get("Authorization"))
	assert.Equal(t, "application/json", gotHeader.Get("Content-Type"))
	assert.Equal(t, "req-1", gotHeader.Get(RequestIDHeader))

	assert.Equal(t, config.DefaultModel, gotBody["model"])
	assert.EqualValues(t, 3000, gotBody["max_tokens"])
	assert.EqualValues(t, 0.2, gotBody["temperature"])
	assert.EqualValues(t, 0.5, gotBody["frequency_penalty"])
	assert.Equal(t, []any{map[string]any{"role": "user", "content": "make a class"}}, gotBody["messages"])
	assert.Regexp(t, `^\{"model":.*"messages":.*"max_tokens":.*"temperature":.*"frequency_penalty":`, rawBody)

	n, err := testutil.GatherAndCount(rec.Registry(), "intellidb_completion_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExecute_DefaultRequestIDIsUUID(t *testing.T) {
	var id string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id = r.Header.Get(RequestIDHeader)
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL)).Execute(context.Background(), "p", 10)
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id)
}

func TestExecute_MissingAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL)
	}))
	defer srv.Close()

	for _, key := range []string{"", "   "} {
		cfg := testConfig(srv.URL)
		cfg.APIKey = key

		_, err := New(cfg).Execute(context.Background(), "p", 10)
		require.Error(t, err)
		assert.True(t, faults.Is(err, faults.KindConfiguration))
		assert.Contains(t, err.Error(), "OpenAI API key is not provided")
	}
}

func TestExecute_InvalidArguments(t *testing.T) {
	c := New(testConfig("http://127.0.0.1:0"))

	_, err := c.Execute(context.Background(), "  ", 10)
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindValidation))

	_, err = c.Execute(context.Background(), "p", 0)
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindValidation))
	assert.Contains(t, err.Error(), "got 0")
}

func TestExecute_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Incorrect API key provided"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	rec := metrics.New()
	_, err := New(testConfig(srv.URL), WithMetrics(rec)).Execute(context.Background(), "p", 10)
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindRequest))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Contains(t, se.Body, "Incorrect API key provided")
	assert.Contains(t, err.Error(), "api returned status 401")

	n, err := testutil.GatherAndCount(rec.Registry(), "intellidb_errors_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExecute_MalformedResponses(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "not json", body: "<html>", wantErr: "decoding response"},
		{name: "no choices", body: `{"choices":[]}`, wantErr: "no choices"},
		{name: "missing choices", body: `{}`, wantErr: "no choices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(testConfig(srv.URL)).Execute(context.Background(), "p", 10)
			require.Error(t, err)
			assert.True(t, faults.Is(err, faults.KindRequest))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExecute_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	_, err := c.Execute(context.Background(), "p", 10)
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindRequest))
	assert.Contains(t, err.Error(), "sending request")
}

func TestExecute_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(srv.URL)).Execute(ctx, "p", 10)
	require.Error(t, err)
	assert.True(t, faults.Is(err, faults.KindRequest))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStatusError_Error(t *testing.T) {
	assert.Equal(t, "api returned status 502", (&StatusError{StatusCode: 502}).Error())
	assert.Equal(t, "api returned status 500: boom", (&StatusError{StatusCode: 500, Body: "boom\n"}).Error())
}
