package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mediconnect/assistant/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(url string) *Service {
	return NewServiceWithConfig(config.GatewayConfig{
		URL:     url + "/",
		APIKey:  "gateway-key",
		Timeout: time.Second,
	})
}

func TestQuery(t *testing.T) {
	var received QueryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/assistant/query", r.URL.Path)
		assert.Equal(t, "gateway-key", r.Header.Get("X-API-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"summary":"you have 2 appointments","data":[{"id":"a1"},{"id":"a2"}]}`))
	}))
	defer server.Close()

	result, err := newTestService(server.URL).Query(context.Background(), "u1", "patient", "show my appointments")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "you have 2 appointments", result.Summary)
	assert.True(t, result.HasUsableData())
	assert.Equal(t, QueryRequest{RequesterID: "u1", Role: "patient", Query: "show my appointments"}, received)
}

func TestQueryAnonymousUsesPlatformRequester(t *testing.T) {
	var received QueryRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	result, err := newTestService(server.URL).Query(context.Background(), "", "patient", "pharmacies")

	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "platform", received.RequesterID)
}

func TestQueryStatusHandling(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"no content", http.StatusNoContent, false},
		{"not found", http.StatusNotFound, false},
		{"server error", http.StatusInternalServerError, true},
		{"unauthorized", http.StatusUnauthorized, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"nope"}`))
			}))
			defer server.Close()

			result, err := newTestService(server.URL).Query(context.Background(), "u1", "patient", "q")

			assert.Nil(t, result)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQueryInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := newTestService(server.URL).Query(context.Background(), "u1", "patient", "q")

	assert.ErrorContains(t, err, "failed to decode response")
}

func TestNewServiceUnconfigured(t *testing.T) {
	t.Setenv("GATEWAY_URL", "")

	assert.Nil(t, NewService())
}

func TestNewServiceConfigured(t *testing.T) {
	t.Setenv("GATEWAY_URL", "http://gateway.internal")
	t.Setenv("GATEWAY_TIMEOUT", "3s")

	svc := NewService()

	require.NotNil(t, svc)
	assert.Equal(t, "http://gateway.internal", svc.baseURL)
	assert.Equal(t, 3*time.Second, svc.client.Timeout)
}
