package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"social-calling/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDo_ForwardsBearerAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "/wallet/purchase/", r.URL.Path)
		var in map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, 199, in["amount"])
		_, _ = w.Write([]byte(`{"success":true,"payment_id":7}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/"}, logger.Discard())
	var out struct {
		Success   bool `json:"success"`
		PaymentID int  `json:"payment_id"`
	}
	ctx := WithBearer(context.Background(), "tok-1")
	require.NoError(t, c.Do(ctx, http.MethodPost, "/wallet/purchase/", map[string]int{"amount": 199}, &out))
	assert.True(t, out.Success)
	assert.Equal(t, 7, out.PaymentID)
}

func TestDo_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"detail":"no"}`))
	}))
	defer srv.Close()

	err := New(Config{BaseURL: srv.URL}, nil).Do(context.Background(), http.MethodGet, "/wallet/", nil, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusPaymentRequired, se.Code)
	assert.Contains(t, se.Body, "no")
}

func TestRaw_NotConfigured(t *testing.T) {
	_, err := New(Config{}, nil).Raw(context.Background(), http.MethodGet, "/wallet/", nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRaw_ThrottleRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, RPS: 0.001, Burst: 1}, nil)
	_, err := c.Raw(context.Background(), http.MethodGet, "/a", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.Raw(ctx, http.MethodGet, "/b", nil)
	assert.Error(t, err)
}
