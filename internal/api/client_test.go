package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(Options{
		BaseURL: srv.URL,
		Tokens:  TokenProviderFunc(func() string { return "tok-123" }),
	})
	return client, srv
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"count":0}`))
	}))

	_, err := client.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestClient_OmitsHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"count":0}`))
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, Tokens: TokenProviderFunc(func() string { return "" })})
	_, err := client.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_ClassifiesStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{status: http.StatusUnauthorized, want: KindAuth},
		{status: http.StatusForbidden, want: KindPermission},
		{status: http.StatusNotFound, want: KindNotFound},
		{status: http.StatusUnprocessableEntity, want: KindValidation},
		{status: http.StatusBadRequest, want: KindValidation},
		{status: http.StatusTooManyRequests, want: KindRateLimit},
		{status: http.StatusInternalServerError, want: KindServer},
		{status: http.StatusBadGateway, want: KindServer},
	}

	for _, tt := range tests {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		_, err := client.Me(context.Background())
		require.Error(t, err)
		assert.Equal(t, tt.want, KindOf(err), "status %d", tt.status)
	}
}

func TestClient_NetworkErrorClassification(t *testing.T) {
	client := NewClient(Options{BaseURL: "http://127.0.0.1:1"}) // nothing listens here

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Zero(t, apiErr.Status)
}

func TestClient_ValidationFieldsExposed(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"invalid_input","message":"validation failed","fields":{"email":"email is required"}}`))
	}))

	_, err := client.Login(context.Background(), "", "secret")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, map[string]string{"email": "email is required"}, FieldErrors(err))
}

func TestClient_AuthHookFiresOn401(t *testing.T) {
	var fired atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(Options{
		BaseURL:     srv.URL,
		OnAuthError: func() { fired.Add(1) },
	})

	// Any endpoint observing a 401 fires the hook, not just /me.
	_, err := client.UnreadCount(context.Background())
	assert.True(t, IsAuth(err))
	_, err = client.LatestCheckIn(context.Background(), "v1")
	assert.True(t, IsAuth(err))

	assert.Equal(t, int32(2), fired.Load())
}

func TestClient_AuthHookNotFiredOnOtherErrors(t *testing.T) {
	var fired atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(Options{BaseURL: srv.URL, OnAuthError: func() { fired.Add(1) }})
	_, err := client.CreateCheckIn(context.Background(), "v1")
	assert.True(t, IsPermission(err))
	assert.Zero(t, fired.Load())
}

func TestClient_RejectsUnknownRoleAtBoundary(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user":{"id":"u1","name":"Ada","email":"a@x","roles":["superuser"]}}`))
	}))

	_, err := client.Me(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestClient_LatestCheckInNull(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "v1", r.URL.Query().Get("vehicle_id"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"record":null}`))
	}))

	rec, err := client.LatestCheckIn(context.Background(), "v1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}
