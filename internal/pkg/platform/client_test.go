package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSignInSuccess(t *testing.T) {
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/admin/login", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"token":"T","user":{"id":"u1","email":"ops@example.com","role":"admin"}}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())
	creds, err := client.SignIn(context.Background(), "ops@example.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, "T", creds.Token)
	assert.Equal(t, "u1", creds.User.ID)
	assert.Equal(t, "ops@example.com", gotBody["emailOrPhone"])
	assert.Equal(t, "secret", gotBody["password"])
}

func TestSignInServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid credentials"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())
	creds, err := client.SignIn(context.Background(), "ops@example.com", "wrong")
	assert.Nil(t, creds)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestSignInMalformedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())
	_, err := client.SignIn(context.Background(), "ops@example.com", "secret")
	assert.Error(t, err)
}

func TestProfileSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/u1", r.URL.Path)
		require.Equal(t, "Bearer T", r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":{"id":"u1","email":"ops@example.com","role":"seller","verificationStatus":"approved"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())
	client.SetToken("T")

	user, err := client.Profile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "approved", string(user.VerificationStatus))
}

func TestClearTokenDetachesHeader(t *testing.T) {
	var sawAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = append(sawAuth, r.Header.Get("Authorization"))
		w.Write([]byte(`{"data":{"id":"u1","email":"e","role":"admin"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())
	client.SetToken("T")

	_, err := client.Profile(context.Background(), "u1")
	require.NoError(t, err)

	client.ClearToken()
	_, err = client.Profile(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, sawAuth, 2)
	assert.Equal(t, "Bearer T", sawAuth[0])
	assert.Empty(t, sawAuth[1])
}

func TestAPIErrorMessageFallback(t *testing.T) {
	err := &APIError{StatusCode: http.StatusBadGateway}
	assert.Contains(t, err.Error(), "502")

	err = &APIError{StatusCode: 401, Message: "nope"}
	assert.Contains(t, err.Error(), "nope")
}
