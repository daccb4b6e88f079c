package es

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeCluster(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, `{"version":{"number":"9.0.0"}}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	client, err := NewClient(fakeCluster(t, http.StatusOK).URL, "", "")
	require.NoError(t, err)
	assert.NotNil(t, client)

	_, err = NewClient(fakeCluster(t, http.StatusUnauthorized).URL, "elastic", "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
