package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisisatlas/fundgraph/errors"
)

func TestFetchTablePaginates(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("offset") == "" {
			fmt.Fprint(w, `{"records":[{"id":"r1","fields":{}}],"offset":"page2"}`)
			return
		}
		fmt.Fprint(w, `{"records":[{"id":"r2","fields":{}}]}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", ClientOptions{RequestsPerSecond: 1000})
	records, err := client.FetchTable(context.Background(), "ecosystem")
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "r1", records[0].ID)
	assert.Equal(t, "r2", records[1].ID)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestFetchTableUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", ClientOptions{RequestsPerSecond: 1000})
	_, err := client.FetchTable(context.Background(), "ecosystem")
	require.Error(t, err)
	assert.True(t, errors.IsSourceUnavailable(err))
}

func TestFetchTableMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", ClientOptions{RequestsPerSecond: 1000})
	_, err := client.FetchTable(context.Background(), "ecosystem")
	require.Error(t, err)
	assert.True(t, errors.IsSourceUnavailable(err))
}

func TestFetchTableContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient("http://127.0.0.1:0", "secret", ClientOptions{})
	_, err := client.FetchTable(ctx, "ecosystem")
	require.Error(t, err)
}
