package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSink struct {
	mu    sync.Mutex
	count int
}

func (s *countingSink) NotifySessionExpired() {
	s.mu.Lock()
	s.count++
	s.mu.Unlock()
}

func (s *countingSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func testClient(handler http.Handler, sink AuthSink) (*apiClient, *httptest.Server) {
	ts := httptest.NewServer(handler)
	return newAPIClient(ts.URL, sink), ts
}

func TestDoSessionExpiredDebounce(t *testing.T) {
	sink := &countingSink{}
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), sink)
	defer ts.Close()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.probe(context.Background())
			assert.ErrorIs(t, err, errSessionExpired)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sink.Count(), "sink must fire exactly once per expiry episode")
}

func TestDoSessionExpiredNilSink(t *testing.T) {
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), nil)
	defer ts.Close()

	err := c.probe(context.Background())
	assert.ErrorIs(t, err, errSessionExpired)
}

func TestDoRequestErrorBody(t *testing.T) {
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("database on fire"))
	}), nil)
	defer ts.Close()

	_, err := c.listApps(context.Background())
	var reqErr *requestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.Status)
	assert.Equal(t, "database on fire", reqErr.Body)
}

func TestDoRequestErrorEmptyBody(t *testing.T) {
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), nil)
	defer ts.Close()

	_, err := c.getApp(context.Background(), "missing")
	var reqErr *requestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "404 Not Found", reqErr.Body)
}

func TestDoEmptySuccessBody(t *testing.T) {
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), nil)
	defer ts.Close()

	data, err := c.do(context.Background(), http.MethodGet, "/anything", nil)
	require.NoError(t, err)
	assert.Nil(t, data, "empty 2xx body resolves to an explicit nil, not a parse failure")
}

func TestDoSetsJSONContentType(t *testing.T) {
	var contentType string
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`[]`))
	}), nil)
	defer ts.Close()

	_, err := c.listApps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
}

func TestFetchPageQuery(t *testing.T) {
	var gotPath, gotQuery string
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(pageResult{
			Records: []map[string]any{{"id": "1"}},
			Total:   51,
			Limit:   25,
			Offset:  25,
		})
	}), nil)
	defer ts.Close()

	page, err := c.fetchPage(context.Background(), "/app1/Users", 25, 25)
	require.NoError(t, err)
	assert.Equal(t, "/app1/Users/", gotPath)
	assert.Equal(t, "pagination=true&limit=25&offset=25", gotQuery)
	assert.Equal(t, 51, page.Total)
	require.Len(t, page.Records, 1)
}

func TestUpdateRecordPath(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}), nil)
	defer ts.Close()

	record := map[string]any{"id": "42", "name": "renamed"}
	err := c.updateRecord(context.Background(), "/app1/Users", "42", record)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/app1/Users/42", gotPath)
	assert.Equal(t, "renamed", gotBody["name"])
}

func TestLoginSendsCredentialsAndKeepsCookie(t *testing.T) {
	var sessionSeen bool
	mux := http.NewServeMux()
	mux.HandleFunc("/yeti-auth/login", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		assert.Equal(t, "admin", creds["username"])
		assert.Equal(t, "hunter2", creds["password"])
		http.SetCookie(w, &http.Cookie{Name: "yeti_session", Value: "s3cr3t"})
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/yeti-applications/apps", func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("yeti_session"); err == nil && cookie.Value == "s3cr3t" {
			sessionSeen = true
			_, _ = w.Write([]byte(`[]`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
	c, ts := testClient(mux, &countingSink{})
	defer ts.Close()

	require.NoError(t, c.login(context.Background(), "admin", "hunter2"))
	require.NoError(t, c.probe(context.Background()))
	assert.True(t, sessionSeen, "cookie from login must ride along on later requests")
}

func TestLogout(t *testing.T) {
	var gotMethod string
	c, ts := testClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}), nil)
	defer ts.Close()

	require.NoError(t, c.logout(context.Background()))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestProbeNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing listening anymore

	c := newAPIClient(ts.URL, nil)
	err := c.probe(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, errSessionExpired))
}
