package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	appsPrefix   = "/yeti-applications"
	authPrefix   = "/yeti-auth"
	authDebounce = 1000 * time.Millisecond
)

// errSessionExpired marks a call intercepted by the 401 handler. Callers
// must not surface it: the command that hit it returns no message at all,
// so its continuation never runs. The auth transition arrives through the
// AuthSink instead.
var errSessionExpired = errors.New("session expired")

// AuthSink receives exactly one notification per session-expiry episode.
type AuthSink interface {
	NotifySessionExpired()
}

type requestError struct {
	Status int
	Body   string
}

func (e *requestError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Body)
}

type apiClient struct {
	baseURL    string
	httpClient *http.Client
	sink       AuthSink

	mu       sync.Mutex
	notified bool
}

func newAPIClient(baseURL string, sink AuthSink) *apiClient {
	jar, _ := cookiejar.New(nil)
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Jar: jar,
		},
		sink: sink,
	}
}

// expireSession fires the sink at most once per episode. The latch re-arms
// after authDebounce regardless of whether a login happens in between, so a
// later expiry is still caught.
func (c *apiClient) expireSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notified {
		return
	}
	c.notified = true
	if c.sink != nil {
		c.sink.NotifySessionExpired()
	}
	time.AfterFunc(authDebounce, func() {
		c.mu.Lock()
		c.notified = false
		c.mu.Unlock()
	})
}

// do issues one JSON request. A nil result with nil error means a 2xx
// response with an empty body.
func (c *apiClient) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.expireSession()
		return nil, errSessionExpired
	}

	data, readErr := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(data))
		if text == "" {
			text = resp.Status
		}
		return nil, &requestError{Status: resp.StatusCode, Body: text}
	}
	if readErr != nil {
		return nil, readErr
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

func (c *apiClient) getJSON(ctx context.Context, path string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func (c *apiClient) listApps(ctx context.Context) ([]appSummary, error) {
	var apps []appSummary
	if err := c.getJSON(ctx, appsPrefix+"/apps", &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (c *apiClient) getApp(ctx context.Context, appID string) (*appDetail, error) {
	var detail appDetail
	if err := c.getJSON(ctx, appsPrefix+"/apps/"+url.PathEscape(appID), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

func (c *apiClient) getSchema(ctx context.Context, appID string) (*schemaInfo, error) {
	var schema schemaInfo
	if err := c.getJSON(ctx, appsPrefix+"/schemas/"+url.PathEscape(appID), &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

func (c *apiClient) fetchPage(ctx context.Context, restURL string, limit, offset int) (pageResult, error) {
	path := fmt.Sprintf("%s/?pagination=true&limit=%d&offset=%d",
		strings.TrimRight(restURL, "/"), limit, offset)
	var page pageResult
	if err := c.getJSON(ctx, path, &page); err != nil {
		return pageResult{}, err
	}
	return page, nil
}

func (c *apiClient) updateRecord(ctx context.Context, restURL, id string, record map[string]any) error {
	path := strings.TrimRight(restURL, "/") + "/" + url.PathEscape(id)
	_, err := c.do(ctx, http.MethodPut, path, record)
	return err
}

func (c *apiClient) listKeys(ctx context.Context) ([]sshKey, error) {
	var keys []sshKey
	if err := c.getJSON(ctx, appsPrefix+"/keys", &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func (c *apiClient) repoStatus(ctx context.Context, appID string) (*repoStatus, error) {
	var status repoStatus
	if err := c.getJSON(ctx, appsPrefix+"/repos/status/"+url.PathEscape(appID), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// browseFiles reads one level of an application's tree, or a file's text
// when the path names a file. The server decides which shape comes back.
func (c *apiClient) browseFiles(ctx context.Context, appID, path string) (*fileListing, error) {
	query := url.Values{}
	query.Set("app", appID)
	query.Set("path", path)
	var listing fileListing
	if err := c.getJSON(ctx, appsPrefix+"/files?"+query.Encode(), &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// probe checks session validity by status code alone. The apps listing is
// routed through the auth pipeline, which is all the gate needs.
func (c *apiClient) probe(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, appsPrefix+"/apps", nil)
	return err
}

func (c *apiClient) login(ctx context.Context, username, password string) error {
	// The session cookie lands in the jar as a side effect of the response.
	_, err := c.do(ctx, http.MethodPost, authPrefix+"/login", map[string]string{
		"username": username,
		"password": password,
	})
	return err
}

func (c *apiClient) logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodDelete, authPrefix+"/login", nil)
	return err
}
