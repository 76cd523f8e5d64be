package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"channel-console/internal/channel"
	consoleerrors "channel-console/internal/common/errors"
	jsonutils "channel-console/internal/common/json"

	"github.com/sirupsen/logrus"
)

// envelope is the response shape of every store endpoint. Health test and
// balance answers put their payload at the top level instead of in data.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Time    float64         `json:"time,omitempty"`
	Model   string          `json:"model,omitempty"`
	Balance float64         `json:"balance,omitempty"`
}

// Client talks to a one-api compatible channel store over HTTP.
type Client struct {
	baseURL     string
	accessToken string
	storeClient *http.Client
	probeClient *http.Client
	observer    Observer
	logger      *logrus.Logger
}

type ClientOption func(*Client)

// WithProbeClient uses a separate client for health tests and balance refreshes.
func WithProbeClient(c *http.Client) ClientOption {
	return func(cl *Client) { cl.probeClient = c }
}

func WithObserver(o Observer) ClientOption {
	return func(cl *Client) { cl.observer = o }
}

func WithLogger(l *logrus.Logger) ClientOption {
	return func(cl *Client) { cl.logger = l }
}

// NewClient talks to the gateway at baseURL with an admin access token.
func NewClient(baseURL, accessToken string, storeClient *http.Client, opts ...ClientOption) *Client {
	if storeClient == nil {
		storeClient = http.DefaultClient
	}
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		storeClient: storeClient,
		probeClient: storeClient,
		logger:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListPage fetches one zero-based page.
func (c *Client) ListPage(ctx context.Context, page int) ([]channel.Raw, error) {
	env, err := c.do(ctx, c.storeClient, "list", http.MethodGet, "/api/channel/?p="+strconv.Itoa(page), nil)
	if err != nil {
		return nil, err
	}
	return decodeRows("list", env.Data)
}

func (c *Client) Search(ctx context.Context, keyword string) ([]channel.Raw, error) {
	env, err := c.do(ctx, c.storeClient, "search", http.MethodGet, "/api/channel/search?keyword="+url.QueryEscape(keyword), nil)
	if err != nil {
		return nil, err
	}
	return decodeRows("search", env.Data)
}

// Update sends only the fields set in req and returns the stored record.
func (c *Client) Update(ctx context.Context, req UpdateRequest) (channel.Raw, error) {
	env, err := c.do(ctx, c.storeClient, "update", http.MethodPut, "/api/channel/", req)
	if err != nil {
		return channel.Raw{}, err
	}
	var raw channel.Raw
	if len(env.Data) == 0 || string(env.Data) == "null" {
		// Older stores answer without echoing the record.
		raw.ID = req.ID
		if req.Status != nil {
			raw.Status = *req.Status
		}
		return raw, nil
	}
	if err := jsonutils.SafeUnmarshal(env.Data, &raw); err != nil {
		return channel.Raw{}, consoleerrors.NewParsingError("channel", "Failed to decode updated channel", err).WithOperation("update")
	}
	return raw, nil
}

func (c *Client) Delete(ctx context.Context, id int) error {
	_, err := c.do(ctx, c.storeClient, "delete", http.MethodDelete, fmt.Sprintf("/api/channel/%d/", id), nil)
	return err
}

// DeleteDisabled removes every disabled channel and returns the count.
func (c *Client) DeleteDisabled(ctx context.Context) (int, error) {
	env, err := c.do(ctx, c.storeClient, "delete_disabled", http.MethodDelete, "/api/channel/disabled", nil)
	if err != nil {
		return 0, err
	}
	var count int
	if len(env.Data) > 0 {
		if err := jsonutils.SafeUnmarshal(env.Data, &count); err != nil {
			return 0, consoleerrors.NewParsingError("count", "Failed to decode deleted count", err).WithOperation("delete_disabled")
		}
	}
	return count, nil
}

// Test probes one channel; an empty model uses the gateway default.
func (c *Client) Test(ctx context.Context, id int, model string) (TestResult, error) {
	path := fmt.Sprintf("/api/channel/test/%d", id)
	if model != "" {
		path += "?model=" + url.QueryEscape(model)
	}
	env, err := c.do(ctx, c.probeClient, "test", http.MethodGet, path, nil)
	if err != nil {
		return TestResult{}, err
	}
	return TestResult{Time: env.Time, Model: env.Model}, nil
}

func (c *Client) UpdateBalance(ctx context.Context, id int) (float64, error) {
	env, err := c.do(ctx, c.probeClient, "update_balance", http.MethodGet, fmt.Sprintf("/api/channel/update_balance/%d/", id), nil)
	if err != nil {
		return 0, err
	}
	return env.Balance, nil
}

func (c *Client) TestAll(ctx context.Context, scope Scope) error {
	_, err := c.do(ctx, c.storeClient, "test_all", http.MethodGet, "/api/channel/test?scope="+url.QueryEscape(string(scope)), nil)
	return err
}

func (c *Client) ListOptions(ctx context.Context) ([]Option, error) {
	env, err := c.do(ctx, c.storeClient, "list_options", http.MethodGet, "/api/option/", nil)
	if err != nil {
		return nil, err
	}
	var opts []Option
	if len(env.Data) == 0 {
		return opts, nil
	}
	if err := jsonutils.SafeUnmarshal(env.Data, &opts); err != nil {
		return nil, consoleerrors.NewParsingError("options", "Failed to decode options", err).WithOperation("list_options")
	}
	return opts, nil
}

func (c *Client) UpdateOption(ctx context.Context, opt Option) error {
	_, err := c.do(ctx, c.storeClient, "update_option", http.MethodPut, "/api/option/", opt)
	return err
}

func (c *Client) UpdateAbilities(ctx context.Context) error {
	_, err := c.do(ctx, c.storeClient, "update_abilities", http.MethodPost, "/api/channel/update_abilities", nil)
	return err
}

func decodeRows(operation string, data json.RawMessage) ([]channel.Raw, error) {
	rows := []channel.Raw{}
	if len(data) == 0 || string(data) == "null" {
		return rows, nil
	}
	if err := jsonutils.SafeUnmarshal(data, &rows); err != nil {
		return nil, consoleerrors.NewParsingError("channels", "Failed to decode channel list", err).WithOperation(operation)
	}
	return rows, nil
}

// do issues one request and returns the decoded envelope. It never retries.
func (c *Client) do(ctx context.Context, hc *http.Client, operation, method, path string, body interface{}) (*envelope, error) {
	start := time.Now()
	env, err := c.roundTrip(ctx, hc, operation, method, path, body)
	elapsed := time.Since(start)

	outcome := "success"
	switch {
	case consoleerrors.IsRemoteRejection(err):
		outcome = "rejected"
	case err != nil:
		outcome = "transport_error"
	}
	if c.observer != nil {
		c.observer.ObserveRemoteCall(operation, outcome, elapsed.Seconds())
	}

	entry := c.logger.WithFields(logrus.Fields{
		"operation":   operation,
		"method":      method,
		"path":        path,
		"outcome":     outcome,
		"duration_ms": elapsed.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Debug("channel store call failed")
	} else {
		entry.Debug("channel store call completed")
	}
	return env, err
}

func (c *Client) roundTrip(ctx context.Context, hc *http.Client, operation, method, path string, body interface{}) (*envelope, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := jsonutils.SafeMarshal(body)
		if err != nil {
			return nil, consoleerrors.NewInternalError("remote", "Failed to encode request", err).WithOperation(operation)
		}
		reader = bytes.NewReader(data)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return nil, consoleerrors.NewNetworkError("bad_request", "Failed to build request", err).WithOperation(operation)
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, consoleerrors.ClassifyError(err).WithOperation(operation)
	}
	defer resp.Body.Close()

	var env envelope
	if err := jsonutils.UnmarshalFromReader(resp.Body, &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return nil, consoleerrors.NewNetworkError("http_status",
				fmt.Sprintf("Channel store answered %s", resp.Status), err).
				WithOperation(operation).
				WithContext("status", resp.StatusCode)
		}
		return nil, consoleerrors.NewParsingError("envelope", "Failed to decode store response", err).WithOperation(operation)
	}

	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("%s failed", operation)
		}
		return nil, consoleerrors.NewRemoteRejection(operation, msg).WithContext("status", resp.StatusCode)
	}
	return &env, nil
}
