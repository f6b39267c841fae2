package postgrest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const defaultTimeout = 10 * time.Second

// Client is a thin wrapper over a PostgREST endpoint (<base>/rest/v1/<table>).
// Every call carries the API key pair and asks for the affected rows back.
type Client struct {
	http   *resty.Client
	logger *logrus.Entry
}

func NewClient(baseURL, apiKey string, logger *logrus.Entry) *Client {
	return NewClientWithResty(resty.New(), baseURL, apiKey, logger)
}

// NewClientWithResty lets callers share a configured resty client.
func NewClientWithResty(rc *resty.Client, baseURL, apiKey string, logger *logrus.Entry) *Client {
	rc.SetBaseURL(strings.TrimRight(baseURL, "/")+"/rest/v1").
		SetTimeout(defaultTimeout).
		SetHeader("apikey", apiKey).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=representation")
	return &Client{http: rc, logger: logger}
}

// Get decodes the rows of table matching q into out.
func (c *Client) Get(ctx context.Context, table string, q *Query, out any) error {
	return c.do(ctx, http.MethodGet, table, q, nil, "", out)
}

// Post inserts body into table and decodes the created rows into out.
func (c *Client) Post(ctx context.Context, table string, body any, out any) error {
	return c.do(ctx, http.MethodPost, table, nil, body, "", out)
}

// Upsert inserts body or merges it into the row conflicting on onConflict.
func (c *Client) Upsert(ctx context.Context, table, onConflict string, body any, out any) error {
	q := NewQuery().Set("on_conflict", onConflict)
	return c.do(ctx, http.MethodPost, table, q, body, "resolution=merge-duplicates,return=representation", out)
}

// Patch updates the rows matching q and decodes them into out.
func (c *Client) Patch(ctx context.Context, table string, q *Query, body any, out any) error {
	return c.do(ctx, http.MethodPatch, table, q, body, "", out)
}

// Delete removes the rows matching q.
func (c *Client) Delete(ctx context.Context, table string, q *Query) error {
	return c.do(ctx, http.MethodDelete, table, q, nil, "", nil)
}

func (c *Client) do(ctx context.Context, method, table string, q *Query, body any, prefer string, out any) error {
	params := url.Values{}
	if q != nil {
		params = q.Values()
	}

	req := c.http.R().SetContext(ctx).SetQueryParamsFromValues(params)
	if body != nil {
		req.SetBody(body)
	}
	if prefer != "" {
		req.SetHeader("Prefer", prefer)
	}

	resp, err := req.Execute(method, "/"+table)
	if err != nil {
		terr := &TransportError{Method: method, Table: table, Err: err}
		c.logFailure(method, table, params, terr)
		return terr
	}

	if resp.StatusCode() == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		aerr := &APIError{Method: method, Table: table, StatusCode: resp.StatusCode(), Body: string(resp.Body())}
		c.logFailure(method, table, params, aerr)
		return aerr
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		derr := fmt.Errorf("decode %s %s response: %w", method, table, err)
		c.logFailure(method, table, params, derr)
		return derr
	}
	return nil
}

func (c *Client) logFailure(method, table string, params url.Values, err error) {
	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"endpoint": table,
		"params":   params.Encode(),
	}).WithError(err).Error("Datastore request failed")
}
