package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"tasknest.org/internal/obs"
)

const defaultPageSize = 100

// TupleKey is the wire form of a relation tuple. Object and User carry
// notation tokens; User may be a userset token.
type TupleKey struct {
	Object   string `json:"object"`
	Relation string `json:"relation"`
	User     string `json:"user"`
}

// Client speaks the engine's HTTP API. All methods are safe for concurrent
// use; the underlying http.Client is shared across in-flight operations.
type Client struct {
	base    *url.URL
	storeID string
	http    *http.Client
	limiter *rate.Limiter
}

// ClientOption configures Client behavior.
type ClientOption func(*Client)

// WithHTTPClient overrides the transport client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit bounds outgoing engine calls with a token bucket.
func WithRateLimit(perSecond, burst int) ClientOption {
	return func(c *Client) {
		if perSecond > 0 && burst > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// NewClient constructs a client scoped to one authorization store.
func NewClient(baseURL, storeID string, opts ...ClientOption) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("acl: parse engine url: %w", err)
	}
	if storeID == "" {
		return nil, fmt.Errorf("acl: store id is required")
	}
	c := &Client{
		base:    base,
		storeID: storeID,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// StoreID returns the authorization store this client is scoped to.
func (c *Client) StoreID() string { return c.storeID }

type checkRequest struct {
	TupleKey TupleKey `json:"tuple_key"`
}

// allowed is a pointer so a null or omitted field decodes as deny.
type checkResponse struct {
	Allowed *bool `json:"allowed"`
}

// Check asks the engine whether the subject holds the relation on the object.
// A response without an explicit allow is a deny.
func (c *Client) Check(ctx context.Context, key TupleKey) (bool, error) {
	var resp checkResponse
	if err := c.post(ctx, "check", checkRequest{TupleKey: key}, &resp); err != nil {
		return false, err
	}
	return resp.Allowed != nil && *resp.Allowed, nil
}

type listObjectsRequest struct {
	Type     string `json:"type"`
	Relation string `json:"relation"`
	User     string `json:"user"`
}

type listObjectsResponse struct {
	Objects []string `json:"objects"`
}

// ListObjects returns the notation tokens of all objects of the given type
// the user holds the relation on. Zero matches yield an empty slice.
func (c *Client) ListObjects(ctx context.Context, objectType, relation, user string) ([]string, error) {
	var resp listObjectsResponse
	req := listObjectsRequest{Type: objectType, Relation: relation, User: user}
	if err := c.post(ctx, "list-objects", req, &resp); err != nil {
		return nil, err
	}
	if resp.Objects == nil {
		return []string{}, nil
	}
	return resp.Objects, nil
}

type writeRequest struct {
	TupleKeys []TupleKey `json:"tuple_keys"`
}

// Write adds tuples to the engine. All-or-nothing from the caller's
// perspective; no internal retries.
func (c *Client) Write(ctx context.Context, keys []TupleKey) error {
	if len(keys) == 0 {
		return nil
	}
	return c.post(ctx, "write", writeRequest{TupleKeys: keys}, nil)
}

// Delete removes tuples from the engine, symmetric to Write.
func (c *Client) Delete(ctx context.Context, keys []TupleKey) error {
	if len(keys) == 0 {
		return nil
	}
	return c.post(ctx, "delete", writeRequest{TupleKeys: keys}, nil)
}

type readRequest struct {
	TupleKey          TupleKey `json:"tuple_key"`
	PageSize          int      `json:"page_size,omitempty"`
	ContinuationToken string   `json:"continuation_token,omitempty"`
}

type readResponse struct {
	Tuples []struct {
		Key TupleKey `json:"key"`
	} `json:"tuples"`
	ContinuationToken string `json:"continuation_token"`
}

// Read returns one page of tuples matching the filter. Empty fields in the
// filter match everything. The returned token is empty on the last page.
func (c *Client) Read(ctx context.Context, filter TupleKey, pageSize int, continuation string) ([]TupleKey, string, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	var resp readResponse
	req := readRequest{TupleKey: filter, PageSize: pageSize, ContinuationToken: continuation}
	if err := c.post(ctx, "read", req, &resp); err != nil {
		return nil, "", err
	}
	keys := make([]TupleKey, 0, len(resp.Tuples))
	for _, t := range resp.Tuples {
		keys = append(keys, t.Key)
	}
	return keys, resp.ContinuationToken, nil
}

func (c *Client) post(ctx context.Context, op string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("acl: encode %s request: %w", op, err)
	}
	endpoint := fmt.Sprintf("%s/stores/%s/%s", c.base, c.storeID, op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("acl: build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		obs.EngineRequest(op, "transport_error")
		return fmt.Errorf("%w: %s: %v", ErrEngineUnavailable, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		obs.EngineRequest(op, fmt.Sprintf("http_%d", resp.StatusCode))
		return fmt.Errorf("%w: %s returned status %d", ErrEngineUnavailable, op, resp.StatusCode)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			obs.EngineRequest(op, "decode_error")
			return fmt.Errorf("%w: decode %s response: %v", ErrEngineUnavailable, op, err)
		}
	}
	obs.EngineRequest(op, "ok")
	return nil
}
