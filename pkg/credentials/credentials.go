package credentials

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowcanvas/pkg/cache"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/httputil"
	"github.com/matzehuels/flowcanvas/pkg/observability"
	"github.com/matzehuels/flowcanvas/pkg/workflow"
)

// APIKeyHeader carries the API key on every request.
const APIKeyHeader = "X-N8N-API-KEY"

const cacheNamespace = "credentials"

// Credential is one stored credential record.
type Credential struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Ref returns the reference stored on a node.
func (c Credential) Ref() workflow.CredentialRef {
	return workflow.CredentialRef{ID: c.ID, Name: c.Name}
}

// Lookup lists the credentials of one kind.
type Lookup interface {
	List(ctx context.Context, kind string) ([]Credential, error)
}

// Client is a [Lookup] backed by the automation server's REST API.
type Client struct {
	base   string
	http   *httputil.Client
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// Options configures a [Client].
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// Cache stores responses for TTL. Nil disables caching.
	Cache cache.Cache
	Keyer cache.Keyer
	TTL   time.Duration

	Logger *log.Logger
}

// NewClient validates opts.BaseURL and returns a Client.
func NewClient(opts Options) (*Client, error) {
	if err := errors.ValidateURL(opts.BaseURL); err != nil {
		return nil, err
	}
	headers := map[string]string{}
	if opts.APIKey != "" {
		headers[APIKeyHeader] = opts.APIKey
	}
	c := &Client{
		base:   strings.TrimRight(opts.BaseURL, "/"),
		http:   httputil.NewClient(headers, opts.Timeout),
		cache:  opts.Cache,
		keyer:  opts.Keyer,
		ttl:    opts.TTL,
		logger: opts.Logger,
	}
	if c.cache == nil {
		c.cache = cache.NewNullCache()
	}
	if c.keyer == nil {
		c.keyer = cache.NewDefaultKeyer()
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	return c, nil
}

// HTTP exposes the underlying HTTP client for tuning.
func (c *Client) HTTP() *httputil.Client { return c.http }

// List fetches the credentials of kind, most recently listed first as the
// server returns them. The response may be a bare array or an object
// carrying the list under "data" or "credentials".
func (c *Client) List(ctx context.Context, kind string) ([]Credential, error) {
	if err := errors.ValidateCredentialKind(kind); err != nil {
		return nil, err
	}

	key := c.keyer.HTTPKey(cacheNamespace, kind)
	if data, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("credential cache read failed", "kind", kind, "err", err)
	} else if ok {
		var creds []Credential
		if json.Unmarshal(data, &creds) == nil {
			observability.Cache().OnCacheHit(ctx, cacheNamespace)
			return creds, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, cacheNamespace)

	u := c.base + "/api/v1/credentials?type=" + url.QueryEscape(kind)
	var raw json.RawMessage
	if err := c.http.GetJSON(ctx, u, &raw); err != nil {
		return nil, err
	}
	creds, err := decodeList(raw)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("credentials fetched", "kind", kind, "count", len(creds))

	if data, err := json.Marshal(creds); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("credential cache write failed", "kind", kind, "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, cacheNamespace, len(data))
		}
	}
	return creds, nil
}

// listEnvelopes are the object keys a credential list may be wrapped in.
var listEnvelopes = []string{"data", "credentials"}

func decodeList(raw json.RawMessage) ([]Credential, error) {
	var creds []Credential
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(raw, &creds); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode credential list")
		}
		return creds, nil
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode credential list")
	}
	for _, key := range listEnvelopes {
		list, ok := env[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(list, &creds); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode credential list %q", key)
		}
		if creds == nil {
			creds = []Credential{}
		}
		return creds, nil
	}
	return nil, errors.New(errors.ErrCodeMalformedInput, "credential list response has no %s key", strings.Join(listEnvelopes, " or "))
}

// =============================================================================
// Stale-response guard
// =============================================================================

// ErrStale is returned for a fetch that was superseded before it finished.
var ErrStale = stderrors.New("credential lookup superseded")

// Latest delivers only the answer to the most recent [Latest.Fetch].
type Latest struct {
	lookup Lookup

	mu     sync.Mutex
	ticket uint64
	nodeID string
}

// NewLatest wraps lookup.
func NewLatest(lookup Lookup) *Latest {
	return &Latest{lookup: lookup}
}

// Fetch lists the credentials of kind on behalf of nodeID. Starting a
// Fetch supersedes every earlier one: if another Fetch begins before this
// one returns, the result is discarded and ErrStale is returned.
func (l *Latest) Fetch(ctx context.Context, nodeID, kind string) ([]Credential, error) {
	l.mu.Lock()
	l.ticket++
	mine := l.ticket
	l.nodeID = nodeID
	l.mu.Unlock()

	creds, err := l.lookup.List(ctx, kind)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ticket != mine {
		return nil, ErrStale
	}
	return creds, err
}

// Current returns the node id of the most recent fetch.
func (l *Latest) Current() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nodeID
}
