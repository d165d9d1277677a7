// Package wikidata resolves athlete names against the Wikidata search and
// entity APIs.
package wikidata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/playerhunt/internal/domain/model"
	"github.com/okian/playerhunt/pkg/logger"
	"github.com/okian/playerhunt/pkg/metrics"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public Wikidata action API.
	DefaultBaseURL = "https://www.wikidata.org/w/api.php"
	// DefaultUserAgent identifies the client to Wikidata.
	DefaultUserAgent = "playerhunt/1.0 (https://github.com/okian/playerhunt)"

	defaultConnectTimeout = 2 * time.Second
	defaultRequestTimeout = 5 * time.Second
	defaultRateLimit      = 10
	defaultRateBurst      = 5
	searchLimit           = 5
	maxBodyBytes          = 4 << 20

	opSearch = "search"
	opEntity = "entity"
	opLabel  = "label"
)

// Claim property IDs.
const (
	PropSport      = "P641"
	PropOccupation = "P106"
	PropCitizen    = "P27"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithUserAgent sets the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithTimeouts sets the dial timeout and the overall per-request timeout.
func WithTimeouts(connect, request time.Duration) Option {
	return func(c *Client) {
		if connect > 0 {
			c.connectTimeout = connect
		}
		if request > 0 {
			c.requestTimeout = request
		}
	}
}

// WithHTTPClient replaces the HTTP client. Timeouts set with WithTimeouts
// are ignored when this is used.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRateLimit paces outbound requests. A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLabelCache shares a label cache between clients.
func WithLabelCache(lc *LabelCache) Option {
	return func(c *Client) {
		if lc != nil {
			c.labels = lc
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client talks to the Wikidata action API. It is safe for concurrent use.
type Client struct {
	baseURL        string
	userAgent      string
	connectTimeout time.Duration
	requestTimeout time.Duration
	http           *http.Client
	limiter        *rate.Limiter
	labels         *LabelCache
	inflight       singleflight.Group
	logger         logger.Logger
}

// NewClient creates a client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		userAgent:      DefaultUserAgent,
		connectTimeout: defaultConnectTimeout,
		requestTimeout: defaultRequestTimeout,
		limiter:        rate.NewLimiter(defaultRateLimit, defaultRateBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{
			Timeout: c.requestTimeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: c.connectTimeout}).DialContext,
				TLSHandshakeTimeout: c.connectTimeout,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if c.labels == nil {
		c.labels = NewLabelCache()
	}
	c.logger = logger.OrNamed(c.logger, "wikidata")
	return c
}

// Labels returns the client's label cache.
func (c *Client) Labels() *LabelCache { return c.labels }

type searchResponse struct {
	Search []struct {
		ID          string `json:"id"`
		Label       string `json:"label"`
		Description string `json:"description"`
	} `json:"search"`
}

type entitiesResponse struct {
	Entities map[string]entity `json:"entities"`
}

type entity struct {
	Labels map[string]struct {
		Value string `json:"value"`
	} `json:"labels"`
	Claims Claims `json:"claims"`
}

// Claims maps a property ID to its statements.
type Claims map[string][]Claim

// Claim is one statement. Only item-valued snaks are interpreted.
type Claim struct {
	Mainsnak struct {
		Datavalue struct {
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

// ItemID returns the referenced item ID, or "" for non-item values.
func (cl Claim) ItemID() string {
	var v struct {
		ID string `json:"id"`
	}
	if len(cl.Mainsnak.Datavalue.Value) == 0 {
		return ""
	}
	if err := json.Unmarshal(cl.Mainsnak.Datavalue.Value, &v); err != nil {
		return ""
	}
	return v.ID
}

// FirstID returns the item ID of the first statement for prop.
func (c Claims) FirstID(prop string) string {
	stmts := c[prop]
	if len(stmts) == 0 {
		return ""
	}
	return stmts[0].ItemID()
}

// IDs returns the item IDs of every statement for prop, in order.
func (c Claims) IDs(prop string) []string {
	stmts := c[prop]
	ids := make([]string, 0, len(stmts))
	for _, s := range stmts {
		if id := s.ItemID(); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Search returns up to five candidates for term. A hit without a label is
// given term as its label.
func (c *Client) Search(ctx context.Context, term string) ([]model.Candidate, bool) {
	params := url.Values{
		"action":   {"wbsearchentities"},
		"search":   {term},
		"language": {"en"},
		"type":     {"item"},
		"limit":    {strconv.Itoa(searchLimit)},
		"format":   {"json"},
	}
	var resp searchResponse
	if err := c.get(ctx, opSearch, params, &resp); err != nil {
		c.logger.Debug(ctx, "search failed", logger.String("term", term), logger.Error(err))
		return nil, false
	}

	cands := make([]model.Candidate, 0, len(resp.Search))
	for _, h := range resp.Search {
		label := h.Label
		if label == "" {
			label = term
		}
		cands = append(cands, model.Candidate{ID: h.ID, Label: label, Description: h.Description})
	}
	return cands, true
}

// Entity returns the claims of the entity with the given ID.
func (c *Client) Entity(ctx context.Context, id string) (Claims, bool) {
	ent, err := c.fetchEntity(ctx, opEntity, id, "claims|labels")
	if err != nil {
		c.logger.Debug(ctx, "entity fetch failed", logger.String("id", id), logger.Error(err))
		return nil, false
	}
	return ent.Claims, true
}

// Label returns the English label of id, consulting the cache first.
// Concurrent calls for the same uncached id share one request.
func (c *Client) Label(ctx context.Context, id string) (string, bool) {
	if id == "" {
		return "", false
	}
	if l, ok := c.labels.Get(id); ok {
		return l, true
	}

	v, err, _ := c.inflight.Do(id, func() (any, error) {
		ent, err := c.fetchEntity(ctx, opLabel, id, "labels")
		if err != nil {
			return "", err
		}
		l := ent.Labels["en"].Value
		c.labels.Put(id, l)
		metrics.UpdateLabelCacheSize(c.labels.Len())
		return l, nil
	})
	if err != nil {
		c.logger.Debug(ctx, "label fetch failed", logger.String("id", id), logger.Error(err))
		return "", false
	}
	l, _ := v.(string)
	return l, l != ""
}

func (c *Client) fetchEntity(ctx context.Context, op, id, props string) (entity, error) {
	params := url.Values{
		"action":    {"wbgetentities"},
		"ids":       {id},
		"props":     {props},
		"languages": {"en"},
		"format":    {"json"},
	}
	var resp entitiesResponse
	if err := c.get(ctx, op, params, &resp); err != nil {
		return entity{}, err
	}
	ent, ok := resp.Entities[id]
	if !ok {
		return entity{}, fmt.Errorf("%w: %s", ErrEntityMissing, id)
	}
	return ent, nil
}

// get performs one paced GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, op string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.record(op, "rate_limited", 0)
			return fmt.Errorf("wikidata.%s: wait: %w", op, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		c.record(op, "request", 0)
		return fmt.Errorf("wikidata.%s: build request: %w", op, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		status := "transport"
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			status = "timeout"
		}
		c.record(op, status, elapsed)
		return fmt.Errorf("wikidata.%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.record(op, strconv.Itoa(resp.StatusCode), elapsed)
		return fmt.Errorf("wikidata.%s: %w: %d", op, ErrStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(http.MaxBytesReader(nil, resp.Body, maxBodyBytes)).Decode(out); err != nil {
		c.record(op, "decode", elapsed)
		return fmt.Errorf("wikidata.%s: %w: %w", op, ErrDecode, err)
	}
	c.record(op, "ok", elapsed)
	return nil
}

func (c *Client) record(op, status string, elapsed time.Duration) {
	metrics.RecordExternalRequest(op, status)
	if elapsed > 0 {
		metrics.RecordExternalLatency(op, float64(elapsed.Milliseconds()))
	}
	if status != "ok" {
		metrics.RecordErrorByComponent("wikidata", status)
	}
}
