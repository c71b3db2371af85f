package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"github.com/serveropenmc/openmc/internal/cache"
)

const (
	// DefaultAPIURL is the public GitHub REST endpoint.
	DefaultAPIURL = "https://api.github.com"

	acceptHeader = "application/vnd.github.v3+json"
)

// Cache lifetimes per resource kind.
const (
	ContributorsTTL = 15 * time.Minute
	RepositoryTTL   = 30 * time.Minute
	StatsTTL        = 10 * time.Minute
	CommitsTTL      = 5 * time.Minute
	ReleasesTTL     = 20 * time.Minute
	OrgReposTTL     = 30 * time.Minute
)

// Default page sizes for the paged accessors.
const (
	DefaultCommitsPerPage  = 20
	DefaultReleasesPerPage = 10
)

var githubRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "openmc_github_requests_total",
	Help: "Total number of GitHub API requests by HTTP status code",
}, []string{"code"})

// shape is the top-level JSON type a resource must have.
type shape int

const (
	shapeArray shape = iota
	shapeObject
)

// Client provides cached access to the GitHub REST API.
type Client struct {
	apiURL   string
	token    string
	httpCli  *http.Client
	cache    *cache.Store
	logger   *slog.Logger
	coalesce bool
	group    singleflight.Group
	headers  map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithAPIURL overrides the API base URL.
func WithAPIURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.apiURL = strings.TrimRight(u, "/")
		}
	}
}

// WithToken sends the token as a bearer credential. Requests are anonymous
// without it.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpCli = h
		}
	}
}

// WithLogger sets the logger for cache hit/miss diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHeader adds a header to every request, overriding the default
// Accept header when the key matches.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if c.headers == nil {
			c.headers = make(map[string]string)
		}
		c.headers[http.CanonicalHeaderKey(key)] = value
	}
}

// WithCoalescing makes concurrent misses for the same cache key share one
// request. Without it every miss issues its own request.
func WithCoalescing() Option {
	return func(c *Client) { c.coalesce = true }
}

// NewClient creates a Client that caches responses in store.
func NewClient(store *cache.Store, opts ...Option) *Client {
	c := &Client{
		apiURL:  DefaultAPIURL,
		httpCli: http.DefaultClient,
		cache:   store,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Contributors fetches the contributors of owner/repo.
func (c *Client) Contributors(ctx context.Context, owner, repo string) ([]Contributor, error) {
	var out []Contributor
	err := c.fetchWithCache(ctx,
		fmt.Sprintf("%s/repos/%s/%s/contributors", c.apiURL, owner, repo),
		fmt.Sprintf("contributors_%s_%s", owner, repo),
		ContributorsTTL, c.headers, shapeArray, &out)
	return out, err
}

// Repository fetches the metadata of owner/repo.
func (c *Client) Repository(ctx context.Context, owner, repo string) (*Repository, error) {
	var out Repository
	err := c.fetchWithCache(ctx,
		fmt.Sprintf("%s/repos/%s/%s", c.apiURL, owner, repo),
		fmt.Sprintf("repository_%s_%s", owner, repo),
		RepositoryTTL, c.headers, shapeObject, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ContributorStats fetches weekly contributor statistics of owner/repo.
func (c *Client) ContributorStats(ctx context.Context, owner, repo string) ([]ContributorStat, error) {
	var out []ContributorStat
	err := c.fetchWithCache(ctx,
		fmt.Sprintf("%s/repos/%s/%s/stats/contributors", c.apiURL, owner, repo),
		fmt.Sprintf("stats_%s_%s", owner, repo),
		StatsTTL, c.headers, shapeArray, &out)
	return out, err
}

// Commits fetches the latest perPage commits of owner/repo.
func (c *Client) Commits(ctx context.Context, owner, repo string, perPage int) ([]Commit, error) {
	if perPage <= 0 {
		perPage = DefaultCommitsPerPage
	}
	var out []Commit
	err := c.fetchWithCache(ctx,
		fmt.Sprintf("%s/repos/%s/%s/commits?per_page=%d", c.apiURL, owner, repo, perPage),
		fmt.Sprintf("commits_%s_%s_%d", owner, repo, perPage),
		CommitsTTL, c.headers, shapeArray, &out)
	return out, err
}

// Releases fetches the latest perPage releases of owner/repo, drafts included.
func (c *Client) Releases(ctx context.Context, owner, repo string, perPage int) ([]Release, error) {
	if perPage <= 0 {
		perPage = DefaultReleasesPerPage
	}
	var out []Release
	err := c.fetchWithCache(ctx,
		fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d", c.apiURL, owner, repo, perPage),
		fmt.Sprintf("releases_%s_%s_%d", owner, repo, perPage),
		ReleasesTTL, c.headers, shapeArray, &out)
	return out, err
}

// PublishedReleases is Releases with drafts removed.
func (c *Client) PublishedReleases(ctx context.Context, owner, repo string, perPage int) ([]Release, error) {
	all, err := c.Releases(ctx, owner, repo, perPage)
	if err != nil {
		return nil, err
	}
	published := all[:0]
	for _, r := range all {
		if !r.Draft {
			published = append(published, r)
		}
	}
	return published, nil
}

// OrgRepositories fetches the public repositories of org.
func (c *Client) OrgRepositories(ctx context.Context, org string) ([]OrgRepository, error) {
	var out []OrgRepository
	err := c.fetchWithCache(ctx,
		fmt.Sprintf("%s/orgs/%s/repos", c.apiURL, org),
		fmt.Sprintf("org_repos_%s", org),
		OrgReposTTL, c.headers, shapeArray, &out)
	return out, err
}

// fetchWithCache serves dst from the cache or fetches url, caching the body
// under cacheKey for ttl.
func (c *Client) fetchWithCache(ctx context.Context, url, cacheKey string, ttl time.Duration, headers map[string]string, want shape, dst any) error {
	if c.cache.Get(ctx, cacheKey, dst) {
		c.logger.Debug("served from cache", "key", cacheKey)
		return nil
	}

	var body []byte
	var err error
	if c.coalesce {
		var v any
		v, err, _ = c.group.Do(cacheKey, func() (any, error) {
			return c.fetch(ctx, url, cacheKey, ttl, headers, want)
		})
		if err == nil {
			body = v.([]byte)
		}
	} else {
		body, err = c.fetch(ctx, url, cacheKey, ttl, headers, want)
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// fetch performs the GET, validates the response and stores it.
func (c *Client) fetch(ctx context.Context, url, cacheKey string, ttl time.Duration, headers map[string]string, want shape) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()
	githubRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode == http.StatusForbidden {
		return nil, &RateLimitError{Reset: parseReset(resp.Header.Get("X-RateLimit-Reset"))}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Code:    resp.StatusCode,
			Status:  statusText(resp),
			Message: gjson.GetBytes(body, "message").String(),
		}
	}
	if resp.StatusCode == http.StatusAccepted {
		return nil, ErrStatsPending
	}

	if err := checkShape(body, want); err != nil {
		return nil, err
	}

	c.cache.Set(ctx, cacheKey, json.RawMessage(body), ttl)
	c.logger.Debug("stored in cache", "key", cacheKey, "ttl", ttl)
	return body, nil
}

func checkShape(body []byte, want shape) error {
	if !gjson.ValidBytes(body) {
		return fmt.Errorf("parsing response: invalid JSON")
	}
	res := gjson.ParseBytes(body)
	switch want {
	case shapeArray:
		if !res.IsArray() {
			return fmt.Errorf("parsing response: expected a JSON array, got %s", res.Type)
		}
	case shapeObject:
		if !res.IsObject() {
			return fmt.Errorf("parsing response: expected a JSON object, got %s", res.Type)
		}
	}
	return nil
}

func statusText(resp *http.Response) string {
	if s := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); s != "" && s != resp.Status {
		return s
	}
	return http.StatusText(resp.StatusCode)
}

func parseReset(v string) time.Time {
	secs, err := strconv.ParseInt(v, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

var (
	httpsRemoteRe = regexp.MustCompile(`https?://[^/]+/([^/]+)/([^/.\s]+)`)
	sshRemoteRe   = regexp.MustCompile(`[^@]+@[^:]+:([^/]+)/([^/.\s]+)`)
	slugRe        = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)
)

// ParseRepo extracts owner/repo from "owner/repo", an https URL or an ssh
// remote.
func ParseRepo(s string) (owner, repo string, err error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".git")

	if m := slugRe.FindStringSubmatch(s); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := httpsRemoteRe.FindStringSubmatch(s); len(m) == 3 {
		return m[1], m[2], nil
	}
	if m := sshRemoteRe.FindStringSubmatch(s); len(m) == 3 {
		return m[1], m[2], nil
	}
	return "", "", fmt.Errorf("cannot parse owner/repo from %q", s)
}
