package places

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/locus/internal/common"
	"github.com/ternarybob/locus/internal/interfaces"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the Google Maps Platform web
	// services.
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"

	// DefaultTimeout is the fixed HTTP timeout for API requests.
	DefaultTimeout = 15 * time.Second

	// DefaultCacheExpiration is the default cached-response lifetime.
	DefaultCacheExpiration = 24 * time.Hour

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10

	// CacheNamespace prefixes every cache key written by this package.
	CacheNamespace = "locus:"
)

// Endpoint identities used for cache keys and error reporting.
const (
	EndpointGeocode      = "geocode"
	EndpointPlaceDetails = "place_details"
	EndpointFindPlace    = "find_place"
	EndpointNearbySearch = "nearby_search"
	EndpointTextSearch   = "text_search"
	EndpointAutocomplete = "autocomplete"
	EndpointPhoto        = "photo"
)

var endpointPaths = map[string]string{
	EndpointGeocode:      "/geocode/json",
	EndpointPlaceDetails: "/place/details/json",
	EndpointFindPlace:    "/place/findplacefromtext/json",
	EndpointNearbySearch: "/place/nearbysearch/json",
	EndpointTextSearch:   "/place/textsearch/json",
	EndpointAutocomplete: "/place/autocomplete/json",
	EndpointPhoto:        "/place/photo",
}

// Client is a Google Places/Geocoding API client with optional response
// caching. Parameter stores are per-instance and not safe for concurrent
// mutation.
type Client struct {
	baseURL         string
	apiKey          string
	httpClient      *http.Client
	logger          arbor.ILogger
	limiter         *rate.Limiter
	cache           interfaces.CacheStorage
	cacheEnabled    bool
	cacheExpiration time.Duration
	sessionToken    string
	language        string
	region          string

	// Search parameters are merged into search, nearby, text search,
	// find-place and details requests.
	Search *SearchParams

	// AutocompleteParams are merged into autocomplete requests.
	AutocompleteParams *AutocompleteParams

	// Photo parameters are merged into photo URLs.
	Photo *PhotoParams
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCache enables response caching backed by the given store.
func WithCache(cache interfaces.CacheStorage) ClientOption {
	return func(c *Client) {
		c.cache = cache
		c.cacheEnabled = cache != nil
	}
}

// WithCacheDisabled turns off response caching while keeping the store
// attached for ClearCache.
func WithCacheDisabled() ClientOption {
	return func(c *Client) {
		c.cacheEnabled = false
	}
}

// WithCacheExpiration sets the cached-response lifetime. Negative values
// are rejected by NewClient.
func WithCacheExpiration(expiration time.Duration) ClientOption {
	return func(c *Client) {
		c.cacheExpiration = expiration
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		} else {
			c.limiter = nil
		}
	}
}

// WithSessionToken sets the autocomplete billing session token. When unset,
// a random token is generated per client.
func WithSessionToken(token string) ClientOption {
	return func(c *Client) {
		c.sessionToken = token
	}
}

// WithLanguage sets the default language code injected into requests.
func WithLanguage(language string) ClientOption {
	return func(c *Client) {
		c.language = language
	}
}

// WithRegion sets the default region bias injected into requests.
func WithRegion(region string) ClientOption {
	return func(c *Client) {
		c.region = region
	}
}

// NewClient creates a new Places API client.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, &common.InvalidConfigurationError{Field: "api_key", Reason: "must not be empty"}
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter:            rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		cacheEnabled:       false,
		cacheExpiration:    DefaultCacheExpiration,
		Search:             NewSearchParams(),
		AutocompleteParams: NewAutocompleteParams(),
		Photo:              NewPhotoParams(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.cacheExpiration < 0 {
		return nil, &common.InvalidConfigurationError{Field: "cache_expiration", Reason: "must not be negative"}
	}

	return c, nil
}

// SetCacheExpiration updates the cached-response lifetime. Negative values
// fail without mutating state.
func (c *Client) SetCacheExpiration(expiration time.Duration) error {
	if expiration < 0 {
		return &common.InvalidConfigurationError{Field: "cache_expiration", Reason: "must not be negative"}
	}
	c.cacheExpiration = expiration
	return nil
}

// Geocode resolves an address to coordinates and address components.
// Extra parameters are merged over the stored search parameters.
func (c *Client) Geocode(ctx context.Context, address string, extra map[string]string) (*Response, error) {
	params := c.mergeParams(c.Search.Values(), extra)
	params["address"] = address
	return c.doCached(ctx, EndpointGeocode, params)
}

// GeocodeComponents geocodes from a component filter (e.g. postal_code,
// country) instead of a free-form address. Components are joined in sorted
// key order so equivalent filters share a cache entry.
func (c *Client) GeocodeComponents(ctx context.Context, components map[string]string, extra map[string]string) (*Response, error) {
	keys := make([]string, 0, len(components))
	for k := range components {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+":"+components[k])
	}

	params := c.mergeParams(c.Search.Values(), extra)
	params["components"] = strings.Join(parts, "|")
	return c.doCached(ctx, EndpointGeocode, params)
}

// ReverseGeocode resolves coordinates to the nearest addresses.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (*Response, error) {
	params := c.mergeParams(c.Search.Values(), nil)
	params["latlng"] = formatLatLng(lat, lng)
	return c.doCached(ctx, EndpointGeocode, params)
}

// PlaceDetails retrieves full details for a place ID. When fields are given
// they are passed through as the details field mask.
func (c *Client) PlaceDetails(ctx context.Context, placeID string, fields ...string) (*Response, error) {
	params := c.mergeParams(c.Search.Values(), nil)
	params["place_id"] = placeID
	if len(fields) > 0 {
		params["fields"] = strings.Join(fields, ",")
	}
	return c.doCached(ctx, EndpointPlaceDetails, params)
}

// FindPlaces performs a find-place-from-text search.
func (c *Client) FindPlaces(ctx context.Context, query string) (*Response, error) {
	params := c.mergeParams(c.Search.Values(), nil)
	params["input"] = query
	params["inputtype"] = "textquery"
	return c.doCached(ctx, EndpointFindPlace, params)
}

// NearbySearch searches for places around a point. The radius is clamped
// to the API maximum of 50000 meters.
func (c *Client) NearbySearch(ctx context.Context, lat, lng float64, radius int) (*Response, error) {
	params := c.mergeParams(c.Search.Values(), nil)
	params["location"] = formatLatLng(lat, lng)
	params["radius"] = strconv.Itoa(clampInt(radius, 0, MaxRadiusMeters))
	return c.doCached(ctx, EndpointNearbySearch, params)
}

// TextSearch performs a free-form text search for places.
func (c *Client) TextSearch(ctx context.Context, query string) (*Response, error) {
	params := c.mergeParams(c.Search.Values(), nil)
	params["query"] = query
	return c.doCached(ctx, EndpointTextSearch, params)
}

// Autocomplete returns place predictions for a partial input. A session
// token is always included: the stored autocomplete token when set,
// otherwise a per-client generated token.
func (c *Client) Autocomplete(ctx context.Context, input string) (*Response, error) {
	params := c.mergeParams(c.AutocompleteParams.Values(), nil)
	params["input"] = input
	if params["sessiontoken"] == "" {
		if c.sessionToken == "" {
			c.sessionToken = uuid.NewString()
		}
		params["sessiontoken"] = c.sessionToken
	}
	return c.doCached(ctx, EndpointAutocomplete, params)
}

// PhotoURL deterministically builds an image URL for a photo reference from
// the stored photo parameters. No network call is made and nothing is cached.
func (c *Client) PhotoURL(photoReference string) string {
	params := c.Photo.Values()
	params["photo_reference"] = photoReference

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("key", c.apiKey)

	return fmt.Sprintf("%s%s?%s", c.baseURL, endpointPaths[EndpointPhoto], values.Encode())
}

// ClearCache removes cached responses. With identifiers it removes exactly
// those entries; without any it removes every entry under this package's
// cache namespace.
func (c *Client) ClearCache(ctx context.Context, identifiers ...string) error {
	if c.cache == nil {
		return nil
	}

	if len(identifiers) == 0 {
		count, err := c.cache.DeleteByPrefix(ctx, CacheNamespace)
		if err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		if c.logger != nil {
			c.logger.Info().Int("count", count).Msg("Cleared cached responses")
		}
		return nil
	}

	for _, id := range identifiers {
		if err := c.cache.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to clear cache entry %s: %w", id, err)
		}
	}
	return nil
}

// mergeParams layers call-specific parameters over stored ones. Client-level
// language/region defaults apply only when nothing else sets them.
func (c *Client) mergeParams(stored, extra map[string]string) map[string]string {
	merged := make(map[string]string, len(stored)+len(extra)+2)
	if c.language != "" {
		merged["language"] = c.language
	}
	if c.region != "" {
		merged["region"] = c.region
	}
	for k, v := range stored {
		merged[k] = v
	}
	for k, v := range extra {
		if v == "" {
			continue
		}
		merged[k] = v
	}
	return merged
}

// cacheKey derives the cache key from the endpoint identity, the merged
// parameters and the API key. Including the key isolates entries between
// differently-configured clients.
func (c *Client) cacheKey(endpoint string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	io.WriteString(h, endpoint)
	for _, k := range keys {
		io.WriteString(h, "\n"+k+"="+params[k])
	}
	io.WriteString(h, "\n"+c.apiKey)

	return CacheNamespace + hex.EncodeToString(h.Sum(nil))
}

// doCached runs one request through the cache-then-fetch pipeline.
func (c *Client) doCached(ctx context.Context, endpoint string, params map[string]string) (*Response, error) {
	key := c.cacheKey(endpoint, params)

	if c.cacheEnabled && c.cache != nil {
		payload, err := c.cache.Get(ctx, key)
		if err == nil {
			var raw map[string]interface{}
			if jsonErr := json.Unmarshal(payload, &raw); jsonErr == nil {
				if c.logger != nil {
					c.logger.Debug().Str("endpoint", endpoint).Str("key", key).Msg("Cache hit")
				}
				resp := NewResponse(raw)
				resp.cacheID = key
				return resp, nil
			} else if c.logger != nil {
				c.logger.Warn().Err(jsonErr).Str("key", key).Msg("Discarding undecodable cache entry")
			}
		} else if !errors.Is(err, interfaces.ErrCacheMiss) && c.logger != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed, falling through to request")
		}
	}

	raw, body, err := c.fetch(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}

	if c.cacheEnabled && c.cache != nil {
		if err := c.cache.Set(ctx, key, body, c.cacheExpiration); err != nil && c.logger != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Failed to store response in cache")
		}
	}

	resp := NewResponse(raw)
	resp.cacheID = key
	return resp, nil
}

// fetch performs a single synchronous GET against the API.
func (c *Client) fetch(ctx context.Context, endpoint string, params map[string]string) (map[string]interface{}, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, &TransportError{Endpoint: endpoint, Err: err}
		}
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("key", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpointPaths[endpoint], values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	if c.logger != nil {
		// Redact API key in logs
		c.logger.Debug().Str("url", redactKey(reqURL)).Str("endpoint", endpoint).Msg("Places API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &TransportError{Endpoint: endpoint, Timeout: isTimeout(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &TransportError{Endpoint: endpoint, Timeout: isTimeout(err), Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, nil, &APIError{
			Endpoint:   endpoint,
			HTTPStatus: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil, &MalformedResponseError{Endpoint: endpoint, Err: err}
	}

	status, _ := raw["status"].(string)
	if status != "OK" && status != "ZERO_RESULTS" {
		message, _ := raw["error_message"].(string)
		return nil, nil, &APIError{
			Endpoint:   endpoint,
			HTTPStatus: resp.StatusCode,
			Status:     status,
			Message:    message,
		}
	}

	return raw, body, nil
}

func redactKey(reqURL string) string {
	u, err := url.Parse(reqURL)
	if err != nil {
		return reqURL
	}
	q := u.Query()
	if q.Get("key") != "" {
		q.Set("key", "***REDACTED***")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
