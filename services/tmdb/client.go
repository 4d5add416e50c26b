package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"popularmovies/models"
)

const (
	DefaultBaseURL = "https://api.themoviedb.org/3"

	// MaxDiscoverPage is the highest page TMDB serves for discover listings.
	MaxDiscoverPage = 500

	defaultListTimeout   = 15 * time.Second
	defaultLookupTimeout = 5 * time.Second
)

var (
	// ErrNotConfigured is returned when no API key has been provided.
	ErrNotConfigured = errors.New("tmdb api key not configured")

	// ErrStatus wraps every non-2xx response.
	ErrStatus = errors.New("unexpected tmdb status")

	imdbIDPattern = regexp.MustCompile(`^tt\d+$`)
)

type statusError struct {
	code   int
	status string
}

func (e *statusError) Error() string { return fmt.Sprintf("%s: %s", ErrStatus, e.status) }
func (e *statusError) Unwrap() error { return ErrStatus }

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	APIKey            string
	BaseURL           string
	Language          string
	ListTimeout       time.Duration
	LookupTimeout     time.Duration
	RetryAttempts     uint
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Client talks to the two TMDB endpoints the catalog needs: the popularity
// sorted discover listing and the per-movie external id lookup.
type Client struct {
	apiKey        string
	baseURL       string
	language      string
	httpc         *http.Client
	limiter       *rate.Limiter
	listTimeout   time.Duration
	lookupTimeout time.Duration
	retryAttempts uint
	retryDelay    time.Duration
}

func NewClient(opts Options) *Client {
	httpc := opts.HTTPClient
	if httpc == nil {
		httpc = &http.Client{}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	listTimeout := opts.ListTimeout
	if listTimeout <= 0 {
		listTimeout = defaultListTimeout
	}
	lookupTimeout := opts.LookupTimeout
	if lookupTimeout <= 0 {
		lookupTimeout = defaultLookupTimeout
	}
	attempts := opts.RetryAttempts
	if attempts == 0 {
		attempts = 1
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Client{
		apiKey:        strings.TrimSpace(opts.APIKey),
		baseURL:       baseURL,
		language:      normalizeLanguage(opts.Language),
		httpc:         httpc,
		limiter:       rate.NewLimiter(limit, 10),
		listTimeout:   listTimeout,
		lookupTimeout: lookupTimeout,
		retryAttempts: attempts,
		retryDelay:    300 * time.Millisecond,
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.apiKey != ""
}

type discoverResponse struct {
	Page         int                    `json:"page"`
	TotalPages   int                    `json:"total_pages"`
	TotalResults int                    `json:"total_results"`
	Results      []models.DiscoverMovie `json:"results"`
}

// DiscoverPage fetches one page (1-based) of movies sorted by popularity and
// released on or before asOf. An empty slice with a nil error means the
// listing has no more data.
func (c *Client) DiscoverPage(ctx context.Context, page int, asOf time.Time) ([]models.DiscoverMovie, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}
	if page < 1 {
		page = 1
	}
	if page > MaxDiscoverPage {
		return nil, nil
	}

	q := url.Values{}
	q.Set("sort_by", "popularity.desc")
	q.Set("language", c.language)
	q.Set("primary_release_date.lte", asOf.UTC().Format("2006-01-02"))
	q.Set("page", strconv.Itoa(page))

	var resp discoverResponse
	err := retry.Do(
		func() error {
			return c.getJSON(ctx, c.listTimeout, "/discover/movie", q, &resp)
		},
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("[tmdb] retrying discover page=%d attempt=%d err=%v", page, n+1, err)
		}),
	)
	if err != nil {
		upstreamRequests.WithLabelValues("discover", "error").Inc()
		return nil, fmt.Errorf("discover page %d: %w", page, err)
	}
	upstreamRequests.WithLabelValues("discover", "ok").Inc()
	if resp.TotalPages > 0 && page > resp.TotalPages {
		return nil, nil
	}
	return resp.Results, nil
}

// ExternalID resolves the IMDb id of a TMDB movie. Any failure, a missing id
// or a value that is not an IMDb id yields "".
func (c *Client) ExternalID(ctx context.Context, tmdbID int64) string {
	if !c.IsConfigured() || tmdbID <= 0 {
		return ""
	}
	var resp struct {
		IMDBID *string `json:"imdb_id"`
	}
	path := fmt.Sprintf("/movie/%d/external_ids", tmdbID)
	if err := c.getJSON(ctx, c.lookupTimeout, path, nil, &resp); err != nil {
		upstreamRequests.WithLabelValues("external_ids", "error").Inc()
		log.Printf("[tmdb] external id lookup failed tmdb=%d err=%v", tmdbID, err)
		return ""
	}
	upstreamRequests.WithLabelValues("external_ids", "ok").Inc()
	if resp.IMDBID == nil {
		return ""
	}
	id := strings.TrimSpace(*resp.IMDBID)
	if !IsIMDBID(id) {
		return ""
	}
	return id
}

// IsIMDBID reports whether id has the tt<digits> shape of an IMDb title id.
func IsIMDBID(id string) bool {
	return imdbIDPattern.MatchString(id)
}

func (c *Client) getJSON(ctx context.Context, timeout time.Duration, path string, q url.Values, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if q == nil {
		q = url.Values{}
	}
	bearer := isBearerToken(c.apiKey)
	if !bearer {
		q.Set("api_key", c.apiKey)
	}
	u := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if bearer {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &statusError{code: resp.StatusCode, status: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// isRetryable retries transport failures and server-side errors. Client
// errors (bad key, bad page) will not improve on a second attempt.
func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == http.StatusTooManyRequests
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF)
}

// TMDB v4 read access tokens are JWTs; v3 keys are 32 hex characters.
func isBearerToken(key string) bool {
	return strings.HasPrefix(key, "eyJ")
}

// normalizeLanguage turns loose language input (en, en_US, pt-br) into the
// language-REGION form TMDB expects, defaulting to en-US.
func normalizeLanguage(lang string) string {
	lang = strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if lang == "" {
		return "en-US"
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return "en-US"
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "en-US"
	}
	region, conf := tag.Region()
	if conf == language.No {
		return base.String()
	}
	return base.String() + "-" + region.String()
}
