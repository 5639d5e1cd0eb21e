package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/encoding/unicode"
)

// DefaultTimeout bounds a single GET when the caller does not set one.
const DefaultTimeout = 15 * time.Second

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes int64 = 10 << 20

// DefaultUserAgent is sent when Client.UserAgent is empty.
const DefaultUserAgent = "wordfreq/1.0 (+https://github.com/hyperifyio/wordfreq)"

// Response is the raw page as fetched. Body is always valid UTF-8.
type Response struct {
	URL         string
	ContentType string
	StatusCode  int
	Body        string
	Truncated   bool
}

// Client wraps http.Client and provides timeouts and optional limited retry on transient errors.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Zero means a single GET.
	MaxAttempts int
	// PerRequestTimeout bounds each request. Zero means DefaultTimeout.
	PerRequestTimeout time.Duration
	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// MaxBodyBytes caps the bytes read from a body. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// Robots, when set, is consulted once before the first attempt.
	Robots RobotsChecker
}

// RobotsChecker decides whether a page may be fetched.
type RobotsChecker interface {
	Allowed(ctx context.Context, page *url.URL, userAgent string) (bool, error)
}

func (c *Client) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) timeout() time.Duration {
	if c.PerRequestTimeout > 0 {
		return c.PerRequestTimeout
	}
	return DefaultTimeout
}

func (c *Client) maxBody() int64 {
	if c.MaxBodyBytes > 0 {
		return c.MaxBodyBytes
	}
	return DefaultMaxBodyBytes
}

// Get issues a GET and returns the body decoded as UTF-8 regardless of the
// declared charset. Any non-2xx status is an error. The returned error is
// always a *Error.
func (c *Client) Get(ctx context.Context, rawURL string) (Response, error) {
	if err := c.checkRobots(ctx, rawURL); err != nil {
		return Response{}, err
	}
	attempts := c.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr *Error
	for i := 0; i < attempts; i++ {
		resp, err := c.tryOnce(ctx, rawURL)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isTransient(err) || i == attempts-1 {
			break
		}
		log.Debug().Err(err).Str("url", rawURL).Int("attempt", i+1).Msg("transient fetch error; retrying")
		select {
		case <-ctx.Done():
			return Response{}, classify(rawURL, ctx.Err())
		case <-time.After(time.Duration(i+1) * 200 * time.Millisecond):
		}
	}
	return Response{}, lastErr
}

func (c *Client) tryOnce(ctx context.Context, rawURL string) (Response, *Error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, &Error{URL: rawURL, Kind: KindRequest, Cause: err}
	}
	if !isHTTPScheme(req.URL) {
		return Response{}, &Error{URL: rawURL, Kind: KindRequest, Cause: fmt.Errorf("unsupported URL scheme: %q", req.URL.Scheme)}
	}
	req.Header.Set("User-Agent", c.userAgent())

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return Response{}, classify(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &Error{URL: rawURL, Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	limit := c.maxBody()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		if e := classify(rawURL, err); e.Kind == KindTimeout {
			return Response{}, e
		}
		return Response{}, &Error{URL: rawURL, Kind: KindBody, StatusCode: resp.StatusCode, Cause: err}
	}
	truncated := int64(len(raw)) > limit
	if truncated {
		raw = raw[:limit]
		log.Warn().Str("url", rawURL).Int64("limit", limit).Msg("response body truncated")
	}
	body, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return Response{}, &Error{URL: rawURL, Kind: KindBody, StatusCode: resp.StatusCode, Cause: fmt.Errorf("decode utf-8: %w", err)}
	}

	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return Response{
		URL:         final,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		Body:        string(body),
		Truncated:   truncated,
	}, nil
}

// checkRobots leaves URL and scheme errors to tryOnce so they keep KindRequest.
func (c *Client) checkRobots(ctx context.Context, rawURL string) *Error {
	if c.Robots == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || !isHTTPScheme(u) {
		return nil
	}
	ok, err := c.Robots.Allowed(ctx, u, c.userAgent())
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("robots.txt check failed")
	}
	if !ok {
		return &Error{URL: rawURL, Kind: KindDisallowed, Cause: err}
	}
	return nil
}

func classify(rawURL string, err error) *Error {
	var fe *Error
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{URL: rawURL, Kind: KindTimeout, Cause: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{URL: rawURL, Kind: KindTimeout, Cause: err}
	}
	return &Error{URL: rawURL, Kind: KindNetwork, Cause: err}
}

// isTransient treats HTTP 5xx and timeouts as worth another attempt.
func isTransient(err *Error) bool {
	if err == nil {
		return false
	}
	switch err.Kind {
	case KindTimeout:
		return true
	case KindStatus:
		return err.StatusCode >= 500 && err.StatusCode <= 599
	}
	return false
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
