package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "wordfreq-test" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	c := &Client{UserAgent: "wordfreq-test", PerRequestTimeout: 2 * time.Second}
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ContentType == "" || resp.Body != "<html><body>ok</body></html>" {
		t.Fatalf("expected content type and body, got %+v", resp)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestGet_IgnoresDeclaredCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Declared as GBK but the bytes are UTF-8.
		w.Header().Set("Content-Type", "text/html; charset=gbk")
		_, _ = w.Write([]byte("<p>文本分析</p>"))
	}))
	defer srv.Close()

	c := &Client{PerRequestTimeout: 2 * time.Second}
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(resp.Body, "文本分析") {
		t.Fatalf("expected body decoded as utf-8, got %q", resp.Body)
	}
}

func TestGet_InvalidUTF8Replaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{'a', 0xff, 'b'})
	}))
	defer srv.Close()

	c := &Client{PerRequestTimeout: 2 * time.Second}
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Body != "a�b" {
		t.Fatalf("expected replacement char, got %q", resp.Body)
	}
}

func TestGet_NonSuccessStatus(t *testing.T) {
	for _, code := range []int{404, 403, 500} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))
		c := &Client{PerRequestTimeout: 2 * time.Second}
		_, err := c.Get(context.Background(), srv.URL)
		srv.Close()
		var fe *Error
		if !errors.As(err, &fe) {
			t.Fatalf("status %d: expected *Error, got %v", code, err)
		}
		if fe.Kind != KindStatus || fe.StatusCode != code {
			t.Fatalf("status %d: unexpected error %+v", code, fe)
		}
	}
}

func TestGet_SingleAttemptByDefault(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(502)
	}))
	defer srv.Close()

	c := &Client{PerRequestTimeout: 2 * time.Second}
	if _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected a single GET, got %d", calls)
	}
}

func TestGet_RetryOn5xx(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(502)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 2, PerRequestTimeout: 2 * time.Second}
	if _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
}

func TestGet_NoRetryOn4xx(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(404)
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 3, PerRequestTimeout: 2 * time.Second}
	_, _ = c.Get(context.Background(), srv.URL)
	if calls != 1 {
		t.Fatalf("expected no retry on 404, got %d calls", calls)
	}
}

func TestGet_RejectsNonHTTP(t *testing.T) {
	c := &Client{PerRequestTimeout: 1 * time.Second}
	_, err := c.Get(context.Background(), "file:///etc/hosts")
	var fe *Error
	if !errors.As(err, &fe) || fe.Kind != KindRequest {
		t.Fatalf("expected request error for non-http scheme, got %v", err)
	}
}

func TestGet_UnreachableHost(t *testing.T) {
	// Grab a free port then close it so nothing is listening.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	c := &Client{PerRequestTimeout: 2 * time.Second}
	_, err = c.Get(context.Background(), "http://"+addr+"/")
	var fe *Error
	if !errors.As(err, &fe) || fe.Kind != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestGet_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := &Client{PerRequestTimeout: 50 * time.Millisecond}
	_, err := c.Get(context.Background(), srv.URL)
	var fe *Error
	if !errors.As(err, &fe) || fe.Kind != KindTimeout {
		t.Fatalf("expected timeout error, got %v", err)
	}
}

func TestGet_RedirectLimit(t *testing.T) {
	// First path redirects once to /next; with RedirectMaxHops=1 this should fail immediately
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/next", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := &Client{PerRequestTimeout: 2 * time.Second, RedirectMaxHops: 1}
	if _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatalf("expected redirect limit error")
	}

	c.RedirectMaxHops = 0
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("expected redirect to be followed, got %v", err)
	}
	if !strings.HasSuffix(resp.URL, "/next") {
		t.Fatalf("expected final URL to be /next, got %q", resp.URL)
	}
}

func TestGet_TruncatesLargeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer srv.Close()

	c := &Client{PerRequestTimeout: 2 * time.Second, MaxBodyBytes: 10}
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Body) != 10 || !resp.Truncated {
		t.Fatalf("expected body truncated to 10 bytes, got %d (truncated=%v)", len(resp.Body), resp.Truncated)
	}
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindRequest:    "request",
		KindNetwork:    "network",
		KindTimeout:    "timeout",
		KindStatus:     "status",
		KindBody:       "body",
		KindDisallowed: "disallowed",
		Kind(0):        "unknown",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(k), got, want)
		}
	}
}

type stubRobots struct {
	allow bool
	err   error
	calls int
	ua    string
}

func (s *stubRobots) Allowed(_ context.Context, _ *url.URL, ua string) (bool, error) {
	s.calls++
	s.ua = ua
	return s.allow, s.err
}

func TestGet_RobotsDisallowed(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	rb := &stubRobots{allow: false}
	c := &Client{PerRequestTimeout: 2 * time.Second, Robots: rb}
	_, err := c.Get(context.Background(), srv.URL+"/page")
	var fe *Error
	if !errors.As(err, &fe) || fe.Kind != KindDisallowed {
		t.Fatalf("expected disallowed error, got %v", err)
	}
	if hits != 0 {
		t.Fatalf("page must not be fetched when disallowed, got %d hits", hits)
	}
	if rb.ua != DefaultUserAgent {
		t.Fatalf("robots checked with %q, want default user agent", rb.ua)
	}
}

func TestGet_RobotsAllowed_CheckedOnce(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(503)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	rb := &stubRobots{allow: true}
	c := &Client{PerRequestTimeout: 2 * time.Second, MaxAttempts: 2, Robots: rb}
	if _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rb.calls != 1 {
		t.Fatalf("expected one robots check across retries, got %d", rb.calls)
	}
}

func TestGet_RobotsSkippedForBadScheme(t *testing.T) {
	rb := &stubRobots{allow: false}
	c := &Client{Robots: rb}
	_, err := c.Get(context.Background(), "ftp://example.com/")
	var fe *Error
	if !errors.As(err, &fe) || fe.Kind != KindRequest {
		t.Fatalf("expected request error, got %v", err)
	}
	if rb.calls != 0 {
		t.Fatalf("robots must not be consulted for unsupported schemes")
	}
}
