// Package robots decides whether a page may be fetched according to the
// site's robots.txt. It is consulted once per fetch; nothing is cached.
package robots

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// maxRobotsBytes bounds how much of a robots.txt is read.
const maxRobotsBytes = 512 << 10

// Rules is a parsed robots.txt.
type Rules struct {
	Groups []Group
}

// Group is one User-agent block.
type Group struct {
	Agents   []string
	Allow    []string
	Disallow []string
}

// disallowAll is applied when robots.txt cannot be read for a transient reason.
var disallowAll = Rules{Groups: []Group{{Agents: []string{"*"}, Disallow: []string{"/"}}}}

// Parse reads robots.txt text. Unknown directives are ignored.
func Parse(text string) Rules {
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), maxRobotsBytes)
	var (
		groups []Group
		cur    Group
	)
	flush := func() {
		if len(cur.Agents) > 0 || len(cur.Allow) > 0 || len(cur.Disallow) > 0 {
			groups = append(groups, cur)
		}
		cur = Group{}
	}
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		val = strings.TrimSpace(val)
		switch key {
		case "user-agent", "useragent":
			// A User-agent after rules starts a new group.
			if len(cur.Allow) > 0 || len(cur.Disallow) > 0 {
				flush()
			}
			cur.Agents = append(cur.Agents, strings.ToLower(val))
		case "allow":
			cur.Allow = append(cur.Allow, val)
		case "disallow":
			cur.Disallow = append(cur.Disallow, val)
		}
	}
	flush()
	return Rules{Groups: groups}
}

// IsAllowed reports whether path (optionally with query) may be fetched by
// userAgent. The most specific User-agent group applies, exact tokens
// beating "*". Inside it the longest matching pattern wins and Allow wins
// ties. No matching pattern means allowed.
func (r Rules) IsAllowed(userAgent, path string) bool {
	g, ok := r.group(userAgent)
	if !ok {
		return true
	}
	best, allow := -1, true
	consider := func(patterns []string, isAllow bool) {
		for _, p := range patterns {
			if p == "" || !matches(p, path) {
				continue
			}
			if s := specificity(p); s > best || (s == best && isAllow) {
				best, allow = s, isAllow
			}
		}
	}
	consider(g.Disallow, false)
	consider(g.Allow, true)
	return allow
}

func (r Rules) group(userAgent string) (Group, bool) {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	bestIdx, bestScore := -1, -1
	for i, g := range r.Groups {
		for _, a := range g.Agents {
			score := -1
			switch {
			case a == "*":
				score = 0
			case a != "" && strings.Contains(ua, a):
				score = len(a)
			}
			if score > bestScore {
				bestIdx, bestScore = i, score
			}
		}
	}
	if bestIdx < 0 {
		return Group{}, false
	}
	return r.Groups[bestIdx], true
}

// matches supports '*' for any sequence and a trailing '$' end anchor.
// Patterns are anchored at the start of the path.
func matches(pattern, path string) bool {
	anchored := strings.HasSuffix(pattern, "$")
	parts := strings.Split(strings.TrimSuffix(pattern, "$"), "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	expr := "^" + strings.Join(parts, ".*")
	if anchored {
		expr += "$"
	}
	return regexp.MustCompile(expr).MatchString(path)
}

func specificity(pattern string) int {
	return len(strings.ReplaceAll(strings.TrimSuffix(pattern, "$"), "*", ""))
}

// Checker fetches robots.txt for each page that is about to be fetched.
type Checker struct {
	HTTPClient *http.Client
	// Timeout bounds the robots.txt request. Zero means 5s.
	Timeout time.Duration
}

// Allowed fetches the robots.txt of page's host and evaluates it for
// userAgent. A missing robots.txt (any 4xx) allows everything. A 5xx or a
// network failure disallows the page and returns the cause.
func (c *Checker) Allowed(ctx context.Context, page *url.URL, userAgent string) (bool, error) {
	rules, err := c.fetch(ctx, page, userAgent)
	path := page.EscapedPath()
	if path == "" {
		path = "/"
	}
	if page.RawQuery != "" {
		path += "?" + page.RawQuery
	}
	return rules.IsAllowed(userAgent, path), err
}

func (c *Checker) fetch(ctx context.Context, page *url.URL, userAgent string) (Rules, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	robotsURL := (&url.URL{Scheme: page.Scheme, Host: page.Host, Path: "/robots.txt"}).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return disallowAll, fmt.Errorf("robots request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return disallowAll, fmt.Errorf("robots %s: %w", robotsURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return disallowAll, fmt.Errorf("robots %s: unexpected status: %d", robotsURL, resp.StatusCode)
	case resp.StatusCode >= 400:
		return Rules{}, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Rules{}, nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
	if err != nil {
		return disallowAll, fmt.Errorf("read robots %s: %w", robotsURL, err)
	}
	return Parse(string(data)), nil
}
