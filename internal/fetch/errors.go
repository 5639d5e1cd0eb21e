package fetch

import "fmt"

// Kind classifies why a fetch failed.
type Kind int

const (
	// KindRequest means the request could not be built (bad URL, unsupported scheme).
	KindRequest Kind = iota + 1
	// KindNetwork covers connection, DNS and redirect failures.
	KindNetwork
	// KindTimeout means the per-request deadline elapsed.
	KindTimeout
	// KindStatus means the server answered with a non-2xx status.
	KindStatus
	// KindBody means the body could not be read or decoded.
	KindBody
	// KindDisallowed means robots.txt forbids the page.
	KindDisallowed
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	case KindBody:
		return "body"
	case KindDisallowed:
		return "disallowed"
	}
	return "unknown"
}

// Error describes a failed fetch.
type Error struct {
	URL        string
	Kind       Kind
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("fetch %s: unexpected status: %d", e.URL, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Cause)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
