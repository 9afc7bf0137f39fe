package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPChecker reports healthy when a GET returns an accepted status and,
// if Match is set, the body satisfies it
type HTTPChecker struct {
	URL string

	// Headers are sent with every request, e.g. an admin token
	Headers map[string]string

	ExpectedStatusMin int
	ExpectedStatusMax int

	// Match inspects the response body
	Match func(body []byte) error

	Client *http.Client
}

// NewHTTPChecker creates a checker accepting any 2xx or 3xx status
func NewHTTPChecker(url string) *HTTPChecker {
	return &HTTPChecker{
		URL:               url,
		Headers:           make(map[string]string),
		ExpectedStatusMin: 200,
		ExpectedStatusMax: 399,
		Client:            &http.Client{Timeout: 10 * time.Second},
	}
}

func (h *HTTPChecker) Check(ctx context.Context) Result {
	start := time.Now()
	fail := func(format string, args ...any) Result {
		return Result{Message: fmt.Sprintf(format, args...), CheckedAt: start, Duration: time.Since(start)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return fail("failed to create request: %v", err)
	}
	for key, value := range h.Headers {
		req.Header.Set(key, value)
	}

	resp, err := h.Client.Do(req)
	if err != nil {
		return fail("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < h.ExpectedStatusMin || resp.StatusCode > h.ExpectedStatusMax {
		return fail("HTTP %d %s (expected %d-%d)", resp.StatusCode, http.StatusText(resp.StatusCode),
			h.ExpectedStatusMin, h.ExpectedStatusMax)
	}

	if h.Match != nil {
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fail("failed to read body: %v", err)
		}
		if err := h.Match(body); err != nil {
			return fail("unexpected body: %v", err)
		}
	}

	return Result{
		Healthy:   true,
		Message:   fmt.Sprintf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		CheckedAt: start,
		Duration:  time.Since(start),
	}
}

func (h *HTTPChecker) Type() CheckType {
	return CheckTypeHTTP
}

// WithHeader adds a header sent with every request
func (h *HTTPChecker) WithHeader(key, value string) *HTTPChecker {
	h.Headers[key] = value
	return h
}

// WithMatch sets the body predicate
func (h *HTTPChecker) WithMatch(match func(body []byte) error) *HTTPChecker {
	h.Match = match
	return h
}

// WithStatusRange sets the accepted status codes
func (h *HTTPChecker) WithStatusRange(min, max int) *HTTPChecker {
	h.ExpectedStatusMin = min
	h.ExpectedStatusMax = max
	return h
}
