package fetch

import (
    "bytes"
    "context"
    "errors"
    "fmt"
    "io"
    "net"
    "net/http"
    "net/url"
    "strings"
    "time"

    "golang.org/x/net/html/charset"
)

var (
    // ErrNetwork wraps transport and protocol failures.
    ErrNetwork = errors.New("network error")
    // ErrTimeout is returned when the configured timeout elapses.
    ErrTimeout = errors.New("fetch timed out")
)

// Page is a retrieved document and how long retrieval took.
type Page struct {
    URL         string
    StatusCode  int
    ContentType string
    // Body is the response body decoded to UTF-8.
    Body    []byte
    Elapsed time.Duration
}

// LoadTimeSeconds returns Elapsed in seconds.
func (p Page) LoadTimeSeconds() float64 { return p.Elapsed.Seconds() }

// Client issues a single GET per page. It never retries.
type Client struct {
    HTTPClient *http.Client
    UserAgent  string
    // Timeout bounds the whole request including reading the body.
    // Zero means no timeout.
    Timeout time.Duration
    // RedirectMaxHops caps redirect following. Zero means 10.
    RedirectMaxHops int

    now func() time.Time
}

func (c *Client) getHTTPClient() *http.Client {
    if c.HTTPClient != nil {
        // clone to attach the redirect policy without mutating the caller's client
        base := *c.HTTPClient
        base.CheckRedirect = c.checkRedirectFunc()
        return &base
    }
    return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) clock() time.Time {
    if c.now != nil {
        return c.now()
    }
    return time.Now()
}

// Get retrieves rawURL and measures the wall-clock time from issuing the
// request until the body has been read completely.
func (c *Client) Get(ctx context.Context, rawURL string) (Page, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
    if err != nil {
        return Page{}, fmt.Errorf("%w: new request: %v", ErrNetwork, err)
    }
    if !isHTTPScheme(req.URL) {
        return Page{}, fmt.Errorf("%w: unsupported URL scheme: %q", ErrNetwork, rawURL)
    }
    if c.UserAgent != "" {
        req.Header.Set("User-Agent", c.UserAgent)
    }
    if c.Timeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(req.Context(), c.Timeout)
        defer cancel()
        req = req.WithContext(ctx)
    }

    start := c.clock()
    resp, err := c.getHTTPClient().Do(req)
    if err != nil {
        return Page{}, classify(err)
    }
    defer resp.Body.Close()
    raw, err := io.ReadAll(resp.Body)
    if err != nil {
        return Page{}, classify(fmt.Errorf("read body: %w", err))
    }
    elapsed := c.clock().Sub(start)

    contentType := resp.Header.Get("Content-Type")
    return Page{
        URL:         resp.Request.URL.String(),
        StatusCode:  resp.StatusCode,
        ContentType: contentType,
        Body:        decode(raw, contentType),
        Elapsed:     elapsed,
    }, nil
}

// decode converts body to UTF-8 using the declared or sniffed charset.
// Undecodable input is returned unchanged.
func decode(body []byte, contentType string) []byte {
    r, err := charset.NewReader(bytes.NewReader(body), contentType)
    if err != nil {
        return body
    }
    out, err := io.ReadAll(r)
    if err != nil {
        return body
    }
    return out
}

func classify(err error) error {
    var netErr net.Error
    if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
        return fmt.Errorf("%w: %v", ErrTimeout, err)
    }
    return fmt.Errorf("%w: %v", ErrNetwork, err)
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
    max := c.RedirectMaxHops
    if max <= 0 {
        max = 10
    }
    return func(req *http.Request, via []*http.Request) error {
        if len(via) >= max {
            return errors.New("too many redirects")
        }
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
