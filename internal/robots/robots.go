package robots

import (
    "context"
    "fmt"
    "io"
    "net"
    "net/http"
    "net/url"
    "strings"
    "sync"
    "time"

    "github.com/rs/zerolog/log"
    "github.com/temoto/robotstxt"

    "github.com/hyperifyio/seoaudit/internal/cache"
)

// Source reports where a robots.txt document was served from.
type Source int

const (
    SourceNetwork Source = iota
    SourceMemory
    SourceCache304
)

func (s Source) String() string {
    switch s {
    case SourceMemory:
        return "memory"
    case SourceCache304:
        return "cache-304"
    }
    return "network"
}

// Rules is a parsed robots.txt file. The zero value allows everything.
type Rules struct {
    data *robotstxt.RobotsData
}

// Manager fetches robots.txt files, memoizing them in memory and revalidating
// against an optional on-disk HTTP cache.
type Manager struct {
    HTTPClient        *http.Client
    Cache             *cache.HTTPCache
    UserAgent         string
    EntryExpiry       time.Duration
    AllowPrivateHosts bool

    mu  sync.Mutex
    mem map[string]memEntry
    now func() time.Time
}

type memEntry struct {
    rules  Rules
    expiry time.Time
}

// URLFor returns the robots.txt location for the site serving pageURL.
func URLFor(pageURL string) (string, error) {
    u, err := url.Parse(pageURL)
    if err != nil {
        return "", fmt.Errorf("parse url: %w", err)
    }
    if !isHTTPScheme(u) || u.Host == "" {
        return "", fmt.Errorf("unsupported url: %q", pageURL)
    }
    return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/robots.txt"}).String(), nil
}

// maxRobotsBytes caps the robots.txt body; anything past it is ignored.
const maxRobotsBytes = 512 << 10

// Get returns the parsed rules at robotsURL.
func (m *Manager) Get(ctx context.Context, robotsURL string) (Rules, Source, error) {
    m.mu.Lock()
    if m.now == nil {
        m.now = time.Now
    }
    if m.mem == nil {
        m.mem = make(map[string]memEntry)
    }
    m.mu.Unlock()

    u, err := url.Parse(robotsURL)
    if err != nil {
        return Rules{}, SourceNetwork, fmt.Errorf("parse url: %w", err)
    }
    if !isHTTPScheme(u) {
        return Rules{}, SourceNetwork, fmt.Errorf("unsupported url scheme: %q", robotsURL)
    }
    if host := u.Hostname(); !m.AllowPrivateHosts && isLocalOrPrivateHost(host) {
        return Rules{}, SourceNetwork, fmt.Errorf("private host not allowed: %s", host)
    }

    m.mu.Lock()
    if ent, ok := m.mem[robotsURL]; ok && m.now().Before(ent.expiry) {
        m.mu.Unlock()
        return ent.rules, SourceMemory, nil
    }
    m.mu.Unlock()

    var etag, lastMod string
    if m.Cache != nil {
        if meta, err := m.Cache.LoadMeta(ctx, robotsURL); err == nil && meta != nil {
            etag = meta.ETag
            lastMod = meta.LastModified
        }
    }

    req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
    if err != nil {
        return Rules{}, SourceNetwork, fmt.Errorf("new request: %w", err)
    }
    if m.UserAgent != "" {
        req.Header.Set("User-Agent", m.UserAgent)
    }
    if etag != "" {
        req.Header.Set("If-None-Match", etag)
    }
    if lastMod != "" {
        req.Header.Set("If-Modified-Since", lastMod)
    }
    client := m.HTTPClient
    if client == nil {
        client = &http.Client{Timeout: 10 * time.Second}
    }
    resp, err := client.Do(req)
    if err != nil {
        return Rules{}, SourceNetwork, err
    }
    defer resp.Body.Close()

    if resp.StatusCode == http.StatusNotModified && m.Cache != nil {
        body, err := m.Cache.LoadBody(ctx, robotsURL)
        if err != nil {
            return Rules{}, SourceCache304, fmt.Errorf("load cached robots: %w", err)
        }
        rules, err := Parse(string(body))
        if err != nil {
            return Rules{}, SourceCache304, err
        }
        m.storeMem(robotsURL, rules)
        return rules, SourceCache304, nil
    }
    // a server error says nothing about the site's rules
    if resp.StatusCode >= 500 {
        return Rules{}, SourceNetwork, fmt.Errorf("unexpected status: %d", resp.StatusCode)
    }
    data, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBytes))
    if err != nil {
        return Rules{}, SourceNetwork, fmt.Errorf("read robots: %w", err)
    }
    // 4xx means no restrictions
    parsed, err := robotstxt.FromStatusAndBytes(resp.StatusCode, data)
    if err != nil {
        return Rules{}, SourceNetwork, fmt.Errorf("parse robots: %w", err)
    }
    if m.Cache != nil && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
        _ = m.Cache.Save(ctx, robotsURL, "text/plain", resp.Header.Get("ETag"), resp.Header.Get("Last-Modified"), data)
    }
    rules := Rules{data: parsed}
    m.storeMem(robotsURL, rules)
    return rules, SourceNetwork, nil
}

func (m *Manager) storeMem(key string, rules Rules) {
    exp := m.EntryExpiry
    if exp <= 0 {
        exp = 30 * time.Minute
    }
    m.mu.Lock()
    m.mem[key] = memEntry{rules: rules, expiry: m.now().Add(exp)}
    m.mu.Unlock()
}

// Summary is the robots.txt verdict for one page.
type Summary struct {
    RobotsURL  string
    Allowed    bool
    CrawlDelay *time.Duration
    Sitemaps   []string
}

// Check fetches the robots.txt governing pageURL and evaluates it for the
// manager's user agent.
func (m *Manager) Check(ctx context.Context, pageURL string) (Summary, error) {
    robotsURL, err := URLFor(pageURL)
    if err != nil {
        return Summary{}, err
    }
    rules, src, err := m.Get(ctx, robotsURL)
    if err != nil {
        return Summary{RobotsURL: robotsURL}, err
    }
    log.Debug().Str("robots", robotsURL).Str("source", src.String()).Msg("robots.txt loaded")
    path := "/"
    if u, err := url.Parse(pageURL); err == nil && u.RequestURI() != "" {
        path = u.RequestURI()
    }
    ua := m.UserAgent
    if ua == "" {
        ua = "*"
    }
    return Summary{
        RobotsURL:  robotsURL,
        Allowed:    rules.IsAllowed(ua, path),
        CrawlDelay: rules.CrawlDelayFor(ua),
        Sitemaps:   rules.Sitemaps(),
    }, nil
}

// Parse reads robots.txt text into rules.
func Parse(text string) (Rules, error) {
    data, err := robotstxt.FromString(text)
    if err != nil {
        return Rules{}, fmt.Errorf("parse robots: %w", err)
    }
    return Rules{data: data}, nil
}

// IsAllowed evaluates whether path, which may include a query string, may be
// fetched by userAgent. The longest matching rule of the best matching
// User-agent group decides; no match means allow.
func (r Rules) IsAllowed(userAgent string, path string) bool {
    if r.data == nil {
        return true
    }
    return r.data.TestAgent(path, userAgent)
}

// CrawlDelayFor returns the crawl delay of the best-matching group, or nil.
func (r Rules) CrawlDelayFor(userAgent string) *time.Duration {
    if r.data == nil {
        return nil
    }
    g := r.data.FindGroup(userAgent)
    if g == nil || g.CrawlDelay <= 0 {
        return nil
    }
    d := g.CrawlDelay
    return &d
}

// Sitemaps lists the Sitemap: directives in file order.
func (r Rules) Sitemaps() []string {
    if r.data == nil {
        return nil
    }
    return r.data.Sitemaps
}

func isHTTPScheme(u *url.URL) bool {
    if u == nil {
        return false
    }
    scheme := strings.ToLower(u.Scheme)
    return scheme == "http" || scheme == "https"
}

func isLocalOrPrivateHost(host string) bool {
    h := strings.ToLower(strings.TrimSpace(host))
    if h == "localhost" || h == "localhost.localdomain" || h == "::1" {
        return true
    }
    if ip := net.ParseIP(h); ip != nil {
        return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
    }
    return false
}
