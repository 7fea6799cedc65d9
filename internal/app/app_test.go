package app

import (
    "bytes"
    "context"
    "errors"
    "net/http"
    "net/http/httptest"
    "os"
    "path/filepath"
    "reflect"
    "strings"
    "testing"
    "time"

    openai "github.com/sashabaranov/go-openai"

    "github.com/hyperifyio/seoaudit/internal/advise"
    "github.com/hyperifyio/seoaudit/internal/extract"
    "github.com/hyperifyio/seoaudit/internal/fetch"
    "github.com/hyperifyio/seoaudit/internal/robots"
)

const samplePage = `<!doctype html>
<html><head>
<title>Running Shoes</title>
<meta name="description" content="Lightweight running shoes">
<meta name="viewport" content="width=device-width, initial-scale=1">
<script type="application/ld+json">{"@type":"Product"}</script>
</head><body>
<h1>Hello</h1><h2>World</h2>
<img src="/a.png" alt="A shoe"><img src="/b.png">
<a href="http://localhost/about">About</a><a href="https://other.example/">Other</a>
<main><p>Running shoes for trail running and road running. Shoes that last.</p></main>
</body></html>`

func newTestApp(t *testing.T, cfg Config) (*App, *bytes.Buffer) {
    t.Helper()
    if cfg.OutDir == "" {
        cfg.OutDir = t.TempDir()
    }
    ApplyDefaults(&cfg)
    a, err := New(context.Background(), cfg)
    if err != nil {
        t.Fatalf("new app: %v", err)
    }
    var stdout bytes.Buffer
    a.Stdout = &stdout
    a.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 45, 0, time.Local) }
    return a, &stdout
}

func pageServer(t *testing.T) *httptest.Server {
    t.Helper()
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        switch r.URL.Path {
        case "/robots.txt":
            _, _ = w.Write([]byte("User-agent: *\nDisallow: /private\nSitemap: https://example.com/sitemap.xml\n"))
        default:
            w.Header().Set("Content-Type", "text/html; charset=utf-8")
            _, _ = w.Write([]byte(samplePage))
        }
    }))
    t.Cleanup(srv.Close)
    return srv
}

func keys(results []extract.Result) []string {
    out := make([]string, len(results))
    for i, r := range results {
        out[i] = r.Key
    }
    return out
}

func TestRun_WritesReportAndPrintsResults(t *testing.T) {
    srv := pageServer(t)
    dir := t.TempDir()
    a, stdout := newTestApp(t, Config{URL: srv.URL + "/", OutDir: dir, Markdown: true})

    out, err := a.Run(context.Background())
    if err != nil {
        t.Fatalf("run: %v", err)
    }
    if filepath.Base(out.PDFPath) != "report_2024-03-01_12-30-45.pdf" {
        t.Fatalf("pdf path=%q", out.PDFPath)
    }
    b, err := os.ReadFile(out.PDFPath)
    if err != nil || !bytes.HasPrefix(b, []byte("%PDF-")) {
        t.Fatalf("expected pdf file, err=%v", err)
    }
    md, err := os.ReadFile(out.MarkdownPath)
    if err != nil {
        t.Fatalf("markdown: %v", err)
    }
    for _, want := range []string{"Meta Tags Analysis", "Load Time Analysis", "TF-IDF Analysis", "Term"} {
        if !strings.Contains(string(md), want) {
            t.Fatalf("markdown missing %q", want)
        }
    }

    printed := stdout.String()
    for _, want := range []string{"Title: Running Shoes", "H1: Hello\nH2: World\n", "No alt text", "Page Load Time:", "running: "} {
        if !strings.Contains(printed, want) {
            t.Fatalf("stdout missing %q:\n%s", want, printed)
        }
    }
}

func TestAnalyze_ReportOrder(t *testing.T) {
    srv := pageServer(t)
    a, _ := newTestApp(t, Config{URL: srv.URL + "/"})
    an, _, err := a.Analyze(context.Background(), srv.URL+"/")
    if err != nil {
        t.Fatalf("analyze: %v", err)
    }
    want := []string{"metadata", "headings", "images", "links", "load_time", "tfidf", "structured_data", "viewport"}
    if got := keys(an.Results); !reflect.DeepEqual(got, want) {
        t.Fatalf("order=%v, want %v", got, want)
    }
    if len(an.Terms) == 0 || len(an.Terms) > 10 || an.Terms[0].Term != "running" {
        t.Fatalf("terms=%v", an.Terms)
    }
}

// Two runs over identical bytes agree on everything except load time.
func TestAnalyze_Idempotent(t *testing.T) {
    srv := pageServer(t)
    a, _ := newTestApp(t, Config{URL: srv.URL + "/"})
    first, _, err := a.Analyze(context.Background(), srv.URL+"/")
    if err != nil {
        t.Fatal(err)
    }
    second, _, err := a.Analyze(context.Background(), srv.URL+"/")
    if err != nil {
        t.Fatal(err)
    }
    if !reflect.DeepEqual(first.Terms, second.Terms) {
        t.Fatalf("terms differ: %v vs %v", first.Terms, second.Terms)
    }
    for i := range first.Results {
        if first.Results[i].Key == "load_time" {
            continue
        }
        if first.Results[i].Text() != second.Results[i].Text() {
            t.Fatalf("%s differs", first.Results[i].Key)
        }
    }
}

func TestRun_RobotsChapter(t *testing.T) {
    srv := pageServer(t)
    a, stdout := newTestApp(t, Config{URL: srv.URL + "/private/page", Robots: true, CacheDir: t.TempDir()})
    if _, err := a.Run(context.Background()); err != nil {
        t.Fatalf("run: %v", err)
    }
    printed := stdout.String()
    if !strings.Contains(printed, "Allowed: false") || !strings.Contains(printed, "https://example.com/sitemap.xml") {
        t.Fatalf("robots summary missing:\n%s", printed)
    }
}

// stall blocks until the client gives up.
func stall(w http.ResponseWriter, r *http.Request) {
    select {
    case <-r.Context().Done():
    case <-time.After(5 * time.Second):
    }
}

func TestAnalyze_RobotsBoundedByTimeout(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.URL.Path == "/robots.txt" {
            stall(w, r)
            return
        }
        w.Header().Set("Content-Type", "text/html; charset=utf-8")
        _, _ = w.Write([]byte(samplePage))
    }))
    defer srv.Close()
    a, _ := newTestApp(t, Config{URL: srv.URL + "/", Robots: true, CacheDir: t.TempDir(), Timeout: 200 * time.Millisecond})

    start := time.Now()
    an, _, err := a.Analyze(context.Background(), srv.URL+"/")
    if err != nil {
        t.Fatalf("analyze: %v", err)
    }
    if d := time.Since(start); d > 3*time.Second {
        t.Fatalf("robots lookup not bounded: took %v", d)
    }
    last := an.Results[len(an.Results)-1]
    if last.Key != "robots" || !strings.HasPrefix(last.Text(), "Robots.txt: unavailable (") {
        t.Fatalf("expected unavailable robots chapter, got %q", last.Text())
    }
}

type stallChat struct{}

func (stallChat) CreateChatCompletion(ctx context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
    select {
    case <-ctx.Done():
        return openai.ChatCompletionResponse{}, ctx.Err()
    case <-time.After(5 * time.Second):
        return openai.ChatCompletionResponse{}, errors.New("not cancelled")
    }
}

func TestRun_AdviceBoundedByTimeout(t *testing.T) {
    srv := pageServer(t)
    a, _ := newTestApp(t, Config{URL: srv.URL + "/", Timeout: 200 * time.Millisecond})
    a.advisor = &advise.Advisor{Client: stallChat{}, Model: "test"}

    start := time.Now()
    if _, err := a.Run(context.Background()); err != nil {
        t.Fatalf("advice failure must not fail the run: %v", err)
    }
    if d := time.Since(start); d > 3*time.Second {
        t.Fatalf("advice call not bounded: took %v", d)
    }
}

func TestRobotsResult_Unavailable(t *testing.T) {
    r := robotsResult(robots.Summary{}, errors.New("unexpected status: 503"))
    if r.Text() != "Robots.txt: unavailable (unexpected status: 503)\n" {
        t.Fatalf("got %q", r.Text())
    }
}

type stubChat struct{ calls int }

func (s *stubChat) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
    s.calls++
    return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "1. Add alt text to every image"}}}}, nil
}

func TestRun_AdviceChapter(t *testing.T) {
    srv := pageServer(t)
    a, _ := newTestApp(t, Config{URL: srv.URL + "/", Markdown: true})
    chat := &stubChat{}
    a.advisor = &advise.Advisor{Client: chat, Model: "test"}
    out, err := a.Run(context.Background())
    if err != nil {
        t.Fatalf("run: %v", err)
    }
    md, _ := os.ReadFile(out.MarkdownPath)
    if chat.calls != 1 || !strings.Contains(string(md), "SEO Recommendations") || !strings.Contains(string(md), "Add alt text to every image") {
        t.Fatalf("advice chapter missing (calls=%d):\n%s", chat.calls, md)
    }
}

func TestRun_NoURL(t *testing.T) {
    a, _ := newTestApp(t, Config{})
    if _, err := a.Run(context.Background()); !errors.Is(err, ErrNoURL) {
        t.Fatalf("expected ErrNoURL, got %v", err)
    }
}

func TestRun_FetchFailureWritesNothing(t *testing.T) {
    srv := httptest.NewServer(http.NotFoundHandler())
    url := srv.URL + "/"
    srv.Close()
    dir := t.TempDir()
    a, _ := newTestApp(t, Config{URL: url, OutDir: dir})
    _, err := a.Run(context.Background())
    if !errors.Is(err, ErrFetch) || !errors.Is(err, fetch.ErrNetwork) {
        t.Fatalf("expected ErrFetch wrapping ErrNetwork, got %v", err)
    }
    entries, _ := os.ReadDir(dir)
    if len(entries) != 0 {
        t.Fatalf("expected no output files, got %d", len(entries))
    }
}

func TestRun_FetchTimeout(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        select {
        case <-r.Context().Done():
        case <-time.After(2 * time.Second):
        }
    }))
    defer srv.Close()
    a, _ := newTestApp(t, Config{URL: srv.URL + "/", Timeout: 50 * time.Millisecond})
    if _, err := a.Run(context.Background()); !errors.Is(err, fetch.ErrTimeout) {
        t.Fatalf("expected ErrTimeout, got %v", err)
    }
}

func TestRun_RenderFailure(t *testing.T) {
    srv := pageServer(t)
    blocker := filepath.Join(t.TempDir(), "file")
    if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
        t.Fatal(err)
    }
    a, _ := newTestApp(t, Config{URL: srv.URL + "/", OutDir: filepath.Join(blocker, "out")})
    if _, err := a.Run(context.Background()); !errors.Is(err, ErrRender) {
        t.Fatalf("expected ErrRender, got %v", err)
    }
}
