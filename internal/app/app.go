package app

import (
    "context"
    "errors"
    "fmt"
    "io"
    "os"
    "strings"
    "time"

    "github.com/PuerkitoBio/goquery"
    "github.com/rs/zerolog/log"

    "github.com/hyperifyio/seoaudit/internal/advise"
    "github.com/hyperifyio/seoaudit/internal/cache"
    "github.com/hyperifyio/seoaudit/internal/extract"
    "github.com/hyperifyio/seoaudit/internal/fetch"
    "github.com/hyperifyio/seoaudit/internal/rank"
    "github.com/hyperifyio/seoaudit/internal/report"
    "github.com/hyperifyio/seoaudit/internal/robots"
)

var (
    // ErrNoURL is returned when no page URL was configured or entered.
    ErrNoURL = errors.New("no URL given")
    // ErrFetch wraps failures to retrieve or parse the page.
    ErrFetch = errors.New("fetch failed")
    // ErrRender wraps failures to render or write the PDF report.
    ErrRender = errors.New("render failed")
)

// adviceContentChars caps the page excerpt sent with the advice prompt.
const adviceContentChars = 4000

type App struct {
    cfg     Config
    fetcher *fetch.Client
    robots  *robots.Manager
    advisor *advise.Advisor

    // Stdout receives each analysis result before the report is written.
    Stdout io.Writer
    now    func() time.Time
}

func New(ctx context.Context, cfg Config) (*App, error) {
    if err := ValidateConfig(cfg); err != nil {
        return nil, err
    }
    client := newHTTPClient(cfg.Timeout)
    a := &App{
        cfg:     cfg,
        fetcher: &fetch.Client{HTTPClient: client, UserAgent: cfg.UserAgent, Timeout: cfg.Timeout},
        Stdout:  os.Stdout,
        now:     time.Now,
    }

    if cfg.CacheDir != "" && (cfg.Robots || cfg.LLMModel != "") {
        if cfg.CacheClear {
            if err := cache.ClearDir(cfg.CacheDir); err != nil {
                log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache clear failed")
            }
        }
        if cfg.CacheMaxAge > 0 {
            if n, err := cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge); err != nil {
                log.Warn().Err(err).Msg("cache purge failed")
            } else if n > 0 {
                log.Debug().Int("removed", n).Msg("purged expired cache entries")
            }
        }
    }

    if cfg.Robots {
        a.robots = &robots.Manager{
            HTTPClient: client,
            UserAgent:  cfg.UserAgent,
            // the audited page may itself be on a private network
            AllowPrivateHosts: true,
        }
        if cfg.CacheDir != "" {
            a.robots.Cache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
        }
    }

    if strings.TrimSpace(cfg.LLMModel) != "" {
        var lc *cache.LLMCache
        if cfg.CacheDir != "" {
            lc = &cache.LLMCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
        }
        a.advisor = advise.NewOpenAI(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, lc)
    }
    return a, nil
}

// Analysis is the outcome of analyzing one page, before rendering.
type Analysis struct {
    Page    fetch.Page
    Results []extract.Result
    Terms   []rank.TermScore
}

// Run fetches the configured page, analyzes it and writes the report.
func (a *App) Run(ctx context.Context) (Output, error) {
    url := strings.TrimSpace(a.cfg.URL)
    if url == "" {
        return Output{}, ErrNoURL
    }
    if err := validatePageURL(url); err != nil {
        return Output{}, err
    }

    an, doc, err := a.Analyze(ctx, url)
    if err != nil {
        return Output{}, err
    }

    for _, r := range an.Results {
        if _, err := io.WriteString(a.Stdout, r.Text()); err != nil {
            log.Debug().Err(err).Msg("stdout write failed")
        }
    }

    results := an.Results
    if a.advisor != nil {
        actx, cancel := a.withTimeout(ctx)
        items, err := a.advisor.Advise(actx, advise.Input{
            URL:     an.Page.URL,
            Results: an.Results,
            Terms:   an.Terms,
            Content: extract.MainContent(doc, adviceContentChars),
        })
        cancel()
        if err != nil {
            log.Warn().Err(err).Str("model", a.cfg.LLMModel).Msg("recommendations skipped")
        } else {
            results = append(results, extract.Result{Key: "advice", Title: extract.TitleAdvice, Body: report.ListBody(items)})
        }
    }

    rep := report.New(report.DefaultTitle, a.now())
    for _, r := range results {
        rep = rep.WithChapter(r.Title, r.Body)
    }
    rep = rep.WithTerms(an.Terms)

    out, err := reportPaths(a.cfg.OutDir, rep, a.cfg.Markdown)
    if err != nil {
        return Output{}, fmt.Errorf("%w: %w", ErrRender, err)
    }
    if err := (report.PDFWriter{}).WriteFile(rep, out.PDFPath); err != nil {
        return Output{}, fmt.Errorf("%w: %w", ErrRender, err)
    }
    log.Info().Str("out", out.PDFPath).Int("chapters", len(rep.Chapters)).Msg("report written")

    if out.MarkdownPath != "" {
        if err := (report.MarkdownWriter{}).WriteFile(rep, out.MarkdownPath); err != nil {
            log.Warn().Err(err).Str("out", out.MarkdownPath).Msg("markdown report skipped")
            out.MarkdownPath = ""
        } else {
            log.Info().Str("out", out.MarkdownPath).Msg("markdown report written")
        }
    }
    return out, nil
}

// Analyze fetches url and runs every analysis in report order. It does not
// print or write anything.
func (a *App) Analyze(ctx context.Context, url string) (Analysis, *goquery.Document, error) {
    log.Info().Str("url", url).Msg("fetching page")
    page, err := a.fetcher.Get(ctx, url)
    if err != nil {
        return Analysis{}, nil, fmt.Errorf("%w: %w", ErrFetch, err)
    }
    ev := log.Info()
    if page.StatusCode < 200 || page.StatusCode > 299 {
        ev = log.Warn()
    }
    ev.Str("url", page.URL).Int("status", page.StatusCode).Dur("elapsed", page.Elapsed).Msg("page fetched")

    doc, err := extract.Parse(page.Body)
    if err != nil {
        return Analysis{}, nil, fmt.Errorf("%w: %w", ErrFetch, err)
    }

    var docResults []extract.Result
    for _, ex := range extract.Default(a.cfg.LocalPrefix) {
        docResults = append(docResults, ex.Extract(doc))
    }
    terms := rank.Rank(extract.VisibleText(doc), rank.DefaultTopN)
    log.Debug().Int("terms", len(terms)).Msg("ranked terms")

    // load time and TF-IDF follow the links chapter
    results := make([]extract.Result, 0, len(docResults)+3)
    for _, r := range docResults {
        results = append(results, r)
        if r.Key == "links" {
            results = append(results,
                extract.LoadTime(page.Elapsed),
                extract.Result{Key: "tfidf", Title: extract.TitleTFIDF, Body: report.ListBody(rank.Lines(terms))},
            )
        }
    }

    if a.robots != nil {
        rctx, cancel := a.withTimeout(ctx)
        sum, err := a.robots.Check(rctx, page.URL)
        cancel()
        if err != nil {
            log.Warn().Err(err).Str("robots", sum.RobotsURL).Msg("robots.txt unavailable")
        }
        results = append(results, robotsResult(sum, err))
    }
    return Analysis{Page: page, Results: results, Terms: terms}, doc, nil
}

// withTimeout bounds one optional network call by Config.Timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
    if a.cfg.Timeout > 0 {
        return context.WithTimeout(ctx, a.cfg.Timeout)
    }
    return context.WithCancel(ctx)
}

func robotsResult(sum robots.Summary, err error) extract.Result {
    var sb strings.Builder
    if err != nil {
        fmt.Fprintf(&sb, "Robots.txt: unavailable (%v)\n", err)
    } else {
        fmt.Fprintf(&sb, "Robots.txt: %s\n", sum.RobotsURL)
        fmt.Fprintf(&sb, "Allowed: %t\n", sum.Allowed)
        delay := "none"
        if sum.CrawlDelay != nil {
            delay = sum.CrawlDelay.String()
        }
        fmt.Fprintf(&sb, "Crawl Delay: %s\n", delay)
        fmt.Fprintf(&sb, "Sitemaps: [%s]\n", strings.Join(sum.Sitemaps, ", "))
    }
    return extract.Result{Key: "robots", Title: extract.TitleRobots, Body: report.TextBody(sb.String())}
}
