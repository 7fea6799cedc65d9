package extract

import (
    "fmt"
    "strings"
    "time"

    "github.com/PuerkitoBio/goquery"

    "github.com/hyperifyio/seoaudit/internal/report"
)

// Placeholders used when the page lacks the inspected element.
const (
    NoTitle       = "No title found"
    NoDescription = "No meta description found"
    NoKeywords    = "No meta keywords found"
    NoAltText     = "No alt text"
    NoViewport    = "No viewport meta tag found"
)

// DefaultLocalPrefix marks absolute links that point back at a local site.
const DefaultLocalPrefix = "http://localhost"

// Metadata reports the title, meta description and meta keywords.
func Metadata(doc *goquery.Document) string {
    title := strings.TrimSpace(doc.Find("title").First().Text())
    if title == "" {
        title = NoTitle
    }
    var b strings.Builder
    fmt.Fprintf(&b, "Title: %s\n", title)
    fmt.Fprintf(&b, "Meta Description: %s\n", metaContent(doc, "description", NoDescription))
    fmt.Fprintf(&b, "Meta Keywords: %s\n", metaContent(doc, "keywords", NoKeywords))
    return b.String()
}

// metaContent returns the content of the first <meta name=...> or fallback.
func metaContent(doc *goquery.Document, name string, fallback string) string {
    var content string
    found := false
    doc.Find("meta[name]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
        if !strings.EqualFold(strings.TrimSpace(s.AttrOr("name", "")), name) {
            return true
        }
        content, found = s.Attr("content")
        return false
    })
    if !found || content == "" {
        return fallback
    }
    return content
}

// Headings lists h1..h6 elements in document order.
func Headings(doc *goquery.Document) string {
    var b strings.Builder
    doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
        level := strings.ToUpper(goquery.NodeName(s))
        fmt.Fprintf(&b, "%s: %s\n", level, strings.TrimSpace(s.Text()))
    })
    return b.String()
}

// Images lists every <img> with its src and alt text.
func Images(doc *goquery.Document) string {
    var b strings.Builder
    doc.Find("img").Each(func(_ int, s *goquery.Selection) {
        alt := s.AttrOr("alt", "")
        if alt == "" {
            alt = NoAltText
        }
        fmt.Fprintf(&b, "Image: %s, Alt Text: %s\n", s.AttrOr("src", ""), alt)
    })
    return b.String()
}

// StructuredData lists the JSON-LD blocks of the page.
func StructuredData(doc *goquery.Document) string {
    var b strings.Builder
    doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
        fmt.Fprintf(&b, "Structured Data: %s\n", strings.TrimSpace(s.Text()))
    })
    return b.String()
}

// Viewport reports the viewport meta configuration.
func Viewport(doc *goquery.Document) string {
    return fmt.Sprintf("Viewport: %s\n", metaContent(doc, "viewport", NoViewport))
}

// Links partitions anchors into internal and external hrefs.
type Links struct {
    // LocalPrefix is an absolute URL prefix also treated as internal.
    // Empty means DefaultLocalPrefix.
    LocalPrefix string
}

// Partition returns internal and external hrefs in document order.
func (l Links) Partition(doc *goquery.Document) (internal []string, external []string) {
    prefix := l.LocalPrefix
    if prefix == "" {
        prefix = DefaultLocalPrefix
    }
    internal = []string{}
    external = []string{}
    doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
        href := s.AttrOr("href", "")
        if strings.HasPrefix(href, "/") || strings.HasPrefix(href, prefix) {
            internal = append(internal, href)
            return
        }
        external = append(external, href)
    })
    return internal, external
}

func (l Links) Extract(doc *goquery.Document) Result {
    internal, external := l.Partition(doc)
    text := fmt.Sprintf("Internal Links: [%s]\nExternal Links: [%s]\n",
        strings.Join(internal, ", "), strings.Join(external, ", "))
    return Result{Key: "links", Title: TitleLinks, Body: report.TextBody(text)}
}

// LoadTime reports how long the page took to retrieve, in seconds.
func LoadTime(elapsed time.Duration) Result {
    text := fmt.Sprintf("Page Load Time: %.3f seconds\n", elapsed.Seconds())
    return Result{Key: "load_time", Title: TitleLoadTime, Body: report.TextBody(text)}
}
