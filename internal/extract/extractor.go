package extract

import (
    "bytes"
    "fmt"
    "strings"

    "github.com/PuerkitoBio/goquery"
    "golang.org/x/net/html"

    "github.com/hyperifyio/seoaudit/internal/report"
)

// Chapter titles, one per analysis concern.
const (
    TitleMetadata       = "Meta Tags Analysis"
    TitleHeadings       = "Headings Analysis"
    TitleImages         = "Images Analysis"
    TitleLinks          = "Links Analysis"
    TitleLoadTime       = "Load Time Analysis"
    TitleTFIDF          = "TF-IDF Analysis"
    TitleStructuredData = "Structured Data Analysis"
    TitleViewport       = "Viewport Analysis"
    TitleRobots         = "Robots.txt Analysis"
    TitleAdvice         = "SEO Recommendations"
)

// Result is the summary produced for one analysis concern.
type Result struct {
    Key   string
    Title string
    Body  report.Body
}

// Text renders the result body as plain text for console output.
func (r Result) Text() string {
    switch b := r.Body.(type) {
    case report.TextBody:
        return string(b)
    case report.ListBody:
        if len(b) == 0 {
            return ""
        }
        return strings.Join(b, "\n") + "\n"
    }
    return ""
}

// Extractor analyzes a parsed document for a single concern.
// Implementations must be deterministic and free of side effects.
type Extractor interface {
    Extract(doc *goquery.Document) Result
}

// Func adapts a text-producing function to the Extractor interface.
type Func struct {
    Key   string
    Title string
    Fn    func(doc *goquery.Document) string
}

func (f Func) Extract(doc *goquery.Document) Result {
    return Result{Key: f.Key, Title: f.Title, Body: report.TextBody(f.Fn(doc))}
}

// Default returns the document extractors in report order. localPrefix is the
// absolute URL prefix treated as internal by the links analysis.
func Default(localPrefix string) []Extractor {
    return []Extractor{
        Func{Key: "metadata", Title: TitleMetadata, Fn: Metadata},
        Func{Key: "headings", Title: TitleHeadings, Fn: Headings},
        Func{Key: "images", Title: TitleImages, Fn: Images},
        Links{LocalPrefix: localPrefix},
        Func{Key: "structured_data", Title: TitleStructuredData, Fn: StructuredData},
        Func{Key: "viewport", Title: TitleViewport, Fn: Viewport},
    }
}

// Parse builds a queryable document from raw HTML.
func Parse(body []byte) (*goquery.Document, error) {
    doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
    if err != nil {
        return nil, fmt.Errorf("parse html: %w", err)
    }
    return doc, nil
}

// blockElements break the text flow; inline elements such as b or span do not.
var blockElements = map[string]bool{
    "address": true, "article": true, "aside": true, "blockquote": true, "br": true,
    "dd": true, "div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
    "figure": true, "footer": true, "form": true, "h1": true, "h2": true, "h3": true,
    "h4": true, "h5": true, "h6": true, "header": true, "hr": true, "li": true,
    "main": true, "nav": true, "ol": true, "p": true, "pre": true, "section": true,
    "table": true, "td": true, "th": true, "title": true, "tr": true, "ul": true,
}

// VisibleText concatenates every text node of the document as written,
// skipping the contents of script, style and template elements. Inline
// markup adds nothing, so Opti<b>mization</b> stays one word; a newline
// marks each block element boundary.
func VisibleText(doc *goquery.Document) string {
    if doc == nil {
        return ""
    }
    var sb strings.Builder
    var walk func(*html.Node)
    walk = func(n *html.Node) {
        block := false
        if n.Type == html.ElementNode {
            name := strings.ToLower(n.Data)
            switch name {
            case "script", "style", "template":
                return
            }
            block = blockElements[name]
        }
        if block {
            sb.WriteByte('\n')
        }
        if n.Type == html.TextNode {
            sb.WriteString(n.Data)
        }
        for c := n.FirstChild; c != nil; c = c.NextSibling {
            walk(c)
        }
        if block {
            sb.WriteByte('\n')
        }
    }
    for _, n := range doc.Nodes {
        walk(n)
    }
    return strings.TrimSpace(sb.String())
}
