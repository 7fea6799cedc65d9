package extract

import (
    "strings"

    "github.com/PuerkitoBio/goquery"
    "golang.org/x/net/html"
)

// MainContent returns the readable main text of the page, preferring <main>
// or <article> and falling back to <body>. Navigation, footers, scripts and
// cookie banners are skipped. The result is capped at maxChars runes when
// maxChars > 0.
func MainContent(doc *goquery.Document, maxChars int) string {
    if doc == nil {
        return ""
    }
    var content *html.Node
    for _, tag := range []string{"main", "article", "body"} {
        if sel := doc.Find(tag).First(); sel.Length() > 0 {
            content = sel.Nodes[0]
            break
        }
    }
    if content == nil {
        return ""
    }
    var b strings.Builder
    collectText(&b, content, false)
    text := normalizeWhitespace(b.String())
    if maxChars > 0 {
        if r := []rune(text); len(r) > maxChars {
            text = string(r[:maxChars])
        }
    }
    return text
}

func collectText(b *strings.Builder, n *html.Node, inPre bool) {
    if n.Type == html.ElementNode {
        if isBoilerplateContainer(n) {
            return
        }
        switch strings.ToLower(n.Data) {
        case "script", "style", "noscript", "nav", "footer", "aside", "iframe", "template":
            return
        case "pre", "code":
            inPre = true
        case "br", "hr", "p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "ul", "ol":
            b.WriteString("\n")
        }
    }

    if n.Type == html.TextNode {
        data := n.Data
        if !inPre {
            data = strings.NewReplacer("\t", " ", "\r", " ").Replace(data)
        }
        b.WriteString(data)
    }

    for c := n.FirstChild; c != nil; c = c.NextSibling {
        collectText(b, c, inPre)
    }

    if n.Type == html.ElementNode {
        switch strings.ToLower(n.Data) {
        case "p", "h1", "h2", "h3", "h4", "h5", "h6":
            b.WriteString("\n\n")
        case "li", "pre", "code":
            b.WriteString("\n")
        }
    }
}

// isBoilerplateContainer reports whether the element looks like a cookie/consent banner.
func isBoilerplateContainer(n *html.Node) bool {
    for _, attr := range n.Attr {
        key := strings.ToLower(attr.Key)
        if key != "id" && key != "class" && !strings.HasPrefix(key, "data-") && key != "aria-label" && key != "role" {
            continue
        }
        val := strings.ToLower(attr.Val)
        for _, marker := range []string{"cookie", "consent", "gdpr"} {
            if strings.Contains(val, marker) {
                return true
            }
        }
    }
    return false
}

func normalizeWhitespace(s string) string {
    lines := strings.Split(s, "\n")
    out := make([]string, 0, len(lines))
    for _, line := range lines {
        trimmed := strings.TrimSpace(line)
        if trimmed == "" {
            // keep at most one consecutive blank
            if len(out) > 0 && out[len(out)-1] == "" {
                continue
            }
            out = append(out, "")
            continue
        }
        out = append(out, strings.Join(strings.Fields(trimmed), " "))
    }
    for len(out) > 0 && out[0] == "" {
        out = out[1:]
    }
    for len(out) > 0 && out[len(out)-1] == "" {
        out = out[:len(out)-1]
    }
    return strings.Join(out, "\n")
}
