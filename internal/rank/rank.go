package rank

import (
    "fmt"
    "math"
    "regexp"
    "sort"

    "golang.org/x/text/cases"
    "golang.org/x/text/language"
)

// DefaultTopN is the number of terms reported by the relevance ranking.
const DefaultTopN = 10

// TermScore pairs a vocabulary term with its normalized relevance weight.
type TermScore struct {
    Term   string
    Weight float64
}

// tokenRe matches runs of at least two word characters.
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]{2,}`)

// Tokenize lower-cases text and splits it into word tokens, dropping stop words.
func Tokenize(text string) []string {
    raw := tokenRe.FindAllString(cases.Lower(language.Und).String(text), -1)
    out := make([]string, 0, len(raw))
    for _, tok := range raw {
        if IsStopWord(tok) {
            continue
        }
        out = append(out, tok)
    }
    return out
}

// Rank scores every distinct term of a single document with TF-IDF and returns
// the top n terms by descending weight. With a one-document corpus the smoothed
// IDF is ln(2/2)+1 = 1, so the weights are L2-normalized term counts.
// Ties keep alphabetical vocabulary order. Empty input yields an empty slice.
func Rank(text string, n int) []TermScore {
    if n <= 0 {
        n = DefaultTopN
    }
    counts := make(map[string]int)
    for _, tok := range Tokenize(text) {
        counts[tok]++
    }
    if len(counts) == 0 {
        return []TermScore{}
    }

    vocab := make([]string, 0, len(counts))
    for term := range counts {
        vocab = append(vocab, term)
    }
    sort.Strings(vocab)

    const docs = 1
    var sumSquares float64
    scores := make([]TermScore, len(vocab))
    for i, term := range vocab {
        idf := math.Log(float64(1+docs)/float64(1+1)) + 1
        w := float64(counts[term]) * idf
        sumSquares += w * w
        scores[i] = TermScore{Term: term, Weight: w}
    }
    norm := math.Sqrt(sumSquares)
    for i := range scores {
        scores[i].Weight /= norm
    }

    sort.SliceStable(scores, func(i, j int) bool { return scores[i].Weight > scores[j].Weight })
    if len(scores) > n {
        scores = scores[:n]
    }
    return scores
}

// FormatPercent renders a weight as a percentage with two decimals, e.g. "12.34%".
func FormatPercent(w float64) string {
    return fmt.Sprintf("%.2f%%", w*100)
}

// Lines renders scores as "term: 12.34%" entries.
func Lines(scores []TermScore) []string {
    out := make([]string, 0, len(scores))
    for _, s := range scores {
        out = append(out, s.Term+": "+FormatPercent(s.Weight))
    }
    return out
}
