package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

// ruleTable maps keyword cues to claim types for the degraded extraction
// path. Checked in order; first match per sentence wins.
var ruleTable = []struct {
	keywords []string
	claimTyp model.ClaimType
}{
	{[]string{"sec ", "cftc", "regulator", "lawsuit", "subpoena", "charged", "fined", "banned"}, model.ClaimTypeRegulatoryAction},
	{[]string{"exploit", "hack", "drained", "stolen", "breach", "rug pull", "vulnerability"}, model.ClaimTypeExploitOrHack},
	{[]string{"will reach", "price target", "to the moon", "predict", "forecast", "will hit"}, model.ClaimTypePricePrediction},
	{[]string{"partnership", "partnered with", "collaboration with", "teaming up"}, model.ClaimTypePartnership},
	{[]string{"listing", "listed on", "delisted", "will list"}, model.ClaimTypeListing},
	{[]string{"on-chain", "onchain", "wallet moved", "whale transfer", "transferred"}, model.ClaimTypeOnchainActivity},
	{[]string{"raised", "funding round", "series a", "series b", "seed round", "valuation"}, model.ClaimTypeFundraising},
}

var tickerPattern = regexp.MustCompile(`\$([A-Z]{2,10})\b`)

// ruleExtract is the rule-based degraded mode: keyword-cued sentence
// scanning over the normalized item text. It always produces at least one
// rumor-typed claim for non-empty content so every ingested item leaves a
// traceable claim record.
func ruleExtract(item model.Item) []claimCandidate {
	text := NormalizeText(item.RawText)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	assets := extractTickers(item.Title + " " + text)
	sentences := splitSentences(text)

	var out []claimCandidate
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, rule := range ruleTable {
			matched := ""
			for _, kw := range rule.keywords {
				if strings.Contains(lower, kw) {
					matched = kw
					break
				}
			}
			if matched == "" {
				continue
			}
			out = append(out, claimCandidate{
				Text:           strings.TrimSpace(sentence),
				Type:           rule.claimTyp,
				Assets:         assets,
				AssertedAt:     item.PublishedAt,
				ResolutionType: model.ResolutionIndefinite,
				Falsifiability: 0.5,
				Confidence:     0.3,
				Notes:          "keyword:" + matched,
			})
			break
		}
	}

	if len(out) == 0 {
		// No typed claim matched: emit a generic low-confidence rumor
		// record rather than silently dropping the item.
		summary := text
		if len(summary) > 280 {
			summary = summary[:280]
		}
		out = append(out, claimCandidate{
			Text:           strings.TrimSpace(summary),
			Type:           model.ClaimTypeRumor,
			Assets:         assets,
			AssertedAt:     item.PublishedAt,
			ResolutionType: model.ResolutionIndefinite,
			Falsifiability: 0.1,
			Confidence:     0.1,
			Notes:          "fallback:untyped",
		})
	}
	return out
}

func extractTickers(text string) []string {
	matches := tickerPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var out []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// NormalizeText strips HTML markup from ingested raw text, keeping only
// visible content. Plain text passes through unchanged.
func NormalizeText(raw string) string {
	if !strings.Contains(raw, "<") {
		return raw
	}

	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return raw
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(buf.String())
}

// splitSentences is a simple terminator-based splitter; enough for
// keyword cueing, not linguistics.
func splitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder
	for i, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(text) || text[i+1] == ' ' || text[i+1] == '\t' {
				flushSentence(&current, &sentences)
			}
		}
	}
	flushSentence(&current, &sentences)
	return sentences
}

func flushSentence(current *strings.Builder, sentences *[]string) {
	sentence := strings.TrimSpace(current.String())
	if len(sentence) >= 20 && len(sentence) <= 500 {
		*sentences = append(*sentences, sentence)
	}
	current.Reset()
}
