package evidence

import (
	"net/url"
	"strings"

	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

// Grader assigns evidence-ladder grades by publisher tier and classifies
// stance by excerpt polarity. The two classifications are independent.
type Grader struct {
	primary    map[string]bool
	secondary  map[string]bool
	aggregator map[string]bool
}

// NewGrader builds a grader from the configured domain tiers.
func NewGrader(cfg model.GradingConfig) *Grader {
	return &Grader{
		primary:    toSet(cfg.PrimaryDomains),
		secondary:  toSet(cfg.SecondaryDomains),
		aggregator: toSet(cfg.AggregatorDomains),
	}
}

func toSet(domains []string) map[string]bool {
	m := make(map[string]bool, len(domains))
	for _, d := range domains {
		m[strings.ToLower(d)] = true
	}
	return m
}

// Grade classifies a hit's publisher onto the A-D ladder.
func (g *Grader) Grade(hit SearchHit) model.Grade {
	host := hostOf(hit.URL)
	if host == "" {
		host = strings.ToLower(hit.Publisher)
	}

	switch {
	case g.matches(g.primary, host):
		return model.GradeA
	case g.matches(g.secondary, host):
		if citesPrimary(hit.Excerpt) {
			return model.GradeB
		}
		return model.GradeC
	case g.matches(g.aggregator, host):
		return model.GradeC
	}

	// Government and on-chain explorer hosts are primary even when not
	// listed explicitly.
	if strings.HasSuffix(host, ".gov") || strings.Contains(host, "scan.") {
		return model.GradeA
	}

	return model.GradeD
}

func (g *Grader) matches(set map[string]bool, host string) bool {
	if set[host] {
		return true
	}
	for domain := range set {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// citesPrimary checks whether a secondary outlet is directly citing a
// primary source, the distinguishing mark of grade B.
func citesPrimary(excerpt string) bool {
	lower := strings.ToLower(excerpt)
	for _, marker := range []string{
		"according to the sec", "court filing", "official statement",
		"press release", "on-chain data", "onchain data", "blockchain data",
		"confirmed by", "official announcement", "regulatory filing",
	} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

var supportMarkers = []string{
	"confirmed", "confirms", "announced", "verified", "official",
	"filing shows", "data shows", "acknowledged", "admits",
}

var contradictMarkers = []string{
	"denied", "denies", "debunked", "false", "refuted", "no evidence",
	"dismissed", "not true", "misleading", "unfounded", "rejects",
}

// Stance classifies the hit's position on the claim: supports,
// contradicts, or a neutral mention.
func (g *Grader) Stance(hit SearchHit) model.Stance {
	lower := strings.ToLower(hit.Excerpt)

	for _, m := range contradictMarkers {
		if strings.Contains(lower, m) {
			return model.StanceContradicts
		}
	}
	for _, m := range supportMarkers {
		if strings.Contains(lower, m) {
			return model.StanceSupports
		}
	}
	return model.StanceMentions
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}
