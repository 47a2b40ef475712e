package extract

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

// claimWire is the JSON shape the extraction prompt demands. Parsing is
// the single normalization boundary for model output: one schema, snake
// case keys, fail closed on anything unparseable.
type claimWire struct {
	Text           string   `json:"text"`
	Type           string   `json:"type"`
	Assets         []string `json:"assets"`
	AssertedAt     string   `json:"asserted_at"`
	ResolutionType string   `json:"resolution_type"`
	ResolveBy      string   `json:"resolve_by"`
	Falsifiability float64  `json:"falsifiability"`
	Confidence     float64  `json:"confidence"`
	Notes          string   `json:"notes"`
}

type extractionWire struct {
	Claims []claimWire `json:"claims"`
}

// stripFences removes a surrounding markdown code fence, if present.
// Models wrap JSON in ```json ... ``` often enough that this is the
// first thing every parse does.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseClaims decodes raw model output into claim candidates. A parse
// failure returns (nil, false): the caller treats it as "no claims
// extracted", never as a fatal error.
func parseClaims(raw string, fallbackTime time.Time) ([]claimCandidate, bool) {
	cleaned := stripFences(raw)
	if cleaned == "" {
		return nil, false
	}

	var wire extractionWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		// Some models emit a bare array instead of the wrapper object.
		if err2 := json.Unmarshal([]byte(cleaned), &wire.Claims); err2 != nil {
			return nil, false
		}
	}

	var out []claimCandidate
	for _, w := range wire.Claims {
		text := strings.TrimSpace(w.Text)
		if text == "" {
			continue
		}

		c := claimCandidate{
			Text:           text,
			Type:           model.CoerceClaimType(w.Type),
			Assets:         normalizeAssets(w.Assets),
			ResolutionType: model.CoerceResolutionType(w.ResolutionType),
			Falsifiability: model.Clamp01(w.Falsifiability),
			Confidence:     model.Clamp01(w.Confidence),
			Notes:          strings.TrimSpace(w.Notes),
			AssertedAt:     fallbackTime,
		}

		if t, err := time.Parse(time.RFC3339, w.AssertedAt); err == nil {
			c.AssertedAt = t
		}
		if t, err := time.Parse(time.RFC3339, w.ResolveBy); err == nil {
			c.ResolveBy = &t
		}

		// A scheduled claim without a deadline cannot actually be
		// scheduled; treat it as indefinite.
		if c.ResolutionType == model.ResolutionScheduled && c.ResolveBy == nil {
			c.ResolutionType = model.ResolutionIndefinite
		}

		out = append(out, c)
	}
	return out, true
}

func normalizeAssets(assets []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range assets {
		a = strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(a, "$")))
		if a == "" || len(a) > 12 || seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	return out
}
