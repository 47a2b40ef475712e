package credibility

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/LewisWJackson/confirmd-sub001/internal/model"
)

// ScoreVersion tags snapshots so later recalibrations can coexist with
// historical scores.
const ScoreVersion = "v1"

// Scorer aggregates resolved-claim history into shrinkage-adjusted
// credibility snapshots. Score is a pure function of its inputs: scoring
// the same history twice yields the same numbers, so the nightly batch is
// safely re-runnable.
type Scorer struct {
	policy model.ScoringPolicy
	normal distuv.Normal
}

// NewScorer creates a scorer with the given policy coefficients.
func NewScorer(policy model.ScoringPolicy) *Scorer {
	return &Scorer{
		policy: policy,
		normal: distuv.Normal{Mu: 0, Sigma: 1},
	}
}

// Score computes a new versioned snapshot for a source from its full
// resolved-claim history. Unresolved outcomes carry no accuracy signal
// and are excluded from the track-record sample.
func (s *Scorer) Score(sourceID string, history []model.ClaimOutcome) model.SourceScore {
	var scored, accurate, withPrimary int
	for _, o := range history {
		if o.SourceID != sourceID || o.Outcome == model.OutcomeUnresolved {
			continue
		}
		scored++
		if o.Accurate {
			accurate++
		}
		if o.HadPrimaryEvidence {
			withPrimary++
		}
	}

	trackRecord := s.shrink(float64(accurate), float64(scored), s.policy.PriorWeight)
	discipline := s.shrink(float64(withPrimary), float64(scored), s.policy.PriorWeight/2)
	low, high := s.interval(float64(accurate), float64(scored))

	return model.SourceScore{
		ID:               uuid.NewString(),
		SourceID:         sourceID,
		TrackRecord:      trackRecord * 100,
		MethodDiscipline: discipline * 100,
		SampleSize:       scored,
		CILow:            low * 100,
		CIHigh:           high * 100,
		ScoreVersion:     ScoreVersion,
		ComputedAt:       time.Now().UTC(),
	}
}

// shrink pulls a raw ratio toward the prior mean with k pseudo-
// observations: (successes + k*prior) / (n + k). Small samples land near
// the population mean; large samples converge to the raw ratio.
func (s *Scorer) shrink(successes, n, k float64) float64 {
	prior := s.policy.PriorMean
	if prior <= 0 || prior >= 1 {
		prior = 0.5
	}
	if k < 0 {
		k = 0
	}
	if n+k == 0 {
		return prior
	}
	return (successes + k*prior) / (n + k)
}

// interval is the Wilson score interval on the raw accuracy ratio; it
// widens as the sample shrinks.
func (s *Scorer) interval(successes, n float64) (low, high float64) {
	level := s.policy.ConfidenceLevel
	if level <= 0 || level >= 1 {
		level = 0.95
	}
	z := s.normal.Quantile(1 - (1-level)/2)

	if n == 0 {
		return 0, 1
	}

	p := successes / n
	denom := 1 + z*z/n
	center := (p + z*z/(2*n)) / denom
	margin := z * math.Sqrt(p*(1-p)/n+z*z/(4*n*n)) / denom

	low = math.Max(0, center-margin)
	high = math.Min(1, center+margin)
	return low, high
}
