package model

import "time"

// Config is the full pipeline configuration. Values come from flags,
// CONFIRMD_* env vars, the config file, then these defaults.
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Storage     StorageConfig     `yaml:"storage" mapstructure:"storage"`
	Scoring     ScoringPolicy     `yaml:"scoring" mapstructure:"scoring"`
	Grading     GradingConfig     `yaml:"grading" mapstructure:"grading"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// LLMConfig configures the completion provider.
type LLMConfig struct {
	Provider   string        `yaml:"provider" mapstructure:"provider"` // "openai", "ollama", "" (rule-based only)
	Model      string        `yaml:"model" mapstructure:"model"`
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL    string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens  int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxRetries int           `yaml:"max_retries" mapstructure:"max_retries"`
	HTTPProxy  string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// SearchConfig configures the evidence-search backend.
type SearchConfig struct {
	Backend    string        `yaml:"backend" mapstructure:"backend"` // "http", "static"
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxResults int           `yaml:"max_results" mapstructure:"max_results"`

	// Rate limiting toward the backend.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`

	// Result cache.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// StorageConfig selects the storage engine behind the Store contract.
type StorageConfig struct {
	Engine string `yaml:"engine" mapstructure:"engine"` // "memory", "postgres"
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// ScoringPolicy holds the tunable coefficients for verdict synthesis and
// credibility scoring. These are policy, not structural contract; the
// defaults below are the calibration starting point.
type ScoringPolicy struct {
	// Verdict decision thresholds (fractions of all evidence).
	ContradictionThreshold float64 `yaml:"contradiction_threshold" mapstructure:"contradiction_threshold"`
	SupportThreshold       float64 `yaml:"support_threshold" mapstructure:"support_threshold"`
	PlausibleThreshold     float64 `yaml:"plausible_threshold" mapstructure:"plausible_threshold"`

	// Probability bounds for synthesized verdicts.
	ProbabilityFloor   float64 `yaml:"probability_floor" mapstructure:"probability_floor"`
	ProbabilityCeiling float64 `yaml:"probability_ceiling" mapstructure:"probability_ceiling"`

	// Evidence volume at which strength stops growing with count.
	TargetEvidenceCount int `yaml:"target_evidence_count" mapstructure:"target_evidence_count"`

	// High-confidence cutoff for immediate resolution.
	HighConfidence float64 `yaml:"high_confidence" mapstructure:"high_confidence"`

	// Credibility shrinkage: raw ratios are pulled toward PriorMean with
	// strength PriorWeight (pseudo-observations).
	PriorMean   float64 `yaml:"prior_mean" mapstructure:"prior_mean"`
	PriorWeight float64 `yaml:"prior_weight" mapstructure:"prior_weight"`

	// Confidence level for source-score intervals.
	ConfidenceLevel float64 `yaml:"confidence_level" mapstructure:"confidence_level"`
}

// GradingConfig drives the evidence ladder classification.
type GradingConfig struct {
	PrimaryDomains    []string `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains  []string `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	AggregatorDomains []string `yaml:"aggregator_domains" mapstructure:"aggregator_domains"`
}

// ConcurrencyConfig bounds parallel work.
type ConcurrencyConfig struct {
	Workers      int           `yaml:"workers" mapstructure:"workers"`
	StageTimeout time.Duration `yaml:"stage_timeout" mapstructure:"stage_timeout"`
}

// OutputConfig controls CLI reporting.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:   "",
			Model:      "",
			Timeout:    30 * time.Second,
			MaxTokens:  1500,
			MaxRetries: 3,
		},
		Search: SearchConfig{
			Backend:           "http",
			Timeout:           15 * time.Second,
			MaxResults:        10,
			RequestsPerSecond: 2,
			Burst:             5,
			CacheTTL:          15 * time.Minute,
		},
		Storage: StorageConfig{
			Engine: "memory",
		},
		Scoring: ScoringPolicy{
			ContradictionThreshold: 0.30,
			SupportThreshold:       0.50,
			PlausibleThreshold:     0.30,
			ProbabilityFloor:       0.02,
			ProbabilityCeiling:     0.98,
			TargetEvidenceCount:    4,
			HighConfidence:         0.90,
			PriorMean:              0.50,
			PriorWeight:            20,
			ConfidenceLevel:        0.95,
		},
		Grading: GradingConfig{
			PrimaryDomains: []string{
				"sec.gov", "cftc.gov", "treasury.gov", "justice.gov", "europa.eu",
				"fca.org.uk", "etherscan.io", "solscan.io", "blockchain.com",
			},
			SecondaryDomains: []string{
				"coindesk.com", "theblock.co", "reuters.com", "bloomberg.com",
				"ft.com", "wsj.com", "cointelegraph.com",
			},
			AggregatorDomains: []string{
				"cryptopanic.com", "coinmarketcap.com", "coingecko.com",
			},
		},
		Concurrency: ConcurrencyConfig{
			Workers:      4,
			StageTimeout: 45 * time.Second,
		},
		Output: OutputConfig{},
	}
}
