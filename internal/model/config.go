package model

import "time"

// Strategy controls how the pipeline reacts when one source fails
// column detection.
const (
	StrategyStrict  = "strict"  // abort the whole run
	StrategyLenient = "lenient" // skip the source, record a warning
)

// Config is the complete engine configuration
type Config struct {
	Columns     ColumnConfig      `yaml:"columns" mapstructure:"columns"`
	Scoring     ScoringConfig     `yaml:"scoring" mapstructure:"scoring"`
	Sources     SourceConfig      `yaml:"sources" mapstructure:"sources"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// ColumnConfig holds the synonym sets used for exact-match header
// detection. Matching is trim+lowercase, never fuzzy: an unrecognized
// header is a detection error, not a guess.
type ColumnConfig struct {
	NameSynonyms  []string `yaml:"name_synonyms" mapstructure:"name_synonyms"`
	EmailSynonyms []string `yaml:"email_synonyms" mapstructure:"email_synonyms"`
	ScoreSynonyms []string `yaml:"score_synonyms" mapstructure:"score_synonyms"`
}

// ScoringConfig holds the bonus/grading thresholds
type ScoringConfig struct {
	// FlatAssignmentThreshold: a record missing at least this many of
	// the configured sources gets the flat assignment score instead of
	// its tiered bonus.
	FlatAssignmentThreshold int     `yaml:"flat_assignment_threshold" mapstructure:"flat_assignment_threshold"`
	FlatAssignmentScore     float64 `yaml:"flat_assignment_score" mapstructure:"flat_assignment_score"`
	PassThreshold           float64 `yaml:"pass_threshold" mapstructure:"pass_threshold"`
}

// SourceConfig bounds and labels the ingested sources
type SourceConfig struct {
	MinRequired int    `yaml:"min_required" mapstructure:"min_required"`
	MaxAllowed  int    `yaml:"max_allowed" mapstructure:"max_allowed"`
	Strategy    string `yaml:"strategy" mapstructure:"strategy"`
	IDPrefix    string `yaml:"id_prefix" mapstructure:"id_prefix"` // e.g. "Test" -> "Test 1", "Test 2"
}

// CacheConfig controls the parsed-source cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	TTL       time.Duration `yaml:"ttl" mapstructure:"ttl"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
}

// ConcurrencyConfig controls parallel source loading. The merge itself
// is always a single ordered pass.
type ConcurrencyConfig struct {
	LoadWorkers int `yaml:"load_workers" mapstructure:"load_workers"`
}

// OutputConfig controls rendering behavior
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Columns: ColumnConfig{
			NameSynonyms: []string{
				"name", "full name", "student", "student name",
				"participant", "participant name", "fullname",
			},
			EmailSynonyms: []string{
				"email", "e-mail", "email address", "mail",
				"user email", "login email",
			},
			ScoreSynonyms: []string{
				"score", "result", "points", "percentage", "percent",
				"total score", "grade", "mark",
			},
		},
		Scoring: ScoringConfig{
			FlatAssignmentThreshold: 4,
			FlatAssignmentScore:     50.0,
			PassThreshold:           50.0,
		},
		Sources: SourceConfig{
			MinRequired: 1,
			MaxAllowed:  12,
			Strategy:    StrategyStrict,
			IDPrefix:    "Test",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			TTL:       24 * time.Hour,
			MemoryTTL: 30 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			LoadWorkers: 4,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
