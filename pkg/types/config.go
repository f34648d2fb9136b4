package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchProvider selects the search surface queried by the executor.
type SearchProvider string

const (
	// ProviderWalmart queries the catalog-specific Walmart engine and
	// supports per-item detail fetches.
	ProviderWalmart SearchProvider = "walmart"

	// ProviderWeb queries generic web search with shopping sub-results.
	ProviderWeb SearchProvider = "web"
)

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	Provider SearchProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// APIKey is the search provider credential. Never logged.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// ResultCount is the fixed per-query result count sent to the provider (default 20).
	ResultCount int `json:"result_count" yaml:"result_count" mapstructure:"result_count"`

	// InterCallDelay is the minimum spacing between provider calls (default 300ms).
	InterCallDelay time.Duration `json:"inter_call_delay" yaml:"inter_call_delay" mapstructure:"inter_call_delay"`

	// Concurrency caps in-flight provider calls (default 2).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`

	// MaxRetries is the retry budget for throttled responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// GenAIProvider identifies the generative text backend.
type GenAIProvider string

const (
	GenAIGemini GenAIProvider = "gemini"
	GenAIOpenAI GenAIProvider = "openai"
	GenAIOllama GenAIProvider = "ollama"
)

// AIConfig holds settings for stages that call a generative text service.
type AIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	Provider GenAIProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Model is the model identifier (e.g. "gemini-1.5-flash").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API. Ollama ignores it.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	Temperature float64 `json:"temperature" yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// MaxRetries is the number of retry attempts for failed API calls (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// PlanStrategy selects how many planned queries survive the budget cap.
type PlanStrategy string

const (
	StrategyCatalog PlanStrategy = "catalog"
	StrategyWeb     PlanStrategy = "web"
)

// ResearchConfig holds pipeline-wide limits.
type ResearchConfig struct {
	// Strategy defaults to the one matching the search provider.
	Strategy PlanStrategy `json:"strategy,omitempty" yaml:"strategy,omitempty" mapstructure:"strategy"`

	// ExpectedResults is the planning constant stored on each plan (default 20).
	ExpectedResults int `json:"expected_results" yaml:"expected_results" mapstructure:"expected_results"`

	// FetchDetails enables per-item detail fetches when the provider supports them.
	FetchDetails bool `json:"fetch_details" yaml:"fetch_details" mapstructure:"fetch_details"`

	// DetailConcurrency caps in-flight detail fetches (default 2).
	DetailConcurrency int `json:"detail_concurrency" yaml:"detail_concurrency" mapstructure:"detail_concurrency"`

	// MaxReviewsPerProduct caps reviews analyzed per product (default 10).
	MaxReviewsPerProduct int `json:"max_reviews_per_product" yaml:"max_reviews_per_product" mapstructure:"max_reviews_per_product"`

	// PromptCharLimit truncates text sent for sentiment scoring (default 500).
	PromptCharLimit int `json:"prompt_char_limit" yaml:"prompt_char_limit" mapstructure:"prompt_char_limit"`

	// ReportTopN is how many products the report prompt embeds (default 5).
	ReportTopN int `json:"report_top_n" yaml:"report_top_n" mapstructure:"report_top_n"`

	// Timeout bounds a whole research run. Zero means no deadline.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// ScoringPolicy selects the ranking weight scheme.
type ScoringPolicy string

const (
	PolicyBasic    ScoringPolicy = "basic"
	PolicyEnhanced ScoringPolicy = "enhanced"

	// PolicyAuto picks enhanced when review-count, availability, or
	// verification data exists, basic otherwise.
	PolicyAuto ScoringPolicy = "auto"
)

// RankingConfig holds settings for the ranking stage.
type RankingConfig struct {
	Policy ScoringPolicy `json:"policy" yaml:"policy" mapstructure:"policy"`
}

// CacheBackend selects the provider response cache.
type CacheBackend string

const (
	CacheNone   CacheBackend = "none"
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
)

// CacheConfig holds settings for the search response cache.
type CacheConfig struct {
	Backend  CacheBackend  `json:"backend" yaml:"backend" mapstructure:"backend"`
	Addr     string        `json:"addr,omitempty" yaml:"addr,omitempty" mapstructure:"addr"`
	Password string        `json:"-" yaml:"-" mapstructure:"password"`
	DB       int           `json:"db" yaml:"db" mapstructure:"db"`
	Prefix   string        `json:"prefix,omitempty" yaml:"prefix,omitempty" mapstructure:"prefix"`
	TTL      time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// ArchiveConfig holds settings for the research run archive.
type ArchiveConfig struct {
	// Path is the SQLite database file (default "data/research.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json (default console).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all configuration for the assistant core.
type Config struct {
	Search   SearchConfig   `json:"search" yaml:"search" mapstructure:"search"`
	GenAI    AIConfig       `json:"genai" yaml:"genai" mapstructure:"genai"`
	Research ResearchConfig `json:"research" yaml:"research" mapstructure:"research"`
	Ranking  RankingConfig  `json:"ranking" yaml:"ranking" mapstructure:"ranking"`
	Cache    CacheConfig    `json:"cache" yaml:"cache" mapstructure:"cache"`
	Archive  ArchiveConfig  `json:"archive" yaml:"archive" mapstructure:"archive"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when no file or flag overrides it.
func DefaultConfig() Config {
	httpCfg := HTTPConfig{
		Timeout:   30 * time.Second,
		UserAgent: "product-research/0.1",
	}
	return Config{
		Search: SearchConfig{
			HTTPConfig:     httpCfg,
			Provider:       ProviderWalmart,
			ResultCount:    20,
			InterCallDelay: 300 * time.Millisecond,
			Concurrency:    2,
			MaxRetries:     3,
		},
		GenAI: AIConfig{
			HTTPConfig:  httpCfg,
			Provider:    GenAIGemini,
			Model:       "gemini-1.5-flash",
			Temperature: 0.7,
			MaxTokens:   1000,
			MaxRetries:  2,
		},
		Research: ResearchConfig{
			ExpectedResults:      20,
			FetchDetails:         true,
			DetailConcurrency:    2,
			MaxReviewsPerProduct: 10,
			PromptCharLimit:      500,
			ReportTopN:           5,
			Timeout:              2 * time.Minute,
		},
		Ranking: RankingConfig{Policy: PolicyAuto},
		Cache: CacheConfig{
			Backend: CacheNone,
			Prefix:  "pr:",
			TTL:     15 * time.Minute,
		},
		Archive: ArchiveConfig{Path: "data/research.db"},
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}
