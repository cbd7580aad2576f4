package model

import "time"

// Config is the complete configuration for a disclose run
type Config struct {
	Table       TableConfig       `yaml:"table" mapstructure:"table"`
	Match       MatchConfig       `yaml:"match" mapstructure:"match"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// TableConfig controls Markdown table recovery
type TableConfig struct {
	// Layout selects how a single-line table is cut into rows:
	// "chunked", "topic-block" or "code-anchor". Empty picks "code-anchor"
	// for requirement tables and "chunked" for any other table.
	Layout string `yaml:"layout" mapstructure:"layout"`

	// Locators is the ordered list of header locators tried on single-line tables
	Locators []string `yaml:"locators" mapstructure:"locators"`

	HeaderKeywords []string `yaml:"header_keywords" mapstructure:"header_keywords"`
	TitleMarkers   []string `yaml:"title_markers" mapstructure:"title_markers"`

	// Width is the number of columns of the requirement dialect
	Width int `yaml:"width" mapstructure:"width"`

	// MaxKeywordLength bounds the length of a cell accepted as a header keyword
	MaxKeywordLength int `yaml:"max_keyword_length" mapstructure:"max_keyword_length"`

	// TopicMinLength: a cell longer than this starts a new topic block
	TopicMinLength int `yaml:"topic_min_length" mapstructure:"topic_min_length"`

	// TopicMetricMaxLength: the topic is only written on rows whose metric is shorter
	TopicMetricMaxLength int `yaml:"topic_metric_max_length" mapstructure:"topic_metric_max_length"`

	CodePattern string `yaml:"code_pattern" mapstructure:"code_pattern"`

	// StopAtProse ends a table block at the first non-table, non-heading line
	StopAtProse bool `yaml:"stop_at_prose" mapstructure:"stop_at_prose"`
}

// MatchConfig controls the correlation matcher
type MatchConfig struct {
	UseModel         bool    `yaml:"use_model" mapstructure:"use_model"`
	Ranker           string  `yaml:"ranker" mapstructure:"ranker"` // "first" or "proximity"
	QuantitativeOnly bool    `yaml:"quantitative_only" mapstructure:"quantitative_only"`
	Temperature      float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens        int     `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// LLMConfig configures the text-generation collaborator
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	HTTPProxy         string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string  `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures caching of collaborator responses
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir     string        `yaml:"dir" mapstructure:"dir"` // empty keeps the cache in memory only
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ConcurrencyConfig bounds parallel requirement matching
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// HTTPConfig is used when a report is fetched from a URL
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	IncludeMethod bool `yaml:"include_method" mapstructure:"include_method"`
	TruncateAt    int  `yaml:"truncate_at" mapstructure:"truncate_at"`
	Color         bool `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Table: TableConfig{
			Layout:               "",
			Locators:             []string{"keyword", "title"},
			HeaderKeywords:       []string{"TOPIC", "METRIC", "CATEGORY", "UNIT", "CODE"},
			TitleMarkers:         []string{"Table", "###"},
			Width:                5,
			MaxKeywordLength:     20,
			TopicMinLength:       20,
			TopicMetricMaxLength: 50,
			CodePattern:          `FN-IN-\d+[a-z]\.\d+`,
		},
		Match: MatchConfig{
			UseModel:         false,
			Ranker:           "first",
			QuantitativeOnly: true,
			Temperature:      0.1,
			MaxTokens:        1000,
		},
		LLM: LLMConfig{
			Provider:          "openai",
			Model:             "gpt-3.5-turbo",
			Timeout:           60,
			RequestsPerSecond: 2,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "disclose/0.1 (+https://github.com/ppiankov/disclose)",
			MaxBodyBytes:  10_000_000,
			RespectRobots: true,
		},
		Output: OutputConfig{
			IncludeMethod: true,
			TruncateAt:    50,
			Color:         true,
		},
	}
}
