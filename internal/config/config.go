// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Engine    EngineConfig    `mapstructure:"engine" yaml:"engine"`
	LLM       LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Directory DirectoryConfig `mapstructure:"directory" yaml:"directory"`
	Approval  ApprovalConfig  `mapstructure:"approval" yaml:"approval"`
	Documents DocumentsConfig `mapstructure:"documents" yaml:"documents"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// DatabaseConfig holds the mission archive connection details. An empty URL
// disables archiving entirely; the pipeline itself never touches the store.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// EngineConfig tunes the mission runner.
type EngineConfig struct {
	// MaxConcurrentMissions bounds how many missions the service executes at
	// once. Each mission's pipeline is still strictly sequential internally.
	MaxConcurrentMissions int           `mapstructure:"max_concurrent_missions" yaml:"max_concurrent_missions"`
	StageTimeout          time.Duration `mapstructure:"stage_timeout" yaml:"stage_timeout"`
}

// LLMConfig configures the optional text-generation enhancement. A missing
// API key disables it; every stage then takes its deterministic path.
type LLMConfig struct {
	Provider   string        `mapstructure:"provider" yaml:"provider"`
	Model      string        `mapstructure:"model" yaml:"model"`
	APIKey     string        `mapstructure:"api_key" yaml:"-"`
	APITimeout time.Duration `mapstructure:"api_timeout" yaml:"api_timeout"`
	// RequestsPerMinute paces outbound generation calls.
	RequestsPerMinute int     `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	Temperature       float32 `mapstructure:"temperature" yaml:"temperature"`
}

// Enabled reports whether the enhancement may be attempted at all.
func (l LLMConfig) Enabled() bool { return l.APIKey != "" }

// DirectoryConfig points at optional YAML overrides for the vendor directory
// and policy set. Empty paths fall back to the built-in seeds.
type DirectoryConfig struct {
	VendorsFile  string `mapstructure:"vendors_file" yaml:"vendors_file"`
	PoliciesFile string `mapstructure:"policies_file" yaml:"policies_file"`
}

// ApprovalConfig holds the approval gate's thresholds.
type ApprovalConfig struct {
	// GeneralThreshold is the safety net: any total above it requires human
	// approval even when no budget policy triggers.
	GeneralThreshold int64 `mapstructure:"general_threshold" yaml:"general_threshold"`
}

// DocumentsConfig carries letterhead details for rendered documents.
type DocumentsConfig struct {
	CompanyName string  `mapstructure:"company_name" yaml:"company_name"`
	ShipTo      string  `mapstructure:"ship_to" yaml:"ship_to"`
	TaxRate     float64 `mapstructure:"tax_rate" yaml:"tax_rate"`
}

var (
	global *Config
	mu     sync.RWMutex
)

// Get returns the process-wide configuration, loading defaults if Set was
// never called.
func Get() *Config {
	mu.RLock()
	if global != nil {
		defer mu.RUnlock()
		return global
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		global = NewDefaultConfig()
	}
	return global
}

// Set installs cfg as the process-wide configuration.
func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	global = cfg
}

// SetDefaults initializes default values for all configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "auraprocure")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Engine --
	v.SetDefault("engine.max_concurrent_missions", 4)
	v.SetDefault("engine.stage_timeout", "2m")

	// -- LLM --
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.api_timeout", "30s")
	v.SetDefault("llm.requests_per_minute", 30)
	v.SetDefault("llm.temperature", 0.3)

	// -- Approval --
	v.SetDefault("approval.general_threshold", 10000)

	// -- Documents --
	v.SetDefault("documents.company_name", "AuraProcure Corp")
	v.SetDefault("documents.ship_to", "Corporate HQ\n123 Enterprise Blvd\nSan Francisco, CA 94105")
	v.SetDefault("documents.tax_rate", 0.08)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Sensitive values come from the environment, never the config file.
	v.BindEnv("llm.api_key", "GEMINI_API_KEY")
	v.BindEnv("database.url", "AURAPROCURE_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// NewDefaultConfig creates a configuration struct populated with defaults.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Cannot happen with the static defaults above.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Engine.MaxConcurrentMissions <= 0 {
		return fmt.Errorf("engine.max_concurrent_missions must be a positive integer")
	}
	if c.Approval.GeneralThreshold <= 0 {
		return fmt.Errorf("approval.general_threshold must be a positive amount")
	}
	if c.Documents.TaxRate < 0 || c.Documents.TaxRate >= 1 {
		return fmt.Errorf("documents.tax_rate must be in [0, 1)")
	}
	if c.LLM.Enabled() && c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required when an API key is configured")
	}
	return nil
}
