// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Leads     LeadsConfig     `yaml:"leads" mapstructure:"leads"`
	Export    ExportConfig    `yaml:"export" mapstructure:"export"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// AnthropicConfig holds settings for the AI enrichment calls. MaxTokens and
// Temperature bound cost, not correctness.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
}

// ScoringWeights configures the lead-score contribution of each field. The
// Engagement weight applies when either child age or lead type is populated.
type ScoringWeights struct {
	PhoneNumber int `yaml:"phone_number" mapstructure:"phone_number"`
	Email       int `yaml:"email" mapstructure:"email"`
	City        int `yaml:"city" mapstructure:"city"`
	Engagement  int `yaml:"engagement" mapstructure:"engagement"`
}

// PipelineConfig configures the cleaning pipeline.
type PipelineConfig struct {
	// SheetPriority ranks source sheets for duplicate resolution; keys match
	// as case-insensitive substrings of the sheet name, lower rank wins.
	SheetPriority map[string]int `yaml:"sheet_priority" mapstructure:"sheet_priority"`
	Scoring       ScoringWeights `yaml:"scoring" mapstructure:"scoring"`
}

// LeadsConfig holds the lead-management vocabulary consumed by the status and
// follow-up glue around the pipeline.
type LeadsConfig struct {
	// Statuses is the allowed status vocabulary, in pipeline order.
	Statuses []string `yaml:"statuses" mapstructure:"statuses"`
	// FollowUpDays maps a status to the number of days until the next
	// follow-up is due.
	FollowUpDays map[string]int `yaml:"follow_up_days" mapstructure:"follow_up_days"`
}

// ExportConfig configures file export.
type ExportConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// defaultStatuses is the library sales pipeline, from first touch to
// membership or loss.
func defaultStatuses() []string {
	return []string{
		"New Lead",
		"Initial Contact",
		"Follow Up 1",
		"Follow Up 2",
		"Follow Up 3",
		"Interested",
		"Trial Membership",
		"Proposal Sent",
		"Negotiation",
		"Ready to Join",
		"Member",
		"Lost - No Response",
		"Lost - Not Interested",
		"Lost - Price",
		"Lost - Location",
		"Re-engage Later",
	}
}

func defaultFollowUpDays() map[string]int {
	return map[string]int{
		"New Lead":              2,
		"Initial Contact":       3,
		"Follow Up 1":           5,
		"Follow Up 2":           7,
		"Follow Up 3":           10,
		"Interested":            3,
		"Trial Membership":      2,
		"Proposal Sent":         3,
		"Negotiation":           2,
		"Ready to Join":         1,
		"Member":                30,
		"Lost - No Response":    14,
		"Lost - Not Interested": 30,
		"Lost - Price":          21,
		"Lost - Location":       45,
		"Re-engage Later":       60,
	}
}

func defaultSheetPriority() map[string]int {
	return map[string]int{
		"Main":      1,
		"Primary":   1,
		"Leads":     2,
		"Contacts":  3,
		"Processed": 4,
		"Suspended": 5,
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leads.db")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 300)
	v.SetDefault("anthropic.temperature", 0.3)
	v.SetDefault("anthropic.timeout_secs", 30)
	v.SetDefault("anthropic.rate_per_sec", 2.0)
	v.SetDefault("pipeline.sheet_priority", defaultSheetPriority())
	v.SetDefault("pipeline.scoring.phone_number", 40)
	v.SetDefault("pipeline.scoring.email", 35)
	v.SetDefault("pipeline.scoring.city", 15)
	v.SetDefault("pipeline.scoring.engagement", 10)
	v.SetDefault("leads.statuses", defaultStatuses())
	v.SetDefault("leads.follow_up_days", defaultFollowUpDays())
	v.SetDefault("export.dir", "exports")
	v.SetDefault("export.prefix", "bumuk_leads")
	v.SetDefault("export.format", "xlsx")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
