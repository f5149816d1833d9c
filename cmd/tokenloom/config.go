package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/alaa-eddine/tokenloom"
)

// cliConfig is the CLI's own configuration surface, layered env > config
// file > defaults, the same three-tier approach glow's config_cmd.go
// and main.go use (minus the TUI-pager-specific keys that don't apply here).
type cliConfig struct {
	EmitUnit     string        `mapstructure:"emit_unit" env:"TOKENLOOM_EMIT_UNIT"`
	Tags         []string      `mapstructure:"tags" env:"TOKENLOOM_TAGS" envSeparator:","`
	BufferLength int           `mapstructure:"buffer_length" env:"TOKENLOOM_BUFFER_LENGTH"`
	EmitDelay    time.Duration `mapstructure:"emit_delay" env:"TOKENLOOM_EMIT_DELAY"`
	Highlight    bool          `mapstructure:"highlight" env:"TOKENLOOM_HIGHLIGHT"`
	CopyOnFlush  bool          `mapstructure:"copy_on_flush" env:"TOKENLOOM_COPY_ON_FLUSH"`
	LogFile      bool          `mapstructure:"log_file" env:"TOKENLOOM_LOG_FILE"`
}

func defaultCLIConfig() cliConfig {
	return cliConfig{
		EmitUnit:     "token",
		BufferLength: tokenloom.DefaultBufferLength,
	}
}

// loadCLIConfig binds viper to a config file (if cfgFile is non-empty, "~"
// expanded via go-homedir), then environment variables via caarlos0/env as
// a final overlay: any variable that is set replaces the file's value for
// that field — viper's own Env
// binding only covers single keys by explicit name, so the env overlay
// mirrors glow's use of a dedicated env-parsing pass for its Config struct.
func loadCLIConfig(cfgFile string) (cliConfig, error) {
	cfg := defaultCLIConfig()

	if cfgFile != "" {
		expanded, err := homedir.Expand(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("tokenloom: expand config path: %w", err)
		}
		v := viper.New()
		v.SetConfigFile(expanded)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("tokenloom: read config file: %w", err)
		}
		if err := v.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("tokenloom: parse config file: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("tokenloom: parse env overrides: %w", err)
	}

	return cfg, nil
}

// toParserConfig translates the CLI-facing config into a tokenloom.Config.
func (c cliConfig) toParserConfig() (tokenloom.Config, error) {
	pc := tokenloom.DefaultConfig()
	pc.Tags = tokenloom.WithTags(c.Tags...)
	if c.BufferLength > 0 {
		pc.BufferLength = c.BufferLength
	}
	pc.EmitDelay = c.EmitDelay

	switch c.EmitUnit {
	case "", "token":
		pc.EmitUnit = tokenloom.UnitToken
	case "word":
		pc.EmitUnit = tokenloom.UnitWord
	case "grapheme":
		pc.EmitUnit = tokenloom.UnitGrapheme
	default:
		return pc, fmt.Errorf("tokenloom: unknown emit unit %q (want token, word, or grapheme)", c.EmitUnit)
	}

	if err := pc.Validate(); err != nil {
		return pc, err
	}
	return pc, nil
}
