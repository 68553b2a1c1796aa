// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the process-wide completion settings. A Config is
// built once per invocation and passed explicitly to the client and the
// command handlers.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/bartekus/intellidb/internal/faults"
)

const (
	DefaultEndpoint         = "https://api.openai.com/v1/chat/completions"
	DefaultModel            = "gpt-4o-mini"
	DefaultTemperature      = 0.7
	DefaultFrequencyPenalty = 0.0
	DefaultTimeout          = 90 * time.Second

	// DefaultFileName is looked up in the project root when no path is given.
	DefaultFileName = "intellidb.yaml"

	EnvConfigPath = "INTELLIDB_CONFIG"
	EnvAPIKey     = "INTELLIDB_OPENAI_API_KEY"
	EnvOpenAIKey  = "OPENAI_API_KEY"
	EnvModel      = "INTELLIDB_MODEL"
)

// Config holds the completion settings. APIKey is deliberately not validated
// here: its absence is reported by the completion client at call time.
type Config struct {
	APIKey           string        `yaml:"openAiApiKey"`
	Model            string        `yaml:"model" validate:"required"`
	Temperature      float64       `yaml:"temperature" validate:"gte=0,lte=2"`
	FrequencyPenalty float64       `yaml:"frequency_penalty" validate:"gte=-2,lte=2"`
	MaxTokens        int           `yaml:"max_tokens" validate:"gte=0"`
	Endpoint         string        `yaml:"endpoint" validate:"required,url"`
	Timeout          time.Duration `yaml:"timeout" validate:"gt=0"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Model:            DefaultModel,
		Temperature:      DefaultTemperature,
		FrequencyPenalty: DefaultFrequencyPenalty,
		Endpoint:         DefaultEndpoint,
		Timeout:          DefaultTimeout,
	}
}

// LogValue keeps the API key out of logs.
func (c Config) LogValue() slog.Value {
	key := "unset"
	if c.APIKey != "" {
		key = "set"
	}
	return slog.GroupValue(
		slog.String("model", c.Model),
		slog.Float64("temperature", c.Temperature),
		slog.Float64("frequency_penalty", c.FrequencyPenalty),
		slog.Int("max_tokens", c.MaxTokens),
		slog.String("endpoint", c.Endpoint),
		slog.Duration("timeout", c.Timeout),
		slog.String("api_key", key),
	)
}

// Source describes where Load reads from.
type Source struct {
	// Path to a YAML file. Empty means defaults and environment only.
	Path string
	// Optional tolerates a missing file at Path.
	Optional bool
	// Getenv resolves environment overrides; nil uses os.Getenv.
	Getenv func(string) string
}

// Load applies, in order: defaults, the YAML file, environment overrides.
// The result is validated before it is returned.
func Load(src Source) (Config, error) {
	cfg := Default()

	if src.Path != "" {
		data, err := os.ReadFile(src.Path) //nolint:gosec // operator-supplied config path
		switch {
		case err == nil:
			if err := decode(data, &cfg); err != nil {
				return Config{}, faults.Wrap(faults.KindConfiguration, "config.Load",
					fmt.Sprintf("parsing %s", src.Path), err)
			}
		case errors.Is(err, os.ErrNotExist) && src.Optional:
			// defaults stand
		default:
			return Config{}, faults.Wrap(faults.KindConfiguration, "config.Load",
				"reading config file", err)
		}
	}

	getenv := src.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	applyEnv(&cfg, getenv)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAPIKey)); v != "" {
		cfg.APIKey = v
	} else if v := strings.TrimSpace(getenv(EnvOpenAIKey)); v != "" && cfg.APIKey == "" {
		cfg.APIKey = v
	}
	if v := strings.TrimSpace(getenv(EnvModel)); v != "" {
		cfg.Model = v
	}
}

var validate = validator.New()

// Validate checks field ranges and required settings.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
		return faults.New(faults.KindConfiguration, "config.Validate",
			"invalid configuration: "+strings.Join(msgs, ", "))
	}
	return faults.Wrap(faults.KindConfiguration, "config.Validate", "validating configuration", err)
}
