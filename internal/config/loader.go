package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/pinsight/internal/domain/model"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PINSIGHT_CONFIG is set
//  3. env (prefix PINSIGHT_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PINSIGHT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: PINSIGHT_ADDR, PINSIGHT_LOG_LEVEL, ...
	// Map env keys like PINSIGHT_LOG_LEVEL -> log_level (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PINSIGHT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pinsight_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Basic validation
	if cfg.Addr == "" {
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if err := cfg.Alerts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// policyEventFile mirrors one entry of the policy-timeline YAML file.
type policyEventFile struct {
	Date        string `koanf:"date"`
	Title       string `koanf:"title"`
	Description string `koanf:"description"`
}

// LoadPolicyTimeline reads a YAML policy-timeline file of the form:
//
//	events:
//	  - date: 2024-10-15
//	    title: Registry Draft Review Period
//	    description: ...
func LoadPolicyTimeline(_ context.Context, path string) ([]model.PolicyEvent, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	var raw struct {
		Events []policyEventFile `koanf:"events"`
	}
	if err := k.UnmarshalWithConf("", &raw, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	events := make([]model.PolicyEvent, 0, len(raw.Events))
	for _, e := range raw.Events {
		date, err := time.Parse("2006-01-02", e.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: policy event date %q: %v", ErrInvalidConfig, e.Date, err)
		}
		if e.Title == "" {
			return nil, fmt.Errorf("%w: policy event missing title", ErrInvalidConfig)
		}
		events = append(events, model.PolicyEvent{
			Date:        date,
			Title:       e.Title,
			Description: e.Description,
		})
	}
	return events, nil
}
