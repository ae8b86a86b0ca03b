// Package config holds the alerting configuration tree and the runtime configuration of the macro.
package config

import (
	"fmt"
	"log/slog"

	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/env"
)

// Config is the runtime configuration of the CloudFormation macro, read from the environment.
type Config struct {
	// StackName is the metric namespace of pattern alarms when the request does not carry one.
	StackName string
	// Stage is the fallback stage when neither the macro parameters nor the template provide one.
	Stage string
	// RequireConfig turns a template without alerting configuration into a failure.
	RequireConfig bool
	LogLevel      slog.Level
}

// Load reads the macro configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{
		StackName:     env.Get("ALERTS_STACK_NAME", "", env.ParseString),
		Stage:         env.Get("ALERTS_STAGE", "", env.ParseString),
		RequireConfig: env.Get("ALERTS_REQUIRE_CONFIG", false, env.ParseBool),
	}

	level, err := env.GetRequired("LOG_LEVEL", parseLevel)
	switch {
	case err == nil:
		cfg.LogLevel = level
	case env.IsMissing(err):
		cfg.LogLevel = slog.LevelInfo
	default:
		return nil, err
	}

	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
