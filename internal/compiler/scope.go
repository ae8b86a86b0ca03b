package compiler

import (
	"errors"

	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/alarm"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/config"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/definition"
)

var (
	// ErrMissingConfig indicates a scope was resolved without a configuration.
	ErrMissingConfig = errors.New("missing config argument")
	// ErrMissingDefinitions indicates a scope was resolved without a registry.
	ErrMissingDefinitions = errors.New("missing definitions argument")
	// ErrUnnamedAlarm indicates an inline alarm without a name, which cannot be keyed.
	ErrUnnamedAlarm = errors.New("inline alarm has no name")
)

// Scope is the fan-out context of an alarm reference.
type Scope string

const (
	ScopeGlobal   Scope = "global"
	ScopeTable    Scope = "table"
	ScopeFunction Scope = "function"
)

// GlobalAlarms resolves the alarms emitted once per build.
func GlobalAlarms(cfg *config.Alerts, reg definition.Registry) ([]alarm.Alarm, error) {
	if err := checkArgs(cfg, reg); err != nil {
		return nil, err
	}
	return alarm.Resolve(cfg.Global, reg)
}

// TableAlarms resolves the table alarms, one per reference and table.
func TableAlarms(cfg *config.Alerts, reg definition.Registry, tables []string) ([]alarm.Alarm, error) {
	if err := checkArgs(cfg, reg); err != nil {
		return nil, err
	}
	return alarm.Resolve(cfg.Table, reg, tables...)
}

// FunctionAlarms resolves the alarms of one function: the configured function
// alarms followed by the function's own alarms, without duplicates.
func FunctionAlarms(cfg *config.Alerts, reg definition.Registry, own []alarm.Reference) ([]alarm.Alarm, error) {
	if err := checkArgs(cfg, reg); err != nil {
		return nil, err
	}
	return alarm.Resolve(alarm.Union(cfg.Function, own), reg)
}

func checkArgs(cfg *config.Alerts, reg definition.Registry) error {
	if cfg == nil {
		return ErrMissingConfig
	}
	if reg == nil {
		return ErrMissingDefinitions
	}
	return nil
}
