// Package compiler drives a single compilation of the alerting configuration into
// CloudFormation resources.
package compiler

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/alarm"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/cfn"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/config"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/definition"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/emitter"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/naming"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/topic"
)

var tracer = otel.Tracer("github.com/AutoScout24/serverless-plugin-aws-alerts/internal/compiler")

// ResourceModel enumerates the infrastructure declared next to the functions.
type ResourceModel interface {
	// TableNames returns the logical ids of the DynamoDB tables in declaration order.
	TableNames() []string
}

// Function is a deployable function as reported by the function model.
type Function struct {
	// Name is the physical function name, used to derive its log group.
	Name string
	// Alarms are the alarms declared on the function itself.
	Alarms []alarm.Reference
}

// FunctionModel enumerates the deployable functions.
type FunctionModel interface {
	// FunctionNames returns the configured function names in declaration order.
	FunctionNames() []string
	// Function returns the declaration of the named function.
	Function(name string) (Function, error)
}

// Naming derives the identifiers the host assigns to the stack and its functions.
type Naming interface {
	StackName() string
	LambdaLogicalID(functionName string) string
	LogGroupLogicalID(functionName string) string
	LogGroupName(physicalName string) string
}

// Host is everything the compiler needs to know about the deployment it runs in.
type Host interface {
	ResourceModel
	FunctionModel
	Naming
}

// Document receives the compiled resources.
type Document interface {
	Merge(res *cfn.Resources) error
}

// Outcome describes how a compilation ended.
type Outcome string

const (
	OutcomeCompiled        Outcome = "compiled"
	OutcomeNoConfiguration Outcome = "skipped: no configuration"
	OutcomeStageSkipped    Outcome = "skipped: stage not enabled"
)

// Result summarises a compilation.
type Result struct {
	Outcome       Outcome
	Stage         string
	Topics        int
	Alarms        int
	MetricFilters int
}

// Skipped reports whether nothing was compiled on purpose.
func (r *Result) Skipped() bool {
	return r.Outcome != OutcomeCompiled
}

func (r *Result) count(res *cfn.Resources) {
	r.Topics += res.CountType(cfn.TypeTopic)
	r.Alarms += res.CountType(cfn.TypeAlarm)
	r.MetricFilters += res.CountType(cfn.TypeMetricFilter)
}

// Compiler compiles alerting configurations for one host.
type Compiler struct {
	host   Host
	logger *slog.Logger
}

// New creates a Compiler for host.
func New(host Host, logger *slog.Logger) *Compiler {
	return &Compiler{
		host:   host,
		logger: logger,
	}
}

// Compile resolves cfg for stage and merges topics, global alarms, table alarms and
// function alarms into doc, in that order. Resources merged before a failing scope
// stay in doc.
func (c *Compiler) Compile(ctx context.Context, cfg *config.Alerts, stage string, doc Document) (*Result, error) {
	ctx, span := tracer.Start(ctx, "compiler.compile")
	defer span.End()
	span.SetAttributes(attribute.String("alerts.stage", stage))

	if cfg == nil {
		c.logger.DebugContext(ctx, "no alerts configuration; skipping")
		return &Result{Outcome: OutcomeNoConfiguration, Stage: stage}, nil
	}

	if !cfg.DeploysTo(stage) {
		c.logger.WarnContext(ctx, "not deploying alerts on stage", slog.String("stage", stage))
		return &Result{Outcome: OutcomeStageSkipped, Stage: stage}, nil
	}

	result := &Result{Outcome: OutcomeCompiled, Stage: stage}
	reg := definition.BuildRegistry(cfg.Definitions)
	stackName := c.host.StackName()

	topics := topic.Compile(cfg.Topics)
	for _, w := range topics.Warnings {
		c.logger.WarnContext(ctx, "suspicious topic", slog.String("warning", w))
	}
	if err := c.merge(doc, topics.Resources, result); err != nil {
		return nil, err
	}

	global, err := GlobalAlarms(cfg, reg)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve global alarms: %w", err)
	}
	res, err := scopeResources(ScopeGlobal, global, topics.Set, stackName)
	if err != nil {
		return nil, err
	}
	if err := c.merge(doc, res, result); err != nil {
		return nil, err
	}

	tables, err := TableAlarms(cfg, reg, c.host.TableNames())
	if err != nil {
		return nil, fmt.Errorf("cannot resolve table alarms: %w", err)
	}
	res, err = scopeResources(ScopeTable, tables, topics.Set, stackName)
	if err != nil {
		return nil, err
	}
	if err := c.merge(doc, res, result); err != nil {
		return nil, err
	}

	for _, name := range c.host.FunctionNames() {
		res, err := c.functionResources(cfg, reg, name, topics.Set, stackName)
		if err != nil {
			return nil, err
		}
		if err := c.merge(doc, res, result); err != nil {
			return nil, err
		}
	}

	span.SetAttributes(
		attribute.Int("alerts.topics", result.Topics),
		attribute.Int("alerts.alarms", result.Alarms),
		attribute.Int("alerts.metric_filters", result.MetricFilters),
	)

	c.logger.InfoContext(ctx, "compiled alerts",
		slog.String("stage", stage),
		slog.Int("topics", result.Topics),
		slog.Int("alarms", result.Alarms),
		slog.Int("metricFilters", result.MetricFilters))

	return result, nil
}

func (c *Compiler) merge(doc Document, res *cfn.Resources, result *Result) error {
	if err := doc.Merge(res); err != nil {
		return fmt.Errorf("cannot merge resources: %w", err)
	}
	result.count(res)
	return nil
}

func (c *Compiler) functionResources(
	cfg *config.Alerts,
	reg definition.Registry,
	name string,
	topics topic.Set,
	stackName string,
) (*cfn.Resources, error) {
	fn, err := c.host.Function(name)
	if err != nil {
		return nil, fmt.Errorf("cannot load function %q: %w", name, err)
	}

	alarms, err := FunctionAlarms(cfg, reg, fn.Alarms)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve alarms of function %q: %w", name, err)
	}

	target := emitter.Function{
		Name:              name,
		LogicalID:         c.host.LambdaLogicalID(name),
		LogGroupLogicalID: c.host.LogGroupLogicalID(name),
		LogGroupName:      c.host.LogGroupName(fn.Name),
	}

	out := cfn.NewResources()
	for _, a := range alarms {
		if a.Name == "" {
			return nil, fmt.Errorf("%s alarms of %q: %w", ScopeFunction, name, ErrUnnamedAlarm)
		}
		out.Set(naming.AlarmKey(a.Name, name), emitter.Alarm(topics, a, stackName, target.LogicalID))
		out.Merge(emitter.LogMetricFilters(a, target, stackName))
	}

	return out, nil
}

// scopeResources renders global or table alarms, keyed by alarm name.
func scopeResources(scope Scope, alarms []alarm.Alarm, topics topic.Set, stackName string) (*cfn.Resources, error) {
	out := cfn.NewResources()
	for _, a := range alarms {
		if a.Name == "" {
			return nil, fmt.Errorf("%s alarms: %w", scope, ErrUnnamedAlarm)
		}
		out.Set(a.Name, emitter.Alarm(topics, a, stackName, ""))
	}
	return out, nil
}
