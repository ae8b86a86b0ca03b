// Package emitter renders resolved alarms into CloudFormation resource declarations.
package emitter

import (
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/alarm"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/cfn"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/naming"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/topic"
)

// FunctionNameDimension scopes a native Lambda metric to one function.
const FunctionNameDimension = "FunctionName"

const (
	alertFilterSuffix = "ALERT"
	okFilterSuffix    = "OK"
)

// Function identifies the function an alarm is attached to.
type Function struct {
	// Name is the function's name in the configuration.
	Name string
	// LogicalID is the logical id of the function resource.
	LogicalID string
	// LogGroupLogicalID is the logical id of the function's log group resource.
	LogGroupLogicalID string
	// LogGroupName is the physical name of the function's log group.
	LogGroupName string
}

// Alarm renders a as an AWS::CloudWatch::Alarm. functionRef is the logical id of
// the function the alarm watches, or empty for global and table alarms.
func Alarm(topics topic.Set, a alarm.Alarm, stackName, functionRef string) cfn.Resource {
	namespace := a.Namespace
	if a.Pattern != "" {
		namespace = stackName
	}

	metricName := a.Metric
	dimensions := a.Dimensions

	if functionRef != "" {
		if a.Pattern != "" {
			metricName = naming.PatternMetricName(a.Metric, functionRef)
			dimensions = []cfn.Dimension{}
		} else {
			dimensions = []cfn.Dimension{{
				Name:  FunctionNameDimension,
				Value: cfn.Ref{Ref: functionRef},
			}}
		}
	}

	return cfn.Resource{
		Type: cfn.TypeAlarm,
		Properties: cfn.AlarmProperties{
			Namespace:               namespace,
			MetricName:              metricName,
			Threshold:               a.Threshold,
			Statistic:               a.Statistic,
			Period:                  a.Period,
			EvaluationPeriods:       a.EvaluationPeriods,
			ComparisonOperator:      a.ComparisonOperator,
			OKActions:               topics.Action(topic.RoleOK),
			AlarmActions:            topics.Action(topic.RoleAlarm),
			InsufficientDataActions: topics.Action(topic.RoleInsufficientData),
			Dimensions:              dimensions,
		},
	}
}

// LogMetricFilters renders the metric filters that feed a pattern alarm: an ALERT
// filter publishing 1 for every line matching the pattern and an OK filter
// publishing 0 for every line. Alarms without a pattern produce no filters.
func LogMetricFilters(a alarm.Alarm, fn Function, stackName string) *cfn.Resources {
	out := cfn.NewResources()
	if a.Pattern == "" {
		return out
	}

	base := naming.LogMetricFilterKey(fn.LogicalID, a.Name)
	metricName := naming.PatternMetricName(a.Metric, fn.LogicalID)

	out.Set(base+alertFilterSuffix, metricFilter(fn, a.Pattern, 1, stackName, metricName))
	out.Set(base+okFilterSuffix, metricFilter(fn, "", 0, stackName, metricName))

	return out
}

func metricFilter(fn Function, pattern string, value int, namespace, metricName string) cfn.Resource {
	return cfn.Resource{
		Type:      cfn.TypeMetricFilter,
		DependsOn: fn.LogGroupLogicalID,
		Properties: cfn.MetricFilterProperties{
			FilterPattern: pattern,
			LogGroupName:  fn.LogGroupName,
			MetricTransformations: []cfn.MetricTransformation{{
				MetricValue:     value,
				MetricNamespace: namespace,
				MetricName:      metricName,
			}},
		},
	}
}
