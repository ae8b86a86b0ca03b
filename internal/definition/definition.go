// Package definition holds the named alarm templates that string alarm references resolve against.
package definition

import (
	"sort"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	lambdaNamespace     = "AWS/Lambda"
	apiGatewayNamespace = "AWS/ApiGateway"
	dynamoDBNamespace   = "AWS/DynamoDB"
)

// Definition is an immutable alarm template. A non-empty Pattern marks a metric
// derived from a log metric filter instead of a metric emitted by the service.
type Definition struct {
	Namespace          string                   `yaml:"namespace"`
	Metric             string                   `yaml:"metric"`
	Threshold          float64                  `yaml:"threshold"`
	Statistic          types.Statistic          `yaml:"statistic"`
	Period             int32                    `yaml:"period"`
	EvaluationPeriods  int32                    `yaml:"evaluationPeriods"`
	ComparisonOperator types.ComparisonOperator `yaml:"comparisonOperator"`
	Pattern            string                   `yaml:"pattern,omitempty"`
}

// Override is a partial Definition. Nil fields leave the base definition untouched.
type Override struct {
	Namespace          *string                   `yaml:"namespace"`
	Metric             *string                   `yaml:"metric"`
	Threshold          *float64                  `yaml:"threshold"`
	Statistic          *types.Statistic          `yaml:"statistic"`
	Period             *int32                    `yaml:"period"`
	EvaluationPeriods  *int32                    `yaml:"evaluationPeriods"`
	ComparisonOperator *types.ComparisonOperator `yaml:"comparisonOperator"`
	Pattern            *string                   `yaml:"pattern"`
}

// Registry maps definition names to definitions.
type Registry map[string]Definition

// Apply returns d with every field set in o replaced.
func (d Definition) Apply(o Override) Definition {
	if o.Namespace != nil {
		d.Namespace = *o.Namespace
	}
	if o.Metric != nil {
		d.Metric = *o.Metric
	}
	if o.Threshold != nil {
		d.Threshold = *o.Threshold
	}
	if o.Statistic != nil {
		d.Statistic = *o.Statistic
	}
	if o.Period != nil {
		d.Period = *o.Period
	}
	if o.EvaluationPeriods != nil {
		d.EvaluationPeriods = *o.EvaluationPeriods
	}
	if o.ComparisonOperator != nil {
		d.ComparisonOperator = *o.ComparisonOperator
	}
	if o.Pattern != nil {
		d.Pattern = *o.Pattern
	}
	return d
}

// BuildRegistry merges overrides into the built-in definitions. Definitions not
// mentioned pass through unchanged and unknown names are added.
func BuildRegistry(overrides map[string]Override) Registry {
	reg := Defaults()
	for name, o := range overrides {
		reg[name] = reg[name].Apply(o)
	}
	return reg
}

// Names returns the definition names in lexical order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Defaults returns a fresh copy of the built-in definitions.
func Defaults() Registry {
	return Registry{
		"functionInvocations": {
			Namespace:          lambdaNamespace,
			Metric:             "Invocations",
			Threshold:          100,
			Statistic:          types.StatisticSum,
			Period:             60,
			EvaluationPeriods:  1,
			ComparisonOperator: types.ComparisonOperatorGreaterThanThreshold,
		},
		"functionErrors": {
			Namespace:          lambdaNamespace,
			Metric:             "Errors",
			Threshold:          10,
			Statistic:          types.StatisticSum,
			Period:             60,
			EvaluationPeriods:  1,
			ComparisonOperator: types.ComparisonOperatorGreaterThanThreshold,
		},
		"functionDuration": {
			Namespace:          lambdaNamespace,
			Metric:             "Duration",
			Threshold:          500,
			Statistic:          types.StatisticAverage,
			Period:             60,
			EvaluationPeriods:  1,
			ComparisonOperator: types.ComparisonOperatorGreaterThanThreshold,
		},
		"functionThrottles": {
			Namespace:          lambdaNamespace,
			Metric:             "Throttles",
			Threshold:          50,
			Statistic:          types.StatisticSum,
			Period:             60,
			EvaluationPeriods:  1,
			ComparisonOperator: types.ComparisonOperatorGreaterThanThreshold,
		},
		"apiGateway5xx": {
			Namespace:          apiGatewayNamespace,
			Metric:             "5XXError",
			Threshold:          1,
			Statistic:          types.StatisticSum,
			Period:             60,
			EvaluationPeriods:  1,
			ComparisonOperator: types.ComparisonOperatorGreaterThanThreshold,
		},
		"apiGateway4xx": {
			Namespace:          apiGatewayNamespace,
			Metric:             "4XXError",
			Threshold:          10,
			Statistic:          types.StatisticSum,
			Period:             60,
			EvaluationPeriods:  1,
			ComparisonOperator: types.ComparisonOperatorGreaterThanThreshold,
		},
		"dynamoDbReadThrottleEvents": {
			Namespace:          dynamoDBNamespace,
			Metric:             "ReadThrottleEvents",
			Threshold:          20,
			Statistic:          types.StatisticSum,
			Period:             300,
			EvaluationPeriods:  1,
			ComparisonOperator: types.ComparisonOperatorGreaterThanThreshold,
		},
		"dynamoDbWriteThrottleEvents": {
			Namespace:          dynamoDBNamespace,
			Metric:             "WriteThrottleEvents",
			Threshold:          20,
			Statistic:          types.StatisticSum,
			Period:             300,
			EvaluationPeriods:  1,
			ComparisonOperator: types.ComparisonOperatorGreaterThanThreshold,
		},
	}
}
