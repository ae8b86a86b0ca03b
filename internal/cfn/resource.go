// Package cfn models the CloudFormation resource declarations produced by the compiler
// and the template document they are merged into.
package cfn

import (
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Resource types emitted or inspected by the compiler.
const (
	TypeAlarm          = "AWS::CloudWatch::Alarm"
	TypeTopic          = "AWS::SNS::Topic"
	TypeMetricFilter   = "AWS::Logs::MetricFilter"
	TypeDynamoDBTable  = "AWS::DynamoDB::Table"
	TypeLambdaFunction = "AWS::Lambda::Function"
)

// Resource is a single typed entry of a template's Resources section.
type Resource struct {
	Type       string `json:"Type" yaml:"Type"`
	DependsOn  string `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
	Properties any    `json:"Properties" yaml:"Properties"`
}

// Ref points at another resource of the same template.
type Ref struct {
	Ref string `json:"Ref" yaml:"Ref"`
}

// Dimension is a CloudWatch metric dimension. Value is either a literal string or a Ref.
type Dimension struct {
	Name  string `json:"Name" yaml:"Name"`
	Value any    `json:"Value" yaml:"Value"`
}

// AlarmProperties are the properties of an AWS::CloudWatch::Alarm.
// Action lists are always encoded, even when empty.
type AlarmProperties struct {
	Namespace               string                   `json:"Namespace" yaml:"Namespace"`
	MetricName              string                   `json:"MetricName" yaml:"MetricName"`
	Threshold               float64                  `json:"Threshold" yaml:"Threshold"`
	Statistic               types.Statistic          `json:"Statistic" yaml:"Statistic"`
	Period                  int32                    `json:"Period" yaml:"Period"`
	EvaluationPeriods       int32                    `json:"EvaluationPeriods" yaml:"EvaluationPeriods"`
	ComparisonOperator      types.ComparisonOperator `json:"ComparisonOperator" yaml:"ComparisonOperator"`
	OKActions               []any                    `json:"OKActions" yaml:"OKActions"`
	AlarmActions            []any                    `json:"AlarmActions" yaml:"AlarmActions"`
	InsufficientDataActions []any                    `json:"InsufficientDataActions" yaml:"InsufficientDataActions"`
	Dimensions              []Dimension              `json:"Dimensions,omitempty" yaml:"Dimensions,omitempty"`
}

// Subscription is an inline subscription of an AWS::SNS::Topic.
type Subscription struct {
	Protocol string `json:"Protocol" yaml:"Protocol"`
	Endpoint string `json:"Endpoint" yaml:"Endpoint"`
}

// TopicProperties are the properties of an AWS::SNS::Topic.
type TopicProperties struct {
	TopicName    string         `json:"TopicName" yaml:"TopicName"`
	Subscription []Subscription `json:"Subscription" yaml:"Subscription"`
}

// MetricTransformation publishes a value to a metric for every matching log event.
type MetricTransformation struct {
	MetricValue     int    `json:"MetricValue" yaml:"MetricValue"`
	MetricNamespace string `json:"MetricNamespace" yaml:"MetricNamespace"`
	MetricName      string `json:"MetricName" yaml:"MetricName"`
}

// MetricFilterProperties are the properties of an AWS::Logs::MetricFilter.
type MetricFilterProperties struct {
	FilterPattern         string                 `json:"FilterPattern" yaml:"FilterPattern"`
	LogGroupName          string                 `json:"LogGroupName" yaml:"LogGroupName"`
	MetricTransformations []MetricTransformation `json:"MetricTransformations" yaml:"MetricTransformations"`
}
