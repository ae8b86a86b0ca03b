// Package naming derives every CloudFormation logical id and metric name used by the compiler.
//
// All functions are pure: identical input always yields identical keys, which keeps
// repeated compilations of an unchanged configuration byte-identical.
//
// Key formation rules:
//   - topic:          AwsAlerts + UpperFirst(role)
//   - table alarm:    UpperFirst(table) + UpperFirst(alarm)
//   - global alarm:   alarm name as configured
//   - function alarm: Normalise(function) + Normalise(alarm) + "Alarm"
//   - metric filter:  lambdaLogicalID + UpperFirst(alarm) + "LogMetricFilter" + ("ALERT" | "OK")
package naming

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	topicKeyPrefix        = "AwsAlerts"
	alarmKeySuffix        = "Alarm"
	logMetricFilterSuffix = "LogMetricFilter"
	lambdaLogicalIDSuffix = "LambdaFunction"
	logGroupIDSuffix      = "LogGroup"
	logGroupPrefix        = "/aws/lambda/"
)

var normaliser = strings.NewReplacer("-", "Dash", "_", "Underscore")

// UpperFirst returns s with its first rune upper-cased.
func UpperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// Normalise turns a user supplied name into a token that is valid inside a logical id.
func Normalise(name string) string {
	return UpperFirst(normaliser.Replace(name))
}

// TopicKey returns the logical id of the SNS topic created for a topic role.
func TopicKey(role string) string {
	return topicKeyPrefix + UpperFirst(role)
}

// TableAlarmName returns the name of an alarm fanned out to a single table.
func TableAlarmName(table, alarm string) string {
	return UpperFirst(table) + UpperFirst(alarm)
}

// AlarmKey returns the logical id of an alarm attached to a function.
func AlarmKey(alarmName, functionName string) string {
	return Normalise(functionName) + Normalise(alarmName) + alarmKeySuffix
}

// LogMetricFilterKey returns the shared key base of the two metric filters of a pattern alarm.
func LogMetricFilterKey(lambdaLogicalID, alarmName string) string {
	return lambdaLogicalID + UpperFirst(alarmName) + logMetricFilterSuffix
}

// PatternMetricName returns the per-function metric name fed by a log metric filter.
func PatternMetricName(metric, lambdaLogicalID string) string {
	return UpperFirst(metric) + lambdaLogicalID
}

// Provider implements the serverless framework naming conventions for a service deployed to a stage.
type Provider struct {
	Service string
	Stage   string
}

// StackName returns <service>-<stage>.
func (p Provider) StackName() string {
	return p.Service + "-" + p.Stage
}

// LambdaLogicalID returns the logical id of the function resource.
func (p Provider) LambdaLogicalID(functionName string) string {
	return Normalise(functionName) + lambdaLogicalIDSuffix
}

// LogGroupLogicalID returns the logical id of the function's log group resource.
func (p Provider) LogGroupLogicalID(functionName string) string {
	return Normalise(functionName) + logGroupIDSuffix
}

// LogGroupName returns the physical log group name of a deployed function.
func (p Provider) LogGroupName(physicalName string) string {
	return LogGroupName(physicalName)
}

// FunctionName returns the default physical name of a function: <service>-<stage>-<function>.
func (p Provider) FunctionName(functionName string) string {
	return p.StackName() + "-" + functionName
}

// LogGroupName returns the Lambda log group of a physical function name.
func LogGroupName(physicalName string) string {
	return logGroupPrefix + physicalName
}
