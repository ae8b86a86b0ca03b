package emitter

import (
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/alarm"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/cfn"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/definition"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/topic"
)

const stackName = "shop-dev"

func newAlarm(name string) alarm.Alarm {
	return alarm.Alarm{Name: name, Definition: definition.Defaults()[name]}
}

func newPatternAlarm() alarm.Alarm {
	return alarm.Alarm{
		Name: "bunyanErrors",
		Definition: definition.Definition{
			Metric:             "BunyanErrors",
			Threshold:          0,
			Statistic:          types.StatisticSum,
			Period:             60,
			EvaluationPeriods:  1,
			ComparisonOperator: types.ComparisonOperatorGreaterThanThreshold,
			Pattern:            "{$.level > 40}",
		},
	}
}

func newFunction() Function {
	return Function{
		Name:              "checkout",
		LogicalID:         "CheckoutLambdaFunction",
		LogGroupLogicalID: "CheckoutLogGroup",
		LogGroupName:      "/aws/lambda/shop-dev-checkout",
	}
}

func alarmProps(t *testing.T, res cfn.Resource) cfn.AlarmProperties {
	t.Helper()

	require.Equal(t, cfn.TypeAlarm, res.Type)
	props, ok := res.Properties.(cfn.AlarmProperties)
	require.True(t, ok)
	return props
}

func TestAlarm_Global(t *testing.T) {
	props := alarmProps(t, Alarm(topic.Set{}, newAlarm("functionErrors"), stackName, ""))

	assert.Equal(t, "AWS/Lambda", props.Namespace)
	assert.Equal(t, "Errors", props.MetricName)
	assert.Equal(t, 10.0, props.Threshold)
	assert.Equal(t, types.StatisticSum, props.Statistic)
	assert.Equal(t, int32(60), props.Period)
	assert.Equal(t, int32(1), props.EvaluationPeriods)
	assert.Equal(t, types.ComparisonOperatorGreaterThanThreshold, props.ComparisonOperator)
	assert.Nil(t, props.Dimensions)
	assert.Equal(t, []any{}, props.OKActions)
	assert.Equal(t, []any{}, props.AlarmActions)
	assert.Equal(t, []any{}, props.InsufficientDataActions)
}

func TestAlarm_GlobalJSON(t *testing.T) {
	raw, err := json.Marshal(Alarm(topic.Set{}, newAlarm("functionErrors"), stackName, ""))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"Type": "AWS::CloudWatch::Alarm",
		"Properties": {
			"Namespace": "AWS/Lambda",
			"MetricName": "Errors",
			"Threshold": 10,
			"Statistic": "Sum",
			"Period": 60,
			"EvaluationPeriods": 1,
			"ComparisonOperator": "GreaterThanThreshold",
			"OKActions": [],
			"AlarmActions": [],
			"InsufficientDataActions": []
		}
	}`, string(raw))
}

func TestAlarm_TableKeepsResolvedDimensions(t *testing.T) {
	a := newAlarm("dynamoDbReadThrottleEvents")
	a.Dimensions = []cfn.Dimension{{Name: "TableName", Value: "Orders"}}

	props := alarmProps(t, Alarm(topic.Set{}, a, stackName, ""))

	assert.Equal(t, "ReadThrottleEvents", props.MetricName)
	assert.Equal(t, []cfn.Dimension{{Name: "TableName", Value: "Orders"}}, props.Dimensions)
}

func TestAlarm_Actions(t *testing.T) {
	topics := topic.Set{
		topic.RoleOK:    "arn:aws:sns:eu-west-1:123456789012:ok",
		topic.RoleAlarm: cfn.Ref{Ref: "AwsAlertsAlarm"},
	}

	props := alarmProps(t, Alarm(topics, newAlarm("apiGateway5xx"), stackName, ""))

	assert.Equal(t, []any{"arn:aws:sns:eu-west-1:123456789012:ok"}, props.OKActions)
	assert.Equal(t, []any{cfn.Ref{Ref: "AwsAlertsAlarm"}}, props.AlarmActions)
	assert.Equal(t, []any{}, props.InsufficientDataActions)
}

func TestAlarm_Function(t *testing.T) {
	props := alarmProps(t, Alarm(topic.Set{}, newAlarm("functionDuration"), stackName, "CheckoutLambdaFunction"))

	assert.Equal(t, "AWS/Lambda", props.Namespace)
	assert.Equal(t, "Duration", props.MetricName)
	assert.Equal(t, []cfn.Dimension{{
		Name:  "FunctionName",
		Value: cfn.Ref{Ref: "CheckoutLambdaFunction"},
	}}, props.Dimensions)
}

func TestAlarm_FunctionPattern(t *testing.T) {
	props := alarmProps(t, Alarm(topic.Set{}, newPatternAlarm(), stackName, "CheckoutLambdaFunction"))

	assert.Equal(t, stackName, props.Namespace)
	assert.Equal(t, "BunyanErrorsCheckoutLambdaFunction", props.MetricName)
	assert.Empty(t, props.Dimensions)
}

func TestAlarm_GlobalPatternUsesStackNamespace(t *testing.T) {
	props := alarmProps(t, Alarm(topic.Set{}, newPatternAlarm(), stackName, ""))

	assert.Equal(t, stackName, props.Namespace)
	assert.Equal(t, "BunyanErrors", props.MetricName)
}

func TestLogMetricFilters_NoPattern(t *testing.T) {
	filters := LogMetricFilters(newAlarm("functionErrors"), newFunction(), stackName)
	assert.Equal(t, 0, filters.Len())
}

func TestLogMetricFilters_Pattern(t *testing.T) {
	a := newPatternAlarm()
	filters := LogMetricFilters(a, newFunction(), stackName)

	require.Equal(t, []string{
		"CheckoutLambdaFunctionBunyanErrorsLogMetricFilterALERT",
		"CheckoutLambdaFunctionBunyanErrorsLogMetricFilterOK",
	}, filters.Keys())

	alert, _ := filters.Get("CheckoutLambdaFunctionBunyanErrorsLogMetricFilterALERT")
	assert.Equal(t, cfn.Resource{
		Type:      cfn.TypeMetricFilter,
		DependsOn: "CheckoutLogGroup",
		Properties: cfn.MetricFilterProperties{
			FilterPattern: "{$.level > 40}",
			LogGroupName:  "/aws/lambda/shop-dev-checkout",
			MetricTransformations: []cfn.MetricTransformation{{
				MetricValue:     1,
				MetricNamespace: stackName,
				MetricName:      "BunyanErrorsCheckoutLambdaFunction",
			}},
		},
	}, alert)

	ok, _ := filters.Get("CheckoutLambdaFunctionBunyanErrorsLogMetricFilterOK")
	okProps := ok.Properties.(cfn.MetricFilterProperties)
	assert.Equal(t, "", okProps.FilterPattern)
	assert.Equal(t, 0, okProps.MetricTransformations[0].MetricValue)
	assert.Equal(t, "CheckoutLogGroup", ok.DependsOn)

	alarmRes := alarmProps(t, Alarm(topic.Set{}, a, stackName, newFunction().LogicalID))
	assert.Equal(t, alarmRes.MetricName, okProps.MetricTransformations[0].MetricName)
	assert.Equal(t, alarmRes.Namespace, okProps.MetricTransformations[0].MetricNamespace)
}
