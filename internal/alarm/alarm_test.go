package alarm

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/cfn"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/definition"
)

func names(alarms []Alarm) []string {
	out := make([]string, 0, len(alarms))
	for _, a := range alarms {
		out = append(out, a.Name)
	}
	return out
}

func newInlineAlarm(name string) Alarm {
	return Alarm{
		Name: name,
		Definition: definition.Definition{
			Namespace:          "Custom",
			Metric:             "Latency",
			Threshold:          250,
			Statistic:          types.StatisticAverage,
			Period:             300,
			EvaluationPeriods:  2,
			ComparisonOperator: types.ComparisonOperatorGreaterThanOrEqualToThreshold,
		},
	}
}

func TestResolve_Empty(t *testing.T) {
	alarms, err := Resolve(nil, definition.Defaults())
	require.NoError(t, err)
	assert.Empty(t, alarms)

	alarms, err = Resolve([]Reference{}, definition.Defaults(), "Orders")
	require.NoError(t, err)
	assert.Empty(t, alarms)
}

func TestResolve_Named(t *testing.T) {
	reg := definition.Defaults()

	alarms, err := Resolve([]Reference{Named("functionErrors"), Named("apiGateway5xx")}, reg)
	require.NoError(t, err)
	require.Len(t, alarms, 2)

	assert.Equal(t, "functionErrors", alarms[0].Name)
	assert.Equal(t, reg["functionErrors"], alarms[0].Definition)
	assert.Nil(t, alarms[0].Dimensions)
	assert.Equal(t, "apiGateway5xx", alarms[1].Name)
	assert.Equal(t, "5XXError", alarms[1].Metric)
}

func TestResolve_InlinePassesThrough(t *testing.T) {
	inline := newInlineAlarm("customLatency")
	inline.Dimensions = []cfn.Dimension{{Name: "Service", Value: "checkout"}}

	alarms, err := Resolve([]Reference{Named("functionErrors"), Inline(inline)}, definition.Defaults(), "Orders")
	require.NoError(t, err)

	require.Len(t, alarms, 2)
	assert.Equal(t, "OrdersFunctionErrors", alarms[0].Name)
	assert.Equal(t, inline, alarms[1])
}

func TestResolve_DefinitionNotFound(t *testing.T) {
	_, err := Resolve([]Reference{Named("functionErrors"), Named("doesNotExist")}, definition.Defaults())
	require.Error(t, err)

	assert.True(t, errors.Is(err, ErrDefinitionNotFound))
	assert.EqualError(t, err, "alarm doesNotExist: alarm definition does not exist")

	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "doesNotExist", aerr.Alarm)
}

func TestResolve_TableFanOut(t *testing.T) {
	reg := definition.BuildRegistry(map[string]definition.Override{
		"r": {},
	})

	alarms, err := Resolve([]Reference{Named("r")}, reg, "Orders", "Users")
	require.NoError(t, err)

	assert.Equal(t, []string{"OrdersR", "UsersR"}, names(alarms))
	assert.Equal(t, []cfn.Dimension{{Name: "TableName", Value: "Orders"}}, alarms[0].Dimensions)
	assert.Equal(t, []cfn.Dimension{{Name: "TableName", Value: "Users"}}, alarms[1].Dimensions)
}

func TestResolve_TableFanOutOrder(t *testing.T) {
	refs := []Reference{Named("dynamoDbReadThrottleEvents"), Named("dynamoDbWriteThrottleEvents")}

	alarms, err := Resolve(refs, definition.Defaults(), "orders", "users")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"OrdersDynamoDbReadThrottleEvents",
		"UsersDynamoDbReadThrottleEvents",
		"OrdersDynamoDbWriteThrottleEvents",
		"UsersDynamoDbWriteThrottleEvents",
	}, names(alarms))
}

func TestUnion(t *testing.T) {
	inline := newInlineAlarm("custom")

	got := Union(
		[]Reference{Named("A"), Named("B")},
		[]Reference{Named("B"), Named("C"), Inline(inline), Inline(inline)},
	)

	require.Len(t, got, 5)
	assert.Equal(t, "A", got[0].Name())
	assert.Equal(t, "B", got[1].Name())
	assert.Equal(t, "C", got[2].Name())
	_, ok := got[3].Alarm()
	assert.True(t, ok)
	_, ok = got[4].Alarm()
	assert.True(t, ok)
}

func TestUnion_FunctionScopeCoversAll(t *testing.T) {
	reg := definition.BuildRegistry(map[string]definition.Override{"A": {}, "B": {}, "C": {}})

	alarms, err := Resolve(Union(
		[]Reference{Named("A"), Named("B")},
		[]Reference{Named("B"), Named("C")},
	), reg)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, names(alarms))
}

func TestReference_UnmarshalYAML(t *testing.T) {
	var refs []Reference
	err := yaml.Unmarshal([]byte(`
- functionErrors
- name: customAlarm
  namespace: Custom
  metric: Latency
  threshold: 3
  statistic: Average
  period: 60
  evaluationPeriods: 1
  comparisonOperator: GreaterThanThreshold
  dimensions:
    - Name: Service
      Value: checkout
`), &refs)
	require.NoError(t, err)
	require.Len(t, refs, 2)

	assert.Equal(t, "functionErrors", refs[0].Name())
	_, inline := refs[0].Alarm()
	assert.False(t, inline)

	a, inline := refs[1].Alarm()
	require.True(t, inline)
	assert.Equal(t, "customAlarm", a.Name)
	assert.Equal(t, "Custom", a.Namespace)
	assert.Equal(t, 3.0, a.Threshold)
	assert.Equal(t, types.StatisticAverage, a.Statistic)
	assert.Equal(t, []cfn.Dimension{{Name: "Service", Value: "checkout"}}, a.Dimensions)
}

func TestReference_UnmarshalYAMLRejectsSequence(t *testing.T) {
	var refs []Reference
	err := yaml.Unmarshal([]byte("- [a, b]\n"), &refs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alarm reference")
}
