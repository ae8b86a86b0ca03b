package config

import (
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/alarm"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/definition"
)

// Alerts is the alerting configuration tree.
type Alerts struct {
	// Stages restricts compilation to the listed stages. Absent means every stage;
	// an empty list means none.
	Stages []string `yaml:"stages"`

	// Definitions overrides built-in alarm definitions or adds new ones.
	Definitions map[string]definition.Override `yaml:"definitions"`

	// Topics maps a topic role (ok, alarm, insufficientData) to its notification topic.
	Topics Topics `yaml:"topics"`

	// Global alarms are emitted once per build.
	Global []alarm.Reference `yaml:"global"`

	// Table alarms are emitted once per DynamoDB table.
	Table []alarm.Reference `yaml:"table"`

	// Function alarms are emitted for every function, together with the function's own alarms.
	Function []alarm.Reference `yaml:"function"`
}

// DeploysTo reports whether alerts are compiled for stage.
func (a *Alerts) DeploysTo(stage string) bool {
	return a.Stages == nil || slices.Contains(a.Stages, stage)
}

// Notification is a subscription of a newly created topic.
type Notification struct {
	Protocol string `yaml:"protocol"`
	Endpoint string `yaml:"endpoint"`
}

// Topic is the configuration of a single topic role. Topic is either an ARN or
// the name of a topic to create.
type Topic struct {
	Role          string
	Topic         string
	Notifications []Notification
}

// Topics keeps topic roles in declaration order.
type Topics []Topic

// UnmarshalYAML decodes a mapping of role to either a plain topic string or a
// {topic, notifications} object.
func (t *Topics) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: topics must be a mapping of role to topic", node.Line)
	}

	topics := make(Topics, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		role, value := node.Content[i].Value, node.Content[i+1]

		entry := Topic{Role: role}
		switch value.Kind {
		case yaml.ScalarNode:
			if value.Tag != "!!null" {
				entry.Topic = value.Value
			}
		case yaml.MappingNode:
			var obj struct {
				Topic         string         `yaml:"topic"`
				Notifications []Notification `yaml:"notifications"`
			}
			if err := value.Decode(&obj); err != nil {
				return fmt.Errorf("cannot decode topic %q: %w", role, err)
			}
			entry.Topic = obj.Topic
			entry.Notifications = obj.Notifications
		default:
			return fmt.Errorf("line %d: topic %q must be a string or an object", value.Line, role)
		}

		topics = append(topics, entry)
	}

	*t = topics
	return nil
}

// ParseAlerts decodes an alerting configuration document.
func ParseAlerts(data []byte) (*Alerts, error) {
	var cfg Alerts
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse alerts config: %w", err)
	}
	return &cfg, nil
}
