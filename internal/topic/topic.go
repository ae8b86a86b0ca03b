// Package topic resolves notification topic roles into alarm action targets.
package topic

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"

	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/cfn"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/config"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/naming"
)

// Topic roles mapped onto the alarm action lists.
const (
	RoleOK               = "ok"
	RoleAlarm            = "alarm"
	RoleInsufficientData = "insufficientData"
)

const arnPrefix = "arn:"

// Set maps a topic role to its action target: an ARN string or a cfn.Ref to a created topic.
type Set map[string]any

// Action returns the action list of role: a single target, or empty.
func (s Set) Action(role string) []any {
	target, ok := s[role]
	if !ok {
		return []any{}
	}
	return []any{target}
}

// Compiled is the outcome of compiling the topic configuration.
type Compiled struct {
	Set       Set
	Resources *cfn.Resources
	// Warnings lists topics that look like ARNs but cannot be parsed as one.
	Warnings []string
}

// Compile resolves every configured role. ARNs are used verbatim; any other
// topic name yields a new AWS::SNS::Topic and a reference to it. Roles without
// a topic are skipped.
func Compile(topics config.Topics) *Compiled {
	out := &Compiled{Set: Set{}, Resources: cfn.NewResources()}

	for _, t := range topics {
		if t.Topic == "" {
			continue
		}

		if strings.HasPrefix(t.Topic, arnPrefix) {
			if !arn.IsARN(t.Topic) {
				out.Warnings = append(out.Warnings,
					fmt.Sprintf("topic %q of role %s is not a valid ARN", t.Topic, t.Role))
			}
			out.Set[t.Role] = t.Topic
			continue
		}

		key := naming.TopicKey(t.Role)
		out.Resources.Set(key, Resource(t.Topic, t.Notifications))
		out.Set[t.Role] = cfn.Ref{Ref: key}
	}

	return out
}

// Resource returns the declaration of a topic with inline subscriptions.
func Resource(name string, notifications []config.Notification) cfn.Resource {
	subs := make([]cfn.Subscription, 0, len(notifications))
	for _, n := range notifications {
		subs = append(subs, cfn.Subscription{Protocol: n.Protocol, Endpoint: n.Endpoint})
	}

	return cfn.Resource{
		Type: cfn.TypeTopic,
		Properties: cfn.TopicProperties{
			TopicName:    name,
			Subscription: subs,
		},
	}
}
