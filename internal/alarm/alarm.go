// Package alarm expands configured alarm references into concrete alarm instances.
package alarm

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/cfn"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/definition"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/naming"
)

// TableNameDimension is the dimension that scopes a table alarm to one table.
const TableNameDimension = "TableName"

// ErrDefinitionNotFound indicates a named reference has no matching definition.
var ErrDefinitionNotFound = errors.New("alarm definition does not exist")

// Error reports a failure to resolve the named alarm.
type Error struct {
	Alarm string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("alarm %s: %v", e.Alarm, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Alarm is a fully expanded alarm instance ready to be emitted.
type Alarm struct {
	Name                  string `yaml:"name"`
	definition.Definition `yaml:",inline"`
	Dimensions            []cfn.Dimension `yaml:"dimensions"`
}

// Reference is either the name of a definition or an inline alarm.
type Reference struct {
	name   string
	inline *Alarm
}

// Named returns a reference to the definition called name.
func Named(name string) Reference {
	return Reference{name: name}
}

// Inline returns a reference that resolves to a as is, bypassing the registry.
func Inline(a Alarm) Reference {
	return Reference{inline: &a}
}

// Name returns the referenced definition name, or the inline alarm's name.
func (r Reference) Name() string {
	if r.inline != nil {
		return r.inline.Name
	}
	return r.name
}

// Alarm returns the inline alarm, if r is inline.
func (r Reference) Alarm() (Alarm, bool) {
	if r.inline == nil {
		return Alarm{}, false
	}
	return *r.inline, true
}

// UnmarshalYAML decodes a scalar into a named reference and a mapping into an inline alarm.
func (r *Reference) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*r = Named(node.Value)
		return nil
	case yaml.MappingNode:
		var a Alarm
		if err := node.Decode(&a); err != nil {
			return fmt.Errorf("cannot decode inline alarm: %w", err)
		}
		*r = Inline(a)
		return nil
	default:
		return fmt.Errorf("line %d: alarm reference must be a definition name or an alarm object", node.Line)
	}
}

// Resolve expands refs against reg in input order. Inline references are passed
// through unchanged. When tables are given, every named reference fans out to one
// alarm per table carrying a TableName dimension.
func Resolve(refs []Reference, reg definition.Registry, tables ...string) ([]Alarm, error) {
	if len(refs) == 0 {
		return nil, nil
	}

	var alarms []Alarm
	for _, ref := range refs {
		if a, ok := ref.Alarm(); ok {
			alarms = append(alarms, a)
			continue
		}

		def, ok := reg[ref.name]
		if !ok {
			return nil, &Error{Alarm: ref.name, Err: ErrDefinitionNotFound}
		}

		if len(tables) == 0 {
			alarms = append(alarms, Alarm{Name: ref.name, Definition: def})
			continue
		}

		for _, table := range tables {
			alarms = append(alarms, Alarm{
				Name:       naming.TableAlarmName(table, ref.name),
				Definition: def,
				Dimensions: []cfn.Dimension{{Name: TableNameDimension, Value: table}},
			})
		}
	}

	return alarms, nil
}

// Union concatenates a and b, dropping named references already seen.
// Inline references are always kept.
func Union(a, b []Reference) []Reference {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]Reference, 0, len(a)+len(b))

	for _, refs := range [][]Reference{a, b} {
		for _, ref := range refs {
			if ref.inline == nil {
				if _, dup := seen[ref.name]; dup {
					continue
				}
				seen[ref.name] = struct{}{}
			}
			out = append(out, ref)
		}
	}

	return out
}
