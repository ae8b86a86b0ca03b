package macro

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/alarm"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/cfn"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/compiler"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/config"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/naming"
)

const logGroupSuffix = "LogGroup"

var _ compiler.Host = (*Fragment)(nil)

type function struct {
	physical string
	alarms   []alarm.Reference
}

// Fragment is a template fragment handed to the macro. Functions are addressed
// by their logical id.
type Fragment struct {
	template  *cfn.Template
	stackName string
	alerts    *config.Alerts
	functions []string
	decls     map[string]function
	tables    []string
	declared  map[string]struct{}
}

type fragmentDoc struct {
	Metadata struct {
		Alerts *config.Alerts `yaml:"Alerts"`
	} `yaml:"Metadata"`
	Resources yaml.Node `yaml:"Resources"`
}

type resourceDecl struct {
	Type     string `yaml:"Type"`
	Metadata struct {
		Alarms []alarm.Reference `yaml:"Alarms"`
	} `yaml:"Metadata"`
	Properties struct {
		FunctionName yaml.Node `yaml:"FunctionName"`
	} `yaml:"Properties"`
}

// ParseFragment decodes a JSON template fragment. The generic template keeps
// every section for the response; a second YAML pass over the same bytes keeps
// the declaration order of resources.
func ParseFragment(raw []byte, stackName string) (*Fragment, error) {
	tpl, err := cfn.ReadTemplate(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	var doc fragmentDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("cannot decode fragment: %w", err)
	}

	f := &Fragment{
		template:  tpl,
		stackName: stackName,
		alerts:    doc.Metadata.Alerts,
		decls:     make(map[string]function),
		declared:  make(map[string]struct{}),
	}

	if doc.Resources.Kind != yaml.MappingNode {
		return f, nil
	}

	for i := 0; i+1 < len(doc.Resources.Content); i += 2 {
		id := doc.Resources.Content[i].Value
		f.declared[id] = struct{}{}

		var decl resourceDecl
		if err := doc.Resources.Content[i+1].Decode(&decl); err != nil {
			return nil, fmt.Errorf("cannot decode resource %q: %w", id, err)
		}

		switch decl.Type {
		case cfn.TypeDynamoDBTable:
			f.tables = append(f.tables, id)
		case cfn.TypeLambdaFunction:
			physical := id
			if n := decl.Properties.FunctionName; n.Kind == yaml.ScalarNode && n.Tag == "!!str" {
				physical = n.Value
			}
			f.functions = append(f.functions, id)
			f.decls[id] = function{physical: physical, alarms: decl.Metadata.Alarms}
		}
	}

	return f, nil
}

// Alerts returns the Metadata.Alerts section, or nil when the fragment has none.
func (f *Fragment) Alerts() *config.Alerts {
	return f.alerts
}

// Template returns the document alert resources are merged into.
func (f *Fragment) Template() *cfn.Template {
	return f.template
}

// TableNames returns the logical ids of the DynamoDB tables in declaration order.
func (f *Fragment) TableNames() []string {
	return append([]string(nil), f.tables...)
}

// FunctionNames returns the logical ids of the Lambda functions in declaration order.
func (f *Fragment) FunctionNames() []string {
	return append([]string(nil), f.functions...)
}

// Function returns the physical name and Metadata.Alarms of the named function.
func (f *Fragment) Function(name string) (compiler.Function, error) {
	fn, ok := f.decls[name]
	if !ok {
		return compiler.Function{}, fmt.Errorf("fragment has no function %q", name)
	}
	return compiler.Function{Name: fn.physical, Alarms: fn.alarms}, nil
}

// StackName returns the stack the fragment is deployed to.
func (f *Fragment) StackName() string {
	return f.stackName
}

// LambdaLogicalID returns name unchanged: fragment functions are already logical ids.
func (f *Fragment) LambdaLogicalID(name string) string {
	return name
}

// LogGroupLogicalID returns <name>LogGroup when the fragment declares that
// resource, and an empty id otherwise so metric filters carry no DependsOn.
func (f *Fragment) LogGroupLogicalID(name string) string {
	id := name + logGroupSuffix
	if _, ok := f.declared[id]; !ok {
		return ""
	}
	return id
}

// LogGroupName returns the Lambda log group of a physical function name.
func (f *Fragment) LogGroupName(physicalName string) string {
	return naming.LogGroupName(physicalName)
}
