// Package project reads a serverless-style project file and exposes it to the compiler.
package project

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/alarm"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/cfn"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/compiler"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/config"
	"github.com/AutoScout24/serverless-plugin-aws-alerts/internal/naming"
)

// DefaultStage is the stage of a project that names none.
const DefaultStage = "dev"

var (
	// ErrMissingService indicates a project file without a service name.
	ErrMissingService = errors.New("project has no service name")
	// ErrUnknownFunction indicates a lookup of a function the project does not declare.
	ErrUnknownFunction = errors.New("function is not declared")
)

var _ compiler.Host = (*Project)(nil)

type function struct {
	name     string
	physical string
	alarms   []alarm.Reference
}

// Project is a parsed project file bound to one stage.
type Project struct {
	naming.Provider

	alerts    *config.Alerts
	functions []function
	tables    []string
}

type serviceName string

func (s *serviceName) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode {
		var obj struct {
			Name string `yaml:"name"`
		}
		if err := node.Decode(&obj); err != nil {
			return err
		}
		*s = serviceName(obj.Name)
		return nil
	}

	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	*s = serviceName(name)
	return nil
}

type document struct {
	Service  serviceName `yaml:"service"`
	Provider struct {
		Stage string `yaml:"stage"`
	} `yaml:"provider"`
	Custom struct {
		Alerts *config.Alerts `yaml:"alerts"`
	} `yaml:"custom"`
	Functions yaml.Node `yaml:"functions"`
	Resources struct {
		Resources yaml.Node `yaml:"Resources"`
	} `yaml:"resources"`
}

type functionDecl struct {
	Name   string            `yaml:"name"`
	Alarms []alarm.Reference `yaml:"alarms"`
}

type resourceDecl struct {
	Type string `yaml:"Type"`
}

// Load reads and parses the project file at path.
func Load(path, stage string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read project file: %w", err)
	}
	return Parse(data, stage)
}

// Parse decodes a project document. A non-empty stage overrides provider.stage.
func Parse(data []byte, stage string) (*Project, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cannot parse project file: %w", err)
	}

	if doc.Service == "" {
		return nil, ErrMissingService
	}

	if stage == "" {
		stage = doc.Provider.Stage
	}
	if stage == "" {
		stage = DefaultStage
	}

	p := &Project{
		Provider: naming.Provider{Service: string(doc.Service), Stage: stage},
		alerts:   doc.Custom.Alerts,
	}

	if err := eachEntry(&doc.Functions, func(name string, value *yaml.Node) error {
		var decl functionDecl
		if err := value.Decode(&decl); err != nil {
			return fmt.Errorf("cannot decode function %q: %w", name, err)
		}

		physical := decl.Name
		if physical == "" {
			physical = p.Provider.FunctionName(name)
		}
		p.functions = append(p.functions, function{name: name, physical: physical, alarms: decl.Alarms})
		return nil
	}); err != nil {
		return nil, err
	}

	if err := eachEntry(&doc.Resources.Resources, func(id string, value *yaml.Node) error {
		var decl resourceDecl
		if err := value.Decode(&decl); err != nil {
			return fmt.Errorf("cannot decode resource %q: %w", id, err)
		}
		if decl.Type == cfn.TypeDynamoDBTable {
			p.tables = append(p.tables, id)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return p, nil
}

// eachEntry visits the entries of a mapping node in declaration order. An absent
// or null node has no entries.
func eachEntry(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	switch {
	case node.Kind == 0:
		return nil
	case node.Kind == yaml.ScalarNode && node.Tag == "!!null":
		return nil
	case node.Kind != yaml.MappingNode:
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

// Alerts returns the custom.alerts section, or nil when the project has none.
func (p *Project) Alerts() *config.Alerts {
	return p.alerts
}

// TableNames returns the logical ids of the declared DynamoDB tables.
func (p *Project) TableNames() []string {
	return append([]string(nil), p.tables...)
}

// FunctionNames returns the declared function names.
func (p *Project) FunctionNames() []string {
	names := make([]string, 0, len(p.functions))
	for _, fn := range p.functions {
		names = append(names, fn.name)
	}
	return names
}

// Function returns the physical name and own alarms of the named function.
func (p *Project) Function(name string) (compiler.Function, error) {
	for _, fn := range p.functions {
		if fn.name == name {
			return compiler.Function{Name: fn.physical, Alarms: fn.alarms}, nil
		}
	}
	return compiler.Function{}, fmt.Errorf("%q: %w", name, ErrUnknownFunction)
}
