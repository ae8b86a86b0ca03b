package cfn

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Resources is an insertion-ordered set of resource declarations keyed by logical id.
// Setting an existing key replaces its declaration in place.
type Resources struct {
	keys  []string
	items map[string]Resource
}

// NewResources returns an empty Resources.
func NewResources() *Resources {
	return &Resources{items: make(map[string]Resource)}
}

// Set declares res under key.
func (r *Resources) Set(key string, res Resource) {
	if r.items == nil {
		r.items = make(map[string]Resource)
	}
	if _, ok := r.items[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.items[key] = res
}

// Get returns the declaration stored under key.
func (r *Resources) Get(key string) (Resource, bool) {
	if r == nil {
		return Resource{}, false
	}
	res, ok := r.items[key]
	return res, ok
}

// Keys returns the logical ids in insertion order.
func (r *Resources) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Len returns the number of declarations.
func (r *Resources) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// CountType returns the number of declarations of the given resource type.
func (r *Resources) CountType(typ string) int {
	if r == nil {
		return 0
	}
	n := 0
	for _, k := range r.keys {
		if r.items[k].Type == typ {
			n++
		}
	}
	return n
}

// Merge copies every declaration of other into r, preserving other's order for new keys.
func (r *Resources) Merge(other *Resources) {
	if other == nil {
		return
	}
	for _, k := range other.keys {
		r.Set(k, other.items[k])
	}
}

// MarshalJSON encodes the declarations as a JSON object in insertion order.
func (r *Resources) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.items[k])
		if err != nil {
			return nil, fmt.Errorf("cannot encode resource %q: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML encodes the declarations as a YAML mapping in insertion order.
func (r *Resources) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, k := range r.Keys() {
		var val yaml.Node
		if err := val.Encode(r.items[k]); err != nil {
			return nil, fmt.Errorf("cannot encode resource %q: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&val,
		)
	}
	return node, nil
}
