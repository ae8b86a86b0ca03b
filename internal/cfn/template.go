package cfn

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const resourcesKey = "Resources"

// Template is a CloudFormation template document. Sections other than Resources
// are carried through untouched.
type Template struct {
	body map[string]any
}

// NewTemplate returns a template with an empty Resources section.
func NewTemplate() *Template {
	return &Template{body: map[string]any{resourcesKey: map[string]any{}}}
}

// ReadTemplate decodes a JSON template. Numbers keep their literal representation.
func ReadTemplate(r io.Reader) (*Template, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("cannot decode template: %w", err)
	}
	if body == nil {
		body = map[string]any{}
	}

	if _, ok := body[resourcesKey]; !ok {
		body[resourcesKey] = map[string]any{}
	}
	if _, ok := body[resourcesKey].(map[string]any); !ok {
		return nil, errors.New("template Resources section is not an object")
	}

	return &Template{body: body}, nil
}

// Resources returns the generic Resources section.
func (t *Template) Resources() map[string]any {
	res, _ := t.body[resourcesKey].(map[string]any)
	return res
}

// Resource returns the generic declaration stored under key.
func (t *Template) Resource(key string) (map[string]any, bool) {
	res, ok := t.Resources()[key].(map[string]any)
	return res, ok
}

// Merge deep-merges the declarations into the Resources section. Existing entries
// under other keys are left untouched; entries under the same key are merged
// field by field with the new declaration winning.
func (t *Template) Merge(res *Resources) error {
	if res.Len() == 0 {
		return nil
	}

	generic, err := toGeneric(res)
	if err != nil {
		return err
	}

	dst := t.Resources()
	for _, k := range res.Keys() {
		dst[k] = mergeValue(dst[k], generic[k])
	}
	return nil
}

// MarshalJSON encodes the whole template.
func (t *Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.body)
}

// WriteJSON writes the template as indented JSON.
func (t *Template) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t.body)
}

// WriteYAML writes the template as YAML.
func (t *Template) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t.body); err != nil {
		return err
	}
	return enc.Close()
}

func toGeneric(res *Resources) (map[string]any, error) {
	raw, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("cannot encode resources: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("cannot decode resources: %w", err)
	}
	return out, nil
}

// mergeValue merges src into dst. Objects merge per key and arrays per index,
// anything else is replaced by src.
func mergeValue(dst, src any) any {
	switch s := src.(type) {
	case map[string]any:
		d, ok := dst.(map[string]any)
		if !ok {
			return s
		}
		for k, v := range s {
			d[k] = mergeValue(d[k], v)
		}
		return d
	case []any:
		d, ok := dst.([]any)
		if !ok {
			return s
		}
		for i, v := range s {
			if i < len(d) {
				d[i] = mergeValue(d[i], v)
			} else {
				d = append(d, v)
			}
		}
		return d
	default:
		return src
	}
}
