// Package schema holds the server-supplied metadata that drives the generic
// table and form renderers: column configs, filter configs, form configs and
// pagination. The platform API owns these shapes; this package only decodes
// and interprets them.
package schema

import (
	"encoding/json"
	"fmt"
)

// FieldKind is the closed set of form field variants. The upstream contract
// names kinds with strings; decoding maps them onto this enum so that every
// switch over kinds is exhaustiveness-checked.
type FieldKind int

const (
	KindText FieldKind = iota
	KindTextarea
	KindNumber
	KindCheckbox
	KindSelect
	KindMultiSelect
	KindArrayFields
)

var fieldKindNames = map[FieldKind]string{
	KindText:        "text",
	KindTextarea:    "textarea",
	KindNumber:      "number",
	KindCheckbox:    "checkbox",
	KindSelect:      "select",
	KindMultiSelect: "multiselect",
	KindArrayFields: "array_fields",
}

func (k FieldKind) String() string {
	if name, ok := fieldKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

func (k FieldKind) MarshalJSON() ([]byte, error) {
	name, ok := fieldKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown field kind %d", int(k))
	}
	return json.Marshal(name)
}

func (k *FieldKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseFieldKind(name)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

func ParseFieldKind(name string) (FieldKind, error) {
	switch name {
	case "text", "":
		return KindText, nil
	case "textarea":
		return KindTextarea, nil
	case "number":
		return KindNumber, nil
	case "checkbox", "boolean":
		return KindCheckbox, nil
	case "select":
		return KindSelect, nil
	case "multiselect":
		return KindMultiSelect, nil
	case "array_fields":
		return KindArrayFields, nil
	}
	return KindText, fmt.Errorf("unknown field kind %q", name)
}

// ZeroValue is the default synthesized for a field when no record value is
// present: false for checkboxes, empty slices for list-shaped kinds, empty
// string otherwise.
func (k FieldKind) ZeroValue() any {
	switch k {
	case KindCheckbox:
		return false
	case KindMultiSelect:
		return []string{}
	case KindArrayFields:
		return []map[string]any{}
	case KindText, KindTextarea, KindNumber, KindSelect:
		return ""
	}
	return ""
}

// SelectOption is one choice of a select, multiselect or select-filter.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FormField describes one input of a server-defined form section.
type FormField struct {
	Name        string         `json:"name"`
	Label       string         `json:"label"`
	Kind        FieldKind      `json:"type"`
	Required    bool           `json:"required"`
	Placeholder string         `json:"placeholder,omitempty"`
	Options     []SelectOption `json:"options,omitempty"`
	// Fields is populated for array_fields kinds only.
	Fields []FormField `json:"fields,omitempty"`
}

// FormSection groups fields; record values address fields by the flattened
// "section.field" path.
type FormSection struct {
	Name   string      `json:"name"`
	Label  string      `json:"label"`
	Fields []FormField `json:"fields"`
}

type FormConfig struct {
	Sections []FormSection `json:"sections"`
}

// Validate checks structural invariants the renderer relies on: select-like
// kinds must carry options, array_fields must carry nested fields.
func (c *FormConfig) Validate() error {
	for _, section := range c.Sections {
		for _, field := range section.Fields {
			if err := validateField(section.Name, field); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateField(section string, field FormField) error {
	switch field.Kind {
	case KindSelect, KindMultiSelect:
		if len(field.Options) == 0 {
			return fmt.Errorf("field %s.%s: %s requires options", section, field.Name, field.Kind)
		}
	case KindArrayFields:
		if len(field.Fields) == 0 {
			return fmt.Errorf("field %s.%s: array_fields requires nested fields", section, field.Name)
		}
		for _, nested := range field.Fields {
			if nested.Kind == KindArrayFields {
				return fmt.Errorf("field %s.%s: array_fields cannot nest array_fields", section, field.Name)
			}
			if err := validateField(section, nested); err != nil {
				return err
			}
		}
	case KindText, KindTextarea, KindNumber, KindCheckbox:
	}
	return nil
}
