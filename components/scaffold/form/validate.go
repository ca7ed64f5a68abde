package form

import (
	"fmt"
	"strconv"

	"github.com/propscale/broker-admin/pkg/schema"
)

const (
	msgRequired     = "This field is required"
	msgNotANumber   = "Must be a number"
	msgBadSelection = "Invalid selection"
)

// Validate checks a parsed submission against the field metadata before it is
// sent anywhere: required fields must carry a value, number fields must parse
// (and are converted to float64 in place), select and multiselect values must
// belong to the declared options. Errors come back keyed by "section.field"
// path, ready for inline rendering.
func Validate(cfg *schema.FormConfig, payload map[string]any) map[string][]string {
	fieldErrors := make(map[string][]string)
	for _, section := range cfg.Sections {
		sectionPayload, _ := payload[section.Name].(map[string]any)
		if sectionPayload == nil {
			continue
		}
		for _, field := range section.Fields {
			path := section.Name + "." + field.Name
			for _, msg := range validateValue(field, sectionPayload) {
				fieldErrors[path] = append(fieldErrors[path], msg)
			}
		}
	}
	if len(fieldErrors) == 0 {
		return nil
	}
	return fieldErrors
}

func validateValue(field schema.FormField, sectionPayload map[string]any) []string {
	value := sectionPayload[field.Name]

	switch field.Kind {
	case schema.KindCheckbox:
		// Parsing already produced a bool; nothing to reject.
		return nil
	case schema.KindText, schema.KindTextarea:
		if field.Required && asString(value) == "" {
			return []string{msgRequired}
		}
	case schema.KindNumber:
		raw := asString(value)
		if raw == "" {
			if field.Required {
				return []string{msgRequired}
			}
			sectionPayload[field.Name] = nil
			return nil
		}
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return []string{msgNotANumber}
		}
		sectionPayload[field.Name] = parsed
	case schema.KindSelect:
		current := asString(value)
		if current == "" {
			if field.Required {
				return []string{msgRequired}
			}
			return nil
		}
		if !isOption(field.Options, current) {
			return []string{msgBadSelection}
		}
	case schema.KindMultiSelect:
		selected := asStrings(value)
		if field.Required && len(selected) == 0 {
			return []string{msgRequired}
		}
		for _, v := range selected {
			if !isOption(field.Options, v) {
				return []string{msgBadSelection}
			}
		}
	case schema.KindArrayFields:
		return validateRows(field, value)
	}
	return nil
}

// validateRows applies the sub-field rules to every submitted row. Row errors
// collect under the parent field's path, prefixed with the row number.
func validateRows(field schema.FormField, value any) []string {
	rows := asRows(value)
	if field.Required && len(rows) == 0 {
		return []string{msgRequired}
	}

	var msgs []string
	for i, row := range rows {
		for _, sub := range field.Fields {
			raw := asString(row[sub.Name])
			switch sub.Kind {
			case schema.KindNumber:
				if raw == "" {
					if sub.Required {
						msgs = append(msgs, rowError(i, sub.Label, "is required"))
					}
					continue
				}
				parsed, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					msgs = append(msgs, rowError(i, sub.Label, "must be a number"))
					continue
				}
				row[sub.Name] = parsed
			case schema.KindSelect:
				if raw == "" {
					if sub.Required {
						msgs = append(msgs, rowError(i, sub.Label, "is required"))
					}
					continue
				}
				if !isOption(sub.Options, raw) {
					msgs = append(msgs, rowError(i, sub.Label, "has an invalid selection"))
				}
			default:
				if sub.Required && raw == "" {
					msgs = append(msgs, rowError(i, sub.Label, "is required"))
				}
			}
		}
	}
	return msgs
}

func rowError(index int, label, problem string) string {
	return fmt.Sprintf("Row %d: %s %s", index+1, label, problem)
}

func isOption(options []schema.SelectOption, value string) bool {
	for _, opt := range options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
