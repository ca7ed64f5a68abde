package form

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/propscale/broker-admin/pkg/schema"
)

// FlattenRecord turns a nested record {section: {field: value}} into the
// "section.field" paths the renderer addresses values by. Fields absent from
// the record get their kind's zero value so every declared input renders.
func FlattenRecord(cfg *schema.FormConfig, record map[string]any) map[string]any {
	flat := make(map[string]any)
	for _, section := range cfg.Sections {
		sectionValues, _ := record[section.Name].(map[string]any)
		for _, field := range section.Fields {
			path := section.Name + "." + field.Name
			if sectionValues != nil {
				if v, ok := sectionValues[field.Name]; ok && v != nil {
					flat[path] = v
					continue
				}
			}
			flat[path] = field.Kind.ZeroValue()
		}
	}
	return flat
}

// ParseSubmission converts a posted urlencoded form back into the nested
// payload the platform expects, typed per the form config: checkboxes become
// booleans, multiselects string slices, array_fields lists of objects.
func ParseSubmission(cfg *schema.FormConfig, posted url.Values) map[string]any {
	payload := make(map[string]any)
	for _, section := range cfg.Sections {
		sectionPayload := make(map[string]any)
		for _, field := range section.Fields {
			path := section.Name + "." + field.Name
			sectionPayload[field.Name] = parseFieldValue(field, path, posted)
		}
		payload[section.Name] = sectionPayload
	}
	return payload
}

func parseFieldValue(field schema.FormField, path string, posted url.Values) any {
	switch field.Kind {
	case schema.KindCheckbox:
		// The hidden false input makes the checkbox always present; the
		// checked value arrives last.
		values := posted[path]
		if len(values) == 0 {
			return false
		}
		return values[len(values)-1] == "true"
	case schema.KindMultiSelect:
		if values, ok := posted[path]; ok {
			return values
		}
		return []string{}
	case schema.KindArrayFields:
		return parseArrayRows(field, path, posted)
	case schema.KindText, schema.KindTextarea, schema.KindNumber, schema.KindSelect:
		return posted.Get(path)
	}
	return posted.Get(path)
}

// parseArrayRows collects "path.index.sub" inputs into ordered row objects,
// dropping rows whose every value is empty (the client-side template row).
func parseArrayRows(field schema.FormField, path string, posted url.Values) []map[string]any {
	prefix := path + "."
	byIndex := make(map[int]map[string]any)
	for key := range posted {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := strings.SplitN(key[len(prefix):], ".", 2)
		if len(rest) != 2 {
			continue
		}
		index, err := strconv.Atoi(rest[0])
		if err != nil {
			continue
		}
		if byIndex[index] == nil {
			byIndex[index] = make(map[string]any)
		}
		byIndex[index][rest[1]] = posted.Get(key)
	}

	indexes := make([]int, 0, len(byIndex))
	for index := range byIndex {
		indexes = append(indexes, index)
	}
	sort.Ints(indexes)

	rows := make([]map[string]any, 0, len(indexes))
	for _, index := range indexes {
		row := byIndex[index]
		empty := true
		for _, sub := range field.Fields {
			if v, _ := row[sub.Name].(string); v != "" {
				empty = false
				break
			}
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows
}
