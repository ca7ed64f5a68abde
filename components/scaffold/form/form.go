// Package form renders server-defined forms: the platform describes sections
// and fields, the renderer materializes inputs, defaults and inline errors.
// Field values travel under flattened "section.field" paths in both
// directions.
package form

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/propscale/broker-admin/pkg/schema"
)

// Props drives one rendered form.
type Props struct {
	// ID of the <form> element, used as the HTMX swap target for re-renders.
	ID     string
	Action string
	// Method is "post" for creation, "put" for editing.
	Method string
	Config *schema.FormConfig
	// Values holds current field values keyed by "section.field" path.
	Values map[string]any
	// Errors holds server-side validation errors keyed the same way.
	Errors map[string][]string
	// SubmitLabel defaults to "Save".
	SubmitLabel string
}

func XForm(props Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		id := props.ID
		if id == "" {
			id = "xform"
		}
		submit := props.SubmitLabel
		if submit == "" {
			submit = "Save"
		}
		if _, err := fmt.Fprintf(w,
			`<form id="%s" class="xform" hx-%s="%s" hx-target="#%s" hx-swap="outerHTML">`,
			templ.EscapeString(id),
			templ.EscapeString(props.Method),
			templ.EscapeString(props.Action),
			templ.EscapeString(id)); err != nil {
			return err
		}
		for _, section := range props.Config.Sections {
			if err := renderSection(w, section, props); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, `<button type="submit">%s</button></form>`,
			templ.EscapeString(submit)); err != nil {
			return err
		}
		return nil
	})
}

func renderSection(w io.Writer, section schema.FormSection, props Props) error {
	if _, err := fmt.Fprintf(w, `<fieldset data-section="%s"><legend>%s</legend>`,
		templ.EscapeString(section.Name), templ.EscapeString(section.Label)); err != nil {
		return err
	}
	for _, field := range section.Fields {
		path := section.Name + "." + field.Name
		if err := renderField(w, path, field, props); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</fieldset>`)
	return err
}

func fieldValue(props Props, path string, kind schema.FieldKind) any {
	if v, ok := props.Values[path]; ok && v != nil {
		return v
	}
	return kind.ZeroValue()
}

func renderField(w io.Writer, path string, field schema.FormField, props Props) error {
	required := ""
	if field.Required {
		required = " required"
	}
	if _, err := fmt.Fprintf(w, `<div class="field" data-field="%s"><label for="%s">%s</label>`,
		templ.EscapeString(path), templ.EscapeString(path), templ.EscapeString(field.Label)); err != nil {
		return err
	}

	value := fieldValue(props, path, field.Kind)

	switch field.Kind {
	case schema.KindText, schema.KindNumber:
		inputType := "text"
		if field.Kind == schema.KindNumber {
			inputType = "number"
		}
		placeholder := ""
		if field.Placeholder != "" {
			placeholder = fmt.Sprintf(` placeholder="%s"`, templ.EscapeString(field.Placeholder))
		}
		if _, err := fmt.Fprintf(w, `<input type="%s" id="%s" name="%s" value="%s"%s%s>`,
			inputType,
			templ.EscapeString(path), templ.EscapeString(path),
			templ.EscapeString(asString(value)), placeholder, required); err != nil {
			return err
		}
	case schema.KindTextarea:
		if _, err := fmt.Fprintf(w, `<textarea id="%s" name="%s"%s>%s</textarea>`,
			templ.EscapeString(path), templ.EscapeString(path), required,
			templ.EscapeString(asString(value))); err != nil {
			return err
		}
	case schema.KindCheckbox:
		checked := ""
		if schema.Truthy(value) {
			checked = " checked"
		}
		if _, err := fmt.Fprintf(w,
			`<input type="hidden" name="%s" value="false">`+
				`<input type="checkbox" id="%s" name="%s" value="true"%s>`,
			templ.EscapeString(path),
			templ.EscapeString(path), templ.EscapeString(path), checked); err != nil {
			return err
		}
	case schema.KindSelect:
		if err := renderSelect(w, path, field, asString(value), required); err != nil {
			return err
		}
	case schema.KindMultiSelect:
		if err := renderMultiSelect(w, path, field, asStrings(value)); err != nil {
			return err
		}
	case schema.KindArrayFields:
		if err := renderArrayFields(w, path, field, value); err != nil {
			return err
		}
	}

	for _, msg := range props.Errors[path] {
		if _, err := fmt.Fprintf(w, `<p class="field-error">%s</p>`, templ.EscapeString(msg)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</div>`)
	return err
}

func renderSelect(w io.Writer, path string, field schema.FormField, current, required string) error {
	if _, err := fmt.Fprintf(w, `<select id="%s" name="%s"%s>`,
		templ.EscapeString(path), templ.EscapeString(path), required); err != nil {
		return err
	}
	if !field.Required {
		if _, err := io.WriteString(w, `<option value=""></option>`); err != nil {
			return err
		}
	}
	for _, opt := range field.Options {
		selected := ""
		if current != "" && current == opt.Value {
			selected = " selected"
		}
		if _, err := fmt.Fprintf(w, `<option value="%s"%s>%s</option>`,
			templ.EscapeString(opt.Value), selected, templ.EscapeString(opt.Label)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</select>`)
	return err
}

func renderMultiSelect(w io.Writer, path string, field schema.FormField, current []string) error {
	selectedSet := make(map[string]bool, len(current))
	for _, v := range current {
		selectedSet[v] = true
	}
	if _, err := fmt.Fprintf(w, `<select id="%s" name="%s" multiple>`,
		templ.EscapeString(path), templ.EscapeString(path)); err != nil {
		return err
	}
	for _, opt := range field.Options {
		selected := ""
		if selectedSet[opt.Value] {
			selected = " selected"
		}
		if _, err := fmt.Fprintf(w, `<option value="%s"%s>%s</option>`,
			templ.EscapeString(opt.Value), selected, templ.EscapeString(opt.Label)); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</select>`)
	return err
}

// renderArrayFields renders a repeatable group of sub-inputs. Existing rows
// come from the record value; one extra hidden template row lets the client
// add entries. Sub-field names follow "path.index.sub".
func renderArrayFields(w io.Writer, path string, field schema.FormField, value any) error {
	if _, err := fmt.Fprintf(w, `<div class="array-fields" data-path="%s">`,
		templ.EscapeString(path)); err != nil {
		return err
	}

	rows := asRows(value)
	for i, row := range rows {
		if err := renderArrayRow(w, path, field, i, row, false); err != nil {
			return err
		}
	}
	// Template row cloned client-side for "Add" without a server round trip.
	if err := renderArrayRow(w, path, field, len(rows), nil, true); err != nil {
		return err
	}

	_, err := io.WriteString(w, `<button type="button" class="array-add">Add</button></div>`)
	return err
}

func renderArrayRow(w io.Writer, path string, field schema.FormField, index int, row map[string]any, isTemplate bool) error {
	class := "array-row"
	if isTemplate {
		class = "array-row array-row-template hidden"
	}
	if _, err := fmt.Fprintf(w, `<div class="%s">`, class); err != nil {
		return err
	}
	for _, sub := range field.Fields {
		name := fmt.Sprintf("%s.%d.%s", path, index, sub.Name)
		value := ""
		if row != nil {
			value = asString(row[sub.Name])
		}
		placeholder := ""
		if sub.Placeholder != "" {
			placeholder = fmt.Sprintf(` placeholder="%s"`, templ.EscapeString(sub.Placeholder))
		}
		if _, err := fmt.Fprintf(w,
			`<label>%s <input type="text" name="%s" value="%s"%s></label>`,
			templ.EscapeString(sub.Label),
			templ.EscapeString(name),
			templ.EscapeString(value),
			placeholder); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `<button type="button" class="array-remove">Remove</button></div>`)
	return err
}

func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", val)
	}
}

func asStrings(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, asString(item))
		}
		return out
	}
	return nil
}

func asRows(v any) []map[string]any {
	switch val := v.(type) {
	case []map[string]any:
		return val
	case []any:
		out := make([]map[string]any, 0, len(val))
		for _, item := range val {
			if row, ok := item.(map[string]any); ok {
				out = append(out, row)
			}
		}
		return out
	}
	return nil
}
