package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ColumnKind classifies how a cell value is rendered.
type ColumnKind int

const (
	ColumnText ColumnKind = iota
	ColumnBoolean
	ColumnImage
	ColumnJSON
	ColumnNumber
	ColumnDate
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnBoolean:
		return "boolean"
	case ColumnImage:
		return "image"
	case ColumnJSON:
		return "json"
	case ColumnNumber:
		return "number"
	case ColumnDate:
		return "date"
	case ColumnText:
		return "text"
	}
	return "text"
}

func (k *ColumnKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	// Unknown column types degrade to text rendering.
	switch name {
	case "boolean":
		*k = ColumnBoolean
	case "image":
		*k = ColumnImage
	case "json":
		*k = ColumnJSON
	case "number":
		*k = ColumnNumber
	case "date":
		*k = ColumnDate
	default:
		*k = ColumnText
	}
	return nil
}

func (k ColumnKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// ColumnConfig describes one displayable field of a row.
type ColumnConfig struct {
	Label      string     `json:"label"`
	Type       ColumnKind `json:"type"`
	Visible    bool       `json:"visible"`
	Sortable   bool       `json:"sortable"`
	Filterable bool       `json:"filterable"`
}

// Column pairs a row field key with its config.
type Column struct {
	Key string
	ColumnConfig
}

// Columns is the ordered column set. The platform sends a JSON object; its
// key order is meaningful (it is the display order), so decoding preserves it
// instead of going through a Go map.
type Columns []Column

func (c *Columns) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("table_columns_config: expected object, got %v", tok)
	}

	cols := make(Columns, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("table_columns_config: expected string key, got %v", keyTok)
		}
		var cfg ColumnConfig
		if err := dec.Decode(&cfg); err != nil {
			return fmt.Errorf("table_columns_config[%s]: %w", key, err)
		}
		cols = append(cols, Column{Key: key, ColumnConfig: cfg})
	}
	*c = cols
	return nil
}

func (c Columns) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col.Key)
		if err != nil {
			return nil, err
		}
		cfg, err := json.Marshal(col.ColumnConfig)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(cfg)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the config for a key, if present.
func (c Columns) Get(key string) (Column, bool) {
	for _, col := range c {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

// FilterKind is the closed set of filter control variants.
type FilterKind int

const (
	FilterText FilterKind = iota
	FilterSelect
)

func (k FilterKind) String() string {
	if k == FilterSelect {
		return "select"
	}
	return "text"
}

func (k *FilterKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "select":
		*k = FilterSelect
	case "text", "":
		*k = FilterText
	default:
		return fmt.Errorf("unknown filter kind %q", name)
	}
	return nil
}

func (k FilterKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// FilterConfig describes one filter control.
type FilterConfig struct {
	Type        FilterKind     `json:"type"`
	Label       string         `json:"label"`
	Tooltip     string         `json:"tooltip,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Options     []SelectOption `json:"options,omitempty"`
}

// Filter pairs a query key with its config.
type Filter struct {
	Key string
	FilterConfig
}

// Filters is the ordered filter set, decoded like Columns.
type Filters []Filter

func (f *Filters) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("filters_config: expected object, got %v", tok)
	}

	filters := make(Filters, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("filters_config: expected string key, got %v", keyTok)
		}
		var cfg FilterConfig
		if err := dec.Decode(&cfg); err != nil {
			return fmt.Errorf("filters_config[%s]: %w", key, err)
		}
		filters = append(filters, Filter{Key: key, FilterConfig: cfg})
	}
	*f = filters
	return nil
}

// Validate enforces the select-filters-carry-options invariant.
func (f Filters) Validate() error {
	for _, filter := range f {
		if filter.Type == FilterSelect && len(filter.Options) == 0 {
			return fmt.Errorf("filter %q: select filter requires options", filter.Key)
		}
	}
	return nil
}

// Keys returns filter query keys in order.
func (f Filters) Keys() []string {
	keys := make([]string, 0, len(f))
	for _, filter := range f {
		keys = append(keys, filter.Key)
	}
	return keys
}

// Row is one server-shaped record. Fields beyond "id" are addressed by the
// column configuration, never by Go code.
type Row map[string]any

// ID returns the row's unique id as a string; the platform sends either a
// number or a string.
func (r Row) ID() string {
	switch id := r["id"].(type) {
	case string:
		return id
	case float64:
		if id == float64(int64(id)) {
			return fmt.Sprintf("%d", int64(id))
		}
		return fmt.Sprintf("%v", id)
	case int:
		return fmt.Sprintf("%d", id)
	case int64:
		return fmt.Sprintf("%d", id)
	case json.Number:
		return id.String()
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", id)
	}
}

// Truthy reports whether a cell value belongs to the boolean-column truthy
// set {1, true, "1", "true"}.
func Truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val == 1
	case int:
		return val == 1
	case int64:
		return val == 1
	case string:
		return val == "1" || val == "true"
	case json.Number:
		return val.String() == "1"
	}
	return false
}

// IsAbsoluteImageURL reports whether a value is renderable as an image:
// image-typed cells only render absolute http(s) URLs.
func IsAbsoluteImageURL(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
