package table

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/propscale/broker-admin/pkg/schema"
)

func text(s string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(s))
		return err
	})
}

func stringify(v any) string {
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
	case json.Number:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

// TextCell renders the value as escaped text; nil becomes an em-dash
// placeholder.
func TextCell(v any) templ.Component {
	s := stringify(v)
	if s == "" {
		return text("—")
	}
	return text(s)
}

// BooleanCell renders the Yes/No pill. Anything outside the truthy set
// {1, true, "1", "true"} renders as No.
func BooleanCell(v any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if schema.Truthy(v) {
			_, err := io.WriteString(w, `<span class="pill pill-yes">Yes</span>`)
			return err
		}
		_, err := io.WriteString(w, `<span class="pill pill-no">No</span>`)
		return err
	})
}

// ImageCell renders a thumbnail for absolute http(s) URLs and falls back to
// text for everything else.
func ImageCell(v any) templ.Component {
	if !schema.IsAbsoluteImageURL(v) {
		return TextCell(v)
	}
	src := v.(string)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<img class="cell-image" src="%s" alt="" loading="lazy">`,
			templ.EscapeString(src))
		return err
	})
}

// JSONCell renders structured values as their compact JSON encoding.
func JSONCell(v any) templ.Component {
	if v == nil {
		return text("—")
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return TextCell(v)
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, werr := fmt.Fprintf(w, `<code class="cell-json">%s</code>`, templ.EscapeString(string(encoded)))
		return werr
	})
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DateCell renders server timestamps in a compact human form; values that do
// not parse pass through as text.
func DateCell(v any) templ.Component {
	s := stringify(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return text(t.Format("Jan 2, 2006 15:04"))
		}
	}
	return TextCell(v)
}

// CellFor dispatches a row value to the renderer for its column kind.
func CellFor(kind schema.ColumnKind, v any) templ.Component {
	switch kind {
	case schema.ColumnBoolean:
		return BooleanCell(v)
	case schema.ColumnImage:
		return ImageCell(v)
	case schema.ColumnJSON:
		return JSONCell(v)
	case schema.ColumnDate:
		return DateCell(v)
	case schema.ColumnNumber, schema.ColumnText:
		return TextCell(v)
	}
	return TextCell(v)
}
