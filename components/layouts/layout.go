// Package layouts holds the page shell shared by every rendered view.
package layouts

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/propscale/broker-admin/pkg/types"
)

// BaseProps configures the HTML shell.
type BaseProps struct {
	Title    string
	NavItems []types.NavigationItem
	// Flash is an optional one-shot message band (toast equivalent).
	Flash string
	// FlashError marks the flash band as an error.
	FlashError bool
}

// Base wraps content into the full document: head, nav sidebar, flash band.
func Base(props BaseProps, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
				`<meta name="viewport" content="width=device-width, initial-scale=1">`+
				`<title>%s</title>`+
				`<script src="https://unpkg.com/htmx.org@1.9.12"></script>`+
				`<link rel="stylesheet" href="/assets/app.css">`+
				`</head><body>`,
			templ.EscapeString(props.Title)); err != nil {
			return err
		}
		if err := nav(w, props.NavItems); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<main id="content">`); err != nil {
			return err
		}
		if props.Flash != "" {
			class := "flash"
			if props.FlashError {
				class = "flash flash-error"
			}
			if _, err := fmt.Fprintf(w, `<div class="%s" role="status">%s</div>`,
				class, templ.EscapeString(props.Flash)); err != nil {
				return err
			}
		}
		if content != nil {
			if err := content.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

func nav(w io.Writer, items []types.NavigationItem) error {
	if len(items) == 0 {
		return nil
	}
	if _, err := io.WriteString(w, `<nav class="sidebar"><ul>`); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := fmt.Fprintf(w, `<li><a href="%s">%s</a>`,
			templ.EscapeString(item.Href), templ.EscapeString(item.Name)); err != nil {
			return err
		}
		if len(item.Children) > 0 {
			if _, err := io.WriteString(w, `<ul>`); err != nil {
				return err
			}
			for _, child := range item.Children {
				if _, err := fmt.Fprintf(w, `<li><a href="%s">%s</a></li>`,
					templ.EscapeString(child.Href), templ.EscapeString(child.Name)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</ul>`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</li>`); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `</ul></nav>`)
	return err
}
