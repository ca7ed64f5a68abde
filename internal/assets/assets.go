// Package assets embeds the static files served under /assets/.
package assets

import "embed"

//go:embed app.css
var FS embed.FS
