// Package templates ships the HTML templates inside the binary.
// Point the "templates.dir" option at templates/html to edit them live instead.
package templates

import "embed"

// Root is the directory inside FS holding the *.gohtml files
const Root = "html"

//go:embed html
var FS embed.FS
