package regform

import (
	"io/fs"

	"github.com/craftmerge/go-regform/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in page templates so callers can reuse
// or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// EmbeddedAssets exposes the bundled stylesheet.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(regform.EmbeddedAssets()),
//	  ),
//	)
func EmbeddedAssets() fs.FS {
	return html.AssetsFS()
}
