package html

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

// templateExt is appended to page names that carry no extension.
const templateExt = ".html"

// engine caches compiled templates of a pongo2 set.
type engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

func newEngine(files fs.FS, baseDir string) (*engine, error) {
	var loaders []pongo2.TemplateLoader
	if baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(baseDir)
		if err != nil {
			return nil, fmt.Errorf("html: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(files))
	}
	if len(loaders) == 0 {
		return nil, errors.New("html: need to provide either base dir or fs.FS")
	}
	return &engine{
		set:       pongo2.NewSet("regform", loaders...),
		templates: make(map[string]*pongo2.Template),
	}, nil
}

func (e *engine) globals(data map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = make(pongo2.Context)
	}
	e.set.Globals.Update(pongo2.Context(data))
}

func (e *engine) execute(name string, ctx pongo2.Context, w io.Writer) error {
	if !strings.HasSuffix(name, templateExt) {
		name += templateExt
	}
	tmpl, err := e.template(name)
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteWriter(ctx, w); err != nil {
		return fmt.Errorf("html: execute template %q: %w", name, err)
	}
	return nil
}

func (e *engine) template(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("html: load template %q: %w", path, err)
	}
	e.templates[path] = tmpl
	return tmpl, nil
}
