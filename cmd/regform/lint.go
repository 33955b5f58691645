package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/craftmerge/go-regform/pkg/contract"
	"github.com/craftmerge/go-regform/pkg/model"
	"github.com/craftmerge/go-regform/pkg/schema"
	"github.com/craftmerge/go-regform/pkg/validation"
)

type violation struct {
	file     string
	location string
	message  string
}

func (v violation) String() string {
	if v.location == "" {
		return fmt.Sprintf("%s: %s", v.file, v.message)
	}
	return fmt.Sprintf("%s: %s -> %s", v.file, v.location, v.message)
}

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Check form schema files; the bundled forms when no path is given",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := contract.Default()
			if err != nil {
				return err
			}
			linter := schemaLinter{engine: validation.New(), contract: api}

			var violations []violation
			if len(args) == 0 {
				violations, err = linter.lintFS(schema.EmbeddedFS(), "embedded")
			} else {
				violations, err = linter.lintPaths(args)
			}
			if err != nil {
				return err
			}
			for _, v := range violations {
				fmt.Fprintln(cmd.ErrOrStderr(), v)
			}
			if len(violations) > 0 {
				return fmt.Errorf("%d problem(s) found", len(violations))
			}
			return nil
		},
	}
}

type schemaLinter struct {
	engine   *validation.Engine
	contract *contract.Contract
}

func (l schemaLinter) lintPaths(paths []string) ([]violation, error) {
	var result []violation
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("lint %s: %w", path, err)
		}
		if info.IsDir() {
			found, err := l.lintFS(os.DirFS(path), path)
			if err != nil {
				return nil, err
			}
			result = append(result, found...)
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("lint %s: %w", path, err)
		}
		result = append(result, l.lintFile(path, data)...)
	}
	sortViolations(result)
	return result, nil
}

func (l schemaLinter) lintFS(fsys fs.FS, root string) ([]violation, error) {
	var result []violation
	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml", ".json":
		default:
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		result = append(result, l.lintFile(filepath.Join(root, path), data)...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("lint %s: %w", root, err)
	}
	sortViolations(result)
	return result, nil
}

func (l schemaLinter) lintFile(file string, data []byte) []violation {
	form, err := schema.Parse(data, file)
	if err != nil {
		return []violation{{file: file, message: err.Error()}}
	}

	var result []violation
	add := func(location, format string, args ...any) {
		result = append(result, violation{file: file, location: location, message: fmt.Sprintf(format, args...)})
	}

	if err := l.engine.CheckSchema(form); err != nil {
		add("", "%v", err)
	}
	if form.Operation != "" && l.contract != nil {
		if _, err := l.contract.Endpoint(form.Operation); err != nil {
			add("operation", "%v", err)
		}
	}
	if strings.TrimSpace(form.Messages.Success) == "" {
		add("messages", "success message is empty")
	}
	if strings.TrimSpace(form.Messages.General) == "" {
		add("messages", "general message is empty")
	}

	for _, field := range form.Fields {
		location := "fields > " + field.Key
		if hasFormat(field) && strings.TrimSpace(field.FormatMessage) == "" {
			add(location, "format %q has no formatMessage", formatName(field))
		}
		seen := make(map[string]struct{}, len(field.Options))
		for _, opt := range field.Options {
			if _, dup := seen[opt.Value]; dup {
				add(location, "option %q declared twice", opt.Value)
			}
			seen[opt.Value] = struct{}{}
		}
	}
	return result
}

func hasFormat(field model.Field) bool {
	return field.Format != "" || field.Kind == model.KindNumber
}

func formatName(field model.Field) string {
	if field.Format != "" {
		return field.Format
	}
	return validation.FormatNumber
}

func sortViolations(v []violation) {
	sort.Slice(v, func(i, j int) bool {
		if v[i].file == v[j].file {
			if v[i].location == v[j].location {
				return v[i].message < v[j].message
			}
			return v[i].location < v[j].location
		}
		return v[i].file < v[j].file
	})
}
