package render

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/craftmerge/go-regform/pkg/model"
)

// ErrorMapping splits a server error payload into messages keyed by schema
// field keys and form-level messages that match no field.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// First returns the first message recorded for every mapped field.
func (m ErrorMapping) First() model.ValidationErrors {
	out := make(model.ValidationErrors, len(m.Fields))
	for key, msgs := range m.Fields {
		if len(msgs) > 0 {
			out[key] = msgs[0]
		}
	}
	return out
}

// MapErrorPayload resolves the names a server used for rejected fields onto
// schema keys. Names may be payload names ("company_name"), schema keys
// ("companyName"), JSON pointers ("/email/0") or wrapped paths
// ("body.email"). Unknown names become form-level messages so nothing is lost.
func MapErrorPayload(schema model.Schema, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	if len(payload) == 0 {
		mapping.Fields = nil
		return mapping
	}

	names := collectFieldNames(schema)

	for _, rawPath := range slices.Sorted(maps.Keys(payload)) {
		messages := normalizeMessages(payload[rawPath])
		if len(messages) == 0 {
			continue
		}

		key, formLevel := mapErrorPath(rawPath, names)
		if formLevel {
			mapping.Form = append(mapping.Form, messages...)
			continue
		}
		mapping.Fields[key] = normalizeMessages(append(mapping.Fields[key], messages...))
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// collectFieldNames indexes every name a field may be reported under.
func collectFieldNames(schema model.Schema) map[string]string {
	names := make(map[string]string, len(schema.Fields)*2)
	for _, field := range schema.Fields {
		names[field.Key] = field.Key
		if field.API != "" {
			names[field.API] = field.Key
		}
	}
	return names
}

func mapErrorPath(raw string, names map[string]string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if isFormLevelKey(trimmed) {
		return "", true
	}

	segments := parsePathSegments(trimmed)
	if len(segments) == 0 {
		return "", true
	}

	for _, variant := range buildSegmentVariants(segments) {
		if key, ok := names[variant[0]]; ok {
			return key, false
		}
	}
	return "", true
}

func parsePathSegments(path string) []string {
	clean := strings.TrimSpace(path)
	clean = strings.TrimPrefix(clean, "#/")
	clean = strings.TrimPrefix(clean, "$.")
	clean = strings.TrimLeft(clean, "#/.$")

	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	clean = strings.Trim(clean, "./")
	if clean == "" {
		return nil
	}

	parts := strings.FieldsFunc(clean, func(r rune) bool {
		return r == '.' || r == '/'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.TrimSpace(part)
		if segment == "" {
			continue
		}
		segment = strings.ReplaceAll(segment, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		out = append(out, segment)
	}
	return out
}

func buildSegmentVariants(segments []string) [][]string {
	var variants [][]string
	appendVariant := func(candidate []string) {
		if len(candidate) > 0 {
			variants = append(variants, candidate)
		}
	}

	appendVariant(segments)
	noWrappers := dropWrapperSegments(segments)
	appendVariant(noWrappers)
	appendVariant(stripNumericSegments(noWrappers))
	return variants
}

func dropWrapperSegments(segments []string) []string {
	out := segments
	for len(out) > 0 {
		switch strings.ToLower(out[0]) {
		case "body", "request", "payload", "data", "attributes", "errors":
			out = out[1:]
			continue
		}
		break
	}
	return out
}

func stripNumericSegments(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "detail", model.GeneralKey, "__all__", "non_field_errors", "non-field-errors":
		return true
	default:
		return false
	}
}
