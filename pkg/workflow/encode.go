package workflow

import (
	"fmt"
	"strings"

	"github.com/craftmerge/go-regform/pkg/model"
	"github.com/craftmerge/go-regform/pkg/validation"
)

// RoleKey is the payload name of the schema's constant account role.
const RoleKey = "role"

// Encoder turns a validated state into a request payload.
type Encoder func(schema model.Schema, state model.State) (map[string]any, error)

// EncodePayload sends every field that declares an API name. Numbers become
// float64, multi-selects []any of strings, booleans bool and everything else
// a trimmed string, except passwords which are sent verbatim. Empty optional
// fields are left out. The schema role, when set, is added under RoleKey.
func EncodePayload(schema model.Schema, state model.State) (map[string]any, error) {
	payload := make(map[string]any, len(schema.Fields)+1)
	for _, field := range schema.Fields {
		if field.API == "" {
			continue
		}
		value := state.Value(field.Key)
		if value.Empty() && !field.Required {
			continue
		}

		switch field.Kind {
		case model.KindNumber:
			n, err := validation.ParseNumber(value.String())
			if err != nil {
				return nil, fmt.Errorf("workflow: encode %s: %w", field.Key, err)
			}
			payload[field.API] = n
		case model.KindMultiSelect:
			selected := value.Values()
			items := make([]any, 0, len(selected))
			for _, s := range selected {
				items = append(items, s)
			}
			payload[field.API] = items
		case model.KindBoolean:
			payload[field.API] = value.Bool()
		case model.KindPassword:
			payload[field.API] = value.String()
		default:
			payload[field.API] = strings.TrimSpace(value.String())
		}
	}
	if schema.Role != "" {
		payload[RoleKey] = schema.Role
	}
	return payload, nil
}
