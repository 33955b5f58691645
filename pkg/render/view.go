package render

import "github.com/craftmerge/go-regform/pkg/model"

// OptionView is a selectable entry as a renderer draws it.
type OptionView struct {
	Value    string
	Label    string
	Selected bool
}

// FieldView is one field with its current value and message.
type FieldView struct {
	Key         string
	Kind        model.FieldKind
	Label       string
	Placeholder string
	Help        string
	Required    bool
	// Input is the HTML input type: text, email, password or number.
	Input   string
	Value   string
	Options []OptionView
	Error   string
}

// Multiple reports whether more than one option may be selected.
func (f FieldView) Multiple() bool {
	return f.Kind == model.KindMultiSelect
}

// FormView is the render-ready form: schema text, current values and the
// outcome of the last submit.
type FormView struct {
	ID      string
	Title   string
	Status  model.Status
	Busy    bool
	Fields  []FieldView
	General string
	Message string
}

// NewFormView merges schema, state and errors. Password values are never
// echoed back.
func NewFormView(schema model.Schema, state model.State, errs model.ValidationErrors, message string, status model.Status) FormView {
	view := FormView{
		ID:      schema.ID,
		Title:   schema.Title,
		Status:  status,
		Busy:    status == model.StatusValidating || status == model.StatusSubmitting,
		Fields:  make([]FieldView, 0, len(schema.Fields)),
		General: errs[model.GeneralKey],
		Message: message,
	}

	for _, field := range schema.Fields {
		value := state.Value(field.Key)
		fv := FieldView{
			Key:         field.Key,
			Kind:        field.Kind,
			Label:       field.Label,
			Placeholder: field.Placeholder,
			Help:        field.Help,
			Required:    field.Required,
			Input:       inputType(field),
			Error:       errs[field.Key],
		}
		if field.Kind != model.KindPassword && !field.Kind.HasOptions() {
			fv.Value = value.String()
		}
		for _, opt := range field.Options {
			fv.Options = append(fv.Options, OptionView{
				Value:    opt.Value,
				Label:    opt.Label,
				Selected: value.Has(opt.Value),
			})
		}
		view.Fields = append(view.Fields, fv)
	}
	return view
}

// Field returns the view of key.
func (v FormView) Field(key string) (FieldView, bool) {
	for _, f := range v.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldView{}, false
}

// Invalid lists the fields that carry a message, in schema order.
func (v FormView) Invalid() []FieldView {
	var out []FieldView
	for _, f := range v.Fields {
		if f.Error != "" {
			out = append(out, f)
		}
	}
	return out
}

func inputType(field model.Field) string {
	if t := field.Metadata["input"]; t != "" {
		return t
	}
	switch field.Kind {
	case model.KindPassword:
		return "password"
	case model.KindNumber:
		return "number"
	case model.KindBoolean:
		return "checkbox"
	}
	return "text"
}
