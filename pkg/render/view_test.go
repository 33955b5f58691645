package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/craftmerge/go-regform/pkg/model"
)

func TestNewFormView(t *testing.T) {
	schema := model.Schema{
		ID:    "startup",
		Title: "Registration",
		Fields: []model.Field{
			{Key: "email", Kind: model.KindText, Label: "Email", Required: true, Metadata: map[string]string{"input": "email"}},
			{Key: "password", Kind: model.KindPassword, Label: "Password"},
			{Key: "entityType", Kind: model.KindChoice, Options: []model.Option{
				{Value: "sole_proprietor", Label: "Sole proprietor"},
				{Value: "legal_entity", Label: "Legal entity"},
			}},
			{Key: "amount", Kind: model.KindNumber},
		},
	}
	state := model.InitialState(schema).
		With("email", model.Text("ann@startup.io")).
		With("password", model.Text("secret")).
		With("entityType", model.Choice("legal_entity"))
	errs := model.ValidationErrors{"email": "taken", model.GeneralKey: "boom"}

	view := NewFormView(schema, state, errs, "", model.StatusFailed)

	if view.General != "boom" || view.Busy {
		t.Fatalf("unexpected header %+v", view)
	}
	email, _ := view.Field("email")
	if email.Input != "email" || email.Value != "ann@startup.io" || email.Error != "taken" {
		t.Fatalf("unexpected email view %+v", email)
	}
	password, _ := view.Field("password")
	if password.Value != "" || password.Input != "password" {
		t.Fatalf("password must not be echoed: %+v", password)
	}
	entity, _ := view.Field("entityType")
	want := []OptionView{
		{Value: "sole_proprietor", Label: "Sole proprietor"},
		{Value: "legal_entity", Label: "Legal entity", Selected: true},
	}
	if diff := cmp.Diff(want, entity.Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if entity.Multiple() {
		t.Fatalf("choice must not be multiple")
	}
	if amount, _ := view.Field("amount"); amount.Input != "number" {
		t.Fatalf("unexpected amount input %q", amount.Input)
	}

	invalid := view.Invalid()
	if len(invalid) != 1 || invalid[0].Key != "email" {
		t.Fatalf("unexpected invalid fields %+v", invalid)
	}
}
