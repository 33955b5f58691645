package render

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/craftmerge/go-regform/pkg/model"
)

func errorSchema() model.Schema {
	return model.Schema{
		ID: "investor",
		Fields: []model.Field{
			{Key: "companyName", Kind: model.KindText, API: "company_name"},
			{Key: "email", Kind: model.KindText, API: "email"},
			{Key: "minInvestment", Kind: model.KindNumber, API: "investment_range_min"},
		},
	}
}

func TestMapErrorPayload(t *testing.T) {
	payload := map[string][]string{
		"email":                   {"  Ця електронна пошта вже зареєстрована ", "Ця електронна пошта вже зареєстрована"},
		"company_name":            {"taken"},
		"/investment_range_min/0": {"must be positive"},
		"non_field_errors":        {"try later"},
		"detail":                  {"try later", " "},
		"unknown":                 {"lost field"},
	}

	got := MapErrorPayload(errorSchema(), payload)
	want := ErrorMapping{
		Fields: map[string][]string{
			"email":         {"Ця електронна пошта вже зареєстрована"},
			"companyName":   {"taken"},
			"minInvestment": {"must be positive"},
		},
		Form: []string{"try later", "lost field"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mapping mismatch (-want +got):\n%s", diff)
	}

	first := got.First()
	if first["email"] != "Ця електронна пошта вже зареєстрована" {
		t.Fatalf("unexpected first message %q", first["email"])
	}
}

func TestMapErrorPayload_WrappedPaths(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"body.email", "email"},
		{"data.attributes.company_name", "companyName"},
		{"errors[0].email", "email"},
		{"#/companyName", "companyName"},
		{"$.email", "email"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got := MapErrorPayload(errorSchema(), map[string][]string{tc.path: {"bad"}})
			if _, ok := got.Fields[tc.want]; !ok {
				t.Fatalf("expected %q to map to %q, got %+v", tc.path, tc.want, got)
			}
		})
	}
}

func TestMapErrorPayload_Empty(t *testing.T) {
	got := MapErrorPayload(errorSchema(), nil)
	if got.Fields != nil || got.Form != nil {
		t.Fatalf("expected empty mapping, got %+v", got)
	}
}
