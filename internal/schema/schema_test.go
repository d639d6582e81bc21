package schema

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func budgetLike() Spec {
	return Spec{
		Name: "budget",
		Fields: []Field{
			{Header: "ORGANISME FORMATION", Name: "organisme_formation", Kind: KindText},
			{Header: "TARIF HT", Name: "tarif_ht", Kind: KindNumeric},
			{Header: "BUDGET", Name: "budget", Kind: KindNumeric},
			{Header: "Commentaires", Name: "commentaires", Kind: KindText},
		},
		StagingTable: "TempBudget",
		Procedure:    "sp_ImporterBudgetFormation",
		Param:        ParamSpec{Flag: "annee", Name: "annee", Kind: ParamYear, Required: true},
	}
}

// TestValidateHeaders_SupersetAnyOrder verifies that extra columns and any
// ordering are accepted.
func TestValidateHeaders_SupersetAnyOrder(t *testing.T) {
	t.Parallel()

	required := []string{"A", "B", "C"}
	cases := [][]string{
		{"A", "B", "C"},
		{"C", "A", "B"},
		{"extra", "B", "C", "A", "more"},
		{"  A ", "B\t", " C"},
	}
	for _, observed := range cases {
		if err := ValidateHeaders(observed, required); err != nil {
			t.Fatalf("ValidateHeaders(%q) = %v, want nil", observed, err)
		}
	}
}

// TestValidateHeaders_ReportsEveryMissing verifies the error names all
// missing columns, in required order, not only the first.
func TestValidateHeaders_ReportsEveryMissing(t *testing.T) {
	t.Parallel()

	err := ValidateHeaders([]string{"B"}, []string{"A", "B", "C", "D"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v (%T), want *ValidationError", err, err)
	}
	if want := []string{"A", "C", "D"}; !reflect.DeepEqual(verr.Missing, want) {
		t.Fatalf("Missing = %q, want %q", verr.Missing, want)
	}
	for _, col := range []string{"A", "C", "D"} {
		if !strings.Contains(err.Error(), col) {
			t.Fatalf("message %q does not name %q", err.Error(), col)
		}
	}
}

// TestValidateHeaders_UnicodeComposition verifies that a decomposed accent in
// the workbook header still matches the composed required name.
func TestValidateHeaders_UnicodeComposition(t *testing.T) {
	t.Parallel()

	decomposed := "Re\u0301capitulatif - Statut"
	if err := ValidateHeaders([]string{decomposed}, []string{"R\u00e9capitulatif - Statut"}); err != nil {
		t.Fatalf("ValidateHeaders with NFD header = %v, want nil", err)
	}
}

func TestSpecValidate_EachRequiredColumnOmitted(t *testing.T) {
	t.Parallel()

	spec := budgetLike()
	all := spec.RequiredColumns()
	for i := range all {
		headers := append(append([]string{}, all[:i]...), all[i+1:]...)
		err := spec.Validate(RecordSet{Headers: headers})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("omitting %q: err = %v, want *ValidationError", all[i], err)
		}
		if len(verr.Missing) != 1 || verr.Missing[0] != all[i] {
			t.Fatalf("omitting %q: Missing = %q", all[i], verr.Missing)
		}
	}
}

func TestSpecAccessors(t *testing.T) {
	t.Parallel()

	spec := budgetLike()
	if got, want := spec.Columns(), []string{"organisme_formation", "tarif_ht", "budget", "commentaires"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Columns() = %q, want %q", got, want)
	}
	if got := spec.Mapping()["TARIF HT"]; got != "tarif_ht" {
		t.Fatalf(`Mapping()["TARIF HT"] = %q`, got)
	}
	if err := spec.Check(); err != nil {
		t.Fatalf("Check() = %v", err)
	}
}

func TestSpecCheck_FindsStructuralProblems(t *testing.T) {
	t.Parallel()

	spec := budgetLike()
	spec.Fields = append(spec.Fields,
		Field{Header: "BUDGET ", Name: "budget2", Kind: KindNumeric},
		Field{Header: "X", Name: "x", Kind: "money"},
	)
	spec.Procedure = ""

	err := spec.Check()
	if err == nil {
		t.Fatal("Check() = nil, want error")
	}
	for _, want := range []string{"duplicate header", "unknown kind", "procedure is empty"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("Check() = %q, want it to mention %q", err, want)
		}
	}
}

func TestParamSpecParse(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 5, 19, 15, 4, 5, 0, time.Local)
	year := ParamSpec{Flag: "annee", Name: "annee", Kind: ParamYear, Required: true}
	date := ParamSpec{Flag: "date", Name: "date_import", Kind: ParamDate}

	tests := []struct {
		name    string
		spec    ParamSpec
		raw     string
		want    any
		wantErr bool
	}{
		{"year ok", year, "2025", 2025, false},
		{"year missing", year, "", nil, true},
		{"year junk", year, "25", nil, true},
		{"date explicit", date, "2025-05-20", time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), false},
		{"date defaults to today", date, "", time.Date(2025, 5, 19, 0, 0, 0, 0, time.UTC), false},
		{"date wrong layout", date, "20/05/2025", nil, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.spec.Parse(tt.raw, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Parse(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}
