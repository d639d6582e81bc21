package jobs

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
)

func TestCatalogueIsWellFormed(t *testing.T) {
	t.Parallel()

	if got, want := Names(), []string{"budget", "olu", "plan", "recueil", "suivi"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for _, s := range All() {
		if err := s.Check(); err != nil {
			t.Fatalf("%s: %v", s.Name, err)
		}
	}
}

func TestJobShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec      schema.Spec
		columns   int
		procedure string
		param     schema.ParamKind
	}{
		{OLU, 10, "sp_ImporterDonneesOLU", schema.ParamDate},
		{Budget, 8, "sp_ImporterBudgetFormation", schema.ParamYear},
		{Plan, 16, "sp_ImporterPlanFormation", schema.ParamYear},
		{Recueil, 13, "sp_ImporterRecueilBesoins", schema.ParamYear},
		{Suivi, 13, "sp_ImporterDonneesSuiviFormation", schema.ParamDate},
	}
	for _, tt := range tests {
		if n := len(tt.spec.Columns()); n != tt.columns {
			t.Fatalf("%s: %d columns, want %d", tt.spec.Name, n, tt.columns)
		}
		if tt.spec.Procedure != tt.procedure || tt.spec.Param.Kind != tt.param {
			t.Fatalf("%s: procedure/param = %s/%s", tt.spec.Name, tt.spec.Procedure, tt.spec.Param.Kind)
		}
		if tt.param == schema.ParamYear && !tt.spec.Param.Required {
			t.Fatalf("%s: year parameter must be required", tt.spec.Name)
		}
	}
}

func TestKinds(t *testing.T) {
	t.Parallel()

	kinds := func(s schema.Spec, k schema.Kind) []string {
		var out []string
		for _, f := range s.Fields {
			if f.Kind == k {
				out = append(out, f.Name)
			}
		}
		return out
	}
	check := func(name string, got, want []string) {
		t.Helper()
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("%s = %v, want %v", name, got, want)
		}
	}

	check("olu dates", kinds(OLU, schema.KindDate), []string{"date_inscription", "date_achevement"})
	check("olu numeric", kinds(OLU, schema.KindNumeric), []string{"heures_formation"})
	check("budget numeric", kinds(Budget, schema.KindNumeric), []string{"tarif_ht", "budget", "semestre_validation"})
	check("plan numeric", kinds(Plan, schema.KindNumeric), []string{"priorite", "duree", "budget"})
	check("plan flags", kinds(Plan, schema.KindBoolPrefix), []string{"obligatoire", "validee"})
	check("recueil numeric", kinds(Recueil, schema.KindNumeric), []string{"priorite", "duree", "tarif_ht"})
	check("suivi dates", kinds(Suivi, schema.KindDate), []string{"date_du", "date_au"})
	check("suivi numeric", kinds(Suivi, schema.KindNumeric), []string{"duree", "tarif_ht"})
}

// TestEveryJobReportsEveryMissingColumn drops each required column in turn
// and then all of them.
func TestEveryJobReportsEveryMissingColumn(t *testing.T) {
	t.Parallel()

	for _, s := range All() {
		required := s.RequiredColumns()
		for i := range required {
			headers := append(append([]string{"EXTRA"}, required[:i]...), required[i+1:]...)
			err := s.Validate(schema.RecordSet{Headers: headers})
			var verr *schema.ValidationError
			if !errors.As(err, &verr) || len(verr.Missing) != 1 || verr.Missing[0] != required[i] {
				t.Fatalf("%s without %q: %v", s.Name, required[i], err)
			}
		}
		err := s.Validate(schema.RecordSet{Headers: []string{"EXTRA"}})
		for _, col := range required {
			if !strings.Contains(err.Error(), col) {
				t.Fatalf("%s: error %q does not name %q", s.Name, err, col)
			}
		}
	}
}

func TestEveryJobAcceptsShuffledSuperset(t *testing.T) {
	t.Parallel()

	for _, s := range All() {
		required := s.RequiredColumns()
		headers := []string{"Extra 1"}
		for i := len(required) - 1; i >= 0; i-- {
			headers = append(headers, "  "+required[i]+" ")
		}
		if err := s.Validate(schema.RecordSet{Headers: headers}); err != nil {
			t.Fatalf("%s: %v", s.Name, err)
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	s, err := Lookup("budget")
	if err != nil || s.StagingTable != "TempBudget" {
		t.Fatalf("Lookup(budget) = %+v, %v", s, err)
	}
	if _, err := Lookup("paie"); err == nil {
		t.Fatal("Lookup(paie) = nil error")
	}
}
