package transformer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
)

func TestCoerceField_Numeric(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		present bool
		want    string // "" means nil
		ok      bool
	}{
		{"1234.50", true, "1234.5", true},
		{" 42 ", true, "42", true},
		{"-3", true, "-3", true},
		{"12,5", true, "", false},
		{"n/a", true, "", false},
		{"", true, "", true},
		{"   ", true, "", true},
		{"", false, "", true},
	}
	for _, tt := range tests {
		v, ok := CoerceField(schema.KindNumeric, tt.raw, tt.present)
		if ok != tt.ok {
			t.Fatalf("numeric %q: ok = %v, want %v", tt.raw, ok, tt.ok)
		}
		if tt.want == "" {
			if v != nil {
				t.Fatalf("numeric %q = %#v, want nil", tt.raw, v)
			}
			continue
		}
		d, isDec := v.(decimal.Decimal)
		if !isDec {
			t.Fatalf("numeric %q = %T, want decimal.Decimal", tt.raw, v)
		}
		if !d.Equal(decimal.RequireFromString(tt.want)) {
			t.Fatalf("numeric %q = %s, want %s", tt.raw, d, tt.want)
		}
	}
}

func TestCoerceField_NumericIsExact(t *testing.T) {
	t.Parallel()

	v, _ := CoerceField(schema.KindNumeric, "0.1", true)
	w, _ := CoerceField(schema.KindNumeric, "0.2", true)
	sum := v.(decimal.Decimal).Add(w.(decimal.Decimal))
	if !sum.Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("0.1 + 0.2 = %s, want 0.3", sum)
	}
}

func TestCoerceField_Date(t *testing.T) {
	t.Parallel()

	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	tests := []struct {
		raw  string
		want any
		ok   bool
	}{
		{"2025-03-15", day(2025, time.March, 15), true},
		{"2025-03-15 14:30:00", day(2025, time.March, 15), true},
		{"15/03/2025", day(2025, time.March, 15), true},
		{"31/04/2025", nil, false},
		{"not a date", nil, false},
		{"", nil, true},
	}
	for _, tt := range tests {
		got, ok := CoerceField(schema.KindDate, tt.raw, true)
		if ok != tt.ok {
			t.Fatalf("date %q: ok = %v, want %v", tt.raw, ok, tt.ok)
		}
		if tt.want == nil {
			if got != nil {
				t.Fatalf("date %q = %v, want nil", tt.raw, got)
			}
			continue
		}
		if !got.(time.Time).Equal(tt.want.(time.Time)) {
			t.Fatalf("date %q = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestCoerceField_BoolPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		present bool
		want    bool
	}{
		{"Oui", true, true},
		{"oui ", true, true},
		{"  OBLIGATOIRE", true, true},
		{"o", true, true},
		{"Non", true, false},
		{"", true, false},
		{"", false, false},
		{"yes", true, false},
	}
	for _, tt := range tests {
		v, ok := CoerceField(schema.KindBoolPrefix, tt.raw, tt.present)
		if !ok || v != tt.want {
			t.Fatalf("bool_prefix %q = %v (ok=%v), want %v", tt.raw, v, ok, tt.want)
		}
	}
}

func TestCoerceField_Text(t *testing.T) {
	t.Parallel()

	if v, _ := CoerceField(schema.KindText, "  Acme  ", true); v != "  Acme  " {
		t.Fatalf("text kept = %q", v)
	}
	if v, _ := CoerceField(schema.KindText, "", true); v != nil {
		t.Fatalf("empty text = %#v, want nil", v)
	}
	if v, _ := CoerceField(schema.KindText, "x", false); v != nil {
		t.Fatalf("absent text = %#v, want nil", v)
	}
}

func TestApply_RowsAndStats(t *testing.T) {
	t.Parallel()

	c := Coerce{Fields: []schema.Field{
		{Header: "NOM FORMATION", Name: "nom_formation", Kind: schema.KindText},
		{Header: "TARIF HT", Name: "tarif_ht", Kind: schema.KindNumeric},
		{Header: "VALIDEE", Name: "validee", Kind: schema.KindBoolPrefix},
		{Header: "DU", Name: "date_du", Kind: schema.KindDate},
	}}
	rows := []schema.Row{
		{"NOM FORMATION": "Excel", "TARIF HT": "1200", "VALIDEE": "Oui", "DU": "2025-01-10"},
		{"NOM FORMATION": "Go", "TARIF HT": "12,5", "VALIDEE": "Non", "DU": "31/04/2025"},
		{},
	}

	recs, st := c.Apply(rows)
	if len(recs) != 3 {
		t.Fatalf("len(recs) = %d, want 3", len(recs))
	}
	for i, r := range recs {
		if len(r) != 4 {
			t.Fatalf("record %d has %d fields, want 4", i, len(r))
		}
	}
	if recs[0]["validee"] != true || recs[1]["validee"] != false || recs[2]["validee"] != false {
		t.Fatalf("validee = %v %v %v", recs[0]["validee"], recs[1]["validee"], recs[2]["validee"])
	}
	if recs[1]["tarif_ht"] != nil || recs[1]["date_du"] != nil {
		t.Fatalf("row 1 degraded cells = %v %v, want nil", recs[1]["tarif_ht"], recs[1]["date_du"])
	}
	if recs[1]["nom_formation"] != "Go" {
		t.Fatalf("row 1 text = %v", recs[1]["nom_formation"])
	}

	if st.Rows != 3 || st.ParsedRows != 2 || st.EmptyRows != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if st.NullCells["tarif_ht"] != 1 || st.NullCells["date_du"] != 1 || st.TotalNullCells() != 2 {
		t.Fatalf("null cells = %v", st.NullCells)
	}
}

func TestApply_NormalizesFieldHeader(t *testing.T) {
	t.Parallel()

	c := Coerce{Fields: []schema.Field{
		{Header: "Récapitulatif - Statut", Name: "statut", Kind: schema.KindText},
	}}
	recs, _ := c.Apply([]schema.Row{{schema.NormalizeHeader("Récapitulatif - Statut"): "Terminé"}})
	if recs[0]["statut"] != "Terminé" {
		t.Fatalf("statut = %v", recs[0]["statut"])
	}
}

func TestApply_ReportsRejectedCells(t *testing.T) {
	t.Parallel()

	type reject struct {
		row   int
		field string
		raw   string
	}
	var got []reject
	c := Coerce{
		Fields: []schema.Field{
			{Header: "TARIF HT", Name: "tarif_ht", Kind: schema.KindNumeric},
			{Header: "DU", Name: "date_du", Kind: schema.KindDate},
		},
		OnReject: func(row int, f schema.Field, raw string) {
			got = append(got, reject{row, f.Name, raw})
		},
	}
	c.Apply([]schema.Row{
		{"TARIF HT": "100", "DU": "2025-01-06"},
		{"TARIF HT": "12,5", "DU": ""},
		{"TARIF HT": "", "DU": "31/04/2025"},
	})

	want := []reject{{2, "tarif_ht", "12,5"}, {3, "date_du", "31/04/2025"}}
	if len(got) != len(want) {
		t.Fatalf("rejects = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rejects[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
