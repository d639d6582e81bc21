package rejectlog

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ratebah20/HR-plateform-learning/internal/schema"
)

func TestLog_WritesOneLinePerCell(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "rejects.csv")
	l, err := Create(path, "suivi")
	require.NoError(t, err)

	du := schema.Field{Header: "DU", Name: "date_du", Kind: schema.KindDate}
	tarif := schema.Field{Header: "TARIF HT", Name: "tarif_ht", Kind: schema.KindNumeric}
	l.Add(2, tarif, "12,5")
	l.Add(4, du, "31/04/2025")
	l.Add(7, du, "bientôt")
	require.NoError(t, l.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	lines, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"job", "data_row", "column", "kind", "value"},
		{"suivi", "2", "TARIF HT", "numeric", "12,5"},
		{"suivi", "4", "DU", "date", "31/04/2025"},
		{"suivi", "7", "DU", "date", "bientôt"},
	}, lines)
	assert.Equal(t, map[string]int{"date_du": 2, "tarif_ht": 1}, l.Counts())
	assert.Equal(t, path, l.Path())
}

func TestLog_EmptyHasHeaderOnly(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rejects.csv")
	l, err := Create(path, "olu")
	require.NoError(t, err)
	require.NoError(t, l.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "job,data_row,column,kind,value\n", string(b))
}

func TestCreate_UnwritablePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err := Create(filepath.Join(blocker, "rejects.csv"), "plan")
	assert.Error(t, err)
}
