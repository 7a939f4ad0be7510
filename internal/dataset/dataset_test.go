package dataset

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellFloat(t *testing.T) {
	tests := []struct {
		name     string
		cell     Cell
		expected float64
	}{
		{"plain", V("1500.75"), 1500.75},
		{"decimal comma", V("1234,56"), 1234.56},
		{"integer", V("42"), 42},
		{"blank", V("  "), 0},
		{"null", NullCell, 0},
		{"garbage", V("n/d"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cell.Float())
		})
	}
}

func TestAppendPadsShortRows(t *testing.T) {
	d := New("a", "b", "c")
	d.Append(V("1"))
	require.Equal(t, 1, d.Len())
	assert.True(t, d.Cell(0, "a").Valid)
	assert.False(t, d.Cell(0, "b").Valid)
	assert.False(t, d.Cell(0, "c").Valid)
}

func TestColumnAbsent(t *testing.T) {
	d := New("a")
	d.AppendStrings("x")
	assert.Nil(t, d.Column("missing"))
	assert.False(t, d.HasColumn("missing"))
	assert.Equal(t, NullCell, d.Cell(0, "missing"))
}

func TestKeySetPadsAndSkipsBlank(t *testing.T) {
	d := New("cnpj")
	d.AppendStrings("123")
	d.AppendStrings("  ")
	d.Append(NullCell)
	d.AppendStrings("45678901234567")

	set := d.KeySet("cnpj", 14)
	assert.Len(t, set, 2)
	assert.Contains(t, set, "00000000000123")
	assert.Contains(t, set, "45678901234567")

	assert.Empty(t, d.KeySet("missing", 14))
}

func TestFilter(t *testing.T) {
	d := New("uf")
	d.AppendStrings("SC")
	d.AppendStrings("SP")
	d.AppendStrings("SC")

	kept := d.Filter(func(i int) bool { return d.Cell(i, "uf").String == "SC" })
	assert.Equal(t, 2, kept.Len())
	assert.Equal(t, 3, d.Len())
}

func TestZeroPad(t *testing.T) {
	assert.Equal(t, "00000123", ZeroPad("123", 8))
	assert.Equal(t, "12345678", ZeroPad("12345678", 8))
	assert.Equal(t, "123456789", ZeroPad("123456789", 8))
	assert.Equal(t, "123", ZeroPad("123", 0))
}

func TestReadCSV(t *testing.T) {
	in := "cnpj;uf;capital_social\n123;SC;1000,50\n456;;\n"
	d, err := ReadCSV(context.Background(), strings.NewReader(in), CSVOptions{Delimiter: ';'})
	require.NoError(t, err)

	assert.Equal(t, []string{"cnpj", "uf", "capital_social"}, d.Columns())
	require.Equal(t, 2, d.Len())
	assert.Equal(t, "SC", d.Cell(0, "uf").String)
	assert.Equal(t, 1000.5, d.Cell(0, "capital_social").Float())
	// CSV empty fields are valid empty strings, not NULL.
	assert.True(t, d.Cell(1, "uf").Valid)
	assert.True(t, d.Cell(1, "uf").IsBlank())
}

func TestReadCSVNoHeader(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader(""), CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header")
}
