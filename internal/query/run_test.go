package query

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/criteria"
)

func TestRunCollectsDataset(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"cnpj", "razao_social", "capital_social"}).
		AddRow("11222333000181", "Padaria Bom Pao", 15000.0).
		AddRow("99888777000166", nil, nil)
	mock.ExpectQuery("SELECT \\* FROM visao_empresa_agrupada_base").WillReturnRows(rows)

	q := &Compiled{
		SQL:    "SELECT * FROM visao_empresa_agrupada_base WHERE situacao_cadastral = 'ATIVA'",
		Params: map[string]any{},
	}
	ds, err := Run(context.Background(), mock, q)
	require.NoError(t, err)

	assert.Equal(t, []string{"cnpj", "razao_social", "capital_social"}, ds.Columns())
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "Padaria Bom Pao", ds.Cell(0, "razao_social").String)
	assert.Equal(t, "15000", ds.Cell(0, "capital_social").String)
	assert.False(t, ds.Cell(1, "razao_social").Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT \\* FROM visao_empresa_agrupada_base").
		WillReturnError(assert.AnError)

	q := &Compiled{SQL: "SELECT * FROM visao_empresa_agrupada_base WHERE situacao_cadastral = 'ATIVA'", Params: map[string]any{}}
	_, err = Run(context.Background(), mock, q)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query: execute")
}

func TestGenerateBindsCriteriaAndExclusion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := criteria.Criteria{}
	require.NoError(t, c.Set(criteria.FieldState, criteria.TextList{"SC"}))
	exclude := criteria.NewExclusionSet("11222333000181")

	rows := pgxmock.NewRows([]string{"cnpj", "uf"}).AddRow("99888777000166", "SC")
	mock.ExpectQuery("SELECT \\* FROM visao_empresa_agrupada_base WHERE situacao_cadastral = 'ATIVA' AND \\(unaccent\\(upper\\(uf\\)\\) = @uf_0\\) AND cnpj NOT IN \\(@excl_0\\)").
		WithArgs(pgx.NamedArgs{"uf_0": "SC", "excl_0": "11222333000181"}).
		WillReturnRows(rows)

	ds, q, err := Generate(context.Background(), mock, c, exclude, Options{})
	require.NoError(t, err)

	assert.Equal(t, "SC", q.Params["uf_0"])
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, "99888777000166", ds.Cell(0, "cnpj").String)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGenerateRejectsInvalidCriteria(t *testing.T) {
	c := criteria.Criteria{
		criteria.FieldCapital: criteria.NumericRange{Min: 10, Max: 1},
	}
	_, _, err := Generate(context.Background(), nil, c, nil, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min > max")
}
