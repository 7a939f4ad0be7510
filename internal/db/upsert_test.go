package db

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.TODO(), nil, "tb_leads_gerados",
		[]string{"cnpj", "cliente_referencia", "pontuacao"},
		[]string{"cnpj", "cliente_referencia"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_NoColumns(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, "tb_leads_gerados",
		nil, []string{"cnpj"}, [][]any{{"11222333000181"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkUpsert_NoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, "tb_leads_gerados",
		[]string{"cnpj", "pontuacao"}, nil, [][]any{{"11222333000181", 25}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestBulkUpsert_AllColumnsAreKeys(t *testing.T) {
	_, err := BulkUpsert(context.TODO(), nil, "tb_leads_gerados",
		[]string{"cnpj", "cliente_referencia"},
		[]string{"cnpj", "cliente_referencia"},
		[][]any{{"11222333000181", "acme"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "every column is a conflict key")
}

func TestBulkUpsert_MergesThroughTempTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	columns := []string{"cnpj", "cliente_referencia", "pontuacao"}
	keys := []string{"cnpj", "cliente_referencia"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`CREATE TEMP TABLE "_upsert_tb_leads_gerados" (LIKE "tb_leads_gerados" INCLUDING DEFAULTS) ON COMMIT DROP`)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_upsert_tb_leads_gerados"}, columns).
		WillReturnResult(2)
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO "tb_leads_gerados" ("cnpj", "cliente_referencia", "pontuacao") `+
			`SELECT "cnpj", "cliente_referencia", "pontuacao" FROM "_upsert_tb_leads_gerados" `+
			`ON CONFLICT ("cnpj", "cliente_referencia") DO UPDATE SET "pontuacao" = EXCLUDED."pontuacao"`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	rows := [][]any{
		{"11222333000181", "acme", 25},
		{"99888777000166", "acme", 40},
	}
	n, err := BulkUpsert(context.Background(), mock, "tb_leads_gerados", columns, keys, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_CopyFailureRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	columns := []string{"cnpj", "cliente_referencia", "pontuacao"}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TEMP TABLE "_upsert_tb_leads_gerados"`)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_upsert_tb_leads_gerados"}, columns).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = BulkUpsert(context.Background(), mock, "tb_leads_gerados", columns,
		[]string{"cnpj", "cliente_referencia"},
		[][]any{{"11222333000181", "acme", 25}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY into temp table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuoteAndJoin(t *testing.T) {
	result := quoteAndJoin([]string{"cnpj", "cliente_referencia", "pontuacao"})
	assert.Equal(t, `"cnpj", "cliente_referencia", "pontuacao"`, result)
}
