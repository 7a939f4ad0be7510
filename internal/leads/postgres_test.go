package leads

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgres_SaveSkipsAlreadySaved(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT cnpj FROM tb_leads_gerados WHERE cliente_referencia").
		WithArgs("acme").
		WillReturnRows(pgxmock.NewRows([]string{"cnpj"}).AddRow("11222333000181"))
	mock.ExpectCopyFrom(pgx.Identifier{Table}, allColumns()).WillReturnResult(1)

	st := NewPostgresFromPool(mock)
	res, err := st.Save(context.Background(), testBatch("acme", "11222333000181", "99888777000166"))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveNothingNew(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT cnpj FROM tb_leads_gerados WHERE cliente_referencia").
		WithArgs("acme").
		WillReturnRows(pgxmock.NewRows([]string{"cnpj"}).AddRow("11222333000181"))

	st := NewPostgresFromPool(mock)
	res, err := st.Save(context.Background(), testBatch("acme", "11222333000181"))
	require.NoError(t, err)

	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SavedKeysError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT cnpj FROM tb_leads_gerados").
		WithArgs("acme").
		WillReturnError(assert.AnError)

	st := NewPostgresFromPool(mock)
	_, err = st.SavedKeys(context.Background(), "acme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query saved keys")
}

func TestPostgres_ClientReferences(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT DISTINCT cliente_referencia FROM tb_leads_gerados").
		WillReturnRows(pgxmock.NewRows([]string{"cliente_referencia"}).
			AddRow("acme").
			AddRow("globex"))

	st := NewPostgresFromPool(mock)
	refs, err := st.ClientReferences(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "globex"}, refs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListByClients(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT \\* FROM tb_leads_gerados WHERE cliente_referencia = ANY").
		WithArgs(pgx.NamedArgs{"refs": []string{"acme"}}).
		WillReturnRows(pgxmock.NewRows([]string{"cnpj", "cliente_referencia"}).
			AddRow("11222333000181", "acme"))

	st := NewPostgresFromPool(mock)
	ds, err := st.ListByClients(context.Background(), []string{"acme"})
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, "11222333000181", ds.Cell(0, "cnpj").String)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListByClients_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	st := NewPostgresFromPool(mock)
	ds, err := st.ListByClients(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Migrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS tb_leads_gerados").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	st := NewPostgresFromPool(mock)
	require.NoError(t, st.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveDedupesWithinBatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT cnpj FROM tb_leads_gerados WHERE cliente_referencia").
		WithArgs("acme").
		WillReturnRows(pgxmock.NewRows([]string{"cnpj"}))
	mock.ExpectCopyFrom(pgx.Identifier{Table}, allColumns()).WillReturnResult(1)

	st := NewPostgresFromPool(mock)
	res, err := st.Save(context.Background(), testBatch("acme", "11222333000181", "11222333000181"))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveRefreshUpsertsInPlace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// No SavedKeys lookup: refresh writes every row, existing or not.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TEMP TABLE "_upsert_tb_leads_gerados"`)).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_upsert_tb_leads_gerados"}, allColumns()).
		WillReturnResult(2)
	mock.ExpectExec(regexp.QuoteMeta(`ON CONFLICT ("cnpj", "cliente_referencia") DO UPDATE SET`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	b := testBatch("acme", "11222333000181", "99888777000166")
	b.Refresh = true

	st := NewPostgresFromPool(mock)
	res, err := st.Save(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 0, res.Skipped)
	assert.NoError(t, mock.ExpectationsWereMet())
}
