// Package leads persists generated lead batches. A batch is the result of
// one generation run: the selected company rows plus the profile score and
// the client it was generated for. Saving is idempotent per client: a
// company already saved for the same client reference is never written
// twice.
package leads

import (
	"context"
	"time"

	"github.com/sells-group/leadgen-cli/internal/dataset"
)

// Table is the lead sink table name.
const Table = "tb_leads_gerados"

// ViewColumns are the company-view columns carried into the sink, in
// insert order. Absent dataset columns insert as NULL.
var ViewColumns = []string{
	"cnpj", "razao_social", "nome_fantasia", "identificador_matriz_filial", "data_inicio_atividade",
	"capital_social", "cod_cnae_principal", "cnae_principal", "cod_cnae_secundario", "cnae_secundario",
	"porte_empresa", "natureza_juridica", "opcao_simples", "opcao_mei", "motivo", "situacao_cadastral",
	"data_situacao_cadastral", "uf", "municipio", "bairro", "logradouro", "numero", "complemento", "cep",
	"latitude", "longitude", "ddd1", "telefone1", "ddd2", "telefone2", "email",
	"qtde_socios", "nomes_socios", "cpfs_socios", "datas_entrada", "qualificacoes", "faixas_etarias",
}

// MetaColumns are the generation-metadata columns appended to every saved
// row.
var MetaColumns = []string{"pontuacao", "data_geracao", "cliente_referencia", "geracao_id"}

// Batch is one generation run ready to persist.
type Batch struct {
	ClientReference string
	Score           int
	GenerationID    string    // empty means assign a fresh one on save
	GeneratedAt     time.Time // zero means now
	Refresh         bool      // update rows already saved for the client instead of skipping them
	Rows            *dataset.Dataset
}

// SaveResult reports what one save did.
type SaveResult struct {
	GenerationID string
	Inserted     int
	Skipped      int // rows already saved for the client, or without a key
}

// Store is the lead sink. Implementations exist for Postgres (the shared
// research database) and SQLite (local runs).
type Store interface {
	// Save writes the batch's rows, skipping companies already saved for
	// the batch's client reference, or updating them in place when the
	// batch sets Refresh.
	Save(ctx context.Context, b Batch) (*SaveResult, error)

	// SavedKeys returns the company keys already saved for a client.
	SavedKeys(ctx context.Context, clientReference string) (map[string]struct{}, error)

	// ClientReferences lists the distinct clients with saved leads, sorted.
	ClientReferences(ctx context.Context) ([]string, error)

	// ListByClients returns all saved leads for the given clients.
	ListByClients(ctx context.Context, clientReferences []string) (*dataset.Dataset, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// allColumns is the full insert column list: view columns then metadata.
func allColumns() []string {
	cols := make([]string, 0, len(ViewColumns)+len(MetaColumns))
	cols = append(cols, ViewColumns...)
	return append(cols, MetaColumns...)
}

// rowValues assembles one insert row from the batch's dataset, or nil when
// the row has no usable key.
func rowValues(b Batch, i int, genID string, at time.Time) []any {
	key := b.Rows.Cell(i, "cnpj")
	if !key.Valid || key.IsBlank() {
		return nil
	}

	values := make([]any, 0, len(ViewColumns)+len(MetaColumns))
	for _, col := range ViewColumns {
		if !b.Rows.HasColumn(col) {
			values = append(values, nil)
			continue
		}
		c := b.Rows.Cell(i, col)
		if !c.Valid {
			values = append(values, nil)
			continue
		}
		values = append(values, c.String)
	}
	return append(values, b.Score, at, b.ClientReference, genID)
}
