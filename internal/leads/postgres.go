package leads

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/dataset"
	"github.com/sells-group/leadgen-cli/internal/db"
	"github.com/sells-group/leadgen-cli/internal/query"
)

// PostgresStore implements Store against the shared research database.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with its own connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "leads: parse pool config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "leads: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "leads: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Close leaves the pool open;
// the caller owns it.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying pool for subsystems that query the company
// view directly.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS tb_leads_gerados (
	id                          BIGSERIAL PRIMARY KEY,
	cnpj                        TEXT NOT NULL,
	razao_social                TEXT,
	nome_fantasia               TEXT,
	identificador_matriz_filial TEXT,
	data_inicio_atividade       DATE,
	capital_social              NUMERIC,
	cod_cnae_principal          TEXT,
	cnae_principal              TEXT,
	cod_cnae_secundario         TEXT,
	cnae_secundario             TEXT,
	porte_empresa               TEXT,
	natureza_juridica           TEXT,
	opcao_simples               TEXT,
	opcao_mei                   TEXT,
	motivo                      TEXT,
	situacao_cadastral          TEXT,
	data_situacao_cadastral     TEXT,
	uf                          TEXT,
	municipio                   TEXT,
	bairro                      TEXT,
	logradouro                  TEXT,
	numero                      TEXT,
	complemento                 TEXT,
	cep                         TEXT,
	latitude                    DOUBLE PRECISION,
	longitude                   DOUBLE PRECISION,
	ddd1                        TEXT,
	telefone1                   TEXT,
	ddd2                        TEXT,
	telefone2                   TEXT,
	email                       TEXT,
	qtde_socios                 TEXT,
	nomes_socios                TEXT,
	cpfs_socios                 TEXT,
	datas_entrada               TEXT,
	qualificacoes               TEXT,
	faixas_etarias              TEXT,
	pontuacao                   INTEGER NOT NULL,
	data_geracao                TIMESTAMPTZ NOT NULL DEFAULT now(),
	cliente_referencia          TEXT NOT NULL,
	geracao_id                  TEXT NOT NULL,
	UNIQUE (cnpj, cliente_referencia)
);

CREATE INDEX IF NOT EXISTS idx_leads_cliente ON tb_leads_gerados(cliente_referencia);
CREATE INDEX IF NOT EXISTS idx_leads_geracao ON tb_leads_gerados(geracao_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "leads: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, b Batch) (*SaveResult, error) {
	if b.Rows == nil || !b.Rows.HasColumn("cnpj") {
		return nil, eris.New("leads: batch has no cnpj column")
	}
	if b.ClientReference == "" {
		return nil, eris.New("leads: empty client reference")
	}

	saved := map[string]struct{}{}
	if !b.Refresh {
		var err error
		saved, err = s.SavedKeys(ctx, b.ClientReference)
		if err != nil {
			return nil, err
		}
	}

	genID := b.GenerationID
	if genID == "" {
		genID = uuid.New().String()
	}
	at := b.GeneratedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	// The batch itself may repeat a company; only the first occurrence is
	// written, so the COPY never trips the (cnpj, cliente_referencia)
	// unique constraint.
	inBatch := map[string]struct{}{}

	var rows [][]any
	skipped := 0
	for i := 0; i < b.Rows.Len(); i++ {
		key := b.Rows.Cell(i, "cnpj").String
		if _, dup := saved[key]; dup {
			skipped++
			continue
		}
		if _, dup := inBatch[key]; dup {
			skipped++
			continue
		}
		values := rowValues(b, i, genID, at)
		if values == nil {
			skipped++
			continue
		}
		inBatch[key] = struct{}{}
		rows = append(rows, values)
	}

	var n int64
	var err error
	if b.Refresh {
		n, err = db.BulkUpsert(ctx, s.pool, Table, allColumns(), []string{"cnpj", "cliente_referencia"}, rows)
	} else {
		n, err = db.CopyFrom(ctx, s.pool, Table, allColumns(), rows)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "leads: save batch for %s", b.ClientReference)
	}

	zap.L().Info("leads: batch saved",
		zap.String("client", b.ClientReference),
		zap.String("generation_id", genID),
		zap.Int64("inserted", n),
		zap.Int("skipped", skipped))

	return &SaveResult{GenerationID: genID, Inserted: int(n), Skipped: skipped}, nil
}

func (s *PostgresStore) SavedKeys(ctx context.Context, clientReference string) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT cnpj FROM tb_leads_gerados WHERE cliente_referencia = $1`,
		clientReference,
	)
	if err != nil {
		return nil, eris.Wrap(err, "leads: query saved keys")
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var cnpj string
		if err := rows.Scan(&cnpj); err != nil {
			return nil, eris.Wrap(err, "leads: scan saved key")
		}
		keys[cnpj] = struct{}{}
	}
	return keys, eris.Wrap(rows.Err(), "leads: iterate saved keys")
}

func (s *PostgresStore) ClientReferences(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT cliente_referencia FROM tb_leads_gerados ORDER BY cliente_referencia`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "leads: query client references")
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, eris.Wrap(err, "leads: scan client reference")
		}
		refs = append(refs, ref)
	}
	return refs, eris.Wrap(rows.Err(), "leads: iterate client references")
}

func (s *PostgresStore) ListByClients(ctx context.Context, clientReferences []string) (*dataset.Dataset, error) {
	if len(clientReferences) == 0 {
		return dataset.New(allColumns()...), nil
	}

	q := &query.Compiled{
		SQL:    `SELECT * FROM tb_leads_gerados WHERE cliente_referencia = ANY(@refs) ORDER BY data_geracao DESC, cnpj`,
		Params: map[string]any{"refs": clientReferences},
	}
	ds, err := query.Run(ctx, s.pool, q)
	if err != nil {
		return nil, eris.Wrap(err, "leads: list by clients")
	}
	return ds, nil
}

var _ Store = (*PostgresStore)(nil)
