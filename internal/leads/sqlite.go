package leads

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/dataset"
)

// SQLiteStore implements Store using modernc.org/sqlite, for local runs
// without a shared database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "leads: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "leads: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

var sqliteMigration = fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS tb_leads_gerados (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	%s,
	pontuacao          INTEGER NOT NULL,
	data_geracao       DATETIME NOT NULL,
	cliente_referencia TEXT NOT NULL,
	geracao_id         TEXT NOT NULL,
	UNIQUE (cnpj, cliente_referencia)
);

CREATE INDEX IF NOT EXISTS idx_leads_cliente ON tb_leads_gerados(cliente_referencia);
CREATE INDEX IF NOT EXISTS idx_leads_geracao ON tb_leads_gerados(geracao_id);
`, strings.Join(ViewColumns, " TEXT,\n\t")+" TEXT")

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "leads: migrate sqlite")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, b Batch) (*SaveResult, error) {
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

	verb := "INSERT OR IGNORE"
	if b.Refresh {
		verb = "INSERT OR REPLACE"
	}
	cols := allColumns()
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	insertSQL := fmt.Sprintf(
		"%s INTO tb_leads_gerados (%s) VALUES (%s)",
		verb, strings.Join(cols, ", "), placeholders,
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "leads: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return nil, eris.Wrap(err, "leads: prepare insert")
	}
	defer stmt.Close()

	// First occurrence of a repeated company wins, matching the COPY path.
	inBatch := map[string]struct{}{}

	inserted := 0
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
		res, err := stmt.ExecContext(ctx, values...)
		if err != nil {
			return nil, eris.Wrapf(err, "leads: insert row %d", i)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		} else {
			skipped++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "leads: commit")
	}

	zap.L().Info("leads: batch saved",
		zap.String("client", b.ClientReference),
		zap.String("generation_id", genID),
		zap.Int("inserted", inserted),
		zap.Int("skipped", skipped))

	return &SaveResult{GenerationID: genID, Inserted: inserted, Skipped: skipped}, nil
}

func (s *SQLiteStore) SavedKeys(ctx context.Context, clientReference string) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cnpj FROM tb_leads_gerados WHERE cliente_referencia = ?`,
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

func (s *SQLiteStore) ClientReferences(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
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

func (s *SQLiteStore) ListByClients(ctx context.Context, clientReferences []string) (*dataset.Dataset, error) {
	if len(clientReferences) == 0 {
		return dataset.New(allColumns()...), nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(clientReferences)), ", ")
	args := make([]any, len(clientReferences))
	for i, ref := range clientReferences {
		args[i] = ref
	}

	listSQL := fmt.Sprintf(
		"SELECT %s FROM tb_leads_gerados WHERE cliente_referencia IN (%s) ORDER BY data_geracao DESC, cnpj",
		strings.Join(allColumns(), ", "), placeholders,
	)
	rows, err := s.db.QueryContext(ctx, listSQL, args...)
	if err != nil {
		return nil, eris.Wrap(err, "leads: list by clients")
	}
	defer rows.Close()

	cols := allColumns()
	ds := dataset.New(cols...)
	for rows.Next() {
		scanned := make([]sql.NullString, len(cols))
		targets := make([]any, len(cols))
		for i := range scanned {
			targets[i] = &scanned[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, eris.Wrap(err, "leads: scan lead row")
		}
		cells := make([]dataset.Cell, len(cols))
		for i, v := range scanned {
			if v.Valid {
				cells[i] = dataset.V(v.String)
			} else {
				cells[i] = dataset.NullCell
			}
		}
		ds.Append(cells...)
	}
	return ds, eris.Wrap(rows.Err(), "leads: iterate lead rows")
}

var _ Store = (*SQLiteStore)(nil)
