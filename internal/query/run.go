package query

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/criteria"
	"github.com/sells-group/leadgen-cli/internal/dataset"
	"github.com/sells-group/leadgen-cli/internal/db"
)

// Run executes a compiled query against the pool and collects the result
// set into a dataset, preserving the view's column order. NULLs become
// null cells; everything else is rendered to its text form.
func Run(ctx context.Context, pool db.Pool, q *Compiled) (*dataset.Dataset, error) {
	rows, err := pool.Query(ctx, q.SQL, pgx.NamedArgs(q.Params))
	if err != nil {
		return nil, eris.Wrap(err, "query: execute")
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	ds := dataset.New(names...)

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "query: read row")
		}
		cells := make([]dataset.Cell, len(values))
		for i, v := range values {
			cells[i] = cellOf(v)
		}
		ds.Append(cells...)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "query: iterate rows")
	}

	zap.L().Debug("query: executed",
		zap.Int("rows", ds.Len()),
		zap.Int("params", len(q.Params)))

	return ds, nil
}

// Generate compiles the criteria and runs the result in one step. The
// returned Compiled carries the executed SQL for logging and cost
// estimation.
func Generate(ctx context.Context, pool db.Pool, c criteria.Criteria, exclude criteria.ExclusionSet, opts Options) (*dataset.Dataset, *Compiled, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}
	q, err := Compile(c, exclude, opts)
	if err != nil {
		return nil, nil, err
	}
	ds, err := Run(ctx, pool, q)
	if err != nil {
		return nil, nil, err
	}
	return ds, q, nil
}

func cellOf(v any) dataset.Cell {
	switch t := v.(type) {
	case nil:
		return dataset.NullCell
	case string:
		return dataset.V(t)
	case []byte:
		return dataset.V(string(t))
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
			return dataset.V(t.Format("2006-01-02"))
		}
		return dataset.V(t.Format(time.RFC3339))
	case float64:
		return dataset.V(strconv.FormatFloat(t, 'f', -1, 64))
	case float32:
		return dataset.V(strconv.FormatFloat(float64(t), 'f', -1, 32))
	case int64:
		return dataset.V(strconv.FormatInt(t, 10))
	case int32:
		return dataset.V(strconv.FormatInt(int64(t), 10))
	case int16:
		return dataset.V(strconv.FormatInt(int64(t), 10))
	case bool:
		return dataset.V(strconv.FormatBool(t))
	default:
		return dataset.V(fmt.Sprintf("%v", t))
	}
}
