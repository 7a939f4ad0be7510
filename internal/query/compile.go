// Package query compiles a filter-criteria set into a single parameterized
// SELECT against the company view, and runs compiled queries through a
// pgx pool. Every user-controlled value travels through the parameter map;
// only fixed column names, operators, and the status literal appear in the
// SQL text.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/criteria"
	"github.com/sells-group/leadgen-cli/internal/normalize"
)

// Compiled is one ready-to-execute query: SQL text plus the named
// parameter map. Immutable once returned.
type Compiled struct {
	SQL    string
	Params map[string]any
}

// Options configures a compilation.
type Options struct {
	Table string // table or view name; empty means DefaultView
	Limit int    // result-row cap; 0 means no LIMIT clause
}

// Compile translates criteria plus an optional exclusion set into a
// parameterized statement. Predicates build in a fixed order — status,
// then filters in criteria.Order, then exclusion — so identical inputs
// (as values) compile to byte-identical SQL. Ranges are assumed
// pre-validated via criteria.Validate; an empty exclusion set adds no
// predicate.
func Compile(c criteria.Criteria, exclude criteria.ExclusionSet, opts Options) (*Compiled, error) {
	table := opts.Table
	if table == "" {
		table = DefaultView
	}
	if strings.ContainsAny(table, " ;'\"") {
		return nil, eris.Errorf("query: invalid table name %q", table)
	}

	b := &builder{params: map[string]any{}}

	// The status predicate is mandatory and fixed: no user value flows
	// into it, so it is the one literal allowed in the SQL text.
	b.predicates = append(b.predicates, fmt.Sprintf("%s = '%s'", StatusColumn, ActiveStatus))

	for _, f := range criteria.Order {
		v, ok := c.Get(f)
		if !ok {
			continue
		}
		col, ok := columns[f]
		if !ok {
			return nil, eris.Errorf("query: filter %q has no column mapping", f)
		}

		kind, _ := f.Kind()
		switch kind {
		case criteria.KindCategorical:
			b.addCategorical(col, v.(criteria.TextList))
		case criteria.KindKeyword:
			b.addKeyword(col, v.(criteria.TextList))
		case criteria.KindCodedPair:
			b.addCodedPairs(col, v.(criteria.CodedPairList), f == criteria.FieldSecondaryCNAE)
		case criteria.KindNumericRange:
			r := v.(criteria.NumericRange)
			b.addRange(col, r.Min, r.Max)
		case criteria.KindDateRange:
			r := v.(criteria.DateRange)
			b.addRange(col, r.Start, r.End)
		case criteria.KindScalar:
			// Status is folded into the mandatory predicate; nothing to emit.
		}
	}

	b.addExclusion(exclude)

	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s", table, strings.Join(b.predicates, " AND "))
	if opts.Limit > 0 {
		sql += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	return &Compiled{SQL: sql, Params: b.params}, nil
}

// builder accumulates predicates and bound parameters for one compilation.
// Parameter names are synthesized from each filter's base name plus a
// per-filter counter, so they are unique and reproducible.
type builder struct {
	predicates []string
	params     map[string]any
}

func (b *builder) bind(base string, i int, value any) string {
	name := fmt.Sprintf("%s_%d", base, i)
	b.params[name] = value
	return name
}

// addCategorical compiles an exact-match list: an OR-group of
// case/diacritic-insensitive equalities, plus IS NULL / = '' arms for
// sentinels. Matching folds both sides: the bound value through
// normalize.Scalar, the column through unaccent(upper(...)).
func (b *builder) addCategorical(col column, list criteria.TextList) {
	values, includeNull, includeEmpty := list.Split()

	var arms []string
	for i, v := range values {
		folded := normalize.Scalar(v)
		if col.name == "bairro" {
			folded = normalize.District(v)
		}
		name := b.bind(col.paramBase, i, folded)
		arms = append(arms, fmt.Sprintf("unaccent(upper(%s)) = @%s", col.name, name))
	}
	if includeNull {
		arms = append(arms, fmt.Sprintf("%s IS NULL", col.name))
	}
	if includeEmpty {
		arms = append(arms, fmt.Sprintf("%s = ''", col.name))
	}
	b.orGroup(arms)
}

// addKeyword compiles a substring list: OR-ed case/diacritic-insensitive
// contains predicates with wildcards on both sides of each bound value.
func (b *builder) addKeyword(col column, list criteria.TextList) {
	values, includeNull, includeEmpty := list.Split()

	var arms []string
	for i, v := range values {
		name := b.bind(col.paramBase, i, "%"+normalize.Scalar(v)+"%")
		arms = append(arms, fmt.Sprintf("unaccent(upper(%s)) LIKE @%s", col.name, name))
	}
	if includeNull {
		arms = append(arms, fmt.Sprintf("%s IS NULL", col.name))
	}
	if includeEmpty {
		arms = append(arms, fmt.Sprintf("%s = ''", col.name))
	}
	b.orGroup(arms)
}

// addCodedPairs compiles CNAE selections. Real entries match the code
// column: equality for the primary code, contains for the secondary code
// (records hold several "; "-joined secondary codes in one cell).
// Sentinels target the descriptive column, which is where the source
// represents a missing classification.
func (b *builder) addCodedPairs(col column, list criteria.CodedPairList, contains bool) {
	pairs, includeNull, includeEmpty := list.Split()

	var arms []string
	for i, p := range pairs {
		code := strings.TrimSpace(p.Code)
		if code == "" {
			continue
		}
		if contains {
			name := b.bind(col.paramBase, i, "%"+code+"%")
			arms = append(arms, fmt.Sprintf("%s LIKE @%s", col.name, name))
		} else {
			name := b.bind(col.paramBase, i, code)
			arms = append(arms, fmt.Sprintf("%s = @%s", col.name, name))
		}
	}
	if includeNull {
		arms = append(arms, fmt.Sprintf("%s IS NULL", col.sentinelCol))
	}
	if includeEmpty {
		arms = append(arms, fmt.Sprintf("%s = ''", col.sentinelCol))
	}
	b.orGroup(arms)
}

// addRange compiles the single BETWEEN predicate for numeric and date
// ranges, both bounds bound and inclusive.
func (b *builder) addRange(col column, lo, hi any) {
	loName := col.paramBase + "_min"
	hiName := col.paramBase + "_max"
	b.params[loName] = lo
	b.params[hiName] = hi
	b.predicates = append(b.predicates, fmt.Sprintf("%s BETWEEN @%s AND @%s", col.name, loName, hiName))
}

// addExclusion appends the NOT IN predicate with one bound parameter per
// excluded key. Keys bind in ascending order so compilation depends only
// on the set's values. An empty set adds nothing: a parameterless
// NOT IN () is never emitted.
func (b *builder) addExclusion(exclude criteria.ExclusionSet) {
	if len(exclude) == 0 {
		return
	}
	keys := make([]string, 0, len(exclude))
	for k := range exclude {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	placeholders := make([]string, len(keys))
	for i, k := range keys {
		placeholders[i] = "@" + b.bind("excl", i, k)
	}
	b.predicates = append(b.predicates, fmt.Sprintf("%s NOT IN (%s)", KeyColumn, strings.Join(placeholders, ", ")))
}

// orGroup parenthesizes and ANDs in an OR-group, skipping empty groups:
// a list that emptied out after sentinel handling adds no predicate.
func (b *builder) orGroup(arms []string) {
	if len(arms) == 0 {
		return
	}
	b.predicates = append(b.predicates, "("+strings.Join(arms, " OR ")+")")
}
