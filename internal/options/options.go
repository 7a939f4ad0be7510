// Package options derives frequency-ranked selectable values from a client
// dataset: distinct values, trade-name keywords, and CNAE (code,
// description) pairs, with explicit null/empty sentinel entries.
package options

import (
	"sort"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/criteria"
	"github.com/sells-group/leadgen-cli/internal/dataset"
	"github.com/sells-group/leadgen-cli/internal/normalize"
)

// cnaeSeparator joins multiple codes or descriptions inside one cell.
const cnaeSeparator = "; "

// CNAE column pairs in the source schema.
const (
	primaryCodeColumn        = "cod_cnae_principal"
	primaryDescriptionColumn = "cnae_principal"
	secondaryCodeColumn      = "cod_cnae_secundario"
	secondaryDescColumn      = "cnae_secundario"
)

// CodedKind selects which CNAE columns to aggregate.
type CodedKind int

const (
	Principal CodedKind = iota
	Secondary
	Both
)

// counter ranks values by frequency, breaking ties by first-seen order.
type counter struct {
	counts map[string]int
	seen   map[string]int
	next   int
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}, seen: map[string]int{}}
}

func (c *counter) add(key string) {
	if _, ok := c.seen[key]; !ok {
		c.seen[key] = c.next
		c.next++
	}
	c.counts[key]++
}

// ranked returns all keys ordered by count descending, first-seen ascending.
func (c *counter) ranked() []string {
	keys := make([]string, 0, len(c.counts))
	for k := range c.counts {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if c.counts[keys[i]] != c.counts[keys[j]] {
			return c.counts[keys[i]] > c.counts[keys[j]]
		}
		return c.seen[keys[i]] < c.seen[keys[j]]
	})
	return keys
}

// columnFlags reports whether the column holds any null and any blank cell.
func columnFlags(d *dataset.Dataset, column string) (hasNull, hasEmpty bool) {
	for _, cell := range d.Column(column) {
		if !cell.Valid {
			hasNull = true
		} else if cell.IsBlank() {
			hasEmpty = true
		}
	}
	return hasNull, hasEmpty
}

// appendSentinels appends the requested sentinels that actually occur in
// the source column. Sentinels survive truncation: they are added after
// the limit is applied and never dropped by it.
func appendSentinels(values []string, includeNull, includeEmpty, hasNull, hasEmpty bool) []string {
	if includeNull && hasNull {
		values = append(values, criteria.NullSentinel)
	}
	if includeEmpty && hasEmpty {
		values = append(values, criteria.EmptySentinel)
	}
	return dedupe(values)
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// TopDistinctValues returns the column's distinct non-null, non-blank
// values ranked by frequency, truncated to limit, with requested sentinels
// appended when the column has null/blank cells. An absent column yields
// an empty list.
func TopDistinctValues(d *dataset.Dataset, column string, limit int, includeNull, includeEmpty bool) []string {
	if !d.HasColumn(column) {
		return nil
	}

	c := newCounter()
	for _, cell := range d.Column(column) {
		if !cell.Valid || cell.IsBlank() {
			continue
		}
		c.add(strings.TrimSpace(cell.String))
	}

	values := c.ranked()
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}

	hasNull, hasEmpty := columnFlags(d, column)
	return appendSentinels(values, includeNull, includeEmpty, hasNull, hasEmpty)
}

// TopKeywords tokenizes every non-null, non-blank cell of the column and
// returns the most frequent tokens, with the same sentinel rule as
// TopDistinctValues.
func TopKeywords(d *dataset.Dataset, column string, limit int, stopwords map[string]bool, includeNull, includeEmpty bool) []string {
	if !d.HasColumn(column) {
		return nil
	}

	c := newCounter()
	for _, cell := range d.Column(column) {
		if !cell.Valid || cell.IsBlank() {
			continue
		}
		for _, tok := range normalize.Tokenize(cell.String, stopwords) {
			c.add(tok)
		}
	}

	tokens := c.ranked()
	if limit > 0 && len(tokens) > limit {
		tokens = tokens[:limit]
	}

	hasNull, hasEmpty := columnFlags(d, column)
	return appendSentinels(tokens, includeNull, includeEmpty, hasNull, hasEmpty)
}

// TopCodedPairs returns the most frequent CNAE (code, description) pairs
// for the requested kind. Cells holding several "; "-joined sub-values are
// split and paired positionally up to the shorter side, each sub-pair
// counting once. Sentinel pairs are appended when requested, checked
// against each source code column independently.
func TopCodedPairs(d *dataset.Dataset, kind CodedKind, limit int, includeNull, includeEmpty bool) []criteria.CodedPair {
	type source struct{ codeCol, descCol string }
	var sources []source
	if kind == Principal || kind == Both {
		sources = append(sources, source{primaryCodeColumn, primaryDescriptionColumn})
	}
	if kind == Secondary || kind == Both {
		sources = append(sources, source{secondaryCodeColumn, secondaryDescColumn})
	}

	// Pairs are counted as (code, description) tuples: the same code under
	// two descriptions ranks as two entries.
	const pairSep = "\x1f"
	c := newCounter()
	var hasNull, hasEmpty bool

	for _, src := range sources {
		if !d.HasColumn(src.codeCol) || !d.HasColumn(src.descCol) {
			continue
		}

		codes := d.Column(src.codeCol)
		descs := d.Column(src.descCol)
		for i := range codes {
			if !codes[i].Valid || codes[i].IsBlank() {
				continue
			}
			cs := splitJoined(codes[i].String)
			ds := splitJoined(descs[i].String)
			n := len(cs)
			if len(ds) < n {
				n = len(ds)
			}
			for k := 0; k < n; k++ {
				if cs[k] == "" || ds[k] == "" {
					continue
				}
				c.add(cs[k] + pairSep + ds[k])
			}
		}

		null, empty := columnFlags(d, src.codeCol)
		hasNull = hasNull || null
		hasEmpty = hasEmpty || empty
	}

	keys := c.ranked()
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	pairs := make([]criteria.CodedPair, 0, len(keys)+2)
	for _, key := range keys {
		code, desc, _ := strings.Cut(key, pairSep)
		pairs = append(pairs, criteria.CodedPair{Code: code, Description: desc})
	}
	if includeNull && hasNull {
		pairs = append(pairs, criteria.CodedPair{Code: criteria.NullSentinel, Description: criteria.NullSentinel})
	}
	if includeEmpty && hasEmpty {
		pairs = append(pairs, criteria.CodedPair{Code: criteria.EmptySentinel, Description: criteria.EmptySentinel})
	}
	return pairs
}

// splitJoined splits a "; "-joined multi-value cell, trimming each part.
func splitJoined(s string) []string {
	parts := strings.Split(s, cnaeSeparator)
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
