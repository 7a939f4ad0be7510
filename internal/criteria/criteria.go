// Package criteria defines the filter-criteria model for one lead search:
// a closed set of filter fields, each carrying a value of the kind declared
// for that field, plus the exclusion set and the profile score table.
package criteria

import (
	"time"

	"github.com/rotisserie/eris"
)

// Sentinel option values. A selection list may mix real values with these
// markers; NullSentinel means "column IS NULL" and EmptySentinel means
// "column = ''".
const (
	NullSentinel  = "(Nulo)"
	EmptySentinel = "(Vazio)"
)

// Field identifies one filter in the fixed filter set. The string value is
// the field's name in criteria files and API payloads.
type Field string

const (
	FieldStatus               Field = "situacao_cadastral"
	FieldTradeName            Field = "nome_fantasia"
	FieldState                Field = "uf"
	FieldCity                 Field = "municipio"
	FieldDistrict             Field = "bairro"
	FieldPrimaryCNAE          Field = "cod_cnae_principal"
	FieldSecondaryCNAE        Field = "cod_cnae_secundario"
	FieldActivityStart        Field = "data_inicio_atividade"
	FieldCapital              Field = "capital_social"
	FieldCompanySize          Field = "porte_empresa"
	FieldLegalNature          Field = "natureza_juridica"
	FieldSimplesOptIn         Field = "opcao_simples"
	FieldMEIOptIn             Field = "opcao_mei"
	FieldAreaCode             Field = "ddd1"
	FieldPartnerName          Field = "nome_socio_razao_social"
	FieldPartnerQualification Field = "qualificacao_socio"
	FieldPartnerAgeBracket    Field = "faixa_etaria_socio"
)

// Order is the fixed compilation order: the compiler emits predicates in
// this sequence so identical criteria always compile to identical SQL.
var Order = []Field{
	FieldTradeName,
	FieldState,
	FieldCity,
	FieldDistrict,
	FieldPrimaryCNAE,
	FieldSecondaryCNAE,
	FieldActivityStart,
	FieldCapital,
	FieldCompanySize,
	FieldLegalNature,
	FieldSimplesOptIn,
	FieldMEIOptIn,
	FieldAreaCode,
	FieldPartnerName,
	FieldPartnerQualification,
	FieldPartnerAgeBracket,
}

// Kind is the value kind a field accepts.
type Kind int

const (
	KindScalar Kind = iota
	KindCategorical
	KindKeyword
	KindCodedPair
	KindNumericRange
	KindDateRange
)

var fieldKinds = map[Field]Kind{
	FieldStatus:               KindScalar,
	FieldTradeName:            KindKeyword,
	FieldState:                KindCategorical,
	FieldCity:                 KindCategorical,
	FieldDistrict:             KindCategorical,
	FieldPrimaryCNAE:          KindCodedPair,
	FieldSecondaryCNAE:        KindCodedPair,
	FieldActivityStart:        KindDateRange,
	FieldCapital:              KindNumericRange,
	FieldCompanySize:          KindCategorical,
	FieldLegalNature:          KindCategorical,
	FieldSimplesOptIn:         KindCategorical,
	FieldMEIOptIn:             KindCategorical,
	FieldAreaCode:             KindCategorical,
	FieldPartnerName:          KindKeyword,
	FieldPartnerQualification: KindCategorical,
	FieldPartnerAgeBracket:    KindCategorical,
}

// Kind returns the value kind declared for the field.
func (f Field) Kind() (Kind, bool) {
	k, ok := fieldKinds[f]
	return k, ok
}

// Value is one filter's value. The concrete types form a closed union;
// Active reports whether the value contributes predicates and score.
type Value interface {
	Active() bool
	kind() Kind
}

// TextList is an ordered list of selection values for categorical and
// keyword filters. Entries may be real values or sentinels.
type TextList []string

// Active reports whether the list selects anything.
func (v TextList) Active() bool { return len(v) > 0 }

func (v TextList) kind() Kind { return KindCategorical }

// Split separates the list into real values and sentinel flags.
func (v TextList) Split() (values []string, includeNull, includeEmpty bool) {
	for _, s := range v {
		switch s {
		case NullSentinel:
			includeNull = true
		case EmptySentinel:
			includeEmpty = true
		default:
			values = append(values, s)
		}
	}
	return values, includeNull, includeEmpty
}

// CodedPair is one CNAE classification entry: a code plus its description.
// A sentinel pair carries the sentinel in both positions.
type CodedPair struct {
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
}

// IsSentinel reports whether the pair is a null/empty sentinel entry.
func (p CodedPair) IsSentinel() bool {
	return p.Code == NullSentinel || p.Code == EmptySentinel
}

// CodedPairList is an ordered list of (code, description) selections.
type CodedPairList []CodedPair

// Active reports whether the list selects anything.
func (v CodedPairList) Active() bool { return len(v) > 0 }

func (v CodedPairList) kind() Kind { return KindCodedPair }

// Split separates real pairs from sentinel flags.
func (v CodedPairList) Split() (pairs []CodedPair, includeNull, includeEmpty bool) {
	for _, p := range v {
		switch p.Code {
		case NullSentinel:
			includeNull = true
		case EmptySentinel:
			includeEmpty = true
		default:
			pairs = append(pairs, p)
		}
	}
	return pairs, includeNull, includeEmpty
}

// NumericRange is an inclusive [Min, Max] bound on a numeric column.
type NumericRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Active is always true: a present range filters even when Min == Max.
func (v NumericRange) Active() bool { return true }

func (v NumericRange) kind() Kind { return KindNumericRange }

// DateRange is an inclusive [Start, End] bound on a date column.
type DateRange struct {
	Start time.Time `json:"start" yaml:"start"`
	End   time.Time `json:"end" yaml:"end"`
}

// Active reports whether both endpoints are set.
func (v DateRange) Active() bool { return !v.Start.IsZero() && !v.End.IsZero() }

func (v DateRange) kind() Kind { return KindDateRange }

// Scalar is a single fixed value, used only by the status filter.
type Scalar string

// Active reports whether the scalar is non-empty.
func (v Scalar) Active() bool { return v != "" }

func (v Scalar) kind() Kind { return KindScalar }

// Criteria maps active filters to their values. Absent fields are
// inactive: they add no predicate and no score.
type Criteria map[Field]Value

// Set stores a value after checking it matches the field's declared kind.
// Keyword fields accept TextList (the categorical/keyword distinction is a
// compilation rule, not a value shape).
func (c Criteria) Set(f Field, v Value) error {
	want, ok := f.Kind()
	if !ok {
		return eris.Errorf("criteria: unknown filter %q", f)
	}
	got := v.kind()
	if got == KindCategorical && want == KindKeyword {
		got = KindKeyword
	}
	if got != want {
		return eris.Errorf("criteria: filter %q does not accept this value kind", f)
	}
	c[f] = v
	return nil
}

// Get returns the field's value when present and active.
func (c Criteria) Get(f Field) (Value, bool) {
	v, ok := c[f]
	if !ok || v == nil || !v.Active() {
		return nil, false
	}
	return v, true
}

// Validate checks caller-side preconditions: known fields, kind agreement,
// and ordered range bounds. The compiler assumes a validated criteria set.
func (c Criteria) Validate() error {
	for f, v := range c {
		want, ok := f.Kind()
		if !ok {
			return eris.Errorf("criteria: unknown filter %q", f)
		}
		if v == nil {
			continue
		}
		got := v.kind()
		if got == KindCategorical && want == KindKeyword {
			got = KindKeyword
		}
		if got != want {
			return eris.Errorf("criteria: filter %q holds a mismatched value kind", f)
		}
		switch r := v.(type) {
		case NumericRange:
			if r.Min > r.Max {
				return eris.Errorf("criteria: filter %q has min > max", f)
			}
		case DateRange:
			if r.Active() && r.Start.After(r.End) {
				return eris.Errorf("criteria: filter %q has start after end", f)
			}
		}
	}
	return nil
}

// ExclusionSet holds company identifiers that must never appear in a
// compiled query's results, typically the client's existing base.
type ExclusionSet map[string]struct{}

// NewExclusionSet builds a set from identifier strings, skipping blanks.
func NewExclusionSet(keys ...string) ExclusionSet {
	set := make(ExclusionSet, len(keys))
	for _, k := range keys {
		if k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}
