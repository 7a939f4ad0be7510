package criteria

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// dateLayout is the wire format for date-range endpoints.
const dateLayout = "2006-01-02"

// File is the on-disk criteria document consumed by `leads generate` and
// posted (as JSON) to the serve API.
type File struct {
	ClientReference string         `json:"client_reference" yaml:"client_reference"`
	Filters         map[string]any `json:"filters" yaml:"filters"`
}

// ParseYAML decodes a criteria file and builds a validated Criteria set.
func ParseYAML(data []byte) (*File, Criteria, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, eris.Wrap(err, "criteria: unmarshal yaml")
	}
	c, err := FromMap(f.Filters)
	if err != nil {
		return nil, nil, err
	}
	return &f, c, nil
}

// FromMap converts a loosely-typed filter mapping (from YAML or JSON) into
// the closed criteria model, enforcing each field's value kind at
// construction. Unknown filter names and mismatched shapes are errors, not
// silent drops.
func FromMap(m map[string]any) (Criteria, error) {
	c := make(Criteria, len(m))
	for name, raw := range m {
		f := Field(name)
		kind, ok := f.Kind()
		if !ok {
			return nil, eris.Errorf("criteria: unknown filter %q", name)
		}
		if raw == nil {
			continue
		}

		var (
			v   Value
			err error
		)
		switch kind {
		case KindScalar:
			v, err = parseScalar(raw)
		case KindCategorical, KindKeyword:
			v, err = parseTextList(raw)
		case KindCodedPair:
			v, err = parseCodedPairs(raw)
		case KindNumericRange:
			v, err = parseNumericRange(raw)
		case KindDateRange:
			v, err = parseDateRange(raw)
		}
		if err != nil {
			return nil, eris.Wrapf(err, "criteria: filter %q", name)
		}
		if v == nil || !v.Active() {
			continue
		}
		if err := c.Set(f, v); err != nil {
			return nil, err
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func parseScalar(raw any) (Value, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, eris.New("expected a string")
	}
	return Scalar(s), nil
}

func parseTextList(raw any) (Value, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, eris.New("expected a list of strings")
	}
	list := make(TextList, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, eris.Errorf("expected a string, got %T", item)
		}
		list = append(list, s)
	}
	return list, nil
}

func parseCodedPairs(raw any) (Value, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, eris.New("expected a list of {code, description} entries")
	}
	list := make(CodedPairList, 0, len(items))
	for _, item := range items {
		switch entry := item.(type) {
		case string:
			// A bare string is a code with itself as description, the way
			// hand-added CNAE tags arrive from the UI.
			list = append(list, CodedPair{Code: entry, Description: entry})
		case map[string]any:
			code, _ := entry["code"].(string)
			desc, _ := entry["description"].(string)
			if code == "" {
				return nil, eris.New("coded entry missing code")
			}
			if desc == "" {
				desc = code
			}
			list = append(list, CodedPair{Code: code, Description: desc})
		default:
			return nil, eris.Errorf("unexpected coded entry type %T", item)
		}
	}
	return list, nil
}

func parseNumericRange(raw any) (Value, error) {
	entry, ok := raw.(map[string]any)
	if !ok {
		return nil, eris.New("expected {min, max}")
	}
	min, err := toFloat(entry["min"])
	if err != nil {
		return nil, eris.Wrap(err, "min")
	}
	max, err := toFloat(entry["max"])
	if err != nil {
		return nil, eris.Wrap(err, "max")
	}
	return NumericRange{Min: min, Max: max}, nil
}

func parseDateRange(raw any) (Value, error) {
	entry, ok := raw.(map[string]any)
	if !ok {
		return nil, eris.New("expected {start, end}")
	}
	start, err := toDate(entry["start"])
	if err != nil {
		return nil, eris.Wrap(err, "start")
	}
	end, err := toDate(entry["end"])
	if err != nil {
		return nil, eris.Wrap(err, "end")
	}
	return DateRange{Start: start, End: end}, nil
}

func toFloat(raw any) (float64, error) {
	switch n := raw.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case nil:
		return 0, eris.New("missing bound")
	default:
		return 0, eris.Errorf("unexpected numeric type %T", raw)
	}
}

func toDate(raw any) (time.Time, error) {
	switch d := raw.(type) {
	case string:
		t, err := time.Parse(dateLayout, d)
		if err != nil {
			return time.Time{}, eris.Wrapf(err, "parse date %q", d)
		}
		return t, nil
	case time.Time:
		return d, nil
	case nil:
		return time.Time{}, eris.New("missing bound")
	default:
		return time.Time{}, eris.Errorf("unexpected date type %T", raw)
	}
}

// String renders a compact one-line summary for logs.
func (c Criteria) String() string {
	active := 0
	for _, v := range c {
		if v != nil && v.Active() {
			active++
		}
	}
	return fmt.Sprintf("criteria(%d active filters, score %d)", active, Score(c))
}
