package query

import (
	"fmt"
	"net/url"
	"strings"
)

// Filter is a parsed set of filter conditions for one entity.
type Filter struct {
	def    *Def
	values map[string][]any
}

// ParseFilter validates url values against the derived parameter set.
// Unknown parameter names are ignored: the query string also carries
// pagination and sort parameters.
func (d *Def) ParseFilter(values url.Values) (Filter, error) {
	f := Filter{def: d, values: map[string][]any{}}
	for name, raws := range values {
		p, ok := d.byName[name]
		if !ok {
			continue
		}
		if p.single && len(raws) > 1 {
			return Filter{}, badParam(name, strings.Join(raws, ","), fmt.Errorf("parameter accepts a single value"))
		}
		for _, raw := range raws {
			if raw == "" {
				return Filter{}, badParam(name, raw, fmt.Errorf("empty value"))
			}
			value, err := p.coerce(raw)
			if err != nil {
				return Filter{}, badParam(name, raw, err)
			}
			f.values[name] = append(f.values[name], value)
		}
	}
	return f, nil
}

// Set forces a parameter to a single value, replacing anything the client sent.
func (f *Filter) Set(name, raw string) error {
	p, ok := f.def.byName[name]
	if !ok {
		return fmt.Errorf("query: unknown parameter %q", name)
	}
	value, err := p.coerce(raw)
	if err != nil {
		return badParam(name, raw, err)
	}
	f.values[name] = []any{value}
	return nil
}

// Unset drops a parameter entirely.
func (f *Filter) Unset(name string) {
	delete(f.values, name)
}

// SQL renders the WHERE clause (with a leading space) and its arguments,
// numbering placeholders from argStart. An empty filter renders "".
func (f Filter) SQL(argStart int) (string, []any) {
	if len(f.values) == 0 {
		return "", nil
	}
	var conds []string
	var args []any
	n := argStart
	for _, p := range f.def.params {
		values, ok := f.values[p.name]
		if !ok {
			continue
		}
		switch p.op {
		case opIn, opNotIn:
			placeholders := make([]string, len(values))
			for i, v := range values {
				placeholders[i] = "$" + fmt.Sprint(n)
				args = append(args, v)
				n++
			}
			keyword := "IN"
			if p.op == opNotIn {
				keyword = "NOT IN"
			}
			conds = append(conds, fmt.Sprintf("%s %s (%s)", p.column, keyword, strings.Join(placeholders, ", ")))
		default:
			conds = append(conds, fmt.Sprintf("%s %s $%d", p.column, p.op.sqlOperator(), n))
			args = append(args, values[0])
			n++
		}
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Key renders the canonical cache-key form of the filter, "*" when empty.
func (f Filter) Key() string {
	var parts []string
	for _, p := range f.def.params {
		values, ok := f.values[p.name]
		if !ok {
			continue
		}
		if p.single {
			parts = append(parts, fmt.Sprintf("%s=%v", p.name, values[0]))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%v", p.name, values))
		}
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, "&")
}
