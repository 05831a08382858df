package query

import (
	"net/url"
	"strings"
)

// Sort is a parsed, ordered list of sort keys for one entity.
type Sort struct {
	keys []sortVal
}

// ParseSort reads the repeatable "sort" parameter and validates each value
// against the derived <name>_asc / <name>_desc set.
func (d *Def) ParseSort(values url.Values) (Sort, error) {
	var s Sort
	for _, raw := range values["sort"] {
		sv, ok := d.bySort[raw]
		if !ok {
			return Sort{}, badParam("sort", raw, errUnknownSortValue)
		}
		s.keys = append(s.keys, sv)
	}
	return s, nil
}

var errUnknownSortValue = errSentinel("unknown sort value")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }

// SQL renders the ORDER BY clause (with a leading space), "" when unsorted.
// Nulls always sort last, whatever the direction.
func (s Sort) SQL() string {
	if len(s.keys) == 0 {
		return ""
	}
	parts := make([]string, len(s.keys))
	for i, key := range s.keys {
		direction := "ASC"
		if key.desc {
			direction = "DESC"
		}
		parts[i] = key.column + " " + direction + " NULLS LAST"
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// Key renders the canonical cache-key form ("name+,created_at-"), "*" when empty.
func (s Sort) Key() string {
	if len(s.keys) == 0 {
		return "*"
	}
	parts := make([]string, len(s.keys))
	for i, key := range s.keys {
		suffix := "+"
		if key.desc {
			suffix = "-"
		}
		parts[i] = key.param + suffix
	}
	return strings.Join(parts, ",")
}
