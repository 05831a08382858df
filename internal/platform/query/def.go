// Package query derives per-entity filter and sort query languages from entity
// struct tags, replacing the hand-written parameter plumbing each listing
// endpoint would otherwise need.
//
// A field tagged `db:"price" filter:"range" sort:"true"` yields the query
// parameters price_eq, price_neq, price_gt, price_lt, price_gte, price_lte and
// the sort values price_asc / price_desc. `filter:"multi"` derives repeatable
// eq/neq parameters (IN / NOT IN), `filter:"single"` single-valued ones.
// Parameter names default to the field's json name; `name=` overrides.
package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cantina-dev/cantina/internal/shared"
)

type opKind int

const (
	opIn opKind = iota
	opNotIn
	opEq
	opNe
	opGt
	opLt
	opGe
	opLe
)

func (o opKind) sqlOperator() string {
	switch o {
	case opEq:
		return "="
	case opNe:
		return "<>"
	case opGt:
		return ">"
	case opLt:
		return "<"
	case opGe:
		return ">="
	case opLe:
		return "<="
	}
	return ""
}

type coerceFunc func(string) (any, error)

type param struct {
	name   string
	column string
	op     opKind
	single bool
	coerce coerceFunc
}

// sortVal is one accepted sort direction; param is the bare parameter name
// without the _asc/_desc suffix.
type sortVal struct {
	param  string
	column string
	desc   bool
}

// Def holds the derived filter parameters and sort values of one entity.
type Def struct {
	params []param
	byName map[string]param
	sorts  []sortVal
	bySort map[string]sortVal
}

// NewDef derives a Def from the struct tags of T.
func NewDef[T any]() (*Def, error) {
	t := reflect.TypeOf(*new(T))
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("query: %s is not a struct", t)
	}

	d := &Def{byName: map[string]param{}, bySort: map[string]sortVal{}}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		column := field.Tag.Get("db")
		if column == "" || column == "-" {
			continue
		}

		mode, rename, err := parseFilterTag(field.Tag.Get("filter"))
		if err != nil {
			return nil, fmt.Errorf("query: field %s.%s: %w", t.Name(), field.Name, err)
		}
		name := rename
		if name == "" {
			name = paramName(field)
		}

		if mode != "" {
			coerce, err := coercerFor(field.Type)
			if err != nil {
				return nil, fmt.Errorf("query: field %s.%s: %w", t.Name(), field.Name, err)
			}
			single := mode == "single"
			eqOp, neOp := opIn, opNotIn
			if single {
				eqOp, neOp = opEq, opNe
			}
			d.addParam(param{name: name + "_eq", column: column, op: eqOp, single: single, coerce: coerce})
			d.addParam(param{name: name + "_neq", column: column, op: neOp, single: single, coerce: coerce})
			if mode == "range" {
				d.addParam(param{name: name + "_gt", column: column, op: opGt, single: true, coerce: coerce})
				d.addParam(param{name: name + "_lt", column: column, op: opLt, single: true, coerce: coerce})
				d.addParam(param{name: name + "_gte", column: column, op: opGe, single: true, coerce: coerce})
				d.addParam(param{name: name + "_lte", column: column, op: opLe, single: true, coerce: coerce})
			}
		}

		if tag := field.Tag.Get("sort"); tag != "" && tag != "-" {
			for _, desc := range []bool{false, true} {
				suffix := "_asc"
				if desc {
					suffix = "_desc"
				}
				sv := sortVal{param: name, column: column, desc: desc}
				d.sorts = append(d.sorts, sv)
				d.bySort[name+suffix] = sv
			}
		}
	}
	return d, nil
}

// MustDef is NewDef that panics, for package-level entity definitions.
func MustDef[T any]() *Def {
	d, err := NewDef[T]()
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Def) addParam(p param) {
	d.params = append(d.params, p)
	d.byName[p.name] = p
}

func parseFilterTag(tag string) (mode, rename string, err error) {
	if tag == "" || tag == "-" {
		return "", "", nil
	}
	parts := strings.Split(tag, ",")
	switch parts[0] {
	case "single", "multi", "range":
		mode = parts[0]
	default:
		return "", "", fmt.Errorf("unknown filter mode %q", parts[0])
	}
	for _, part := range parts[1:] {
		if after, ok := strings.CutPrefix(part, "name="); ok {
			rename = after
			continue
		}
		return "", "", fmt.Errorf("unknown filter option %q", part)
	}
	return mode, rename, nil
}

func paramName(field reflect.StructField) string {
	if tag := field.Tag.Get("json"); tag != "" {
		if name := strings.Split(tag, ",")[0]; name != "" && name != "-" {
			return name
		}
	}
	return snakeCase(field.Name)
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

var (
	uuidType    = reflect.TypeOf(uuid.UUID{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
)

func coercerFor(t reflect.Type) (coerceFunc, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case uuidType:
		return func(raw string) (any, error) { return uuid.Parse(raw) }, nil
	case decimalType:
		return func(raw string) (any, error) { return decimal.NewFromString(raw) }, nil
	case timeType:
		return func(raw string) (any, error) { return time.Parse(time.RFC3339, raw) }, nil
	}
	switch t.Kind() {
	case reflect.String:
		return func(raw string) (any, error) { return raw, nil }, nil
	case reflect.Bool:
		return func(raw string) (any, error) { return strconv.ParseBool(raw) }, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(raw string) (any, error) { return strconv.ParseInt(raw, 10, 64) }, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(raw string) (any, error) { return strconv.ParseUint(raw, 10, 64) }, nil
	case reflect.Float32, reflect.Float64:
		return func(raw string) (any, error) { return strconv.ParseFloat(raw, 64) }, nil
	}
	return nil, fmt.Errorf("unsupported filter type %s", t)
}

func badParam(name, raw string, err error) error {
	return fmt.Errorf("%w: parameter %q value %q: %v", shared.ErrValidation, name, raw, err)
}
