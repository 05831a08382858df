package query

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID        uuid.UUID       `json:"id" db:"id" filter:"single"`
	Name      string          `json:"name" db:"name" filter:"multi"`
	Price     decimal.Decimal `json:"price" db:"sell_price" filter:"range" sort:"true"`
	Hidden    bool            `json:"hidden" db:"hidden" filter:"single"`
	CreatedAt time.Time       `json:"created_at" db:"created_at" filter:"range" sort:"true"`
	Internal  string          `json:"internal"`
}

func mustDef(t *testing.T) *Def {
	t.Helper()
	d, err := NewDef[item]()
	require.NoError(t, err)
	return d
}

func TestDerivedParameterSet(t *testing.T) {
	d := mustDef(t)

	for _, name := range []string{
		"id_eq", "id_neq",
		"name_eq", "name_neq",
		"price_eq", "price_neq", "price_gt", "price_lt", "price_gte", "price_lte",
		"hidden_eq", "hidden_neq",
		"created_at_eq", "created_at_gte",
	} {
		_, ok := d.byName[name]
		require.True(t, ok, "expected derived parameter %s", name)
	}
	_, ok := d.byName["internal_eq"]
	require.False(t, ok, "field without db tag must not derive parameters")

	for _, name := range []string{"price_asc", "price_desc", "created_at_asc", "created_at_desc"} {
		_, ok := d.bySort[name]
		require.True(t, ok, "expected sort value %s", name)
	}
	_, ok = d.bySort["name_asc"]
	require.False(t, ok, "field without sort tag must not be sortable")
}

func TestParseFilterSQL(t *testing.T) {
	d := mustDef(t)

	f, err := d.ParseFilter(url.Values{
		"name_eq":   {"beer", "cider"},
		"price_gte": {"1.50"},
		"hidden_eq": {"false"},
		"page":      {"2"}, // foreign parameter, ignored
	})
	require.NoError(t, err)

	clause, args := f.SQL(1)
	require.Equal(t, " WHERE name IN ($1, $2) AND sell_price >= $3 AND hidden = $4", clause)
	require.Len(t, args, 4)
	require.Equal(t, "beer", args[0])
	require.Equal(t, "cider", args[1])
	price, ok := args[2].(decimal.Decimal)
	require.True(t, ok)
	require.True(t, price.Equal(decimal.RequireFromString("1.50")))
	require.Equal(t, false, args[3])
}

func TestParseFilterRejectsBadValues(t *testing.T) {
	d := mustDef(t)

	_, err := d.ParseFilter(url.Values{"hidden_eq": {"maybe"}})
	require.Error(t, err)

	_, err = d.ParseFilter(url.Values{"price_gt": {"1", "2"}})
	require.Error(t, err, "range parameters are single-valued")

	_, err = d.ParseFilter(url.Values{"name_eq": {""}})
	require.Error(t, err, "empty values are rejected")

	_, err = d.ParseFilter(url.Values{"id_eq": {"not-a-uuid"}})
	require.Error(t, err)
}

func TestFilterSetOverridesClientValues(t *testing.T) {
	d := mustDef(t)

	f, err := d.ParseFilter(url.Values{"hidden_eq": {"true"}, "hidden_neq": {"false"}})
	require.NoError(t, err)

	require.NoError(t, f.Set("hidden_eq", "false"))
	f.Unset("hidden_neq")

	clause, args := f.SQL(1)
	require.Equal(t, " WHERE hidden = $1", clause)
	require.Equal(t, []any{false}, args)
}

func TestFilterKeyIsCanonical(t *testing.T) {
	d := mustDef(t)

	empty, err := d.ParseFilter(url.Values{})
	require.NoError(t, err)
	require.Equal(t, "*", empty.Key())

	f, err := d.ParseFilter(url.Values{"hidden_eq": {"false"}, "name_eq": {"beer"}})
	require.NoError(t, err)
	// Declaration order, not map order.
	require.Equal(t, "name_eq=[beer]&hidden_eq=false", f.Key())
}

func TestParseSort(t *testing.T) {
	d := mustDef(t)

	s, err := d.ParseSort(url.Values{"sort": {"price_desc", "created_at_asc"}})
	require.NoError(t, err)
	require.Equal(t, " ORDER BY sell_price DESC NULLS LAST, created_at ASC NULLS LAST", s.SQL())
	require.Equal(t, "price-,created_at+", s.Key())

	empty, err := d.ParseSort(url.Values{})
	require.NoError(t, err)
	require.Equal(t, "", empty.SQL())
	require.Equal(t, "*", empty.Key())

	_, err = d.ParseSort(url.Values{"sort": {"name_asc"}})
	require.Error(t, err, "unsortable columns are rejected")
}
