package product

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withField builds a patch without going through JSON. Columns outside the
// allow-list are dropped, as ParsePatch does.
func withField(p Patch, column string, value any) Patch {
	allowed := false
	for _, c := range patchColumns {
		allowed = allowed || c == column
	}
	if !allowed {
		return p
	}
	fields := make([]patchField, 0, len(p.fields)+1)
	for _, f := range p.fields {
		if f.column != column {
			fields = append(fields, f)
		}
	}
	return Patch{fields: append(fields, patchField{column: column, value: value})}
}

func columnsOf(p Patch) []string {
	out := make([]string, len(p.fields))
	for i, f := range p.fields {
		out[i] = f.column
	}
	return out
}

func TestParsePatch_KeepsAllowListedKeysInColumnOrder(t *testing.T) {
	p, err := ParsePatch([]byte(`{"stock_quantity":7,"color":"red","name":" Apple ","price":"19.999"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "price", "stock_quantity"}, columnsOf(p))
	v := p.Values()
	assert.Equal(t, "Apple", v["name"])
	assert.Equal(t, 7, v["stock_quantity"])
	assert.True(t, decimal.RequireFromString("20.00").Equal(v["price"].(decimal.Decimal)))
}

func TestParsePatch_EmptyAndUnknownOnly(t *testing.T) {
	for _, body := range []string{`{}`, `{"color":"red","id":9}`} {
		p, err := ParsePatch([]byte(body))
		require.NoError(t, err, body)
		assert.True(t, p.Empty(), body)
	}
}

func TestParsePatch_Rejects(t *testing.T) {
	cases := map[string]string{
		`not json`:                 "Invalid JSON body",
		`null`:                     "Invalid JSON body",
		`[1]`:                      "Invalid JSON body",
		`{"name":null}`:            "name must not be null",
		`{"price":null}`:           "price must not be null",
		`{"unit":"   "}`:           "unit must not be empty",
		`{"emoji":5}`:              "emoji must be a string",
		`{"price":"cheap"}`:        "price must be a number",
		`{"price":-0.5}`:           "price must be non-negative",
		`{"stock_quantity":1.5}`:   "stock_quantity must be an integer",
		`{"stock_quantity":-1}`:    "stock_quantity must be non-negative",
		`{"stock_quantity":"ten"}`: "stock_quantity must be an integer",
		`{"price":100000000}`:      "price must be less than 100000000",
		`{"price":"99999999.999"}`: "price must be less than 100000000",
		`{"stock_quantity":1e20}`:  "stock_quantity must be an integer",

		`{"stock_quantity":2147483648}`: "stock_quantity must be at most 2147483647",
	}
	for body, msg := range cases {
		_, err := ParsePatch([]byte(body))
		require.Error(t, err, body)
		assert.True(t, errors.Is(err, ErrValidation), body)

		var ve *ValidationError
		require.True(t, errors.As(err, &ve), body)
		assert.Equal(t, msg, ve.Msg, body)
	}
}

func TestParsePatch_ZeroValuesArePresent(t *testing.T) {
	p, err := ParsePatch([]byte(`{"price":0,"stock_quantity":0}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"price", "stock_quantity"}, columnsOf(p))
}

func TestWithField_ReplacesAndIgnoresUnknown(t *testing.T) {
	p := withField(withField(withField(Patch{}, "name", "Pear"), "id", 4), "name", "Quince")

	assert.Equal(t, []string{"name"}, columnsOf(p))
	assert.Equal(t, "Quince", p.Values()["name"])
}

func TestUpdateSQL_BindsEveryValue(t *testing.T) {
	p, err := ParsePatch([]byte(`{"stock_quantity":3,"name":"x'; DROP TABLE products;--","price":19.5}`))
	require.NoError(t, err)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	q, args := p.UpdateSQL(42, now)

	assert.Equal(t,
		"UPDATE products SET name = $1, price = $2, stock_quantity = $3, updated_at = $4 WHERE id = $5 RETURNING "+selectColumns,
		q)
	assert.False(t, strings.Contains(q, "DROP"))
	assert.Equal(t, []any{"x'; DROP TABLE products;--", "19.5", 3, now, int64(42)}, args)
}

func TestUpdateSQL_SingleField(t *testing.T) {
	q, args := withField(Patch{}, "emoji", "🍐").UpdateSQL(7, time.Unix(0, 0))

	assert.True(t, strings.HasPrefix(q, "UPDATE products SET emoji = $1, updated_at = $2 WHERE id = $3 RETURNING "))
	assert.Len(t, args, 3)
}

func TestParsePatch_ColumnLimits(t *testing.T) {
	p, err := ParsePatch([]byte(`{"price":"99999999.99","stock_quantity":2147483647}`))
	require.NoError(t, err)
	assert.Equal(t, 2147483647, p.Values()["stock_quantity"])
	assert.True(t, decimal.RequireFromString("99999999.99").Equal(p.Values()["price"].(decimal.Decimal)))
}
