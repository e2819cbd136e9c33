package product

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// patchColumns is the fixed allow-list of columns an update may touch, in the
// order they are rendered into SET.
var patchColumns = []string{"name", "description", "price", "unit", "category", "emoji", "stock_quantity"}

type patchField struct {
	column string
	value  any
}

// Patch is a sparse update: only the columns present in the request body.
type Patch struct {
	fields []patchField
}

// ParsePatch reads a JSON object and keeps the allow-listed keys it contains.
// Unknown keys are ignored. A present key must hold a usable value: null,
// blank text and negative numbers are rejected.
func ParsePatch(body []byte) (Patch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return Patch{}, invalid("Invalid JSON body")
	}

	var p Patch
	for _, col := range patchColumns {
		msg, ok := raw[col]
		if !ok {
			continue
		}
		if strings.TrimSpace(string(msg)) == "null" {
			return Patch{}, invalid(col + " must not be null")
		}
		v, err := decodePatchValue(col, msg)
		if err != nil {
			return Patch{}, err
		}
		p.fields = append(p.fields, patchField{column: col, value: v})
	}
	return p, nil
}

func decodePatchValue(col string, msg json.RawMessage) (any, error) {
	switch col {
	case "price":
		var d decimal.Decimal
		if err := d.UnmarshalJSON(msg); err != nil {
			return nil, invalid("price must be a number")
		}
		if err := validPrice(d); err != nil {
			return nil, err
		}
		return d.Round(2), nil
	case "stock_quantity":
		var n int64
		if err := json.Unmarshal(msg, &n); err != nil {
			return nil, invalid("stock_quantity must be an integer")
		}
		if n > maxStock {
			return nil, invalid("stock_quantity must be at most " + strconv.Itoa(maxStock))
		}
		if err := validStock(int(n)); err != nil {
			return nil, err
		}
		return int(n), nil
	default:
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return nil, invalid(col + " must be a string")
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, invalid(col + " must not be empty")
		}
		return s, nil
	}
}

func (p Patch) Empty() bool { return len(p.fields) == 0 }

// Values returns column -> value, the shape GORM's Updates takes.
func (p Patch) Values() map[string]any {
	out := make(map[string]any, len(p.fields))
	for _, f := range p.fields {
		out[f.column] = f.value
	}
	return out
}

// UpdateSQL renders the Postgres statement for this patch. Column names come
// only from the allow-list; every value, updated_at and the id are bound as
// positional parameters.
func (p Patch) UpdateSQL(id int64, now time.Time) (string, []any) {
	sets := make([]string, 0, len(p.fields)+1)
	args := make([]any, 0, len(p.fields)+2)
	for _, f := range p.fields {
		args = append(args, sqlArg(f.value))
		sets = append(sets, f.column+" = $"+strconv.Itoa(len(args)))
	}
	args = append(args, now)
	sets = append(sets, "updated_at = $"+strconv.Itoa(len(args)))
	args = append(args, id)

	q := "UPDATE products SET " + strings.Join(sets, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args)) +
		" RETURNING " + selectColumns
	return q, args
}

// sqlArg passes NUMERIC values as text, as the rest of the repo does.
func sqlArg(v any) any {
	if d, ok := v.(decimal.Decimal); ok {
		return d.String()
	}
	return v
}
