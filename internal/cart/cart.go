// Package cart is the storefront shopping cart: an immutable set of lines
// keyed by product id with derived totals, plus the browsing session that
// owns one cart for its lifetime.
package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Item is the product snapshot a line is created from.
type Item struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Unit      string
	ImageURL  string
}

// Line is one product in the cart. Its display fields are copied at add time
// and do not follow later catalog changes.
type Line struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Unit      string          `json:"unit"`
	ImageURL  string          `json:"image_url"`
	Quantity  int             `json:"quantity"`
}

func (l Line) MarshalJSON() ([]byte, error) {
	type plain Line
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain: plain(l), Price: l.Price.StringFixed(2)})
}

// Subtotal is price * quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is a value. Every transition returns a new Cart and leaves the
// receiver untouched. The zero value is an empty cart.
type Cart struct {
	lines []Line
}

func New() Cart { return Cart{} }

// Lines returns a copy of the lines in the order they were first added.
func (c Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c Cart) Len() int { return len(c.lines) }

func (c Cart) Line(productID int64) (Line, bool) {
	if i := c.index(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

func (c Cart) index(productID int64) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Add puts qty units of item in the cart. An existing line accumulates the
// quantity and keeps its original snapshot. qty below 1 counts as 1.
func (c Cart) Add(item Item, qty int) Cart {
	if qty < 1 {
		qty = 1
	}
	lines := c.Lines()
	if i := c.index(item.ProductID); i >= 0 {
		lines[i].Quantity += qty
		return Cart{lines: lines}
	}
	lines = append(lines, Line{
		ProductID: item.ProductID,
		Name:      item.Name,
		Price:     item.Price,
		Unit:      item.Unit,
		ImageURL:  item.ImageURL,
		Quantity:  qty,
	})
	return Cart{lines: lines}
}

// Remove drops the line for productID. Removing an absent id is a no-op.
func (c Cart) Remove(productID int64) Cart {
	i := c.index(productID)
	if i < 0 {
		return c
	}
	lines := make([]Line, 0, len(c.lines)-1)
	lines = append(lines, c.lines[:i]...)
	lines = append(lines, c.lines[i+1:]...)
	return Cart{lines: lines}
}

// SetQuantity overwrites the quantity of an existing line. qty <= 0 removes
// the line; an absent id is a no-op and never creates one.
func (c Cart) SetQuantity(productID int64, qty int) Cart {
	if qty <= 0 {
		return c.Remove(productID)
	}
	i := c.index(productID)
	if i < 0 {
		return c
	}
	lines := c.Lines()
	lines[i].Quantity = qty
	return Cart{lines: lines}
}

type Totals struct {
	ItemCount  int
	TotalPrice decimal.Decimal
}

func (c Cart) Totals() Totals {
	t := Totals{TotalPrice: decimal.Zero}
	for _, l := range c.lines {
		t.ItemCount += l.Quantity
		t.TotalPrice = t.TotalPrice.Add(l.Subtotal())
	}
	return t
}

// FormatPrice renders an amount with a currency symbol and two decimals, e.g. R25.00.
func FormatPrice(symbol string, d decimal.Decimal) string {
	return symbol + d.StringFixed(2)
}
