package product

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Validate turns a creation payload into a Product ready to insert.
// Absent or blank text fields and an absent price are rejected; a price of 0
// is accepted. stock_quantity defaults to 0.
func (r CreateProductRequest) Validate() (*Product, error) {
	text := []*string{r.Name, r.Description, r.Unit, r.Category, r.Emoji}
	for _, s := range text {
		if s == nil || strings.TrimSpace(*s) == "" {
			return nil, invalid("Missing required fields")
		}
	}
	if r.Price == nil {
		return nil, invalid("Missing required fields")
	}
	if err := validPrice(*r.Price); err != nil {
		return nil, err
	}

	stock := 0
	if r.StockQuantity != nil {
		stock = *r.StockQuantity
	}
	if err := validStock(stock); err != nil {
		return nil, err
	}

	return &Product{
		Name:          strings.TrimSpace(*r.Name),
		Description:   strings.TrimSpace(*r.Description),
		Price:         r.Price.Round(2),
		Unit:          strings.TrimSpace(*r.Unit),
		Category:      strings.TrimSpace(*r.Category),
		Emoji:         strings.TrimSpace(*r.Emoji),
		StockQuantity: stock,
	}, nil
}

// ClampQuantity bounds a quantity picked on the product detail page to [1, stock].
func ClampQuantity(qty, stock int) int {
	if qty > stock {
		qty = stock
	}
	if qty < 1 {
		qty = 1
	}
	return qty
}

// Column limits: price is NUMERIC(10,2), stock_quantity is INTEGER.
var maxPrice = decimal.New(1, 8)

const maxStock = math.MaxInt32

func validPrice(d decimal.Decimal) error {
	if d.IsNegative() {
		return invalid("price must be non-negative")
	}
	if d.Round(2).GreaterThanOrEqual(maxPrice) {
		return invalid("price must be less than " + maxPrice.String())
	}
	return nil
}

func validStock(n int) error {
	if n < 0 {
		return invalid("stock_quantity must be non-negative")
	}
	if n > maxStock {
		return invalid("stock_quantity must be at most " + strconv.Itoa(maxStock))
	}
	return nil
}
