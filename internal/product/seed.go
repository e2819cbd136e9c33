package product

import (
	"context"

	"github.com/shopspring/decimal"
)

func starterCatalog() []Product {
	item := func(name, desc, price, unit, category, emoji string, stock int) Product {
		return Product{
			Name: name, Description: desc, Price: decimal.RequireFromString(price),
			Unit: unit, Category: category, Emoji: emoji, StockQuantity: stock,
		}
	}
	return []Product{
		item("Apple", "Crisp orchard apples picked this week", "24.99", "per kg", "fruits", "🍎", 120),
		item("Banana", "Sweet ripe bananas", "18.50", "per kg", "fruits", "🍌", 90),
		item("Orange", "Juicy navel oranges", "21.00", "per kg", "fruits", "🍊", 75),
		item("Tomato", "Vine-ripened tomatoes", "22.00", "per kg", "vegetables", "🍅", 60),
		item("Carrot", "Fresh carrots straight from the field", "14.99", "per kg", "vegetables", "🥕", 80),
		item("Potato", "Floury potatoes for roasting and mash", "12.50", "per kg", "vegetables", "🥔", 200),
		item("Chicken", "Free-range broiler chicken", "95.00", "each", "livestock", "🐔", 30),
		item("Cow", "Nguni heifer, vaccinated and tagged", "15500.00", "each", "livestock", "🐄", 4),
		item("Eggs", "Free-range large eggs", "42.00", "per dozen", "livestock", "🥚", 50),
	}
}

// Seed inserts the starter catalog when the store holds no products and
// reports how many rows it created.
func Seed(ctx context.Context, s Seeder) (int, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	created := 0
	for _, p := range starterCatalog() {
		p := p
		if err := s.Create(ctx, &p); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
