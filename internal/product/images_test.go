package product

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageFor(t *testing.T) {
	assert.Contains(t, ImageFor("Cow"), "photo-1516467508483")
	assert.Equal(t, fallbackImage, ImageFor("Dragonfruit"))

	ps := WithImages([]Product{{Name: "Eggs"}, {Name: "Kale"}})
	assert.Equal(t, productImages["Eggs"], ps[0].ImageURL)
	assert.Equal(t, fallbackImage, ps[1].ImageURL)

	p := Product{Name: "Apple"}
	assert.Equal(t, productImages["Apple"], WithImage(p).ImageURL)
	assert.Empty(t, p.ImageURL)
}

func TestStarterCatalogHasImages(t *testing.T) {
	for _, p := range starterCatalog() {
		_, ok := productImages[p.Name]
		assert.True(t, ok, p.Name)
		assert.True(t, p.StockQuantity > 0, p.Name)
	}
}

type failingSeeder struct {
	count   int64
	created int
	failAt  int
}

func (s *failingSeeder) Count(context.Context) (int64, error) { return s.count, nil }

func (s *failingSeeder) Create(context.Context, *Product) error {
	if s.created == s.failAt {
		return errors.New("disk full")
	}
	s.created++
	return nil
}

func TestSeed_StopsOnError(t *testing.T) {
	s := &failingSeeder{failAt: 3}
	n, err := Seed(context.Background(), s)
	require.Error(t, err)
	assert.Equal(t, 3, n)
}

func TestSeed_SkipsNonEmptyStore(t *testing.T) {
	s := &failingSeeder{count: 1, failAt: 0}
	n, err := Seed(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestProductJSON_PriceHasTwoDecimals(t *testing.T) {
	b, err := json.Marshal(WithImage(Product{ID: 3, Name: "Orange", Price: decimal.RequireFromString("21")}))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "21.00", raw["price"])
	assert.Equal(t, productImages["Orange"], raw["image_url"])
	assert.Equal(t, "Orange", raw["name"])

	var back Product
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Price.Equal(decimal.NewFromInt(21)))
}
