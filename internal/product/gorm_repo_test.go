package product

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGormRepo(t *testing.T) *GormRepo {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(&Product{}))
	return NewGormRepo(gdb)
}

func productNames(ps []Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Name
	}
	return out
}

func TestGormRepo_SeedAndList(t *testing.T) {
	ctx := context.Background()
	repo := newGormRepo(t)

	n, err := Seed(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	// seeding again is a no-op
	n, err = Seed(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	all, err := repo.List(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Apple", "Banana", "Orange",
		"Chicken", "Cow", "Eggs",
		"Carrot", "Potato", "Tomato",
	}, productNames(all))

	veg, err := repo.List(ctx, Query{Category: "vegetables"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Carrot", "Potato", "Tomato"}, productNames(veg))

	none, err := repo.List(ctx, Query{Category: "grains"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGormRepo_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := newGormRepo(t)

	p := &Product{Name: "Pear", Description: "Juicy", Price: decimal.RequireFromString("31.25"),
		Unit: "per kg", Category: "fruits", Emoji: "🍐", StockQuantity: 8}
	require.NoError(t, repo.Create(ctx, p))
	require.NotZero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pear", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("31.25")), got.Price.String())

	_, err = repo.GetByID(ctx, p.ID+100)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGormRepo_OutOfStockHidden(t *testing.T) {
	ctx := context.Background()
	repo := newGormRepo(t)

	require.NoError(t, repo.Create(ctx, &Product{Name: "Plum", Description: "d", Price: decimal.NewFromInt(3),
		Unit: "per kg", Category: "fruits", Emoji: "e", StockQuantity: 0}))

	list, err := repo.List(ctx, Query{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGormRepo_UpdatePartial(t *testing.T) {
	ctx := context.Background()
	repo := newGormRepo(t)
	_, err := Seed(ctx, repo)
	require.NoError(t, err)

	before, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)

	patch, err := ParsePatch([]byte(`{"price":"26.50","stock_quantity":0}`))
	require.NoError(t, err)
	after, err := repo.Update(ctx, 1, patch)
	require.NoError(t, err)

	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.Description, after.Description)
	assert.True(t, after.Price.Equal(decimal.RequireFromString("26.5")), after.Price.String())
	assert.Equal(t, 0, after.StockQuantity)
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))

	_, err = repo.Update(ctx, 999, patch)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = repo.Update(ctx, 1, Patch{})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestGormRepo_Related(t *testing.T) {
	ctx := context.Background()
	repo := newGormRepo(t)
	_, err := Seed(ctx, repo)
	require.NoError(t, err)

	apple, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "Apple", apple.Name)

	rel, err := repo.Related(ctx, apple, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Banana", "Orange"}, productNames(rel))

	rel, err = repo.Related(ctx, apple, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Banana"}, productNames(rel))
}

func TestGormRepo_DeleteCountPing(t *testing.T) {
	ctx := context.Background()
	repo := newGormRepo(t)
	_, err := Seed(ctx, repo)
	require.NoError(t, err)

	ok, err := repo.Delete(ctx, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)

	assert.NoError(t, repo.Ping(ctx))
}
