package product

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// GormRepo backs the catalog with GORM; the service uses it with sqlite for
// local runs.
type GormRepo struct {
	db *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo { return &GormRepo{db: db} }

func (r *GormRepo) Create(ctx context.Context, p *Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return storageErr("create product", err)
	}
	return nil
}

func (r *GormRepo) GetByID(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr("get product", err)
	}
	return &p, nil
}

func (r *GormRepo) List(ctx context.Context, q Query) ([]Product, error) {
	tx := r.db.WithContext(ctx).Model(&Product{}).Where("stock_quantity > ?", 0)
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}

	out := []Product{}
	if err := tx.Order("category ASC").Order("name ASC").Find(&out).Error; err != nil {
		return nil, storageErr("list products", err)
	}
	return out, nil
}

func (r *GormRepo) Related(ctx context.Context, p *Product, limit int) ([]Product, error) {
	out := []Product{}
	err := r.db.WithContext(ctx).
		Where("category = ? AND id <> ? AND stock_quantity > ?", p.Category, p.ID, 0).
		Order("name ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, storageErr("related products", err)
	}
	return out, nil
}

func (r *GormRepo) Update(ctx context.Context, id int64, patch Patch) (*Product, error) {
	if patch.Empty() {
		return nil, invalid("No fields to update")
	}
	updates := patch.Values()
	updates["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, storageErr("update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *GormRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&Product{}, id)
	if res.Error != nil {
		return false, storageErr("delete product", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Product{}).Count(&n).Error; err != nil {
		return 0, storageErr("count products", err)
	}
	return n, nil
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
