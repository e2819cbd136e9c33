package product

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string `json:"name" gorm:"not null;index:products_category_name_idx,priority:2"`
	Description string `json:"description" gorm:"not null"`
	// NUMERIC(10,2) in Postgres; encoded as a JSON string to keep the exact value
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	Unit          string          `json:"unit" gorm:"not null"`
	Category      string          `json:"category" gorm:"not null;index:products_category_name_idx,priority:1"`
	Emoji         string          `json:"emoji" gorm:"not null"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null;default:0"`
	ImageURL      string          `json:"image_url,omitempty" gorm:"-"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// MarshalJSON writes price with exactly two decimals, as NUMERIC(10,2) stores it.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Price string `json:"price"`
	}{plain: plain(p), Price: p.Price.StringFixed(2)})
}

// HTTPError represents a standard error in JSON.
// swagger:model
type HTTPError struct {
	// Error message
	// example: Product not found
	Error string `json:"error"`
}

// MessageResponse is the confirmation body of a successful delete.
// swagger:model
type MessageResponse struct {
	Message string `json:"message" example:"Product deleted successfully"`
}

// CreateProductRequest payload of creation. Pointers separate an absent
// field from a present zero value.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name          *string          `json:"name"           example:"Apple"`
	Description   *string          `json:"description"    example:"Crisp red apples from the orchard"`
	Price         *decimal.Decimal `json:"price"          swaggertype:"string" example:"24.99"`
	Unit          *string          `json:"unit"           example:"per kg"`
	Category      *string          `json:"category"       example:"fruits"`
	Emoji         *string          `json:"emoji"          example:"🍎"`
	StockQuantity *int             `json:"stock_quantity" example:"40"`
}

// UpdateProductRequest documents the sparse patch body; every field is optional.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name          string `json:"name,omitempty"`
	Description   string `json:"description,omitempty"`
	Price         string `json:"price,omitempty" example:"19.50"`
	Unit          string `json:"unit,omitempty"`
	Category      string `json:"category,omitempty"`
	Emoji         string `json:"emoji,omitempty"`
	StockQuantity int    `json:"stock_quantity,omitempty"`
}
