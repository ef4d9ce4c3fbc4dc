package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry owned by exactly one Category.
type Product struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Name        string          `json:"pname" gorm:"size:255;not null;index"`
	Description string          `json:"desc" gorm:"type:text;not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null"`
	Stock       Stock           `json:"stock" gorm:"type:varchar(64);not null"`
	ImageURL    string          `json:"imageUrl" gorm:"size:1024;not null"`
	CategoryID  uuid.UUID       `json:"categoryId" gorm:"type:char(36);not null;index"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`

	// Relations
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// InStock reports whether the product can currently be bought.
func (p *Product) InStock() bool {
	return p.Stock.Available()
}

// MarshalJSON adds the derived inStock flag next to the stock label.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		InStock bool `json:"inStock"`
	}{product: product(p), InStock: p.Stock.Available()})
}
