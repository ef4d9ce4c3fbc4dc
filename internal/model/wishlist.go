package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WishlistItem links a user to a product they want to keep track of.
// The (UserID, ProductID) pair is unique.
type WishlistItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"userId" gorm:"type:char(36);not null;uniqueIndex:idx_wishlist_user_product,priority:1"`
	ProductID uuid.UUID `json:"productId" gorm:"type:char(36);not null;uniqueIndex:idx_wishlist_user_product,priority:2;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Product *Product `json:"product" gorm:"foreignKey:ProductID"`
}

// BeforeCreate sets UUID before creating the record.
func (w *WishlistItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
