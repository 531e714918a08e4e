package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single income or expense record. The amount keeps two
// decimal places end to end, so it is stored as decimal instead of float.
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description string          `gorm:"size:2000" json:"description,omitempty"`
	OccurredAt  time.Time       `gorm:"index;not null" json:"occurred_at"`
	OwnerID     uint            `gorm:"index;not null" json:"owner_id"`
	CategoryID  uint            `gorm:"index;not null" json:"category_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Owner    User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Category Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
}
