package models

import "time"

// Category kinds.
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

// Category groups a user's transactions as income or expense.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Kind      string    `gorm:"size:20;index;not null" json:"kind"` // income / expense
	OwnerID   uint      `gorm:"index;not null" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
}
