package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockMoveModel records one outbound delivery of a product. Lot-tracked
// products carry the lot the units were taken from.
type StockMoveModel struct {
	BaseModel
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	LotName   string          `gorm:"type:varchar(100)"`
	Origin    string          `gorm:"type:varchar(100);index"`
	MovedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockMoveModel) TableName() string {
	return "stock_moves"
}
