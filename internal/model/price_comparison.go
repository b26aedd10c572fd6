package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PriceComparison is a stored reconciliation run.
type PriceComparison struct {
	ID                    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name                  string         `gorm:"type:varchar(120);not null" json:"name"`
	FileName              string         `gorm:"type:varchar(255)" json:"file_name"`
	TotalProducts         int            `gorm:"not null" json:"total_products"`
	FoundProducts         int            `gorm:"not null" json:"found_products"`
	NotFoundProducts      int            `gorm:"not null" json:"not_found_products"`
	ProductsNeedingUpdate int            `gorm:"not null" json:"products_needing_update"`
	Summary               datatypes.JSON `gorm:"type:jsonb;not null" json:"summary"`
	Products              datatypes.JSON `gorm:"type:jsonb;not null" json:"products"`
	CreatedAt             time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PriceComparison) TableName() string {
	return "price_comparisons"
}

type GetPriceComparisonParam struct {
	Limit        int
	Offset       int
	Name         string
	CreatedAfter time.Time
}
