package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type LineItem struct {
	ID           int             `gorm:"primary_key" json:"id"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	OmsId        string          `gorm:"size:128;index" json:"oms_id"`
	StartDate    string          `gorm:"type:datetime;not null" json:"start_date"`
	EndDate      string          `gorm:"type:datetime;not null" json:"end_date"`
	CostMethod   string          `gorm:"size:50" json:"cost_method"`
	Quantity     int             `gorm:"not null;default:0" json:"quantity"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	OrderId      int             `gorm:"index;not null" json:"order_id"`
	AdvertiserId int             `gorm:"index;not null" json:"advertiser_id"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
