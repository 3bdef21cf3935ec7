package models

import "time"

// Order rows keep StartDate/EndDate in the canonical `2006-01-02 15:04:05`
// form; normalization happens before persistence, never after.
type Order struct {
	ID                 int       `gorm:"primary_key" json:"id"`
	Name               string    `gorm:"size:255;not null" json:"name"`
	OmsId              string    `gorm:"size:128;index" json:"oms_id"`
	StartDate          string    `gorm:"type:datetime;not null" json:"start_date"`
	EndDate            string    `gorm:"type:datetime;not null" json:"end_date"`
	AdvertiserId       int       `gorm:"index;not null" json:"advertiser_id"`
	SalespersonEmailId string    `gorm:"size:255" json:"salesperson_email_id"`
	SalespersonName    string    `gorm:"size:255" json:"salesperson_name"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
