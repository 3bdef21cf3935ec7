package models

import "time"

// Advertiser is minted once per distinct name. The OMS-assigned id is kept as
// ExternalId so callers can reconcile their own records; matching is by name,
// never by ExternalId.
type Advertiser struct {
	ID         int       `gorm:"primary_key" json:"id"`
	ExternalId string    `gorm:"size:128" json:"external_id"`
	Name       string    `gorm:"size:255;index;not null" json:"name"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
