package models

import "time"

// ProviderSettings holds the provider-facing profile extras (photo, trade
// list). Kept in its own row and written together with the users row in one
// transaction, so profile and settings can never diverge.
type ProviderSettings struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex"`
	PhotoURL  *string   `json:"photo_url" gorm:"size:500"`
	Skills    string    `json:"skills" gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ProviderSettings) TableName() string {
	return "provider_settings"
}

// ProviderProfileUpdate is the payload for PUT /provider/profile
type ProviderProfileUpdate struct {
	Skills []string `json:"skills"`
}
