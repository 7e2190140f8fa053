package models

import "time"

type Pet struct {
	ID uint `gorm:"primaryKey" json:"id"`

	OwnerID uint `gorm:"index;not null" json:"owner_id"`
	Owner   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	Name     string   `gorm:"size:100;not null" json:"name"`
	Species  string   `gorm:"size:50;not null" json:"species"`
	Breed    string   `gorm:"size:100" json:"breed"`
	AgeYears *int     `json:"age_years"`
	WeightKg *float64 `json:"weight_kg"`
	PhotoURL string   `gorm:"size:255" json:"photo_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
