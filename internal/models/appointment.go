package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint `gorm:"index;not null" json:"client_id"`
	Client   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	// VetID stays nil until an admin assigns a veterinarian.
	VetID *uint `gorm:"index" json:"vet_id"`
	Vet   *User `gorm:"foreignKey:VetID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"vet"`

	PetID uint `gorm:"not null" json:"pet_id"`
	Pet   Pet  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"pet"`

	ScheduledAt time.Time `gorm:"not null" json:"scheduled_at"`
	Reason      string    `gorm:"size:255;not null" json:"reason"`
	Notes       string    `gorm:"size:500" json:"notes"`

	Status string `gorm:"size:20;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
