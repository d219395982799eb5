package models

import "time"

type Building struct {
	ID               string `gorm:"primaryKey;size:36"`
	UserID           uint   `gorm:"not null;index"`
	Name             string `gorm:"not null"`
	Address          string
	BuildingType     string
	ConstructionYear int
	Area             float64 // m²
	EnergyRating     string  // A-G
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
