package models

import "time"

type Brand struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Name    string `gorm:"column:name" json:"name"`
	City    string `gorm:"column:city" json:"city"`
	Region  string `gorm:"column:region" json:"region"`
	Country string `gorm:"column:country" json:"country"`
}
