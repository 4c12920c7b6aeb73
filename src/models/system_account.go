package models

import (
	"github.com/AfricaChange/AfricaChange/src/types"
)

// SystemAccount is a provider settlement account owned by the platform.
type SystemAccount struct {
	ID       uint    `gorm:"primarykey" json:"id"`
	Name     string  `gorm:"size:100;not null" json:"name"`
	Provider string  `gorm:"size:50;not null" json:"provider"`
	Country  string  `gorm:"size:10;not null" json:"country"`
	Number   string  `gorm:"size:20;uniqueIndex;not null" json:"number"`
	Active   bool    `gorm:"default:true" json:"active"`
	Balance  float64 `gorm:"default:0" json:"balance"`

	types.Timestamps
}
