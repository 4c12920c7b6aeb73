package models

import (
	"github.com/AfricaChange/AfricaChange/src/types"
)

type User struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`
	Email     string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Phone     string `gorm:"size:20;uniqueIndex;not null" json:"phone"`
	IsAdmin   bool   `gorm:"default:false" json:"is_admin"`

	types.Timestamps
}
