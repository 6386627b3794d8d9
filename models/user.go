package models

import (
	"time"
)

// User model
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Email          string    `gorm:"size:255;not null;unique" json:"email"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	HashedPassword []byte    `gorm:"not null" json:"-"`
	Files          []File    `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}
