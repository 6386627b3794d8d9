package models

import (
	"time"
)

// File is the metadata row for one uploaded blob. FilePath points inside the
// upload root and is never serialized to clients; OriginalName is untrusted
// user input used only for display and download headers.
type File struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Filename     string    `gorm:"size:255;not null" json:"filename"` // server-generated stored name
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	MimeType     string    `gorm:"size:128;not null" json:"mime_type"`
	Size         int64     `gorm:"not null" json:"size"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	User         User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	FilePath     string    `gorm:"size:512;not null;uniqueIndex" json:"-"`
	UploadDate   time.Time `gorm:"autoCreateTime" json:"upload_date"`
}
