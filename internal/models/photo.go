package models

import "time"

// Photo is one uploaded image. Filename keys both the original and its
// thumbnail on disk.
type Photo struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Filename  string    `json:"filename" gorm:"size:255;not null;uniqueIndex"`
	Title     string    `json:"title" gorm:"size:255;not null;default:''"`
	Mime      string    `json:"mime" gorm:"size:100;not null;default:'image/jpeg'"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (Photo) TableName() string {
	return "photos"
}

// ThumbURL is the public path of the photo's thumbnail.
func (p Photo) ThumbURL() string {
	return ThumbURL(p.Filename)
}

// OriginalURL is the public path of the uploaded original.
func (p Photo) OriginalURL() string {
	return "/media/originals/" + p.Filename
}

func ThumbURL(filename string) string {
	return "/media/thumbs/" + filename
}
