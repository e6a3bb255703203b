package image

import "time"

// Image is a stored board photo; its id is what board.image_id references.
type Image struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	FileName    string    `json:"file_name" gorm:"not null"`
	ObjectKey   string    `json:"-" gorm:"unique;not null"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url" gorm:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
