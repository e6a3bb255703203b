package image

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when an image id has no matching record.
var ErrNotFound = errors.New("image not found")

type Repository interface {
	Create(img *Image) error
	FindByID(id int64) (*Image, error)
	Delete(img *Image) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(img *Image) error {
	return r.db.Create(img).Error
}

func (r *repository) FindByID(id int64) (*Image, error) {
	var img Image
	err := r.db.Where("id = ?", id).First(&img).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *repository) Delete(img *Image) error {
	return r.db.Delete(img).Error
}
