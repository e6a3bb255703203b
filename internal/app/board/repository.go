package board

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a board id has no matching record.
var ErrNotFound = errors.New("board not found")

// ListFilter narrows List to a single body and/or to boards whose term
// contains the given date.
type ListFilter struct {
	BodyID    *int64
	CurrentOn *Date
}

// Sorting is a single sort key plus direction.
type Sorting struct {
	Field     string
	Direction string
}

var sortableFields = map[string]bool{
	"id":           true,
	"body_id":      true,
	"elected_date": true,
	"start_date":   true,
	"end_date":     true,
	"president":    true,
	"secretary":    true,
	"treasurer":    true,
	"created_at":   true,
	"updated_at":   true,
}

// SortingFromQuery builds a Sorting from the sort/direction query params,
// defaulting to (id, asc). Unknown sort keys and directions fall back to the
// defaults rather than erroring.
func SortingFromQuery(sort, direction string) Sorting {
	s := Sorting{Field: "id", Direction: "asc"}
	if sortableFields[sort] {
		s.Field = sort
	}
	if direction == "asc" || direction == "desc" {
		s.Direction = direction
	}
	return s
}

func (s Sorting) orderClause() string {
	// Secondary id key keeps ties deterministic.
	if s.Field == "id" {
		return fmt.Sprintf("id %s", s.Direction)
	}
	return fmt.Sprintf("%s %s, id asc", s.Field, s.Direction)
}

type Repository interface {
	Create(board *Board) error
	List(filter ListFilter, sorting Sorting) ([]*Board, error)
	FindByID(id uint64) (*Board, error)
	Update(board *Board) error
	Delete(board *Board) error
	Count() (int64, error)

	// Transaction runs fn against a repository bound to a single database
	// transaction; an error from fn rolls everything back.
	Transaction(fn func(txRepo Repository) error) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(board *Board) error {
	if errs := board.Validate(Today()); errs != nil {
		return errs
	}
	return r.db.Create(board).Error
}

func (r *repository) List(filter ListFilter, sorting Sorting) ([]*Board, error) {
	query := r.db.Model(&Board{})
	if filter.BodyID != nil {
		query = query.Where("body_id = ?", *filter.BodyID)
	}
	if filter.CurrentOn != nil {
		query = query.Where("start_date <= ? AND end_date >= ?", filter.CurrentOn.Time, filter.CurrentOn.Time)
	}

	boards := make([]*Board, 0)
	err := query.Order(sorting.orderClause()).Find(&boards).Error
	return boards, err
}

func (r *repository) FindByID(id uint64) (*Board, error) {
	var board Board
	err := r.db.Where("id = ?", id).First(&board).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *repository) Update(board *Board) error {
	if errs := board.Validate(Today()); errs != nil {
		return errs
	}
	return r.db.Save(board).Error
}

func (r *repository) Delete(board *Board) error {
	return r.db.Delete(board).Error
}

func (r *repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&Board{}).Count(&count).Error
	return count, err
}

func (r *repository) Transaction(fn func(txRepo Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&repository{db: tx})
	})
}
