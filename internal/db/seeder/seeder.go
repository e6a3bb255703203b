package seeder

import (
	"boards-backend/internal/app/board"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Seeder fills an empty development database with sample boards.
type Seeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewSeeder(db *gorm.DB, logger *zap.Logger) *Seeder {
	return &Seeder{
		db:     db,
		logger: logger,
	}
}

func (s *Seeder) Seed() error {
	s.logger.Info("Running database seeders...")

	if err := s.seedBoards(); err != nil {
		return err
	}

	s.logger.Info("Database seeders completed successfully")
	return nil
}

func (s *Seeder) seedBoards() error {
	var count int64
	s.db.Model(&board.Board{}).Count(&count)
	if count > 0 {
		s.logger.Info("Boards already exist, skipping seed")
		return nil
	}

	today := board.Today()
	lastYear := board.NewDate(today.AddDate(-1, 0, 0))
	nextYear := board.NewDate(today.AddDate(1, 0, 0))

	boards := []board.Board{
		{
			BodyID:      1,
			ElectedDate: lastYear,
			StartDate:   lastYear,
			EndDate:     &nextYear,
			President:   1,
			Secretary:   2,
			Treasurer:   3,
			Message:     ptr("Sample current board"),
		},
		{
			BodyID:      1,
			ElectedDate: board.NewDate(today.AddDate(-3, 0, 0)),
			StartDate:   board.NewDate(today.AddDate(-3, 0, 0)),
			EndDate:     dptr(board.NewDate(today.AddDate(-2, 0, 0))),
			President:   4,
			Secretary:   5,
			Treasurer:   6,
			Message:     ptr("Sample past board"),
		},
		{
			BodyID:      2,
			ElectedDate: lastYear,
			StartDate:   lastYear,
			President:   7,
			Secretary:   8,
			Treasurer:   9,
		},
	}

	if err := s.db.Create(&boards).Error; err != nil {
		return err
	}

	s.logger.Info("Seeded boards", zap.Int("count", len(boards)))
	return nil
}

func ptr(s string) *string {
	return &s
}

func dptr(d board.Date) *board.Date {
	return &d
}
