// persistence/gorm_postgresql.go
package persistence

import (
	"context"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/wfunc/neonwhisper/models"
)

// GormWordStore keeps the corpus in the words table through GORM.
type GormWordStore struct {
	db *gorm.DB
}

// NewGormWordStore connects with a libpq DSN and migrates the words table.
func NewGormWordStore(dsn string) (*GormWordStore, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Silent,
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.GormWord{}); err != nil {
		return nil, err
	}
	return &GormWordStore{db: db}, nil
}

func (s *GormWordStore) LoadWords(ctx context.Context) ([]models.WordEntry, error) {
	var rows []models.GormWord
	if err := s.db.WithContext(ctx).Order("difficulty, category, word").Find(&rows).Error; err != nil {
		return nil, err
	}
	entries := make([]models.WordEntry, len(rows))
	for i, row := range rows {
		entries[i] = row.Entry()
	}
	return entries, nil
}

// SeedWords inserts entries, skipping words that already exist for their difficulty.
func (s *GormWordStore) SeedWords(ctx context.Context, entries []models.WordEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	rows := make([]models.GormWord, len(entries))
	for i, e := range entries {
		rows[i] = models.GormWord{Word: e.Word, Category: e.Category, Difficulty: string(e.Difficulty)}
	}

	var inserted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&rows, 100)
		inserted = res.RowsAffected
		return res.Error
	})
	return int(inserted), err
}

func (s *GormWordStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.GormWord{}).Count(&n).Error
	return n, err
}

func (s *GormWordStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
