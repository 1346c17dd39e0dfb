package storage

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"lagcomp/internal/logging"
)

// GormStore persists records through gorm. It backs both the sqlite and the
// postgres configurations.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the schema on db and wraps it.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&ShotRecord{}); err != nil {
		return nil, fmt.Errorf("migrate shot records: %w", err)
	}
	return &GormStore{db: db}, nil
}

func gormConfig(log zerolog.Logger) *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logging.NewGormLogger(log),
	}
}

// OpenSQLite opens a sqlite database at path, in memory when path is empty.
func OpenSQLite(path string, log zerolog.Logger) (*GormStore, error) {
	inMemory := path == ""
	if inMemory {
		path = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if inMemory {
		// every pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return NewGormStore(db)
}

// OpenPostgres connects to postgres with the given DSN.
func OpenPostgres(dsn string, log zerolog.Logger) (*GormStore, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewGormStore(db)
}

func (s *GormStore) Record(ctx context.Context, rec ShotRecord) error {
	return s.db.WithContext(ctx).Create(&rec).Error
}

func (s *GormStore) Recent(ctx context.Context, roomID string, limit int) ([]ShotRecord, error) {
	var out []ShotRecord
	q := s.db.WithContext(ctx).Where("room_id = ?", roomID).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *GormStore) Stats(ctx context.Context, roomID string) (Stats, error) {
	var st Stats
	base := s.db.WithContext(ctx).Model(&ShotRecord{}).Where("room_id = ?", roomID)
	if err := base.Count(&st.Shots).Error; err != nil {
		return Stats{}, err
	}
	if err := s.db.WithContext(ctx).Model(&ShotRecord{}).
		Where("room_id = ? AND hit = ?", roomID, true).Count(&st.Hits).Error; err != nil {
		return Stats{}, err
	}
	return st, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
