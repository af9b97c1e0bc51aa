package imagehost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bitmark-inc/image-host/log"
)

// SQLStore keeps image records in a relational database through gorm
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(driver, dsn string, logLevel int) (*SQLStore, error) {
	var dialector gorm.Dialector
	switch driver {
	case StoreDriverPostgres:
		dialector = postgres.Open(dsn)
	case StoreDriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.LogLevel(logLevel)),
	})
	if err != nil {
		return nil, err
	}

	sqldb, err := db.DB()
	if err != nil {
		return nil, err
	}

	if driver == StoreDriverSQLite {
		// every connection to an in-memory database is a new database
		sqldb.SetMaxOpenConns(1)
	} else {
		sqldb.SetMaxOpenConns(50)
		sqldb.SetConnMaxLifetime(time.Hour)
	}

	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&ImageRecord{}); err != nil {
		return storeFailure("auto migrate", err)
	}
	return nil
}

// CreateImage inserts a new image record with a generated uuid
func (s *SQLStore) CreateImage(ctx context.Context, record ImageRecord) (ImageRecord, error) {
	record.ID = uuid.New().String()

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return ImageRecord{}, storeFailure("insert image", err)
	}

	log.Debug("image record created", zap.String("id", record.ID), log.SourceSQL)
	return record, nil
}

// GetImages returns all image records ordered by creation time
func (s *SQLStore) GetImages(ctx context.Context) ([]ImageRecord, error) {
	records := []ImageRecord{}
	if err := s.db.WithContext(ctx).Order("created_at").Find(&records).Error; err != nil {
		return nil, storeFailure("find images", err)
	}

	return records, nil
}

func (s *SQLStore) GetImage(ctx context.Context, id string) (ImageRecord, error) {
	var record ImageRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ImageRecord{}, ErrNotFound
		}
		return ImageRecord{}, storeFailure("find image", err)
	}

	return record, nil
}

// UpdateImageTitle sets the title of an image record and returns the updated record
func (s *SQLStore) UpdateImageTitle(ctx context.Context, id, title string) (ImageRecord, error) {
	tx := s.db.WithContext(ctx).Model(&ImageRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"title": title})
	if tx.Error != nil {
		return ImageRecord{}, storeFailure("update image title", tx.Error)
	}

	if tx.RowsAffected == 0 {
		return ImageRecord{}, ErrNotFound
	}

	return s.GetImage(ctx, id)
}

// DeleteImage removes an image record and returns what was removed
func (s *SQLStore) DeleteImage(ctx context.Context, id string) (ImageRecord, error) {
	var record ImageRecord

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, "id = ?", id).Error; err != nil {
			return err
		}

		r := tx.Delete(&ImageRecord{}, "id = ?", id)
		if r.Error != nil {
			return r.Error
		}

		if r.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ImageRecord{}, ErrNotFound
		}
		return ImageRecord{}, storeFailure("delete image", err)
	}

	return record, nil
}

func (s *SQLStore) Close(_ context.Context) error {
	sqldb, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqldb.Close()
}
