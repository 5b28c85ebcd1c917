package database

import (
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/totegamma/catalog/internal/infra/database/models"
)

const (
	maxOpenConns    = 20
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
)

func NewPostgres(dsn string) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             300 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "database.NewPostgres: gorm.Open failed")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "database.NewPostgres: db.DB failed")
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	return db, nil
}

// MigratePostgres creates the catalog tables and the trigram index behind
// the keyword substring search.
func MigratePostgres(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Collection{},
		&models.Keyword{},
		&models.Item{},
	)
	if err != nil {
		return errors.Wrap(err, "database.MigratePostgres: AutoMigrate failed")
	}

	for _, stmt := range []string{
		"CREATE EXTENSION IF NOT EXISTS pg_trgm",
		"CREATE INDEX IF NOT EXISTS idx_keywords_title_trgm ON keywords USING gin (title gin_trgm_ops)",
	} {
		if err := db.Exec(stmt).Error; err != nil {
			return errors.Wrapf(err, "database.MigratePostgres: %s", stmt)
		}
	}
	return nil
}
