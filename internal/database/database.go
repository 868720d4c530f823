package database

import (
	"fmt"
	"time"

	"feedbackhub/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to postgres and verifies the connection. Unique violations
// surface as gorm.ErrDuplicatedKey.
func Open(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	gormLogger := logger.New(log, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  gormLogLevel(log.GetLevel()),
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB(): %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	log.Info("database connection established")
	return db, nil
}

// Migrate creates or updates the schema. The board membership join table
// carries its own timestamp, so it is registered before AutoMigrate.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&model.Board{}, "Members", &model.BoardMember{}); err != nil {
		return fmt.Errorf("setup join table: %w", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Board{},
		&model.BoardMember{},
		&model.Feedback{},
		&model.FeedbackUpvote{},
		&model.Comment{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func gormLogLevel(level logrus.Level) logger.LogLevel {
	switch {
	case level >= logrus.DebugLevel:
		return logger.Info
	case level >= logrus.WarnLevel:
		return logger.Warn
	default:
		return logger.Error
	}
}
