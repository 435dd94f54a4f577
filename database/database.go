package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tradie-match-server/apperror"
	"tradie-match-server/config"
	"tradie-match-server/logger"
	"tradie-match-server/models"
)

// Initialize opens the Postgres connection and checks it is reachable.
func Initialize(cfg config.DatabaseConfig, ginMode string, appLog logger.Logger) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, &config.ConfigurationError{Key: "DB_URL", Reason: "is required"}
	}

	level := gormlogger.Info
	if ginMode == "release" {
		level = gormlogger.Warn
	}
	gormLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  ginMode != "release",
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL database: %w", err)
	}

	sqlDB.SetMaxIdleConns(orDefault(cfg.MaxIdleConns, 10))
	sqlDB.SetMaxOpenConns(orDefault(cfg.MaxOpenConns, 100))
	lifetime := cfg.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}
	sqlDB.SetConnMaxLifetime(lifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	appLog.Info("✅ Successfully connected to database")
	return db, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Migrate creates or updates tables and rewrites legacy data in place.
func Migrate(ctx context.Context, db *gorm.DB, appLog logger.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&models.Account{},
		&models.Profile{},
		&models.RefreshToken{},
		&models.Job{},
		&models.JobAdvert{},
		&models.HiddenAdvert{},
		&models.Review{},
		&models.BlockedUser{},
		&models.ChatThread{},
		&models.ChatMessage{},
		&models.Report{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	n, err := normalizeLegacyCalendars(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to normalize calendars: %w", err)
	}
	if n > 0 {
		appLog.Info("✅ Normalized legacy calendars", zap.Int("profiles", n))
	}

	appLog.Info("✅ Database migrations completed successfully")
	return nil
}

// normalizeLegacyCalendars rewrites every stored calendar in map form. Reading
// a calendar already normalizes it, so saving it back is enough; rows already
// in map form are left untouched.
func normalizeLegacyCalendars(ctx context.Context, db *gorm.DB) (int, error) {
	type row struct {
		ID       string
		Calendar string
	}
	var rows []row
	err := db.WithContext(ctx).Raw(
		`SELECT id, calendar::text AS calendar FROM profiles
		 WHERE calendar IS NOT NULL AND jsonb_path_exists(calendar, '$.* ? (@.type() == "array")')`,
	).Scan(&rows).Error
	if err != nil {
		return 0, err
	}

	for _, r := range rows {
		var p models.Profile
		if err := p.Calendar.Scan(r.Calendar); err != nil {
			return 0, fmt.Errorf("profile %s: %w", r.ID, err)
		}
		if err := db.WithContext(ctx).Model(&models.Profile{}).
			Where("id = ?", r.ID).
			Update("calendar", p.Calendar).Error; err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

// notFound maps gorm's missing-row error to the app's not-found error.
func notFound(err error, resource, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NewNotFound(resource, id)
	}
	return err
}

// IsDuplicate reports a unique constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
