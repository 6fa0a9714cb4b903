package database

import (
	"strings"
	"time"

	"campus/config"
	"campus/logger"
	"campus/models"
	courseModels "campus/models/course"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DialectFor picks the driver from the DSN: postgres URLs and key/value DSNs
// go to Postgres, "file:" and "sqlite:" DSNs (or *.db paths) to SQLite.
func DialectFor(dsn string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		return Postgres, dsn, nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return SQLite, strings.TrimPrefix(dsn, "sqlite:"), nil
	case strings.HasPrefix(dsn, "file:"), strings.HasSuffix(dsn, ".db"):
		return SQLite, dsn, nil
	}
	return "", "", errors.Errorf("unsupported DATABASE_URL %q", dsn)
}

// Open connects to the database and configures the pool.
func Open(dsn string) (*gorm.DB, Dialect, error) {
	dialect, dsn, err := DialectFor(dsn)
	if err != nil {
		return nil, "", err
	}

	var dialector gorm.Dialector
	if dialect == Postgres {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, "", errors.Wrapf(err, "connecting to %s", dialect)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, "", errors.Wrap(err, "getting database instance")
	}
	if dialect == Postgres {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		// one writer at a time; also keeps shared in-memory databases alive
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}
	return db, dialect, nil
}

// Connect opens the configured database and runs migrations.
func Connect(conf *config.Config, log *logger.Logger) (*Client, error) {
	db, dialect, err := Open(conf.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info("Connected to database", logger.Fields{"dialect": dialect})

	client := NewClient(db, dialect, conf.ServiceRoleEnabled)
	if err := Migrate(client, log); err != nil {
		return nil, err
	}
	return client, nil
}

// Migrate creates or updates the schema. On Postgres it also installs the
// row-level security roles and policies.
func Migrate(c *Client, log *logger.Logger) error {
	log.Info("Running Migrations...")

	err := c.db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&courseModels.Course{},
		&courseModels.Module{},
		&courseModels.Lesson{},
		&courseModels.Material{},
		&courseModels.LessonProgress{},
		&models.InstitutionalLead{},
		&models.PendingUpload{},
	)
	if err != nil {
		return errors.Wrap(err, "migration failed")
	}

	if c.dialect == Postgres {
		if err := applyPolicies(c.db); err != nil {
			return errors.Wrap(err, "applying row-level security policies")
		}
	}

	log.Info("Migrations completed successfully.")
	return nil
}

// Close releases the underlying pool.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
