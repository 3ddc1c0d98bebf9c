package database

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/driftportal/facility-api/internal/config"
	"github.com/driftportal/facility-api/internal/domain"
	"github.com/driftportal/facility-api/internal/fixture"
)

// NewDatabase opens the configured driver and applies pool settings
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.ConnectionString())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.ConnectionString())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// sqlite serialises writers; one connection avoids SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connection established",
		zap.String("driver", cfg.Driver),
		zap.String("database", databaseName(cfg)),
	)
	return db, nil
}

func databaseName(cfg *config.DatabaseConfig) string {
	if cfg.Driver == config.DriverSQLite {
		return cfg.Path
	}
	return cfg.Name
}

// Models lists every persisted entity. The optional case_comments table is
// included so local sqlite databases support comments.
func Models() []interface{} {
	return []interface{}{
		&domain.Property{},
		&domain.Unit{},
		&domain.User{},
		&domain.Case{},
		&domain.Task{},
		&domain.MaintenancePlan{},
		&domain.CaseComment{},
	}
}

// AutoMigrate creates the schema for local sqlite databases. PostgreSQL is
// migrated with goose so the change notification triggers are installed.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}

// Seed inserts ds in one transaction, parents before children. Rows whose
// primary key already exists are skipped so seeding can be repeated.
func Seed(db *gorm.DB, ds fixture.Dataset) error {
	return db.Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			table string
			rows  interface{}
			n     int
		}{
			{domain.TableProperties, &ds.Properties, len(ds.Properties)},
			{domain.TableUnits, &ds.Units, len(ds.Units)},
			{domain.TableUsers, &ds.Users, len(ds.Users)},
			{domain.TableCases, &ds.Cases, len(ds.Cases)},
			{domain.TableTasks, &ds.Tasks, len(ds.Tasks)},
			{domain.TableMaintenancePlans, &ds.Plans, len(ds.Plans)},
			{domain.TableCaseComments, &ds.Comments, len(ds.Comments)},
		}
		for _, step := range steps {
			if step.n == 0 {
				continue
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(step.rows).Error; err != nil {
				return fmt.Errorf("failed to seed %s: %w", step.table, err)
			}
		}
		return nil
	})
}

// Close closes the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
