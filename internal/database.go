package internal

import (
	"fmt"

	"FIN-COACH/internal/config"
	"FIN-COACH/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB(cfg *config.Config) error {
	dsn := cfg.Database.DSN()

	var dialector gorm.Dialector
	switch cfg.Database.Driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		dialector = postgres.Open(dsn)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	fmt.Printf("Database (%s) connected and migrated successfully\n", cfg.Database.Driver)
	return nil
}

// AutoMigrate creates or updates every table the service owns on DB.
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("database is not initialized")
	}

	tables := []struct {
		name  string
		model interface{}
	}{
		{"users", &models.User{}},
		{"form_configurations", &models.FormConfiguration{}},
		{"form_submissions", &models.FormSubmission{}},
		{"profile_records", &models.ProfileRecord{}},
		{"uploaded_documents", &models.UploadedDocument{}},
		{"export_records", &models.ExportRecord{}},
		{"activity_logs", &models.ActivityLog{}},
		{"statistics", &models.Statistics{}},
	}

	for _, table := range tables {
		if !DB.Migrator().HasTable(table.model) {
			fmt.Printf("Creating %s table...\n", table.name)
		}
		if err := DB.AutoMigrate(table.model); err != nil {
			return fmt.Errorf("failed to migrate %s table: %w", table.name, err)
		}
	}

	return nil
}

func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
