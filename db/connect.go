package db

import (
	"time"

	"github.com/mkarpenko/interio_bot/internal/models"
	"github.com/mkarpenko/interio_bot/utils"
	"gorm.io/driver/postgres"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func ConnectDb(url string, log *utils.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  url,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Error),
	})

	if err != nil {
		return nil, err
	}

	log.Info("✅ Database connection successfully")

	log.Info("📦 Setting database connection pool...")
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetMaxOpenConns(200)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func Migrate(db *gorm.DB, trigger bool, log *utils.Logger) error {

	if trigger {
		log.Info("📦 Migrating database...")
		entities := []interface{}{
			&models.User{},
			&models.Package{},
			&models.Payment{},
			&models.ReferralEarning{},
			&models.ReferralExchange{},
			&models.Payout{},
			&models.Setting{},
		}

		if err := db.AutoMigrate(entities...); err != nil {
			log.Errorf("✖ Failed to migrate database: %v", err)
			return err
		}

		if err := SeedPackages(db); err != nil {
			log.Errorf("✖ Failed to seed packages: %v", err)
			return err
		}
	}

	log.Info("✅ Database migrated successfully")
	return nil
}

// SeedPackages fills the package catalog on an empty database.
func SeedPackages(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Package{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i := range models.DefaultPackages {
		pkg := models.DefaultPackages[i]
		if err := db.Create(&pkg).Error; err != nil {
			return err
		}
	}
	return nil
}
