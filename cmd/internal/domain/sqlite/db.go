package sqlite

import (
	"time"

	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/domain/entity"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Init(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&entity.Donor{},
		&entity.BloodBank{},
		&entity.DailyAvailability{},
		&entity.Slot{},
		&entity.Donation{},
	)
	if err != nil {
		return nil, err
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
