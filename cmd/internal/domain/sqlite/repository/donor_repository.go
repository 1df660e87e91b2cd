package repository

import (
	"errors"

	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

type DefaultDonorRepository struct {
	db *gorm.DB
}

func NewDonorRepository(db *gorm.DB) *DefaultDonorRepository {
	return &DefaultDonorRepository{db: db}
}

func (d *DefaultDonorRepository) FindByID(id string) (*entity.Donor, error) {
	var donor entity.Donor
	err := d.db.First(&donor, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &donor, err
}

func (d *DefaultDonorRepository) Save(donor *entity.Donor) error {
	return d.db.Save(donor).Error
}
