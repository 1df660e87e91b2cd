package repository

import (
	"errors"

	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

type DefaultDonationRepository struct {
	db *gorm.DB
}

func NewDonationRepository(db *gorm.DB) *DefaultDonationRepository {
	return &DefaultDonationRepository{db: db}
}

func (d *DefaultDonationRepository) Save(donation *entity.Donation) error {
	return d.db.Save(donation).Error
}

func (d *DefaultDonationRepository) FindByID(id string) (*entity.Donation, error) {
	var donation entity.Donation
	err := d.db.First(&donation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &donation, err
}

func (d *DefaultDonationRepository) FindByIDAndUserID(id, userID string) (*entity.Donation, error) {
	var donation entity.Donation
	err := d.db.First(&donation, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &donation, err
}

func (d *DefaultDonationRepository) FindByIDAndBloodBankID(id, bankID string) (*entity.Donation, error) {
	var donation entity.Donation
	err := d.db.First(&donation, "id = ? AND blood_bank_id = ?", id, bankID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &donation, err
}

// FindActiveByUserAndDate finds a PENDING or CONFIRMED donation held by the
// user on the given calendar day, regardless of blood bank or hour.
func (d *DefaultDonationRepository) FindActiveByUserAndDate(userID, date string) (*entity.Donation, error) {
	var donation entity.Donation
	err := d.db.Where("user_id = ? AND date = ? AND status IN ?", userID, date, entity.ActiveStatuses()).
		First(&donation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &donation, nil
}

func (d *DefaultDonationRepository) FindByUserID(userID string, activeOnly bool) ([]*entity.Donation, error) {
	q := d.db.Where("user_id = ?", userID)
	if activeOnly {
		q = q.Where("status IN ?", entity.ActiveStatuses())
	}

	var donations []*entity.Donation
	err := q.Order("date desc, hour desc").Find(&donations).Error
	return donations, err
}

// FindByBloodBankID lists a bank's donations, optionally narrowed to one
// calendar day (all statuses), ordered by date and hour ascending.
func (d *DefaultDonationRepository) FindByBloodBankID(bankID, date string) ([]*entity.Donation, error) {
	q := d.db.Where("blood_bank_id = ?", bankID)
	if date != "" {
		q = q.Where("date = ?", date)
	}

	var donations []*entity.Donation
	err := q.Order("date asc, hour asc").Find(&donations).Error
	return donations, err
}

func (d *DefaultDonationRepository) FindUpcoming(bankID, from, to string) ([]*entity.Donation, error) {
	var donations []*entity.Donation
	err := d.db.Where("blood_bank_id = ? AND date >= ? AND date <= ? AND status IN ?",
		bankID, from, to, entity.ActiveStatuses()).
		Order("date asc, hour asc").
		Find(&donations).Error
	return donations, err
}

func (d *DefaultDonationRepository) FindRange(bankID, start, end string) ([]*entity.Donation, error) {
	var donations []*entity.Donation
	err := d.db.Where("blood_bank_id = ? AND date >= ? AND date <= ?", bankID, start, end).
		Find(&donations).Error
	return donations, err
}

// CountActiveBySlot counts active donations holding the exact slot.
func (d *DefaultDonationRepository) CountActiveBySlot(bankID, date, hour string) (int64, error) {
	var count int64
	err := d.db.Model(&entity.Donation{}).
		Where("blood_bank_id = ? AND date = ? AND hour = ? AND status IN ?",
			bankID, date, hour, entity.ActiveStatuses()).
		Count(&count).Error
	return count, err
}

// CountActiveByHour groups the bank's active donations for a day by hour.
// This is the live count behind the reconciliation availability view.
func (d *DefaultDonationRepository) CountActiveByHour(bankID, date string) (map[string]int, error) {
	var rows []struct {
		Hour string
		N    int
	}
	err := d.db.Model(&entity.Donation{}).
		Select("hour, count(*) as n").
		Where("blood_bank_id = ? AND date = ? AND status IN ?", bankID, date, entity.ActiveStatuses()).
		Group("hour").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Hour] = row.N
	}
	return counts, nil
}
