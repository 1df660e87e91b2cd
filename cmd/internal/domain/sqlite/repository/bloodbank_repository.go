package repository

import (
	"errors"

	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/domain/entity"
	"gorm.io/gorm"
)

var (
	// ErrSlotNotFound is returned when the target date or time was never
	// published in the bank's availability calendar.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrCapacityExhausted is returned when the slot has no available spots
	// left to reserve.
	ErrCapacityExhausted = errors.New("no available spots for this slot")
)

type DefaultBloodBankRepository struct {
	db *gorm.DB
}

func NewBloodBankRepository(db *gorm.DB) *DefaultBloodBankRepository {
	return &DefaultBloodBankRepository{db: db}
}

func (b *DefaultBloodBankRepository) FindByID(id string) (*entity.BloodBank, error) {
	var bank entity.BloodBank
	err := b.db.First(&bank, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bank, err
}

func (b *DefaultBloodBankRepository) Save(bank *entity.BloodBank) error {
	return b.db.Save(bank).Error
}

// AppendAvailability appends published daily entries to the bank's calendar.
// Entries are never merged: publishing the same date twice leaves two rows,
// and FindDaily keeps answering with the first one.
func (b *DefaultBloodBankRepository) AppendAvailability(bankID string, entries []entity.DailyAvailability) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&entity.DailyAvailability{}).
			Where("blood_bank_id = ?", bankID).
			Count(&count).Error
		if err != nil {
			return err
		}

		for i := range entries {
			entries[i].BloodBankID = bankID
			entries[i].Position = int(count) + i
			if err := tx.Create(&entries[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *DefaultBloodBankRepository) FindDaily(bankID, date string) (*entity.DailyAvailability, error) {
	var daily entity.DailyAvailability
	err := b.db.Preload("Slots", func(db *gorm.DB) *gorm.DB {
		return db.Order("slots.id asc")
	}).
		Where("blood_bank_id = ? AND date = ?", bankID, date).
		Order("position asc").
		First(&daily).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &daily, nil
}

func (b *DefaultBloodBankRepository) ListDaily(bankID string) ([]entity.DailyAvailability, error) {
	var entries []entity.DailyAvailability
	err := b.db.Preload("Slots", func(db *gorm.DB) *gorm.DB {
		return db.Order("slots.id asc")
	}).
		Where("blood_bank_id = ?", bankID).
		Order("position asc").
		Find(&entries).Error
	return entries, err
}

// Reserve takes one spot from the exact slot at (date, time). The decrement
// is a single conditional UPDATE guarded by available_spots > 0, so two
// concurrent reservations can never oversell the slot.
func (b *DefaultBloodBankRepository) Reserve(bankID, date, hour string) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		slotID, err := findSlotID(tx, bankID, date, hour)
		if err != nil {
			return err
		}

		// Legacy and freshly published slots carry only available_spots
		// until the first booking touches them.
		err = tx.Model(&entity.Slot{}).
			Where("id = ? AND total_spots IS NULL", slotID).
			Updates(map[string]any{
				"total_spots":  gorm.Expr("available_spots"),
				"booked_spots": 0,
			}).Error
		if err != nil {
			return err
		}

		res := tx.Model(&entity.Slot{}).
			Where("id = ? AND available_spots > 0", slotID).
			Updates(map[string]any{
				"available_spots": gorm.Expr("available_spots - 1"),
				"booked_spots":    gorm.Expr("booked_spots + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCapacityExhausted
		}
		return nil
	})
}

// Release gives one spot back, capped at total_spots and floored at zero
// booked. A missing slot is a no-op: cancelling a donation whose slot was
// removed must not fail the cancellation.
func (b *DefaultBloodBankRepository) Release(bankID, date, hour string) error {
	return b.db.Transaction(func(tx *gorm.DB) error {
		slotID, err := findSlotID(tx, bankID, date, hour)
		if errors.Is(err, ErrSlotNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		return tx.Model(&entity.Slot{}).
			Where("id = ? AND booked_spots > 0 AND available_spots < total_spots", slotID).
			Updates(map[string]any{
				"available_spots": gorm.Expr("available_spots + 1"),
				"booked_spots":    gorm.Expr("booked_spots - 1"),
			}).Error
	})
}

func findSlotID(tx *gorm.DB, bankID, date, hour string) (uint, error) {
	var daily entity.DailyAvailability
	err := tx.Where("blood_bank_id = ? AND date = ?", bankID, date).
		Order("position asc").
		First(&daily).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrSlotNotFound
	}
	if err != nil {
		return 0, err
	}

	var slot entity.Slot
	err = tx.Where("daily_availability_id = ? AND time = ?", daily.ID, hour).
		Order("id asc").
		First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrSlotNotFound
	}
	if err != nil {
		return 0, err
	}
	return slot.ID, nil
}
