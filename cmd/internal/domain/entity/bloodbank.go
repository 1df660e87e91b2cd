package entity

type BloodBank struct {
	ID        string `gorm:"primaryKey"`
	Name      string `gorm:"not null"`
	Email     string `gorm:"uniqueIndex"`
	Phone     string
	CNPJ      string
	CreatedAt int64 `gorm:"not null"`
	UpdatedAt int64 `gorm:"not null"`

	// Relations
	Availability []DailyAvailability `gorm:"foreignKey:BloodBankID;references:ID"`
}

// DailyAvailability is one published calendar entry for a blood bank.
// Publishing always appends, so a bank can hold two entries for the same
// date; lookups take the first entry in insertion order (Position).
type DailyAvailability struct {
	ID          uint   `gorm:"primaryKey"`
	BloodBankID string `gorm:"index;not null"`
	Date        string `gorm:"index;not null"` // "YYYY-MM-DD"
	Position    int    `gorm:"not null"`

	Slots []Slot `gorm:"foreignKey:DailyAvailabilityID;references:ID"`
}

// Slot is a bookable time-of-day unit. TotalSpots and BookedSpots stay nil
// until the first reservation touches the slot, at which point they are
// initialized from AvailableSpots. From then on the counters satisfy
// available == total - booked after every committed mutation.
type Slot struct {
	ID                  uint   `gorm:"primaryKey"`
	DailyAvailabilityID uint   `gorm:"index;not null"`
	Time                string `gorm:"not null"` // "HH:MM"
	TotalSpots          *int
	BookedSpots         *int
	AvailableSpots      int `gorm:"not null"`
}

// Total returns the slot capacity, falling back to the published
// AvailableSpots when the counters were never initialized.
func (s *Slot) Total() int {
	if s.TotalSpots != nil {
		return *s.TotalSpots
	}
	return s.AvailableSpots
}

// Booked returns the booked counter, zero when never initialized.
func (s *Slot) Booked() int {
	if s.BookedSpots != nil {
		return *s.BookedSpots
	}
	return 0
}
