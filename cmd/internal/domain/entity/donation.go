package entity

type DonationStatus string

const (
	StatusPending   DonationStatus = "PENDING"
	StatusConfirmed DonationStatus = "CONFIRMED"
	StatusCompleted DonationStatus = "COMPLETED"
	StatusCancelled DonationStatus = "CANCELLED"
	// StatusNoShow exists in the lifecycle but no booking flow produces it
	// yet. Kept so stored records using it remain readable.
	StatusNoShow DonationStatus = "NO_SHOW"
)

// ActiveStatuses are the statuses that hold a slot reservation. A user may
// have at most one donation per calendar day in one of these statuses.
func ActiveStatuses() []DonationStatus {
	return []DonationStatus{StatusPending, StatusConfirmed}
}

func (s DonationStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s DonationStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

type Donation struct {
	ID                 string `gorm:"primaryKey"`
	UserID             string `gorm:"index;not null"`
	BloodBankID        string `gorm:"index;not null"`
	Date               string `gorm:"index;not null"` // "YYYY-MM-DD"
	Hour               string `gorm:"not null"`       // "HH:MM"
	SlotIndex          int
	BloodType          string         `gorm:"not null"`
	Status             DonationStatus `gorm:"index;not null"`
	Notes              *string
	CancellationReason *string
	CreatedAt          int64 `gorm:"not null"`
	UpdatedAt          int64 `gorm:"not null"`
}
