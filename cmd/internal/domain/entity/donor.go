package entity

type Donor struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex"`
	Phone        string
	BloodType    *string
	TimesDonated int   `gorm:"not null"`
	TotalPoints  int   `gorm:"not null"`
	CreatedAt    int64 `gorm:"not null"`
	UpdatedAt    int64 `gorm:"not null"`
}
