package service

import (
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/domain/entity"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/utils"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/utils/apierror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

type BloodBankRepository interface {
	FindByID(id string) (*entity.BloodBank, error)
	AppendAvailability(bankID string, entries []entity.DailyAvailability) error
	FindDaily(bankID, date string) (*entity.DailyAvailability, error)
	ListDaily(bankID string) ([]entity.DailyAvailability, error)
}

type SlotRequest struct {
	Time           string `json:"time" validate:"required,hourminute"`
	AvailableSpots int    `json:"available_spots" validate:"required,gt=0"`
}

type DailyAvailabilityRequest struct {
	Date  string        `json:"date" validate:"required"`
	Slots []SlotRequest `json:"slots" validate:"required,min=1,dive"`
}

type PublishAvailabilityRequest struct {
	BloodBankID  string                     `json:"blood_bank_id" validate:"required"`
	Availability []DailyAvailabilityRequest `json:"availability" validate:"required,min=1,dive"`
}

type SlotResponse struct {
	Time           string `json:"time"`
	TotalSpots     int    `json:"total_spots"`
	BookedSpots    int    `json:"booked_spots"`
	AvailableSpots int    `json:"available_spots"`
}

type DailyAvailabilityResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

// AvailableSlotsResponse is the reconciliation view: counters derived from
// live donation records instead of the ledger's stored fields.
type AvailableSlotsResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

type SlotAvailabilityResponse struct {
	Available      bool `json:"available"`
	SlotsUsed      int  `json:"slots_used"`
	SlotsRemaining int  `json:"slots_remaining"`
}

type DefaultAvailabilityService struct {
	BankRepo     BloodBankRepository
	DonationRepo DonationRepository
	Validate     *validator.Validate
}

func NewAvailabilityService(bankRepo BloodBankRepository, donationRepo DonationRepository, validate *validator.Validate) *DefaultAvailabilityService {
	return &DefaultAvailabilityService{BankRepo: bankRepo, DonationRepo: donationRepo, Validate: validate}
}

// PublishAvailability appends daily slot definitions to the bank's calendar.
// Counters for new slots start as available_spots only; total/booked are
// initialized by the first reservation that touches them.
func (a *DefaultAvailabilityService) PublishAvailability(req *PublishAvailabilityRequest) apierror.ErrorResponse {
	if valerr := a.Validate.Struct(req); valerr != nil {
		return apierror.FromValidationError(valerr)
	}

	bank, err := a.BankRepo.FindByID(req.BloodBankID)
	if err != nil {
		log.Errorf("failed to fetch blood bank %s: %v", req.BloodBankID, err)
		return apierror.InternalServerError
	}
	if bank == nil {
		return apierror.BloodBankNotFoundError
	}

	entries := make([]entity.DailyAvailability, 0, len(req.Availability))
	for _, daily := range req.Availability {
		date, err := utils.DateOnly(daily.Date)
		if err != nil {
			return apierror.InvalidDateError
		}

		slots := make([]entity.Slot, 0, len(daily.Slots))
		for _, s := range daily.Slots {
			slots = append(slots, entity.Slot{
				Time:           s.Time,
				AvailableSpots: s.AvailableSpots,
			})
		}
		entries = append(entries, entity.DailyAvailability{Date: date, Slots: slots})
	}

	if err := a.BankRepo.AppendAvailability(req.BloodBankID, entries); err != nil {
		log.Errorf("failed to publish availability for bank %s: %v", req.BloodBankID, err)
		return apierror.InternalServerError
	}
	return nil
}

// GetAvailability lists every published entry with the ledger's own
// counters, in insertion order.
func (a *DefaultAvailabilityService) GetAvailability(bankID string) ([]*DailyAvailabilityResponse, apierror.ErrorResponse) {
	bank, err := a.BankRepo.FindByID(bankID)
	if err != nil {
		log.Errorf("failed to fetch blood bank %s: %v", bankID, err)
		return nil, apierror.InternalServerError
	}
	if bank == nil {
		return nil, apierror.BloodBankNotFoundError
	}

	entries, err := a.BankRepo.ListDaily(bankID)
	if err != nil {
		log.Errorf("failed to list availability for bank %s: %v", bankID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*DailyAvailabilityResponse, len(entries))
	for i, daily := range entries {
		slots := make([]SlotResponse, len(daily.Slots))
		for j, slot := range daily.Slots {
			slots[j] = SlotResponse{
				Time:           slot.Time,
				TotalSpots:     slot.Total(),
				BookedSpots:    slot.Booked(),
				AvailableSpots: slot.AvailableSpots,
			}
		}
		resp[i] = &DailyAvailabilityResponse{Date: daily.Date, Slots: slots}
	}
	return resp, nil
}

// GetAvailableSlotsForDate computes the user-facing availability view for a
// day by subtracting the live count of active donations from each published
// slot's capacity. This is deliberately independent of the ledger's stored
// counters; the two must agree at all times.
func (a *DefaultAvailabilityService) GetAvailableSlotsForDate(bankID, dateStr string) (*AvailableSlotsResponse, apierror.ErrorResponse) {
	date, err := utils.DateOnly(dateStr)
	if err != nil {
		return nil, apierror.InvalidDateError
	}

	daily, err := a.BankRepo.FindDaily(bankID, date)
	if err != nil {
		log.Errorf("failed to fetch availability for bank %s on %s: %v", bankID, date, err)
		return nil, apierror.InternalServerError
	}
	if daily == nil {
		return &AvailableSlotsResponse{Date: date, Slots: []SlotResponse{}}, nil
	}

	byHour, err := a.DonationRepo.CountActiveByHour(bankID, date)
	if err != nil {
		log.Errorf("failed to count donations for bank %s on %s: %v", bankID, date, err)
		return nil, apierror.InternalServerError
	}

	slots := make([]SlotResponse, len(daily.Slots))
	for i, slot := range daily.Slots {
		total := slot.Total()
		booked := byHour[slot.Time]
		available := total - booked
		if available < 0 {
			available = 0
		}
		slots[i] = SlotResponse{
			Time:           slot.Time,
			TotalSpots:     total,
			BookedSpots:    booked,
			AvailableSpots: available,
		}
	}
	return &AvailableSlotsResponse{Date: date, Slots: slots}, nil
}

// CheckSlotAvailability answers whether one exact slot still has room, using
// the same live-count computation as GetAvailableSlotsForDate.
func (a *DefaultAvailabilityService) CheckSlotAvailability(bankID, dateStr, hour string) (*SlotAvailabilityResponse, apierror.ErrorResponse) {
	date, err := utils.DateOnly(dateStr)
	if err != nil {
		return nil, apierror.InvalidDateError
	}

	daily, err := a.BankRepo.FindDaily(bankID, date)
	if err != nil {
		log.Errorf("failed to fetch availability for bank %s on %s: %v", bankID, date, err)
		return nil, apierror.InternalServerError
	}
	if daily == nil {
		return nil, apierror.SlotNotFoundError
	}

	var target *entity.Slot
	for i := range daily.Slots {
		if daily.Slots[i].Time == hour {
			target = &daily.Slots[i]
			break
		}
	}
	if target == nil {
		return nil, apierror.SlotNotFoundError
	}

	used, err := a.DonationRepo.CountActiveBySlot(bankID, date, hour)
	if err != nil {
		log.Errorf("failed to count donations for slot %s %s at bank %s: %v", date, hour, bankID, err)
		return nil, apierror.InternalServerError
	}

	remaining := target.Total() - int(used)
	if remaining < 0 {
		remaining = 0
	}
	return &SlotAvailabilityResponse{
		Available:      remaining > 0,
		SlotsUsed:      int(used),
		SlotsRemaining: remaining,
	}, nil
}
