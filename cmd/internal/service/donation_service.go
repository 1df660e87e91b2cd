package service

import (
	"errors"
	"time"

	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/domain/entity"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/domain/sqlite/repository"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/gamification"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/utils"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/utils/apierror"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type DonationRepository interface {
	Save(donation *entity.Donation) error
	FindByID(id string) (*entity.Donation, error)
	FindByIDAndUserID(id, userID string) (*entity.Donation, error)
	FindByIDAndBloodBankID(id, bankID string) (*entity.Donation, error)
	FindActiveByUserAndDate(userID, date string) (*entity.Donation, error)
	FindByUserID(userID string, activeOnly bool) ([]*entity.Donation, error)
	FindByBloodBankID(bankID, date string) ([]*entity.Donation, error)
	FindUpcoming(bankID, from, to string) ([]*entity.Donation, error)
	FindRange(bankID, start, end string) ([]*entity.Donation, error)
	CountActiveBySlot(bankID, date, hour string) (int64, error)
	CountActiveByHour(bankID, date string) (map[string]int, error)
}

type DonorRepository interface {
	FindByID(id string) (*entity.Donor, error)
	Save(donor *entity.Donor) error
}

// CapacityLedger mutates the denormalized per-slot counters owned by the
// blood bank aggregate. Reserve fails with repository.ErrSlotNotFound or
// repository.ErrCapacityExhausted; Release swallows a missing slot.
type CapacityLedger interface {
	Reserve(bankID, date, hour string) error
	Release(bankID, date, hour string) error
}

type AchievementEvaluator interface {
	OnDonationCompleted(userID string) ([]gamification.UnlockedAchievement, error)
}

type Notifier interface {
	Notify(userID, eventKind string, expiry time.Duration) error
}

type CreateDonationRequest struct {
	BloodBankID string `json:"blood_bank_id" validate:"required"`
	Date        string `json:"date" validate:"required"`
	Hour        string `json:"hour" validate:"required,hourminute"`
	Slot        int    `json:"slot" validate:"gte=0"`
}

type DonationResponse struct {
	ID                 string `json:"id"`
	UserID             string `json:"user_id"`
	BloodBankID        string `json:"blood_bank_id"`
	Date               string `json:"date"`
	Hour               string `json:"hour"`
	Slot               int    `json:"slot"`
	BloodType          string `json:"blood_type"`
	Status             string `json:"status"`
	Notes              string `json:"notes,omitempty"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

type DonationStatsResponse struct {
	ByStatus    map[string]int `json:"by_status"`
	ByBloodType map[string]int `json:"by_blood_type"`
	Total       int            `json:"total"`
	Completed   int            `json:"completed"`
	Pending     int            `json:"pending"`
	Cancelled   int            `json:"cancelled"`
}

type DefaultDonationService struct {
	DonationRepo DonationRepository
	DonorRepo    DonorRepository
	Ledger       CapacityLedger
	Achievements AchievementEvaluator
	Notifier     Notifier
	Validate     *validator.Validate
}

func NewDonationService(
	donationRepo DonationRepository,
	donorRepo DonorRepository,
	ledger CapacityLedger,
	achievements AchievementEvaluator,
	notifier Notifier,
	validate *validator.Validate,
) *DefaultDonationService {
	return &DefaultDonationService{
		DonationRepo: donationRepo,
		DonorRepo:    donorRepo,
		Ledger:       ledger,
		Achievements: achievements,
		Notifier:     notifier,
		Validate:     validate,
	}
}

// CreateDonation books a slot for the user: resolve the donor, reject a
// second active booking on the same day, reserve the spot and persist the
// PENDING donation. A persist failure after a successful reservation rolls
// the reservation back with a compensating release.
func (d *DefaultDonationService) CreateDonation(userID string, req *CreateDonationRequest) (*DonationResponse, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if valerr := d.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	date, err := utils.DateOnly(req.Date)
	if err != nil {
		return nil, apierror.InvalidDateError
	}

	donor, err := d.DonorRepo.FindByID(userID)
	if err != nil {
		log.Errorf("failed to fetch donor %s: %v", userID, err)
		return nil, apierror.InternalServerError
	}
	if donor == nil {
		return nil, apierror.DonorNotFoundError
	}
	if donor.BloodType == nil || *donor.BloodType == "" {
		return nil, apierror.MissingBloodTypeError
	}

	existing, err := d.DonationRepo.FindActiveByUserAndDate(userID, date)
	if err != nil {
		log.Errorf("failed to check active donations for user %s on %s: %v", userID, date, err)
		return nil, apierror.InternalServerError
	}
	if existing != nil {
		return nil, apierror.DuplicateBookingError
	}

	if err := d.Ledger.Reserve(req.BloodBankID, date, req.Hour); err != nil {
		switch {
		case errors.Is(err, repository.ErrSlotNotFound):
			return nil, apierror.SlotNotFoundError
		case errors.Is(err, repository.ErrCapacityExhausted):
			return nil, apierror.CapacityExhaustedError
		default:
			log.Errorf("failed to reserve slot %s %s at bank %s: %v", date, req.Hour, req.BloodBankID, err)
			return nil, apierror.InternalServerError
		}
	}

	now := utils.NowUTC()
	donation := &entity.Donation{
		ID:          uuid.NewString(),
		UserID:      userID,
		BloodBankID: req.BloodBankID,
		Date:        date,
		Hour:        req.Hour,
		SlotIndex:   req.Slot,
		BloodType:   *donor.BloodType,
		Status:      entity.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := d.DonationRepo.Save(donation); err != nil {
		log.Errorf("failed to save donation for user %s: %v", userID, err)
		d.compensateReserve(req.BloodBankID, date, req.Hour)
		return nil, apierror.InternalServerError
	}

	return toDonationResponse(donation), nil
}

const compensationRetries = 3

// compensateReserve releases a reservation whose donation never persisted.
// The slot counters and the donation records live in separate aggregates, so
// this is the only thing standing between a failed create and a leaked spot.
func (d *DefaultDonationService) compensateReserve(bankID, date, hour string) {
	var err error
	for i := 0; i < compensationRetries; i++ {
		if err = d.Ledger.Release(bankID, date, hour); err == nil {
			return
		}
	}
	log.Errorf("failed to release reserved slot %s %s at bank %s after %d attempts, manual reconciliation required: %v",
		date, hour, bankID, compensationRetries, err)
}

// CancelDonation moves a PENDING or CONFIRMED donation to CANCELLED and gives
// the reserved spot back. Terminal donations cannot be cancelled, so a second
// cancel never double-releases capacity.
func (d *DefaultDonationService) CancelDonation(id, userID, reason string) (*DonationResponse, apierror.ErrorResponse) {
	donation, err := d.DonationRepo.FindByIDAndUserID(id, userID)
	if err != nil {
		log.Errorf("failed to fetch donation %s for user %s: %v", id, userID, err)
		return nil, apierror.InternalServerError
	}
	if donation == nil {
		return nil, apierror.DonationNotFoundError
	}
	if !donation.Status.IsActive() {
		return nil, apierror.InvalidTransitionError
	}

	donation.Status = entity.StatusCancelled
	if reason != "" {
		donation.CancellationReason = &reason
	}
	donation.UpdatedAt = utils.NowUTC()

	if err := d.DonationRepo.Save(donation); err != nil {
		log.Errorf("failed to cancel donation %s: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if err := d.Ledger.Release(donation.BloodBankID, donation.Date, donation.Hour); err != nil {
		log.Errorf("failed to release slot %s %s at bank %s for cancelled donation %s: %v",
			donation.Date, donation.Hour, donation.BloodBankID, id, err)
	}

	d.notify(donation.UserID, "donation-cancelled")
	return toDonationResponse(donation), nil
}

// ConfirmDonation is the bank-side confirmation. The spot was already
// reserved at creation, so no capacity changes here.
func (d *DefaultDonationService) ConfirmDonation(id, bankID string) (*DonationResponse, apierror.ErrorResponse) {
	donation, err := d.DonationRepo.FindByIDAndBloodBankID(id, bankID)
	if err != nil {
		log.Errorf("failed to fetch donation %s for bank %s: %v", id, bankID, err)
		return nil, apierror.InternalServerError
	}
	if donation == nil {
		return nil, apierror.DonationNotFoundError
	}
	if donation.Status != entity.StatusPending {
		return nil, apierror.InvalidTransitionError
	}

	donation.Status = entity.StatusConfirmed
	donation.UpdatedAt = utils.NowUTC()

	if err := d.DonationRepo.Save(donation); err != nil {
		log.Errorf("failed to confirm donation %s: %v", id, err)
		return nil, apierror.InternalServerError
	}

	d.notify(donation.UserID, "donation-confirmed")
	return toDonationResponse(donation), nil
}

// CompleteDonation marks a CONFIRMED donation as done and runs the
// gamification side effects before returning. Side-effect failures are
// logged and never reverse the completed transition. Completion also gives
// the reservation hold back to the ledger: a completed donation no longer
// counts as an active booking, so the stored counters must drop it too or
// they would drift from the live availability view.
func (d *DefaultDonationService) CompleteDonation(id, bankID, notes string) (*DonationResponse, apierror.ErrorResponse) {
	donation, err := d.DonationRepo.FindByIDAndBloodBankID(id, bankID)
	if err != nil {
		log.Errorf("failed to fetch donation %s for bank %s: %v", id, bankID, err)
		return nil, apierror.InternalServerError
	}
	if donation == nil {
		return nil, apierror.DonationNotFoundError
	}
	if donation.Status != entity.StatusConfirmed {
		return nil, apierror.InvalidTransitionError
	}

	donation.Status = entity.StatusCompleted
	if notes != "" {
		donation.Notes = &notes
	}
	donation.UpdatedAt = utils.NowUTC()

	if err := d.DonationRepo.Save(donation); err != nil {
		log.Errorf("failed to complete donation %s: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if err := d.Ledger.Release(donation.BloodBankID, donation.Date, donation.Hour); err != nil {
		log.Errorf("failed to release slot %s %s at bank %s for completed donation %s: %v",
			donation.Date, donation.Hour, donation.BloodBankID, id, err)
	}

	unlocked, err := d.Achievements.OnDonationCompleted(donation.UserID)
	if err != nil {
		log.Errorf("achievement evaluation failed for user %s after donation %s: %v", donation.UserID, id, err)
	} else if len(unlocked) > 0 {
		log.Infof("user %s unlocked %d achievement(s) after donation %s", donation.UserID, len(unlocked), id)
	}

	d.notify(donation.UserID, "donation-completed")
	return toDonationResponse(donation), nil
}

func (d *DefaultDonationService) GetDonation(id string) (*DonationResponse, apierror.ErrorResponse) {
	donation, err := d.DonationRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch donation %s: %v", id, err)
		return nil, apierror.InternalServerError
	}
	if donation == nil {
		return nil, apierror.DonationNotFoundError
	}
	return toDonationResponse(donation), nil
}

func (d *DefaultDonationService) GetUserDonations(userID string, activeOnly bool) ([]*DonationResponse, apierror.ErrorResponse) {
	donations, err := d.DonationRepo.FindByUserID(userID, activeOnly)
	if err != nil {
		log.Errorf("failed to fetch donations for user %s: %v", userID, err)
		return nil, apierror.InternalServerError
	}
	return toDonationResponses(donations), nil
}

func (d *DefaultDonationService) GetBloodBankDonations(bankID, date string) ([]*DonationResponse, apierror.ErrorResponse) {
	day := ""
	if date != "" {
		normalized, err := utils.DateOnly(date)
		if err != nil {
			return nil, apierror.InvalidDateError
		}
		day = normalized
	}

	donations, err := d.DonationRepo.FindByBloodBankID(bankID, day)
	if err != nil {
		log.Errorf("failed to fetch donations for bank %s: %v", bankID, err)
		return nil, apierror.InternalServerError
	}
	return toDonationResponses(donations), nil
}

func (d *DefaultDonationService) GetUpcomingDonations(bankID string, days int) ([]*DonationResponse, apierror.ErrorResponse) {
	today := time.Now().UTC()
	from := today.Format(time.DateOnly)
	to := today.AddDate(0, 0, days).Format(time.DateOnly)

	donations, err := d.DonationRepo.FindUpcoming(bankID, from, to)
	if err != nil {
		log.Errorf("failed to fetch upcoming donations for bank %s: %v", bankID, err)
		return nil, apierror.InternalServerError
	}
	return toDonationResponses(donations), nil
}

func (d *DefaultDonationService) GetStats(bankID, startDate, endDate string) (*DonationStatsResponse, apierror.ErrorResponse) {
	start, err := utils.DateOnly(startDate)
	if err != nil {
		return nil, apierror.InvalidDateError
	}
	end, err := utils.DateOnly(endDate)
	if err != nil {
		return nil, apierror.InvalidDateError
	}

	donations, err := d.DonationRepo.FindRange(bankID, start, end)
	if err != nil {
		log.Errorf("failed to fetch donations for bank %s stats: %v", bankID, err)
		return nil, apierror.InternalServerError
	}

	stats := &DonationStatsResponse{
		ByStatus:    map[string]int{},
		ByBloodType: map[string]int{},
		Total:       len(donations),
	}
	for _, donation := range donations {
		stats.ByStatus[string(donation.Status)]++
		if donation.Status == entity.StatusCompleted {
			stats.ByBloodType[donation.BloodType]++
		}
	}
	stats.Completed = stats.ByStatus[string(entity.StatusCompleted)]
	stats.Pending = stats.ByStatus[string(entity.StatusPending)]
	stats.Cancelled = stats.ByStatus[string(entity.StatusCancelled)]
	return stats, nil
}

func (d *DefaultDonationService) notify(userID, eventKind string) {
	if err := d.Notifier.Notify(userID, eventKind, gamification.NotificationExpiry); err != nil {
		log.Errorf("failed to send %q notification to user %s: %v", eventKind, userID, err)
	}
}

func toDonationResponses(donations []*entity.Donation) []*DonationResponse {
	resp := make([]*DonationResponse, len(donations))
	for i, donation := range donations {
		resp[i] = toDonationResponse(donation)
	}
	return resp
}

func toDonationResponse(donation *entity.Donation) *DonationResponse {
	resp := &DonationResponse{
		ID:          donation.ID,
		UserID:      donation.UserID,
		BloodBankID: donation.BloodBankID,
		Date:        donation.Date,
		Hour:        donation.Hour,
		Slot:        donation.SlotIndex,
		BloodType:   donation.BloodType,
		Status:      string(donation.Status),
		CreatedAt:   utils.FormatEpoch(donation.CreatedAt),
		UpdatedAt:   utils.FormatEpoch(donation.UpdatedAt),
	}
	if donation.Notes != nil {
		resp.Notes = *donation.Notes
	}
	if donation.CancellationReason != nil {
		resp.CancellationReason = *donation.CancellationReason
	}
	return resp
}
