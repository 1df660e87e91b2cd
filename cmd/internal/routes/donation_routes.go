package routes

import (
	"net/http"
	"strconv"

	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/service"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/utils"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/utils/apierror"
	"github.com/labstack/echo/v4"
)

type DonationService interface {
	CreateDonation(userID string, req *service.CreateDonationRequest) (*service.DonationResponse, apierror.ErrorResponse)
	CancelDonation(id, userID, reason string) (*service.DonationResponse, apierror.ErrorResponse)
	ConfirmDonation(id, bankID string) (*service.DonationResponse, apierror.ErrorResponse)
	CompleteDonation(id, bankID, notes string) (*service.DonationResponse, apierror.ErrorResponse)
	GetDonation(id string) (*service.DonationResponse, apierror.ErrorResponse)
	GetUserDonations(userID string, activeOnly bool) ([]*service.DonationResponse, apierror.ErrorResponse)
	GetBloodBankDonations(bankID, date string) ([]*service.DonationResponse, apierror.ErrorResponse)
	GetUpcomingDonations(bankID string, days int) ([]*service.DonationResponse, apierror.ErrorResponse)
	GetStats(bankID, startDate, endDate string) (*service.DonationStatsResponse, apierror.ErrorResponse)
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

type NotesRequest struct {
	Notes string `json:"notes"`
}

type DefaultDonationRoute struct {
	DonationService DonationService
}

func NewDonationDefault(donationService DonationService) *DefaultDonationRoute {
	return &DefaultDonationRoute{DonationService: donationService}
}

func (d *DefaultDonationRoute) CreateDonation(c echo.Context) error {
	var req service.CreateDonationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	donation, apierr := d.DonationService.CreateDonation(data.Sub, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusCreated, donation)
}

func (d *DefaultDonationRoute) CancelDonation(c echo.Context) error {
	data, err := utils.ParseTokenDataCtx(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
	}

	// Body is optional: cancelling without a reason is fine.
	var req ReasonRequest
	_ = c.Bind(&req)

	donation, apierr := d.DonationService.CancelDonation(c.Param("id"), data.Sub, req.Reason)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, donation)
}

func (d *DefaultDonationRoute) ConfirmDonation(c echo.Context) error {
	bankID := c.QueryParam("bloodBankId")
	if bankID == "" {
		apierr := apierror.NewMissingParamError("bloodBankId")
		return c.JSON(apierr.Code(), apierr)
	}

	donation, apierr := d.DonationService.ConfirmDonation(c.Param("id"), bankID)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, donation)
}

func (d *DefaultDonationRoute) CompleteDonation(c echo.Context) error {
	bankID := c.QueryParam("bloodBankId")
	if bankID == "" {
		apierr := apierror.NewMissingParamError("bloodBankId")
		return c.JSON(apierr.Code(), apierr)
	}

	var req NotesRequest
	_ = c.Bind(&req)

	donation, apierr := d.DonationService.CompleteDonation(c.Param("id"), bankID, req.Notes)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, donation)
}

func (d *DefaultDonationRoute) GetDonation(c echo.Context) error {
	donation, apierr := d.DonationService.GetDonation(c.Param("id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, donation)
}

func (d *DefaultDonationRoute) GetUserDonations(c echo.Context) error {
	activeOnly := c.QueryParam("activeOnly") == "true"

	donations, apierr := d.DonationService.GetUserDonations(c.Param("userId"), activeOnly)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"donations": donations}
	return c.JSON(http.StatusOK, &resp)
}

func (d *DefaultDonationRoute) GetBloodBankDonations(c echo.Context) error {
	donations, apierr := d.DonationService.GetBloodBankDonations(c.Param("bloodBankId"), c.QueryParam("date"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"donations": donations}
	return c.JSON(http.StatusOK, &resp)
}

func (d *DefaultDonationRoute) GetUpcomingDonations(c echo.Context) error {
	days := 7
	if raw := c.QueryParam("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			apierr := apierror.NewSimple(http.StatusBadRequest, "days must be a positive number")
			return c.JSON(apierr.Code(), apierr)
		}
		days = parsed
	}

	donations, apierr := d.DonationService.GetUpcomingDonations(c.Param("bloodBankId"), days)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"donations": donations}
	return c.JSON(http.StatusOK, &resp)
}

func (d *DefaultDonationRoute) GetStats(c echo.Context) error {
	startDate := c.QueryParam("startDate")
	if startDate == "" {
		apierr := apierror.NewMissingParamError("startDate")
		return c.JSON(apierr.Code(), apierr)
	}
	endDate := c.QueryParam("endDate")
	if endDate == "" {
		apierr := apierror.NewMissingParamError("endDate")
		return c.JSON(apierr.Code(), apierr)
	}

	stats, apierr := d.DonationService.GetStats(c.Param("bloodBankId"), startDate, endDate)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, stats)
}
