package routes

import (
	"net/http"

	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/service"
	"github.com/RenatoWlk/projeto-aplicado-II/cmd/internal/utils/apierror"
	"github.com/labstack/echo/v4"
)

type AvailabilityService interface {
	PublishAvailability(req *service.PublishAvailabilityRequest) apierror.ErrorResponse
	GetAvailability(bankID string) ([]*service.DailyAvailabilityResponse, apierror.ErrorResponse)
	GetAvailableSlotsForDate(bankID, date string) (*service.AvailableSlotsResponse, apierror.ErrorResponse)
	CheckSlotAvailability(bankID, date, hour string) (*service.SlotAvailabilityResponse, apierror.ErrorResponse)
}

type DefaultAvailabilityRoute struct {
	AvailabilityService AvailabilityService
}

func NewAvailabilityDefault(availabilityService AvailabilityService) *DefaultAvailabilityRoute {
	return &DefaultAvailabilityRoute{AvailabilityService: availabilityService}
}

func (a *DefaultAvailabilityRoute) PublishAvailability(c echo.Context) error {
	var req service.PublishAvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedBodyError)
	}

	if apierr := a.AvailabilityService.PublishAvailability(&req); apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.NoContent(http.StatusCreated)
}

func (a *DefaultAvailabilityRoute) GetAvailability(c echo.Context) error {
	entries, apierr := a.AvailabilityService.GetAvailability(c.Param("id"))
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{"availability": entries}
	return c.JSON(http.StatusOK, &resp)
}

func (a *DefaultAvailabilityRoute) GetAvailableSlots(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		apierr := apierror.NewMissingParamError("date")
		return c.JSON(apierr.Code(), apierr)
	}

	slots, apierr := a.AvailabilityService.GetAvailableSlotsForDate(c.Param("id"), date)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, slots)
}

func (a *DefaultAvailabilityRoute) CheckAvailability(c echo.Context) error {
	bankID := c.QueryParam("bloodBankId")
	if bankID == "" {
		apierr := apierror.NewMissingParamError("bloodBankId")
		return c.JSON(apierr.Code(), apierr)
	}
	date := c.QueryParam("date")
	if date == "" {
		apierr := apierror.NewMissingParamError("date")
		return c.JSON(apierr.Code(), apierr)
	}
	hour := c.QueryParam("hour")
	if hour == "" {
		apierr := apierror.NewMissingParamError("hour")
		return c.JSON(apierr.Code(), apierr)
	}

	availability, apierr := a.AvailabilityService.CheckSlotAvailability(bankID, date, hour)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, availability)
}
