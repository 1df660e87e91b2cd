package apierror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse is the error contract between services and routes. The code
// doubles as the HTTP status the route should answer with.
type ErrorResponse interface {
	error
	Code() int
}

type Simple struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (s *Simple) Error() string { return s.Message }
func (s *Simple) Code() int     { return s.Status }

func NewSimple(code int, message string) ErrorResponse {
	return &Simple{Status: code, Message: message}
}

func NewMissingParamError(param string) ErrorResponse {
	return NewSimple(http.StatusBadRequest, "Missing required parameter: "+param)
}

var (
	InternalServerError   = NewSimple(http.StatusInternalServerError, "Internal server error")
	NotFoundError         = NewSimple(http.StatusNotFound, "Resource not found")
	MalformedBodyError    = NewSimple(http.StatusBadRequest, "Malformed request body")
	InvalidAuthTokenError = NewSimple(http.StatusUnauthorized, "Invalid or missing auth token")

	// NotFound kinds
	DonorNotFoundError     = NewSimple(http.StatusNotFound, "Donor not found")
	BloodBankNotFoundError = NewSimple(http.StatusNotFound, "Blood bank not found")
	DonationNotFoundError  = NewSimple(http.StatusNotFound, "Donation not found")
	SlotNotFoundError      = NewSimple(http.StatusNotFound, "No published slot for this date and time")

	// Validation kinds
	InvalidDateError      = NewSimple(http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD or ISO timestamp")
	MissingBloodTypeError = NewSimple(http.StatusUnprocessableEntity, "Donor has no recorded blood type")

	// Conflict kinds
	DuplicateBookingError  = NewSimple(http.StatusConflict, "User already has an active donation for this date")
	CapacityExhaustedError = NewSimple(http.StatusConflict, "No available spots for this time slot")
	InvalidTransitionError = NewSimple(http.StatusConflict, "Invalid donation status transition")
)

func FromValidationError(err error) ErrorResponse {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		return NewSimple(http.StatusBadRequest,
			fmt.Sprintf("Validation failed on field '%s' (%s)", f.Field(), f.Tag()))
	}
	return MalformedBodyError
}
