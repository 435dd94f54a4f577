package services

import (
	"errors"

	"gorm.io/gorm"

	"tradie-match-server/apperror"
	"tradie-match-server/calendar"
	"tradie-match-server/lifecycle"
)

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, apperror.ErrConflict)
}

// translate turns domain errors into AppErrors. Errors that already are
// AppErrors pass through; anything else becomes an internal error.
func translate(err error, details string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	var te *lifecycle.TransitionError
	if errors.As(err, &te) {
		return apperror.NewAppError(apperror.ErrConflict, "This action is not available for the job right now", te.Error(), err)
	}
	var ie *lifecycle.InvalidEventError
	if errors.As(err, &ie) {
		return apperror.NewAppError(apperror.ErrInvalidInput, capitalize(ie.Message), ie.Error(), err)
	}
	switch {
	case errors.Is(err, calendar.ErrJobSlot):
		return apperror.NewConflict("Cannot remove job-booked time slots", err.Error())
	case errors.Is(err, calendar.ErrUnknownSlot), errors.Is(err, calendar.ErrInvalidDateKey):
		return apperror.NewInvalidInput(err.Error(), err)
	}
	return apperror.NewInternal(details, err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
