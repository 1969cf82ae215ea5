package app

import (
	"errors"
	"fmt"

	"herbar/client/internal/api"
	"herbar/client/internal/catalog"
	"herbar/client/internal/faq"
	"herbar/client/internal/notify"
)

const (
	ClassCritical    = notify.ClassCritical
	ClassOperational = notify.ClassOperational
)

// AppError is an error with a notification class. Critical errors stop the
// startup sequence; operational ones are shown and the app carries on.
type AppError struct {
	Class   string
	Stage   Stage
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func startupError(stage Stage, err error) *AppError {
	return &AppError{
		Class:   ClassCritical,
		Stage:   stage,
		Code:    "startup_failed",
		Message: fmt.Sprintf("Aplicația nu a putut porni (%s).", stage),
		Err:     err,
	}
}

// userMessage is the notification text for err.
func userMessage(err error) string {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr) && appErr.Message != "":
		return appErr.Message
	case errors.Is(err, api.ErrTimeout):
		return "Serverul nu a răspuns la timp. Încearcă din nou."
	case errors.Is(err, api.ErrFetch):
		return "Datele nu au putut fi încărcate."
	case errors.Is(err, catalog.ErrNoClipboard):
		return "Linkul nu a putut fi copiat."
	case errors.Is(err, catalog.ErrUnknownRecord):
		return "Planta cerută nu există."
	case errors.Is(err, faq.ErrEmptyContent):
		return "Întrebările frecvente nu sunt disponibile."
	default:
		return "A apărut o eroare neașteptată."
	}
}
